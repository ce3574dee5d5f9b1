package domain

import (
	"math"
	"time"

	contributiondomain "github.com/smallbiznis/voltway/internal/contribution/domain"
)

const (
	maxSubScore = 20.0

	photoSaturation     = 5.0
	reviewSaturation    = 10.0
	ratingMultiplier    = 4.0
	freshnessSaturation = 5.0

	freshnessWindow  = 7 * 24 * time.Hour
	validationWindow = 30 * 24 * time.Hour
)

// Aggregate scores a station from every contribution tied to it at now. It
// never fails: a station without contributions gets the zero vector.
func Aggregate(chargerID string, contributions []contributiondomain.Contribution, now time.Time) ReliabilityScore {
	score := ReliabilityScore{
		ChargerID:         chargerID,
		TrustBadge:        TrustBadgeNeedsData,
		ContributionCount: len(contributions),
		ComputedAt:        now,
	}
	if len(contributions) == 0 {
		return score
	}

	var (
		photos, reviews, ratingSum, recent int
		confidenceSum                      float64
		confidenceCount                    int
	)
	for i := range contributions {
		c := &contributions[i]
		switch c.Type {
		case contributiondomain.ContributionTypePhoto:
			photos++
		case contributiondomain.ContributionTypeReview:
			reviews++
			if c.Rating != nil {
				ratingSum += *c.Rating
			}
		}

		age := now.Sub(c.Timestamp)
		if age <= freshnessWindow {
			recent++
		}
		if age <= validationWindow {
			confidenceSum += c.ConfidenceScore
			confidenceCount++
		}
	}

	score.PhotoScore = capped(float64(photos) / photoSaturation * maxSubScore)
	score.ReviewScore = capped(float64(reviews) / reviewSaturation * maxSubScore)
	if reviews > 0 {
		score.RatingScore = capped(float64(ratingSum) / float64(reviews) * ratingMultiplier)
	}
	score.FreshnessScore = capped(float64(recent) / freshnessSaturation * maxSubScore)
	if confidenceCount > 0 {
		score.ValidationScore = capped(confidenceSum / float64(confidenceCount) * maxSubScore)
	}

	score.TotalScore = score.PhotoScore + score.ReviewScore + score.RatingScore +
		score.FreshnessScore + score.ValidationScore
	score.StarRating = StarRating(score.TotalScore)
	score.TrustBadge = TrustBadgeFor(score.TotalScore)
	return score
}

// StarRating converts a 0..100 total into 0..5 stars.
func StarRating(total float64) int {
	stars := int(math.Round(total / maxSubScore))
	if stars < 0 {
		return 0
	}
	if stars > 5 {
		return 5
	}
	return stars
}

func capped(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return math.Min(v, maxSubScore)
}
