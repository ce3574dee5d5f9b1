package domain

import (
	"sort"
	"time"
)

// RecentContributionsLimit caps Summary.RecentContributions.
const RecentContributionsLimit = 10

type WaitTimeInfo struct {
	Minutes    int       `json:"minutes"`
	ReportedAt time.Time `json:"reported_at"`
	IsStale    bool      `json:"is_stale"`
}

type StatusInfo struct {
	Status     ChargerStatus `json:"status"`
	ReportedAt time.Time     `json:"reported_at"`
	IsStale    bool          `json:"is_stale"`
}

type PlugStatus struct {
	PlugType          string    `json:"plug_type"`
	IsWorking         bool      `json:"is_working"`
	LastVerifiedAt    time.Time `json:"last_verified_at"`
	VerificationCount int       `json:"verification_count"`
}

// Summary is the per-station view derived from all of its contributions.
type Summary struct {
	ChargerID           string         `json:"charger_id"`
	TotalContributions  int            `json:"total_contributions"`
	TotalPhotos         int            `json:"total_photos"`
	AverageRating       *float64       `json:"average_rating"`
	LatestWaitTime      *WaitTimeInfo  `json:"latest_wait_time"`
	CurrentStatus       *StatusInfo    `json:"current_status"`
	PlugStatuses        []PlugStatus   `json:"plug_statuses"`
	RecentContributions []Contribution `json:"recent_contributions"`
}

// BuildSummary derives the station summary. Input order does not matter.
func BuildSummary(chargerID string, contributions []Contribution, now time.Time) Summary {
	sorted := append([]Contribution(nil), contributions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].ID > sorted[j].ID
		}
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	summary := Summary{
		ChargerID:          chargerID,
		TotalContributions: len(sorted),
		PlugStatuses:       []PlugStatus{},
	}

	ratingSum, ratingCount := 0, 0
	plugs := map[string]*PlugStatus{}
	plugOrder := []string{}

	// newest first, so the first hit per category is the latest
	for i := range sorted {
		c := &sorted[i]
		switch c.Type {
		case ContributionTypePhoto:
			summary.TotalPhotos++
		case ContributionTypeReview:
			if c.Rating != nil {
				ratingSum += *c.Rating
				ratingCount++
			}
		case ContributionTypeWaitTime:
			if summary.LatestWaitTime == nil && c.WaitMinutes != nil {
				summary.LatestWaitTime = &WaitTimeInfo{
					Minutes:    *c.WaitMinutes,
					ReportedAt: c.Timestamp,
					IsStale:    IsDataStale(c, now),
				}
			}
		case ContributionTypeStatusUpdate:
			if summary.CurrentStatus == nil && c.Status != nil {
				summary.CurrentStatus = &StatusInfo{
					Status:     *c.Status,
					ReportedAt: c.Timestamp,
					IsStale:    IsDataStale(c, now),
				}
			}
		case ContributionTypePlugCheck:
			if c.PlugType == nil {
				continue
			}
			verified := c.Timestamp
			if c.LastValidatedAt != nil && c.LastValidatedAt.After(verified) {
				verified = *c.LastValidatedAt
			}
			ps, ok := plugs[*c.PlugType]
			if !ok {
				ps = &PlugStatus{PlugType: *c.PlugType, IsWorking: c.PlugWorking != nil && *c.PlugWorking}
				plugs[*c.PlugType] = ps
				plugOrder = append(plugOrder, *c.PlugType)
			}
			if verified.After(ps.LastVerifiedAt) {
				ps.LastVerifiedAt = verified
			}
			ps.VerificationCount += 1 + len(c.ValidatedBy)
		}
	}

	if ratingCount > 0 {
		avg := float64(ratingSum) / float64(ratingCount)
		summary.AverageRating = &avg
	}
	for _, plug := range plugOrder {
		summary.PlugStatuses = append(summary.PlugStatuses, *plugs[plug])
	}

	limit := len(sorted)
	if limit > RecentContributionsLimit {
		limit = RecentContributionsLimit
	}
	summary.RecentContributions = sorted[:limit]
	return summary
}
