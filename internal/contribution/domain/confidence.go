package domain

import (
	"sort"
	"time"
)

const (
	confidenceDecayHours = 720.0
	volumeSaturation     = 100.0
	voteWeight           = 0.7
	volumeWeight         = 0.3
)

// Score computes the time-decayed, peer-validated confidence of c at now.
// The +1 in the vote balance denominator pulls low-vote contributions toward 0.
func Score(c *Contribution, now time.Time) float64 {
	if c == nil {
		return 0
	}
	validated := float64(len(c.ValidatedBy))
	invalidated := float64(len(c.InvalidatedBy))
	totalVotes := validated + invalidated

	voteBalance := 0.0
	if totalVotes > 0 {
		voteBalance = (validated - invalidated) / (totalVotes + 1)
	}

	hoursSince := now.Sub(c.Timestamp).Hours()
	if hoursSince < 0 {
		hoursSince = 0
	}
	timeDecay := clamp(1-hoursSince/confidenceDecayHours, 0, 1)
	volumeBonus := clamp(validated/volumeSaturation, 0, 1)

	return clamp(voteBalance*timeDecay*voteWeight+volumeBonus*volumeWeight, 0, 1)
}

// CastVote records userID's vote on c, replacing any earlier vote by the same
// user, then refreshes the stored confidence. It returns the user's previous
// direction, empty when this is their first vote.
func CastVote(c *Contribution, userID string, direction VoteDirection, now time.Time) (VoteDirection, error) {
	if c == nil {
		return "", ErrContributionNotFound
	}
	if userID == "" {
		return "", ErrInvalidUser
	}
	if !direction.Valid() {
		return "", ErrInvalidVoteDirection
	}
	if userID == c.UserID {
		return "", ErrSelfVote
	}

	previous := c.VoteOf(userID)
	if previous == direction {
		return previous, ErrDuplicateVote
	}

	c.ValidatedBy = without(c.ValidatedBy, userID)
	c.InvalidatedBy = without(c.InvalidatedBy, userID)
	switch direction {
	case VoteValidate:
		c.ValidatedBy = with(c.ValidatedBy, userID)
	case VoteInvalidate:
		c.InvalidatedBy = with(c.InvalidatedBy, userID)
	}

	c.ConfidenceScore = Score(c, now)
	validatedAt := now
	c.LastValidatedAt = &validatedAt
	return previous, nil
}

// VoteOf returns the direction of userID's current vote, if any.
func (c *Contribution) VoteOf(userID string) VoteDirection {
	if contains(c.ValidatedBy, userID) {
		return VoteValidate
	}
	if contains(c.InvalidatedBy, userID) {
		return VoteInvalidate
	}
	return ""
}

// StaleAfter is how long a contribution of type t stays trustworthy without re-validation.
func StaleAfter(t ContributionType) time.Duration {
	switch t {
	case ContributionTypeWaitTime, ContributionTypeStatusUpdate:
		return 2 * time.Hour
	case ContributionTypePlugCheck:
		return 7 * 24 * time.Hour
	default:
		return 720 * time.Hour
	}
}

// IsDataStale reports whether c should be re-validated. It is independent of
// the confidence score.
func IsDataStale(c *Contribution, now time.Time) bool {
	if c == nil {
		return true
	}
	return now.Sub(c.Timestamp) > StaleAfter(c.Type)
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

func with(set []string, id string) []string {
	if contains(set, id) {
		return set
	}
	out := append(append([]string(nil), set...), id)
	sort.Strings(out)
	return out
}

func without(set []string, id string) []string {
	out := set[:0:0]
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
