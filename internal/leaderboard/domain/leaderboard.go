// Package domain ranks users over the rewards ledger. It is a pure read model.
package domain

import (
	"context"
	"errors"
	"sort"
	"strings"

	rewardsdomain "github.com/smallbiznis/voltway/internal/rewards/domain"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Period selects the balance users are ranked by.
type Period string

const (
	PeriodAllTime Period = "all_time"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod defaults to all-time.
func ParsePeriod(raw string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PeriodAllTime:
		return PeriodAllTime, nil
	case PeriodMonthly:
		return PeriodMonthly, nil
	default:
		return "", ErrInvalidPeriod
	}
}

func (p Period) coins(r *rewardsdomain.UserRewards) int64 {
	if p == PeriodMonthly {
		return r.CoinsThisMonth
	}
	return r.TotalCoins
}

// Entry is one leaderboard row. Position is 1-based.
type Entry struct {
	Position int `json:"position"`
	rewardsdomain.UserRewards
}

// Sort orders a snapshot by the period's balance descending, then by user id.
func Sort(snapshot []rewardsdomain.UserRewards, period Period) []rewardsdomain.UserRewards {
	sorted := append([]rewardsdomain.UserRewards(nil), snapshot...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := period.coins(&sorted[i]), period.coins(&sorted[j])
		if ci != cj {
			return ci > cj
		}
		return sorted[i].UserID < sorted[j].UserID
	})
	return sorted
}

// Top returns the first limit entries of an already sorted snapshot.
func Top(sorted []rewardsdomain.UserRewards, limit int) []Entry {
	limit = NormalizeLimit(limit)
	if limit > len(sorted) {
		limit = len(sorted)
	}
	entries := make([]Entry, 0, limit)
	for i := 0; i < limit; i++ {
		entries = append(entries, Entry{Position: i + 1, UserRewards: sorted[i]})
	}
	return entries
}

// RankOf returns the 1-based position of userID in an already sorted snapshot.
func RankOf(sorted []rewardsdomain.UserRewards, userID string) (int, bool) {
	for i := range sorted {
		if sorted[i].UserID == userID {
			return i + 1, true
		}
	}
	return 0, false
}

func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

type Service interface {
	Top(ctx context.Context, period Period, limit int) ([]Entry, error)
	RankOf(ctx context.Context, period Period, userID string) (int, error)
}

var (
	ErrInvalidPeriod = errors.New("invalid_period")
	ErrInvalidUser   = errors.New("invalid_user_id")
	ErrNotRanked     = errors.New("not_ranked")
)
