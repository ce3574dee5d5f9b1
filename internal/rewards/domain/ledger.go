package domain

// Apply adds amount to the balance, re-derives the rank and appends any
// badges the post-update snapshot qualifies for. Negative amounts leave
// CoinsThisMonth untouched.
func (r *UserRewards) Apply(amount int64) (previous Rank, newBadges []Badge) {
	previous = r.Rank
	if previous == "" {
		previous = RankFromCoins(r.TotalCoins)
	}
	r.TotalCoins += amount
	if amount > 0 {
		r.CoinsThisMonth += amount
	}
	r.Rank = RankFromCoins(r.TotalCoins)

	newBadges = EvaluateBadges(r)
	r.Badges = append(r.Badges, newBadges...)
	return previous, newBadges
}

// CheckIn marks today's check-in.
func (r *UserRewards) CheckIn(today string) error {
	if r.LastCheckInDate == today {
		return ErrAlreadyCheckedIn
	}
	r.LastCheckInDate = today
	return nil
}

// CanValidate reports whether another validation fits under today's cap.
func (r *UserRewards) CanValidate(today string) bool {
	return r.LastValidationDate != today || r.DailyValidationCount < DailyValidationLimit
}

// RecordValidation counts one validation. The daily counter restarts at 1 on
// the first validation of a new day.
func (r *UserRewards) RecordValidation(today string) error {
	if !r.CanValidate(today) {
		return ErrDailyLimitReached
	}
	if r.LastValidationDate != today {
		r.DailyValidationCount = 1
		r.LastValidationDate = today
	} else {
		r.DailyValidationCount++
	}
	r.ValidationCount++
	return nil
}

// RecordContribution updates the counters and sets touched by a new contribution.
func (r *UserRewards) RecordContribution(award ContributionAward) {
	r.ContributionCount++
	switch award.Kind {
	case ContributionKindPhoto:
		r.PhotoCount++
	case ContributionKindReview:
		r.ReviewCount++
	}
	if award.IsFirstToCharger {
		r.FirstToChargerCount++
	}
	r.AddCharger(award.ChargerID)
	r.AddCity(award.CityName)
}

// Coins is the total credited for a contribution award.
func (award ContributionAward) Coins() int64 {
	coins := award.BaseCoins
	if award.IsFirstToCharger {
		coins += FirstToChargerBonus
	}
	return coins
}
