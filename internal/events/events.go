package events

// Reward engine event types written to the outbox.
const (
	EventContributionCreated = "contribution.created"
	EventContributionVoted   = "contribution.voted"
	EventCoinsAwarded        = "coins.awarded"
	EventCoinsSpent          = "coins.spent"
	EventBadgeEarned         = "badge.earned"
	EventRankChanged         = "rank.changed"
	EventReliabilityUpdated  = "reliability.updated"
	EventMonthlyReset        = "coins.monthly_reset"
)

// MonthlyResetKey is the dedupe key marking month (YYYY-MM) as reset.
func MonthlyResetKey(month string) string {
	return "monthly_reset:" + month
}

// ContributionPayload captures a created or voted contribution.
type ContributionPayload struct {
	ContributionID  string  `json:"contribution_id"`
	ChargerID       string  `json:"charger_id"`
	UserID          string  `json:"user_id"`
	Type            string  `json:"type"`
	Direction       string  `json:"direction,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p ContributionPayload) ToMap() map[string]any {
	payload := map[string]any{
		"contribution_id":  p.ContributionID,
		"charger_id":       p.ChargerID,
		"user_id":          p.UserID,
		"type":             p.Type,
		"confidence_score": p.ConfidenceScore,
	}
	if p.Direction != "" {
		payload["direction"] = p.Direction
	}
	return payload
}

// CoinsPayload captures one ledger transaction.
type CoinsPayload struct {
	TransactionID string `json:"transaction_id"`
	UserID        string `json:"user_id"`
	Amount        int64  `json:"amount"`
	Type          string `json:"type"`
	Reason        string `json:"reason"`
	TotalCoins    int64  `json:"total_coins"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p CoinsPayload) ToMap() map[string]any {
	return map[string]any{
		"transaction_id": p.TransactionID,
		"user_id":        p.UserID,
		"amount":         p.Amount,
		"type":           p.Type,
		"reason":         p.Reason,
		"total_coins":    p.TotalCoins,
	}
}

// ProgressPayload captures a badge unlock or a rank change.
type ProgressPayload struct {
	UserID       string `json:"user_id"`
	Badge        string `json:"badge,omitempty"`
	PreviousRank string `json:"previous_rank,omitempty"`
	Rank         string `json:"rank,omitempty"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p ProgressPayload) ToMap() map[string]any {
	payload := map[string]any{"user_id": p.UserID}
	if p.Badge != "" {
		payload["badge"] = p.Badge
	}
	if p.Rank != "" {
		payload["rank"] = p.Rank
		payload["previous_rank"] = p.PreviousRank
	}
	return payload
}

// ReliabilityPayload captures a recomputed station score.
type ReliabilityPayload struct {
	ChargerID  string  `json:"charger_id"`
	TotalScore float64 `json:"total_score"`
	TrustBadge string  `json:"trust_badge"`
	Trigger    string  `json:"trigger"`
}

// ToMap converts a payload into an outbox-friendly map.
func (p ReliabilityPayload) ToMap() map[string]any {
	return map[string]any{
		"charger_id":  p.ChargerID,
		"total_score": p.TotalScore,
		"trust_badge": p.TrustBadge,
		"trigger":     p.Trigger,
	}
}
