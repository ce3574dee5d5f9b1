package domain

// Badge is a one-time, non-revocable achievement.
type Badge string

const (
	BadgeFirstSteps       Badge = "FIRST_STEPS"
	BadgePioneer          Badge = "PIONEER"
	BadgeShutterbug       Badge = "SHUTTERBUG"
	BadgeCritic           Badge = "CRITIC"
	BadgeValidator        Badge = "VALIDATOR"
	BadgeTrustedValidator Badge = "TRUSTED_VALIDATOR"
	BadgeCoinCollector    Badge = "COIN_COLLECTOR"
	BadgeCoinMagnate      Badge = "COIN_MAGNATE"
	BadgeRoadTripper      Badge = "ROAD_TRIPPER"
)

// RequirementKind tags the BadgeRequirement variant.
type RequirementKind string

const (
	RequirementFirstContribution RequirementKind = "first_contribution"
	RequirementFirstToNewCharger RequirementKind = "first_to_new_charger"
	RequirementPhotoCount        RequirementKind = "photo_count"
	RequirementReviewCount       RequirementKind = "review_count"
	RequirementValidationCount   RequirementKind = "validation_count"
	RequirementTotalCoins        RequirementKind = "total_coins"
	RequirementCitiesCount       RequirementKind = "cities_count"
)

type BadgeRequirement struct {
	Kind      RequirementKind `json:"kind"`
	Threshold int64           `json:"threshold"`
}

// Met checks the requirement against a post-update snapshot.
func (req BadgeRequirement) Met(r *UserRewards) bool {
	if r == nil {
		return false
	}
	switch req.Kind {
	case RequirementFirstContribution:
		return r.ContributionCount >= 1
	case RequirementFirstToNewCharger:
		return r.FirstToChargerCount >= 1
	case RequirementPhotoCount:
		return int64(r.PhotoCount) >= req.Threshold
	case RequirementReviewCount:
		return int64(r.ReviewCount) >= req.Threshold
	case RequirementValidationCount:
		return int64(r.ValidationCount) >= req.Threshold
	case RequirementTotalCoins:
		return r.TotalCoins >= req.Threshold
	case RequirementCitiesCount:
		return int64(len(r.CitiesContributed)) >= req.Threshold
	default:
		return false
	}
}

type BadgeDefinition struct {
	Badge       Badge            `json:"badge"`
	Title       string           `json:"title"`
	Requirement BadgeRequirement `json:"requirement"`
}

var badgeCatalogue = []BadgeDefinition{
	{BadgeFirstSteps, "First Steps", BadgeRequirement{Kind: RequirementFirstContribution, Threshold: 1}},
	{BadgePioneer, "Pioneer", BadgeRequirement{Kind: RequirementFirstToNewCharger, Threshold: 1}},
	{BadgeShutterbug, "Shutterbug", BadgeRequirement{Kind: RequirementPhotoCount, Threshold: 10}},
	{BadgeCritic, "Critic", BadgeRequirement{Kind: RequirementReviewCount, Threshold: 10}},
	{BadgeValidator, "Validator", BadgeRequirement{Kind: RequirementValidationCount, Threshold: 50}},
	{BadgeTrustedValidator, "Trusted Validator", BadgeRequirement{Kind: RequirementValidationCount, Threshold: 250}},
	{BadgeCoinCollector, "Coin Collector", BadgeRequirement{Kind: RequirementTotalCoins, Threshold: 1000}},
	{BadgeCoinMagnate, "Coin Magnate", BadgeRequirement{Kind: RequirementTotalCoins, Threshold: 10000}},
	{BadgeRoadTripper, "Road Tripper", BadgeRequirement{Kind: RequirementCitiesCount, Threshold: 5}},
}

// Catalogue returns every badge definition.
func Catalogue() []BadgeDefinition {
	return append([]BadgeDefinition(nil), badgeCatalogue...)
}

// EvaluateBadges returns the badges r now qualifies for but does not hold,
// in catalogue order.
func EvaluateBadges(r *UserRewards) []Badge {
	if r == nil {
		return nil
	}
	var earned []Badge
	for _, def := range badgeCatalogue {
		if r.HasBadge(def.Badge) {
			continue
		}
		if def.Requirement.Met(r) {
			earned = append(earned, def.Badge)
		}
	}
	return earned
}
