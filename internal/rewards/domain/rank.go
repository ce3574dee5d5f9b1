package domain

// Rank is a coin-threshold tier. It is always derived from TotalCoins.
type Rank string

const (
	RankNewcomer    Rank = "NEWCOMER"
	RankExplorer    Rank = "EXPLORER"
	RankContributor Rank = "CONTRIBUTOR"
	RankExpert      Rank = "EXPERT"
	RankChampion    Rank = "CHAMPION"
	RankLegend      Rank = "LEGEND"
)

type rankTier struct {
	rank     Rank
	minCoins int64
}

// ordered by strictly increasing threshold
var rankTiers = []rankTier{
	{RankNewcomer, 0},
	{RankExplorer, 100},
	{RankContributor, 500},
	{RankExpert, 1500},
	{RankChampion, 5000},
	{RankLegend, 15000},
}

// Ranks returns every rank in ascending order.
func Ranks() []Rank {
	out := make([]Rank, 0, len(rankTiers))
	for _, tier := range rankTiers {
		out = append(out, tier.rank)
	}
	return out
}

// RankFromCoins returns the highest rank whose threshold coins reaches.
func RankFromCoins(coins int64) Rank {
	rank := RankNewcomer
	for _, tier := range rankTiers {
		if coins >= tier.minCoins {
			rank = tier.rank
		}
	}
	return rank
}

func (r Rank) index() int {
	for i, tier := range rankTiers {
		if tier.rank == r {
			return i
		}
	}
	return -1
}

func (r Rank) Valid() bool { return r.index() >= 0 }

// MinCoins is the threshold of r.
func (r Rank) MinCoins() int64 {
	if i := r.index(); i >= 0 {
		return rankTiers[i].minCoins
	}
	return 0
}

// Next returns the following rank and false when r is the highest.
func (r Rank) Next() (Rank, bool) {
	i := r.index()
	if i < 0 || i == len(rankTiers)-1 {
		return "", false
	}
	return rankTiers[i+1].rank, true
}

// ProgressToNext is the fraction in [0,1] of the way from the current rank's
// threshold to the next one. The highest rank always reports 1.
func ProgressToNext(coins int64) float64 {
	current := RankFromCoins(coins)
	next, ok := current.Next()
	if !ok {
		return 1
	}
	span := next.MinCoins() - current.MinCoins()
	progress := float64(coins-current.MinCoins()) / float64(span)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}
