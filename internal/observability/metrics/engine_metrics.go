package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics tracks the contribution and rewards engine.
type EngineMetrics struct {
	coinsAwarded        *prometheus.CounterVec
	awardRejected       *prometheus.CounterVec
	badgesEarned        *prometheus.CounterVec
	rankChanges         *prometheus.CounterVec
	votesCast           *prometheus.CounterVec
	contributions       *prometheus.CounterVec
	reliabilityRuns     *prometheus.CounterVec
	reliabilityDuration prometheus.Histogram
	reliabilityStations prometheus.Gauge
}

var (
	engineMetricsOnce sync.Once
	engineMetrics     *EngineMetrics
)

func Engine() *EngineMetrics {
	return EngineWithConfig(Config{})
}

func EngineWithConfig(cfg Config) *EngineMetrics {
	engineMetricsOnce.Do(func() {
		engineMetrics = NewEngineMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return engineMetrics
}

func NewEngineMetrics(registerer prometheus.Registerer, cfg Config) *EngineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "voltway"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &EngineMetrics{
		coinsAwarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "voltway_coins_awarded_total",
				Help:        "Coins credited to user ledgers by transaction type.",
				ConstLabels: constLabels,
			},
			[]string{"type"},
		),
		awardRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "voltway_award_rejected_total",
				Help:        "Award attempts rejected before any ledger write.",
				ConstLabels: constLabels,
			},
			[]string{"reason"}, // already_checked_in | daily_limit_reached | insufficient_coins
		),
		badgesEarned: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "voltway_badges_earned_total",
				Help:        "Badges unlocked by badge id.",
				ConstLabels: constLabels,
			},
			[]string{"badge"},
		),
		rankChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "voltway_rank_changes_total",
				Help:        "Rank transitions by destination rank.",
				ConstLabels: constLabels,
			},
			[]string{"rank"},
		),
		votesCast: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "voltway_votes_cast_total",
				Help:        "Peer votes cast on contributions.",
				ConstLabels: constLabels,
			},
			[]string{"direction"},
		),
		contributions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "voltway_contributions_total",
				Help:        "Contributions created by type.",
				ConstLabels: constLabels,
			},
			[]string{"type"},
		),
		reliabilityRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "voltway_reliability_recompute_total",
				Help:        "Station reliability recomputations by trigger and result.",
				ConstLabels: constLabels,
			},
			[]string{"trigger", "result"}, // live | batch, success | failed
		),
		reliabilityDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "voltway_reliability_batch_duration_seconds",
				Help:        "Duration of a full reliability batch run.",
				Buckets:     prometheus.ExponentialBuckets(0.05, 2, 12),
				ConstLabels: constLabels,
			},
		),
		reliabilityStations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "voltway_reliability_batch_stations",
				Help:        "Stations processed by the last reliability batch run.",
				ConstLabels: constLabels,
			},
		),
	}

	registerer.MustRegister(
		m.coinsAwarded,
		m.awardRejected,
		m.badgesEarned,
		m.rankChanges,
		m.votesCast,
		m.contributions,
		m.reliabilityRuns,
		m.reliabilityDuration,
		m.reliabilityStations,
	)
	return m
}

func (m *EngineMetrics) AddCoins(txType string, amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.coinsAwarded.WithLabelValues(txType).Add(float64(amount))
}

func (m *EngineMetrics) IncAwardRejected(reason string) {
	if m == nil {
		return
	}
	m.awardRejected.WithLabelValues(reason).Inc()
}

func (m *EngineMetrics) IncBadgeEarned(badge string) {
	if m == nil {
		return
	}
	m.badgesEarned.WithLabelValues(badge).Inc()
}

func (m *EngineMetrics) IncRankChange(rank string) {
	if m == nil {
		return
	}
	m.rankChanges.WithLabelValues(rank).Inc()
}

func (m *EngineMetrics) IncVote(direction string) {
	if m == nil {
		return
	}
	m.votesCast.WithLabelValues(direction).Inc()
}

func (m *EngineMetrics) IncContribution(contributionType string) {
	if m == nil {
		return
	}
	m.contributions.WithLabelValues(contributionType).Inc()
}

func (m *EngineMetrics) IncReliability(trigger string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failed"
	}
	m.reliabilityRuns.WithLabelValues(trigger, result).Inc()
}

func (m *EngineMetrics) ObserveBatch(duration time.Duration, stations int) {
	if m == nil {
		return
	}
	m.reliabilityDuration.Observe(duration.Seconds())
	m.reliabilityStations.Set(float64(stations))
}
