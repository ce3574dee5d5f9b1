package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("RELIABILITY_JOB_INTERVAL", "")

	cfg := Load()
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected sqlite default driver, got %q", cfg.DBDriver)
	}
	if cfg.ReliabilityJob.Interval != 24*time.Hour {
		t.Fatalf("expected daily reliability job, got %s", cfg.ReliabilityJob.Interval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("RELIABILITY_JOB_INTERVAL", "30m")
	t.Setenv("LEADERBOARD_CACHE_TTL", "0s")

	cfg := Load()
	if cfg.DBDriver != "postgres" {
		t.Fatalf("expected postgres, got %q", cfg.DBDriver)
	}
	if cfg.ReliabilityJob.Interval != 30*time.Minute {
		t.Fatalf("expected 30m, got %s", cfg.ReliabilityJob.Interval)
	}
	if cfg.LeaderboardCacheTTL != 0 {
		t.Fatalf("expected cache disabled, got %s", cfg.LeaderboardCacheTTL)
	}
}

func TestDayBoundaryLocationFallsBackToUTC(t *testing.T) {
	cfg := Config{DayBoundaryTZ: "Not/AZone"}
	if cfg.DayBoundaryLocation() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
	cfg.DayBoundaryTZ = "Asia/Jakarta"
	if cfg.DayBoundaryLocation().String() != "Asia/Jakarta" {
		t.Fatalf("expected Asia/Jakarta, got %s", cfg.DayBoundaryLocation())
	}
}
