package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.GameMatchWindow != 6*time.Hour {
		t.Fatalf("unexpected GameMatchWindow: %s", cfg.GameMatchWindow)
	}
	if cfg.SeasonRolloverMonths["nba"] != time.October {
		t.Fatalf("unexpected nba rollover: %v", cfg.SeasonRolloverMonths["nba"])
	}
	if cfg.SeasonRolloverMonths["mlb"] != time.March {
		t.Fatalf("unexpected mlb rollover: %v", cfg.SeasonRolloverMonths["mlb"])
	}
	if len(cfg.ConflictSuffixPairs) != 1 || cfg.ConflictSuffixPairs[0].A != "jr" || cfg.ConflictSuffixPairs[0].B != "sr" {
		t.Fatalf("unexpected ConflictSuffixPairs: %+v", cfg.ConflictSuffixPairs)
	}
	if cfg.TeamCodeMaxLen != 5 {
		t.Fatalf("unexpected TeamCodeMaxLen: %d", cfg.TeamCodeMaxLen)
	}
	if len(cfg.SupportedSports) != 4 {
		t.Fatalf("unexpected SupportedSports: %v", cfg.SupportedSports)
	}
}

func TestLoad_MatchWindowValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("GAME_MATCH_WINDOW", "-1h")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative GAME_MATCH_WINDOW")
	}
}

func TestLoad_SeasonRolloverParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SEASON_ROLLOVER_MONTHS", "NBA:10, nhl:9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SeasonRolloverMonths["nba"] != time.October {
		t.Fatalf("sport keys must be lowercased: %+v", cfg.SeasonRolloverMonths)
	}
	if cfg.SeasonRolloverMonths["nhl"] != time.September {
		t.Fatalf("unexpected nhl rollover: %v", cfg.SeasonRolloverMonths["nhl"])
	}

	t.Setenv("SEASON_ROLLOVER_MONTHS", "nba:13")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for month out of range")
	}
}

func TestLoad_SuffixPairParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CONFLICT_SUFFIX_PAIRS", "jr:sr,II:III")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.ConflictSuffixPairs) != 2 {
		t.Fatalf("unexpected pairs: %+v", cfg.ConflictSuffixPairs)
	}
	if cfg.ConflictSuffixPairs[1].A != "ii" || cfg.ConflictSuffixPairs[1].B != "iii" {
		t.Fatalf("pairs must be lowercased: %+v", cfg.ConflictSuffixPairs[1])
	}

	t.Setenv("CONFLICT_SUFFIX_PAIRS", "jr:jr")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for identical pair halves")
	}
}

func TestLoad_AuditWebhookRequiresURLWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("AUDIT_WEBHOOK_ENABLED", "true")
	t.Setenv("AUDIT_WEBHOOK_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when AUDIT_WEBHOOK_ENABLED=true without AUDIT_WEBHOOK_URL")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}
