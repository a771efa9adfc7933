package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/statline/canonical/internal/normalize"
	"github.com/statline/canonical/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	DBURL          string
	LogLevel       logging.Level

	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string

	SupportedSports      []string
	SupportedSources     []string
	GameMatchWindow      time.Duration
	SeasonRolloverMonths map[string]time.Month
	ConflictSuffixPairs  []normalize.ConflictPair
	TeamCodeMaxLen       int
	BulkValidateWorkers  int

	InternalJobToken string

	AuditWebhookEnabled        bool
	AuditWebhookURL            string
	AuditWebhookToken          string
	AuditWebhookTimeout        time.Duration
	AuditCircuitEnabled        bool
	AuditCircuitFailureCount   int
	AuditCircuitOpenTimeout    time.Duration
	AuditCircuitHalfOpenMaxReq int

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration

	PprofEnabled bool
	PprofAddr    string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_WRITE_TIMEOUT: %w", err)
	}

	matchWindow, err := time.ParseDuration(getEnv("GAME_MATCH_WINDOW", "6h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse GAME_MATCH_WINDOW: %w", err)
	}
	if matchWindow <= 0 {
		return Config{}, fmt.Errorf("GAME_MATCH_WINDOW must be > 0")
	}

	rollover, err := parseMonthMap(getEnv("SEASON_ROLLOVER_MONTHS", "nba:10,nfl:9,mlb:3,nhl:10"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SEASON_ROLLOVER_MONTHS: %w", err)
	}

	conflictPairs, err := parseSuffixPairs(getEnv("CONFLICT_SUFFIX_PAIRS", "jr:sr"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CONFLICT_SUFFIX_PAIRS: %w", err)
	}

	teamCodeMaxLen, err := getEnvAsInt("TEAM_CODE_MAX_LEN", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse TEAM_CODE_MAX_LEN: %w", err)
	}
	if teamCodeMaxLen <= 0 {
		return Config{}, fmt.Errorf("TEAM_CODE_MAX_LEN must be > 0")
	}

	bulkWorkers, err := getEnvAsInt("BULK_VALIDATE_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse BULK_VALIDATE_WORKERS: %w", err)
	}
	if bulkWorkers <= 0 {
		return Config{}, fmt.Errorf("BULK_VALIDATE_WORKERS must be > 0")
	}

	auditWebhookEnabled, err := strconv.ParseBool(getEnv("AUDIT_WEBHOOK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUDIT_WEBHOOK_ENABLED: %w", err)
	}
	auditWebhookURL := strings.TrimSpace(getEnv("AUDIT_WEBHOOK_URL", ""))
	if auditWebhookEnabled && auditWebhookURL == "" {
		return Config{}, fmt.Errorf("AUDIT_WEBHOOK_URL is required when AUDIT_WEBHOOK_ENABLED=true")
	}
	auditWebhookTimeout, err := time.ParseDuration(getEnv("AUDIT_WEBHOOK_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUDIT_WEBHOOK_TIMEOUT: %w", err)
	}
	auditCircuitEnabled, err := strconv.ParseBool(getEnv("AUDIT_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUDIT_CIRCUIT_ENABLED: %w", err)
	}
	auditCircuitFailureCount, err := getEnvAsInt("AUDIT_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse AUDIT_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	auditCircuitOpenTimeout, err := time.ParseDuration(getEnv("AUDIT_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUDIT_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	auditCircuitHalfOpenMaxReq, err := getEnvAsInt("AUDIT_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse AUDIT_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	serviceName := getEnv("SERVICE_NAME", "canonical")

	return Config{
		AppEnv:         appEnv,
		ServiceName:    serviceName,
		ServiceVersion: getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		DBURL:          strings.TrimSpace(getEnv("DATABASE_URL", "")),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),

		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		SupportedSports:      splitCSV(strings.ToLower(getEnv("SUPPORTED_SPORTS", "nba,nfl,mlb,nhl"))),
		SupportedSources:     splitCSV(strings.ToLower(getEnv("SUPPORTED_SOURCES", "statsfeed,oddsline,boxscore"))),
		GameMatchWindow:      matchWindow,
		SeasonRolloverMonths: rollover,
		ConflictSuffixPairs:  conflictPairs,
		TeamCodeMaxLen:       teamCodeMaxLen,
		BulkValidateWorkers:  bulkWorkers,

		InternalJobToken: strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),

		AuditWebhookEnabled:        auditWebhookEnabled,
		AuditWebhookURL:            auditWebhookURL,
		AuditWebhookToken:          strings.TrimSpace(getEnv("AUDIT_WEBHOOK_TOKEN", "")),
		AuditWebhookTimeout:        auditWebhookTimeout,
		AuditCircuitEnabled:        auditCircuitEnabled,
		AuditCircuitFailureCount:   auditCircuitFailureCount,
		AuditCircuitOpenTimeout:    auditCircuitOpenTimeout,
		AuditCircuitHalfOpenMaxReq: auditCircuitHalfOpenMaxReq,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAppName:       getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:    pyroscopeUploadRate,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,
	}, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseMonthMap parses "nba:10,nfl:9" into sport -> season rollover month.
func parseMonthMap(raw string) (map[string]time.Month, error) {
	out := make(map[string]time.Month)
	for _, item := range splitCSV(raw) {
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid map item %q, expected sport:month", item)
		}

		sport := strings.ToLower(strings.TrimSpace(segments[0]))
		if sport == "" {
			return nil, fmt.Errorf("empty sport in item %q", item)
		}
		month, err := strconv.Atoi(strings.TrimSpace(segments[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid month in item %q: %w", item, err)
		}
		if month < 1 || month > 12 {
			return nil, fmt.Errorf("month must be 1..12 in item %q", item)
		}

		out[sport] = time.Month(month)
	}
	return out, nil
}

// parseSuffixPairs parses "jr:sr,ii:iii" into suffix pairs that must never
// merge on a name-only match.
func parseSuffixPairs(raw string) ([]normalize.ConflictPair, error) {
	items := splitCSV(raw)
	out := make([]normalize.ConflictPair, 0, len(items))
	for _, item := range items {
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid pair %q, expected a:b", item)
		}

		a := strings.ToLower(strings.TrimSpace(segments[0]))
		b := strings.ToLower(strings.TrimSpace(segments[1]))
		if a == "" || b == "" || a == b {
			return nil, fmt.Errorf("invalid pair %q", item)
		}

		out = append(out, normalize.ConflictPair{A: a, B: b})
	}
	return out, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
