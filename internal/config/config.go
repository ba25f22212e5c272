package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tolgakurt/footlake/internal/platform/logging"
)

// Config stores runtime configuration for a pipeline run. League and
// season scoping lives in the YAML league registry (see leagues.go);
// everything operational comes from the environment.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	LeaguesConfigPath string
	SeasonStartYears  []int
	OutputDir         string

	FBrefEnabled             bool
	FBrefBaseURL             string
	FBrefTimeout             time.Duration
	FBrefCircuitEnabled      bool
	FBrefCircuitFailureCount int
	FBrefCircuitOpenTimeout  time.Duration
	FBrefCircuitHalfOpenReq  int

	UnderstatEnabled             bool
	UnderstatBaseURL             string
	UnderstatTimeout             time.Duration
	UnderstatCircuitEnabled      bool
	UnderstatCircuitFailureCount int
	UnderstatCircuitOpenTimeout  time.Duration
	UnderstatCircuitHalfOpenReq  int

	WarehouseEnabled     bool
	WarehouseDBURL       string
	WarehouseLoadWorkers int

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	seasonYears, err := parseYears(getEnv("SEASON_START_YEARS", "2019,2020,2021,2022,2023"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SEASON_START_YEARS: %w", err)
	}
	if len(seasonYears) == 0 {
		return Config{}, fmt.Errorf("SEASON_START_YEARS cannot be empty")
	}

	fbrefEnabled, err := strconv.ParseBool(getEnv("FBREF_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_ENABLED: %w", err)
	}
	fbrefTimeout, err := time.ParseDuration(getEnv("FBREF_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_TIMEOUT: %w", err)
	}
	if fbrefTimeout <= 0 {
		return Config{}, fmt.Errorf("FBREF_TIMEOUT must be > 0")
	}
	fbrefCircuitEnabled, err := strconv.ParseBool(getEnv("FBREF_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_CIRCUIT_ENABLED: %w", err)
	}
	fbrefCircuitFailures, err := getEnvAsInt("FBREF_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if fbrefCircuitFailures < 1 {
		return Config{}, fmt.Errorf("FBREF_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	fbrefCircuitOpenTimeout, err := time.ParseDuration(getEnv("FBREF_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if fbrefCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("FBREF_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	fbrefCircuitHalfOpen, err := getEnvAsInt("FBREF_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FBREF_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if fbrefCircuitHalfOpen < 1 {
		return Config{}, fmt.Errorf("FBREF_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	understatEnabled, err := strconv.ParseBool(getEnv("UNDERSTAT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UNDERSTAT_ENABLED: %w", err)
	}
	understatTimeout, err := time.ParseDuration(getEnv("UNDERSTAT_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UNDERSTAT_TIMEOUT: %w", err)
	}
	if understatTimeout <= 0 {
		return Config{}, fmt.Errorf("UNDERSTAT_TIMEOUT must be > 0")
	}
	understatCircuitEnabled, err := strconv.ParseBool(getEnv("UNDERSTAT_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UNDERSTAT_CIRCUIT_ENABLED: %w", err)
	}
	understatCircuitFailures, err := getEnvAsInt("UNDERSTAT_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse UNDERSTAT_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if understatCircuitFailures < 1 {
		return Config{}, fmt.Errorf("UNDERSTAT_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	understatCircuitOpenTimeout, err := time.ParseDuration(getEnv("UNDERSTAT_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UNDERSTAT_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if understatCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("UNDERSTAT_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	understatCircuitHalfOpen, err := getEnvAsInt("UNDERSTAT_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse UNDERSTAT_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if understatCircuitHalfOpen < 1 {
		return Config{}, fmt.Errorf("UNDERSTAT_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	warehouseEnabled, err := strconv.ParseBool(getEnv("WAREHOUSE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WAREHOUSE_ENABLED: %w", err)
	}
	warehouseDBURL := strings.TrimSpace(getEnv("WAREHOUSE_DB_URL", ""))
	if warehouseEnabled && warehouseDBURL == "" {
		return Config{}, fmt.Errorf("WAREHOUSE_DB_URL is required when WAREHOUSE_ENABLED=true")
	}
	warehouseWorkers, err := getEnvAsInt("WAREHOUSE_LOAD_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse WAREHOUSE_LOAD_WORKERS: %w", err)
	}
	if warehouseWorkers < 1 {
		return Config{}, fmt.Errorf("WAREHOUSE_LOAD_WORKERS must be >= 1")
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
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "footlake-etl"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		LeaguesConfigPath: getEnv("LEAGUES_CONFIG_PATH", "config/leagues.yaml"),
		SeasonStartYears:  seasonYears,
		OutputDir:         getEnv("OUTPUT_DIR", "data/normalized"),

		FBrefEnabled:             fbrefEnabled,
		FBrefBaseURL:             strings.TrimRight(getEnv("FBREF_BASE_URL", "https://fbref.com"), "/"),
		FBrefTimeout:             fbrefTimeout,
		FBrefCircuitEnabled:      fbrefCircuitEnabled,
		FBrefCircuitFailureCount: fbrefCircuitFailures,
		FBrefCircuitOpenTimeout:  fbrefCircuitOpenTimeout,
		FBrefCircuitHalfOpenReq:  fbrefCircuitHalfOpen,

		UnderstatEnabled:             understatEnabled,
		UnderstatBaseURL:             strings.TrimRight(getEnv("UNDERSTAT_BASE_URL", "https://understat.com"), "/"),
		UnderstatTimeout:             understatTimeout,
		UnderstatCircuitEnabled:      understatCircuitEnabled,
		UnderstatCircuitFailureCount: understatCircuitFailures,
		UnderstatCircuitOpenTimeout:  understatCircuitOpenTimeout,
		UnderstatCircuitHalfOpenReq:  understatCircuitHalfOpen,

		WarehouseEnabled:     warehouseEnabled,
		WarehouseDBURL:       warehouseDBURL,
		WarehouseLoadWorkers: warehouseWorkers,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:    pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	return cfg, nil
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

func parseYears(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		year, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q: %w", item, err)
		}
		if year < 1900 || year > 2100 {
			return nil, fmt.Errorf("year %d out of range", year)
		}
		out = append(out, year)
	}
	return out, nil
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
