package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Paths      PathsConfig
	Database   DatabaseConfig
	Timer      TimerConfig
	Remote     RemoteConfig
	WorkerPool WorkerPoolConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
	ServerID           string
}

type PathsConfig struct {
	BaseDir  string
	Statics  string
	Storages string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB Name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

// TimerConfig tunes the solve timer. Values here are deployment knobs; per-user
// behaviour (inspection on/off, hold-to-start...) lives in the settings store.
type TimerConfig struct {
	HoldDebounceMs           int
	InspectionSeconds        int
	InspectionOverrunSeconds int
	RenderIntervalMs         int
	RecentLimit              int
	HistoryLimit             int
}

// RemoteConfig points at the external collaborators. Empty endpoints disable them.
type RemoteConfig struct {
	ScrambleEndpoint string
	SolverEndpoint   string
	TimeoutMs        int
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

// Global provides access to the loaded configuration for the cobra flag bindings.
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	debug := false
	if v := os.Getenv("APP_DEBUG"); v == "true" || v == "1" || v == "on" {
		debug = true
	} else if v := os.Getenv("DEBUG"); v == "true" || v == "1" {
		debug = true
	}

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.0.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
		ServerID:           getEnv("SERVER_ID", ""),
	}
	if v := os.Getenv("APP_TRUSTED_PROXIES"); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		BaseDir:  baseDir,
		Statics:  getEnv("PATH_STATICS", "statics"),
		Storages: baseDir,
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            getEnv("DB_NAME", filepath.Join(pathsCfg.Storages, "azcube.db")),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "azcube:"),
	}

	timerCfg := TimerConfig{
		HoldDebounceMs:           getEnvInt("TIMER_HOLD_DEBOUNCE_MS", 100),
		InspectionSeconds:        getEnvInt("TIMER_INSPECTION_SECONDS", 15),
		InspectionOverrunSeconds: getEnvInt("TIMER_INSPECTION_OVERRUN_SECONDS", 0),
		RenderIntervalMs:         getEnvInt("TIMER_RENDER_INTERVAL_MS", 10),
		RecentLimit:              getEnvInt("TIMER_RECENT_LIMIT", 100),
		HistoryLimit:             getEnvInt("SOLVE_HISTORY_LIMIT", 1000),
	}

	remoteCfg := RemoteConfig{
		ScrambleEndpoint: getEnv("SCRAMBLE_ENDPOINT", ""),
		SolverEndpoint:   getEnv("SOLVER_ENDPOINT", ""),
		TimeoutMs:        getEnvInt("REMOTE_TIMEOUT_MS", 3000),
	}

	cfg := &Config{
		App:        appCfg,
		Paths:      pathsCfg,
		Database:   dbCfg,
		Timer:      timerCfg,
		Remote:     remoteCfg,
		WorkerPool: WorkerPoolConfig{Size: getEnvInt("WORKER_POOL_SIZE", 4), QueueSize: getEnvInt("WORKER_QUEUE_SIZE", 256)},
	}

	Global = cfg
	return cfg, nil
}
