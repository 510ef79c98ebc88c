package config

import (
	"os"
	"strconv"
	"strings"
)

// Summary returns the non-secret part of the configuration, for debug logging
// and the health endpoint.
func (c *Config) Summary() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_version":                c.App.Version,
		"app_debug":                  c.App.Debug,
		"app_environment":            c.App.Environment,
		"db_driver":                  c.Database.Driver,
		"valkey_enabled":             c.Database.ValkeyEnabled,
		"timer_hold_debounce_ms":     c.Timer.HoldDebounceMs,
		"timer_inspection_seconds":   c.Timer.InspectionSeconds,
		"timer_inspection_overrun":   c.Timer.InspectionOverrunSeconds,
		"timer_recent_limit":         c.Timer.RecentLimit,
		"solve_history_limit":        c.Timer.HistoryLimit,
		"remote_scramble_configured": c.Remote.ScrambleEndpoint != "",
		"remote_solver_configured":   c.Remote.SolverEndpoint != "",
		"worker_pool_size":           c.WorkerPool.Size,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}
