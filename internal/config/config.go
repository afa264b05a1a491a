package config

import "os"

// AppConfig carries the client's environment-derived settings.
type AppConfig struct {
	AppName     string
	APIBaseURL  string
	APIBasePath string

	// StoreDir overrides the session store location; empty means the
	// per-user config directory.
	StoreDir string

	// RedisAddr switches the session store to Redis when set.
	RedisAddr string
	RedisPass string
}

// Load reads the configuration from environment variables, applying
// the defaults the backend ships with.
func Load() AppConfig {
	return AppConfig{
		AppName:     getEnv("APP_NAME", "League Client"),
		APIBaseURL:  getEnv("API_BASE_URL", "http://localhost:8000"),
		APIBasePath: getEnv("API_BASE_PATH", "/api"),
		StoreDir:    getEnv("STORE_DIR", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		RedisPass:   getEnv("REDIS_PASS", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
