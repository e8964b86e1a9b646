package pizzaserver

import (
	"os"
	"strconv"
)

// Config holds the pizza API configuration.
type Config struct {
	HTTPPort int
	DSN      string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		HTTPPort: getEnvInt("PIZZA_API_PORT", 8070),
		DSN:      getEnv("PIZZA_API_DB", "file:pizza.db?cache=shared&mode=rwc"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
