package configuration

import (
	"os"
	"strconv"
	"strings"

	"video-fetcher/infrastructure/logger"

	"github.com/joho/godotenv"
)

// LoadEnvFromFile loads KEY=VALUE pairs from the given files when they exist.
// Variables already present in the environment are not overridden.
func LoadEnvFromFile(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logger.GetLogger().WithField("file", p).WithField("error", err).Warn("Failed to load env file")
			continue
		}
		logger.GetLogger().WithField("file", p).Info("Loaded env file")
	}
}

// getConfigValue prefers the environment, then a non-placeholder config value, then the default
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envInt overrides target with a positive integer from the environment
func envInt(key string, target *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		logger.GetLogger().WithField("key", key).WithField("value", v).Warn("Ignoring invalid integer env value")
		return
	}
	*target = n
}

func envBool(key string, target *bool) {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True":
		*target = true
	case "0", "false", "FALSE", "False":
		*target = false
	}
}

// splitList splits a comma separated list, trimming blanks and placeholders
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.HasPrefix(part, "YOUR_") {
			continue
		}
		out = append(out, part)
	}
	return out
}
