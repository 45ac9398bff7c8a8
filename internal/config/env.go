// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rinman24/arcobs/internal/log"
)

// ParseString reads a string environment variable or returns the
// default. The chosen source is logged at debug level.
func ParseString(key, defaultValue string) string {
	logger := log.WithComponent("config")
	if value, ok := os.LookupEnv(key); ok {
		if value == "" {
			logDefault(logger, key)
			return defaultValue
		}
		event := logger.Debug().Str("key", key).Str("source", "environment")
		if strings.Contains(strings.ToLower(key), "password") {
			event.Bool("sensitive", true).Msg("using environment variable")
		} else {
			event.Str("value", value).Msg("using environment variable")
		}
		return value
	}
	logDefault(logger, key)
	return defaultValue
}

// ParseInt reads an integer environment variable, falling back to the
// default on absence or parse failure.
func ParseInt(key string, defaultValue int) int {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			logger.Debug().Str("key", key).Int("value", i).
				Str("source", "environment").Msg("using environment variable")
			return i
		}
		logger.Warn().Str("key", key).Str("value", v).
			Msg("invalid integer, using default")
	}
	logDefault(logger, key)
	return defaultValue
}

// ParseFloat reads a float environment variable, falling back to the
// default on absence or parse failure.
func ParseFloat(key string, defaultValue float64) float64 {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			logger.Debug().Str("key", key).Float64("value", f).
				Str("source", "environment").Msg("using environment variable")
			return f
		}
		logger.Warn().Str("key", key).Str("value", v).
			Msg("invalid float, using default")
	}
	logDefault(logger, key)
	return defaultValue
}

// ParseDuration reads a duration environment variable in Go syntax,
// falling back to the default on absence or parse failure.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := log.WithComponent("config")
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			logger.Debug().Str("key", key).Dur("value", d).
				Str("source", "environment").Msg("using environment variable")
			return d
		}
		logger.Warn().Str("key", key).Str("value", v).
			Msg("invalid duration, using default")
	}
	logDefault(logger, key)
	return defaultValue
}

func logDefault(logger zerolog.Logger, key string) {
	logger.Debug().Str("key", key).Str("source", "default").Msg("using default value")
}
