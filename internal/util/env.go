// Package util provides environment variable parsing helpers for MemberFlow
// configuration.
package util

import (
	"log/slog"
	"os"
	"strings"
)

// ParseBoolEnv reads a boolean environment variable, falling back to def
// when the variable is unset or unparseable. Accepts true/1/yes/on and
// false/0/no/off, case-insensitive, surrounding whitespace ignored.
func ParseBoolEnv(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		slog.Warn("ParseBoolEnv: unrecognized boolean value, using default", "key", key, "value", val, "default", def)
		return def
	}
}
