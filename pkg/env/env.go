// Package env reads one-off process variables that sit outside the
// typed config, such as knobs consulted before config loading.
package env

import (
	"os"
	"strings"
)

// Get returns the named variable, falling back when unset or blank.
func Get(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
