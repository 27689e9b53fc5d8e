// Package env reads process environment variables with fallbacks. Structured
// configuration goes through envconfig; this covers the handful of flat vars
// (PORT and friends) read outside the config structs.
package env

import "os"

// Get returns the variable's value, or fallback when unset or empty.
func Get(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
