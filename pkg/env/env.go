// Package env holds small helpers for process-level overrides that sit
// outside the envconfig-managed TRUESTYLE_ namespace (PORT, LOG_FORMAT).
package env

import "os"

// Get reads key from the environment, falling back when unset or empty.
func Get(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	return v
}
