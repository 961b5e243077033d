// Package env holds small helpers for reading process environment values.
package env

import "os"

// Get reads key from the environment, returning fallback when unset or empty.
func Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
