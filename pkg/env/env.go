// Package env holds the pre-config environment reads that run before
// envconfig has loaded, such as picking the log format for the bootstrap
// logger.
package env

import "os"

// Get reads key from the environment, falling back when unset or empty.
func Get(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}
