// Package config loads environment configuration for prepdeck.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file in the working directory.
// A missing file is not an error; already-set variables are never
// overridden.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// UserID returns the configured user identity for remote progress
// sync, or "" when running anonymously.
func UserID() string {
	return os.Getenv("PREPDECK_USER")
}
