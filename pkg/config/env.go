package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment names used across the application
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// GetEnv returns the value of an environment variable or a default
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// RequireEnv returns the value of an environment variable or panics.
// Use only during startup for configuration that has no sensible default.
func RequireEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return value
}

// GetEnvironment returns the normalized current environment,
// defaulting to development
func GetEnvironment() string {
	env := strings.ToLower(os.Getenv("MAESTRANZA_SERVER_ENVIRONMENT"))
	switch env {
	case EnvProduction, EnvStaging, EnvDevelopment:
		return env
	default:
		return EnvDevelopment
	}
}

// IsDevelopment returns true if running in development
func IsDevelopment() bool {
	return GetEnvironment() == EnvDevelopment
}

// IsStaging returns true if running in staging
func IsStaging() bool {
	return GetEnvironment() == EnvStaging
}

// IsProduction returns true if running in production
func IsProduction() bool {
	return GetEnvironment() == EnvProduction
}

// IsProductionLike returns true for production and staging
func IsProductionLike() bool {
	env := GetEnvironment()
	return env == EnvProduction || env == EnvStaging
}
