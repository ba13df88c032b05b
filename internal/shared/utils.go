// Package shared
package shared

import (
	"fmt"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
)

func ExtractAPIKey(c echo.Context) (string, error) {
	// Check Authorization header
	auth := c.Request().Header.Get("Authorization")
	if auth == "" {
		return "", ErrMissingAuth
	}

	// Validate bearer format
	parts := strings.Split(auth, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", ErrInvalidFormat
	}

	return parts[1], nil
}

func SafeEnv(env string) (string, error) {
	// Lookup env variable, and panic if not present
	res, present := os.LookupEnv(env)
	if !present {
		return "", fmt.Errorf("missing environment variable %s", env)
	}
	return res, nil
}

func GetEnv(env, fallback string) string {
	if value, ok := os.LookupEnv(env); ok {
		return value
	}
	return fallback
}

// ValidateGenerationRequest checks the three required fields before any
// upstream call is made.
func ValidateGenerationRequest(req *GenerationRequest) error {
	if req == nil {
		return ErrMissingFields
	}
	if strings.TrimSpace(req.Prompt) == "" ||
		strings.TrimSpace(req.Language) == "" ||
		strings.TrimSpace(req.TaskType) == "" {
		return ErrMissingFields
	}
	return nil
}
