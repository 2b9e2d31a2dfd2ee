// Package config provides Viper-backed configuration helpers shared by
// the CLI commands.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/weconnect/airbase/pkg/airtable"
	"github.com/weconnect/airbase/pkg/errors"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// APIKey retrieves the service API key from Viper configuration or the
// environment. The lowercase "airtable_api_key" config key and the
// AIRTABLE_API_KEY environment variable are both honored.
func APIKey() (string, error) {
	key := GetString(airtable.APIKeyEnvVar)
	if key == "" {
		key = viper.GetString(strings.ToLower(airtable.APIKeyEnvVar))
	}
	if key == "" {
		return "", errors.NewConfigError("api_key",
			"set "+airtable.APIKeyEnvVar+" or add airtable_api_key to the config file",
			errors.ErrAPIKeyRequired)
	}
	return key, nil
}

// HasAPIKey checks whether an API key is configured without validating it.
func HasAPIKey() bool {
	key, err := APIKey()
	return err == nil && key != ""
}
