// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/substancelab/changelogger/internal/logging"
)

// DefaultDomain is the GitHub host used when none is configured.
const DefaultDomain = "github.com"

// Config holds all configuration parameters for the application.
type Config struct {
	GitHub GitHubConfig
	Log    LogConfig
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token  string
	Domain string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// LoadDotEnv loads variables from the given .env files, or ./.env when none
// are given. Variables already set in the environment win. Missing files
// are ignored.
func LoadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from environment variables and, when
// flags is non-nil, from the "domain" and "log-level" flags. A flag that was
// set on the command line takes precedence over the environment.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Only explicit bindings: with AutomaticEnv "github.token" would also
	// resolve to GITHUB_TOKEN ahead of the personal access token.
	// The first variable that is set wins.
	v.BindEnv("github.token", "GITHUB_PERSONAL_ACCESS_TOKEN", "GITHUB_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")
	v.BindEnv("log.level", "LOG_LEVEL")

	v.SetDefault("github.domain", DefaultDomain)
	v.SetDefault("log.level", string(logging.DefaultLevel))

	if flags != nil {
		if err := bindFlag(v, flags, "github.domain", "domain"); err != nil {
			return nil, err
		}
		if err := bindFlag(v, flags, "log.level", "log-level"); err != nil {
			return nil, err
		}
	}

	config := &Config{
		GitHub: GitHubConfig{
			Token:  strings.TrimSpace(v.GetString("github.token")),
			Domain: strings.TrimSpace(v.GetString("github.domain")),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}
	if config.GitHub.Domain == "" {
		config.GitHub.Domain = DefaultDomain
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	logging.Debug("configuration loaded",
		"github_domain", config.GitHub.Domain,
		"github_token", logging.MaskSensitive(config.GitHub.Token),
		"log_level", config.Log.Level)

	return config, nil
}

func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) error {
	flag := flags.Lookup(name)
	if flag == nil {
		return nil
	}
	if err := v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("failed to bind flag %q: %w", name, err)
	}
	return nil
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(config *Config) error {
	var missingVars []string

	if config.GitHub.Token == "" {
		missingVars = append(missingVars, "GITHUB_PERSONAL_ACCESS_TOKEN (or GITHUB_TOKEN)")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}
