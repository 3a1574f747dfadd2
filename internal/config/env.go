package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"

	"ralsponsors/pkg/utils"
)

// Environment variables that override file-based settings.
const (
	EnvUserID   = "AFDIAN_USER_ID"
	EnvToken    = "AFDIAN_TOKEN"
	EnvGitHub   = "GITHUB_TOKEN"
	EnvLogLevel = "SPONSORS_LOG_LEVEL"
)

// iniSection is the section name used by config.example.ini.
const iniSection = "afdian"

// LoadEnvFiles loads .env style files into the process environment.
// Files that do not exist are skipped; existing variables are not overwritten.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}

		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}

	return nil
}

// ApplyEnv overrides credentials and log level from the environment.
func (c *Config) ApplyEnv() {
	if v := getenv(EnvUserID); v != "" {
		c.Afdian.UserID = v
	}

	if v := getenv(EnvToken); v != "" {
		c.Afdian.Token = v
	}

	if v := getenv(EnvGitHub); v != "" && c.Publish.Token == "" {
		c.Publish.Token = v
	}

	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// LoadINICredentials reads user_id and token from a legacy config.ini into c.
func (c *Config) LoadINICredentials(path string) error {
	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to read ini file: %w", err)
	}

	section, err := f.GetSection(iniSection)
	if err != nil {
		return fmt.Errorf("%w: missing [%s] section", ErrMissingCredentials, iniSection)
	}

	if v := trim(section.Key("user_id").String()); v != "" {
		c.Afdian.UserID = v
	}

	if v := trim(section.Key("token").String()); v != "" {
		c.Afdian.Token = v
	}

	return nil
}

func getenv(name string) string {
	return trim(os.Getenv(name))
}

func trim(s string) string {
	return utils.NewStringHelper().TrimWhitespace(s)
}
