// Package config provides configuration management for the sponsor list generator.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ralsponsors/pkg/utils"
)

// Configuration validation errors.
var (
	ErrMissingCredentials     = errors.New("afdian.user_id and afdian.token are required")
	ErrPlaceholderCredentials = errors.New("afdian credentials still contain placeholder values")
	ErrInvalidTimeout         = errors.New("afdian.timeout_sec must be at least 1")
	ErrInvalidPageInterval    = errors.New("afdian.page_interval_ms must be non-negative")
	ErrMissingAPIURL          = errors.New("afdian.api_url is required")
	ErrInvalidAPIURL          = errors.New("afdian.api_url must be an absolute http(s) URL")
	ErrNoEncodings            = errors.New("csv.encodings must list at least one encoding")
	ErrInvalidColumn          = errors.New("csv column offsets must be non-negative")
	ErrInvalidAvatarMode      = errors.New("avatar.mode must be one of: cdn, passthrough, generate")
	ErrInvalidAvatarSize      = errors.New("avatar.size must be at least 16")
	ErrInvalidFileIDLength    = errors.New("avatar.file_id_length must be at least 1")
	ErrMissingHostedURL       = errors.New("avatar.hosted_url_template must contain {file} when avatar.mode is generate")
	ErrMissingOutputPath      = errors.New("output.path is required")
	ErrInvalidLogLevel        = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrMissingPublishRepo     = errors.New("publish.owner and publish.repo are required")
	ErrMissingPublishToken    = errors.New("publish.token (or GITHUB_TOKEN) is required")
)

// Avatar modes.
const (
	AvatarModeCDN         = "cdn"
	AvatarModePassthrough = "passthrough"
	AvatarModeGenerate    = "generate"
)

// placeholderMarkers flag values copied verbatim from config.example.ini.
var placeholderMarkers = []string{"你的", "your_"}

// Config represents the complete generator configuration.
type Config struct {
	Afdian  AfdianConfig  `yaml:"afdian"`
	CSV     CSVConfig     `yaml:"csv"`
	Avatar  AvatarConfig  `yaml:"avatar"`
	Publish PublishConfig `yaml:"publish"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// AfdianConfig contains open API settings.
type AfdianConfig struct {
	UserID         string `yaml:"user_id"`
	Token          string `yaml:"token"`
	APIURL         string `yaml:"api_url"`
	TimeoutSec     int    `yaml:"timeout_sec"`
	PageIntervalMs int    `yaml:"page_interval_ms"`
}

// GetTimeout returns the per-request timeout.
func (a *AfdianConfig) GetTimeout() time.Duration {
	return time.Duration(a.TimeoutSec) * time.Second
}

// GetPageInterval returns the minimum delay between page requests.
func (a *AfdianConfig) GetPageInterval() time.Duration {
	return time.Duration(a.PageIntervalMs) * time.Millisecond
}

// MaskedUserID returns the first 8 characters of the user id for logging.
func (a *AfdianConfig) MaskedUserID() string {
	r := []rune(a.UserID)
	if len(r) <= 8 {
		return a.UserID
	}

	return string(r[:8]) + "..."
}

// CSVConfig describes the transaction export layout.
type CSVConfig struct {
	Encodings []string      `yaml:"encodings"`
	Columns   ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig holds zero-based field offsets in the export.
type ColumnsConfig struct {
	URL      int `yaml:"url"`
	Bio      int `yaml:"bio"`
	Username int `yaml:"username"`
	TierName int `yaml:"tier_name"`
	Amount   int `yaml:"amount"`
	Date     int `yaml:"date"`
}

// AvatarConfig selects and parameterises the avatar strategy.
type AvatarConfig struct {
	Mode              string   `yaml:"mode"`
	DefaultURL        string   `yaml:"default_url"`
	CDNTemplate       string   `yaml:"cdn_template"`
	OutputDir         string   `yaml:"output_dir"`
	HostedURLTemplate string   `yaml:"hosted_url_template"`
	Fonts             []string `yaml:"fonts"`
	Size              int      `yaml:"size"`
	FileIDLength      int      `yaml:"file_id_length"`
}

// PublishConfig points at the repository hosting generated avatars.
type PublishConfig struct {
	Owner   string `yaml:"owner"`
	Repo    string `yaml:"repo"`
	Branch  string `yaml:"branch"`
	Path    string `yaml:"path"`
	Token   string `yaml:"token"`
	Message string `yaml:"message"`
}

// OutputConfig defines output behavior.
type OutputConfig struct {
	Path         string `yaml:"path"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	PrettyPrint  bool   `yaml:"pretty_print"`
	CreateBackup bool   `yaml:"create_backup"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a configuration matching the afdian export format and the launcher's expectations.
func Default() *Config {
	return &Config{
		Afdian: AfdianConfig{
			APIURL:     "https://afdian.com/api/open/query-sponsor",
			TimeoutSec: 30,
		},
		CSV: CSVConfig{
			Encodings: []string{"utf-8-sig", "utf-8", "gbk", "gb18030"},
			Columns: ColumnsConfig{
				URL:      2,
				Bio:      3,
				Username: 4,
				TierName: 6,
				Amount:   7,
				Date:     17,
			},
		},
		Avatar: AvatarConfig{
			Mode:              AvatarModeCDN,
			DefaultURL:        "https://pic1.afdiancdn.com/default/avatar/avatar-purple.png",
			CDNTemplate:       "https://pic1.afdiancdn.com/user/{user_id}/avatar/{user_id}_w.jpeg",
			OutputDir:         "avatars",
			HostedURLTemplate: "https://raw.githubusercontent.com/RotatingArt/RAL-Sponsors/main/avatars/{file}",
			Size:              256,
			FileIDLength:      8,
		},
		Publish: PublishConfig{
			Branch:  "main",
			Path:    "avatars",
			Message: "Update sponsor avatars",
		},
		Output: OutputConfig{
			Path:        "sponsors.json",
			Name:        "RAL Sponsors",
			Description: "RotatingArt Launcher 赞助者名单",
			PrettyPrint: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file layered over Default().
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the settings every command relies on.
func (c *Config) Validate() error {
	if c.Afdian.APIURL == "" {
		return ErrMissingAPIURL
	}

	if !utils.NewHTTPHelper().IsValidURL(c.Afdian.APIURL) {
		return fmt.Errorf("%w: %q", ErrInvalidAPIURL, c.Afdian.APIURL)
	}

	if c.Afdian.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Afdian.PageIntervalMs < 0 {
		return ErrInvalidPageInterval
	}

	if len(c.CSV.Encodings) == 0 {
		return ErrNoEncodings
	}

	cols := map[string]int{
		"url":       c.CSV.Columns.URL,
		"bio":       c.CSV.Columns.Bio,
		"username":  c.CSV.Columns.Username,
		"tier_name": c.CSV.Columns.TierName,
		"amount":    c.CSV.Columns.Amount,
		"date":      c.CSV.Columns.Date,
	}

	for name, offset := range cols {
		if offset < 0 {
			return fmt.Errorf("%w: csv.columns.%s=%d", ErrInvalidColumn, name, offset)
		}
	}

	if err := c.Avatar.Validate(); err != nil {
		return err
	}

	if c.Output.Path == "" {
		return ErrMissingOutputPath
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return ErrInvalidLogLevel
	}

	return nil
}

// Validate checks the avatar settings.
func (a *AvatarConfig) Validate() error {
	switch a.Mode {
	case AvatarModeCDN, AvatarModePassthrough, AvatarModeGenerate:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAvatarMode, a.Mode)
	}

	if a.Size < 16 {
		return ErrInvalidAvatarSize
	}

	if a.FileIDLength < 1 {
		return ErrInvalidFileIDLength
	}

	if a.Mode == AvatarModeGenerate && !strings.Contains(a.HostedURLTemplate, "{file}") {
		return ErrMissingHostedURL
	}

	return nil
}

// ValidateAPI checks the credentials needed by the API reader.
func (c *Config) ValidateAPI() error {
	if c.Afdian.UserID == "" || c.Afdian.Token == "" {
		return ErrMissingCredentials
	}

	for _, marker := range placeholderMarkers {
		if strings.Contains(c.Afdian.UserID, marker) || strings.Contains(c.Afdian.Token, marker) {
			return ErrPlaceholderCredentials
		}
	}

	return nil
}

// ValidatePublish checks the settings needed to upload avatars.
func (c *Config) ValidatePublish() error {
	if c.Publish.Owner == "" || c.Publish.Repo == "" {
		return ErrMissingPublishRepo
	}

	if c.Publish.Token == "" {
		return ErrMissingPublishToken
	}

	return nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Avatar: %s, Encodings: %v, Output: %s}",
		c.Avatar.Mode,
		c.CSV.Encodings,
		c.Output.Path,
	)
}
