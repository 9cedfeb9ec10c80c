// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config
// file path.
const EnvConfigPath = "TABLEBOT_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for runs against a local or staging server.
	Development Environment = "development"
	// Production is for the public table.
	Production Environment = "production"
)

// Config is the complete tablebot configuration.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	Server   ServerConfig   `yaml:"server"`
	Identity IdentityConfig `yaml:"identity"`
	Table    TableConfig    `yaml:"table"`
	Timing   TimingConfig   `yaml:"timing"`
	Policy   PolicyConfig   `yaml:"policy"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *Overrides `yaml:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides contains the sections that may differ per environment.
type Overrides struct {
	Server *ServerConfig `yaml:"server,omitempty"`
	Timing *TimingConfig `yaml:"timing,omitempty"`
	Policy *PolicyConfig `yaml:"policy,omitempty"`
}

// ServerConfig locates the game server.
type ServerConfig struct {
	// URL is the server base URL. Default: https://dolsoe-poker.onrender.com
	URL string `yaml:"url"`

	// RequestTimeout bounds one HTTP exchange. Default: 15s
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// IdentityConfig is how the bot presents itself.
type IdentityConfig struct {
	// Name is the seat key and must be unique at the table.
	Name  string `yaml:"name"`
	Emoji string `yaml:"emoji"`

	// Version, Strategy, Repo and Bio are shown on the server's bot
	// profile page.
	Version  string `yaml:"version"`
	Strategy string `yaml:"strategy"`
	Repo     string `yaml:"repo"`
	Bio      string `yaml:"bio"`
}

// TableConfig selects the table.
type TableConfig struct {
	// ID is the table identifier. Default: mersoom
	ID string `yaml:"id"`
}

// TimingConfig holds the sync loop's timing knobs.
type TimingConfig struct {
	// PollCadence is the steady delay between polls. Default: 2s
	PollCadence time.Duration `yaml:"poll_cadence"`

	// JoinRetryDelay is the delay between failed joins. Default: 3s
	JoinRetryDelay time.Duration `yaml:"join_retry_delay"`

	// BackoffBase, BackoffMax and BackoffMultiplier shape the wait
	// after generic failures. Defaults: 2s, 30s, 1.5
	BackoffBase       time.Duration `yaml:"backoff_base"`
	BackoffMax        time.Duration `yaml:"backoff_max"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`

	// FailureThreshold is the consecutive failure count that forces
	// a re-join. Default: 5
	FailureThreshold int `yaml:"failure_threshold"`

	// JoinMinInterval spaces join requests. The server allows ten
	// joins per minute per address. Default: 6s
	JoinMinInterval time.Duration `yaml:"join_min_interval"`
}

// PolicyConfig selects the decision policy.
type PolicyConfig struct {
	// Name is "hand-strength" or "passive". Default: hand-strength
	Name string `yaml:"name"`

	// Style is the hand-strength betting style: aggressive, tight,
	// loose, or maniac. Default: tight
	Style string `yaml:"style"`

	// Seed makes hand-strength decisions reproducible. Zero is random.
	Seed uint64 `yaml:"seed"`

	// Samples is the number of rollouts per decision. Zero takes the
	// policy default.
	Samples int `yaml:"samples"`
}

// Policy names.
const (
	PolicyHandStrength = "hand-strength"
	PolicyPassive      = "passive"
)

var styles = []string{"aggressive", "tight", "loose", "maniac"}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Environment: Production,
		Server: ServerConfig{
			URL:            "https://dolsoe-poker.onrender.com",
			RequestTimeout: 15 * time.Second,
		},
		Identity: IdentityConfig{
			Name:     "tablebot",
			Emoji:    "🤖",
			Strategy: PolicyHandStrength,
		},
		Table: TableConfig{ID: "mersoom"},
		Timing: TimingConfig{
			PollCadence:       2 * time.Second,
			JoinRetryDelay:    3 * time.Second,
			BackoffBase:       2 * time.Second,
			BackoffMax:        30 * time.Second,
			BackoffMultiplier: 1.5,
			FailureThreshold:  5,
			JoinMinInterval:   6 * time.Second,
		},
		Policy: PolicyConfig{
			Name:  PolicyHandStrength,
			Style: "tight",
		},
	}
}

// Load loads the file named by TABLEBOT_CONFIG, or returns the
// defaults when the variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, layered over
// the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile decodes one file into the current config. JSONC files are
// stripped to plain JSON first; JSON is valid YAML, so one decoder
// serves both.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides merges the section for the current
// environment. Zero fields in the section leave the base value alone.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if server := overrides.Server; server != nil {
		setString(&c.Server.URL, server.URL)
		setDuration(&c.Server.RequestTimeout, server.RequestTimeout)
	}

	if timing := overrides.Timing; timing != nil {
		setDuration(&c.Timing.PollCadence, timing.PollCadence)
		setDuration(&c.Timing.JoinRetryDelay, timing.JoinRetryDelay)
		setDuration(&c.Timing.BackoffBase, timing.BackoffBase)
		setDuration(&c.Timing.BackoffMax, timing.BackoffMax)
		setDuration(&c.Timing.JoinMinInterval, timing.JoinMinInterval)
		if timing.BackoffMultiplier != 0 {
			c.Timing.BackoffMultiplier = timing.BackoffMultiplier
		}
		if timing.FailureThreshold != 0 {
			c.Timing.FailureThreshold = timing.FailureThreshold
		}
	}

	if policy := overrides.Policy; policy != nil {
		setString(&c.Policy.Name, policy.Name)
		setString(&c.Policy.Style, policy.Style)
		if policy.Seed != 0 {
			c.Policy.Seed = policy.Seed
		}
		if policy.Samples != 0 {
			c.Policy.Samples = policy.Samples
		}
	}
}

func setString(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func setDuration(target *time.Duration, value time.Duration) {
	if value != 0 {
		*target = value
	}
}

func (c *Config) expandVariables() {
	c.Server.URL = expandVars(c.Server.URL)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}

	if c.Server.URL == "" {
		errs = append(errs, fmt.Errorf("server.url is required"))
	} else if !strings.HasPrefix(c.Server.URL, "http://") && !strings.HasPrefix(c.Server.URL, "https://") {
		errs = append(errs, fmt.Errorf("server.url must be http or https, got %q", c.Server.URL))
	}
	if c.Server.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.request_timeout must not be negative"))
	}

	if c.Identity.Name == "" {
		errs = append(errs, fmt.Errorf("identity.name is required"))
	}
	if c.Table.ID == "" {
		errs = append(errs, fmt.Errorf("table.id is required"))
	}

	for _, field := range []struct {
		name  string
		value time.Duration
	}{
		{"timing.poll_cadence", c.Timing.PollCadence},
		{"timing.join_retry_delay", c.Timing.JoinRetryDelay},
		{"timing.backoff_base", c.Timing.BackoffBase},
		{"timing.backoff_max", c.Timing.BackoffMax},
	} {
		if field.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", field.name))
		}
	}
	if c.Timing.BackoffMax < c.Timing.BackoffBase {
		errs = append(errs, fmt.Errorf("timing.backoff_max (%v) is below timing.backoff_base (%v)", c.Timing.BackoffMax, c.Timing.BackoffBase))
	}
	if c.Timing.BackoffMultiplier < 1 {
		errs = append(errs, fmt.Errorf("timing.backoff_multiplier must be at least 1, got %v", c.Timing.BackoffMultiplier))
	}
	if c.Timing.FailureThreshold < 1 {
		errs = append(errs, fmt.Errorf("timing.failure_threshold must be at least 1, got %d", c.Timing.FailureThreshold))
	}
	if c.Timing.JoinMinInterval < 0 {
		errs = append(errs, fmt.Errorf("timing.join_min_interval must not be negative"))
	}

	switch c.Policy.Name {
	case PolicyHandStrength, PolicyPassive:
	default:
		errs = append(errs, fmt.Errorf("policy.name must be %q or %q, got %q", PolicyHandStrength, PolicyPassive, c.Policy.Name))
	}
	if c.Policy.Name == PolicyHandStrength && !contains(styles, c.Policy.Style) {
		errs = append(errs, fmt.Errorf("policy.style must be one of %v, got %q", styles, c.Policy.Style))
	}
	if c.Policy.Samples < 0 {
		errs = append(errs, fmt.Errorf("policy.samples must not be negative"))
	}

	return errors.Join(errs...)
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
