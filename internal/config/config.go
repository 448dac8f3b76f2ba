// Package config loads the quoter's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Quoter      QuoterConfig      `yaml:"quoter"`
	Eligibility EligibilityConfig `yaml:"eligibility"`
	Pricing     PricingConfig     `yaml:"pricing"`
	Database    DBConfig          `yaml:"database"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// APIConfig selects the venue environment and credentials.
type APIConfig struct {
	Environment    string        `yaml:"environment"` // demo or prod
	KeyID          string        `yaml:"key_id"`
	PrivateKeyPath string        `yaml:"private_key_path"`
	Timeout        time.Duration `yaml:"timeout"`
}

// QuoterConfig controls the scan loop.
type QuoterConfig struct {
	Mode              string              `yaml:"mode"` // once or continuous
	Series            []string            `yaml:"series"`
	ExcludeSides      map[string][]string `yaml:"exclude_sides"`
	ExcludeTitles     []string            `yaml:"exclude_titles"`
	PageSize          int                 `yaml:"page_size"`
	Status            string              `yaml:"status"`
	ContractsPerOrder int                 `yaml:"contracts_per_order"`
	Throttle          time.Duration       `yaml:"throttle"`
	SweepInterval     time.Duration       `yaml:"sweep_interval"`
	TradedReset       string              `yaml:"traded_reset"` // sweep or run
	DryRun            bool                `yaml:"dry_run"`
}

// EligibilityConfig is the quoting window.
type EligibilityConfig struct {
	Lookahead       *time.Duration        `yaml:"lookahead"` // 0 disables the upper bound
	DefaultLeadTime time.Duration         `yaml:"default_lead_time"`
	ClassLeadTimes  []ClassLeadTimeConfig `yaml:"class_lead_times"`
}

// ClassLeadTimeConfig overrides the lead time for tickers containing Match.
type ClassLeadTimeConfig struct {
	Match    string        `yaml:"match"`
	LeadTime time.Duration `yaml:"lead_time"`
}

// PricingConfig is the rule table and price bounds.
type PricingConfig struct {
	// Preset supplies rules and bounds not set explicitly: continuous or oneshot.
	Preset        string       `yaml:"preset"`
	Rules         []RuleConfig `yaml:"rules"`
	MinPrice      int          `yaml:"min_price"`
	MaxPrice      int          `yaml:"max_price"`
	LenientSpread *int         `yaml:"lenient_spread"`
}

// RuleConfig is one pricing rule.
type RuleConfig struct {
	Name              string        `yaml:"name"`
	Class             string        `yaml:"class"`
	Side              string        `yaml:"side"`
	MinSpread         *int          `yaml:"min_spread"`
	MaxSpread         *int          `yaml:"max_spread"`
	BidAbove          *int          `yaml:"bid_above"`
	Method            string        `yaml:"method"`  // percent, offset or skip
	Percent           string        `yaml:"percent"` // decimal string, e.g. "13" or "-6"
	Rounding          string        `yaml:"rounding"`
	Offset            int           `yaml:"offset"`
	ExpiryAfter       time.Duration `yaml:"expiry_after"`
	ExpiryBeforeEvent time.Duration `yaml:"expiry_before_event"`
}

// DBConfig holds the order journal connection. An empty host disables the journal.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Enabled reports whether a journal database is configured.
func (db DBConfig) Enabled() bool {
	return db.Host != ""
}

// MetricsConfig is the health and metrics HTTP server.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// Load reads a YAML file, expands ${VAR} references and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, expands ${VAR} references and applies defaults.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadAndValidate loads the file and validates the result.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
