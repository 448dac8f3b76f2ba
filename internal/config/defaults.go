package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultEnvironment       = "demo"
	DefaultAPITimeout        = 10 * time.Second
	DefaultMode              = "continuous"
	DefaultPageSize          = 12
	DefaultStatus            = "open"
	DefaultContractsPerOrder = 100
	DefaultThrottle          = 500 * time.Millisecond
	DefaultSweepInterval     = 100 * time.Second
	DefaultTradedReset       = "sweep"
	DefaultLookahead         = 4 * time.Hour
	DefaultLeadTime          = 90 * time.Minute
	DefaultPricingPreset     = PresetContinuous
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 4
	DefaultMinConns          = 1
	DefaultMetricsPort       = 9090
	DefaultMetricsPath       = "/metrics"
)

// Pricing presets.
const (
	PresetContinuous = "continuous"
	PresetOneShot    = "oneshot"
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.Environment == "" {
		c.API.Environment = DefaultEnvironment
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	// Quoter defaults
	if c.Quoter.Mode == "" {
		c.Quoter.Mode = DefaultMode
	}
	if c.Quoter.PageSize == 0 {
		c.Quoter.PageSize = DefaultPageSize
	}
	if c.Quoter.Status == "" {
		c.Quoter.Status = DefaultStatus
	}
	if c.Quoter.ContractsPerOrder == 0 {
		c.Quoter.ContractsPerOrder = DefaultContractsPerOrder
	}
	if c.Quoter.Throttle == 0 {
		c.Quoter.Throttle = DefaultThrottle
	}
	if c.Quoter.SweepInterval == 0 {
		c.Quoter.SweepInterval = DefaultSweepInterval
	}
	if c.Quoter.TradedReset == "" {
		c.Quoter.TradedReset = DefaultTradedReset
	}

	// Eligibility defaults
	if c.Eligibility.Lookahead == nil {
		d := DefaultLookahead
		c.Eligibility.Lookahead = &d
	}
	if c.Eligibility.DefaultLeadTime == 0 {
		c.Eligibility.DefaultLeadTime = DefaultLeadTime
	}
	if c.Eligibility.ClassLeadTimes == nil {
		c.Eligibility.ClassLeadTimes = []ClassLeadTimeConfig{{Match: "NHL", LeadTime: time.Hour}}
	}

	// Pricing defaults
	if c.Pricing.Preset == "" {
		c.Pricing.Preset = DefaultPricingPreset
	}

	// Database defaults
	if c.Database.Enabled() {
		applyDBDefaults(&c.Database)
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
