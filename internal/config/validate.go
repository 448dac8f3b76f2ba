package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if _, err := c.Environment(); err != nil {
		return fmt.Errorf("api.environment: %w", err)
	}
	if c.API.KeyID == "" {
		return errors.New("api.key_id is required")
	}
	if c.API.PrivateKeyPath == "" {
		return errors.New("api.private_key_path is required")
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must be >= 0")
	}

	if err := c.Quoter.validate(); err != nil {
		return err
	}
	if _, err := c.ScannerConfig(); err != nil {
		return err
	}

	if c.Eligibility.Lookahead != nil && *c.Eligibility.Lookahead < 0 {
		return errors.New("eligibility.lookahead must be >= 0")
	}
	if c.Eligibility.DefaultLeadTime < 0 {
		return errors.New("eligibility.default_lead_time must be >= 0")
	}
	for i, cl := range c.Eligibility.ClassLeadTimes {
		if cl.Match == "" {
			return fmt.Errorf("eligibility.class_lead_times[%d].match is required", i)
		}
		if cl.LeadTime < 0 {
			return fmt.Errorf("eligibility.class_lead_times[%d].lead_time must be >= 0", i)
		}
	}

	if _, err := c.PricingPolicy(); err != nil {
		return err
	}

	if c.Database.Enabled() {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	return nil
}

func (q *QuoterConfig) validate() error {
	switch strings.ToLower(q.Mode) {
	case "once", "continuous":
	default:
		return fmt.Errorf("quoter.mode must be once or continuous, got %q", q.Mode)
	}
	if len(q.Series) == 0 {
		return errors.New("quoter.series must list at least one series")
	}
	for i, s := range q.Series {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("quoter.series[%d] is empty", i)
		}
	}
	if q.PageSize < 1 || q.PageSize > 1000 {
		return fmt.Errorf("quoter.page_size must be between 1 and 1000, got %d", q.PageSize)
	}
	if q.ContractsPerOrder < 1 {
		return errors.New("quoter.contracts_per_order must be >= 1")
	}
	if q.Throttle < 0 {
		return errors.New("quoter.throttle must be >= 0")
	}
	if q.SweepInterval < 0 {
		return errors.New("quoter.sweep_interval must be >= 0")
	}
	switch strings.ToLower(q.TradedReset) {
	case "sweep", "run":
	default:
		return fmt.Errorf("quoter.traded_reset must be sweep or run, got %q", q.TradedReset)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
