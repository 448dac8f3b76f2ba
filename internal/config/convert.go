package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-quoter/internal/api"
	"github.com/rickgao/kalshi-quoter/internal/eligibility"
	"github.com/rickgao/kalshi-quoter/internal/model"
	"github.com/rickgao/kalshi-quoter/internal/order"
	"github.com/rickgao/kalshi-quoter/internal/pricing"
	"github.com/rickgao/kalshi-quoter/internal/scanner"
)

// Environment returns the configured venue environment.
func (c *Config) Environment() (api.Environment, error) {
	return api.ParseEnvironment(c.API.Environment)
}

// ScannerConfig converts the quoter section.
func (c *Config) ScannerConfig() (scanner.Config, error) {
	q := c.Quoter
	cfg := scanner.Config{
		Mode:              scanner.Mode(strings.ToLower(q.Mode)),
		Series:            q.Series,
		PageSize:          q.PageSize,
		Status:            q.Status,
		ContractsPerOrder: q.ContractsPerOrder,
		Throttle:          q.Throttle,
		SweepInterval:     q.SweepInterval,
		TradedReset:       scanner.ResetPolicy(strings.ToLower(q.TradedReset)),
	}

	if len(q.ExcludeSides) > 0 {
		cfg.ExcludeSides = make(map[string][]model.Side, len(q.ExcludeSides))
		for series, sides := range q.ExcludeSides {
			for _, s := range sides {
				side, ok := model.ParseSide(s)
				if !ok {
					return scanner.Config{}, fmt.Errorf("quoter.exclude_sides.%s: unknown side %q", series, s)
				}
				cfg.ExcludeSides[series] = append(cfg.ExcludeSides[series], side)
			}
		}
	}

	return cfg, nil
}

// EligibilityConfig converts the eligibility section. Title exclusions come
// from the quoter section.
func (c *Config) EligibilityConfig() eligibility.Config {
	cfg := eligibility.Config{
		DefaultLeadTime: c.Eligibility.DefaultLeadTime,
		ExcludeTitles:   c.Quoter.ExcludeTitles,
	}
	if c.Eligibility.Lookahead != nil {
		cfg.Lookahead = *c.Eligibility.Lookahead
	}
	for _, cl := range c.Eligibility.ClassLeadTimes {
		cfg.ClassLeadTimes = append(cfg.ClassLeadTimes, eligibility.ClassLeadTime{
			Match:    cl.Match,
			LeadTime: cl.LeadTime,
		})
	}
	return cfg
}

// DispatcherConfig converts the order settings.
func (c *Config) DispatcherConfig() order.Config {
	return order.Config{
		DryRun:  c.Quoter.DryRun,
		Timeout: c.API.Timeout,
	}
}

// PricingPolicy builds the rule table. Rules and bounds not set in the file
// come from the preset.
func (c *Config) PricingPolicy() (*pricing.Policy, error) {
	p := c.Pricing

	var rules []pricing.Rule
	var bounds pricing.Bounds
	switch strings.ToLower(p.Preset) {
	case PresetContinuous:
		rules, bounds = pricing.ContinuousRules(), pricing.ContinuousBounds()
	case PresetOneShot:
		rules, bounds = pricing.OneShotRules(), pricing.OneShotBounds()
	default:
		return nil, fmt.Errorf("pricing.preset: unknown preset %q", p.Preset)
	}

	if len(p.Rules) > 0 {
		rules = make([]pricing.Rule, 0, len(p.Rules))
		for i, rc := range p.Rules {
			r, err := rc.toRule()
			if err != nil {
				return nil, fmt.Errorf("pricing.rules[%d]: %w", i, err)
			}
			rules = append(rules, r)
		}
	}

	if p.MinPrice != 0 {
		bounds.Min = p.MinPrice
	}
	if p.MaxPrice != 0 {
		bounds.Max = p.MaxPrice
	}
	if p.LenientSpread != nil {
		bounds.LenientSpread = *p.LenientSpread
	}

	return pricing.NewPolicy(rules, bounds)
}

func (rc RuleConfig) toRule() (pricing.Rule, error) {
	r := pricing.Rule{
		Name: rc.Name,
		Match: pricing.Match{
			Class:     rc.Class,
			MinSpread: rc.MinSpread,
			MaxSpread: rc.MaxSpread,
			BidAbove:  rc.BidAbove,
		},
		Method:   pricing.Method(strings.ToLower(rc.Method)),
		Rounding: pricing.Rounding(strings.ToLower(rc.Rounding)),
		Offset:   rc.Offset,
		Expiry: pricing.Expiry{
			After:       rc.ExpiryAfter,
			BeforeEvent: rc.ExpiryBeforeEvent,
		},
	}

	if rc.Side != "" {
		side, ok := model.ParseSide(rc.Side)
		if !ok {
			return pricing.Rule{}, fmt.Errorf("unknown side %q", rc.Side)
		}
		r.Match.Side = side
	}

	if r.Method == pricing.MethodPercent {
		pct, err := decimal.NewFromString(strings.TrimSpace(rc.Percent))
		if err != nil {
			return pricing.Rule{}, fmt.Errorf("percent %q: %w", rc.Percent, err)
		}
		r.Percent = pct
	}

	return r, nil
}
