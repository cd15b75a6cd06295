// Package config provides YAML-based configuration loading for Carscout.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Carscout configuration, loaded from carscout.yaml.
type Config struct {
	Budget      float64           `yaml:"budget"`
	Store       StoreConfig       `yaml:"store"`
	Fees        FeesConfig        `yaml:"fees"`
	Negotiation NegotiationConfig `yaml:"negotiation"`
	Approval    ApprovalConfig    `yaml:"approval"`
	Notify      NotifyConfig      `yaml:"notify"`
	Dashboard   DashboardConfig   `yaml:"dashboard"`
}

// StoreConfig selects and configures the backing database. The default is a
// local sqlite file; mysql is for a shared install.
type StoreConfig struct {
	Driver   string `yaml:"driver"` // sqlite, mysql
	Path     string `yaml:"path"`   // sqlite only
	Host     string `yaml:"host"`   // mysql only
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// FeesConfig holds the jurisdictional fee table and tax rate.
type FeesConfig struct {
	TaxRate           float64 `yaml:"tax_rate"`
	DealerDocFee      float64 `yaml:"dealer_doc_fee"`
	RegulatoryFee     float64 `yaml:"regulatory_fee"`
	StewardshipFee    float64 `yaml:"stewardship_fee"`
	RegistrationBase  float64 `yaml:"registration_base"`
	NewPlateCost      float64 `yaml:"new_plate_cost"`
	PlateTransferCost float64 `yaml:"plate_transfer_cost"`
}

// NegotiationConfig holds the pricing-strategy knobs.
type NegotiationConfig struct {
	TargetDiscount float64 `yaml:"target_discount"` // off listed price
	MarketDiscount float64 `yaml:"market_discount"` // off market average
	FloorFraction  float64 `yaml:"floor_fraction"`  // of listed price
	FeeReserve     float64 `yaml:"fee_reserve"`     // of budget
	Tolerance      float64 `yaml:"tolerance"`       // near-target acceptance band
	MinExchanges   int     `yaml:"min_exchanges"`   // before near-target acceptance
}

// ApprovalConfig governs the human-approval queue.
type ApprovalConfig struct {
	TTLHours  int    `yaml:"ttl_hours"`  // default expiry for queued actions; 0 = never
	SweepCron string `yaml:"sweep_cron"` // 5-field cron expression for the expiry sweep
}

// NotifyConfig configures the optional chat notification adapter.
type NotifyConfig struct {
	Platform  string `yaml:"platform"` // "", "discord", "slack"
	BotToken  string `yaml:"bot_token"`
	AppToken  string `yaml:"app_token"` // slack socket mode only
	ChannelID string `yaml:"channel_id"`
}

// DashboardConfig configures the local web dashboard.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.Driver == "sqlite" && c.Store.Path == "" {
		c.Store.Path = "carscout.db"
	}
	if c.Store.Driver == "mysql" {
		if c.Store.Host == "" {
			c.Store.Host = "127.0.0.1"
		}
		if c.Store.Port == 0 {
			c.Store.Port = 3306
		}
		if c.Store.Database == "" {
			c.Store.Database = "carscout"
		}
		if c.Store.User == "" {
			c.Store.User = "root"
		}
	}
	if c.Fees.TaxRate == 0 {
		c.Fees.TaxRate = 0.13
	}
	if c.Fees.DealerDocFee == 0 {
		c.Fees.DealerDocFee = 499
	}
	if c.Fees.RegulatoryFee == 0 {
		c.Fees.RegulatoryFee = 10
	}
	if c.Fees.StewardshipFee == 0 {
		c.Fees.StewardshipFee = 20
	}
	if c.Fees.RegistrationBase == 0 {
		c.Fees.RegistrationBase = 32
	}
	if c.Fees.NewPlateCost == 0 {
		c.Fees.NewPlateCost = 59
	}
	if c.Fees.PlateTransferCost == 0 {
		c.Fees.PlateTransferCost = 20
	}
	if c.Negotiation.TargetDiscount == 0 {
		c.Negotiation.TargetDiscount = 0.12
	}
	if c.Negotiation.MarketDiscount == 0 {
		c.Negotiation.MarketDiscount = 0.10
	}
	if c.Negotiation.FloorFraction == 0 {
		c.Negotiation.FloorFraction = 0.75
	}
	if c.Negotiation.FeeReserve == 0 {
		c.Negotiation.FeeReserve = 0.10
	}
	if c.Negotiation.Tolerance == 0 {
		c.Negotiation.Tolerance = 0.03
	}
	if c.Negotiation.MinExchanges == 0 {
		c.Negotiation.MinExchanges = 3
	}
	if c.Approval.TTLHours == 0 {
		c.Approval.TTLHours = 48
	}
	if c.Approval.SweepCron == "" {
		c.Approval.SweepCron = "*/15 * * * *"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Budget <= 0 {
		errs = append(errs, "budget must be positive")
	}
	switch c.Store.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q is not supported (sqlite, mysql)", c.Store.Driver))
	}
	switch c.Notify.Platform {
	case "", "discord", "slack":
	default:
		errs = append(errs, fmt.Sprintf("notify.platform %q is not supported (discord, slack)", c.Notify.Platform))
	}
	if c.Notify.Platform != "" && c.Notify.BotToken == "" {
		errs = append(errs, "notify.bot_token is required when notify.platform is set")
	}
	if c.Notify.Platform == "slack" && c.Notify.AppToken == "" {
		errs = append(errs, "notify.app_token is required for slack")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
