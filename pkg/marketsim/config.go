package marketsim

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the market simulator
type Config struct {
	// Book settings
	BookName string
	TickSize string // decimal string, e.g. "0.01"

	// Simulation parameters
	MidPrice          float64 // starting mid price in currency units
	NumLevels         int
	BaseSpreadPercent float64
	PriceStepPercent  float64
	OrderSize         int64
	UpdateInterval    time.Duration
	TakerEvery        int // submit a market order every N requotes; 0 disables
	SimulatorID       string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("BOOK_NAME", "BTC-USDT")
	v.SetDefault("TICK_SIZE", "0.01")
	v.SetDefault("MID_PRICE", 100.0)
	v.SetDefault("NUM_LEVELS", 3)
	v.SetDefault("BASE_SPREAD_PERCENT", 0.1)
	v.SetDefault("PRICE_STEP_PERCENT", 0.05)
	v.SetDefault("ORDER_SIZE", 10)
	v.SetDefault("UPDATE_INTERVAL_SECONDS", 1)
	v.SetDefault("TAKER_EVERY", 4)
	v.SetDefault("SIMULATOR_ID", "sim-01")

	// Allow environment variables
	v.AutomaticEnv()

	cfg := &Config{
		BookName:          v.GetString("BOOK_NAME"),
		TickSize:          v.GetString("TICK_SIZE"),
		MidPrice:          v.GetFloat64("MID_PRICE"),
		NumLevels:         v.GetInt("NUM_LEVELS"),
		BaseSpreadPercent: v.GetFloat64("BASE_SPREAD_PERCENT"),
		PriceStepPercent:  v.GetFloat64("PRICE_STEP_PERCENT"),
		OrderSize:         v.GetInt64("ORDER_SIZE"),
		UpdateInterval:    time.Duration(v.GetInt("UPDATE_INTERVAL_SECONDS")) * time.Second,
		TakerEvery:        v.GetInt("TAKER_EVERY"),
		SimulatorID:       v.GetString("SIMULATOR_ID"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.BookName == "" {
		return fmt.Errorf("BOOK_NAME must not be empty")
	}
	if cfg.TickSize == "" {
		return fmt.Errorf("TICK_SIZE must not be empty")
	}
	if cfg.MidPrice <= 0 {
		return fmt.Errorf("MID_PRICE must be positive")
	}
	if cfg.NumLevels <= 0 {
		return fmt.Errorf("NUM_LEVELS must be positive")
	}
	if cfg.BaseSpreadPercent <= 0 {
		return fmt.Errorf("BASE_SPREAD_PERCENT must be positive")
	}
	if cfg.PriceStepPercent <= 0 {
		return fmt.Errorf("PRICE_STEP_PERCENT must be positive")
	}
	if cfg.OrderSize <= 0 {
		return fmt.Errorf("ORDER_SIZE must be positive")
	}
	if cfg.UpdateInterval <= 0 {
		return fmt.Errorf("UPDATE_INTERVAL_SECONDS must be positive")
	}
	if cfg.SimulatorID == "" {
		return fmt.Errorf("SIMULATOR_ID must not be empty")
	}
	return nil
}
