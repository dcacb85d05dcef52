// Package config loads run settings from YAML over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"openbanking/internal/browser"
	"openbanking/internal/logging"
	"openbanking/internal/wait"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Browser browser.Config `yaml:"browser"`
	Timing  Timing         `yaml:"timing"`
	Poll    wait.Policy    `yaml:"poll"`
	Log     logging.Config `yaml:"log"`
}

// Timing holds the fixed pauses of a run.
type Timing struct {
	ListingSettle time.Duration `yaml:"listing_settle"`
	PageSettle    time.Duration `yaml:"page_settle"`
	ScrollPause   time.Duration `yaml:"scroll_pause"`
}

func Default() Config {
	return Config{
		Browser: browser.Config{
			Headless:        true,
			Stealth:         true,
			PageLoadTimeout: 40 * time.Second,
		},
		Timing: Timing{
			ListingSettle: 5 * time.Second,
			PageSettle:    4 * time.Second,
			ScrollPause:   2 * time.Second,
		},
		Poll: wait.Policy{
			Interval:    250 * time.Millisecond,
			MaxInterval: 2 * time.Second,
			Attempts:    8,
		},
		Log: logging.Config{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over Default. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Timing.ListingSettle < 0 || c.Timing.PageSettle < 0 || c.Timing.ScrollPause < 0 {
		errs = append(errs, errors.New("timing values must not be negative"))
	}
	if c.Poll.Attempts < 0 {
		errs = append(errs, errors.New("poll.attempts must not be negative"))
	}
	if c.Poll.Interval < 0 || c.Poll.MaxInterval < 0 {
		errs = append(errs, errors.New("poll intervals must not be negative"))
	}
	if c.Browser.PageLoadTimeout < 0 {
		errs = append(errs, errors.New("browser.page_load_timeout must not be negative"))
	}
	return errors.Join(errs...)
}
