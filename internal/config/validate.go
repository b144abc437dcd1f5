package config

import (
	"errors"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateINaturalist(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateINaturalist() error {
	if strings.TrimSpace(c.INaturalist.BaseURL) == "" {
		return errors.New("inaturalist.base_url must be set")
	}
	if c.INaturalist.RequestTimeout <= 0 {
		return errors.New("inaturalist.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.DelaySeconds < 0 {
		return errors.New("batch.delay_seconds must be >= 0")
	}
	if c.Batch.CheckpointEvery < 1 {
		return errors.New("batch.checkpoint_every must be >= 1")
	}
	return nil
}

func (c *Config) validateOrganize() error {
	for name, value := range map[string]string{
		"organize.unknown_subfamily": c.Organize.UnknownSubfamily,
		"organize.unknown_tribe":     c.Organize.UnknownTribe,
		"organize.unknown_genus":     c.Organize.UnknownGenus,
	} {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return errors.New(name + " must be set")
		}
		if strings.ContainsAny(trimmed, `/\`) {
			return errors.New(name + " must not contain path separators")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.New("logging.format must be console or json")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
	return nil
}
