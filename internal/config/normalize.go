package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeINaturalist()
	c.normalizeBatch()
	c.normalizeOrganize()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.JournalDir) == "" {
		c.Paths.JournalDir = defaultJournalDir
	}
	if c.Paths.JournalDir, err = expandPath(c.Paths.JournalDir); err != nil {
		return fmt.Errorf("paths.journal_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeINaturalist() {
	c.INaturalist.AccessToken = strings.TrimSpace(c.INaturalist.AccessToken)
	if c.INaturalist.AccessToken == "" {
		if value, ok := os.LookupEnv("INAT_ACCESS_TOKEN"); ok {
			c.INaturalist.AccessToken = strings.TrimSpace(value)
		}
	}
	c.INaturalist.BaseURL = strings.TrimSpace(c.INaturalist.BaseURL)
	if c.INaturalist.BaseURL == "" {
		c.INaturalist.BaseURL = defaultINatBaseURL
	}
	c.INaturalist.BaseURL = strings.TrimRight(c.INaturalist.BaseURL, "/")
	if c.INaturalist.RequestTimeout <= 0 {
		c.INaturalist.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeBatch() {
	if c.Batch.DelaySeconds < 0 {
		c.Batch.DelaySeconds = 0
	}
	if c.Batch.CheckpointEvery <= 0 {
		c.Batch.CheckpointEvery = defaultCheckpointEvery
	}
}

func (c *Config) normalizeOrganize() {
	if strings.TrimSpace(c.Organize.UnknownSubfamily) == "" {
		c.Organize.UnknownSubfamily = defaultUnknownSubfamily
	}
	if strings.TrimSpace(c.Organize.UnknownTribe) == "" {
		c.Organize.UnknownTribe = defaultUnknownTribe
	}
	if strings.TrimSpace(c.Organize.UnknownGenus) == "" {
		c.Organize.UnknownGenus = defaultUnknownGenus
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
