package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"taxonsort/internal/classify"
	"taxonsort/internal/config"
	"taxonsort/internal/inat"
	"taxonsort/internal/logging"
	"taxonsort/internal/runlog"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// apiClient builds an authenticated iNaturalist client from the loaded config.
func (c *commandContext) apiClient() (*inat.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	token := strings.TrimSpace(cfg.INaturalist.AccessToken)
	if token == "" {
		return nil, fmt.Errorf("no iNaturalist access token configured; set access_token in the config file or export INAT_ACCESS_TOKEN")
	}
	return inat.New(token, cfg.INaturalist.BaseURL,
		inat.WithTimeout(time.Duration(cfg.INaturalist.RequestTimeout)*time.Second))
}

// pipeline assembles the classification pipeline on top of the API client.
func (c *commandContext) pipeline() (*classify.Pipeline, error) {
	client, err := c.apiClient()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return classify.NewPipeline(client, client, logger), nil
}

// journal opens the run journal; a failure disables journaling rather than
// aborting the command.
func (c *commandContext) journal() (*runlog.Store, string) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, ""
	}
	store, err := runlog.Open(cfg)
	if err != nil {
		return nil, fmt.Sprintf("run journal unavailable: %v", err)
	}
	return store, ""
}
