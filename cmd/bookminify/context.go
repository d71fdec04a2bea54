package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"bookminify/internal/config"
	"bookminify/internal/logging"
)

// annotationNoConfig marks commands that must run without a loadable config.
const annotationNoConfig = "bookminify/no-config"

// commandContext carries state shared by every subcommand of one invocation.
// Config and logger are built on first use.
type commandContext struct {
	configPath string

	loadOnce sync.Once
	cfg      *config.Config
	loadErr  error

	logOnce sync.Once
	log     *slog.Logger
	logErr  error
}

func (c *commandContext) flagPath() string {
	return strings.TrimSpace(c.configPath)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.loadOnce.Do(func() {
		cfg, _, _, err := config.Load(c.flagPath())
		if err == nil {
			err = cfg.EnsureDirectories()
		}
		if err != nil {
			c.loadErr = err
			return
		}
		c.cfg = cfg
	})
	return c.cfg, c.loadErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logErr = err
			return
		}
		c.log, c.logErr = logging.NewFromConfig(cfg)
	})
	return c.log, c.logErr
}

func noConfig() map[string]string {
	return map[string]string{annotationNoConfig: "true"}
}

func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationNoConfig] == "true" {
			return false
		}
	}
	return true
}
