// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/dolsoe-poker/tablebot/lib/config"
)

// options holds parsed command-line flags. Config fields are applied
// over the loaded file only when the flag was given.
type options struct {
	flagSet *pflag.FlagSet

	configPath  string
	server      string
	tableID     string
	name        string
	emoji       string
	policy      string
	style       string
	seed        uint64
	logLevel    string
	showVersion bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	flagSet := pflag.NewFlagSet("tablebot", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to a YAML or JSONC config file (default: $"+config.EnvConfigPath+")")
	flagSet.StringVar(&opts.server, "server", "", "game server base URL")
	flagSet.StringVar(&opts.tableID, "table", "", "table ID to join")
	flagSet.StringVar(&opts.name, "name", "", "player name (the seat key)")
	flagSet.StringVar(&opts.emoji, "emoji", "", "display emoji")
	flagSet.StringVar(&opts.policy, "policy", "", "decision policy: hand-strength or passive")
	flagSet.StringVar(&opts.style, "style", "", "hand-strength style: aggressive, tight, loose, maniac")
	flagSet.Uint64Var(&opts.seed, "seed", 0, "random seed for reproducible decisions")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	flagSet.Usage = func() { usage(flagSet) }
	opts.flagSet = flagSet

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return opts, nil
}

// loadConfig loads the config file (flag, then environment, then
// defaults), applies flag overrides, and validates the result.
func (o *options) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	o.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (o *options) apply(cfg *config.Config) {
	changed := o.flagSet.Changed
	if changed("server") {
		cfg.Server.URL = o.server
	}
	if changed("table") {
		cfg.Table.ID = o.tableID
	}
	if changed("name") {
		cfg.Identity.Name = o.name
	}
	if changed("emoji") {
		cfg.Identity.Emoji = o.emoji
	}
	if changed("policy") {
		cfg.Policy.Name = o.policy
	}
	if changed("style") {
		cfg.Policy.Style = o.style
	}
	if changed("seed") {
		cfg.Policy.Seed = o.seed
	}
}
