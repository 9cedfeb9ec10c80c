// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

// tablebot is an autonomous player for the dolsoe-poker game server.
// It joins one table under one name, polls the table state, and acts
// exactly once per turn addressed to it, until interrupted. On SIGINT
// or SIGTERM it gives up its seat before exiting.
//
// Configuration is read from --config or TABLEBOT_CONFIG (YAML or
// JSONC); flags override individual fields. Logs are text on a
// terminal and JSON otherwise.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/dolsoe-poker/tablebot/lib/config"
	"github.com/dolsoe-poker/tablebot/lib/process"
	"github.com/dolsoe-poker/tablebot/lib/version"
	"github.com/dolsoe-poker/tablebot/seat"
	"github.com/dolsoe-poker/tablebot/strategy"
	"github.com/dolsoe-poker/tablebot/table"
	"github.com/dolsoe-poker/tablebot/turnloop"
)

// leaveTimeout bounds the best-effort leave on shutdown.
const leaveTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	options, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if options.showVersion {
		version.Print("tablebot")
		return nil
	}

	cfg, err := options.loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(os.Stderr, options.logLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return play(ctx, cfg, logger)
}

// play seats the bot and runs the loop until ctx ends, then leaves the
// table.
func play(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client, err := table.NewClient(table.ClientConfig{
		ServerURL:      cfg.Server.URL,
		RequestTimeout: cfg.Server.RequestTimeout,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	policy := buildPolicy(cfg.Policy)
	identity := seat.Identity{
		Name:     cfg.Identity.Name,
		Emoji:    cfg.Identity.Emoji,
		Version:  cfg.Identity.Version,
		Strategy: cfg.Identity.Strategy,
		Repo:     cfg.Identity.Repo,
		Bio:      cfg.Identity.Bio,
	}
	if identity.Version == "" {
		identity.Version = version.Short()
	}
	if identity.Strategy == "" {
		identity.Strategy = policy.Name()
	}

	manager, err := seat.New(seat.Config{
		Identity:        identity,
		TableID:         cfg.Table.ID,
		API:             client,
		MinJoinInterval: cfg.Timing.JoinMinInterval,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	defer manager.Close()

	loop, err := turnloop.New(turnloop.Config{
		API:               client,
		Session:           manager,
		Policy:            policy,
		PollCadence:       cfg.Timing.PollCadence,
		JoinRetryDelay:    cfg.Timing.JoinRetryDelay,
		BackoffBase:       cfg.Timing.BackoffBase,
		BackoffMax:        cfg.Timing.BackoffMax,
		BackoffMultiplier: cfg.Timing.BackoffMultiplier,
		FailureThreshold:  cfg.Timing.FailureThreshold,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting",
		"version", version.Info(),
		"server", cfg.Server.URL,
		"table_id", cfg.Table.ID,
		"name", identity.Name,
		"policy", policy.Name(),
	)
	if err := loop.Start(ctx); err != nil {
		return err
	}

	runErr := loop.Run(ctx)
	leave(client, manager, logger)
	return runErr
}

// leave gives up the seat on a fresh context, since the run context is
// already cancelled at shutdown. Failure is logged and otherwise
// ignored; the server reaps idle seats on its own.
func leave(client *table.Client, manager *seat.Manager, logger *slog.Logger) {
	if !manager.HasToken() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
	defer cancel()

	err := client.Leave(ctx, table.LeaveRequest{
		Name:    manager.Identity().Name,
		TableID: manager.TableID(),
		Token:   manager.Token(),
	})
	if err != nil {
		logger.Warn("leaving table failed", "error", err)
		return
	}
	logger.Info("left table")
}

func buildPolicy(cfg config.PolicyConfig) strategy.Policy {
	if cfg.Name == config.PolicyPassive {
		return strategy.Passive{}
	}
	return strategy.NewHandStrength(strategy.HandStrengthConfig{
		Style:   strategy.Styles[cfg.Style],
		Samples: cfg.Samples,
		Seed:    cfg.Seed,
	})
}

// usage is printed for --help.
func usage(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `tablebot plays one seat at a dolsoe-poker table.

Usage:
  tablebot [flags]

Examples:
  # Join the public table with defaults
  tablebot --name 돌쇠 --emoji 🐻

  # Practice against a local server with a config file
  TABLEBOT_CONFIG=dev.yaml tablebot --log-level debug

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
