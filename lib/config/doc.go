// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for tablebot.
//
// Configuration comes from a single file named by the --config flag or
// the TABLEBOT_CONFIG environment variable. Without either, [Default]
// is used as is. Files ending in .json or .jsonc are read as JSON with
// comments and trailing commas (stripped by github.com/tidwall/jsonc);
// anything else is YAML. Both go through one decoder, so durations are
// written the same way in either format ("2s", "1m30s").
//
// The file may carry development and production sections whose
// non-zero fields override the base values when the environment
// matches. The server URL supports ${VAR} and ${VAR:-default}
// expansion so one file can target a local server during development.
//
// Command-line flags are applied by the caller after loading; see
// cmd/tablebot.
package config
