// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

// Package strategy provides decision policies for the turn loop.
//
// A [Policy] sees the current snapshot and the normalized turn and
// returns a [Decision], or false to pass. Every decision must name an
// offered action kind, and a raise must lie within the offered bounds.
// [Validate] checks that contract; the turn loop applies it before
// submitting and skips the turn on a violation.
//
// [HandStrength] estimates win equity against the live opponents by
// Monte Carlo rollouts scored with github.com/paulhankin/poker, then
// bets according to a [Style]. [Passive] checks when it can and folds
// otherwise, which makes it a deterministic stand-in for tests.
package strategy
