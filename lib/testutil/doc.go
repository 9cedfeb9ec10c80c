// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] bound a channel wait with a
// wall-clock timeout so a hung goroutine fails the test instead of
// hanging it. They are the only place tests use the real clock; loop
// timing itself runs on lib/clock fakes.
//
// [UniqueID] generates increasing identifiers, used for table and
// player names that must not collide between tests sharing a fake
// server.
//
// Helpers call t.Fatalf on failure rather than returning errors.
package testutil
