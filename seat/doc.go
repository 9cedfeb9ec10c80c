// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

// Package seat owns table membership for one client identity at one
// table.
//
// A [Manager] is the only writer of the auth token. Join stores the
// token returned by a successful join and leaves any previously held
// token untouched on failure; the caller decides when to retry. The
// token lives in a [secret.Buffer] (mmap-backed, excluded from core
// dumps) and is read through [Manager.Token], which always reflects the
// latest successful join.
//
// Joins are paced by a token-bucket limiter so a run of rapid re-joins
// stays under the server's per-IP join limit. Pacing waits use the
// injected clock.
package seat
