// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

// Package turnloop keeps one seat aligned with the server's turn
// state.
//
// A [Loop] is a finite state machine with three phases:
//
//   - [SeekingSession]: join (or re-join) the table through the seat
//     manager; on failure wait JoinRetryDelay and try again.
//   - [Polling]: fetch a snapshot. An error payload or a snapshot
//     that does not list this client as seated sends the loop back to
//     SeekingSession. A turn addressed to this client with a sequence
//     number moves the loop to Acting; anything else waits one
//     PollCadence.
//   - [Acting]: ask the policy for a decision, validate it against the
//     offered actions, and submit it carrying the turn's sequence
//     number. A stale-turn rejection is discarded and the loop polls
//     again immediately.
//
// Each call to [Loop.Step] performs exactly one phase and its trailing
// wait. Every wait goes through the injected clock, so the loop is
// driven deterministically in tests by an auto-advancing fake clock.
//
// Requests are strictly sequential. A sequence number is recorded as
// submitted before the request is sent, and the loop never submits a
// sequence number at or below the last one it submitted, so an
// ambiguous failure can never produce a duplicate action.
//
// Generic failures (connection errors, timeouts, 5xx, undecodable
// payloads, unexpected rejections) increment a consecutive-failure
// counter and wait an exponential [Backoff]. When the counter reaches
// FailureThreshold the loop forces a re-join with the held token. The
// counter resets after any successful poll and when the forced re-join
// is attempted. Rate-limit responses never reach the loop: the table
// client waits them out and re-sends the identical request.
package turnloop
