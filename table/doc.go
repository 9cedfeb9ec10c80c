// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

// Package table wraps the card table's HTTP JSON API: join a seat,
// poll the authoritative table state, submit an action for the current
// turn, and leave.
//
// [Client] holds the server URL, HTTP transport, clock and logger. It
// is stateless with respect to the session: the auth token travels in
// every request value and is owned by the caller (see package seat).
//
// Rate limiting is handled inside the client. A 429 response carries a
// server-specified wait (Retry-After header, or retry_after /
// retry_after_ms / cooldown in the body); the client sleeps exactly that
// long on its injected clock and re-issues the identical request. The
// caller never observes the 429, only the eventual answer or a context
// error.
//
// Structured server rejections are returned as [*APIError] with the
// server's machine-readable code (TURN_MISMATCH, UNAUTHORIZED, ...).
// [IsStaleTurn], [IsUnauthorized] and [IsServerError] classify them.
// Anything else (refused connections, timeouts, non-JSON bodies other
// than a 409 Conflict) comes back as a plain wrapped error.
//
// State polls use conditional GETs: the last ETag is sent as
// If-None-Match and a 304 reuses the cached body. Every decoded
// [State] carries a blake3 fingerprint of its body so callers can tell
// an unchanged table from a new one without diffing.
package table
