// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP I/O and network error helpers.
//
// ReadResponse bounds response body reads at MaxResponseSize so a
// misbehaving server cannot make the client allocate without limit.
// IsConnectionError classifies errors that mean the request never got
// a usable answer: refused or reset connections, timeouts, truncated
// bodies.
package netutil

import (
	"io"
)

// MaxResponseSize is the bound on JSON API response body reads: 8 MB.
// Table state responses are a few kilobytes; the bound exists only to
// stop a pathological response from exhausting memory.
const MaxResponseSize int64 = 8 << 20

// ReadResponse reads a JSON API response body up to MaxResponseSize
// bytes. Use instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}
