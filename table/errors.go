// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a structured rejection from the game server.
// Callers can use errors.As to extract it:
//
//	var apiErr *table.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.Code == table.CodeTurnMismatch { ... }
//	}
type APIError struct {
	// StatusCode is the HTTP status code of the response. Rejections
	// reported in a 200 body ({"ok": false}) carry 200.
	StatusCode int
	// Code is the server's machine-readable code, e.g. "TURN_MISMATCH".
	// Empty when the server sent only a message.
	Code string
	// Message is the human-readable description from the server.
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("table: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("table: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Server rejection codes.
const (
	CodeTurnMismatch = "TURN_MISMATCH"
	CodeAlreadyActed = "ALREADY_ACTED"
	CodeNotYourTurn  = "NOT_YOUR_TURN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeCooldown     = "COOLDOWN"
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidInput = "INVALID_INPUT"
	CodeAuthMismatch = "AUTH_MISMATCH"
)

// IsStaleTurn reports whether err rejects an action because the turn it
// targeted is no longer current: a sequence mismatch, an action already
// recorded for that turn, a turn that moved to another player, or a
// bare 409 Conflict.
func IsStaleTurn(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case CodeTurnMismatch, CodeAlreadyActed, CodeNotYourTurn:
		return true
	case "":
		return apiErr.StatusCode == http.StatusConflict
	}
	return false
}

// IsUnauthorized reports whether err rejects the auth token.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == CodeUnauthorized || apiErr.StatusCode == http.StatusUnauthorized
}

// IsServerError reports whether err is a 5xx response.
func IsServerError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 500
}

// IsRejection reports whether err is a structured client-side
// rejection: the server answered and said no (4xx, or ok:false in a
// 2xx body).
func IsRejection(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode < 500
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
