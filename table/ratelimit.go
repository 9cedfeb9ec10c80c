// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultRetryAfter is the wait applied to a 429 that carries no
// retry-after information at all.
const DefaultRetryAfter = 3 * time.Second

// rateLimitBody is the subset of a 429 body that carries a wait. The
// server uses retry_after_ms for chat cooldowns and cooldown (seconds)
// for the post-bankruptcy join cooldown.
type rateLimitBody struct {
	RetryAfter   *float64 `json:"retry_after"`
	RetryAfterMS *int64   `json:"retry_after_ms"`
	Cooldown     *float64 `json:"cooldown"`
}

// retryAfter computes the wait demanded by a rate-limited response.
// The Retry-After header wins (delta-seconds or HTTP-date), then the
// body fields. Returns fallback when nothing usable is present.
func (c *Client) retryAfter(header http.Header, body []byte) time.Duration {
	if value := strings.TrimSpace(header.Get("Retry-After")); value != "" {
		if seconds, err := strconv.ParseFloat(value, 64); err == nil && seconds >= 0 {
			return time.Duration(seconds * float64(time.Second))
		}
		if when, err := http.ParseTime(value); err == nil {
			if wait := when.Sub(c.clock.Now()); wait > 0 {
				return wait
			}
			return 0
		}
	}

	var parsed rateLimitBody
	if json.Unmarshal(body, &parsed) == nil {
		switch {
		case parsed.RetryAfter != nil && *parsed.RetryAfter >= 0:
			return time.Duration(*parsed.RetryAfter * float64(time.Second))
		case parsed.RetryAfterMS != nil && *parsed.RetryAfterMS >= 0:
			return time.Duration(*parsed.RetryAfterMS) * time.Millisecond
		case parsed.Cooldown != nil && *parsed.Cooldown >= 0:
			return time.Duration(*parsed.Cooldown * float64(time.Second))
		}
	}

	return c.defaultRetryAfter
}
