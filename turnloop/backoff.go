// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package turnloop

import "time"

// Backoff is an exponential retry interval: Base, Base*Multiplier,
// Base*Multiplier^2, ... capped at Max.
type Backoff struct {
	base       time.Duration
	max        time.Duration
	multiplier float64
	current    time.Duration
}

// NewBackoff creates a Backoff starting at base.
func NewBackoff(base, max time.Duration, multiplier float64) *Backoff {
	if multiplier < 1 {
		multiplier = 1
	}
	if max < base {
		max = base
	}
	return &Backoff{base: base, max: max, multiplier: multiplier, current: base}
}

// Next returns the interval to wait now and grows the next one.
func (b *Backoff) Next() time.Duration {
	wait := b.current
	grown := time.Duration(float64(b.current) * b.multiplier)
	b.current = min(grown, b.max)
	return wait
}

// Current returns the interval the next call to Next will return.
func (b *Backoff) Current() time.Duration { return b.current }

// Reset returns the interval to base.
func (b *Backoff) Reset() { b.current = b.base }
