// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Every suspension point in the client (rate-limit waits, join retry
// delays, poll cadence, failure backoff) goes through a Clock instead
// of calling time.Sleep or time.After directly. In production, Real()
// provides the standard library behavior. In tests, Fake() provides a
// deterministic clock.
//
// # Wiring Pattern
//
// Add a Clock field to the config of any component that waits:
//
//	loop, err := turnloop.New(turnloop.Config{Clock: clock.Real(), ...})
//
// # Fake Modes
//
// A clock from [Fake] stands still until Advance is called; goroutines
// blocked in Sleep or After are released when the clock passes their
// deadline. Use WaitForTimers to synchronize with them.
//
// A clock from [FakeAutoAdvance] never blocks: every Sleep or After
// moves the clock forward by the requested duration and fires at once.
// This suits the single-threaded sync loop, whose tests drive the loop
// step by step from the test goroutine and then inspect [FakeClock.Sleeps]
// to check which waits were taken.
package clock
