// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package turnloop

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dolsoe-poker/tablebot/lib/clock"
	"github.com/dolsoe-poker/tablebot/lib/netutil"
	"github.com/dolsoe-poker/tablebot/seat"
	"github.com/dolsoe-poker/tablebot/strategy"
	"github.com/dolsoe-poker/tablebot/table"
)

// Default timings.
const (
	DefaultPollCadence       = 2 * time.Second
	DefaultJoinRetryDelay    = 3 * time.Second
	DefaultBackoffBase       = 2 * time.Second
	DefaultBackoffMax        = 30 * time.Second
	DefaultBackoffMultiplier = 1.5
	DefaultFailureThreshold  = 5
)

// Phase is the loop's current state.
type Phase int

const (
	SeekingSession Phase = iota
	Polling
	Acting
)

func (p Phase) String() string {
	switch p {
	case SeekingSession:
		return "seeking_session"
	case Polling:
		return "polling"
	case Acting:
		return "acting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// API is the subset of the game server API the loop drives.
// *table.Client satisfies it.
type API interface {
	State(ctx context.Context, query table.StateQuery) (*table.State, error)
	Action(ctx context.Context, request table.ActionRequest) (*table.ActionResponse, error)
}

// Session owns membership and the auth token. *seat.Manager satisfies
// it. The loop reads the token only through Token.
type Session interface {
	Join(ctx context.Context) (seat.Result, error)
	Identity() seat.Identity
	TableID() string
	Token() string
	HasToken() bool
	Forget()
}

// Config holds the collaborators and timings for a Loop. Zero timings
// take the package defaults.
type Config struct {
	API     API
	Session Session
	Policy  strategy.Policy

	PollCadence time.Duration

	// JoinRetryDelay is the wait after a failed join. Session join
	// pacing can stretch it: the effective interval is the larger of
	// the two.
	JoinRetryDelay    time.Duration
	BackoffBase       time.Duration
	BackoffMax        time.Duration
	BackoffMultiplier float64
	FailureThreshold  int

	// Clock provides time operations. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Loop is the sync loop for one seat. It is not safe for concurrent
// use; one goroutine calls Start and then Run (or Step).
type Loop struct {
	api     API
	session Session
	policy  strategy.Policy
	clock   clock.Clock
	logger  *slog.Logger

	pollCadence      time.Duration
	joinRetryDelay   time.Duration
	failureThreshold int
	backoff          *Backoff

	phase    Phase
	failures int
	forced   bool

	// snapshot and turn are the poll result Acting decides on.
	snapshot *table.State
	turn     *table.TurnInfo

	// lastSubmitted is the highest sequence number submitted or
	// skipped in the current seat; -1 before the first and after a
	// join that did not reconnect.
	lastSubmitted int64

	lastHand        int64
	lastRound       string
	lastFingerprint string
}

// New creates a Loop in SeekingSession.
func New(config Config) (*Loop, error) {
	if config.API == nil {
		return nil, fmt.Errorf("turnloop: API is required")
	}
	if config.Session == nil {
		return nil, fmt.Errorf("turnloop: Session is required")
	}
	if config.Policy == nil {
		return nil, fmt.Errorf("turnloop: Policy is required")
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	multiplier := config.BackoffMultiplier
	if multiplier == 0 {
		multiplier = DefaultBackoffMultiplier
	}
	threshold := config.FailureThreshold
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}

	return &Loop{
		api:              config.API,
		session:          config.Session,
		policy:           config.Policy,
		clock:            clk,
		logger:           logger,
		pollCadence:      orDefault(config.PollCadence, DefaultPollCadence),
		joinRetryDelay:   orDefault(config.JoinRetryDelay, DefaultJoinRetryDelay),
		failureThreshold: threshold,
		backoff: NewBackoff(
			orDefault(config.BackoffBase, DefaultBackoffBase),
			orDefault(config.BackoffMax, DefaultBackoffMax),
			multiplier,
		),
		phase:         SeekingSession,
		lastSubmitted: -1,
		lastHand:      -1,
	}, nil
}

func orDefault(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}

// Phase returns the current phase.
func (l *Loop) Phase() Phase { return l.phase }

// Failures returns the consecutive generic failure count.
func (l *Loop) Failures() int { return l.failures }

// Backoff returns the interval the next generic failure will wait.
func (l *Loop) Backoff() time.Duration { return l.backoff.Current() }

// Start performs the initial join. A failure here is returned rather
// than retried: without a seat there is nothing to do.
func (l *Loop) Start(ctx context.Context) error {
	result, err := l.session.Join(ctx)
	if err != nil {
		return fmt.Errorf("turnloop: initial join: %w", err)
	}
	l.logger.Info("seated", "seat", result.Seat, "reconnected", result.Reconnected)
	l.phase = Polling
	return nil
}

// Run steps the loop until ctx is cancelled. Cancellation is the only
// way it ends, and it returns nil in that case.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.Step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Step performs one phase and its trailing wait. It returns an error
// only when ctx ends.
func (l *Loop) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch l.phase {
	case SeekingSession:
		return l.seekSession(ctx)
	case Polling:
		return l.poll(ctx)
	case Acting:
		return l.act(ctx)
	default:
		return fmt.Errorf("turnloop: unknown phase %v", l.phase)
	}
}

func (l *Loop) seekSession(ctx context.Context) error {
	if l.forced {
		l.forced = false
		l.failures = 0
	}

	result, err := l.session.Join(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if table.IsUnauthorized(err) || table.IsCode(err, table.CodeAuthMismatch) {
			l.session.Forget()
		}
		l.logger.Warn("join failed, retrying",
			"error", err,
			"retry_in", l.joinRetryDelay,
		)
		return l.wait(ctx, l.joinRetryDelay)
	}

	l.logger.Info("seated", "seat", result.Seat, "reconnected", result.Reconnected)
	if !result.Reconnected {
		// A fresh seat has no submissions at this table, and a
		// restarted server numbers turns from zero again.
		l.lastSubmitted = -1
	}
	l.phase = Polling
	return nil
}

func (l *Loop) poll(ctx context.Context) error {
	identity := l.session.Identity()
	state, err := l.api.State(ctx, table.StateQuery{
		TableID: l.session.TableID(),
		Player:  identity.Name,
		Token:   l.session.Token(),
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if table.IsRejection(err) {
			l.logger.Warn("state query rejected, re-joining", "error", err)
			l.notSeated()
			return nil
		}
		return l.fail(ctx, "state query failed", err)
	}

	l.failures = 0
	l.trace(state)

	if _, seated := state.Seat(identity.Name); !seated {
		l.logger.Warn("not seated at table, re-joining", "hand", state.Hand)
		l.notSeated()
		return nil
	}

	turn := state.Turn
	if turn == nil || turn.Player != identity.Name {
		l.backoff.Reset()
		return l.wait(ctx, l.pollCadence)
	}
	if !turn.HasSeq() {
		l.logger.Warn("turn has no sequence number, not actionable")
		return l.wait(ctx, l.pollCadence)
	}
	if turn.Seq() <= l.lastSubmitted {
		l.logger.Debug("turn already handled", "turn_seq", turn.Seq())
		return l.wait(ctx, l.pollCadence)
	}

	l.snapshot = state
	l.turn = turn
	l.phase = Acting
	return nil
}

func (l *Loop) act(ctx context.Context) error {
	state, turn := l.snapshot, l.turn
	l.snapshot, l.turn = nil, nil
	l.phase = Polling
	seq := turn.Seq()

	decision, ok := l.policy.Decide(state, turn)
	if !ok {
		l.logger.Debug("policy took no action", "turn_seq", seq)
		return l.wait(ctx, l.pollCadence)
	}
	if err := strategy.Validate(turn, decision); err != nil {
		l.lastSubmitted = seq
		l.logger.Warn("policy chose an illegal action, skipping turn",
			"turn_seq", seq,
			"policy", l.policy.Name(),
			"action", decision.String(),
			"error", err,
		)
		return l.wait(ctx, l.pollCadence)
	}

	request := table.ActionRequest{
		Name:    l.session.Identity().Name,
		TableID: l.session.TableID(),
		Token:   l.session.Token(),
		Action:  decision.Kind,
		TurnSeq: seq,
	}
	if decision.Kind.NeedsAmount() {
		request.Amount = decision.Amount
	}

	// Recorded before sending: an ambiguous failure must not lead
	// to a second submission for this turn.
	l.lastSubmitted = seq

	_, err := l.api.Action(ctx, request)
	switch {
	case err == nil:
		l.logger.Info("action accepted",
			"turn_seq", seq,
			"action", decision.String(),
			"to_call", turn.ToCall,
			"pot", turn.Pot,
		)
		l.backoff.Reset()
		return l.wait(ctx, l.pollCadence)

	case ctx.Err() != nil:
		return ctx.Err()

	case table.IsStaleTurn(err):
		l.logger.Info("stale turn, action discarded", "turn_seq", seq, "error", err)
		return nil

	case table.IsUnauthorized(err):
		l.logger.Warn("action unauthorized, re-joining", "turn_seq", seq, "error", err)
		l.notSeated()
		return nil
	}
	return l.fail(ctx, "action submission failed", err)
}

// notSeated forgets the token and sends the loop to re-join. Cached
// state keyed by the old token is dropped with it.
func (l *Loop) notSeated() {
	l.session.Forget()
	if cache, ok := l.api.(interface{ ForgetCachedState() }); ok {
		cache.ForgetCachedState()
	}
	l.phase = SeekingSession
}

// fail records a generic failure, escalating to a forced re-join at
// the threshold, and waits out the backoff.
func (l *Loop) fail(ctx context.Context, message string, err error) error {
	l.failures++
	wait := l.backoff.Next()
	l.logger.Warn(message,
		"error", err,
		"connection_error", netutil.IsConnectionError(err),
		"server_error", table.IsServerError(err),
		"consecutive_failures", l.failures,
		"retry_in", wait,
	)
	if l.failures >= l.failureThreshold {
		l.logger.Warn("too many consecutive failures, forcing re-join",
			"consecutive_failures", l.failures,
		)
		l.phase = SeekingSession
		l.forced = true
		if closer, ok := l.api.(interface{ CloseIdleConnections() }); ok {
			closer.CloseIdleConnections()
		}
	}
	return l.wait(ctx, wait)
}

func (l *Loop) wait(ctx context.Context, d time.Duration) error {
	return clock.SleepContext(ctx, l.clock, d)
}

// trace logs hand and round transitions once per change.
func (l *Loop) trace(state *table.State) {
	if state.Fingerprint != "" && state.Fingerprint == l.lastFingerprint {
		return
	}
	l.lastFingerprint = state.Fingerprint

	if state.Hand != l.lastHand {
		l.lastHand = state.Hand
		l.lastRound = state.Round
		chips := int64(-1)
		if player, ok := state.Seat(l.session.Identity().Name); ok {
			chips = player.Chips
		}
		l.logger.Info("new hand",
			"hand", state.Hand,
			"players", len(state.Players),
			"chips", chips,
		)
		return
	}
	if state.Round != l.lastRound {
		l.lastRound = state.Round
		l.logger.Debug("round advanced",
			"hand", state.Hand,
			"round", state.Round,
			"pot", state.Pot,
			"community", len(state.Community),
		)
	}
}
