// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package turnloop

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dolsoe-poker/tablebot/lib/clock"
	"github.com/dolsoe-poker/tablebot/seat"
	"github.com/dolsoe-poker/tablebot/strategy"
	"github.com/dolsoe-poker/tablebot/table"
)

const botName = "Bot"

var errConnectionReset = errors.New("read tcp 10.0.0.1:443: connection reset by peer")

// fakeGame is a scripted game server implementing seat.Joiner and API.
// Each call pops the next scripted outcome; an exhausted state script
// answers with an idle seated snapshot and an exhausted join or action
// script answers with success. A join that presents a token reports
// a reconnect.
type fakeGame struct {
	calls []string

	joinErrors []error
	joins      []table.JoinRequest

	states  []stateOutcome
	queries []table.StateQuery

	actionErrors []error
	actions      []table.ActionRequest

	// polled, when non-nil, receives a value (without blocking) for
	// every state query.
	polled chan struct{}
}

type stateOutcome struct {
	state *table.State
	err   error
}

func (g *fakeGame) Join(ctx context.Context, request table.JoinRequest) (*table.JoinResponse, error) {
	g.calls = append(g.calls, "join")
	g.joins = append(g.joins, request)
	if len(g.joinErrors) > 0 {
		err := g.joinErrors[0]
		g.joinErrors = g.joinErrors[1:]
		if err != nil {
			return nil, err
		}
	}
	// Like the server, a presented token re-seats the same player.
	return &table.JoinResponse{
		OK:          true,
		Token:       fmt.Sprintf("tok-%d", len(g.joins)),
		Seat:        1,
		Reconnected: request.Token != "",
	}, nil
}

func (g *fakeGame) State(ctx context.Context, query table.StateQuery) (*table.State, error) {
	g.calls = append(g.calls, "state")
	g.queries = append(g.queries, query)
	if g.polled != nil {
		select {
		case g.polled <- struct{}{}:
		default:
		}
	}
	if len(g.states) == 0 {
		return seatedState(nil), nil
	}
	next := g.states[0]
	g.states = g.states[1:]
	return next.state, next.err
}

func (g *fakeGame) Action(ctx context.Context, request table.ActionRequest) (*table.ActionResponse, error) {
	g.calls = append(g.calls, "action")
	g.actions = append(g.actions, request)
	if len(g.actionErrors) > 0 {
		err := g.actionErrors[0]
		g.actionErrors = g.actionErrors[1:]
		if err != nil {
			return nil, err
		}
	}
	return &table.ActionResponse{OK: true}, nil
}

func (g *fakeGame) queueStates(states ...*table.State) {
	for _, state := range states {
		g.states = append(g.states, stateOutcome{state: state})
	}
}

func (g *fakeGame) queueStateError(err error) {
	g.states = append(g.states, stateOutcome{err: err})
}

// scriptedPolicy returns a fixed decision and counts consultations.
type scriptedPolicy struct {
	decision strategy.Decision
	pass     bool
	consults int
}

func (p *scriptedPolicy) Name() string { return "scripted" }

func (p *scriptedPolicy) Decide(state *table.State, turn *table.TurnInfo) (strategy.Decision, bool) {
	p.consults++
	return p.decision, !p.pass
}

func seatedState(turn *table.TurnInfo) *table.State {
	return &table.State{
		TableID: "mersoom",
		Hand:    1,
		Pot:     100,
		Players: []table.Player{
			{Name: botName, Chips: 500},
			{Name: "villain", Chips: 500},
		},
		Turn: turn,
	}
}

func turnFor(player string, seq int64, actions ...table.LegalAction) *table.TurnInfo {
	turn := &table.TurnInfo{Player: player, TurnSeq: &seq, Pot: 100, Chips: 500, Actions: actions}
	for _, action := range actions {
		switch action.Kind {
		case table.Raise:
			turn.MinRaise, turn.MaxRaise = action.Min, action.Max
		case table.Call:
			turn.ToCall = action.Amount
		}
	}
	return turn
}

func checkOrRaise() []table.LegalAction {
	return []table.LegalAction{{Kind: table.Check}, {Kind: table.Raise, Min: 20, Max: 500}}
}

type harness struct {
	game   *fakeGame
	policy *scriptedPolicy
	clock  *clock.FakeClock
	seat   *seat.Manager
	loop   *Loop
}

func newClock() *clock.FakeClock {
	return clock.FakeAutoAdvance(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func newSeat(t *testing.T, joiner seat.Joiner, fake *clock.FakeClock) *seat.Manager {
	t.Helper()
	manager, err := seat.New(seat.Config{
		Identity: seat.Identity{Name: botName, Emoji: "🤖"},
		TableID:  "mersoom",
		API:      joiner,
		Clock:    fake,
	})
	if err != nil {
		t.Fatalf("seat.New: %v", err)
	}
	t.Cleanup(func() { manager.Close() })
	return manager
}

func newHarness(t *testing.T, policy *scriptedPolicy) *harness {
	t.Helper()
	if policy == nil {
		policy = &scriptedPolicy{decision: strategy.Decision{Kind: table.Check}}
	}
	game := &fakeGame{}
	fake := newClock()
	manager := newSeat(t, game, fake)

	loop, err := New(Config{
		API:     game,
		Session: manager,
		Policy:  policy,
		Clock:   fake,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &harness{game: game, policy: policy, clock: fake, seat: manager, loop: loop}
}

// start performs the initial join and clears the recorded calls and
// waits so assertions see only what follows.
func (h *harness) start(t *testing.T) {
	t.Helper()
	if err := h.loop.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	h.game.calls = nil
	h.clock.ResetSleeps()
}

func (h *harness) step(t *testing.T, n int) {
	t.Helper()
	for range n {
		if err := h.loop.Step(context.Background()); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
}

// stepUntilCalls steps until the game has seen n calls since start.
func (h *harness) stepUntilCalls(t *testing.T, n int) {
	t.Helper()
	for guard := 0; len(h.game.calls) < n; guard++ {
		if guard > 10*n {
			t.Fatalf("no progress after %d steps; calls %v", guard, h.game.calls)
		}
		h.step(t, 1)
	}
}
