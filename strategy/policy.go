// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package strategy

import (
	"fmt"

	"github.com/dolsoe-poker/tablebot/table"
)

// Decision is a chosen action. Amount is meaningful only for kinds
// where NeedsAmount is true.
type Decision struct {
	Kind   table.ActionKind
	Amount int64
}

func (d Decision) String() string {
	if d.Kind.NeedsAmount() {
		return fmt.Sprintf("%s %d", d.Kind, d.Amount)
	}
	return string(d.Kind)
}

// Policy chooses an action for a turn. Decide returns false to take
// no action this poll.
type Policy interface {
	Name() string
	Decide(state *table.State, turn *table.TurnInfo) (Decision, bool)
}

// Validate reports whether decision honors the turn's offered action
// set and bounds: the kind must be offered, a raise amount must lie in
// [MinRaise, MaxRaise], and a call amount must equal the offered call
// cost when the server stated one.
func Validate(turn *table.TurnInfo, decision Decision) error {
	offered, ok := turn.Legal(decision.Kind)
	if !ok {
		return fmt.Errorf("action %q not offered (offered %v)", decision.Kind, turn.Kinds())
	}
	switch decision.Kind {
	case table.Raise:
		low, high := raiseBounds(turn, offered)
		if decision.Amount < low || decision.Amount > high {
			return fmt.Errorf("raise amount %d outside [%d, %d]", decision.Amount, low, high)
		}
	case table.Call:
		if offered.Amount > 0 && decision.Amount != offered.Amount {
			return fmt.Errorf("call amount %d, offered %d", decision.Amount, offered.Amount)
		}
	}
	return nil
}

// ClampRaise returns amount clamped into the turn's raise bounds.
func ClampRaise(turn *table.TurnInfo, amount int64) int64 {
	offered, _ := turn.Legal(table.Raise)
	low, high := raiseBounds(turn, offered)
	return min(max(amount, low), high)
}

// CallAmount returns the amount a call on this turn must carry.
func CallAmount(turn *table.TurnInfo) int64 {
	if offered, ok := turn.Legal(table.Call); ok && offered.Amount > 0 {
		return offered.Amount
	}
	return turn.ToCall
}

func raiseBounds(turn *table.TurnInfo, offered table.LegalAction) (int64, int64) {
	low := offered.Min
	if low == 0 {
		low = turn.MinRaise
	}
	high := offered.Max
	if high == 0 {
		high = turn.MaxRaise
	}
	if high < low {
		high = low
	}
	return low, high
}

// Passive checks when checking is offered and folds otherwise.
type Passive struct{}

// Name implements Policy.
func (Passive) Name() string { return "passive" }

// Decide implements Policy.
func (Passive) Decide(state *table.State, turn *table.TurnInfo) (Decision, bool) {
	if _, ok := turn.Legal(table.Check); ok {
		return Decision{Kind: table.Check}, true
	}
	if _, ok := turn.Legal(table.Fold); ok {
		return Decision{Kind: table.Fold}, true
	}
	return Decision{}, false
}
