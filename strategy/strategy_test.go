// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package strategy

import (
	"testing"

	"github.com/dolsoe-poker/tablebot/table"
)

func card(rank, suit string) table.Card { return table.Card{Rank: rank, Suit: suit} }

func turnWith(toCall int64, actions ...table.LegalAction) *table.TurnInfo {
	turn := &table.TurnInfo{Player: "tablebot", ToCall: toCall, Pot: 100, Chips: 500, Actions: actions}
	for _, action := range actions {
		if action.Kind == table.Raise {
			turn.MinRaise, turn.MaxRaise = action.Min, action.Max
		}
	}
	return turn
}

func headsUp() *table.State {
	return &table.State{Pot: 100, Players: []table.Player{
		{Name: "tablebot", Chips: 500},
		{Name: "villain", Chips: 500},
	}}
}

func TestValidate(t *testing.T) {
	turn := turnWith(0,
		table.LegalAction{Kind: table.Check},
		table.LegalAction{Kind: table.Raise, Min: 20, Max: 500},
	)
	tests := []struct {
		name     string
		decision Decision
		valid    bool
	}{
		{"check", Decision{Kind: table.Check}, true},
		{"raise in bounds", Decision{Kind: table.Raise, Amount: 30}, true},
		{"raise at min", Decision{Kind: table.Raise, Amount: 20}, true},
		{"raise at max", Decision{Kind: table.Raise, Amount: 500}, true},
		{"raise below min", Decision{Kind: table.Raise, Amount: 19}, false},
		{"raise above chips", Decision{Kind: table.Raise, Amount: 501}, false},
		{"kind not offered", Decision{Kind: table.Call, Amount: 10}, false},
		{"fold not offered", Decision{Kind: table.Fold}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Validate(turn, test.decision)
			if (err == nil) != test.valid {
				t.Errorf("Validate(%v) = %v, want valid=%v", test.decision, err, test.valid)
			}
		})
	}
}

func TestValidate_CallAmount(t *testing.T) {
	turn := turnWith(40, table.LegalAction{Kind: table.Call, Amount: 40})
	if err := Validate(turn, Decision{Kind: table.Call, Amount: 40}); err != nil {
		t.Errorf("exact call rejected: %v", err)
	}
	if err := Validate(turn, Decision{Kind: table.Call, Amount: 10}); err == nil {
		t.Error("short call accepted")
	}
}

func TestClampRaise(t *testing.T) {
	turn := turnWith(0, table.LegalAction{Kind: table.Raise, Min: 20, Max: 300})
	for amount, want := range map[int64]int64{5: 20, 150: 150, 9000: 300} {
		if got := ClampRaise(turn, amount); got != want {
			t.Errorf("ClampRaise(%d) = %d, want %d", amount, got, want)
		}
	}
}

func TestPassive(t *testing.T) {
	state := headsUp()
	decision, ok := Passive{}.Decide(state, turnWith(0, table.LegalAction{Kind: table.Check}, table.LegalAction{Kind: table.Fold}))
	if !ok || decision.Kind != table.Check {
		t.Errorf("with check offered: %v, %v", decision, ok)
	}
	decision, ok = Passive{}.Decide(state, turnWith(40, table.LegalAction{Kind: table.Fold}, table.LegalAction{Kind: table.Call, Amount: 40}))
	if !ok || decision.Kind != table.Fold {
		t.Errorf("facing a bet: %v, %v", decision, ok)
	}
	if _, ok := (Passive{}).Decide(state, turnWith(0)); ok {
		t.Error("decided with nothing offered")
	}
}

func TestConvertCard(t *testing.T) {
	valid := []table.Card{card("A", "♠"), card("10", "♥"), card("2", "♦"), card("K", "♣"), card("T", "s")}
	seen := make(map[any]bool)
	for _, c := range valid {
		converted, err := convertCard(c)
		if err != nil {
			t.Errorf("convertCard(%v): %v", c, err)
			continue
		}
		if seen[converted] {
			t.Errorf("convertCard(%v) collided", c)
		}
		seen[converted] = true
	}
	for _, c := range []table.Card{card("1", "♠"), card("11", "♠"), card("A", "x"), card("", "")} {
		if _, err := convertCard(c); err == nil {
			t.Errorf("convertCard(%v) accepted", c)
		}
	}
	if deck := fullDeck(); len(deck) != 52 {
		t.Errorf("deck has %d cards", len(deck))
	}
}

func TestEquity_Nuts(t *testing.T) {
	policy := NewHandStrength(HandStrengthConfig{Seed: 1, Samples: 200})
	hole := []table.Card{card("A", "♠"), card("K", "♠")}
	community := []table.Card{card("Q", "♠"), card("J", "♠"), card("10", "♠"), card("2", "♥"), card("3", "♦")}
	equity, err := policy.Equity(hole, community, 3)
	if err != nil {
		t.Fatalf("Equity: %v", err)
	}
	if equity != 1 {
		t.Errorf("royal flush equity = %v, want 1", equity)
	}
}

func TestEquity_PreflopOrdering(t *testing.T) {
	policy := NewHandStrength(HandStrengthConfig{Seed: 7, Samples: 2000})
	aces, err := policy.Equity([]table.Card{card("A", "♠"), card("A", "♥")}, nil, 1)
	if err != nil {
		t.Fatalf("Equity(AA): %v", err)
	}
	trash, err := policy.Equity([]table.Card{card("7", "♣"), card("2", "♦")}, nil, 1)
	if err != nil {
		t.Fatalf("Equity(72o): %v", err)
	}
	if aces < 0.75 || aces > 0.92 {
		t.Errorf("AA equity = %.3f, want about 0.85", aces)
	}
	if trash > 0.45 {
		t.Errorf("72o equity = %.3f, want about 0.35", trash)
	}
}

func TestEquity_Errors(t *testing.T) {
	policy := NewHandStrength(HandStrengthConfig{Seed: 1})
	if _, err := policy.Equity([]table.Card{card("A", "♠")}, nil, 1); err == nil {
		t.Error("accepted one hole card")
	}
	duplicated := []table.Card{card("A", "♠"), card("A", "♠")}
	if _, err := policy.Equity(duplicated, nil, 1); err == nil {
		t.Error("accepted duplicate cards")
	}
}

func TestHandStrength_RaisesTheNuts(t *testing.T) {
	policy := NewHandStrength(HandStrengthConfig{Seed: 3, Samples: 100})
	state := headsUp()
	turn := turnWith(0,
		table.LegalAction{Kind: table.Check},
		table.LegalAction{Kind: table.Raise, Min: 20, Max: 500},
	)
	turn.Hole = []table.Card{card("A", "♠"), card("K", "♠")}
	turn.Community = []table.Card{card("Q", "♠"), card("J", "♠"), card("10", "♠")}

	decision, ok := policy.Decide(state, turn)
	if !ok {
		t.Fatal("no decision")
	}
	if decision.Kind != table.Raise {
		t.Errorf("decision = %v, want raise", decision)
	}
	if err := Validate(turn, decision); err != nil {
		t.Errorf("decision violates contract: %v", err)
	}
}

func TestHandStrength_HiddenCardsFallBackToPassive(t *testing.T) {
	policy := NewHandStrength(HandStrengthConfig{Seed: 3})
	turn := turnWith(0, table.LegalAction{Kind: table.Check}, table.LegalAction{Kind: table.Fold})
	decision, ok := policy.Decide(headsUp(), turn)
	if !ok || decision.Kind != table.Check {
		t.Errorf("decision = %v, %v, want check", decision, ok)
	}
}

func TestHandStrength_DecisionsAlwaysLegal(t *testing.T) {
	policy := NewHandStrength(HandStrengthConfig{Style: Styles["maniac"], Seed: 11, Samples: 50})
	hands := [][]table.Card{
		{card("7", "♣"), card("2", "♦")},
		{card("A", "♥"), card("A", "♦")},
		{card("9", "♠"), card("8", "♠")},
	}
	for _, hole := range hands {
		for _, toCall := range []int64{0, 40} {
			offered := []table.LegalAction{{Kind: table.Fold}, {Kind: table.Raise, Min: 80, Max: 500}}
			if toCall == 0 {
				offered = append(offered, table.LegalAction{Kind: table.Check})
			} else {
				offered = append(offered, table.LegalAction{Kind: table.Call, Amount: toCall})
			}
			turn := turnWith(toCall, offered...)
			turn.Hole = hole
			for range 20 {
				decision, ok := policy.Decide(headsUp(), turn)
				if !ok {
					t.Fatalf("no decision for %v", hole)
				}
				if err := Validate(turn, decision); err != nil {
					t.Errorf("%v to_call=%d: %v", hole, toCall, err)
				}
			}
		}
	}
}
