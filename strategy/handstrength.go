// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package strategy

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/paulhankin/poker"

	"github.com/dolsoe-poker/tablebot/table"
)

// Style tunes how HandStrength turns equity into bets.
type Style struct {
	Name string

	// Bluff is the probability of treating a hand as 0.3 stronger
	// (capped at 0.9) for one decision.
	Bluff float64

	// RaiseThreshold is the effective equity at or above which the
	// policy bets or raises.
	RaiseThreshold float64

	// FoldThreshold is the effective equity below which the policy
	// folds to a bet.
	FoldThreshold float64

	// Reraise is the probability of raising, rather than calling, a
	// bet when equity clears RaiseThreshold.
	Reraise float64
}

// Styles are the named presets.
var Styles = map[string]Style{
	"aggressive": {Name: "aggressive", Bluff: 0.3, RaiseThreshold: 0.35, FoldThreshold: 0.15, Reraise: 0.4},
	"tight":      {Name: "tight", Bluff: 0.05, RaiseThreshold: 0.55, FoldThreshold: 0.35, Reraise: 0.15},
	"loose":      {Name: "loose", Bluff: 0.2, RaiseThreshold: 0.3, FoldThreshold: 0.1, Reraise: 0.25},
	"maniac":     {Name: "maniac", Bluff: 0.45, RaiseThreshold: 0.2, FoldThreshold: 0.05, Reraise: 0.5},
}

// DefaultSamples is the number of Monte Carlo rollouts per decision.
const DefaultSamples = 400

// maxOpponents bounds the rollout cost on a crowded table.
const maxOpponents = 5

// HandStrengthConfig holds the parameters for NewHandStrength.
type HandStrengthConfig struct {
	// Style defaults to Styles["tight"].
	Style Style

	// Samples defaults to DefaultSamples.
	Samples int

	// Seed makes decisions reproducible. Zero picks a random seed.
	Seed uint64
}

// HandStrength bets in proportion to estimated win equity.
type HandStrength struct {
	style   Style
	samples int
	rng     *rand.Rand
	deck    []poker.Card
}

// NewHandStrength creates a HandStrength policy.
func NewHandStrength(config HandStrengthConfig) *HandStrength {
	style := config.Style
	if style.Name == "" {
		style = Styles["tight"]
	}
	samples := config.Samples
	if samples <= 0 {
		samples = DefaultSamples
	}
	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &HandStrength{
		style:   style,
		samples: samples,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		deck:    fullDeck(),
	}
}

// Name implements Policy.
func (h *HandStrength) Name() string { return "hand-strength" }

// Decide implements Policy. When the hand cannot be evaluated (hole
// cards hidden or unparseable) it falls back to Passive.
func (h *HandStrength) Decide(state *table.State, turn *table.TurnInfo) (Decision, bool) {
	hole, community := h.visibleCards(state, turn)
	strength, err := h.Equity(hole, community, liveOpponents(state, turn.Player))
	if err != nil {
		return Passive{}.Decide(state, turn)
	}

	bluff := h.rng.Float64() < h.style.Bluff
	effective := strength
	if bluff {
		effective = min(strength+0.3, 0.9)
	}

	pot := turn.Pot
	if pot == 0 {
		pot = state.Pot
	}
	raise := func() Decision {
		bet := float64(pot) * (0.5 + strength*0.8)
		if bluff {
			bet = float64(pot) * (0.5 + h.rng.Float64()*0.3)
		}
		return Decision{Kind: table.Raise, Amount: ClampRaise(turn, max(int64(bet), 1))}
	}
	_, canRaise := turn.Legal(table.Raise)

	if turn.ToCall == 0 {
		if effective >= h.style.RaiseThreshold && canRaise {
			return raise(), true
		}
		return h.cheapest(turn)
	}

	if _, canFold := turn.Legal(table.Fold); canFold && effective < h.style.FoldThreshold && !bluff {
		return Decision{Kind: table.Fold}, true
	}
	if canRaise && effective >= h.style.RaiseThreshold && h.rng.Float64() < h.style.Reraise {
		return raise(), true
	}
	return h.cheapest(turn)
}

// cheapest stays in the hand for the lowest price offered.
func (h *HandStrength) cheapest(turn *table.TurnInfo) (Decision, bool) {
	if _, ok := turn.Legal(table.Check); ok {
		return Decision{Kind: table.Check}, true
	}
	if _, ok := turn.Legal(table.Call); ok {
		return Decision{Kind: table.Call, Amount: CallAmount(turn)}, true
	}
	if _, ok := turn.Legal(table.AllIn); ok {
		return Decision{Kind: table.AllIn}, true
	}
	if _, ok := turn.Legal(table.Fold); ok {
		return Decision{Kind: table.Fold}, true
	}
	return Decision{}, false
}

func (h *HandStrength) visibleCards(state *table.State, turn *table.TurnInfo) ([]table.Card, []table.Card) {
	hole := turn.Hole
	if len(hole) == 0 {
		if player, ok := state.Seat(turn.Player); ok {
			hole = player.Hole
		}
	}
	community := turn.Community
	if len(community) == 0 {
		community = state.Community
	}
	return hole, community
}

// Equity estimates the probability that hole wins at showdown against
// opponents random hands, given the known community cards. Ties count
// as fractional wins.
func (h *HandStrength) Equity(hole, community []table.Card, opponents int) (float64, error) {
	if len(hole) != 2 {
		return 0, fmt.Errorf("strategy: need 2 hole cards, have %d", len(hole))
	}
	if len(community) > 5 {
		return 0, fmt.Errorf("strategy: %d community cards", len(community))
	}
	opponents = min(max(opponents, 1), maxOpponents)

	known, err := convertCards(append(slices.Clone(hole), community...))
	if err != nil {
		return 0, fmt.Errorf("strategy: %w", err)
	}
	remaining := slices.DeleteFunc(slices.Clone(h.deck), func(card poker.Card) bool {
		return slices.Contains(known, card)
	})
	if len(remaining) != 52-len(known) {
		return 0, fmt.Errorf("strategy: duplicate cards in %v %v", hole, community)
	}

	boardMissing := 5 - len(community)
	draw := boardMissing + 2*opponents

	var mine, theirs [7]poker.Card
	var won float64
	for range h.samples {
		h.partialShuffle(remaining, draw)

		board := append(known[2:len(known):len(known)], remaining[:boardMissing]...)
		copy(mine[:], known[:2])
		copy(mine[2:], board)
		myScore := poker.Eval7(&mine)

		best, ties := true, 0
		for opponent := range opponents {
			offset := boardMissing + 2*opponent
			copy(theirs[:2], remaining[offset:offset+2])
			copy(theirs[2:], board)
			score := poker.Eval7(&theirs)
			if score > myScore {
				best = false
				break
			}
			if score == myScore {
				ties++
			}
		}
		if best {
			won += 1 / float64(ties+1)
		}
	}
	return won / float64(h.samples), nil
}

// partialShuffle moves n uniformly chosen cards to the front.
func (h *HandStrength) partialShuffle(cards []poker.Card, n int) {
	for i := range n {
		j := i + h.rng.IntN(len(cards)-i)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// liveOpponents counts players other than self still contesting the
// hand.
func liveOpponents(state *table.State, self string) int {
	count := 0
	for _, player := range state.Players {
		if player.Name != self && !player.Folded && !player.Out {
			count++
		}
	}
	return count
}
