// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package strategy

import (
	"fmt"
	"strconv"

	"github.com/paulhankin/poker"

	"github.com/dolsoe-poker/tablebot/table"
)

var suits = map[string]poker.Suit{
	"♠": poker.Spade, "s": poker.Spade, "S": poker.Spade,
	"♥": poker.Heart, "h": poker.Heart, "H": poker.Heart,
	"♦": poker.Diamond, "d": poker.Diamond, "D": poker.Diamond,
	"♣": poker.Club, "c": poker.Club, "C": poker.Club,
}

// convertCard maps a server card to the evaluator's representation.
// Aces are rank 1, kings 13.
func convertCard(card table.Card) (poker.Card, error) {
	var invalid poker.Card
	suit, ok := suits[card.Suit]
	if !ok {
		return invalid, fmt.Errorf("unknown suit %q", card.Suit)
	}
	var rank int
	switch card.Rank {
	case "A":
		rank = 1
	case "K":
		rank = 13
	case "Q":
		rank = 12
	case "J":
		rank = 11
	case "T":
		rank = 10
	default:
		parsed, err := strconv.Atoi(card.Rank)
		if err != nil || parsed < 2 || parsed > 10 {
			return invalid, fmt.Errorf("unknown rank %q", card.Rank)
		}
		rank = parsed
	}
	return poker.MakeCard(suit, poker.Rank(rank))
}

func convertCards(cards []table.Card) ([]poker.Card, error) {
	converted := make([]poker.Card, 0, len(cards))
	for _, card := range cards {
		c, err := convertCard(card)
		if err != nil {
			return nil, err
		}
		converted = append(converted, c)
	}
	return converted, nil
}

// fullDeck returns all 52 cards.
func fullDeck() []poker.Card {
	deck := make([]poker.Card, 0, 52)
	for _, suit := range []poker.Suit{poker.Club, poker.Diamond, poker.Heart, poker.Spade} {
		for rank := 1; rank <= 13; rank++ {
			card, err := poker.MakeCard(suit, poker.Rank(rank))
			if err != nil {
				panic(fmt.Sprintf("strategy: building deck: %v", err))
			}
			deck = append(deck, card)
		}
	}
	return deck
}
