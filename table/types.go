// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package table

// ActionKind names a betting action.
type ActionKind string

// Action kinds the server offers.
const (
	Fold  ActionKind = "fold"
	Check ActionKind = "check"
	Call  ActionKind = "call"
	Raise ActionKind = "raise"
	AllIn ActionKind = "allin"
)

// NeedsAmount reports whether a submission of this kind must carry an
// amount.
func (kind ActionKind) NeedsAmount() bool {
	return kind == Call || kind == Raise
}

// Card is a playing card as the server renders it: rank "2".."10",
// "J", "Q", "K", "A" and a suit symbol.
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

func (card Card) String() string { return card.Rank + card.Suit }

// JoinRequest is the body of POST /api/join. Token is the previously
// held token, if any, so the server can re-seat the same identity.
type JoinRequest struct {
	Name     string `json:"name"`
	Emoji    string `json:"emoji,omitempty"`
	TableID  string `json:"table_id"`
	Token    string `json:"token,omitempty"`
	Version  string `json:"version,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Repo     string `json:"repo,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

// JoinResponse is a successful join.
type JoinResponse struct {
	OK          bool     `json:"ok"`
	TableID     string   `json:"table_id"`
	Seat        int      `json:"your_seat"`
	Players     []string `json:"players"`
	Token       string   `json:"token"`
	Reconnected bool     `json:"reconnected"`
}

// StateQuery parameterizes GET /api/state.
type StateQuery struct {
	TableID string
	Player  string
	Token   string
}

// Player is one seated player in a state snapshot.
type Player struct {
	Name     string `json:"name"`
	Emoji    string `json:"emoji"`
	Chips    int64  `json:"chips"`
	Bet      int64  `json:"bet"`
	Folded   bool   `json:"folded"`
	Out      bool   `json:"out"`
	HasCards bool   `json:"has_cards"`
	Hole     []Card `json:"hole"`
}

// State is one server-reported snapshot of the table. It is replaced
// wholesale by the next poll.
type State struct {
	TableID   string    `json:"table_id"`
	Hand      int64     `json:"hand"`
	Round     string    `json:"round"`
	Pot       int64     `json:"pot"`
	Players   []Player  `json:"players"`
	Community []Card    `json:"community"`
	Turn      *TurnInfo `json:"turn_info"`

	// Fingerprint is a short blake3 digest of the response body. Equal
	// fingerprints mean byte-identical snapshots.
	Fingerprint string `json:"-"`
}

// Seat returns the named player if they are listed and still in the
// game. A bankrupt player (out) is listed but no longer seated.
func (state *State) Seat(name string) (Player, bool) {
	for _, player := range state.Players {
		if player.Name == name {
			return player, !player.Out
		}
	}
	return Player{}, false
}

// LegalAction is one action offered for the current turn. Amount is
// the call cost for "call"; Min and Max bound a "raise".
type LegalAction struct {
	Kind   ActionKind `json:"action"`
	Amount int64      `json:"amount,omitempty"`
	Min    int64      `json:"min,omitempty"`
	Max    int64      `json:"max,omitempty"`
}

// TurnInfo describes one decision opportunity. TurnSeq identifies it
// uniquely; a submission must echo it and is rejected once the server
// has moved on.
type TurnInfo struct {
	Type      string        `json:"type"`
	Player    string        `json:"player"`
	ToCall    int64         `json:"to_call"`
	Pot       int64         `json:"pot"`
	Chips     int64         `json:"chips"`
	Actions   []LegalAction `json:"actions"`
	Options   []ActionKind  `json:"options"`
	MinRaise  int64         `json:"min_raise"`
	MaxRaise  int64         `json:"max_raise"`
	Hole      []Card        `json:"hole"`
	Community []Card        `json:"community"`
	TurnSeq   *int64        `json:"turn_seq"`
	Deadline  float64       `json:"deadline"`
}

// HasSeq reports whether the server supplied a turn sequence number.
func (turn *TurnInfo) HasSeq() bool { return turn.TurnSeq != nil }

// Seq returns the turn sequence number, or -1 if absent.
func (turn *TurnInfo) Seq() int64 {
	if turn.TurnSeq == nil {
		return -1
	}
	return *turn.TurnSeq
}

// Legal returns the offered action of the given kind.
func (turn *TurnInfo) Legal(kind ActionKind) (LegalAction, bool) {
	for _, action := range turn.Actions {
		if action.Kind == kind {
			return action, true
		}
	}
	return LegalAction{}, false
}

// Kinds lists the offered action kinds in server order.
func (turn *TurnInfo) Kinds() []ActionKind {
	kinds := make([]ActionKind, 0, len(turn.Actions))
	for _, action := range turn.Actions {
		kinds = append(kinds, action.Kind)
	}
	return kinds
}

// normalize reconciles the two turn_info shapes the server family
// emits. The reference server sends "type":"your_turn" without a
// player field (turn_info only appears for the polling player) and a
// list of action objects; older builds send "options" as bare strings
// with a top-level min_raise. After normalize, Player, Actions,
// MinRaise and MaxRaise are always populated when derivable.
func (turn *TurnInfo) normalize(poller string) {
	if turn.Player == "" && turn.Type == "your_turn" {
		turn.Player = poller
	}

	if len(turn.Actions) == 0 && len(turn.Options) > 0 {
		for _, kind := range turn.Options {
			action := LegalAction{Kind: kind}
			switch kind {
			case Call:
				action.Amount = min(turn.ToCall, turn.Chips)
			case Raise:
				action.Min = turn.MinRaise
				action.Max = turn.Chips
			}
			turn.Actions = append(turn.Actions, action)
		}
	}

	if raise, ok := turn.Legal(Raise); ok {
		if turn.MinRaise == 0 {
			turn.MinRaise = raise.Min
		}
		if turn.MaxRaise == 0 {
			turn.MaxRaise = raise.Max
		}
	}
	if turn.MaxRaise == 0 {
		turn.MaxRaise = turn.Chips
	}

	for index := range turn.Actions {
		action := &turn.Actions[index]
		if action.Kind == Call && action.Amount == 0 {
			action.Amount = turn.ToCall
			if turn.Chips > 0 {
				action.Amount = min(turn.ToCall, turn.Chips)
			}
		}
	}
}

// ActionRequest is the body of POST /api/action. Built fresh for each
// turn and never reused.
type ActionRequest struct {
	Name    string     `json:"name"`
	TableID string     `json:"table_id"`
	Token   string     `json:"token"`
	Action  ActionKind `json:"action"`
	Amount  int64      `json:"amount,omitempty"`
	TurnSeq int64      `json:"turn_seq"`
}

// ActionResponse is a successful action submission.
type ActionResponse struct {
	OK bool `json:"ok"`
}

// LeaveRequest is the body of POST /api/leave.
type LeaveRequest struct {
	Name    string `json:"name"`
	TableID string `json:"table_id"`
	Token   string `json:"token"`
}
