// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package seat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/dolsoe-poker/tablebot/lib/clock"
	"github.com/dolsoe-poker/tablebot/lib/secret"
	"github.com/dolsoe-poker/tablebot/table"
)

// Identity is how the client presents itself at the table. Name is
// the seat key; the rest is cosmetic metadata shown by the server.
type Identity struct {
	Name     string
	Emoji    string
	Version  string
	Strategy string
	Repo     string
	Bio      string
}

// Joiner is the subset of the game server API the Manager needs.
// *table.Client satisfies it.
type Joiner interface {
	Join(ctx context.Context, request table.JoinRequest) (*table.JoinResponse, error)
}

// Config holds the parameters for a Manager.
type Config struct {
	Identity Identity
	TableID  string
	API      Joiner

	// MinJoinInterval is the minimum spacing between join requests.
	// Zero disables pacing. A caller retrying failed joins every d
	// actually retries every max(d, MinJoinInterval).
	MinJoinInterval time.Duration

	// Clock provides time operations. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Result describes a successful join.
type Result struct {
	Seat        int
	Players     []string
	Reconnected bool

	// TokenRotated is false when the server confirmed the token
	// already held.
	TokenRotated bool
}

// Manager holds the session for one identity at one table.
type Manager struct {
	identity Identity
	tableID  string
	api      Joiner
	clock    clock.Clock
	logger   *slog.Logger
	limiter  *rate.Limiter

	token *secret.Buffer
	seat  int
}

// New creates a Manager with no token.
func New(config Config) (*Manager, error) {
	if config.Identity.Name == "" {
		return nil, fmt.Errorf("seat: identity name is required")
	}
	if config.TableID == "" {
		return nil, fmt.Errorf("seat: table ID is required")
	}
	if config.API == nil {
		return nil, fmt.Errorf("seat: API is required")
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if config.MinJoinInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(config.MinJoinInterval), 1)
	}

	return &Manager{
		identity: config.Identity,
		tableID:  config.TableID,
		api:      config.API,
		clock:    clk,
		logger:   logger.With("table_id", config.TableID, "name", config.Identity.Name),
		limiter:  limiter,
		seat:     -1,
	}, nil
}

// Identity returns the client identity.
func (m *Manager) Identity() Identity { return m.identity }

// TableID returns the target table.
func (m *Manager) TableID() string { return m.tableID }

// Seat returns the seat index from the last successful join, or -1.
func (m *Manager) Seat() int { return m.seat }

// HasToken reports whether a token is held.
func (m *Manager) HasToken() bool { return m.token != nil }

// Token returns the held token, or "" when none is held.
func (m *Manager) Token() string {
	if m.token == nil {
		return ""
	}
	return m.token.String()
}

// Join requests a seat, presenting the held token (if any) so the
// server can re-seat the same identity. On success the returned token
// replaces the held one. On failure the held token is unchanged and
// the error is returned for the caller to schedule a retry.
func (m *Manager) Join(ctx context.Context) (Result, error) {
	if err := m.pace(ctx); err != nil {
		return Result{}, fmt.Errorf("seat: join pacing: %w", err)
	}

	response, err := m.api.Join(ctx, table.JoinRequest{
		Name:     m.identity.Name,
		Emoji:    m.identity.Emoji,
		TableID:  m.tableID,
		Token:    m.Token(),
		Version:  m.identity.Version,
		Strategy: m.identity.Strategy,
		Repo:     m.identity.Repo,
		Bio:      m.identity.Bio,
	})
	if err != nil {
		return Result{}, fmt.Errorf("seat: %w", err)
	}

	rotated := m.token == nil || !m.token.Equal(response.Token)
	if rotated {
		token, err := secret.NewFromString(response.Token)
		if err != nil {
			return Result{}, fmt.Errorf("seat: storing token: %w", err)
		}
		if !token.Locked() {
			m.logger.Debug("token memory not locked, may be swapped to disk")
		}
		m.replaceToken(token)
	}
	m.seat = response.Seat

	m.logger.Info("joined table",
		"seat", response.Seat,
		"players", len(response.Players),
		"reconnected", response.Reconnected,
		"token_rotated", rotated,
	)
	return Result{
		Seat:         response.Seat,
		Players:      response.Players,
		Reconnected:  response.Reconnected,
		TokenRotated: rotated,
	}, nil
}

// Forget drops the held token. The next Join presents no token.
func (m *Manager) Forget() {
	if m.token != nil {
		m.logger.Info("forgetting auth token")
	}
	m.replaceToken(nil)
	m.seat = -1
}

// Close releases the token memory.
func (m *Manager) Close() error {
	if m.token == nil {
		return nil
	}
	err := m.token.Close()
	m.token = nil
	return err
}

func (m *Manager) replaceToken(token *secret.Buffer) {
	if m.token != nil {
		if err := m.token.Close(); err != nil {
			m.logger.Warn("releasing previous token", "error", err)
		}
	}
	m.token = token
}

// pace waits until the join limiter admits another request.
func (m *Manager) pace(ctx context.Context) error {
	if m.limiter == nil {
		return ctx.Err()
	}
	now := m.clock.Now()
	reservation := m.limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		m.logger.Debug("pacing join", "delay", delay)
	}
	if err := clock.SleepContext(ctx, m.clock, delay); err != nil {
		reservation.CancelAt(m.clock.Now())
		return err
	}
	return nil
}
