// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package table

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/zeebo/blake3"

	"github.com/dolsoe-poker/tablebot/lib/clock"
	"github.com/dolsoe-poker/tablebot/lib/netutil"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// ServerURL is the base URL of the game server
	// (e.g., "https://dolsoe-poker.onrender.com").
	ServerURL string

	// HTTPClient is used for all requests. If nil, a client with a
	// compressing transport and RequestTimeout is built.
	HTTPClient *http.Client

	// RequestTimeout bounds each HTTP exchange when HTTPClient is nil.
	// Zero means no timeout beyond the transport's own.
	RequestTimeout time.Duration

	// DefaultRetryAfter is the wait applied to a 429 without any
	// retry-after information. Defaults to DefaultRetryAfter.
	DefaultRetryAfter time.Duration

	// Clock provides time operations. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client is a game server API client. It is safe for concurrent use,
// though the sync loop only ever issues one request at a time.
type Client struct {
	baseURL           string
	httpClient        *http.Client
	etagCache         *etagCache
	defaultRetryAfter time.Duration
	clock             clock.Clock
	logger            *slog.Logger
}

// NewClient creates a game server client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ServerURL == "" {
		return nil, fmt.Errorf("table: ServerURL is required")
	}
	parsed, err := url.Parse(config.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("table: invalid ServerURL %q: %w", config.ServerURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("table: ServerURL %q must be http or https", config.ServerURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: gzhttp.Transport(http.DefaultTransport),
			Timeout:   config.RequestTimeout,
		}
	}

	retryAfter := config.DefaultRetryAfter
	if retryAfter <= 0 {
		retryAfter = DefaultRetryAfter
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:           strings.TrimRight(config.ServerURL, "/"),
		httpClient:        httpClient,
		etagCache:         newETagCache(),
		defaultRetryAfter: retryAfter,
		clock:             clk,
		logger:            logger,
	}, nil
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's pool. Call after repeated transport failures so the next
// request dials a fresh connection instead of reusing a poisoned one.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// ForgetCachedState drops cached state bodies. Call when the token
// changes.
func (c *Client) ForgetCachedState() {
	c.etagCache.forget()
}

// Join requests a seat at a table. A rejection (table full, duplicate
// name without a valid token, cooldown exhausted by context) is
// returned as *APIError.
func (c *Client) Join(ctx context.Context, request JoinRequest) (*JoinResponse, error) {
	if request.Name == "" {
		return nil, fmt.Errorf("table: name is required for join")
	}
	if request.TableID == "" {
		return nil, fmt.Errorf("table: table ID is required for join")
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/api/join", nil, request)
	if err != nil {
		return nil, fmt.Errorf("table: join failed: %w", err)
	}

	var response JoinResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("table: failed to parse join response: %w", err)
	}
	if !response.OK {
		return nil, fmt.Errorf("table: join failed: %w", rejectionFromBody(http.StatusOK, body))
	}
	if response.Token == "" {
		return nil, fmt.Errorf("table: join response carried no token")
	}
	return &response, nil
}

// State fetches the current table snapshot as seen by query.Player. An
// error payload ({"ok": false} or {"error": ...}) is returned as
// *APIError.
func (c *Client) State(ctx context.Context, query StateQuery) (*State, error) {
	if query.TableID == "" {
		return nil, fmt.Errorf("table: table ID is required for state")
	}

	values := url.Values{}
	values.Set("table_id", query.TableID)
	if query.Player != "" {
		values.Set("player", query.Player)
	}
	if query.Token != "" {
		values.Set("token", query.Token)
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/api/state", values, nil)
	if err != nil {
		return nil, fmt.Errorf("table: state failed: %w", err)
	}

	if rejection := errorPayload(body); rejection != nil {
		return nil, fmt.Errorf("table: state failed: %w", rejection)
	}

	var state State
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("table: failed to parse state response: %w", err)
	}
	if state.Turn != nil {
		state.Turn.normalize(query.Player)
	}
	state.Fingerprint = fingerprint(body)
	return &state, nil
}

// Action submits a betting action. Acceptance returns the decoded
// response; every rejection, including a stale turn, is *APIError.
func (c *Client) Action(ctx context.Context, request ActionRequest) (*ActionResponse, error) {
	if request.Name == "" || request.TableID == "" {
		return nil, fmt.Errorf("table: name and table ID are required for action")
	}
	if request.Action == "" {
		return nil, fmt.Errorf("table: action kind is required")
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/api/action", nil, request)
	if err != nil {
		return nil, fmt.Errorf("table: action failed: %w", err)
	}

	var response ActionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("table: failed to parse action response: %w", err)
	}
	if !response.OK {
		return nil, fmt.Errorf("table: action failed: %w", rejectionFromBody(http.StatusOK, body))
	}
	return &response, nil
}

// Leave gives up the seat.
func (c *Client) Leave(ctx context.Context, request LeaveRequest) error {
	if _, err := c.doRequest(ctx, http.MethodPost, "/api/leave", nil, request); err != nil {
		return fmt.Errorf("table: leave failed: %w", err)
	}
	return nil
}

// doRequest performs one logical API request and returns the 2xx
// response body. A 429 is never returned: the identical request is
// re-sent after the server-specified wait, for as long as ctx allows.
// Non-2xx responses with a JSON body become *APIError; anything else
// is a plain error.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, requestBody any) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var encoded []byte
	if requestBody != nil {
		var err error
		encoded, err = json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	for {
		status, header, body, err := c.roundTrip(ctx, method, requestURL, encoded)
		if err != nil {
			return nil, fmt.Errorf("request to %s %s failed: %w", method, path, err)
		}

		switch {
		case status == http.StatusTooManyRequests:
			wait := c.retryAfter(header, body)
			c.logger.Info("rate limited, honoring retry-after",
				"method", method,
				"path", path,
				"retry_after", wait,
			)
			if err := clock.SleepContext(ctx, c.clock, wait); err != nil {
				return nil, fmt.Errorf("waiting out rate limit on %s %s: %w", method, path, err)
			}
			continue

		case status == http.StatusNotModified && method == http.MethodGet:
			if cached := c.etagCache.body(requestURL); cached != nil {
				return cached, nil
			}
			return nil, fmt.Errorf("unexpected 304 from %s %s with no cached body", method, path)

		case status >= 200 && status < 300:
			if method == http.MethodGet {
				c.etagCache.put(requestURL, header.Get("ETag"), body)
			}
			return body, nil
		}

		return nil, rejectionFromBody(status, body)
	}
}

// roundTrip sends one HTTP request and reads the bounded response.
func (c *Client) roundTrip(ctx context.Context, method, requestURL string, encoded []byte) (int, http.Header, []byte, error) {
	var bodyReader io.Reader
	if encoded != nil {
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if encoded != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodGet {
		if etag := c.etagCache.get(requestURL); etag != "" {
			request.Header.Set("If-None-Match", etag)
		}
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, nil, nil, err
	}
	defer response.Body.Close()

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return response.StatusCode, response.Header, body, nil
}

// errorBody is the shape shared by every server-side rejection.
type errorBody struct {
	OK      *bool  `json:"ok"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// rejectionFromBody builds an *APIError from a response body. A body
// that is not JSON yields a plain error carrying the raw text, so it
// classifies as a transport failure rather than a server decision. A
// 409 Conflict is the exception: the status alone says the turn moved
// on, whatever a proxy put in the body.
func rejectionFromBody(status int, body []byte) error {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		text := truncate(strings.TrimSpace(string(body)), 200)
		if status == http.StatusConflict {
			return &APIError{StatusCode: status, Message: text}
		}
		return fmt.Errorf("unexpected %d response: %s", status, text)
	}
	message := parsed.Message
	if message == "" {
		message = parsed.Error
	}
	return &APIError{StatusCode: status, Code: parsed.Code, Message: message}
}

// errorPayload reports a 2xx state body that nonetheless signals an
// error, or nil.
func errorPayload(body []byte) error {
	var parsed errorBody
	if json.Unmarshal(body, &parsed) != nil {
		return nil
	}
	if parsed.Error == "" && (parsed.OK == nil || *parsed.OK) {
		return nil
	}
	return rejectionFromBody(http.StatusOK, body)
}

// fingerprint returns the first 16 hex characters of the blake3
// digest of body.
func fingerprint(body []byte) string {
	digest := blake3.Sum256(body)
	return hex.EncodeToString(digest[:8])
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
