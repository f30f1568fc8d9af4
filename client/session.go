// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/danielhkuo/merit-box/models"
)

// ConnState tracks the push-channel connection.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// LoadState tracks the initial value fetch, independent of the connection.
type LoadState int

const (
	Loading LoadState = iota
	Ready
)

func (s LoadState) String() string {
	if s == Ready {
		return "ready"
	}
	return "loading"
}

var (
	// ErrIncrementInFlight means a prior increment from this session has
	// not finished; the activation is ignored, not queued.
	ErrIncrementInFlight = errors.New("increment already in flight")

	ErrUnauthorized = errors.New("admin password rejected")
	ErrInvalidValue = errors.New("requested merit value rejected")
	ErrServer       = errors.New("server error")
)

// ownEventWindow bounds how long after our own increment response a
// matching pushed event is still treated as our own rather than a remote
// bump. Purely cosmetic.
const ownEventWindow = 2 * time.Second

// Options configures a Session.
type Options struct {
	// BaseURL of the API, e.g. "http://localhost:3000".
	BaseURL string

	HTTPClient *http.Client
	Dialer     *websocket.Dialer

	// ReconnectWait is the initial redial delay, doubled per failure up
	// to MaxReconnectWait. Defaults: 500ms and 30s.
	ReconnectWait    time.Duration
	MaxReconnectWait time.Duration

	// OnUpdate fires for every pushed merit event after it has been
	// applied to local state.
	OnUpdate func(models.MeritEvent)

	// OnRemoteBump fires for increment events that did not originate
	// from this session's own just-completed request.
	OnRemoteBump func(models.MeritEvent)
}

// Session is one connected client: a request path for reads and
// mutations plus a push subscription that keeps the local value in sync.
// Pushed values replace the local one unconditionally - the server is
// authoritative and the client performs no merge logic.
type Session struct {
	opts   Options
	httpc  *http.Client
	dialer *websocket.Dialer

	mu           sync.Mutex
	totalMerit   int
	lastUpdated  time.Time
	connState    ConnState
	loadState    LoadState
	inFlight     bool
	lastOwnMerit int
	lastOwnAt    time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func New(opts Options) *Session {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.ReconnectWait <= 0 {
		opts.ReconnectWait = 500 * time.Millisecond
	}
	if opts.MaxReconnectWait <= 0 {
		opts.MaxReconnectWait = 30 * time.Second
	}
	return &Session{
		opts:   opts,
		httpc:  opts.HTTPClient,
		dialer: opts.Dialer,
		done:   make(chan struct{}),
	}
}

// Start performs the initial read and opens the push subscription.
// A failed read leaves the session in Loading with the zero value
// untouched; the caller may Start again. The subscription keeps
// reconnecting in the background until Close.
func (s *Session) Start(ctx context.Context) error {
	resp, err := s.doMerit(ctx, http.MethodGet, nil)
	if err != nil {
		return fmt.Errorf("initial read failed: %w", err)
	}

	s.mu.Lock()
	s.totalMerit = resp.TotalMerit
	s.lastUpdated = resp.LastUpdated
	s.loadState = Ready
	s.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(runCtx)

	return nil
}

// Close stops the push subscription. Request-path calls still work on a
// closed session; only live updates stop.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	close(s.done)
}

// TotalMerit returns the locally displayed value.
func (s *Session) TotalMerit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalMerit
}

// LastUpdated returns the timestamp attached to the displayed value.
func (s *Session) LastUpdated() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdated
}

// States returns the connection and load states.
func (s *Session) States() (ConnState, LoadState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connState, s.loadState
}

// Increment adds one merit over the request path. While a prior call
// from this session is in flight further calls return
// ErrIncrementInFlight and are otherwise ignored. The guard is released
// on failure so the user can retry.
func (s *Session) Increment(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return 0, ErrIncrementInFlight
	}
	s.inFlight = true
	s.mu.Unlock()

	resp, err := s.doMerit(ctx, http.MethodPost, nil)

	s.mu.Lock()
	s.inFlight = false
	if err == nil {
		s.totalMerit = resp.TotalMerit
		s.lastUpdated = resp.LastUpdated
		s.lastOwnMerit = resp.TotalMerit
		s.lastOwnAt = time.Now()
	}
	s.mu.Unlock()

	if err != nil {
		return 0, err
	}
	return resp.TotalMerit, nil
}

// AdminVerify checks the password without touching the counter.
func (s *Session) AdminVerify(ctx context.Context, password string) error {
	body, err := json.Marshal(models.AdminVerifyRequest{AdminPassword: password})
	if err != nil {
		return fmt.Errorf("failed to marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.BaseURL+"/admin/verify", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("verify request failed: %w", err)
	}
	defer httpResp.Body.Close()

	switch {
	case httpResp.StatusCode == http.StatusNoContent:
		return nil
	case httpResp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrServer, httpResp.StatusCode)
	}
}

// AdminSet sets the counter to an absolute value. Failures leave local
// state untouched and identify the reason: ErrUnauthorized,
// ErrInvalidValue, or ErrServer.
func (s *Session) AdminSet(ctx context.Context, value int, password string) (int, error) {
	requested := float64(value)
	resp, err := s.doMerit(ctx, http.MethodPut, &models.AdminSetRequest{
		TotalMerit:    &requested,
		AdminPassword: password,
	})
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.totalMerit = resp.TotalMerit
	s.lastUpdated = resp.LastUpdated
	s.mu.Unlock()

	return resp.TotalMerit, nil
}

// doMerit issues a request against /merit and maps failure statuses onto
// the error taxonomy.
func (s *Session) doMerit(ctx context.Context, method string, body *models.AdminSetRequest) (models.MeritResponse, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return models.MeritResponse{}, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.opts.BaseURL+"/merit", reader)
	if err != nil {
		return models.MeritResponse{}, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := s.httpc.Do(req)
	if err != nil {
		return models.MeritResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	switch httpResp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return models.MeritResponse{}, ErrUnauthorized
	case http.StatusBadRequest:
		return models.MeritResponse{}, ErrInvalidValue
	default:
		return models.MeritResponse{}, fmt.Errorf("%w: unexpected status %d", ErrServer, httpResp.StatusCode)
	}

	var resp models.MeritResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return models.MeritResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp, nil
}

// run keeps the push subscription alive with doubling backoff until the
// session closes. The request path never depends on this loop.
func (s *Session) run(ctx context.Context) {
	wait := s.opts.ReconnectWait

	for {
		if ctx.Err() != nil {
			s.setConnState(Disconnected)
			return
		}

		s.setConnState(Connecting)
		conn, _, err := s.dialer.DialContext(ctx, s.wsURL(), nil)
		if err != nil {
			s.setConnState(Disconnected)
			slog.Debug("push channel dial failed", "error", err, "retry_in", wait)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			wait = min(wait*2, s.opts.MaxReconnectWait)
			continue
		}

		s.setConnState(Connected)
		wait = s.opts.ReconnectWait

		s.readLoop(ctx, conn)
		conn.Close()
		s.setConnState(Disconnected)
	}
}

// readLoop applies pushed frames until the connection drops.
func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Unblock the reader when the session shuts down.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var frame models.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			slog.Debug("push channel closed", "error", err)
			return
		}

		switch frame.Event {
		case models.EventMeritUpdated:
			var event models.MeritEvent
			if err := json.Unmarshal(frame.Data, &event); err != nil {
				slog.Debug("ignoring malformed merit event", "error", err)
				continue
			}
			s.apply(event)
		case models.EventMessage:
			// Echo/diagnostic side-channel; nothing to reconcile.
		default:
			slog.Debug("ignoring unknown event", "event", frame.Event)
		}
	}
}

// apply replaces the local value with the pushed one (last-write-wins
// from the server's perspective) and fires callbacks.
func (s *Session) apply(event models.MeritEvent) {
	s.mu.Lock()
	s.totalMerit = event.TotalMerit
	s.lastUpdated = event.Timestamp
	own := event.Action == models.ActionIncrement &&
		event.TotalMerit == s.lastOwnMerit &&
		time.Since(s.lastOwnAt) < ownEventWindow
	s.mu.Unlock()

	if s.opts.OnUpdate != nil {
		s.opts.OnUpdate(event)
	}
	if event.Action == models.ActionIncrement && !own && s.opts.OnRemoteBump != nil {
		s.opts.OnRemoteBump(event)
	}
}

func (s *Session) setConnState(state ConnState) {
	s.mu.Lock()
	s.connState = state
	s.mu.Unlock()
}

func (s *Session) wsURL() string {
	url := s.opts.BaseURL
	if strings.HasPrefix(url, "https://") {
		url = "wss://" + strings.TrimPrefix(url, "https://")
	} else if strings.HasPrefix(url, "http://") {
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url + "/ws"
}
