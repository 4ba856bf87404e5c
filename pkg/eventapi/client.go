package eventapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chatpaint/paintd/internal/errors"
)

// SessionHeader carries the per-connection session id.
const SessionHeader = "X-Session-Id"

// Defaults for Config.
const (
	DefaultReadTimeout = 90 * time.Second
	DefaultMinBackoff  = time.Second
	DefaultMaxBackoff  = time.Minute
	DefaultReadLimit   = 1 << 20
)

// EventRecorder is notified of every event applied to the registry.
type EventRecorder interface {
	RecordEvent(eventType string)
}

// Config configures a Client.
type Config struct {
	// URL is the WebSocket endpoint.
	URL string

	// ReadTimeout closes a connection that has been silent this long.
	// The server heartbeats well inside the default.
	ReadTimeout time.Duration

	// MinBackoff and MaxBackoff bound the reconnect delay.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the applied-event recorder.
func WithRecorder(r EventRecorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// WithDialer overrides websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// Client streams live events into an Applier.
type Client struct {
	config   Config
	target   Applier
	recorder EventRecorder
	dialer   *websocket.Dialer
	logger   *slog.Logger
}

// NewClient creates a Client. Zero Config durations take their defaults.
func NewClient(config Config, target Applier, opts ...Option) *Client {
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = DefaultReadTimeout
	}
	if config.MinBackoff <= 0 {
		config.MinBackoff = DefaultMinBackoff
	}
	if config.MaxBackoff < config.MinBackoff {
		config.MaxBackoff = DefaultMaxBackoff
		if config.MaxBackoff < config.MinBackoff {
			config.MaxBackoff = config.MinBackoff
		}
	}

	c := &Client{
		config: config,
		target: target,
		dialer: websocket.DefaultDialer,
		logger: slog.Default().With("component", "eventapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run connects and applies events until ctx is done, reconnecting with
// capped exponential backoff. The delay resets after a connection that
// delivered at least one frame.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.config.MinBackoff

	for {
		received, err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if received {
			backoff = c.config.MinBackoff
		}

		c.logger.Warn("event stream disconnected", "error", err, "retry_in", backoff)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		backoff *= 2
		if backoff > c.config.MaxBackoff {
			backoff = c.config.MaxBackoff
		}
	}
}

// session runs one connection. It reports whether any frame arrived.
func (c *Client) session(ctx context.Context) (bool, error) {
	sessionID := uuid.NewString()
	logger := c.logger.With("session_id", sessionID)

	conn, err := c.Dial(ctx, sessionID)
	if err != nil {
		return false, err
	}

	stop := context.AfterFunc(ctx, func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()
	defer conn.Close()

	if err := c.subscribe(conn); err != nil {
		return false, errors.New("P120").Wrap(err)
	}
	logger.Info("event stream connected", "url", c.config.URL)

	return c.ReadLoop(conn, logger)
}

// Dial opens a connection tagged with sessionID.
func (c *Client) Dial(ctx context.Context, sessionID string) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set(SessionHeader, sessionID)

	conn, resp, err := c.dialer.DialContext(ctx, c.config.URL, header)
	if err != nil {
		detail := err.Error()
		if resp != nil {
			detail = resp.Status
		}
		return nil, errors.New("P120").WithDetail(detail).Wrap(err)
	}
	conn.SetReadLimit(DefaultReadLimit)
	return conn, nil
}

func (c *Client) subscribe(conn *websocket.Conn) error {
	for _, t := range Subscriptions {
		msg, err := subscribeFrame(t)
		if err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return err
		}
	}
	return nil
}

// ReadLoop applies frames from conn until it fails. Malformed frames and
// unknown event types are logged and skipped.
func (c *Client) ReadLoop(conn *websocket.Conn, logger *slog.Logger) (bool, error) {
	received := false
	for {
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				logger.Error("read error", "error", err)
			}
			return received, errors.New("P121").Wrap(err)
		}
		received = true

		frame, d, err := DecodeFrame(msg)
		if err != nil {
			logger.Warn("frame decode error", "error", err)
			continue
		}
		if d == nil {
			logger.Debug("frame ignored", "op", frame.Op)
			continue
		}

		if !Apply(c.target, d) {
			logger.Debug("event ignored", "type", d.Type)
			continue
		}
		if c.recorder != nil {
			c.recorder.RecordEvent(d.Type)
		}
	}
}
