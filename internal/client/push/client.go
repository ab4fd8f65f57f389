package push

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/dmitrijs2005/citybreaks/internal/logging"
	"github.com/sethvargo/go-retry"
)

// Handler receives every valid notification.
type Handler func(ctx context.Context, n Notification)

type Client struct {
	url      string
	logger   logging.Logger
	handler  Handler
	maxDelay time.Duration
	minDelay time.Duration
}

// NewClient derives the websocket URL from the HTTP base URL of the server
// (http→ws, https→wss, same host, root path).
func NewClient(baseURL string, h Handler, l logging.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("push url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("push url: unsupported scheme %q", u.Scheme)
	}
	u.Path = "/"

	if h == nil {
		h = func(context.Context, Notification) {}
	}
	return &Client{
		url:      u.String(),
		logger:   l.With("module", "push"),
		handler:  h,
		minDelay: 500 * time.Millisecond,
		maxDelay: 30 * time.Second,
	}, nil
}

// Run keeps a session open until ctx is done, reconnecting with capped
// exponential backoff. It returns ctx.Err().
func (c *Client) Run(ctx context.Context, token string) error {
	backoff := c.newBackoff()
	for {
		connected, err := c.session(ctx, token)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = c.newBackoff()
		}

		delay, _ := backoff.Next()
		c.logger.Info(ctx, "web socket closed", "error", err, "retry_in", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) newBackoff() retry.Backoff {
	return retry.WithCappedDuration(c.maxDelay, retry.NewExponential(c.minDelay))
}

// session dials, authorizes and reads until the connection fails. connected
// reports whether the handshake went through.
func (c *Client) session(ctx context.Context, token string) (connected bool, err error) {
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.CloseNow()

	auth, err := NewAuthorization(token)
	if err != nil {
		return false, err
	}
	if err := wsjson.Write(ctx, conn, auth); err != nil {
		return false, fmt.Errorf("send authorization: %w", err)
	}
	c.logger.Info(ctx, "web socket open", "url", c.url)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
				return true, nil
			}
			return true, err
		}

		n, err := ParseNotification(data)
		if err != nil {
			c.logger.Warn(ctx, "dropping push message", "error", err)
			continue
		}
		c.logger.Info(ctx, "web socket message", "type", n.Type, "id", n.Record.ID, "version", n.Record.Version)
		c.handler(ctx, n)
	}
}
