package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gitchest/gitchest/internal/events"
)

// Listen subscribes to backend events named name over the /events
// websocket and runs h for each one in order. Dial failures are returned
// immediately; the returned Unlisten closes the connection.
func (c *Client) Listen(name string, h events.Handler) (events.Unlisten, error) {
	return c.ListenContext(context.Background(), name, h)
}

// ListenContext is Listen with a context bounding the handshake.
func (c *Client) ListenContext(ctx context.Context, name string, h events.Handler) (events.Unlisten, error) {
	target, err := c.eventsURL(name)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	go func() {
		for {
			var ev events.Event
			if err := conn.ReadJSON(&ev); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.logger.Debug("event stream ended", "event", name, "error", err)
				}
				return
			}
			h(ev)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		})
	}, nil
}

func (c *Client) eventsURL(name string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/events"
	if name != "" && name != events.Wildcard {
		u.RawQuery = url.Values{"event": []string{name}}.Encode()
	}
	return u.String(), nil
}
