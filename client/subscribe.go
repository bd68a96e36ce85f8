package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Notification is a realtime notification event as delivered on the socket.
type Notification struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// wsFrame is the wire shape of one socket message.
type wsFrame struct {
	Event        string       `json:"event"`
	Notification Notification `json:"notification"`
}

// Subscribe connects to the server's realtime channel and returns a channel
// of incoming notifications. With a token the subscription also receives the
// user's targeted notifications; without one, broadcasts only.
//
// The returned channel closes when the socket dies or ctx is cancelled.
// Reconnecting is the caller's decision.
func Subscribe(ctx context.Context, baseURL, token string) (<-chan Notification, error) {
	wsURL, err := socketURL(baseURL, token)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", wsURL, err)
	}

	out := make(chan Notification)

	// Close the socket on cancellation so the read loop unblocks.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(out)
		defer conn.Close()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var frame wsFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				// Skip unparseable frames rather than killing the stream.
				continue
			}
			if frame.Event != "new_notification" {
				continue
			}

			select {
			case out <- frame.Notification:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// socketURL converts the API base URL into the ws:// endpoint, attaching the
// token as a query parameter when present.
func socketURL(baseURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = u.Path + "/ws"
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
