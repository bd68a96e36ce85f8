package realtime

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/plugins/auth"
)

const (
	// writeWait is the deadline for a single socket write.
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong before declaring the
	// connection dead. Pings go out at pingPeriod (< pongWait).
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps inbound messages. Clients only listen on this
	// channel, so anything beyond a pong is tiny.
	maxMessageSize = 512
)

// upgrader turns HTTP requests into websocket connections. Origin checking
// is skipped: the socket carries no ambient credentials (no cookies), so a
// cross-origin page gains nothing without a valid token.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler returns the Echo handler for GET /ws. The client may pass its
// bearer token as a "token" query parameter on the upgrade request; a valid
// token binds the connection to that user so user-targeted notifications
// reach it. Without a token (or with a stale one) the connection is
// registered anonymously and receives only broadcasts. The binding happens
// once, at connect time.
func Handler(b *Broker, authSvc auth.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var userID string
		if token := c.QueryParam("token"); token != "" {
			session, err := authSvc.Verify(c.Request().Context(), token)
			if err == nil {
				userID = session.UserID
			}
		}

		sock, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response.
			return nil
		}

		conn := b.add(userID)
		if conn == nil {
			// Broker is shutting down.
			sock.Close()
			return nil
		}

		go writePump(sock, conn)
		go readPump(b, sock, conn)
		return nil
	}
}

// writePump is the single writer for one socket. It drains the connection's
// send channel in FIFO order and keeps the connection alive with pings.
// When the broker closes the send channel, it tells the client and exits.
func writePump(sock *websocket.Conn, c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sock.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			sock.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Broker removed this connection.
				sock.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sock.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes (and discards) inbound messages so pong handling and
// close frames are processed. Any read error -- explicit close or network
// failure -- unregisters the connection; remove is idempotent, so a
// connection already dropped by a slow-client eviction is a no-op here.
func readPump(b *Broker, sock *websocket.Conn, c *connection) {
	defer func() {
		b.remove(c.id)
		sock.Close()
	}()

	sock.SetReadLimit(maxMessageSize)
	sock.SetReadDeadline(time.Now().Add(pongWait))
	sock.SetPongHandler(func(string) error {
		sock.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := sock.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("realtime connection read error",
					slog.Uint64("connection_id", c.id),
					slog.Any("error", err),
				)
			}
			return
		}
	}
}
