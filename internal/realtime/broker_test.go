package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
	"github.com/ecotrackapp/ecotrack/internal/plugins/auth"
)

// tokenAuthService maps fixed tokens to user ids for connection tests.
type tokenAuthService struct {
	tokens map[string]string // token -> user id
}

func (s *tokenAuthService) Register(ctx context.Context, input auth.RegisterInput) (*auth.User, string, error) {
	return nil, "", nil
}

func (s *tokenAuthService) Login(ctx context.Context, input auth.LoginInput) (string, *auth.User, error) {
	return "", nil, nil
}

func (s *tokenAuthService) Verify(ctx context.Context, token string) (*auth.Session, error) {
	if userID, ok := s.tokens[token]; ok {
		return &auth.Session{UserID: userID}, nil
	}
	return nil, apperror.NewUnauthenticated("session expired or invalid")
}

func (s *tokenAuthService) Logout(ctx context.Context, token string) error {
	return nil
}

// testNotification is the payload shape published in these tests.
type testNotification struct {
	ID      string  `json:"id"`
	UserID  *string `json:"user_id"`
	Message string  `json:"message"`
}

// newTestServer starts an Echo server exposing the broker at /ws and
// returns the broker plus the ws:// URL to dial.
func newTestServer(t *testing.T, authSvc auth.AuthService) (*Broker, string) {
	t.Helper()
	b := NewBroker()
	e := echo.New()
	e.GET("/ws", Handler(b, authSvc))

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	t.Cleanup(b.Shutdown)

	return b, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

// dial connects a websocket client, optionally with a token query param.
func dial(t *testing.T, url, token string) *websocket.Conn {
	t.Helper()
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForConnections polls until the broker registry reaches n connections.
func waitForConnections(t *testing.T, b *Broker, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.ConnectionCount() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d connections, have %d", n, b.ConnectionCount())
}

// readFrame reads one frame from the socket within the given timeout.
func readFrame(t *testing.T, conn *websocket.Conn, timeout time.Duration) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("unmarshaling frame: %v", err)
	}
	return f
}

// expectNoFrame asserts that nothing arrives on the socket within timeout.
func expectNoFrame(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(timeout))
	if _, data, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected no delivery, got %s", data)
	}
}

// frameMessage extracts notification.message from a decoded frame.
func frameMessage(t *testing.T, f Frame) string {
	t.Helper()
	raw, err := json.Marshal(f.Notification)
	if err != nil {
		t.Fatalf("re-marshaling notification: %v", err)
	}
	var n testNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		t.Fatalf("unmarshaling notification: %v", err)
	}
	return n.Message
}

func strPtr(s string) *string { return &s }

func TestPublish_TargetedDelivery(t *testing.T) {
	authSvc := &tokenAuthService{tokens: map[string]string{
		"token-1": "user-1",
		"token-2": "user-2",
	}}
	b, url := newTestServer(t, authSvc)

	conn1 := dial(t, url, "token-1")
	conn2 := dial(t, url, "token-2")
	waitForConnections(t, b, 2)

	b.Publish(strPtr("user-1"), testNotification{
		ID: "n-1", UserID: strPtr("user-1"), Message: "you planted a tree",
	})

	f := readFrame(t, conn1, 2*time.Second)
	if f.Event != EventNewNotification {
		t.Errorf("expected event %q, got %q", EventNewNotification, f.Event)
	}
	if msg := frameMessage(t, f); msg != "you planted a tree" {
		t.Errorf("expected published message, got %q", msg)
	}

	// The other user's connection must see nothing, and no error occurs.
	expectNoFrame(t, conn2, 200*time.Millisecond)
}

func TestPublish_NoMatchingConnection(t *testing.T) {
	authSvc := &tokenAuthService{tokens: map[string]string{"token-2": "user-2"}}
	b, url := newTestServer(t, authSvc)

	conn2 := dial(t, url, "token-2")
	waitForConnections(t, b, 1)

	// Target user-1, who is not connected: dropped silently.
	b.Publish(strPtr("user-1"), testNotification{ID: "n-1", Message: "nobody home"})

	expectNoFrame(t, conn2, 200*time.Millisecond)
	if b.ConnectionCount() != 1 {
		t.Errorf("expected registry untouched, have %d connections", b.ConnectionCount())
	}
}

func TestPublish_Broadcast(t *testing.T) {
	authSvc := &tokenAuthService{tokens: map[string]string{
		"token-1": "user-1",
		"token-2": "user-2",
	}}
	b, url := newTestServer(t, authSvc)

	conn1 := dial(t, url, "token-1")
	conn2 := dial(t, url, "token-2")
	anon := dial(t, url, "")
	waitForConnections(t, b, 3)

	b.Publish(nil, testNotification{ID: "n-1", Message: "new challenge posted"})

	for i, conn := range []*websocket.Conn{conn1, conn2, anon} {
		f := readFrame(t, conn, 2*time.Second)
		if msg := frameMessage(t, f); msg != "new challenge posted" {
			t.Errorf("connection %d: expected broadcast message, got %q", i, msg)
		}
	}
}

func TestPublish_AnonymousSkipsTargeted(t *testing.T) {
	authSvc := &tokenAuthService{tokens: map[string]string{}}
	b, url := newTestServer(t, authSvc)

	// A stale token degrades to an anonymous connection.
	anon := dial(t, url, "stale-token")
	waitForConnections(t, b, 1)

	b.Publish(strPtr("user-1"), testNotification{ID: "n-1", Message: "private"})

	expectNoFrame(t, anon, 200*time.Millisecond)
}

func TestPublish_FIFOOrder(t *testing.T) {
	authSvc := &tokenAuthService{tokens: map[string]string{"token-1": "user-1"}}
	b, url := newTestServer(t, authSvc)

	conn := dial(t, url, "token-1")
	waitForConnections(t, b, 1)

	messages := []string{"first", "second", "third", "fourth"}
	for _, msg := range messages {
		b.Publish(strPtr("user-1"), testNotification{Message: msg})
	}

	for i, want := range messages {
		f := readFrame(t, conn, 2*time.Second)
		if got := frameMessage(t, f); got != want {
			t.Errorf("frame %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestClientDisconnect_RemovesConnection(t *testing.T) {
	authSvc := &tokenAuthService{tokens: map[string]string{"token-1": "user-1"}}
	b, url := newTestServer(t, authSvc)

	conn := dial(t, url, "token-1")
	waitForConnections(t, b, 1)

	conn.Close()
	waitForConnections(t, b, 0)

	// Publishing after the disconnect must not error or panic.
	b.Publish(strPtr("user-1"), testNotification{Message: "after close"})
}

func TestRemove_Idempotent(t *testing.T) {
	b := NewBroker()
	c := b.add("user-1")
	if c == nil {
		t.Fatal("expected connection")
	}

	b.remove(c.id)
	// A repeated disconnect event is a no-op, not a double close.
	b.remove(c.id)

	if b.ConnectionCount() != 0 {
		t.Errorf("expected empty registry, have %d", b.ConnectionCount())
	}
}

func TestSlowClient_DroppedWithoutBlocking(t *testing.T) {
	b := NewBroker()
	// No writer goroutine drains this connection, simulating a stalled client.
	c := b.add("user-1")
	fast := b.add("user-1")

	done := make(chan struct{})
	go func() {
		defer close(done)
		// One more publish than the buffer holds: the stalled connection
		// must be evicted instead of blocking the publisher.
		for i := 0; i <= sendBufferSize; i++ {
			b.Publish(strPtr("user-1"), testNotification{Message: "m"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow client")
	}

	b.mu.Lock()
	_, slowAlive := b.conns[c.id]
	_, fastAlive := b.conns[fast.id]
	b.mu.Unlock()

	if slowAlive {
		t.Error("expected the stalled connection to be removed")
	}
	if fastAlive {
		// The second connection had no reader either, so it is also full
		// by now; both being evicted is acceptable. What matters is that
		// the publisher never blocked. Nothing to assert here.
		_ = fastAlive
	}
}

func TestShutdown_ClosesEverything(t *testing.T) {
	authSvc := &tokenAuthService{tokens: map[string]string{"token-1": "user-1"}}
	b, url := newTestServer(t, authSvc)

	dial(t, url, "token-1")
	dial(t, url, "")
	waitForConnections(t, b, 2)

	b.Shutdown()

	if b.ConnectionCount() != 0 {
		t.Errorf("expected empty registry after shutdown, have %d", b.ConnectionCount())
	}
	if c := b.add("user-1"); c != nil {
		t.Error("expected add after shutdown to be refused")
	}
}

func TestHTTPRequestToWSEndpoint(t *testing.T) {
	authSvc := &tokenAuthService{tokens: map[string]string{}}
	_, url := newTestServer(t, authSvc)

	// A plain GET without the upgrade handshake gets an HTTP error, not a hang.
	httpURL := "http" + strings.TrimPrefix(url, "ws")
	resp, err := http.Get(httpURL)
	if err != nil {
		t.Fatalf("plain GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for non-websocket request, got %d", resp.StatusCode)
	}
}
