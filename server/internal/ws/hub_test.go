package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	wsHub "github.com/obsidianstack/alertrelay/server/internal/ws"
)

// --- helpers ----------------------------------------------------------------

func hello() wsHub.Message {
	return wsHub.Message{Event: "config", Data: map[string]any{"topic": "kubernetes-alerts"}}
}

// startHub starts a test HTTP server with the hub as its handler.
// The hub's Run loop is started with a cancellable context.
// Returns the ws:// URL, the hub, and a cancel function.
func startHub(t *testing.T) (wsURL string, hub *wsHub.Hub, cancel func()) {
	t.Helper()

	hub = wsHub.New(hello)
	ctx, cancelFn := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancelFn()
		srv.Close()
	})

	wsURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	return wsURL, hub, cancelFn
}

// dial connects a WebSocket client to wsURL and returns the connection.
func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessage reads one envelope from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(msg, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

// waitCount polls hub.Count until it equals want or the deadline passes.
func waitCount(t *testing.T, hub *wsHub.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Count() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("Count: got %d, want %d", hub.Count(), want)
}

// --- tests ------------------------------------------------------------------

func TestHub_Connect_ReceivesHello(t *testing.T) {
	wsURL, _, _ := startHub(t)

	m := readMessage(t, dial(t, wsURL))
	if m["event"] != "config" {
		t.Errorf("event: got %v, want config", m["event"])
	}
	data, ok := m["data"].(map[string]interface{})
	if !ok {
		t.Fatal("data: missing or wrong type")
	}
	if data["topic"] != "kubernetes-alerts" {
		t.Errorf("topic: got %v, want kubernetes-alerts", data["topic"])
	}
}

func TestHub_NoHello(t *testing.T) {
	hub := wsHub.New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := httptest.NewServer(hub)
	defer srv.Close()
	go hub.Run(ctx)

	conn := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"))
	waitCount(t, hub, 1)

	hub.Publish("delivery", map[string]int{"sent": 1})
	if m := readMessage(t, conn); m["event"] != "delivery" {
		t.Errorf("first message: got %v, want delivery", m["event"])
	}
}

func TestHub_PublishReachesAllClients(t *testing.T) {
	wsURL, hub, _ := startHub(t)

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = dial(t, wsURL)
		readMessage(t, conns[i]) // consume hello
	}
	waitCount(t, hub, 3)

	hub.Publish("delivery", map[string]any{"alertname": "PodCrashLooping", "sent": 1, "total": 2})

	for i, conn := range conns {
		m := readMessage(t, conn)
		if m["event"] != "delivery" {
			t.Errorf("client %d: event: got %v, want delivery", i, m["event"])
			continue
		}
		data := m["data"].(map[string]interface{})
		if data["alertname"] != "PodCrashLooping" || data["total"].(float64) != 2 {
			t.Errorf("client %d: data: got %v", i, data)
		}
	}
}

func TestHub_PublishWithoutClients(t *testing.T) {
	_, hub, _ := startHub(t)
	for i := 0; i < 200; i++ {
		hub.Publish("delivery", i) // must never block
	}
}

func TestHub_UnencodableEventDropped(t *testing.T) {
	wsURL, hub, _ := startHub(t)
	conn := dial(t, wsURL)
	readMessage(t, conn)
	waitCount(t, hub, 1)

	hub.Publish("bad", make(chan int))
	hub.Publish("delivery", "ok")

	if m := readMessage(t, conn); m["event"] != "delivery" {
		t.Errorf("event: got %v, want delivery", m["event"])
	}
}

func TestHub_CountClients_DecreasesOnDisconnect(t *testing.T) {
	wsURL, hub, _ := startHub(t)

	conn := dial(t, wsURL)
	readMessage(t, conn)
	waitCount(t, hub, 1)

	conn.Close()
	waitCount(t, hub, 0)
}

func TestHub_CancelContextClosesConnections(t *testing.T) {
	wsURL, hub, cancel := startHub(t)

	conn := dial(t, wsURL)
	readMessage(t, conn)
	waitCount(t, hub, 1)

	cancel() // signal shutdown
	waitCount(t, hub, 0)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to be closed after cancel")
	}
}

func TestHub_NonWebSocketRequest_Returns400(t *testing.T) {
	hub := wsHub.New(hello)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	// Plain HTTP GET without WebSocket upgrade headers.
	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}
