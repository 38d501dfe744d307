package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/gospelstack/sermon-audio/usecase"
)

func startHubServer(t *testing.T, hub *Hub) *httptest.Server {
	e := echo.New()
	e.GET("/ws/sermons/:id/progress", hub.HandleProgress)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, sermonID string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/sermons/" + sermonID + "/progress"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscriber(t *testing.T, hub *Hub, sermonID string) {
	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount(sermonID) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.SubscriberCount(sermonID) == 0 {
		t.Fatal("Subscriber never registered")
	}
}

func TestHubDeliversProgressEvents(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	server := startHubServer(t, hub)
	conn := dial(t, server, "sermon42")
	waitForSubscriber(t, hub, "sermon42")

	hub.NotifyProgress(usecase.ProgressEvent{
		SermonID:     "sermon42",
		LanguageCode: "en-US",
		State:        usecase.StateSynthesizing,
		ChunksDone:   1,
		ChunksTotal:  3,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ProgressMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	if msg.Type != MessageTypeProgress {
		t.Errorf("Expected type %s, got %s", MessageTypeProgress, msg.Type)
	}
	if msg.Event.State != usecase.StateSynthesizing {
		t.Errorf("Expected state synthesizing, got %s", msg.Event.State)
	}
	if msg.Event.ChunksDone != 1 || msg.Event.ChunksTotal != 3 {
		t.Errorf("Unexpected chunk counts: %+v", msg.Event)
	}
}

func TestHubScopesEventsToSermon(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	server := startHubServer(t, hub)
	conn := dial(t, server, "sermon42")
	waitForSubscriber(t, hub, "sermon42")

	// An event for a different sermon must not reach this subscriber.
	hub.NotifyProgress(usecase.ProgressEvent{SermonID: "other", State: usecase.StateChunking})
	hub.NotifyProgress(usecase.ProgressEvent{SermonID: "sermon42", State: usecase.StateChunking})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ProgressMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	if msg.Event.SermonID != "sermon42" {
		t.Errorf("Expected event for sermon42, got %s", msg.Event.SermonID)
	}
}

func TestHubClosesOnTerminalState(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	server := startHubServer(t, hub)
	conn := dial(t, server, "sermon42")
	waitForSubscriber(t, hub, "sermon42")

	hub.NotifyProgress(usecase.ProgressEvent{SermonID: "sermon42", State: usecase.StateCompleted})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ProgressMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read terminal message: %v", err)
	}
	if msg.Event.State != usecase.StateCompleted {
		t.Errorf("Expected completed, got %s", msg.Event.State)
	}

	// The server closes after the terminal event.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected connection to close after terminal state")
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount("sermon42") != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.SubscriberCount("sermon42") != 0 {
		t.Error("Expected subscriber to be removed")
	}
}

func TestHubNotifyWithoutSubscribersIsANoop(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	hub.NotifyProgress(usecase.ProgressEvent{SermonID: "nobody", State: usecase.StateChunking})
}
