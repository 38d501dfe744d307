package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/gospelstack/sermon-audio/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 30 * time.Second

	// Buffered events per subscriber; slow readers drop events rather
	// than stall a generation run.
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type subscriber struct {
	send chan usecase.ProgressEvent
}

// Hub fans generation progress events out to websocket subscribers, keyed
// by sermon ID. It implements usecase.ProgressNotifier.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	logger      *zap.Logger
}

var _ usecase.ProgressNotifier = (*Hub)(nil)

// NewHub creates a new progress hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*subscriber]struct{}),
		logger:      logger,
	}
}

// NotifyProgress implements usecase.ProgressNotifier. Delivery is
// best-effort: a subscriber whose buffer is full misses the event.
func (h *Hub) NotifyProgress(event usecase.ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[event.SermonID] {
		select {
		case sub.send <- event:
		default:
		}
	}
}

func (h *Hub) subscribe(sermonID string) *subscriber {
	sub := &subscriber{send: make(chan usecase.ProgressEvent, sendBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[sermonID] == nil {
		h.subscribers[sermonID] = make(map[*subscriber]struct{})
	}
	h.subscribers[sermonID][sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(sermonID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subscribers[sermonID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subscribers, sermonID)
		}
	}
}

// SubscriberCount returns the number of live subscribers for a sermon.
func (h *Hub) SubscriberCount(sermonID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[sermonID])
}

// HandleProgress upgrades the connection and streams progress events for
// the sermon in the :id path parameter until the client disconnects.
func (h *Hub) HandleProgress(c echo.Context) error {
	sermonID := c.Param("id")
	if sermonID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "sermon id is required")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sub := h.subscribe(sermonID)
	h.logger.Info("Progress subscriber connected", zap.String("sermon_id", sermonID))

	done := make(chan struct{})

	// Reader: only there to observe the close handshake.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.unsubscribe(sermonID, sub)
		conn.Close()
		h.logger.Info("Progress subscriber disconnected", zap.String("sermon_id", sermonID))
	}()

	for {
		select {
		case <-done:
			return nil
		case event := <-sub.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(NewProgressMessage(event)); err != nil {
				return nil
			}
			if event.State == usecase.StateCompleted || event.State == usecase.StateFailed {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}
