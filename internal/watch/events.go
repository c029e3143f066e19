package watch

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rclgo/msgidl/compiler/errors"
)

// Event types
const (
	EventChecking = "checking"
	EventResult   = "result"
)

// Event is a check notification sent to status clients
type Event struct {
	ID        string       `json:"id"`
	Type      string       `json:"type"`
	Package   string       `json:"package"`
	Timestamp int64        `json:"timestamp"`
	Files     []string     `json:"files,omitempty"`
	Removed   []string     `json:"removed,omitempty"`
	Errors    []*ErrorInfo `json:"errors,omitempty"`
	Total     int          `json:"total"`
	Failed    int          `json:"failed"`
	Duration  float64      `json:"duration,omitempty"` // Milliseconds
}

// ErrorInfo holds one diagnostic
type ErrorInfo struct {
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Code     string `json:"code,omitempty"`
	Phase    string `json:"phase,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// NewErrorInfo converts a diagnostic
func NewErrorInfo(ce errors.CompilerError) *ErrorInfo {
	return &ErrorInfo{
		Message:  ce.Message,
		File:     ce.Location.File,
		Line:     ce.Location.Line,
		Column:   ce.Location.Column,
		Code:     ce.Code,
		Phase:    ce.Phase,
		Severity: ce.Severity.String(),
	}
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 4 * 1024
	sendBuffer     = 32
)

type client struct {
	id   string
	conn *websocket.Conn
	// Outbound events; the hub never writes to conn directly
	send chan []byte
}

// EventHub manages WebSocket status clients. The most recent result is
// replayed to clients as they connect. A client whose send buffer is
// full is dropped.
type EventHub struct {
	clients    map[*client]bool
	broadcast  chan *Event
	register   chan *client
	unregister chan *client
	done       chan struct{}
	closeOnce  sync.Once
	mutex      sync.RWMutex
	last       *Event
	upgrader   websocket.Upgrader
	pongWait   time.Duration
	pingPeriod time.Duration
	logger     *zap.Logger
}

// NewEventHub creates a hub and starts its dispatch loop
func NewEventHub(logger *zap.Logger) *EventHub {
	return newEventHub(logger, pongWait)
}

func newEventHub(logger *zap.Logger, wait time.Duration) *EventHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &EventHub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		pongWait:   wait,
		pingPeriod: (wait * 9) / 10,
		logger:     logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return strings.HasPrefix(origin, "http://localhost") ||
					strings.HasPrefix(origin, "https://localhost") ||
					strings.HasPrefix(origin, "http://127.0.0.1") ||
					strings.HasPrefix(origin, "https://127.0.0.1")
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	go h.run()

	return h
}

// run owns the client set. It never blocks on a client.
func (h *EventHub) run() {
	for {
		select {
		case <-h.done:
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = true
			count := len(h.clients)
			last := h.last
			h.mutex.Unlock()
			h.logger.Debug("status client connected", zap.String("client", c.id), zap.Int("total", count))
			if last != nil {
				if data, ok := h.marshal(last); ok {
					c.send <- data
				}
			}

		case c := <-h.unregister:
			h.mutex.Lock()
			h.remove(c)
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug("status client disconnected", zap.String("client", c.id), zap.Int("total", count))

		case event := <-h.broadcast:
			h.sendToAll(event)
		}
	}
}

// remove must be called with the mutex held
func (h *EventHub) remove(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
}

func (h *EventHub) marshal(event *Event) ([]byte, bool) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", zap.Error(err))
		return nil, false
	}
	return data, true
}

// sendToAll queues an event for every client and drops the ones that
// are not keeping up
func (h *EventHub) sendToAll(event *Event) {
	data, ok := h.marshal(event)
	if !ok {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow status client", zap.String("client", c.id))
			h.remove(c)
		}
	}
}

// HandleWebSocket upgrades HTTP connections to WebSocket
func (h *EventHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readMessages(c)
}

// writePump delivers queued events and keeps the connection alive with
// pings
func (h *EventHub) writePump(c *client) {
	ticker := time.NewTicker(h.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-h.done:
			return

		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("failed to send event", zap.String("client", c.id), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readMessages drains the client until it disconnects or stops
// answering pings
func (h *EventHub) readMessages(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(h.pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("websocket error", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
	}
}

// NotifyChecking announces a check of the given files
func (h *EventHub) NotifyChecking(pkg string, files []string) {
	h.publish(&Event{
		Type:    EventChecking,
		Package: pkg,
		Files:   files,
	})
}

// NotifyResult publishes the outcome of a check
func (h *EventHub) NotifyResult(pkg string, res *CheckResult) {
	infos := make([]*ErrorInfo, 0, len(res.Errors))
	for _, ce := range res.Errors {
		infos = append(infos, NewErrorInfo(ce))
	}

	event := &Event{
		Type:     EventResult,
		Package:  pkg,
		Files:    res.Files,
		Removed:  res.Removed,
		Errors:   infos,
		Total:    res.Total,
		Failed:   res.Failed,
		Duration: float64(res.Duration.Microseconds()) / 1000,
	}
	h.publish(event)
}

func (h *EventHub) publish(event *Event) {
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().Unix()

	if event.Type == EventResult {
		h.mutex.Lock()
		h.last = event
		h.mutex.Unlock()
	}

	select {
	case h.broadcast <- event:
	case <-h.done:
	}
}

// Last returns the most recent result event, if any
func (h *EventHub) Last() *Event {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.last
}

// ConnectionCount returns the number of active connections
func (h *EventHub) ConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Close closes all connections and stops the hub
func (h *EventHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)

		h.mutex.Lock()
		defer h.mutex.Unlock()

		for c := range h.clients {
			c.conn.Close()
		}
		h.clients = make(map[*client]bool)
	})
}
