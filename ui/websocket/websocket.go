package websocket

import (
	"context"
	"encoding/json"

	settingsDomain "github.com/AzielCF/az-cube/core/settings/domain"
	domainSettings "github.com/AzielCF/az-cube/domains/settings"
	domainTimer "github.com/AzielCF/az-cube/domains/timer"
	"github.com/AzielCF/az-cube/pkg/metrics"
	timerDomain "github.com/AzielCF/az-cube/timer/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const (
	CodeSettingsChanged = "SETTINGS_CHANGED"
	CodeTimerEvent      = "TIMER_EVENT"
	CodeTimerSnapshot   = "TIMER_SNAPSHOT"
	CodeKeyDown         = "KEY_DOWN"
	CodeKeyUp           = "KEY_UP"
	CodeFetchSnapshot   = "FETCH_SNAPSHOT"
	CodeError           = "ERROR"

	wsChannel = "ws_broadcast"
)

type BroadcastMessage struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Result   any    `json:"result"`
	SenderID string `json:"sender_id,omitempty"`

	// local messages are not forwarded to other instances
	local bool
}

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// PubSub carries broadcasts between instances. The valkey client satisfies it.
type PubSub interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string, fn func(payload []byte)) error
}

type client struct{}

type directMessage struct {
	conn    Conn
	message BroadcastMessage
}

// Hub owns the connected clients. Only RunHub touches the client set.
type Hub struct {
	clients    map[Conn]client
	register   chan Conn
	unregister chan Conn
	broadcast  chan BroadcastMessage
	remote     chan BroadcastMessage
	direct     chan directMessage
	done       chan struct{}

	pubsub  PubSub
	localID string
	metrics *metrics.Registry
}

// NewHub builds a hub. pubsub may be nil for a single instance.
func NewHub(pubsub PubSub, serverID string, m *metrics.Registry) *Hub {
	return &Hub{
		clients:    make(map[Conn]client),
		register:   make(chan Conn),
		unregister: make(chan Conn),
		broadcast:  make(chan BroadcastMessage, 256),
		remote:     make(chan BroadcastMessage, 256),
		direct:     make(chan directMessage, 256),
		done:       make(chan struct{}),
		pubsub:     pubsub,
		localID:    serverID,
		metrics:    m,
	}
}

// Broadcast queues message for every client, here and on other instances.
func (h *Hub) Broadcast(message BroadcastMessage) {
	select {
	case h.broadcast <- message:
	default:
		logrus.Warnf("[WS] broadcast queue full, dropping %s", message.Code)
	}
}

func (h *Hub) broadcastLocal(message BroadcastMessage) {
	message.local = true
	h.Broadcast(message)
}

// sendTo queues message for a single client. Writes stay on the hub goroutine.
func (h *Hub) sendTo(conn Conn, message BroadcastMessage) {
	select {
	case h.direct <- directMessage{conn: conn, message: message}:
	default:
		logrus.Warnf("[WS] direct queue full, dropping %s", message.Code)
	}
}

func (h *Hub) writeTo(conn Conn, message BroadcastMessage) {
	if _, ok := h.clients[conn]; !ok {
		return
	}
	data, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("[WS] Marshal error: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logrus.Errorf("[WS] Write error: %v", err)
		h.closeConnection(conn)
	}
}

func (h *Hub) handleRegister(conn Conn) {
	h.clients[conn] = client{}
	h.gauge()
	logrus.Debug("[WS] Connection registered")
}

func (h *Hub) handleUnregister(conn Conn) {
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	h.gauge()
	logrus.Debug("[WS] Connection unregistered")
}

func (h *Hub) gauge() {
	if h.metrics != nil {
		h.metrics.WSClients.Set(float64(len(h.clients)))
	}
}

func (h *Hub) broadcastToLocal(message BroadcastMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("[WS] Marshal error: %v", err)
		return
	}

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logrus.Errorf("[WS] Write error: %v", err)
			h.closeConnection(conn)
		}
	}
}

func (h *Hub) publish(ctx context.Context, message BroadcastMessage) {
	message.SenderID = h.localID
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	if err := h.pubsub.Publish(ctx, wsChannel, data); err != nil {
		logrus.Errorf("[WS] Failed to publish to Valkey: %v", err)
	}
}

func (h *Hub) startSubscriber(ctx context.Context) {
	logrus.Info("[WS] Starting Valkey Pub/Sub subscriber for distributed events")
	go func() {
		err := h.pubsub.Subscribe(ctx, wsChannel, func(payload []byte) {
			var message BroadcastMessage
			if err := json.Unmarshal(payload, &message); err != nil {
				return
			}
			// ignore our own publications
			if message.SenderID == h.localID {
				return
			}
			select {
			case h.remote <- message:
			default:
			}
		})
		if err != nil && ctx.Err() == nil {
			logrus.Errorf("[WS] Valkey subscriber failed: %v", err)
		}
	}()
}

func (h *Hub) closeConnection(conn Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
	_ = conn.Close()
	h.handleUnregister(conn)
}

// RunHub serves registrations and broadcasts until ctx is done, then closes every client.
func (h *Hub) RunHub(ctx context.Context) {
	defer close(h.done)
	if h.pubsub != nil {
		h.startSubscriber(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			for conn := range h.clients {
				h.closeConnection(conn)
			}
			return

		case conn := <-h.register:
			h.handleRegister(conn)

		case conn := <-h.unregister:
			h.handleUnregister(conn)

		case message := <-h.remote:
			h.broadcastToLocal(message)

		case dm := <-h.direct:
			h.writeTo(dm.conn, dm.message)

		case message := <-h.broadcast:
			h.broadcastToLocal(message)
			if h.pubsub != nil && !message.local {
				h.publish(ctx, message)
			}
		}
	}
}

// Forward pushes timer events and settings changes to the clients until ctx is done.
// Running ticks stay on this instance; settings reach other instances through the
// settings notifier, so they are local too.
func (h *Hub) Forward(ctx context.Context, timer domainTimer.ITimerUsecase, settings domainSettings.ISettingsUsecase) {
	events, cancelEvents := timer.Subscribe()
	defer cancelEvents()
	changes, cancelChanges := settings.Subscribe()
	defer cancelChanges()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			message := BroadcastMessage{Code: CodeTimerEvent, Message: string(ev.Type), Result: ev}
			if ev.Type == timerDomain.EventTick || ev.Type == timerDomain.EventInspection {
				h.broadcastLocal(message)
				continue
			}
			h.Broadcast(message)
		case change, ok := <-changes:
			if !ok {
				return
			}
			h.broadcastLocal(BroadcastMessage{
				Code:    CodeSettingsChanged,
				Message: string(change.Kind),
				Result:  settingsPayload(change, settings.Effective(ctx)),
			})
		}
	}
}

func settingsPayload(change settingsDomain.Change, eff settingsDomain.Effective) fiber.Map {
	return fiber.Map{
		"kind":      change.Kind,
		"key":       change.Key,
		"value":     change.Value,
		"remote":    change.Remote,
		"effective": eff,
	}
}

// HandleClientMessage runs a message sent by from and answers only that client. Other
// clients learn about the resulting state through the TIMER_EVENT feed.
func (h *Hub) HandleClientMessage(ctx context.Context, timer domainTimer.ITimerUsecase, from Conn, message BroadcastMessage) {
	var (
		snap timerDomain.Snapshot
		err  error
	)
	switch message.Code {
	case CodeKeyDown:
		snap, err = timer.KeyDown(ctx)
	case CodeKeyUp:
		snap, err = timer.KeyUp(ctx)
	case CodeFetchSnapshot:
		snap, err = timer.Snapshot(ctx)
	default:
		logrus.Debugf("[WS] ignoring message %q", message.Code)
		return
	}

	if err != nil {
		h.sendTo(from, BroadcastMessage{Code: CodeError, Message: err.Error()})
		return
	}
	h.sendTo(from, BroadcastMessage{Code: CodeTimerSnapshot, Message: "Timer state", Result: snap})
}

func RegisterRoutes(app fiber.Router, hub *Hub, timer domainTimer.ITimerUsecase) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		select {
		case hub.register <- conn:
		case <-hub.done:
			return
		}
		defer func() {
			select {
			case hub.unregister <- conn:
			case <-hub.done:
			}
			_ = conn.Close()
		}()

		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Debugf("[WS] read error: %v", err)
				}
				return
			}

			if messageType != websocket.TextMessage {
				logrus.Debugf("[WS] unsupported message type: %d", messageType)
				continue
			}

			var message BroadcastMessage
			if err := json.Unmarshal(payload, &message); err != nil {
				logrus.Debugf("[WS] unmarshal error: %v", err)
				return
			}
			hub.HandleClientMessage(context.Background(), timer, conn, message)
		}
	}))
}
