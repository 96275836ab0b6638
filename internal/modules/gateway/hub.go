package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	pkgredis "github.com/siteforge/core/internal/pkg/redis"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

// NewHub creates the dashboard gateway. tokenValidator maps the JWT a
// client identifies with to the owner user id.
func NewHub(rc *pkgredis.Client, logger *zap.Logger, tokenValidator func(string) (string, error)) *Hub {
	sio := socketio.NewServer(nil, nil)
	h := &Hub{
		presence:       NewPresence(),
		notify:         make(chan Notice, 256),
		rc:             rc,
		logger:         logger,
		sio:            sio,
		tokenValidator: tokenValidator,
	}
	h.registerNamespace()
	return h
}

// Run starts the hub loop and the Redis subscriber. Notices queued with
// NotifyUser are delivered locally and published so any process hosting
// the owner's connection can deliver as well.
func (h *Hub) Run(ctx context.Context) {
	go h.subscribeRedis(ctx)

	for {
		select {
		case <-ctx.Done():
			h.sio.Close(nil)
			return

		case notice := <-h.notify:
			h.deliver(notice)

			data, err := json.Marshal(notice)
			if err != nil {
				continue
			}
			if err := h.rc.Publish(ctx, redisChanNotify, string(data)); err != nil && h.logger != nil {
				h.logger.Warn("gateway publish failed", zap.String("channel", redisChanNotify), zap.Error(err))
			}
		}
	}
}

// NotifyUser queues a best-effort push to the user's current dashboard
// connection. If the user is not connected anywhere the notice is
// dropped; owners without a live connection catch up by polling.
func (h *Hub) NotifyUser(userID, event string, payload interface{}) {
	if userID == "" || event == "" {
		return
	}
	select {
	case h.notify <- Notice{UserID: userID, Event: event, Payload: payload}:
	default:
		if h.logger != nil {
			h.logger.Warn("gateway notify queue full, dropping", zap.String("event", event))
		}
	}
}

// deliver emits a notice to the user's connection on this process, if
// the presence map has one. Sockets are addressed through the room that
// carries their own id.
func (h *Hub) deliver(notice Notice) {
	connID, ok := h.presence.ConnFor(notice.UserID)
	if !ok {
		return
	}
	h.sio.Of(namespaceDashboard, nil).
		To(socketio.Room(connID)).
		Emit("message", gatewayPayload{Type: notice.Event, Data: notice.Payload})
}

// subscribeRedis listens for notices published by other server instances.
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rc.Subscribe(ctx, redisChanNotify)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case redisMsg, ok := <-ch:
			if !ok {
				return
			}
			var notice Notice
			if err := json.Unmarshal([]byte(redisMsg.Payload), &notice); err != nil {
				continue
			}
			h.deliver(notice)
		}
	}
}

// Presence exposes the registry for stats and tests.
func (h *Hub) Presence() *Presence { return h.presence }

// Handler returns the socket.io HTTP handler mounted at /socket.io.
func (h *Hub) Handler() http.Handler {
	return h.sio.ServeHandler(nil)
}
