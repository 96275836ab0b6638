package gateway

import (
	pkgredis "github.com/siteforge/core/internal/pkg/redis"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	namespaceDashboard = "/dashboard"
	redisChanNotify    = "sf:gateway:notify"

	// Events pushed to site owners.
	EventSiteProvisioned  = "site-provisioned"
	EventOwnershipChanged = "ownership-changed"
)

// Notice is the envelope used for owner pushes and Redis fan-out.
type Notice struct {
	UserID  string      `json:"user_id"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type gatewayPayload struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub owns the dashboard socket.io namespace and fan-out to other
// processes via Redis.
type Hub struct {
	presence *Presence

	notify chan Notice

	rc             *pkgredis.Client
	logger         *zap.Logger
	sio            *socketio.Server
	tokenValidator func(token string) (userID string, err error)
}
