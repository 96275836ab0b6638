package gateway

import (
	"strings"

	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

func (h *Hub) registerNamespace() {
	ns := h.sio.Of(namespaceDashboard, nil)
	_ = ns.On("connection", func(args ...any) {
		client, ok := args[0].(*socketio.Socket)
		if !ok {
			return
		}
		connID := string(client.Id())

		identify := func(raw string) {
			token := normalizeToken(raw)
			if token == "" || h.tokenValidator == nil {
				return
			}
			userID, err := h.tokenValidator(token)
			if err != nil || userID == "" {
				_ = client.Emit("message", gatewayPayload{Type: "AUTH_FAILED", Data: "auth failed"})
				client.Disconnect(true)
				return
			}
			h.presence.Identify(userID, connID)
			_ = client.Emit("message", gatewayPayload{Type: "IDENTIFIED", Data: userID})
			if h.logger != nil {
				h.logger.Debug("gateway identified",
					zap.String("user_id", userID), zap.String("conn_id", connID))
			}
		}

		// Token may arrive with the handshake or via an explicit
		// identify message after connecting.
		if token := handshakeToken(client); token != "" {
			identify(token)
		}
		_ = client.On("identify", func(eventArgs ...any) {
			if len(eventArgs) == 0 {
				return
			}
			raw, _ := eventArgs[0].(string)
			identify(raw)
		})

		_ = client.On("disconnect", func(_ ...any) {
			h.presence.Disconnect(connID)
		})
	})
}

func handshakeToken(client *socketio.Socket) string {
	handshake := client.Handshake()
	if handshake == nil {
		return ""
	}
	if token := firstValueFromMultiMap(handshake.Query, "token"); token != "" {
		return token
	}
	return firstValueFromMultiMap(handshake.Headers, "authorization")
}

func firstValueFromMultiMap(values map[string][]string, key string) string {
	if len(values) == 0 {
		return ""
	}
	for k, list := range values {
		if !strings.EqualFold(strings.TrimSpace(k), key) || len(list) == 0 {
			continue
		}
		if v := strings.TrimSpace(list[0]); v != "" {
			return v
		}
	}
	return ""
}

func normalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
