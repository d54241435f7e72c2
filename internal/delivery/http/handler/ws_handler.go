package handler

import (
	"fmt"
	"net/http"
	"time"

	"telehealth-backend/internal/domain/entity"
	"telehealth-backend/internal/realtime"
	"telehealth-backend/pkg/jwt"
	"telehealth-backend/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	wsWriteTimeout   = 10 * time.Second
	wsMaxMessageSize = 64 * 1024
)

// WSHandler upgrades authenticated HTTP requests into hub-managed
// connections. Browsers cannot set an Authorization header on a websocket
// handshake, so the access token travels as a query parameter and is
// validated before the upgrade.
type WSHandler struct {
	hub         *realtime.Hub
	jwtService  *jwt.JWTService
	redisClient *redis.Client
	log         *logrus.Logger
	upgrader    websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub, jwtService *jwt.JWTService, redisClient *redis.Client, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		hub:         hub,
		jwtService:  jwtService,
		redisClient: redisClient,
		log:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// wsConn adapts a gorilla connection to the hub's transport interface.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) WriteMessage(data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// Serve handles GET /ws/{user_id}?token=...
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	pathUserID, err := uuid.Parse(mux.Vars(r)["user_id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid user ID", nil)
		return
	}

	claims, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("Failed websocket upgrade for user %s: %+v", claims.UserID, err)
		return
	}

	// The path user must be the token subject; anything else is a
	// protocol violation, not an auth retry.
	if pathUserID != claims.UserID {
		deadline := time.Now().Add(wsWriteTimeout)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user mismatch"), deadline)
		conn.Close()
		return
	}

	conn.SetReadLimit(wsMaxMessageSize)

	client := realtime.NewClient(claims.UserID, entity.RoleName(claims.RoleID), &wsConn{conn: conn})
	h.hub.Register(client)
	go client.WritePump()

	defer h.hub.Unregister(client)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := h.hub.HandleFrame(r.Context(), client, data); err != nil {
			h.log.Warnf("Closing connection for user %s: %+v", claims.UserID, err)
			return
		}
	}
}

// authenticate validates the token query parameter the same way the REST
// auth middleware validates the Authorization header.
func (h *WSHandler) authenticate(w http.ResponseWriter, r *http.Request) (*jwt.Claims, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		response.Unauthorized(w, "Token is required")
		return nil, false
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.Unauthorized(w, "Invalid or expired token")
		return nil, false
	}
	if claims.TokenType != jwt.AccessToken {
		response.Unauthorized(w, "Invalid token type")
		return nil, false
	}

	tokenKey := fmt.Sprintf("access_token:%s:%s", claims.UserID.String(), claims.TokenID)
	exists, err := h.redisClient.Exists(r.Context(), tokenKey).Result()
	if err != nil {
		response.InternalServerError(w, "Failed to validate token")
		return nil, false
	}
	if exists == 0 {
		response.Unauthorized(w, "Token has been revoked")
		return nil, false
	}

	return claims, true
}
