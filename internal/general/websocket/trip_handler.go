package websocket

import (
	"context"
	"errors"
	"net/http"
	"time"

	"eoncab/internal/domain/user"
	"eoncab/internal/general/contracts"
	"eoncab/internal/general/jwt"
	"eoncab/internal/software/trip/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ConnectTrip handles /ws/trip/{ride_id}: the per-ride broadcast group.
// Customers and drivers authenticate with the first frame; everyone in the
// group sees every payload for the ride.
func (ws *WebSocket) ConnectTrip(w http.ResponseWriter, r *http.Request) {
	rideID := r.PathValue("ride_id")
	if rideID == "" {
		http.Error(w, "missing ride id", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Error(r.Context(), "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}
	defer conn.Close()
	defer ws.writeLocks.Delete(conn)

	ctx := ws.logger.WithRideID(ws.logger.WithRequestID(r.Context(), uuid.NewString()), rideID)

	res, ok := ws.authenticate(ctx, conn, user.RoleCustomer, user.RoleDriver)
	if !ok {
		return
	}

	p := &participant{id: uuid.NewString(), conn: conn, ws: ws}
	sess := service.Session{
		RideID: rideID,
		UserID: res.Claims.Subject,
		Role:   res.Claims.Role,
		Handle: p,
	}

	ws.svc.Groups().Join(rideID, p)
	defer ws.svc.OnLeave(ctx, sess)

	state := ws.svc.CurrentState(ctx, rideID)
	_ = ws.writeJSON(conn, contracts.ConnectionAck{
		Type:       contracts.TypeConnectionAck,
		Message:    "joined ride group",
		Connection: true,
		Route:      ws.svc.RoutePreview(ctx, rideID),
		State:      state.String(),
		Envelope:   wsEnvelope(),
	})

	ws.logger.Info(ctx, "ws_connected", "Trip group member connected", map[string]any{
		"user_id": sess.UserID,
		"role":    sess.Role.String(),
		"state":   state.String(),
	})

	stop := make(chan struct{})
	defer close(stop)
	go ws.pingLoop(conn, stop)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				ws.logger.Error(ctx, "ws_unexpected_close", "Trip connection closed unexpectedly", err, map[string]any{
					"user_id": sess.UserID,
				})
				ws.wsWriteClose(conn, websocket.CloseInternalServerErr, "internal error")
			} else {
				ws.logger.Info(ctx, "ws_connection_closed", "Trip connection closed normally", map[string]any{
					"user_id": sess.UserID,
				})
				ws.wsWriteClose(conn, websocket.CloseNormalClosure, "bye")
			}
			return
		}

		ev, err := contracts.DecodeInbound(payload)
		if err != nil {
			// unknown or malformed commands are dropped silently
			ws.logger.Debug(ctx, "ws_event_ignored", "Undecodable inbound frame", map[string]any{
				"user_id": sess.UserID,
				"size":    len(payload),
			})
			continue
		}

		ws.svc.Dispatch(ctx, sess, ev)
	}
}

// authenticate runs the first-frame auth flow. On failure the client gets
// exactly one auth_error payload; the caller then drops the connection.
func (ws *WebSocket) authenticate(ctx context.Context, conn *websocket.Conn, roles ...user.Role) (*jwt.Result, bool) {
	conn.SetReadLimit(1 << 20) // 1 MiB
	if err := conn.SetReadDeadline(time.Now().Add(authDeadline)); err != nil {
		ws.logger.Error(ctx, "ws_set_deadline_failed", "Failed to set initial read deadline", err, nil)
		ws.sendAuthError(conn, "internal server error", "")
		return nil, false
	}

	msgType, firstFrame, err := conn.ReadMessage()
	if err != nil {
		ws.logger.Error(ctx, "ws_auth_read_failed", "No auth frame before deadline", err, nil)
		ws.sendAuthError(conn, "authentication timeout", "send auth message within 10 seconds")
		return nil, false
	}

	if msgType != websocket.TextMessage {
		ws.sendAuthError(conn, "authentication failed", "auth message must be in text format")
		return nil, false
	}

	res, err := jwt.ValidateWSAuth(firstFrame, ws.jwtMgr, roles...)
	if err != nil {
		ws.logger.Error(ctx, "ws_auth_failed", "Invalid auth message or token", err, nil)
		reason := "invalid token"
		if errors.Is(err, jwt.ErrBadAuthMsg) || errors.Is(err, jwt.ErrBadTokenWrap) {
			reason = err.Error()
		}
		ws.sendAuthError(conn, "authentication failed", reason)
		return nil, false
	}

	conn.SetPongHandler(func(_ string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	return res, true
}
