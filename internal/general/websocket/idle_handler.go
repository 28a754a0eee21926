package websocket

import (
	"net/http"
	"time"

	"eoncab/internal/domain/user"
	"eoncab/internal/general/contracts"
	"eoncab/internal/software/trip/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ConnectIdle handles /ws/drivers/idle: the global pool of available
// drivers. Driver-only; pool membership materializes on the first reported
// location and ends on disconnect or selection.
func (ws *WebSocket) ConnectIdle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Error(r.Context(), "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}
	defer conn.Close()
	defer ws.writeLocks.Delete(conn)

	ctx := ws.logger.WithRequestID(r.Context(), uuid.NewString())

	res, ok := ws.authenticate(ctx, conn, user.RoleDriver)
	if !ok {
		return
	}

	p := &participant{id: uuid.NewString(), conn: conn, ws: ws}
	sess := service.Session{
		UserID: res.Claims.Subject,
		Role:   res.Claims.Role,
		Handle: p,
	}
	defer ws.svc.OnLeave(ctx, sess)

	_ = ws.writeJSON(conn, contracts.ConnectionAck{
		Type:       contracts.TypeConnectionAck,
		Message:    "joined idle pool",
		Connection: true,
		Envelope:   wsEnvelope(),
	})

	ws.logger.Info(ctx, "ws_connected", "Idle driver connected", map[string]any{
		"driver_id": sess.UserID,
	})

	stop := make(chan struct{})
	defer close(stop)
	go ws.pingLoop(conn, stop)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				ws.logger.Error(ctx, "ws_unexpected_close", "Idle connection closed unexpectedly", err, map[string]any{
					"driver_id": sess.UserID,
				})
				ws.wsWriteClose(conn, websocket.CloseInternalServerErr, "internal error")
			} else {
				ws.logger.Info(ctx, "ws_connection_closed", "Idle connection closed normally", map[string]any{
					"driver_id": sess.UserID,
				})
				ws.wsWriteClose(conn, websocket.CloseNormalClosure, "bye")
			}
			return
		}

		ev, err := contracts.DecodeInbound(payload)
		if err != nil {
			ws.logger.Debug(ctx, "ws_event_ignored", "Undecodable inbound frame", map[string]any{
				"driver_id": sess.UserID,
				"size":      len(payload),
			})
			continue
		}

		// only location reports matter in the pool; everything else is noise
		if _, isLoc := ev.(contracts.LiveLocationEvent); !isLoc {
			ws.logger.Debug(ctx, "ws_event_ignored", "Non-location event in idle pool", map[string]any{
				"driver_id": sess.UserID,
			})
			continue
		}

		ws.svc.Dispatch(ctx, sess, ev)
	}
}
