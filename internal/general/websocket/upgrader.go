package websocket

import (
	"net/http"
	"sync"
	"time"

	"eoncab/internal/general/contracts"
	"eoncab/internal/general/jwt"
	"eoncab/internal/general/logger"
	"eoncab/internal/software/trip/service"

	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout   = 5 * time.Second
	wsCloseAckWindow = 2 * time.Second
	ctrlTimeout      = 5 * time.Second

	authDeadline = 10 * time.Second
	readDeadline = 60 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WebSocket hosts both persistent surfaces of the trip service: per-ride
// groups and the idle-driver pool. JWT auth rides in the first frame.
type WebSocket struct {
	logger     *logger.Logger
	jwtMgr     *jwt.Manager
	svc        *service.Service
	writeLocks sync.Map // *websocket.Conn -> *sync.Mutex
}

// NewWebSocket creates the WS front for the trip service.
func NewWebSocket(logger *logger.Logger, jwtMgr *jwt.Manager, svc *service.Service) *WebSocket {
	return &WebSocket{
		logger: logger,
		jwtMgr: jwtMgr,
		svc:    svc,
	}
}

// Routes registers both surfaces on mux.
func (ws *WebSocket) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/trip/{ride_id}", ws.ConnectTrip)
	mux.HandleFunc("/ws/drivers/idle", ws.ConnectIdle)
}

// sendAuthError delivers the single auth_error payload an unauthenticated
// joiner gets before the connection is dropped.
func (ws *WebSocket) sendAuthError(conn *websocket.Conn, message, reason string) {
	_ = ws.writeJSON(conn, contracts.AuthError{
		Type:       contracts.TypeAuthError,
		Message:    message,
		Connection: false,
		Error:      reason,
		Envelope:   wsEnvelope(),
	})
}

func wsEnvelope() contracts.Envelope {
	return contracts.Envelope{
		Producer: "trip-service",
		SentAt:   time.Now().UTC(),
	}
}
