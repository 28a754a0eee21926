package websocket

import (
	"github.com/gorilla/websocket"
)

// participant adapts one live connection to the registry's Participant.
// Each connection gets its own ID so two tabs of the same user coexist.
type participant struct {
	id   string
	conn *websocket.Conn
	ws   *WebSocket
}

func (p *participant) ID() string {
	return p.id
}

func (p *participant) Send(payload any) error {
	return p.ws.writeJSON(p.conn, payload)
}

func (p *participant) Close(reason string) {
	p.ws.wsWriteClose(p.conn, websocket.CloseNormalClosure, reason)
	_ = p.conn.Close()
}
