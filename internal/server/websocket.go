package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteWait = 10 * time.Second

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// HandleWS compresses every text message received on the connection and
// answers with the same JSON body as /compress. Query overrides on the
// upgrade request apply to the whole connection.
func (h *CompressHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseOptions(r.URL.Query())
	if err != nil {
		h.respond(w, http.StatusBadRequest, abort("Bad request", err), req)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxSourceSize)

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("websocket read failed: %v", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		_, resp := h.compress(string(msg), req.opts)
		if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
			return
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}
