package hub

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// clientEvent is what the browser sends: join_vendor / join_order
// with the room id.
type clientEvent struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Serve upgrades the request and runs the read loop. The only
// client-to-server protocol is room joining; everything else is
// server push.
func (h *Hub) Serve(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			h.Unregister(ws)
			_ = ws.Close()
			return nil
		}
		var evt clientEvent
		if err := json.Unmarshal(raw, &evt); err != nil || evt.ID == "" {
			continue
		}
		switch evt.Type {
		case "join_vendor":
			h.Subscribe(ws, VendorTopic(evt.ID))
		case "join_order":
			h.Subscribe(ws, OrderTopic(evt.ID))
		}
	}
}
