package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // desktop front-end connects from file:// origins
	},
}

// LiveEvent is pushed to every connected front-desk screen.
type LiveEvent struct {
	Type       string              `json:"type"` // match | error | listening
	Error      string              `json:"error,omitempty"`
	Message    string              `json:"message,omitempty"`
	Listening  *bool               `json:"listening,omitempty"`
	Member     *models.Member      `json:"member,omitempty"`
	Recent     []models.Attendance `json:"recent,omitempty"`
	Attendance *models.Attendance  `json:"attendance,omitempty"`
}

// LiveHub fans LiveEvents out to websocket subscribers.
type LiveHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewLiveHub() *LiveHub {
	return &LiveHub{clients: map[*websocket.Conn]bool{}}
}

func (h *LiveHub) Broadcast(ev LiveEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[live] marshal failed: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *LiveHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// GET /checkin/live
func (h *LiveHub) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// the feed is one-way; reads only detect the close
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
	return nil
}
