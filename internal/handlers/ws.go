package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/yukikurage/project-collab-api/internal/constants"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/realtime"
	"github.com/yukikurage/project-collab-api/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client actions accepted over the socket.
const (
	actionJoinProject  = "join-project"
	actionLeaveProject = "leave-project"
)

type clientMessage struct {
	Action    string `json:"action"`
	ProjectID string `json:"projectId"`
}

// RealtimeHandler upgrades authenticated requests to websocket connections
// attached to the hub.
type RealtimeHandler struct {
	hub            *realtime.Hub
	projectService *services.ProjectService
	upgrader       websocket.Upgrader
}

func NewRealtimeHandler(hub *realtime.Hub, projectService *services.ProjectService, allowedOrigins []string) *RealtimeHandler {
	return &RealtimeHandler{
		hub:            hub,
		projectService: projectService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// Non-browser clients send no Origin
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		},
	}
}

// Connect serves /api/ws. The connection is subscribed to the user's
// personal topic and may join project topics it is authorized for.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := realtime.NewClient(user.ID, constants.ClientSendBuffer)
	h.hub.Register(client)

	go h.writePump(conn, client)
	h.readPump(c, conn, client, user)
}

func (h *RealtimeHandler) readPump(c *gin.Context, conn *websocket.Conn, client *realtime.Client, user *models.User) {
	defer func() {
		h.hub.Unregister(client)
		conn.Close()
		log.Printf("WebSocket connection closed for user %s", user.ID)
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for user %s: %v", user.ID, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		projectID, err := uuid.Parse(msg.ProjectID)
		if err != nil {
			continue
		}
		topic := realtime.ProjectTopic(projectID)

		switch msg.Action {
		case actionJoinProject:
			// Unauthorized joins are dropped without a reply
			if h.projectService.CanJoinTopic(c.Request.Context(), user, projectID) {
				h.hub.Join(client.ID, topic)
			}
		case actionLeaveProject:
			h.hub.Leave(client.ID, topic)
		}
	}
}

func (h *RealtimeHandler) writePump(conn *websocket.Conn, client *realtime.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write failed for client %s: %v", client.ID, err)
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
