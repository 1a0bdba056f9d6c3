// Package realtime is the in-process publish/subscribe hub that fans out
// activities, notifications and domain events to connected clients.
package realtime

import (
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Event names pushed to clients.
const (
	EventNewActivity     = "new-activity"
	EventNewNotification = "new-notification"
	EventNewComment      = "new-comment"
	EventProjectDeleted  = "project-deleted"
)

const (
	projectTopicPrefix = "project:"
	userTopicPrefix    = "user:"
)

// Topic names a channel. Two disjoint families exist: project:<id> and user:<id>.
type Topic string

func ProjectTopic(projectID uuid.UUID) Topic {
	return Topic(projectTopicPrefix + projectID.String())
}

func UserTopic(userID uuid.UUID) Topic {
	return Topic(userTopicPrefix + userID.String())
}

// ProjectID returns the project a project topic addresses.
func (t Topic) ProjectID() (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(string(t), projectTopicPrefix)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Event is the envelope written to every subscriber.
type Event struct {
	Type  string      `json:"type"`
	Topic Topic       `json:"topic"`
	Data  interface{} `json:"data,omitempty"`
}

type Client struct {
	ID     string
	UserID uuid.UUID
	Topics map[Topic]bool
	Send   chan []byte
}

// NewClient creates a client already subscribed to its owner's personal topic.
func NewClient(userID uuid.UUID, buffer int) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Topics: map[Topic]bool{UserTopic(userID): true},
		Send:   make(chan []byte, buffer),
	}
}

// topicMessage is either a payload for topic subscribers or, when leave is
// set, an instruction to drop userID's subscriptions to topic. Both share
// the broadcast queue so an eviction never overtakes an earlier event.
type topicMessage struct {
	topic  Topic
	data   []byte
	leave  bool
	userID uuid.UUID
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *topicMessage
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *topicMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			if msg.leave {
				h.evict(msg.topic, msg.userID)
			} else {
				h.deliver(msg)
			}

		case <-h.done:
			return
		}
	}
}

// Stop ends Run. It must be called at most once.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) deliver(msg *topicMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if !client.Topics[msg.topic] {
			continue
		}
		select {
		case client.Send <- msg.data:
		default:
			// Client buffer full, skip
			log.Printf("realtime: dropped message on %s for client %s (buffer full)", msg.topic, client.ID)
		}
	}
}

func (h *Hub) evict(topic Topic, userID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		if userID == uuid.Nil || client.UserID == userID {
			delete(client.Topics, topic)
		}
	}
}

// Register and Unregister return immediately once the hub is stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Join subscribes a registered client to topic. Unknown clients are ignored.
func (h *Hub) Join(clientID string, topic Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		client.Topics[topic] = true
	}
}

func (h *Hub) Leave(clientID string, topic Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		delete(client.Topics, topic)
	}
}

// LeaveAll drops every subscription of userID's clients to topic, or of all
// clients when userID is uuid.Nil. It is applied after any event already
// published and, unlike Publish, is never dropped.
func (h *Hub) LeaveAll(userID uuid.UUID, topic Topic) {
	select {
	case h.broadcast <- &topicMessage{topic: topic, leave: true, userID: userID}:
	case <-h.done:
	}
}

// Subscribers counts the clients currently joined to topic.
func (h *Hub) Subscribers(topic Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, client := range h.clients {
		if client.Topics[topic] {
			n++
		}
	}
	return n
}

// Publish queues an event for every subscriber of topic. It never blocks:
// when the queue is full the event is dropped. Delivery is at most once.
func (h *Hub) Publish(topic Topic, eventName string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventName, Topic: topic, Data: payload})
	if err != nil {
		log.Printf("realtime: failed to encode %s for %s: %v", eventName, topic, err)
		return
	}

	select {
	case h.broadcast <- &topicMessage{topic: topic, data: data}:
	default:
		log.Printf("realtime: broadcast queue full, dropped %s for %s", eventName, topic)
	}
}
