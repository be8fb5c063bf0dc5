package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"device-feedback-server/models"
)

// Message types pushed to feed subscribers
const (
	TypeFeedbackSubmitted = "feedback_submitted"
	TypePing              = "ping"
	TypePong              = "pong"
)

// Client is one subscriber connection. An employee may hold several.
type Client struct {
	Hub        *Hub
	EmployeeID uint
	Conn       *websocket.Conn
	Send       chan []byte
}

// Message is the envelope written to subscribers
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// FeedbackEvent summarizes a stored feedback for the live feed
type FeedbackEvent struct {
	FeedbackID uint      `json:"feedback_id"`
	UUID       string    `json:"uuid"`
	EmployeeID uint      `json:"employee_id"`
	MerchantID uint      `json:"merchant_id"`
	DeviceID   uint      `json:"device_id"`
	Rating     float64   `json:"rating"`
	Answers    int       `json:"answers"`
	CreatedAt  time.Time `json:"created_at"`
}

// Hub fans feedback events out to connected subscribers
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It returns when ctx is done, closing every
// subscriber.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("🔌 Feed subscriber registered: employee=%d", client.EmployeeID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("🔌 Feed subscriber unregistered: employee=%d", client.EmployeeID)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// broadcastMessage drops subscribers whose buffer is full
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			log.Printf("⚠️ Subscriber %d's send buffer is full, dropping", client.EmployeeID)
			delete(h.clients, client)
			close(client.Send)
		}
	}
}

// PublishFeedback queues a feedback_submitted event. It never blocks the
// caller; events are dropped when the queue is full.
func (h *Hub) PublishFeedback(feedback *models.Feedback) {
	message := &Message{
		Type:      TypeFeedbackSubmitted,
		Timestamp: time.Now(),
		Data: FeedbackEvent{
			FeedbackID: feedback.ID,
			UUID:       feedback.UUID,
			EmployeeID: feedback.EmployeeID,
			MerchantID: feedback.MerchantID,
			DeviceID:   feedback.DeviceID,
			Rating:     feedback.Rating,
			Answers:    len(feedback.Questions),
			CreatedAt:  feedback.CreatedAt,
		},
	}

	select {
	case h.broadcast <- message:
	default:
		log.Printf("⚠️ Feed queue full, dropping event for feedback %d", feedback.ID)
	}
}

// SubscriberCount returns the number of connected subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
