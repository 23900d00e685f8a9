package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// EventType names a change in one of the vault's live collections.
type EventType string

const (
	FolderCreated EventType = "folder.created"
	FolderDeleted EventType = "folder.deleted"
	FileCreated   EventType = "file.created"
	FileDeleted   EventType = "file.deleted"
	NoteCreated   EventType = "note.created"
	NoteDeleted   EventType = "note.deleted"
	MemberCreated EventType = "member.created"
	MemberDeleted EventType = "member.deleted"

	FileUploadProgress EventType = "file.upload_progress"
)

// Event is what subscribed clients receive. Entity carries the created or
// deleted record; Progress is set only for upload progress events.
type Event struct {
	Type     EventType `json:"type"`
	Entity   any       `json:"entity,omitempty"`
	FileID   string    `json:"file_id,omitempty"`
	Progress int       `json:"progress,omitempty"`
}

// Publisher is the write side of the hub, consumed by services so they can
// announce mutations without knowing about connections.
type Publisher interface {
	Publish(userID string, ev Event)
}

// conn is the subset of a websocket connection the hub needs.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Client is one subscribed websocket connection belonging to a user.
type Client struct {
	UserID string
	Conn   conn

	// Serializes writes: two mutations by the same user may publish
	// concurrently, and the underlying connection allows one writer at a time.
	writeMu sync.Mutex
}

func (c *Client) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// Hub fans mutation events out to every connection a user currently holds.
// Registration goes through channels serviced by Run; publishing reads the
// client map under a shared lock.
type Hub struct {
	clients    map[string][]*Client
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a hub. Call Run in a goroutine before registering clients.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

var _ Publisher = (*Hub)(nil)

// Run services client registration until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
			client.Conn.Close()
		}
	}
}

// RegisterClient adds a connection to the user's subscription set.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient removes a connection and closes it.
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// Publish sends an event to every connection the user holds. Write errors on
// one connection do not stop delivery to the others; a broken connection is
// cleaned up by its own read loop.
func (h *Hub) Publish(userID string, ev Event) {
	// Snapshot under the lock: the unregister path shifts the backing array
	// in place, so iterating the live slice outside the lock would race.
	h.mu.RLock()
	clients := make([]*Client, len(h.clients[userID]))
	copy(clients, h.clients[userID])
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	for _, client := range clients {
		if err := client.write(websocket.TextMessage, data); err != nil {
			continue
		}
	}
}

// PublishUploadProgress reports an in-flight upload's percentage.
func (h *Hub) PublishUploadProgress(userID, fileID string, progress int) {
	h.Publish(userID, Event{Type: FileUploadProgress, FileID: fileID, Progress: progress})
}

// HandleConnection registers the connection and blocks reading until the
// client goes away, then unregisters. Inbound frames are ignored; the hub is
// push-only.
func (h *Hub) HandleConnection(client *Client) {
	h.RegisterClient(client)
	defer h.UnregisterClient(client)

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ConnCount reports how many connections a user currently holds.
func (h *Hub) ConnCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
