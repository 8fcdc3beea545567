package realtime

import (
	"sync"

	"crewdesk/internal/models"
)

// Hub fans new messages out to every socket subscribed to a conversation.
type Hub struct {
	mu            sync.RWMutex
	conversations map[int]map[*Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conversations: make(map[int]map[*Conn]struct{}),
	}
}

func (h *Hub) Register(conversationID int, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conversations[conversationID] == nil {
		h.conversations[conversationID] = make(map[*Conn]struct{})
	}
	h.conversations[conversationID][conn] = struct{}{}
}

func (h *Hub) Unregister(conversationID int, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.conversations[conversationID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.conversations, conversationID)
		}
	}
	_ = conn.Close()
}

// Broadcast is best-effort: a dead socket is cleaned up by its reader loop.
func (h *Hub) Broadcast(msg *models.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conversations[msg.ConversationID] {
		_ = conn.WriteJSON(msg)
	}
}
