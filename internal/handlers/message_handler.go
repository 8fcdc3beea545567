package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crewdesk/internal/models"
	"crewdesk/internal/realtime"
	"crewdesk/internal/services"
)

type MessageHandler struct {
	chat *services.ChatService
	hub  *realtime.Hub
}

func NewMessageHandler(chat *services.ChatService, hub *realtime.Hub) *MessageHandler {
	return &MessageHandler{chat: chat, hub: hub}
}

// @Summary      Send message
// @Tags         Messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        message  body      models.SendMessageRequest  true  "Message"
// @Success      201      {object}  models.Message
// @Router       /api/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	userID, _ := getIdentity(c)

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.chat.SendMessage(req.ConversationID, userID, req.Content, req.Attachments)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConversationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		case errors.Is(err, services.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this conversation"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to send message"})
		}
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// @Summary      List messages of a conversation
// @Tags         Messages
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Conversation ID"
// @Success      200  {array}   models.Message
// @Router       /api/messages/conversation/{id} [get]
func (h *MessageHandler) ListForConversation(c *gin.Context) {
	userID, _ := getIdentity(c)

	convID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	msgs, err := h.chat.MessagesForConversation(convID, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotParticipant) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this conversation"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// Stream upgrades to a WebSocket and pushes every new message of the
// conversation until the client disconnects.
func (h *MessageHandler) Stream(c *gin.Context) {
	userID, _ := getIdentity(c)

	convID, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	member, err := h.chat.IsParticipant(convID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this conversation"})
		return
	}

	conn, err := realtime.Upgrade(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "WebSocket upgrade failed"})
		return
	}
	h.hub.Register(convID, conn)
	defer h.hub.Unregister(convID, conn)

	// the read loop only serves to detect the disconnect
	for {
		var discard map[string]any
		if err := conn.ReadJSON(&discard); err != nil {
			return
		}
	}
}
