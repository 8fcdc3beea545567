package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crewdesk/internal/models"
	"crewdesk/internal/services"
)

type ConversationHandler struct {
	chat *services.ChatService
}

func NewConversationHandler(chat *services.ChatService) *ConversationHandler {
	return &ConversationHandler{chat: chat}
}

// @Summary      Create conversation
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        conversation  body      models.CreateConversationRequest  true  "Participant IDs"
// @Success      201           {object}  models.Conversation
// @Router       /api/conversations [post]
func (h *ConversationHandler) Create(c *gin.Context) {
	var req models.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.chat.CreateConversation(req.Participants)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create conversation"})
		return
	}
	c.JSON(http.StatusCreated, conv)
}

// @Summary      List my conversations
// @Tags         Conversations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.Conversation
// @Router       /api/conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	userID, _ := getIdentity(c)

	convs, err := h.chat.ConversationsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch conversations"})
		return
	}
	c.JSON(http.StatusOK, convs)
}
