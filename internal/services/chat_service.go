package services

import (
	"errors"
	"fmt"
	"time"

	"crewdesk/internal/models"
	"crewdesk/internal/realtime"
	"crewdesk/internal/repositories"
)

var (
	ErrNotParticipant       = errors.New("user is not a participant of this conversation")
	ErrConversationNotFound = errors.New("conversation not found")
)

// ChatService handles conversations and messages. With a hub attached, every
// stored message is also pushed to subscribed sockets.
type ChatService struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	users         repositories.UserRepository
	hub           *realtime.Hub
}

func NewChatService(
	conversations repositories.ConversationRepository,
	messages repositories.MessageRepository,
	users repositories.UserRepository,
	hub *realtime.Hub,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		messages:      messages,
		users:         users,
		hub:           hub,
	}
}

// IsParticipant exposes the membership check for transport-level gates.
func (s *ChatService) IsParticipant(conversationID, userID int) (bool, error) {
	return s.conversations.IsParticipant(conversationID, userID)
}

func (s *ChatService) CreateConversation(participants []int64) (*models.Conversation, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("a conversation needs at least two participants")
	}
	for _, id := range participants {
		u, err := s.users.GetByID(int(id))
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, fmt.Errorf("participant %d: %w", id, ErrUserNotFound)
		}
	}
	return s.conversations.Create(participants)
}

func (s *ChatService) ConversationsForUser(userID int) ([]*models.Conversation, error) {
	return s.conversations.ListByParticipant(userID)
}

func (s *ChatService) SendMessage(conversationID, senderID int, content string, attachments []int64) (*models.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("message content is required")
	}
	conv, err := s.conversations.GetByID(conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	ok, err := s.conversations.IsParticipant(conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	now := time.Now()
	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Attachments:    attachments,
		SentAt:         now,
		ReadBy:         []int64{int64(senderID)},
	}
	if err := s.messages.Create(msg); err != nil {
		return nil, err
	}
	// ordering hint only; the message itself is stored
	_ = s.conversations.TouchLastMessage(conversationID, now)

	if s.hub != nil {
		s.hub.Broadcast(msg)
	}
	return msg, nil
}

func (s *ChatService) MessagesForConversation(conversationID, userID int) ([]*models.Message, error) {
	ok, err := s.conversations.IsParticipant(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}
	return s.messages.ListByConversation(conversationID)
}
