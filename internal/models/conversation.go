package models

import "time"

type Conversation struct {
	ID            int       `json:"id"`
	Participants  []int64   `json:"participants"`
	LastMessageAt time.Time `json:"last_message_at"`
}

type Message struct {
	ID             int       `json:"id"`
	ConversationID int       `json:"conversation_id"`
	SenderID       int       `json:"sender_id"`
	Content        string    `json:"content"`
	Attachments    []int64   `json:"attachments,omitempty"`
	SentAt         time.Time `json:"sent_at"`
	ReadBy         []int64   `json:"read_by"`
}

type CreateConversationRequest struct {
	Participants []int64 `json:"participants" binding:"required"`
}

type SendMessageRequest struct {
	ConversationID int     `json:"conversation_id" binding:"required"`
	Content        string  `json:"content" binding:"required"`
	Attachments    []int64 `json:"attachments"`
}
