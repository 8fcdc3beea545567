package repositories

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"crewdesk/internal/models"
)

type MessageRepository interface {
	Create(msg *models.Message) error
	GetByID(id int) (*models.Message, error)
	ListByConversation(conversationID int) ([]*models.Message, error)
	Delete(id int) error
}

type messageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{DB: db}
}

func (r *messageRepository) Create(msg *models.Message) error {
	const q = `
		INSERT INTO messages (conversation_id, sender_id, content, attachments, sent_at, read_by)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`
	err := r.DB.QueryRow(q,
		msg.ConversationID,
		msg.SenderID,
		msg.Content,
		pq.Array(msg.Attachments),
		msg.SentAt,
		pq.Array(msg.ReadBy),
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("message create: %w", err)
	}
	return nil
}

func (r *messageRepository) GetByID(id int) (*models.Message, error) {
	const q = `
		SELECT id, conversation_id, sender_id, content, attachments, sent_at, read_by
		FROM messages WHERE id = $1
	`
	m := &models.Message{}
	err := r.DB.QueryRow(q, id).Scan(
		&m.ID, &m.ConversationID, &m.SenderID, &m.Content,
		pq.Array(&m.Attachments), &m.SentAt, pq.Array(&m.ReadBy),
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("message get: %w", err)
	}
	return m, nil
}

func (r *messageRepository) ListByConversation(conversationID int) ([]*models.Message, error) {
	const q = `
		SELECT id, conversation_id, sender_id, content, attachments, sent_at, read_by
		FROM messages
		WHERE conversation_id = $1
		ORDER BY sent_at ASC
	`
	rows, err := r.DB.Query(q, conversationID)
	if err != nil {
		return nil, fmt.Errorf("message list: %w", err)
	}
	defer rows.Close()

	var res []*models.Message
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(
			&m.ID, &m.ConversationID, &m.SenderID, &m.Content,
			pq.Array(&m.Attachments), &m.SentAt, pq.Array(&m.ReadBy),
		); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (r *messageRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM messages WHERE id=$1`, id)
	return err
}
