package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"crewdesk/internal/models"
)

type ConversationRepository interface {
	Create(participants []int64) (*models.Conversation, error)
	GetByID(id int) (*models.Conversation, error)
	ListByParticipant(userID int) ([]*models.Conversation, error)
	IsParticipant(conversationID, userID int) (bool, error)
	TouchLastMessage(conversationID int, at time.Time) error
	Delete(id int) error
}

type conversationRepository struct {
	DB *sql.DB
}

func NewConversationRepository(db *sql.DB) ConversationRepository {
	return &conversationRepository{DB: db}
}

func (r *conversationRepository) Create(participants []int64) (*models.Conversation, error) {
	const q = `
		INSERT INTO conversations (participants, last_message_at)
		VALUES ($1, NOW())
		RETURNING id, participants, last_message_at
	`
	c := &models.Conversation{}
	err := r.DB.QueryRow(q, pq.Array(participants)).
		Scan(&c.ID, pq.Array(&c.Participants), &c.LastMessageAt)
	if err != nil {
		return nil, fmt.Errorf("conversation create: %w", err)
	}
	return c, nil
}

func (r *conversationRepository) GetByID(id int) (*models.Conversation, error) {
	const q = `SELECT id, participants, last_message_at FROM conversations WHERE id = $1`
	c := &models.Conversation{}
	err := r.DB.QueryRow(q, id).Scan(&c.ID, pq.Array(&c.Participants), &c.LastMessageAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("conversation get: %w", err)
	}
	return c, nil
}

func (r *conversationRepository) ListByParticipant(userID int) ([]*models.Conversation, error) {
	const q = `
		SELECT id, participants, last_message_at
		FROM conversations
		WHERE $1 = ANY(participants)
		ORDER BY last_message_at DESC
	`
	rows, err := r.DB.Query(q, int64(userID))
	if err != nil {
		return nil, fmt.Errorf("conversation list: %w", err)
	}
	defer rows.Close()

	var res []*models.Conversation
	for rows.Next() {
		c := &models.Conversation{}
		if err := rows.Scan(&c.ID, pq.Array(&c.Participants), &c.LastMessageAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *conversationRepository) IsParticipant(conversationID, userID int) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM conversations WHERE id = $1 AND $2 = ANY(participants))`
	var ok bool
	if err := r.DB.QueryRow(q, conversationID, int64(userID)).Scan(&ok); err != nil {
		return false, fmt.Errorf("conversation membership: %w", err)
	}
	return ok, nil
}

func (r *conversationRepository) TouchLastMessage(conversationID int, at time.Time) error {
	_, err := r.DB.Exec(`UPDATE conversations SET last_message_at=$1 WHERE id=$2`, at, conversationID)
	return err
}

func (r *conversationRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM conversations WHERE id=$1`, id)
	return err
}
