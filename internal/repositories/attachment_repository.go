package repositories

import (
	"database/sql"
	"fmt"

	"crewdesk/internal/models"
)

type AttachmentRepository interface {
	Create(att *models.Attachment) error
	GetByID(id int) (*models.Attachment, error)
	ListByUser(userID int) ([]*models.Attachment, error)
	Delete(id int) error
}

type attachmentRepository struct {
	DB *sql.DB
}

func NewAttachmentRepository(db *sql.DB) AttachmentRepository {
	return &attachmentRepository{DB: db}
}

func (r *attachmentRepository) Create(att *models.Attachment) error {
	const q = `
		INSERT INTO attachments (filename, url, type, uploaded_at, uploaded_by)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`
	err := r.DB.QueryRow(q, att.Filename, att.URL, string(att.Type), att.UploadedAt, att.UploadedBy).Scan(&att.ID)
	if err != nil {
		return fmt.Errorf("attachment create: %w", err)
	}
	return nil
}

func (r *attachmentRepository) GetByID(id int) (*models.Attachment, error) {
	const q = `SELECT id, filename, url, type, uploaded_at, uploaded_by FROM attachments WHERE id = $1`
	a := &models.Attachment{}
	var typ string
	err := r.DB.QueryRow(q, id).Scan(&a.ID, &a.Filename, &a.URL, &typ, &a.UploadedAt, &a.UploadedBy)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("attachment get: %w", err)
	}
	a.Type = models.AttachmentType(typ)
	return a, nil
}

func (r *attachmentRepository) ListByUser(userID int) ([]*models.Attachment, error) {
	const q = `
		SELECT id, filename, url, type, uploaded_at, uploaded_by
		FROM attachments
		WHERE uploaded_by = $1
		ORDER BY uploaded_at DESC
	`
	rows, err := r.DB.Query(q, userID)
	if err != nil {
		return nil, fmt.Errorf("attachment list: %w", err)
	}
	defer rows.Close()

	var res []*models.Attachment
	for rows.Next() {
		a := &models.Attachment{}
		var typ string
		if err := rows.Scan(&a.ID, &a.Filename, &a.URL, &typ, &a.UploadedAt, &a.UploadedBy); err != nil {
			return nil, err
		}
		a.Type = models.AttachmentType(typ)
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r *attachmentRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM attachments WHERE id=$1`, id)
	return err
}
