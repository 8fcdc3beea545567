package models

import "time"

type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentPDF   AttachmentType = "pdf"
	AttachmentOther AttachmentType = "other"
)

type Attachment struct {
	ID         int            `json:"id"`
	Filename   string         `json:"filename"`
	URL        string         `json:"url"`
	Type       AttachmentType `json:"type"`
	UploadedAt time.Time      `json:"uploaded_at"`
	UploadedBy int            `json:"uploaded_by"`
}
