package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"crewdesk/internal/models"
	"crewdesk/internal/repositories"
)

var ErrAttachmentNotFound = errors.New("attachment not found")

// AttachmentService stores uploaded files under RootDir and records them.
// Stored names are uuid-based so originals can't collide or traverse paths.
type AttachmentService struct {
	repo    repositories.AttachmentRepository
	rootDir string
}

func NewAttachmentService(repo repositories.AttachmentRepository, rootDir string) *AttachmentService {
	return &AttachmentService{repo: repo, rootDir: filepath.Clean(rootDir)}
}

func attachmentTypeFor(contentType string) models.AttachmentType {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.AttachmentImage
	case contentType == "application/pdf":
		return models.AttachmentPDF
	default:
		return models.AttachmentOther
	}
}

func (s *AttachmentService) Upload(file *multipart.FileHeader, uploadedBy int) (*models.Attachment, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("attachment open: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("attachment dir: %w", err)
	}

	stored := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dstPath := filepath.Join(s.rootDir, stored)
	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("attachment store: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("attachment write: %w", err)
	}

	att := &models.Attachment{
		Filename:   filepath.Base(file.Filename),
		URL:        "/uploads/" + stored,
		Type:       attachmentTypeFor(file.Header.Get("Content-Type")),
		UploadedAt: time.Now(),
		UploadedBy: uploadedBy,
	}
	if err := s.repo.Create(att); err != nil {
		os.Remove(dstPath)
		return nil, err
	}
	return att, nil
}

func (s *AttachmentService) Get(id int) (*models.Attachment, error) {
	att, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if att == nil {
		return nil, ErrAttachmentNotFound
	}
	return att, nil
}

func (s *AttachmentService) ListByUser(userID int) ([]*models.Attachment, error) {
	return s.repo.ListByUser(userID)
}

// Delete removes the record first, then the file; a leftover file is
// harmless, a dangling record is not.
func (s *AttachmentService) Delete(id int) error {
	att, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	stored := filepath.Base(att.URL)
	if err := os.Remove(filepath.Join(s.rootDir, stored)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("attachment file remove: %w", err)
	}
	return nil
}

// FilePath resolves the on-disk location for serving downloads.
func (s *AttachmentService) FilePath(att *models.Attachment) string {
	return filepath.Join(s.rootDir, filepath.Base(att.URL))
}
