package handlers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"crewdesk/internal/services"
)

type EmailHandler struct {
	mailer services.MailService
}

func NewEmailHandler(mailer services.MailService) *EmailHandler {
	return &EmailHandler{mailer: mailer}
}

// @Summary      Send email
// @Description  Sends an email with optional file attachments
// @Tags         Email
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        to       formData  string  true   "Recipient address"
// @Param        subject  formData  string  true   "Subject"
// @Param        text     formData  string  true   "Body text"
// @Param        files    formData  file    false  "Attachments"
// @Success      200      {object}  map[string]string
// @Failure      502      {object}  map[string]string
// @Router       /api/email/send [post]
func (h *EmailHandler) Send(c *gin.Context) {
	to := c.PostForm("to")
	subject := c.PostForm("subject")
	text := c.PostForm("text")
	if to == "" || subject == "" || text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to, subject and text are required"})
		return
	}

	var paths []string
	defer func() {
		for _, p := range paths {
			os.Remove(p)
		}
	}()

	form, err := c.MultipartForm()
	if err == nil && form != nil {
		for _, file := range form.File["files"] {
			dst := filepath.Join(os.TempDir(), filepath.Base(file.Filename))
			if err := c.SaveUploadedFile(file, dst); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read attachment"})
				return
			}
			paths = append(paths, dst)
		}
	}

	if err := h.mailer.SendEmailWithAttachments(to, subject, text, paths); err != nil {
		log.Printf("[email][send] delivery failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email sent"})
}
