package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crewdesk/internal/services"
)

type AttachmentHandler struct {
	attachments *services.AttachmentService
}

func NewAttachmentHandler(attachments *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// @Summary      Upload attachment
// @Tags         Attachments
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "File to upload"
// @Success      201   {object}  models.Attachment
// @Router       /api/attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	userID, _ := getIdentity(c)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	att, err := h.attachments.Upload(file, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to upload attachment"})
		return
	}
	c.JSON(http.StatusCreated, att)
}

// @Summary      List my attachments
// @Tags         Attachments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.Attachment
// @Router       /api/attachments [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	userID, _ := getIdentity(c)

	atts, err := h.attachments.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attachments"})
		return
	}
	c.JSON(http.StatusOK, atts)
}

// @Summary      Download attachment
// @Tags         Attachments
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id  path  int  true  "Attachment ID"
// @Router       /api/attachments/{id}/file [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attachment ID"})
		return
	}

	att, err := h.attachments.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrAttachmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.FileAttachment(h.attachments.FilePath(att), att.Filename)
}

// @Summary      Delete attachment
// @Tags         Attachments
// @Security     BearerAuth
// @Param        id  path  int  true  "Attachment ID"
// @Success      204
// @Router       /api/attachments/{id} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	userID, _ := getIdentity(c)

	id, ok := pathID(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attachment ID"})
		return
	}

	att, err := h.attachments.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrAttachmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if att.UploadedBy != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	if err := h.attachments.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete attachment"})
		return
	}
	c.Status(http.StatusNoContent)
}
