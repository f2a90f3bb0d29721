package handler

import (
	"fmt"
	"log"
	"net/http"

	"klipz/internal/middleware"
	"klipz/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxThumbnailBytes = 5 << 20

type UploadHandler struct {
	cloudinary cloudinary.Client
}

func NewUploadHandler(client cloudinary.Client) *UploadHandler {
	return &UploadHandler{cloudinary: client}
}

// Thumbnail accepts a multipart image and returns the transformed Cloudinary
// URL for use on a submission.
func (h *UploadHandler) Thumbnail(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No file provided"})
		return
	}
	if fileHeader.Size > maxThumbnailBytes {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "File exceeds 5MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to read file"})
		return
	}
	defer file.Close()

	userID := middleware.GetUserID(c)
	publicID := fmt.Sprintf("thumb-%d-%s", userID, uuid.NewString())
	url, err := h.cloudinary.UploadThumbnail(c.Request.Context(), file, publicID)
	if err != nil {
		log.Printf("[Upload] thumbnail upload failed for user %d: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}
