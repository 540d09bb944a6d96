package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/vaudterroir/api/internal/service"
	"github.com/vaudterroir/api/internal/utils"
)

// ImageHandler handles image uploads for submissions.
type ImageHandler struct {
	images *service.ImageService
}

// NewImageHandler constructs an ImageHandler.
func NewImageHandler(images *service.ImageService) *ImageHandler {
	return &ImageHandler{images: images}
}

// Upload handles POST /v1/images (multipart field "image"). Clients upload
// each image separately, possibly concurrently, then submit the ordered
// URL list with the form.
func (h *ImageHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Missing image file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Unreadable image file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Unreadable image file")
		return
	}

	url, err := h.images.Upload(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, utils.ErrInvalidSubmission) {
			utils.Error(c, 400, "INVALID_IMAGE", err.Error())
			return
		}
		if errors.Is(err, utils.ErrImageRejected) {
			utils.Error(c, 422, "IMAGE_REJECTED", err.Error())
			return
		}
		utils.Error(c, 500, "UPLOAD_FAILED", "Failed to store image")
		return
	}

	utils.Success(c, 201, "Image uploaded", gin.H{"url": url})
}
