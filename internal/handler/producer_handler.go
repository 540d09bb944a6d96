package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vaudterroir/api/internal/models"
	"github.com/vaudterroir/api/internal/service"
	"github.com/vaudterroir/api/internal/utils"
)

// ProducerHandler handles the public producer endpoints: map data and
// submissions.
type ProducerHandler struct {
	catalog     *service.CatalogService
	submissions *service.SubmissionService
}

// NewProducerHandler constructs a ProducerHandler.
func NewProducerHandler(catalog *service.CatalogService, submissions *service.SubmissionService) *ProducerHandler {
	return &ProducerHandler{catalog: catalog, submissions: submissions}
}

// ListProducers handles GET /v1/producers
func (h *ProducerHandler) ListProducers(c *gin.Context) {
	typeFilter := models.ProducerType(c.Query("type"))
	if typeFilter != "" && !models.ValidType(typeFilter) {
		utils.Error(c, 400, "INVALID_TYPE", "Unknown producer type")
		return
	}
	label := c.Query("label")

	producers, err := h.catalog.ListApproved(c.Request.Context(), typeFilter, label)
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve producers")
		return
	}

	utils.Success(c, 200, "Producers retrieved", gin.H{
		"producers": producers,
		"total":     len(producers),
	})
}

// GetProducer handles GET /v1/producers/:id
func (h *ProducerHandler) GetProducer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid producer ID")
		return
	}

	producer, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, utils.ErrProducerNotFound) {
			utils.Error(c, 404, "PRODUCER_NOT_FOUND", "Producer not found")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve producer")
		return
	}

	utils.Success(c, 200, "Producer retrieved", producer)
}

// SubmitProducer handles POST /v1/producers
func (h *ProducerHandler) SubmitProducer(c *gin.Context) {
	var req service.SubmitProducerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	producer, err := h.submissions.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidSubmission) {
			utils.Error(c, 400, "INVALID_SUBMISSION", err.Error())
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to store submission")
		return
	}

	utils.Success(c, 201, "Submission received, pending review", producer)
}

// SubmitEdit handles POST /v1/producers/:id/edits
func (h *ProducerHandler) SubmitEdit(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid producer ID")
		return
	}

	var req service.SubmitProducerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	proposal, err := h.submissions.ProposeEdit(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, utils.ErrProducerNotFound) {
			utils.Error(c, 404, "PRODUCER_NOT_FOUND", "Producer not found")
			return
		}
		if errors.Is(err, utils.ErrInvalidSubmission) {
			utils.Error(c, 400, "INVALID_SUBMISSION", err.Error())
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to store edit proposal")
		return
	}

	utils.Success(c, 201, "Edit proposal received, pending review", proposal)
}
