package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vaudterroir/api/internal/service"
	"github.com/vaudterroir/api/internal/utils"
)

// ModerationHandler handles the admin review endpoints.
type ModerationHandler struct {
	moderation *service.ModerationService
}

// NewModerationHandler constructs a ModerationHandler.
func NewModerationHandler(moderation *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

// ListPending handles GET /v1/admin/pending
func (h *ModerationHandler) ListPending(c *gin.Context) {
	entries, err := h.moderation.ListPending(c.Request.Context())
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to retrieve pending submissions")
		return
	}

	utils.Success(c, 200, "Pending submissions retrieved", gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}

// Approve handles POST /v1/admin/pending/:id/approve
func (h *ModerationHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid submission ID")
		return
	}

	if err := h.moderation.Approve(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, utils.ErrPendingNotFound):
			utils.Error(c, 404, "PENDING_NOT_FOUND", "Pending submission not found")
		case errors.Is(err, utils.ErrOriginalNotFound):
			utils.Error(c, 409, "ORIGINAL_NOT_FOUND", "The record this edit targets no longer exists")
		default:
			// Mutation failures surface the backend message so the
			// operator can retry the same action.
			utils.Error(c, 500, "APPROVE_FAILED", err.Error())
		}
		return
	}

	utils.Success(c, 200, "Submission approved", nil)
}

// Reject handles POST /v1/admin/pending/:id/reject
func (h *ModerationHandler) Reject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "INVALID_ID", "Invalid submission ID")
		return
	}

	if err := h.moderation.Reject(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, utils.ErrPendingNotFound):
			utils.Error(c, 404, "PENDING_NOT_FOUND", "Pending submission not found")
		case errors.Is(err, utils.ErrNotPending):
			utils.Error(c, 409, "NOT_PENDING", "Record is not awaiting review")
		default:
			utils.Error(c, 500, "REJECT_FAILED", err.Error())
		}
		return
	}

	utils.Success(c, 200, "Submission rejected", nil)
}
