package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vaudterroir/api/internal/models"
	"github.com/vaudterroir/api/internal/utils"
)

// SubmissionService accepts public submissions: new locations and edit
// proposals. Everything it stores has passed boundary validation, so the
// diff engine downstream never needs defensive checks.
type SubmissionService struct {
	producers ProducerStore
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(producers ProducerStore) *SubmissionService {
	return &SubmissionService{producers: producers}
}

// SubmitProducerRequest is the payload for both submission paths. The
// images field carries the final ordered URL list as assembled client-side;
// upload completion order never reorders it.
type SubmitProducerRequest struct {
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	Type        models.ProducerType `json:"type" binding:"required"`
	Labels      []string            `json:"labels"`
	Address     string              `json:"address"`
	Phone       string              `json:"phone"`
	Website     string              `json:"website"`
	Lat         *float64            `json:"lat" binding:"required"`
	Lng         *float64            `json:"lng" binding:"required"`
	Images      []string            `json:"images"`
	Hours       *models.WeeklyHours `json:"opening_hours"`
}

func (s *SubmissionService) buildProducer(req *SubmitProducerRequest) (*models.Producer, error) {
	p := &models.Producer{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Labels:      req.Labels,
		Address:     req.Address,
		Phone:       req.Phone,
		Website:     req.Website,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		Images:      req.Images,
		Hours:       req.Hours,
		Status:      models.StatusPending,
	}
	p.NormalizeLabels()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", utils.ErrInvalidSubmission, err)
	}
	return p, nil
}

// Create stores a new-location proposal as a pending row.
func (s *SubmissionService) Create(ctx context.Context, req *SubmitProducerRequest) (*models.Producer, error) {
	p, err := s.buildProducer(req)
	if err != nil {
		return nil, err
	}
	if err := s.producers.Insert(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Int64("id", p.ID).Str("name", p.Name).Msg("new location submitted")
	return p, nil
}

// ProposeEdit stores an edit proposal against an existing approved record.
// The proposal is a full replacement snapshot, not a patch; approval copies
// its fields wholesale onto the original.
func (s *SubmissionService) ProposeEdit(ctx context.Context, originalID int64, req *SubmitProducerRequest) (*models.Producer, error) {
	original, err := s.producers.GetByID(ctx, originalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProducerNotFound
		}
		return nil, err
	}
	if original.Status != models.StatusApproved {
		return nil, utils.ErrProducerNotFound
	}

	p, err := s.buildProducer(req)
	if err != nil {
		return nil, err
	}
	p.OriginalID = &original.ID
	if err := s.producers.Insert(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Int64("id", p.ID).Int64("original_id", originalID).Msg("edit proposal submitted")
	return p, nil
}
