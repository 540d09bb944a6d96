package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/vaudterroir/api/internal/diff"
	"github.com/vaudterroir/api/internal/models"
	"github.com/vaudterroir/api/internal/utils"
)

// ModerationService drives the admin review workflow: listing pending
// submissions with their diffs, approving (merging) and rejecting them.
type ModerationService struct {
	producers       ProducerStore
	cache           MapCache
	copyCoordinates bool
}

// NewModerationService constructs a ModerationService. copyCoordinates is
// the relocation policy: when true, approving an edit also moves the pin.
func NewModerationService(producers ProducerStore, cache MapCache, copyCoordinates bool) *ModerationService {
	return &ModerationService{producers: producers, cache: cache, copyCoordinates: copyCoordinates}
}

// PendingEntry is one row of the moderation queue: the pending record, its
// resolved original (nil for new-location proposals) and the computed diff.
type PendingEntry struct {
	Pending  *models.Producer  `json:"pending"`
	Original *models.Producer  `json:"original,omitempty"`
	Diff     diff.ProducerDiff `json:"diff"`
}

// ListPending returns the moderation queue, newest first. Originals are
// resolved in a single batch query keyed by the distinct original_id
// values, and diffs are only computed once both round-trips finished.
func (s *ModerationService) ListPending(ctx context.Context) ([]PendingEntry, error) {
	pending, err := s.producers.ListByStatus(ctx, models.StatusPending, models.StatusScraped)
	if err != nil {
		return nil, err
	}

	var ids []int64
	seen := make(map[int64]bool)
	for _, p := range pending {
		if p.OriginalID != nil && !seen[*p.OriginalID] {
			seen[*p.OriginalID] = true
			ids = append(ids, *p.OriginalID)
		}
	}

	originals := make(map[int64]*models.Producer, len(ids))
	if len(ids) > 0 {
		rows, err := s.producers.ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, o := range rows {
			originals[o.ID] = o
		}
	}

	entries := make([]PendingEntry, 0, len(pending))
	for _, p := range pending {
		var original *models.Producer
		if p.OriginalID != nil {
			original = originals[*p.OriginalID]
			if original == nil {
				// The referenced row was deleted since submission. Surface
				// the proposal as a plain addition so the operator can
				// still decide on it.
				log.Warn().Int64("pending_id", p.ID).Int64("original_id", *p.OriginalID).
					Msg("pending edit references a missing original")
			}
		}
		entries = append(entries, PendingEntry{
			Pending:  p,
			Original: original,
			Diff:     diff.Compute(p, original),
		})
	}
	return entries, nil
}

// Approve applies one pending submission.
//
// For an edit proposal the merged record is written to the original first
// and the pending row deleted second. If the update fails nothing is
// deleted, so the submission is never lost; if only the delete fails the
// leftover pending row is a harmless duplicate that reappears on the next
// listing.
func (s *ModerationService) Approve(ctx context.Context, id int64) error {
	p, err := s.producers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.ErrPendingNotFound
		}
		return err
	}
	if p.Status == models.StatusApproved {
		// Retried approval of a new-location proposal: nothing to do.
		return nil
	}

	if p.IsEditProposal() {
		original, err := s.producers.GetByID(ctx, *p.OriginalID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return utils.ErrOriginalNotFound
			}
			return err
		}

		merged := diff.Merge(original, p, s.copyCoordinates)
		if err := s.producers.Update(ctx, &merged); err != nil {
			return err
		}
		if err := s.producers.Delete(ctx, p.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int64("pending_id", p.ID).
				Msg("merged edit but failed to delete pending row; duplicate will reappear in queue")
		}
	} else {
		if err := s.producers.UpdateStatus(ctx, p.ID, models.StatusApproved); err != nil {
			return err
		}
	}

	if s.cache != nil {
		s.cache.InvalidateMap(ctx)
	}
	log.Info().Int64("id", id).Bool("edit", p.IsEditProposal()).Msg("submission approved")
	return nil
}

// Reject deletes the pending row outright. The original, if any, is never
// touched.
func (s *ModerationService) Reject(ctx context.Context, id int64) error {
	p, err := s.producers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.ErrPendingNotFound
		}
		return err
	}
	if p.Status == models.StatusApproved && !p.IsEditProposal() {
		return utils.ErrNotPending
	}

	if err := s.producers.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return utils.ErrPendingNotFound
		}
		return err
	}
	log.Info().Int64("id", id).Msg("submission rejected")
	return nil
}
