package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/vaudterroir/api/internal/cache"
	"github.com/vaudterroir/api/internal/models"
	"github.com/vaudterroir/api/internal/utils"
)

// CatalogService serves the public map data: approved producers only.
type CatalogService struct {
	producers ProducerStore
	cache     *cache.ProducerCache
}

// NewCatalogService constructs a CatalogService. cache may be nil, in
// which case every read goes straight to the database.
func NewCatalogService(producers ProducerStore, producerCache *cache.ProducerCache) *CatalogService {
	return &CatalogService{producers: producers, cache: producerCache}
}

// ListApproved returns the producers shown on the public map. Unfiltered
// listings are served from the Redis cache when possible; a cache outage
// degrades to a direct database read.
func (s *CatalogService) ListApproved(ctx context.Context, typeFilter models.ProducerType, label string) ([]*models.Producer, error) {
	cacheable := typeFilter == "" && label == "" && s.cache != nil

	if cacheable {
		if producers, ok := s.cache.GetMap(ctx); ok {
			return producers, nil
		}
	}

	producers, err := s.producers.ListApproved(ctx, typeFilter, label)
	if err != nil {
		return nil, err
	}
	if producers == nil {
		producers = []*models.Producer{}
	}

	if cacheable {
		if err := s.cache.SetMap(ctx, producers); err != nil {
			log.Warn().Err(err).Msg("failed to cache map listing")
		}
	}
	return producers, nil
}

// Get returns one approved producer by id. Pending rows and edit proposals
// are invisible here; they only exist for the moderation queue.
func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Producer, error) {
	p, err := s.producers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProducerNotFound
		}
		return nil, err
	}
	if p.Status != models.StatusApproved || p.IsEditProposal() {
		return nil, utils.ErrProducerNotFound
	}
	return p, nil
}
