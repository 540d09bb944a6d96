package service

import (
	"context"

	"github.com/vaudterroir/api/internal/models"
)

// ProducerStore is the persistence surface the services depend on.
// *repository.ProducerRepository satisfies it in production; tests inject
// in-memory fakes so the merge and diff logic runs without a database.
type ProducerStore interface {
	GetByID(ctx context.Context, id int64) (*models.Producer, error)
	ListByStatus(ctx context.Context, statuses ...models.Status) ([]*models.Producer, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*models.Producer, error)
	ListApproved(ctx context.Context, typeFilter models.ProducerType, label string) ([]*models.Producer, error)
	Insert(ctx context.Context, p *models.Producer) error
	Update(ctx context.Context, p *models.Producer) error
	UpdateStatus(ctx context.Context, id int64, status models.Status) error
	Delete(ctx context.Context, id int64) error
}

// MapCache invalidates the cached public map listing after a mutation
// changes what the map should show. Implementations must treat cache
// failures as non-fatal.
type MapCache interface {
	InvalidateMap(ctx context.Context)
}
