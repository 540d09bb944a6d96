package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vaudterroir/api/internal/models"
)

// producerColumns is the shared column list; every scan goes through
// scanProducer so TEXT[] fields always use pq.Array and the JSONB hours
// column always lands on *WeeklyHours.
const producerColumns = `id, name, description, type, labels, address, phone, website,
	lat, lng, images, opening_hours, status, original_id, created_at, updated_at`

// ProducerRepository provides data access for the producers table.
type ProducerRepository struct {
	db *sqlx.DB
}

// NewProducerRepository creates a new ProducerRepository.
func NewProducerRepository(db *sqlx.DB) *ProducerRepository {
	return &ProducerRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProducer(row rowScanner) (*models.Producer, error) {
	var p models.Producer
	var description, address, phone, website sql.NullString
	var hours models.WeeklyHours
	var hasHours bool

	// opening_hours needs a two-step scan: NULL means "not specified",
	// which maps to a nil pointer, not a zero-value week.
	var rawHours []byte
	err := row.Scan(
		&p.ID,
		&p.Name,
		&description,
		&p.Type,
		pq.Array(&p.Labels),
		&address,
		&phone,
		&website,
		&p.Lat,
		&p.Lng,
		pq.Array(&p.Images),
		&rawHours,
		&p.Status,
		&p.OriginalID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	p.Address = address.String
	p.Phone = phone.String
	p.Website = website.String
	if rawHours != nil {
		if err := hours.Scan(rawHours); err != nil {
			return nil, err
		}
		hasHours = true
	}
	if hasHours {
		p.Hours = &hours
	}
	return &p, nil
}

func hoursValue(p *models.Producer) interface{} {
	if p.Hours == nil {
		return nil
	}
	return *p.Hours
}

// GetByID returns one producer row by id.
func (r *ProducerRepository) GetByID(ctx context.Context, id int64) (*models.Producer, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT `+producerColumns+` FROM producers WHERE id = $1`, id)
	return scanProducer(row)
}

// ListByStatus returns producers in any of the given statuses, newest first.
func (r *ProducerRepository) ListByStatus(ctx context.Context, statuses ...models.Status) ([]*models.Producer, error) {
	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}
	rows, err := r.db.QueryxContext(ctx,
		`SELECT `+producerColumns+` FROM producers WHERE status = ANY($1) ORDER BY created_at DESC`,
		pq.Array(raw))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListByIDs batch-resolves producers by id. Used to fetch the originals
// referenced by pending edit proposals in one round-trip.
func (r *ProducerRepository) ListByIDs(ctx context.Context, ids []int64) ([]*models.Producer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryxContext(ctx,
		`SELECT `+producerColumns+` FROM producers WHERE id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListApproved returns the public map data, optionally filtered by type
// or label. Pending and scraped rows never show up here.
func (r *ProducerRepository) ListApproved(ctx context.Context, typeFilter models.ProducerType, label string) ([]*models.Producer, error) {
	query := `SELECT ` + producerColumns + ` FROM producers WHERE status = $1 AND original_id IS NULL`
	args := []interface{}{models.StatusApproved}
	if typeFilter != "" {
		args = append(args, typeFilter)
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if label != "" {
		args = append(args, label)
		query += fmt.Sprintf(` AND $%d = ANY(labels)`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Insert persists a new row and backfills id and timestamps.
func (r *ProducerRepository) Insert(ctx context.Context, p *models.Producer) error {
	query := `INSERT INTO producers
		(name, description, type, labels, address, phone, website, lat, lng, images, opening_hours, status, original_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowxContext(ctx, query,
		p.Name,
		p.Description,
		p.Type,
		pq.Array(p.Labels),
		p.Address,
		p.Phone,
		p.Website,
		p.Lat,
		p.Lng,
		pq.Array(p.Images),
		hoursValue(p),
		p.Status,
		p.OriginalID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update writes every mutable field of p back to its row.
func (r *ProducerRepository) Update(ctx context.Context, p *models.Producer) error {
	query := `UPDATE producers
		SET name = $1, description = $2, type = $3, labels = $4, address = $5,
		    phone = $6, website = $7, lat = $8, lng = $9, images = $10,
		    opening_hours = $11, status = $12, updated_at = NOW()
		WHERE id = $13
		RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		p.Name,
		p.Description,
		p.Type,
		pq.Array(p.Labels),
		p.Address,
		p.Phone,
		p.Website,
		p.Lat,
		p.Lng,
		pq.Array(p.Images),
		hoursValue(p),
		p.Status,
		p.ID,
	).Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return sql.ErrNoRows
	}
	return err
}

// UpdateStatus flips only the lifecycle tag of a row.
func (r *ProducerRepository) UpdateStatus(ctx context.Context, id int64, status models.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE producers SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a row outright. Rejection and post-merge cleanup both
// land here; there is no tombstone.
func (r *ProducerRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM producers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func collect(rows *sqlx.Rows) ([]*models.Producer, error) {
	var producers []*models.Producer
	for rows.Next() {
		p, err := scanProducer(rows)
		if err != nil {
			return nil, err
		}
		producers = append(producers, p)
	}
	return producers, rows.Err()
}
