package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/vaudterroir/api/internal/diff"
	"github.com/vaudterroir/api/internal/models"
	"github.com/vaudterroir/api/internal/utils"
)

// fakeStore is an in-memory ProducerStore. The calls slice records mutation
// order so tests can assert update-before-delete ordering.
type fakeStore struct {
	rows      map[int64]*models.Producer
	nextID    int64
	calls     []string
	updateErr error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[int64]*models.Producer), nextID: 1}
}

func (f *fakeStore) add(p models.Producer) *models.Producer {
	p.ID = f.nextID
	f.nextID++
	f.rows[p.ID] = &p
	return &p
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*models.Producer, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListByStatus(_ context.Context, statuses ...models.Status) ([]*models.Producer, error) {
	var out []*models.Producer
	for id := int64(1); id < f.nextID; id++ {
		p, ok := f.rows[id]
		if !ok {
			continue
		}
		for _, s := range statuses {
			if p.Status == s {
				cp := *p
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListByIDs(_ context.Context, ids []int64) ([]*models.Producer, error) {
	var out []*models.Producer
	for _, id := range ids {
		if p, ok := f.rows[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) ListApproved(_ context.Context, typeFilter models.ProducerType, label string) ([]*models.Producer, error) {
	var out []*models.Producer
	for id := int64(1); id < f.nextID; id++ {
		p, ok := f.rows[id]
		if !ok || p.Status != models.StatusApproved || p.OriginalID != nil {
			continue
		}
		if typeFilter != "" && p.Type != typeFilter {
			continue
		}
		if label != "" && !contains(p.Labels, label) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func (f *fakeStore) Insert(_ context.Context, p *models.Producer) error {
	f.calls = append(f.calls, "insert")
	p.ID = f.nextID
	f.nextID++
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeStore) Update(_ context.Context, p *models.Producer) error {
	f.calls = append(f.calls, fmt.Sprintf("update:%d", p.ID))
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.rows[p.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, status models.Status) error {
	f.calls = append(f.calls, fmt.Sprintf("status:%d", id))
	p, ok := f.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.Status = status
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	f.calls = append(f.calls, fmt.Sprintf("delete:%d", id))
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

type fakeCache struct {
	invalidations int
}

func (f *fakeCache) InvalidateMap(context.Context) { f.invalidations++ }

func approvedProducer(name string) models.Producer {
	return models.Producer{
		Name:   name,
		Type:   models.TypeFarmShop,
		Labels: []string{"Fruits"},
		Lat:    46.5,
		Lng:    6.6,
		Status: models.StatusApproved,
	}
}

func TestApproveNewSubmission(t *testing.T) {
	store := newFakeStore()
	p := approvedProducer("Ferme du Jorat")
	p.Status = models.StatusPending
	pending := store.add(p)

	cache := &fakeCache{}
	svc := NewModerationService(store, cache, false)

	if err := svc.Approve(context.Background(), pending.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got := store.rows[pending.ID].Status; got != models.StatusApproved {
		t.Errorf("status = %q, want approved", got)
	}
	if cache.invalidations != 1 {
		t.Errorf("invalidations = %d, want 1", cache.invalidations)
	}

	// Approving again is a no-op, not an error.
	if err := svc.Approve(context.Background(), pending.ID); err != nil {
		t.Fatalf("second Approve: %v", err)
	}
	if cache.invalidations != 1 {
		t.Errorf("invalidations after no-op = %d, want 1", cache.invalidations)
	}
}

func TestApproveEditMergesAndDeletesPending(t *testing.T) {
	store := newFakeStore()
	original := store.add(approvedProducer("Ferme A"))

	edit := approvedProducer("Ferme A Plus")
	edit.Status = models.StatusPending
	edit.OriginalID = &original.ID
	edit.Lat = 47.0
	pending := store.add(edit)

	cache := &fakeCache{}
	svc := NewModerationService(store, cache, false)

	if err := svc.Approve(context.Background(), pending.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	merged := store.rows[original.ID]
	if merged.Name != "Ferme A Plus" {
		t.Errorf("merged name = %q, want proposal's", merged.Name)
	}
	if merged.Lat != 46.5 {
		t.Errorf("merged lat = %v, want original's coordinates kept", merged.Lat)
	}
	if _, ok := store.rows[pending.ID]; ok {
		t.Error("pending row still present after approval")
	}
	if cache.invalidations != 1 {
		t.Errorf("invalidations = %d, want 1", cache.invalidations)
	}

	// The merged record was written before the pending row was removed.
	wantOrder := []string{fmt.Sprintf("update:%d", original.ID), fmt.Sprintf("delete:%d", pending.ID)}
	if len(store.calls) != 2 || store.calls[0] != wantOrder[0] || store.calls[1] != wantOrder[1] {
		t.Errorf("mutation order = %v, want %v", store.calls, wantOrder)
	}
}

func TestApproveEditUpdateFailureKeepsPending(t *testing.T) {
	store := newFakeStore()
	original := store.add(approvedProducer("Ferme A"))

	edit := approvedProducer("Ferme A Plus")
	edit.Status = models.StatusPending
	edit.OriginalID = &original.ID
	pending := store.add(edit)

	store.updateErr = errors.New("connection reset")
	svc := NewModerationService(store, &fakeCache{}, false)

	if err := svc.Approve(context.Background(), pending.ID); err == nil {
		t.Fatal("Approve succeeded despite update failure")
	}
	if _, ok := store.rows[pending.ID]; !ok {
		t.Error("pending row deleted even though merge was not written")
	}
	if store.rows[original.ID].Name != "Ferme A" {
		t.Error("original modified despite update failure")
	}
}

func TestApproveEditDeleteFailureIsNonFatal(t *testing.T) {
	store := newFakeStore()
	original := store.add(approvedProducer("Ferme A"))

	edit := approvedProducer("Ferme A Plus")
	edit.Status = models.StatusPending
	edit.OriginalID = &original.ID
	pending := store.add(edit)

	store.deleteErr = errors.New("connection reset")
	svc := NewModerationService(store, &fakeCache{}, false)

	if err := svc.Approve(context.Background(), pending.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if store.rows[original.ID].Name != "Ferme A Plus" {
		t.Error("merge not applied")
	}
	// The leftover pending row reappears in the queue; approving it again
	// re-applies the same merge without changing the outcome.
	store.deleteErr = nil
	if err := svc.Approve(context.Background(), pending.ID); err != nil {
		t.Fatalf("retried Approve: %v", err)
	}
	if store.rows[original.ID].Name != "Ferme A Plus" {
		t.Error("retried merge changed the outcome")
	}
	if _, ok := store.rows[pending.ID]; ok {
		t.Error("pending row still present after retry")
	}
}

func TestApproveEditRelocatesWhenPolicyEnabled(t *testing.T) {
	store := newFakeStore()
	original := store.add(approvedProducer("Ferme A"))

	edit := approvedProducer("Ferme A")
	edit.Status = models.StatusPending
	edit.OriginalID = &original.ID
	edit.Lat = 46.9
	edit.Lng = 7.1
	pending := store.add(edit)

	svc := NewModerationService(store, &fakeCache{}, true)
	if err := svc.Approve(context.Background(), pending.ID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	merged := store.rows[original.ID]
	if merged.Lat != 46.9 || merged.Lng != 7.1 {
		t.Errorf("coordinates = (%v, %v), want proposal's", merged.Lat, merged.Lng)
	}
}

func TestApproveErrors(t *testing.T) {
	store := newFakeStore()
	missing := int64(99)
	edit := approvedProducer("Orphan")
	edit.Status = models.StatusPending
	edit.OriginalID = &missing
	pending := store.add(edit)

	svc := NewModerationService(store, &fakeCache{}, false)

	if err := svc.Approve(context.Background(), 42); !errors.Is(err, utils.ErrPendingNotFound) {
		t.Errorf("unknown id: err = %v, want ErrPendingNotFound", err)
	}
	if err := svc.Approve(context.Background(), pending.ID); !errors.Is(err, utils.ErrOriginalNotFound) {
		t.Errorf("missing original: err = %v, want ErrOriginalNotFound", err)
	}
}

func TestRejectDeletesPendingOnly(t *testing.T) {
	store := newFakeStore()
	original := store.add(approvedProducer("Ferme A"))

	edit := approvedProducer("Ferme A Plus")
	edit.Status = models.StatusPending
	edit.OriginalID = &original.ID
	pending := store.add(edit)

	svc := NewModerationService(store, &fakeCache{}, false)
	if err := svc.Reject(context.Background(), pending.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if _, ok := store.rows[pending.ID]; ok {
		t.Error("pending row still present after rejection")
	}
	if got := store.rows[original.ID]; got == nil || got.Name != "Ferme A" {
		t.Error("original touched by rejection")
	}
}

func TestRejectGuards(t *testing.T) {
	store := newFakeStore()
	approved := store.add(approvedProducer("Ferme A"))

	svc := NewModerationService(store, &fakeCache{}, false)
	if err := svc.Reject(context.Background(), approved.ID); !errors.Is(err, utils.ErrNotPending) {
		t.Errorf("rejecting approved row: err = %v, want ErrNotPending", err)
	}
	if err := svc.Reject(context.Background(), 42); !errors.Is(err, utils.ErrPendingNotFound) {
		t.Errorf("unknown id: err = %v, want ErrPendingNotFound", err)
	}
}

func TestListPendingResolvesOriginals(t *testing.T) {
	store := newFakeStore()
	original := store.add(approvedProducer("Ferme A"))

	edit := approvedProducer("Ferme A Plus")
	edit.Status = models.StatusPending
	edit.OriginalID = &original.ID
	store.add(edit)

	fresh := approvedProducer("Ferme B")
	fresh.Status = models.StatusPending
	store.add(fresh)

	scraped := approvedProducer("Ferme C")
	scraped.Status = models.StatusScraped
	store.add(scraped)

	svc := NewModerationService(store, &fakeCache{}, false)
	entries, err := svc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}

	byName := make(map[string]PendingEntry, len(entries))
	for _, e := range entries {
		byName[e.Pending.Name] = e
	}

	editEntry := byName["Ferme A Plus"]
	if editEntry.Original == nil || editEntry.Original.ID != original.ID {
		t.Error("edit proposal did not resolve its original")
	}
	if editEntry.Diff.Name.Change != diff.Modified {
		t.Errorf("edit name change = %q, want modified", editEntry.Diff.Name.Change)
	}
	if !byName["Ferme B"].Diff.New {
		t.Error("fresh submission not diffed as a new record")
	}
	if !byName["Ferme C"].Diff.New {
		t.Error("scraped row not diffed as a new record")
	}
}

func TestListPendingMissingOriginalDiffsAsAddition(t *testing.T) {
	store := newFakeStore()
	missing := int64(77)
	edit := approvedProducer("Orphan")
	edit.Status = models.StatusPending
	edit.OriginalID = &missing
	store.add(edit)

	svc := NewModerationService(store, &fakeCache{}, false)
	entries, err := svc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Original != nil {
		t.Error("missing original resolved to a record")
	}
	if !entries[0].Diff.New {
		t.Error("orphaned edit not surfaced as an addition")
	}
}
