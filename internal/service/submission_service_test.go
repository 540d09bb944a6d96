package service

import (
	"context"
	"errors"
	"testing"

	"github.com/vaudterroir/api/internal/models"
	"github.com/vaudterroir/api/internal/utils"
)

func submitRequest(name string) *SubmitProducerRequest {
	lat, lng := 46.5, 6.6
	return &SubmitProducerRequest{
		Name:   name,
		Type:   models.TypeFarmShop,
		Labels: []string{"Fruits", "Légumes"},
		Lat:    &lat,
		Lng:    &lng,
	}
}

func TestCreateStoresPendingRow(t *testing.T) {
	store := newFakeStore()
	svc := NewSubmissionService(store)

	p, err := svc.Create(context.Background(), submitRequest("Ferme du Jorat"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == 0 {
		t.Error("no ID assigned")
	}
	if p.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", p.Status)
	}
	if p.OriginalID != nil {
		t.Error("new-location proposal has an original reference")
	}
}

func TestCreateAppliesDefaultLabel(t *testing.T) {
	store := newFakeStore()
	svc := NewSubmissionService(store)

	req := submitRequest("Ferme du Jorat")
	req.Labels = nil
	p, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(p.Labels) != 1 || p.Labels[0] != models.DefaultLabel {
		t.Errorf("labels = %v, want [%s]", p.Labels, models.DefaultLabel)
	}
}

func TestCreateDeduplicatesLabels(t *testing.T) {
	store := newFakeStore()
	svc := NewSubmissionService(store)

	req := submitRequest("Ferme du Jorat")
	req.Labels = []string{"Fruits", "Fruits", "", "Vins"}
	p, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := []string{"Fruits", "Vins"}
	if len(p.Labels) != len(want) || p.Labels[0] != want[0] || p.Labels[1] != want[1] {
		t.Errorf("labels = %v, want %v", p.Labels, want)
	}
}

func TestCreateValidation(t *testing.T) {
	store := newFakeStore()
	svc := NewSubmissionService(store)

	cases := []struct {
		name   string
		mutate func(*SubmitProducerRequest)
	}{
		{"empty name", func(r *SubmitProducerRequest) { r.Name = "" }},
		{"unknown type", func(r *SubmitProducerRequest) { r.Type = "boutique" }},
		{"latitude out of range", func(r *SubmitProducerRequest) { *r.Lat = 91 }},
		{"open day without window", func(r *SubmitProducerRequest) {
			r.Hours = &models.WeeklyHours{Mo: models.DaySchedule{IsOpen: true}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := submitRequest("Ferme du Jorat")
			tc.mutate(req)
			if _, err := svc.Create(context.Background(), req); !errors.Is(err, utils.ErrInvalidSubmission) {
				t.Errorf("err = %v, want ErrInvalidSubmission", err)
			}
		})
	}
	if len(store.rows) != 0 {
		t.Errorf("store has %d rows after rejected submissions, want 0", len(store.rows))
	}
}

func TestProposeEditLinksOriginal(t *testing.T) {
	store := newFakeStore()
	original := store.add(approvedProducer("Ferme A"))
	svc := NewSubmissionService(store)

	p, err := svc.ProposeEdit(context.Background(), original.ID, submitRequest("Ferme A Plus"))
	if err != nil {
		t.Fatalf("ProposeEdit: %v", err)
	}
	if p.OriginalID == nil || *p.OriginalID != original.ID {
		t.Errorf("original reference = %v, want %d", p.OriginalID, original.ID)
	}
	if p.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", p.Status)
	}
	if store.rows[original.ID].Name != "Ferme A" {
		t.Error("submitting an edit modified the original")
	}
}

func TestProposeEditRequiresApprovedOriginal(t *testing.T) {
	store := newFakeStore()
	pendingRow := approvedProducer("Ferme B")
	pendingRow.Status = models.StatusPending
	target := store.add(pendingRow)

	svc := NewSubmissionService(store)
	if _, err := svc.ProposeEdit(context.Background(), target.ID, submitRequest("Ferme B Plus")); !errors.Is(err, utils.ErrProducerNotFound) {
		t.Errorf("editing pending row: err = %v, want ErrProducerNotFound", err)
	}
	if _, err := svc.ProposeEdit(context.Background(), 42, submitRequest("Nowhere")); !errors.Is(err, utils.ErrProducerNotFound) {
		t.Errorf("unknown id: err = %v, want ErrProducerNotFound", err)
	}
}
