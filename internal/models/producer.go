package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ProducerType enumerates the kinds of sale points shown on the map.
type ProducerType string

const (
	TypeFarmShop       ProducerType = "farm_shop"
	TypeVendingMachine ProducerType = "vending_machine"
	TypeCheeseDairy    ProducerType = "cheese_dairy"
	TypeButcher        ProducerType = "butcher"
	TypeCellar         ProducerType = "cellar"
	TypeBakery         ProducerType = "bakery"
	TypeMarket         ProducerType = "market"
	TypeSelfHarvest    ProducerType = "self_harvest"
	TypePickupPoint    ProducerType = "pickup_point"
)

// ValidType reports whether t is a known producer type.
func ValidType(t ProducerType) bool {
	switch t {
	case TypeFarmShop, TypeVendingMachine, TypeCheeseDairy, TypeButcher,
		TypeCellar, TypeBakery, TypeMarket, TypeSelfHarvest, TypePickupPoint:
		return true
	}
	return false
}

// Status is the lifecycle tag of a producer row.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusScraped  Status = "scraped"
)

// DefaultLabel is the sentinel tag stored when a submitter selects no
// product labels. Labels are never persisted as an empty set.
const DefaultLabel = "VaudTerroir"

// DaySchedule is the opening window for a single day.
type DaySchedule struct {
	IsOpen bool   `json:"isOpen"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

// WeeklyHours is a full seven-day schedule. The fixed fields guarantee that
// a present schedule always covers every day; absence of the whole
// structure (nil *WeeklyHours) means "hours not specified".
type WeeklyHours struct {
	Mo DaySchedule `json:"mo"`
	Tu DaySchedule `json:"tu"`
	We DaySchedule `json:"we"`
	Th DaySchedule `json:"th"`
	Fr DaySchedule `json:"fr"`
	Sa DaySchedule `json:"sa"`
	Su DaySchedule `json:"su"`
}

// DayKeys lists the day keys in fixed week order, Monday first.
var DayKeys = []string{"mo", "tu", "we", "th", "fr", "sa", "su"}

// Day returns the schedule for a day key ("mo".."su").
func (w *WeeklyHours) Day(key string) DaySchedule {
	switch key {
	case "mo":
		return w.Mo
	case "tu":
		return w.Tu
	case "we":
		return w.We
	case "th":
		return w.Th
	case "fr":
		return w.Fr
	case "sa":
		return w.Sa
	case "su":
		return w.Su
	}
	return DaySchedule{}
}

// Value implements driver.Valuer so WeeklyHours persists as JSONB.
func (w WeeklyHours) Value() (driver.Value, error) {
	return json.Marshal(w)
}

// Scan implements sql.Scanner for the JSONB column.
func (w *WeeklyHours) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	}
	return fmt.Errorf("unsupported type %T for WeeklyHours", src)
}

// Producer is a sale point on the map, or a pending submission of one.
// A non-nil OriginalID marks an edit proposal against an approved row;
// such rows never appear in public listings until merged.
type Producer struct {
	ID          int64        `db:"id" json:"id"`
	Name        string       `db:"name" json:"name"`
	Description string       `db:"description" json:"description"`
	Type        ProducerType `db:"type" json:"type"`
	Labels      []string     `db:"labels" json:"labels"`
	Address     string       `db:"address" json:"address"`
	Phone       string       `db:"phone" json:"phone"`
	Website     string       `db:"website" json:"website"`
	Lat         float64      `db:"lat" json:"lat"`
	Lng         float64      `db:"lng" json:"lng"`
	Images      []string     `db:"images" json:"images"`
	Hours       *WeeklyHours `db:"opening_hours" json:"opening_hours"`
	Status      Status       `db:"status" json:"status"`
	OriginalID  *int64       `db:"original_id" json:"originalId,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

// IsEditProposal reports whether the row amends an existing producer.
func (p *Producer) IsEditProposal() bool {
	return p.OriginalID != nil
}

// Validate checks the submission-boundary invariants. Rows that pass never
// need defensive checks deeper in the diff or merge logic.
func (p *Producer) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if !ValidType(p.Type) {
		return fmt.Errorf("unknown producer type %q", p.Type)
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	if p.Hours != nil {
		for _, key := range DayKeys {
			d := p.Hours.Day(key)
			if d.IsOpen && (d.Start == "" || d.End == "") {
				return fmt.Errorf("day %s is open but has no time window", key)
			}
		}
	}
	return nil
}

// NormalizeLabels deduplicates labels preserving first-seen order and
// applies the sentinel default when the set would be empty.
func (p *Producer) NormalizeLabels() {
	seen := make(map[string]bool, len(p.Labels))
	out := p.Labels[:0]
	for _, l := range p.Labels {
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	if len(out) == 0 {
		out = []string{DefaultLabel}
	}
	p.Labels = out
}
