// Package diff computes the per-field comparison between a pending
// submission and the approved producer it proposes to amend. The moderation
// dashboard renders the result; the merge path reuses it to build the final
// record on approval.
package diff

import (
	"reflect"

	"github.com/vaudterroir/api/internal/models"
)

// Change classifies a single field of a pending submission.
type Change string

const (
	Unchanged Change = "unchanged"
	Addition  Change = "addition"
	Modified  Change = "modified"
)

// ClosedMarker is the literal rendered for a day with no opening window.
const ClosedMarker = "Fermé"

// dayLabels maps day keys to their fixed display labels, week order.
var dayLabels = map[string]string{
	"mo": "Mon", "tu": "Tue", "we": "Wed", "th": "Thu",
	"fr": "Fri", "sa": "Sat", "su": "Sun",
}

// ScalarDiff describes a single scalar field. Old is only set when the
// field is Modified.
type ScalarDiff struct {
	Field  string      `json:"field"`
	Change Change      `json:"change"`
	Old    interface{} `json:"old,omitempty"`
	New    interface{} `json:"new"`
}

// SetDiff describes the label set: what the proposal adds and removes.
// Order within each list follows the insertion order of the source sets.
type SetDiff struct {
	Change  Change   `json:"change"`
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// ImageListDiff partitions the proposed image list against the original by
// URL value. The pending list's own order stays authoritative for the
// merged record; these partitions only classify membership.
type ImageListDiff struct {
	Change  Change   `json:"change"`
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Kept    []string `json:"kept"`
}

// ScheduleState classifies the weekly-hours comparison as a whole.
type ScheduleState string

const (
	HoursNotSpecified ScheduleState = "not_specified"
	HoursFullAddition ScheduleState = "full_addition"
	HoursIdentical    ScheduleState = "identical"
	HoursModified     ScheduleState = "modified"
)

// DayWindow is one open day of a fully added schedule.
type DayWindow struct {
	Day   string `json:"day"`
	Hours string `json:"hours"`
}

// DayChange is one differing day between two schedules, with both sides
// already normalized for display.
type DayChange struct {
	Day string `json:"day"`
	Old string `json:"old"`
	New string `json:"new"`
}

// ScheduleDiff describes the weekly-hours field. OpenDays is populated for
// a full addition, Changes for a day-by-day modification; both keep fixed
// week order regardless of detection order.
type ScheduleDiff struct {
	State    ScheduleState `json:"state"`
	OpenDays []DayWindow   `json:"openDays,omitempty"`
	Changes  []DayChange   `json:"changes,omitempty"`
}

// ProducerDiff is the full structured comparison for one pending row.
type ProducerDiff struct {
	New         bool          `json:"new"`
	Name        ScalarDiff    `json:"name"`
	Type        ScalarDiff    `json:"type"`
	Description ScalarDiff    `json:"description"`
	Address     ScalarDiff    `json:"address"`
	Phone       ScalarDiff    `json:"phone"`
	Website     ScalarDiff    `json:"website"`
	Labels      SetDiff       `json:"labels"`
	Hours       ScheduleDiff  `json:"hours"`
	Images      ImageListDiff `json:"images"`
}

// Compute builds the diff between a pending row and its optional original.
// A nil original is the new-location case: every field is an addition.
func Compute(pending *models.Producer, original *models.Producer) ProducerDiff {
	d := ProducerDiff{New: original == nil}

	d.Name = scalar("name", fieldOf(original, func(o *models.Producer) interface{} { return o.Name }), pending.Name)
	d.Type = scalar("type", fieldOf(original, func(o *models.Producer) interface{} { return o.Type }), pending.Type)
	d.Description = scalar("description", fieldOf(original, func(o *models.Producer) interface{} { return o.Description }), pending.Description)
	d.Address = scalar("address", fieldOf(original, func(o *models.Producer) interface{} { return o.Address }), pending.Address)
	d.Phone = scalar("phone", fieldOf(original, func(o *models.Producer) interface{} { return o.Phone }), pending.Phone)
	d.Website = scalar("website", fieldOf(original, func(o *models.Producer) interface{} { return o.Website }), pending.Website)

	if original == nil {
		d.Labels = SetDiff{Change: Addition, Added: copyList(pending.Labels), Removed: []string{}}
		d.Images = ImageListDiff{Change: Addition, Added: copyList(pending.Images), Removed: []string{}, Kept: []string{}}
		d.Hours = scheduleDiff(nil, pending.Hours)
		return d
	}

	d.Labels = labelDiff(original.Labels, pending.Labels)
	d.Images = imageDiff(original.Images, pending.Images)
	d.Hours = scheduleDiff(original.Hours, pending.Hours)
	return d
}

// fieldOf extracts a field value from a possibly nil original.
func fieldOf(original *models.Producer, get func(*models.Producer) interface{}) interface{} {
	if original == nil {
		return nil
	}
	return get(original)
}

// scalar classifies one scalar field. Equality is structural, never by
// reference, since callers may pass composite values.
func scalar(name string, old interface{}, val interface{}) ScalarDiff {
	if old == nil {
		return ScalarDiff{Field: name, Change: Addition, New: val}
	}
	if reflect.DeepEqual(old, val) {
		return ScalarDiff{Field: name, Change: Unchanged, New: val}
	}
	return ScalarDiff{Field: name, Change: Modified, Old: old, New: val}
}

// labelDiff computes added = pending \ original and removed = original \
// pending as sets, each in its source's insertion order.
func labelDiff(original, pending []string) SetDiff {
	added := subtract(pending, original)
	removed := subtract(original, pending)
	change := Unchanged
	if len(added) > 0 || len(removed) > 0 {
		change = Modified
	}
	return SetDiff{Change: change, Added: added, Removed: removed}
}

// imageDiff partitions pending and original image URLs into added, removed
// and kept by value equality, ignoring position.
func imageDiff(original, pending []string) ImageListDiff {
	added := subtract(pending, original)
	removed := subtract(original, pending)
	kept := intersect(original, pending)
	change := Unchanged
	if len(added) > 0 || len(removed) > 0 {
		change = Modified
	}
	return ImageListDiff{Change: change, Added: added, Removed: removed, Kept: kept}
}

// scheduleDiff compares two weekly schedules per day in fixed week order.
func scheduleDiff(original, pending *models.WeeklyHours) ScheduleDiff {
	if original == nil && pending == nil {
		return ScheduleDiff{State: HoursNotSpecified}
	}
	if original == nil {
		var open []DayWindow
		for _, key := range models.DayKeys {
			day := pending.Day(key)
			if day.IsOpen {
				open = append(open, DayWindow{Day: dayLabels[key], Hours: formatDay(day)})
			}
		}
		return ScheduleDiff{State: HoursFullAddition, OpenDays: open}
	}
	if pending == nil {
		// Edit forms always resubmit the full schedule; a vanished one is
		// treated as every day differing from its old window.
		var changes []DayChange
		for _, key := range models.DayKeys {
			old := formatDay(original.Day(key))
			if old != ClosedMarker {
				changes = append(changes, DayChange{Day: dayLabels[key], Old: old, New: ClosedMarker})
			}
		}
		if len(changes) == 0 {
			return ScheduleDiff{State: HoursIdentical}
		}
		return ScheduleDiff{State: HoursModified, Changes: changes}
	}

	var changes []DayChange
	for _, key := range models.DayKeys {
		oldStr := formatDay(original.Day(key))
		newStr := formatDay(pending.Day(key))
		if oldStr != newStr {
			changes = append(changes, DayChange{Day: dayLabels[key], Old: oldStr, New: newStr})
		}
	}
	if len(changes) == 0 {
		return ScheduleDiff{State: HoursIdentical}
	}
	return ScheduleDiff{State: HoursModified, Changes: changes}
}

// formatDay renders one day as "start - end" or the closed marker.
func formatDay(d models.DaySchedule) string {
	if !d.IsOpen {
		return ClosedMarker
	}
	return d.Start + " - " + d.End
}

// subtract returns the members of a not present in b, deduplicated,
// keeping a's order.
func subtract(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, v := range b {
		in[v] = true
	}
	out := []string{}
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		if !in[v] && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// intersect returns the members present in both lists, in a's order.
func intersect(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, v := range b {
		in[v] = true
	}
	out := []string{}
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		if in[v] && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func copyList(src []string) []string {
	out := make([]string, len(src))
	copy(out, src)
	return out
}
