package diff

import "github.com/vaudterroir/api/internal/models"

// Merge builds the record that results from approving an edit proposal:
// every mutable field of the pending row copied onto the original, status
// forced to approved. The image list is replaced wholesale, never patched,
// so the pending order stays authoritative. Coordinates follow the
// original unless relocation is explicitly allowed by policy.
//
// Merge is pure; applying it twice with the same inputs yields the same
// record, which keeps approval retries harmless.
func Merge(original, pending *models.Producer, copyCoordinates bool) models.Producer {
	merged := *original
	merged.Name = pending.Name
	merged.Description = pending.Description
	merged.Type = pending.Type
	merged.Labels = cloneStrings(pending.Labels)
	merged.Images = cloneStrings(pending.Images)
	merged.Address = pending.Address
	merged.Phone = pending.Phone
	merged.Website = pending.Website
	merged.Hours = cloneHours(pending.Hours)
	if copyCoordinates {
		merged.Lat = pending.Lat
		merged.Lng = pending.Lng
	}
	merged.Status = models.StatusApproved
	return merged
}

func cloneStrings(src []string) []string {
	if src == nil {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func cloneHours(src *models.WeeklyHours) *models.WeeklyHours {
	if src == nil {
		return nil
	}
	h := *src
	return &h
}
