package register

import (
	"strings"
	"time"
)

// Advance returns the next due date for a base date and a maintenance
// frequency label. The mapping is case-insensitive and total: anything
// unrecognized, including an empty string, defaults to one year.
func Advance(base time.Time, frequency string) time.Time {
	switch strings.ToLower(strings.TrimSpace(frequency)) {
	case "daily":
		return base.AddDate(0, 0, 1)
	case "weekly":
		return base.AddDate(0, 0, 7)
	case "monthly":
		return base.AddDate(0, 1, 0)
	case "quarterly":
		return base.AddDate(0, 3, 0)
	case "half-yearly", "halfyearly":
		return base.AddDate(0, 6, 0)
	case "yearly", "annual":
		return base.AddDate(1, 0, 0)
	case "2nd year":
		return base.AddDate(2, 0, 0)
	case "3rd year":
		return base.AddDate(3, 0, 0)
	default:
		return base.AddDate(1, 0, 0)
	}
}

// NextDue computes the single due date for an item.
//
// Frequency wins over the stored next-service-due: when the record carries a
// frequency the date is derived from the latest service date, or from the
// registration date when the item has no service history. Only items without
// a frequency fall back to the manually maintained date on the record.
func NextDue(rec Record, createdAt time.Time, latest *MaintenanceEvent) *time.Time {
	if strings.TrimSpace(rec.Frequency) != "" {
		base := createdAt
		if latest != nil && latest.ServiceDate != nil {
			base = *latest.ServiceDate
		}
		due := Advance(base, rec.Frequency)
		return &due
	}
	return rec.NextServiceDue
}

// Availability derives the display status from the latest allocation event.
// An explicit non-empty label wins; an open allocation (no actual return
// date) renders as "Allocated"; everything else, including no history at
// all, is "Available".
func Availability(latest *AllocationEvent) string {
	if latest == nil {
		return "Available"
	}
	if latest.Status != nil && strings.TrimSpace(*latest.Status) != "" {
		return *latest.Status
	}
	if latest.ActualReturnDate == nil {
		return "Allocated"
	}
	return "Available"
}
