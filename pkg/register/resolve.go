package register

// Latest-record resolution. Ledgers are append-only and business dates can
// collide, so created-at recency is the authoritative tie-break: it reflects
// true insertion order.

// moreRecentMaintenance reports whether a should be preferred over b as the
// current maintenance event. Ordering: created-at desc, then service-date
// desc (nil last), then an event carrying a next-service-due over one
// without.
func moreRecentMaintenance(a, b MaintenanceEvent) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	switch {
	case a.ServiceDate != nil && b.ServiceDate == nil:
		return true
	case a.ServiceDate == nil && b.ServiceDate != nil:
		return false
	case a.ServiceDate != nil && !a.ServiceDate.Equal(*b.ServiceDate):
		return a.ServiceDate.After(*b.ServiceDate)
	}
	return a.NextServiceDue != nil && b.NextServiceDue == nil
}

// moreRecentAllocation reports whether a should be preferred over b as the
// current allocation event. Ordering: created-at desc, then issued-date desc
// (nil last).
func moreRecentAllocation(a, b AllocationEvent) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	switch {
	case a.IssuedDate != nil && b.IssuedDate == nil:
		return true
	case a.IssuedDate == nil && b.IssuedDate != nil:
		return false
	case a.IssuedDate != nil:
		return a.IssuedDate.After(*b.IssuedDate)
	}
	return false
}

// LatestMaintenance selects the top-1 maintenance event per item.
func LatestMaintenance(events []MaintenanceEvent) map[Key]MaintenanceEvent {
	latest := make(map[Key]MaintenanceEvent, len(events))
	for _, ev := range events {
		cur, ok := latest[ev.Key]
		if !ok || moreRecentMaintenance(ev, cur) {
			latest[ev.Key] = ev
		}
	}
	return latest
}

// LatestAllocation selects the top-1 allocation event per item.
func LatestAllocation(events []AllocationEvent) map[Key]AllocationEvent {
	latest := make(map[Key]AllocationEvent, len(events))
	for _, ev := range events {
		cur, ok := latest[ev.Key]
		if !ok || moreRecentAllocation(ev, cur) {
			latest[ev.Key] = ev
		}
	}
	return latest
}
