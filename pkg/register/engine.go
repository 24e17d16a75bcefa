package register

import (
	"context"

	"go.uber.org/zap"
)

// Outcome labels how an aggregation pass ended. The list endpoints always
// answer with a well-formed (possibly empty) result; Outcome is what the
// caller feeds into logging and metrics instead of an error.
type Outcome string

const (
	// OutcomeFull means both ledgers were consulted.
	OutcomeFull Outcome = "full"
	// OutcomeDegraded means at least one ledger could not be read; due
	// dates were derived from frequency and registration date only and
	// availability defaulted to "Available".
	OutcomeDegraded Outcome = "degraded"
	// OutcomeEmpty means the registry itself could not be read.
	OutcomeEmpty Outcome = "empty"
)

// Engine aggregates the master register into computed list rows. It is
// stateless and safe for concurrent use; every call re-reads the source.
type Engine struct {
	src Source
	log *zap.Logger
}

// New builds an engine over a source. A nil logger is replaced with a no-op.
func New(src Source, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{src: src, log: log}
}

// Rows computes the full unpaginated row set, ordered by the registry
// sequence number descending (newest registrations first).
//
// Failures degrade rather than propagate: a ledger read error drops that
// ledger's contribution, a registry read error yields an empty set. Orphaned
// index entries (no matching active type record) are excluded outright.
func (e *Engine) Rows(ctx context.Context) ([]Row, Outcome) {
	entries, err := e.src.ActiveEntries(ctx)
	if err != nil {
		e.log.Error("master register read failed", zap.Error(err))
		return []Row{}, OutcomeEmpty
	}
	records, err := e.src.Records(ctx)
	if err != nil {
		e.log.Error("item record read failed", zap.Error(err))
		return []Row{}, OutcomeEmpty
	}

	outcome := OutcomeFull

	var latestMaint map[Key]MaintenanceEvent
	if events, err := e.src.MaintenanceHistory(ctx); err != nil {
		e.log.Warn("maintenance ledger unavailable, computing due dates from registration dates", zap.Error(err))
		outcome = OutcomeDegraded
	} else {
		latestMaint = LatestMaintenance(events)
	}

	var latestAlloc map[Key]AllocationEvent
	if events, err := e.src.AllocationHistory(ctx); err != nil {
		e.log.Warn("allocation ledger unavailable, defaulting availability", zap.Error(err))
		outcome = OutcomeDegraded
	} else {
		latestAlloc = LatestAllocation(events)
	}

	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		key := Key{Type: entry.Type, ID: entry.RefID}
		rec, ok := records[key]
		if !ok {
			// Orphaned index entry; skip rather than surface a partial row.
			e.log.Debug("index entry without item record",
				zap.String("itemType", string(entry.Type)),
				zap.String("refId", entry.RefID))
			continue
		}

		var maint *MaintenanceEvent
		if ev, ok := latestMaint[key]; ok {
			maint = &ev
		}
		var alloc *AllocationEvent
		if ev, ok := latestAlloc[key]; ok {
			alloc = &ev
		}

		rows = append(rows, Row{
			ItemID:             entry.RefID,
			ItemType:           string(entry.Type),
			ItemName:           rec.Name,
			Vendor:             rec.Vendor,
			CreatedAt:          entry.CreatedAt,
			ResponsibleTeam:    rec.Team,
			StorageLocation:    rec.Location,
			NextServiceDue:     NextDue(rec, entry.CreatedAt, maint),
			AvailabilityStatus: Availability(alloc),
		})
	}
	return rows, outcome
}

// List computes, filters, sorts and paginates in one pass.
func (e *Engine) List(ctx context.Context, q Query) (Page, Outcome) {
	rows, outcome := e.Rows(ctx)
	return q.Apply(rows), outcome
}
