package internal

import (
	"context"
	"database/sql"
	"time"

	"kern-inventory-api/internal/models"
	"kern-inventory-api/pkg/register"
)

// pgSource feeds the register engine from Postgres. Every call reads a
// fresh snapshot; nothing is cached between requests.
type pgSource struct {
	db *sql.DB
}

func newPgSource(db *sql.DB) *pgSource {
	return &pgSource{db: db}
}

func (s *pgSource) ActiveEntries(ctx context.Context) ([]register.IndexEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s_no, item_type, ref_id, created_at
		FROM master_register
		WHERE is_active
		ORDER BY created_at DESC, s_no DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []register.IndexEntry
	for rows.Next() {
		var e register.IndexEntry
		var typ string
		if err := rows.Scan(&e.SeqNo, &typ, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		t, ok := register.ParseItemType(typ)
		if !ok {
			continue
		}
		e.Type = t
		e.Active = true
		out = append(out, e)
	}
	return out, rows.Err()
}

// Records projects all three type tables into the uniform record shape.
// Inactive rows are skipped here as well so a stale registry entry can
// never resurrect a deactivated item.
func (s *pgSource) Records(ctx context.Context) (map[register.Key]register.Record, error) {
	recs := make(map[register.Key]register.Record)

	if err := s.toolRecords(ctx, recs); err != nil {
		return nil, err
	}
	if err := s.mmdRecords(ctx, recs); err != nil {
		return nil, err
	}
	if err := s.assetRecords(ctx, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *pgSource) toolRecords(ctx context.Context, recs map[register.Key]register.Record) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tool_id,
		       COALESCE(tool_name, ''),
		       COALESCE(vendor, ''),
		       COALESCE(storage_location, ''),
		       COALESCE(responsible_team, ''),
		       COALESCE(maintenance_frequency, ''),
		       next_service_due
		FROM tools_master
		WHERE is_active`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rec register.Record
		var due sql.NullTime
		if err := rows.Scan(&rec.ItemID, &rec.Name, &rec.Vendor, &rec.Location,
			&rec.Team, &rec.Frequency, &due); err != nil {
			return err
		}
		rec.NextServiceDue = timePtr(due)
		recs[register.Key{Type: register.ItemTypeTool, ID: rec.ItemID}] = rec
	}
	return rows.Err()
}

func (s *pgSource) mmdRecords(ctx context.Context, recs map[register.Key]register.Record) error {
	// Measurement devices fall back to the model number when unnamed.
	rows, err := s.db.QueryContext(ctx, `
		SELECT mmd_id,
		       COALESCE(NULLIF(mmd_name, ''), model_number, ''),
		       COALESCE(vendor, ''),
		       COALESCE(storage_location, ''),
		       COALESCE(responsible_team, ''),
		       COALESCE(calibration_frequency, ''),
		       next_calibration
		FROM mmds_master
		WHERE is_active`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rec register.Record
		var due sql.NullTime
		if err := rows.Scan(&rec.ItemID, &rec.Name, &rec.Vendor, &rec.Location,
			&rec.Team, &rec.Frequency, &due); err != nil {
			return err
		}
		rec.NextServiceDue = timePtr(due)
		recs[register.Key{Type: register.ItemTypeMMD, ID: rec.ItemID}] = rec
	}
	return rows.Err()
}

func (s *pgSource) assetRecords(ctx context.Context, recs map[register.Key]register.Record) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT asset_id,
		       item_type_key,
		       COALESCE(asset_name, ''),
		       COALESCE(vendor, ''),
		       COALESCE(storage_location, ''),
		       COALESCE(responsible_team, ''),
		       COALESCE(maintenance_frequency, ''),
		       next_service_due
		FROM assets_consumables
		WHERE is_active`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rec register.Record
		var typeKey int
		var due sql.NullTime
		if err := rows.Scan(&rec.ItemID, &typeKey, &rec.Name, &rec.Vendor,
			&rec.Location, &rec.Team, &rec.Frequency, &due); err != nil {
			return err
		}
		rec.NextServiceDue = timePtr(due)
		typ := register.ItemTypeAsset
		if typeKey == models.ItemTypeKeyConsumable {
			typ = register.ItemTypeConsumable
		}
		recs[register.Key{Type: typ, ID: rec.ItemID}] = rec
	}
	return rows.Err()
}

func (s *pgSource) MaintenanceHistory(ctx context.Context) ([]register.MaintenanceEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_type, item_id, service_date, next_service_due, created_at
		FROM maintenance_events`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []register.MaintenanceEvent
	for rows.Next() {
		var ev register.MaintenanceEvent
		var typ string
		var serviceDate, nextDue sql.NullTime
		if err := rows.Scan(&ev.ID, &typ, &ev.Key.ID, &serviceDate, &nextDue, &ev.CreatedAt); err != nil {
			return nil, err
		}
		t, ok := register.ParseItemType(typ)
		if !ok {
			continue
		}
		ev.Key.Type = t
		ev.ServiceDate = timePtr(serviceDate)
		ev.NextServiceDue = timePtr(nextDue)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *pgSource) AllocationHistory(ctx context.Context) ([]register.AllocationEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_type, item_id, issued_date, actual_return_date, availability_status, created_at
		FROM allocation_events`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []register.AllocationEvent
	for rows.Next() {
		var ev register.AllocationEvent
		var typ string
		var issued, returned sql.NullTime
		var status sql.NullString
		if err := rows.Scan(&ev.ID, &typ, &ev.Key.ID, &issued, &returned, &status, &ev.CreatedAt); err != nil {
			return nil, err
		}
		t, ok := register.ParseItemType(typ)
		if !ok {
			continue
		}
		ev.Key.Type = t
		ev.IssuedDate = timePtr(issued)
		ev.ActualReturnDate = timePtr(returned)
		if status.Valid {
			ev.Status = &status.String
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
