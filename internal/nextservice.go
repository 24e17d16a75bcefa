package internal

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"kern-inventory-api/pkg/register"

	"github.com/go-chi/chi/v5"
)

// lastServiceDate answers with the most recent recorded service date for an
// item, or null when the item has never been serviced.
func (s *Server) lastServiceDate(w http.ResponseWriter, r *http.Request) {
	typ, ok := register.ParseItemType(chi.URLParam(r, "itemType"))
	if !ok {
		http.Error(w, "unknown itemType", 400)
		return
	}
	itemID := chi.URLParam(r, "itemId")

	var last *time.Time
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT service_date
		FROM maintenance_events
		WHERE item_type = $1 AND item_id = $2 AND service_date IS NOT NULL
		ORDER BY service_date DESC
		LIMIT 1`, string(typ), itemID).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*time.Time{"lastServiceDate": last})
}

// maintenanceFrequency reads the service cadence off the type record. MMDs
// keep theirs in the calibration frequency column.
func (s *Server) maintenanceFrequency(w http.ResponseWriter, r *http.Request) {
	typ, ok := register.ParseItemType(chi.URLParam(r, "itemType"))
	if !ok {
		http.Error(w, "unknown itemType", 400)
		return
	}
	itemID := chi.URLParam(r, "itemId")

	var query string
	args := []interface{}{itemID}
	switch typ {
	case register.ItemTypeTool:
		query = `SELECT maintenance_frequency FROM tools_master WHERE tool_id = $1 AND is_active`
	case register.ItemTypeMMD:
		query = `SELECT calibration_frequency FROM mmds_master WHERE mmd_id = $1 AND is_active`
	default:
		query = `SELECT maintenance_frequency FROM assets_consumables WHERE asset_id = $1 AND item_type_key = $2 AND is_active`
		key := 1
		if typ == register.ItemTypeConsumable {
			key = 2
		}
		args = append(args, key)
	}

	var freq *string
	err := s.DB.QueryRowContext(r.Context(), query, args...).Scan(&freq)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*string{"maintenanceFrequency": freq})
}

type calculateNextServiceRequest struct {
	CreatedDate          time.Time  `json:"createdDate"`
	LastServiceDate      *time.Time `json:"lastServiceDate"`
	MaintenanceFrequency string     `json:"maintenanceFrequency"`
}

// calculateNextService advances the base date by the frequency without
// touching the store. The base is the last service date when known,
// otherwise the registration date.
func (s *Server) calculateNextService(w http.ResponseWriter, r *http.Request) {
	var in calculateNextServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	base := in.CreatedDate
	if in.LastServiceDate != nil {
		base = *in.LastServiceDate
	}
	next := register.Advance(base, in.MaintenanceFrequency)
	writeJSON(w, http.StatusOK, map[string]time.Time{"nextServiceDate": next})
}

type updateNextServiceRequest struct {
	ItemID          string    `json:"itemId"`
	ItemType        string    `json:"itemType"`
	NextServiceDate time.Time `json:"nextServiceDate"`
}

// updateNextService stores a due date directly on the type record.
func (s *Server) updateNextService(w http.ResponseWriter, r *http.Request) {
	var in updateNextServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	typ, ok := register.ParseItemType(in.ItemType)
	if !ok {
		http.Error(w, "unknown itemType", 400)
		return
	}
	if in.ItemID == "" {
		http.Error(w, "itemId is required", 400)
		return
	}

	var res sql.Result
	var err error
	switch typ {
	case register.ItemTypeTool:
		res, err = s.DB.ExecContext(r.Context(), `
			UPDATE tools_master SET next_service_due = $2, updated_at = now()
			WHERE tool_id = $1 AND is_active`, in.ItemID, in.NextServiceDate)
	case register.ItemTypeMMD:
		res, err = s.DB.ExecContext(r.Context(), `
			UPDATE mmds_master SET next_calibration = $2, updated_at = now()
			WHERE mmd_id = $1 AND is_active`, in.ItemID, in.NextServiceDate)
	case register.ItemTypeAsset:
		res, err = s.DB.ExecContext(r.Context(), `
			UPDATE assets_consumables SET next_service_due = $2, updated_at = now()
			WHERE asset_id = $1 AND item_type_key = 1 AND is_active`, in.ItemID, in.NextServiceDate)
	default:
		res, err = s.DB.ExecContext(r.Context(), `
			UPDATE assets_consumables SET next_service_due = $2, updated_at = now()
			WHERE asset_id = $1 AND item_type_key = 2 AND is_active`, in.ItemID, in.NextServiceDate)
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "next service date updated"})
}
