package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"kern-inventory-api/internal/models"
	"kern-inventory-api/pkg/register"

	"github.com/go-chi/chi/v5"
)

const allocationColumns = `id, item_type, item_id, item_name, employee_id, employee_name,
	team_name, purpose, issued_date, expected_return_date, actual_return_date,
	availability_status, created_at`

func scanAllocation(row interface{ Scan(...interface{}) error }, ev *models.AllocationEvent) error {
	return row.Scan(
		&ev.ID, &ev.ItemType, &ev.ItemID, &ev.ItemName, &ev.EmployeeID, &ev.EmployeeName,
		&ev.TeamName, &ev.Purpose, &ev.IssuedDate, &ev.ExpectedReturnDate, &ev.ActualReturnDate,
		&ev.AvailabilityStatus, &ev.CreatedAt,
	)
}

func (s *Server) allocationHistoryFor(ctx context.Context, itemType, itemID string) ([]models.AllocationEvent, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+allocationColumns+`
		FROM allocation_events
		WHERE item_type = $1 AND item_id = $2
		ORDER BY created_at DESC, id DESC`, itemType, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AllocationEvent{}
	for rows.Next() {
		var ev models.AllocationEvent
		if err := scanAllocation(rows, &ev); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Server) listAllocations(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT `+allocationColumns+`
		FROM allocation_events
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	out := []models.AllocationEvent{}
	for rows.Next() {
		var ev models.AllocationEvent
		if err := scanAllocation(rows, &ev); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) allocationsByItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")

	rows, err := s.DB.QueryContext(r.Context(), `
		SELECT `+allocationColumns+`
		FROM allocation_events
		WHERE item_id = $1
		ORDER BY created_at DESC, id DESC`, itemID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	out := []models.AllocationEvent{}
	for rows.Next() {
		var ev models.AllocationEvent
		if err := scanAllocation(rows, &ev); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createAllocation(w http.ResponseWriter, r *http.Request) {
	var in models.AllocationEvent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	typ, ok := register.ParseItemType(in.ItemType)
	if !ok {
		http.Error(w, "unknown itemType", 400)
		return
	}
	in.ItemType = string(typ)
	if in.ItemID == "" {
		http.Error(w, "itemId is required", 400)
		return
	}

	err := s.DB.QueryRowContext(r.Context(), `
		INSERT INTO allocation_events (item_type, item_id, item_name, employee_id,
			employee_name, team_name, purpose, issued_date, expected_return_date,
			actual_return_date, availability_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at`,
		in.ItemType, in.ItemID, in.ItemName, in.EmployeeID,
		in.EmployeeName, in.TeamName, in.Purpose, in.IssuedDate, in.ExpectedReturnDate,
		in.ActualReturnDate, in.AvailabilityStatus,
	).Scan(&in.ID, &in.CreatedAt)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) updateAllocation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", 400)
		return
	}

	var in models.AllocationEvent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	var out models.AllocationEvent
	err = scanAllocation(s.DB.QueryRowContext(r.Context(), `
		UPDATE allocation_events SET
			item_name = $2, employee_id = $3, employee_name = $4, team_name = $5,
			purpose = $6, issued_date = $7, expected_return_date = $8,
			actual_return_date = $9, availability_status = $10
		WHERE id = $1
		RETURNING `+allocationColumns,
		id, in.ItemName, in.EmployeeID, in.EmployeeName, in.TeamName,
		in.Purpose, in.IssuedDate, in.ExpectedReturnDate,
		in.ActualReturnDate, in.AvailabilityStatus,
	), &out)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteAllocation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", 400)
		return
	}

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM allocation_events WHERE id = $1`, id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
