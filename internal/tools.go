package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"kern-inventory-api/internal/models"
	"kern-inventory-api/pkg/register"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const toolColumns = `tool_id, tool_name, tool_type, associated_product, article_code, vendor,
	specifications, storage_location, po_number, po_date, invoice_number, invoice_date,
	tool_cost, extra_charges, total_cost, lifespan, maintenance_frequency,
	handling_certificate, audit_interval, max_output, last_audit_date, last_audit_notes,
	responsible_team, notes, msi_asset, kern_asset, created_by, updated_by,
	created_at, updated_at, next_service_due, is_active`

func scanTool(row interface{ Scan(...interface{}) error }, t *models.Tool) error {
	return row.Scan(
		&t.ToolID, &t.ToolName, &t.ToolType, &t.AssociatedProduct, &t.ArticleCode, &t.Vendor,
		&t.Specifications, &t.StorageLocation, &t.PoNumber, &t.PoDate, &t.InvoiceNumber, &t.InvoiceDate,
		&t.ToolCost, &t.ExtraCharges, &t.TotalCost, &t.Lifespan, &t.MaintenanceFrequency,
		&t.HandlingCertificate, &t.AuditInterval, &t.MaxOutput, &t.LastAuditDate, &t.LastAuditNotes,
		&t.ResponsibleTeam, &t.Notes, &t.MsiAsset, &t.KernAsset, &t.CreatedBy, &t.UpdatedBy,
		&t.CreatedAt, &t.UpdatedAt, &t.NextServiceDue, &t.IsActive,
	)
}

// LIST with basic filters & pagination
func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{"is_active"}
	args := []interface{}{}
	arg := 1

	if params.q != "" {
		clauses = append(clauses, fmt.Sprintf("(tool_id ILIKE $%d OR tool_name ILIKE $%d OR vendor ILIKE $%d)", arg, arg, arg))
		args = append(args, "%"+params.q+"%")
		arg++
	}

	sqlStr := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() as total_count
		FROM tools_master WHERE %s`, toolColumns, strings.Join(clauses, " AND "))

	allowedSort := map[string]string{
		"tool_id":          "tool_id",
		"tool_name":        "tool_name",
		"vendor":           "vendor",
		"next_service_due": "next_service_due",
		"created_at":       "created_at",
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	tools := []interface{}{}
	var totalCount int
	for rows.Next() {
		var t models.Tool
		if err := rows.Scan(
			&t.ToolID, &t.ToolName, &t.ToolType, &t.AssociatedProduct, &t.ArticleCode, &t.Vendor,
			&t.Specifications, &t.StorageLocation, &t.PoNumber, &t.PoDate, &t.InvoiceNumber, &t.InvoiceDate,
			&t.ToolCost, &t.ExtraCharges, &t.TotalCost, &t.Lifespan, &t.MaintenanceFrequency,
			&t.HandlingCertificate, &t.AuditInterval, &t.MaxOutput, &t.LastAuditDate, &t.LastAuditNotes,
			&t.ResponsibleTeam, &t.Notes, &t.MsiAsset, &t.KernAsset, &t.CreatedBy, &t.UpdatedBy,
			&t.CreatedAt, &t.UpdatedAt, &t.NextServiceDue, &t.IsActive,
			&totalCount,
		); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		tools = append(tools, t)
	}

	sendListResponse(w, tools, totalCount, params)
}

func (s *Server) getTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var t models.Tool
	err := scanTool(s.DB.QueryRowContext(r.Context(), fmt.Sprintf(`
		SELECT %s FROM tools_master WHERE tool_id = $1 AND is_active`, toolColumns), id), &t)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// createTool inserts the tool record and its master-register entry in one
// transaction. A duplicate active tool id is rejected before insert.
func (s *Server) createTool(w http.ResponseWriter, r *http.Request) {
	var in models.Tool
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.ToolID == "" || in.ToolName == "" {
		http.Error(w, "toolId and toolName are required", 400)
		return
	}
	in.TotalCost = in.ToolCost.Add(in.ExtraCharges)

	tx, err := s.DB.BeginTx(r.Context(), nil)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer tx.Rollback()

	if err := registerItem(r.Context(), tx, string(register.ItemTypeTool), in.ToolID); err != nil {
		if errors.Is(err, errDuplicateRef) {
			http.Error(w, "toolId already registered", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	err = tx.QueryRowContext(r.Context(), `
		INSERT INTO tools_master (tool_id, tool_name, tool_type, associated_product, article_code,
			vendor, specifications, storage_location, po_number, po_date, invoice_number,
			invoice_date, tool_cost, extra_charges, total_cost, lifespan, maintenance_frequency,
			handling_certificate, audit_interval, max_output, last_audit_date, last_audit_notes,
			responsible_team, notes, msi_asset, kern_asset, created_by, next_service_due, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,TRUE)
		RETURNING created_at`,
		in.ToolID, in.ToolName, in.ToolType, in.AssociatedProduct, in.ArticleCode,
		in.Vendor, in.Specifications, in.StorageLocation, in.PoNumber, in.PoDate, in.InvoiceNumber,
		in.InvoiceDate, in.ToolCost, in.ExtraCharges, in.TotalCost, in.Lifespan, in.MaintenanceFrequency,
		in.HandlingCertificate, in.AuditInterval, in.MaxOutput, in.LastAuditDate, in.LastAuditNotes,
		in.ResponsibleTeam, in.Notes, in.MsiAsset, in.KernAsset, in.CreatedBy, in.NextServiceDue,
	).Scan(&in.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "toolId already exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	if err := tx.Commit(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	in.IsActive = true
	s.Log.Info("tool registered", zap.String("toolId", in.ToolID))
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) updateTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.Tool
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	out, err := s.updateToolRecord(r.Context(), id, in)
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

// updateToolRecord overwrites the mutable columns of an active tool.
// Returns sql.ErrNoRows when the id is unknown or inactive.
func (s *Server) updateToolRecord(ctx context.Context, id string, in models.Tool) (models.Tool, error) {
	in.ToolID = id
	in.TotalCost = in.ToolCost.Add(in.ExtraCharges)

	var out models.Tool
	err := scanTool(s.DB.QueryRowContext(ctx, fmt.Sprintf(`
		UPDATE tools_master SET
			tool_name = $2, tool_type = $3, associated_product = $4, article_code = $5,
			vendor = $6, specifications = $7, storage_location = $8, po_number = $9,
			po_date = $10, invoice_number = $11, invoice_date = $12, tool_cost = $13,
			extra_charges = $14, total_cost = $15, lifespan = $16, maintenance_frequency = $17,
			handling_certificate = $18, audit_interval = $19, max_output = $20,
			last_audit_date = $21, last_audit_notes = $22, responsible_team = $23,
			notes = $24, msi_asset = $25, kern_asset = $26, updated_by = $27,
			next_service_due = $28, updated_at = now()
		WHERE tool_id = $1 AND is_active
		RETURNING %s`, toolColumns),
		id, in.ToolName, in.ToolType, in.AssociatedProduct, in.ArticleCode,
		in.Vendor, in.Specifications, in.StorageLocation, in.PoNumber,
		in.PoDate, in.InvoiceNumber, in.InvoiceDate, in.ToolCost,
		in.ExtraCharges, in.TotalCost, in.Lifespan, in.MaintenanceFrequency,
		in.HandlingCertificate, in.AuditInterval, in.MaxOutput,
		in.LastAuditDate, in.LastAuditNotes, in.ResponsibleTeam,
		in.Notes, in.MsiAsset, in.KernAsset, in.UpdatedBy, in.NextServiceDue,
	), &out)
	return out, err
}

// deleteTool deactivates the tool and its register entry. Maintenance and
// allocation history stays untouched.
func (s *Server) deleteTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tx, err := s.DB.BeginTx(r.Context(), nil)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(r.Context(), `
		UPDATE tools_master SET is_active = FALSE, updated_at = now()
		WHERE tool_id = $1 AND is_active`, id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err := deregisterItem(r.Context(), tx, string(register.ItemTypeTool), id); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if err := tx.Commit(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	s.Log.Info("tool deactivated", zap.String("toolId", id))
	w.WriteHeader(http.StatusNoContent)
}
