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

const mmdColumns = `mmd_id, mmd_name, brand_name, model_number, serial_number, accuracy_class,
	vendor, calibrated_by, specifications, quantity, calibration_cert_no, storage_location,
	po_number, po_date, invoice_number, invoice_date, total_cost, calibration_frequency,
	last_calibration, next_calibration, warranty_years, calibration_status, responsible_team,
	manual_link, stock_msi, remarks, created_by, updated_by, created_at, updated_at, is_active`

func scanMMD(row interface{ Scan(...interface{}) error }, m *models.MMD) error {
	return row.Scan(
		&m.MmdID, &m.MmdName, &m.BrandName, &m.ModelNumber, &m.SerialNumber, &m.AccuracyClass,
		&m.Vendor, &m.CalibratedBy, &m.Specifications, &m.Quantity, &m.CalibrationCertNo, &m.StorageLocation,
		&m.PoNumber, &m.PoDate, &m.InvoiceNumber, &m.InvoiceDate, &m.TotalCost, &m.CalibrationFrequency,
		&m.LastCalibration, &m.NextCalibration, &m.WarrantyYears, &m.CalibrationStatus, &m.ResponsibleTeam,
		&m.ManualLink, &m.StockMsi, &m.Remarks, &m.CreatedBy, &m.UpdatedBy, &m.CreatedAt, &m.UpdatedAt, &m.IsActive,
	)
}

func (s *Server) listMMDs(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{"is_active"}
	args := []interface{}{}
	arg := 1

	if params.q != "" {
		clauses = append(clauses, fmt.Sprintf("(mmd_id ILIKE $%d OR mmd_name ILIKE $%d OR serial_number ILIKE $%d)", arg, arg, arg))
		args = append(args, "%"+params.q+"%")
		arg++
	}

	sqlStr := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() as total_count
		FROM mmds_master WHERE %s`, mmdColumns, strings.Join(clauses, " AND "))

	allowedSort := map[string]string{
		"mmd_id":           "mmd_id",
		"mmd_name":         "mmd_name",
		"next_calibration": "next_calibration",
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

	mmds := []interface{}{}
	var totalCount int
	for rows.Next() {
		var m models.MMD
		if err := rows.Scan(
			&m.MmdID, &m.MmdName, &m.BrandName, &m.ModelNumber, &m.SerialNumber, &m.AccuracyClass,
			&m.Vendor, &m.CalibratedBy, &m.Specifications, &m.Quantity, &m.CalibrationCertNo, &m.StorageLocation,
			&m.PoNumber, &m.PoDate, &m.InvoiceNumber, &m.InvoiceDate, &m.TotalCost, &m.CalibrationFrequency,
			&m.LastCalibration, &m.NextCalibration, &m.WarrantyYears, &m.CalibrationStatus, &m.ResponsibleTeam,
			&m.ManualLink, &m.StockMsi, &m.Remarks, &m.CreatedBy, &m.UpdatedBy, &m.CreatedAt, &m.UpdatedAt, &m.IsActive,
			&totalCount,
		); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		mmds = append(mmds, m)
	}

	sendListResponse(w, mmds, totalCount, params)
}

func (s *Server) getMMD(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var m models.MMD
	err := scanMMD(s.DB.QueryRowContext(r.Context(), fmt.Sprintf(`
		SELECT %s FROM mmds_master WHERE mmd_id = $1 AND is_active`, mmdColumns), id), &m)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) createMMD(w http.ResponseWriter, r *http.Request) {
	var in models.MMD
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.MmdID == "" || in.MmdName == "" {
		http.Error(w, "mmdId and mmdName are required", 400)
		return
	}

	tx, err := s.DB.BeginTx(r.Context(), nil)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer tx.Rollback()

	if err := registerItem(r.Context(), tx, string(register.ItemTypeMMD), in.MmdID); err != nil {
		if errors.Is(err, errDuplicateRef) {
			http.Error(w, "mmdId already registered", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	err = tx.QueryRowContext(r.Context(), `
		INSERT INTO mmds_master (mmd_id, mmd_name, brand_name, model_number, serial_number,
			accuracy_class, vendor, calibrated_by, specifications, quantity, calibration_cert_no,
			storage_location, po_number, po_date, invoice_number, invoice_date, total_cost,
			calibration_frequency, last_calibration, next_calibration, warranty_years,
			calibration_status, responsible_team, manual_link, stock_msi, remarks, created_by, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,TRUE)
		RETURNING created_at`,
		in.MmdID, in.MmdName, in.BrandName, in.ModelNumber, in.SerialNumber,
		in.AccuracyClass, in.Vendor, in.CalibratedBy, in.Specifications, in.Quantity, in.CalibrationCertNo,
		in.StorageLocation, in.PoNumber, in.PoDate, in.InvoiceNumber, in.InvoiceDate, in.TotalCost,
		in.CalibrationFrequency, in.LastCalibration, in.NextCalibration, in.WarrantyYears,
		in.CalibrationStatus, in.ResponsibleTeam, in.ManualLink, in.StockMsi, in.Remarks, in.CreatedBy,
	).Scan(&in.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "mmdId already exists", http.StatusConflict)
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
	s.Log.Info("mmd registered", zap.String("mmdId", in.MmdID))
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) updateMMD(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.MMD
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	out, err := s.updateMMDRecord(r.Context(), id, in)
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

func (s *Server) updateMMDRecord(ctx context.Context, id string, in models.MMD) (models.MMD, error) {
	in.MmdID = id

	var out models.MMD
	err := scanMMD(s.DB.QueryRowContext(ctx, fmt.Sprintf(`
		UPDATE mmds_master SET
			mmd_name = $2, brand_name = $3, model_number = $4, serial_number = $5,
			accuracy_class = $6, vendor = $7, calibrated_by = $8, specifications = $9,
			quantity = $10, calibration_cert_no = $11, storage_location = $12,
			po_number = $13, po_date = $14, invoice_number = $15, invoice_date = $16,
			total_cost = $17, calibration_frequency = $18, last_calibration = $19,
			next_calibration = $20, warranty_years = $21, calibration_status = $22,
			responsible_team = $23, manual_link = $24, stock_msi = $25, remarks = $26,
			updated_by = $27, updated_at = now()
		WHERE mmd_id = $1 AND is_active
		RETURNING %s`, mmdColumns),
		id, in.MmdName, in.BrandName, in.ModelNumber, in.SerialNumber,
		in.AccuracyClass, in.Vendor, in.CalibratedBy, in.Specifications,
		in.Quantity, in.CalibrationCertNo, in.StorageLocation,
		in.PoNumber, in.PoDate, in.InvoiceNumber, in.InvoiceDate,
		in.TotalCost, in.CalibrationFrequency, in.LastCalibration,
		in.NextCalibration, in.WarrantyYears, in.CalibrationStatus,
		in.ResponsibleTeam, in.ManualLink, in.StockMsi, in.Remarks,
		in.UpdatedBy,
	), &out)
	return out, err
}

func (s *Server) deleteMMD(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tx, err := s.DB.BeginTx(r.Context(), nil)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(r.Context(), `
		UPDATE mmds_master SET is_active = FALSE, updated_at = now()
		WHERE mmd_id = $1 AND is_active`, id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err := deregisterItem(r.Context(), tx, string(register.ItemTypeMMD), id); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if err := tx.Commit(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	s.Log.Info("mmd deactivated", zap.String("mmdId", id))
	w.WriteHeader(http.StatusNoContent)
}
