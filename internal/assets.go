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

const assetColumns = `asset_id, item_type_key, category, asset_name, product, vendor,
	specifications, quantity, storage_location, po_number, po_date, invoice_number,
	invoice_date, asset_cost, extra_charges, total_cost, depreciation_period,
	maintenance_frequency, responsible_team, msi_team, remarks, created_by, updated_by,
	created_at, updated_at, next_service_due, is_active`

func scanAsset(row interface{ Scan(...interface{}) error }, a *models.AssetConsumable) error {
	return row.Scan(
		&a.AssetID, &a.ItemTypeKey, &a.Category, &a.AssetName, &a.Product, &a.Vendor,
		&a.Specifications, &a.Quantity, &a.StorageLocation, &a.PoNumber, &a.PoDate, &a.InvoiceNumber,
		&a.InvoiceDate, &a.AssetCost, &a.ExtraCharges, &a.TotalCost, &a.DepreciationPeriod,
		&a.MaintenanceFrequency, &a.ResponsibleTeam, &a.MsiTeam, &a.Remarks, &a.CreatedBy, &a.UpdatedBy,
		&a.CreatedAt, &a.UpdatedAt, &a.NextServiceDue, &a.IsActive,
	)
}

func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{"is_active"}
	args := []interface{}{}
	arg := 1

	if params.q != "" {
		clauses = append(clauses, fmt.Sprintf("(asset_id ILIKE $%d OR asset_name ILIKE $%d OR category ILIKE $%d)", arg, arg, arg))
		args = append(args, "%"+params.q+"%")
		arg++
	}

	sqlStr := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() as total_count
		FROM assets_consumables WHERE %s`, assetColumns, strings.Join(clauses, " AND "))

	allowedSort := map[string]string{
		"asset_id":   "asset_id",
		"asset_name": "asset_name",
		"category":   "category",
		"created_at": "created_at",
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	assets := []interface{}{}
	var totalCount int
	for rows.Next() {
		var a models.AssetConsumable
		if err := rows.Scan(
			&a.AssetID, &a.ItemTypeKey, &a.Category, &a.AssetName, &a.Product, &a.Vendor,
			&a.Specifications, &a.Quantity, &a.StorageLocation, &a.PoNumber, &a.PoDate, &a.InvoiceNumber,
			&a.InvoiceDate, &a.AssetCost, &a.ExtraCharges, &a.TotalCost, &a.DepreciationPeriod,
			&a.MaintenanceFrequency, &a.ResponsibleTeam, &a.MsiTeam, &a.Remarks, &a.CreatedBy, &a.UpdatedBy,
			&a.CreatedAt, &a.UpdatedAt, &a.NextServiceDue, &a.IsActive,
			&totalCount,
		); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		assets = append(assets, a)
	}

	sendListResponse(w, assets, totalCount, params)
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var a models.AssetConsumable
	err := scanAsset(s.DB.QueryRowContext(r.Context(), fmt.Sprintf(`
		SELECT %s FROM assets_consumables WHERE asset_id = $1 AND is_active`, assetColumns), id), &a)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// createAsset registers either an asset or a consumable; the item type key
// decides which label the register entry carries.
func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	var in models.AssetConsumable
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if in.AssetID == "" || in.AssetName == "" {
		http.Error(w, "assetId and assetName are required", 400)
		return
	}
	if in.ItemTypeKey != models.ItemTypeKeyAsset && in.ItemTypeKey != models.ItemTypeKeyConsumable {
		http.Error(w, "itemTypeKey must be 1 (asset) or 2 (consumable)", 400)
		return
	}
	in.TotalCost = in.AssetCost.Add(in.ExtraCharges)

	tx, err := s.DB.BeginTx(r.Context(), nil)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer tx.Rollback()

	if err := registerItem(r.Context(), tx, in.ItemType(), in.AssetID); err != nil {
		if errors.Is(err, errDuplicateRef) {
			http.Error(w, "assetId already registered", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}

	err = tx.QueryRowContext(r.Context(), `
		INSERT INTO assets_consumables (asset_id, item_type_key, category, asset_name, product,
			vendor, specifications, quantity, storage_location, po_number, po_date,
			invoice_number, invoice_date, asset_cost, extra_charges, total_cost,
			depreciation_period, maintenance_frequency, responsible_team, msi_team, remarks,
			created_by, next_service_due, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,TRUE)
		RETURNING created_at`,
		in.AssetID, in.ItemTypeKey, in.Category, in.AssetName, in.Product,
		in.Vendor, in.Specifications, in.Quantity, in.StorageLocation, in.PoNumber, in.PoDate,
		in.InvoiceNumber, in.InvoiceDate, in.AssetCost, in.ExtraCharges, in.TotalCost,
		in.DepreciationPeriod, in.MaintenanceFrequency, in.ResponsibleTeam, in.MsiTeam, in.Remarks,
		in.CreatedBy, in.NextServiceDue,
	).Scan(&in.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			http.Error(w, "assetId already exists", http.StatusConflict)
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
	s.Log.Info("asset registered",
		zap.String("assetId", in.AssetID),
		zap.String("itemType", in.ItemType()))
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) updateAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.AssetConsumable
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	out, err := s.updateAssetRecord(r.Context(), id, in)
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

// updateAssetRecord overwrites the mutable columns. item_type_key stays as
// registered; switching an asset to a consumable would detach its register
// entry.
func (s *Server) updateAssetRecord(ctx context.Context, id string, in models.AssetConsumable) (models.AssetConsumable, error) {
	in.AssetID = id
	in.TotalCost = in.AssetCost.Add(in.ExtraCharges)

	var out models.AssetConsumable
	err := scanAsset(s.DB.QueryRowContext(ctx, fmt.Sprintf(`
		UPDATE assets_consumables SET
			category = $2, asset_name = $3, product = $4, vendor = $5,
			specifications = $6, quantity = $7, storage_location = $8, po_number = $9,
			po_date = $10, invoice_number = $11, invoice_date = $12, asset_cost = $13,
			extra_charges = $14, total_cost = $15, depreciation_period = $16,
			maintenance_frequency = $17, responsible_team = $18, msi_team = $19,
			remarks = $20, updated_by = $21, next_service_due = $22, updated_at = now()
		WHERE asset_id = $1 AND is_active
		RETURNING %s`, assetColumns),
		id, in.Category, in.AssetName, in.Product, in.Vendor,
		in.Specifications, in.Quantity, in.StorageLocation, in.PoNumber,
		in.PoDate, in.InvoiceNumber, in.InvoiceDate, in.AssetCost,
		in.ExtraCharges, in.TotalCost, in.DepreciationPeriod,
		in.MaintenanceFrequency, in.ResponsibleTeam, in.MsiTeam,
		in.Remarks, in.UpdatedBy, in.NextServiceDue,
	), &out)
	return out, err
}

func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tx, err := s.DB.BeginTx(r.Context(), nil)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer tx.Rollback()

	var typeKey int
	err = tx.QueryRowContext(r.Context(), `
		UPDATE assets_consumables SET is_active = FALSE, updated_at = now()
		WHERE asset_id = $1 AND is_active
		RETURNING item_type_key`, id).Scan(&typeKey)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	itemType := models.AssetConsumable{ItemTypeKey: typeKey}.ItemType()
	if err := deregisterItem(r.Context(), tx, itemType, id); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if err := tx.Commit(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	s.Log.Info("asset deactivated", zap.String("assetId", id), zap.String("itemType", itemType))
	w.WriteHeader(http.StatusNoContent)
}

// fullAssetDetails bundles the master record with its complete maintenance
// and allocation history.
func (s *Server) fullAssetDetails(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("assetId"))
	if id == "" {
		http.Error(w, "assetId is required", 400)
		return
	}
	typ, ok := register.ParseItemType(r.URL.Query().Get("assetType"))
	if !ok {
		http.Error(w, "unknown assetType", 400)
		return
	}

	var a models.AssetConsumable
	err := scanAsset(s.DB.QueryRowContext(r.Context(), fmt.Sprintf(`
		SELECT %s FROM assets_consumables WHERE asset_id = $1 AND is_active`, assetColumns), id), &a)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	maint, err := s.maintenanceHistoryFor(r.Context(), string(typ), id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	alloc, err := s.allocationHistoryFor(r.Context(), string(typ), id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	writeJSON(w, http.StatusOK, models.AssetFullDetail{
		MasterDetails:      a,
		MaintenanceRecords: maint,
		AllocationRecords:  alloc,
	})
}
