package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"kern-inventory-api/internal/models"
	"kern-inventory-api/pkg/register"

	"github.com/go-chi/chi/v5"
)

type itemDetailResponse struct {
	ItemType        string      `json:"itemType"`
	MasterData      interface{} `json:"masterData"`
	DetailedData    interface{} `json:"detailedData"`
	HasDetailedData bool        `json:"hasDetailedData"`
}

// itemDetails merges the computed register row for an item with its full
// type-specific record. The register row still comes back when the type
// record is missing, flagged via hasDetailedData.
func (s *Server) itemDetails(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	typ, ok := register.ParseItemType(chi.URLParam(r, "itemType"))
	if !ok {
		http.Error(w, "unknown itemType", 400)
		return
	}

	rows, outcome := s.Engine.Rows(r.Context())
	s.Metrics.ObserveRegisterList(string(outcome))
	if outcome != register.OutcomeFull {
		w.Header().Set("X-Degraded", "true")
	}

	var master *register.Row
	for i := range rows {
		if rows[i].ItemID == itemID && rows[i].ItemType == string(typ) {
			master = &rows[i]
			break
		}
	}
	if master == nil {
		// With the registry unreadable the row set is empty; a 404 would
		// wrongly claim the item does not exist.
		if outcome == register.OutcomeEmpty {
			http.Error(w, "master register unavailable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	resp := itemDetailResponse{ItemType: string(typ), MasterData: master}

	var detailErr error
	switch typ {
	case register.ItemTypeTool:
		var t models.Tool
		detailErr = scanTool(s.DB.QueryRowContext(r.Context(), fmt.Sprintf(`
			SELECT %s FROM tools_master WHERE tool_id = $1 AND is_active`, toolColumns), itemID), &t)
		resp.DetailedData = t
	case register.ItemTypeMMD:
		var m models.MMD
		detailErr = scanMMD(s.DB.QueryRowContext(r.Context(), fmt.Sprintf(`
			SELECT %s FROM mmds_master WHERE mmd_id = $1 AND is_active`, mmdColumns), itemID), &m)
		resp.DetailedData = m
	default:
		var a models.AssetConsumable
		detailErr = scanAsset(s.DB.QueryRowContext(r.Context(), fmt.Sprintf(`
			SELECT %s FROM assets_consumables WHERE asset_id = $1 AND is_active`, assetColumns), itemID), &a)
		resp.DetailedData = a
	}
	switch detailErr {
	case nil:
		resp.HasDetailedData = true
	case sql.ErrNoRows:
		resp.DetailedData = struct{}{}
	default:
		http.Error(w, detailErr.Error(), 500)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// updateItemDetails routes a whole-record update to the item's type table.
func (s *Server) updateItemDetails(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	typ, ok := register.ParseItemType(chi.URLParam(r, "itemType"))
	if !ok {
		http.Error(w, "unknown itemType", 400)
		return
	}

	var err error
	switch typ {
	case register.ItemTypeTool:
		var in models.Tool
		if decodeErr := json.NewDecoder(r.Body).Decode(&in); decodeErr != nil {
			http.Error(w, "invalid JSON", 400)
			return
		}
		_, err = s.updateToolRecord(r.Context(), itemID, in)
	case register.ItemTypeMMD:
		var in models.MMD
		if decodeErr := json.NewDecoder(r.Body).Decode(&in); decodeErr != nil {
			http.Error(w, "invalid JSON", 400)
			return
		}
		_, err = s.updateMMDRecord(r.Context(), itemID, in)
	default:
		var in models.AssetConsumable
		if decodeErr := json.NewDecoder(r.Body).Decode(&in); decodeErr != nil {
			http.Error(w, "invalid JSON", 400)
			return
		}
		_, err = s.updateAssetRecord(r.Context(), itemID, in)
	}
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%s %s updated", typ, itemID),
	})
}
