package internal

import (
	"fmt"
	"net/http"
	"strings"

	"kern-inventory-api/internal/models"
	"kern-inventory-api/pkg/register"

	"github.com/lib/pq"
)

// enhancedList serves the full computed master list. The view is rebuilt
// from the registry and ledgers on every request; failures degrade to a
// partial or empty list rather than an error (degraded responses are
// flagged with X-Degraded and counted per outcome).
func (s *Server) enhancedList(w http.ResponseWriter, r *http.Request) {
	rows, outcome := s.Engine.Rows(r.Context())
	s.Metrics.ObserveRegisterList(string(outcome))

	noCache(w)
	if outcome != register.OutcomeFull {
		w.Header().Set("X-Degraded", "true")
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) enhancedListPaginated(w http.ResponseWriter, r *http.Request) {
	q := parseRegisterQuery(r)
	if s.Cfg != nil {
		q.DefaultSize = s.Cfg.DefaultPageSize
		q.MaxSize = s.Cfg.MaxPageSize
	}
	page, outcome := s.Engine.List(r.Context(), q)
	s.Metrics.ObserveRegisterList(string(outcome))

	noCache(w)
	if outcome != register.OutcomeFull {
		w.Header().Set("X-Degraded", "true")
	}
	writeJSON(w, http.StatusOK, page)
}

// masterList serves the plain registry projection without ledger-derived
// columns. An optional types filter restricts the item types returned.
func (s *Server) masterList(w http.ResponseWriter, r *http.Request) {
	var types []string
	if raw := strings.TrimSpace(r.URL.Query().Get("types")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			t, ok := register.ParseItemType(part)
			if !ok {
				http.Error(w, fmt.Sprintf("unknown item type %q", strings.TrimSpace(part)), http.StatusBadRequest)
				return
			}
			types = append(types, string(t))
		}
	}

	sqlStr := `
		SELECT mr.s_no, mr.item_type, mr.ref_id, mr.created_at,
		       COALESCE(t.tool_id, m.mmd_id, a.asset_id, mr.ref_id) AS display_id,
		       CASE mr.item_type
		            WHEN 'Tool' THEN COALESCE(t.tool_name, '')
		            WHEN 'MMD' THEN COALESCE(NULLIF(m.mmd_name, ''), m.model_number, '')
		            ELSE COALESCE(a.asset_name, '')
		       END AS name,
		       CASE mr.item_type
		            WHEN 'Tool' THEN COALESCE(t.tool_type, '')
		            WHEN 'MMD' THEN COALESCE(m.model_number, '')
		            ELSE COALESCE(a.category, '')
		       END AS type,
		       CASE mr.item_type
		            WHEN 'Tool' THEN COALESCE(t.vendor, '')
		            WHEN 'MMD' THEN COALESCE(m.vendor, '')
		            ELSE COALESCE(a.vendor, '')
		       END AS supplier,
		       CASE mr.item_type
		            WHEN 'Tool' THEN COALESCE(t.storage_location, '')
		            WHEN 'MMD' THEN COALESCE(m.storage_location, '')
		            ELSE COALESCE(a.storage_location, '')
		       END AS location
		FROM master_register mr
		LEFT JOIN tools_master t ON mr.item_type = 'Tool' AND t.tool_id = mr.ref_id
		LEFT JOIN mmds_master m ON mr.item_type = 'MMD' AND m.mmd_id = mr.ref_id
		LEFT JOIN assets_consumables a ON mr.item_type IN ('Asset', 'Consumable') AND a.asset_id = mr.ref_id
		WHERE mr.is_active`

	args := []interface{}{}
	if len(types) > 0 {
		sqlStr += " AND mr.item_type = ANY($1)"
		args = append(args, pq.Array(types))
	}
	sqlStr += " ORDER BY mr.created_at DESC, mr.s_no DESC"

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	out := []models.MasterListRow{}
	for rows.Next() {
		var row models.MasterListRow
		if err := rows.Scan(&row.SeqNo, &row.ItemType, &row.RefID, &row.CreatedAt,
			&row.DisplayID, &row.Name, &row.Type, &row.Supplier, &row.Location); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	noCache(w)
	writeJSON(w, http.StatusOK, out)
}
