package internal

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"kern-inventory-api/pkg/register"
)

// listParams holds common query parameters for list endpoints
type listParams struct {
	limit  int
	offset int
	q      string
	sort   string
}

// parseListParams parses limit, offset, q, and sort from the request.
// Defaults: limit=50 (max 200), offset=0
func parseListParams(r *http.Request) listParams {
	values := r.URL.Query()

	limit := 50
	if s := strings.TrimSpace(values.Get("limit")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			if v > 200 {
				v = 200
			}
			limit = v
		}
	}

	offset := 0
	if s := strings.TrimSpace(values.Get("offset")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	return listParams{
		limit:  limit,
		offset: offset,
		q:      strings.TrimSpace(values.Get("q")),
		sort:   strings.TrimSpace(values.Get("sort")),
	}
}

// parseRegisterQuery reads the register list parameters (pageNumber,
// pageSize, searchText, sortColumn, sortDirection). Out-of-range values
// are coerced by register.Query itself, so this only has to read them.
func parseRegisterQuery(r *http.Request) register.Query {
	values := r.URL.Query()

	page := 0
	if s := strings.TrimSpace(values.Get("pageNumber")); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			page = v
		}
	}
	size := 0
	if s := strings.TrimSpace(values.Get("pageSize")); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			size = v
		}
	}

	return register.Query{
		PageNumber:    page,
		PageSize:      size,
		SearchText:    strings.TrimSpace(values.Get("searchText")),
		SortColumn:    strings.TrimSpace(values.Get("sortColumn")),
		SortDirection: strings.TrimSpace(values.Get("sortDirection")),
	}
}

// buildOrderBy builds a safe ORDER BY clause using a whitelist of allowed keys.
// allowed maps incoming sort keys (e.g., "name") to actual column identifiers.
// Input sort is comma-separated; prefix with '-' for DESC.
// Returns a string starting with " ORDER BY ...". Defaults to " ORDER BY created_at DESC".
func buildOrderBy(sortParam string, allowed map[string]string) string {
	fallback := " ORDER BY created_at DESC"
	if col, ok := allowed["created_at"]; ok {
		fallback = " ORDER BY " + col + " DESC"
	}
	if sortParam == "" {
		return fallback
	}

	parts := strings.Split(sortParam, ",")
	clauses := make([]string, 0, len(parts))
	for _, raw := range parts {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		desc := false
		if strings.HasPrefix(s, "-") {
			desc = true
			s = strings.TrimPrefix(s, "-")
		}
		col, ok := allowed[s]
		if !ok {
			continue
		}
		if desc {
			clauses = append(clauses, col+" DESC")
		} else {
			clauses = append(clauses, col+" ASC")
		}
	}
	if len(clauses) == 0 {
		return fallback
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendListResponse wraps rows in the common list envelope.
func sendListResponse(w http.ResponseWriter, rows []interface{}, total int, params listParams) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":   rows,
		"total":  total,
		"limit":  params.limit,
		"offset": params.offset,
	})
}

// noCache marks a response as non-cacheable. The register views are
// recomputed on every request and must never be served stale.
func noCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}
