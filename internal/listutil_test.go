package internal

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		limit  int
		offset int
		q      string
		sort   string
	}{
		{"defaults", "/tools", 50, 0, "", ""},
		{"explicit values", "/tools?limit=20&offset=40&q=vice&sort=-name", 20, 40, "vice", "-name"},
		{"limit capped", "/tools?limit=5000", 200, 0, "", ""},
		{"negative limit ignored", "/tools?limit=-3", 50, 0, "", ""},
		{"negative offset ignored", "/tools?offset=-1", 50, 0, "", ""},
		{"non-numeric ignored", "/tools?limit=abc&offset=xyz", 50, 0, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			p := parseListParams(req)
			assert.Equal(t, tt.limit, p.limit)
			assert.Equal(t, tt.offset, p.offset)
			assert.Equal(t, tt.q, p.q)
			assert.Equal(t, tt.sort, p.sort)
		})
	}
}

func TestParseRegisterQuery(t *testing.T) {
	req := httptest.NewRequest("GET", "/enhanced-list/paginated?pageNumber=3&pageSize=25&searchText=%20caliper%20&sortColumn=vendor&sortDirection=desc", nil)
	q := parseRegisterQuery(req)

	assert.Equal(t, 3, q.PageNumber)
	assert.Equal(t, 25, q.PageSize)
	assert.Equal(t, "caliper", q.SearchText)
	assert.Equal(t, "vendor", q.SortColumn)
	assert.Equal(t, "desc", q.SortDirection)

	// Zero values pass through; the engine normalizes them.
	req = httptest.NewRequest("GET", "/enhanced-list/paginated", nil)
	q = parseRegisterQuery(req)
	assert.Equal(t, 0, q.PageNumber)
	assert.Equal(t, 0, q.PageSize)
}

func TestBuildOrderBy(t *testing.T) {
	allowed := map[string]string{
		"name":       "tool_name",
		"vendor":     "vendor",
		"created_at": "created_at",
	}

	tests := []struct {
		name string
		sort string
		want string
	}{
		{"empty falls back", "", " ORDER BY created_at DESC"},
		{"single asc", "name", " ORDER BY tool_name ASC"},
		{"single desc", "-name", " ORDER BY tool_name DESC"},
		{"multiple", "vendor,-name", " ORDER BY vendor ASC, tool_name DESC"},
		{"unknown skipped", "sneaky;drop,name", " ORDER BY tool_name ASC"},
		{"all unknown falls back", "1=1,--", " ORDER BY created_at DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildOrderBy(tt.sort, allowed))
		})
	}
}

func TestNoCache(t *testing.T) {
	w := httptest.NewRecorder()
	noCache(w)
	assert.Equal(t, "no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, "0", w.Header().Get("Expires"))
}
