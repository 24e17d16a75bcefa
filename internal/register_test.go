package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kern-inventory-api/internal/config"
	"kern-inventory-api/pkg/register"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves canned registry and ledger data, with switchable
// failures per call.
type fakeSource struct {
	entries  []register.IndexEntry
	records  map[register.Key]register.Record
	maint    []register.MaintenanceEvent
	alloc    []register.AllocationEvent
	entryErr error
	maintErr error
	allocErr error
}

func (f *fakeSource) ActiveEntries(ctx context.Context) ([]register.IndexEntry, error) {
	return f.entries, f.entryErr
}

func (f *fakeSource) Records(ctx context.Context) (map[register.Key]register.Record, error) {
	return f.records, nil
}

func (f *fakeSource) MaintenanceHistory(ctx context.Context) ([]register.MaintenanceEvent, error) {
	return f.maint, f.maintErr
}

func (f *fakeSource) AllocationHistory(ctx context.Context) ([]register.AllocationEvent, error) {
	return f.alloc, f.allocErr
}

func registerTestServer(src register.Source) *Server {
	return &Server{
		Engine:  register.New(src, nil),
		Metrics: NewMetrics(),
	}
}

func sampleSource() *fakeSource {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return &fakeSource{
		entries: []register.IndexEntry{
			{SeqNo: 2, Type: register.ItemTypeMMD, RefID: "MMD-001", CreatedAt: created.Add(time.Hour), Active: true},
			{SeqNo: 1, Type: register.ItemTypeTool, RefID: "TL-001", CreatedAt: created, Active: true},
		},
		records: map[register.Key]register.Record{
			{Type: register.ItemTypeTool, ID: "TL-001"}: {
				ItemID: "TL-001", Name: "Bench Vice", Vendor: "Acme", Location: "Rack A", Frequency: "Half-Yearly",
			},
			{Type: register.ItemTypeMMD, ID: "MMD-001"}: {
				ItemID: "MMD-001", Name: "Vernier Caliper", Vendor: "Mitutoyo", Location: "Cal Lab", Frequency: "Yearly",
			},
		},
	}
}

func TestEnhancedList(t *testing.T) {
	server := registerTestServer(sampleSource())

	req := httptest.NewRequest("GET", "/enhanced-list", nil)
	w := httptest.NewRecorder()
	server.enhancedList(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Degraded"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")

	var rows []register.Row
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)

	// Newest registration first.
	assert.Equal(t, "MMD-001", rows[0].ItemID)
	assert.Equal(t, "TL-001", rows[1].ItemID)
	assert.Equal(t, "Bench Vice", rows[1].ItemName)
	assert.Equal(t, "Available", rows[1].AvailabilityStatus)

	// No maintenance history: due date falls back to registration + frequency.
	require.NotNil(t, rows[1].NextServiceDue)
	assert.Equal(t, time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC), *rows[1].NextServiceDue)
}

func TestEnhancedListDegraded(t *testing.T) {
	src := sampleSource()
	src.maintErr = errors.New("ledger offline")
	server := registerTestServer(src)

	req := httptest.NewRequest("GET", "/enhanced-list", nil)
	w := httptest.NewRecorder()
	server.enhancedList(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Degraded"))

	var rows []register.Row
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 2)
}

func TestEnhancedListEmptyOnRegistryFailure(t *testing.T) {
	src := sampleSource()
	src.entryErr = errors.New("registry unavailable")
	server := registerTestServer(src)

	req := httptest.NewRequest("GET", "/enhanced-list", nil)
	w := httptest.NewRecorder()
	server.enhancedList(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Degraded"))
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestEnhancedListSkipsOrphanedEntries(t *testing.T) {
	src := sampleSource()
	src.entries = append(src.entries, register.IndexEntry{
		SeqNo: 3, Type: register.ItemTypeAsset, RefID: "AST-404", CreatedAt: time.Now(), Active: true,
	})
	server := registerTestServer(src)

	req := httptest.NewRequest("GET", "/enhanced-list", nil)
	w := httptest.NewRecorder()
	server.enhancedList(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Degraded"))

	var rows []register.Row
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 2)
}

func TestEnhancedListPaginated(t *testing.T) {
	server := registerTestServer(sampleSource())

	req := httptest.NewRequest("GET", "/enhanced-list/paginated?pageNumber=1&pageSize=1&sortColumn=itemName&sortDirection=asc", nil)
	w := httptest.NewRecorder()
	server.enhancedListPaginated(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var page register.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.PageSize)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Bench Vice", page.Items[0].ItemName)
}

func TestEnhancedListPaginatedSearch(t *testing.T) {
	server := registerTestServer(sampleSource())

	req := httptest.NewRequest("GET", "/enhanced-list/paginated?searchText=mitutoyo", nil)
	w := httptest.NewRecorder()
	server.enhancedListPaginated(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var page register.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.TotalCount)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "MMD-001", page.Items[0].ItemID)
}

func TestEnhancedListPaginatedUsesConfiguredSizes(t *testing.T) {
	server := registerTestServer(sampleSource())
	server.Cfg = &config.Config{DefaultPageSize: 1, MaxPageSize: 1}

	// No pageSize: the configured default applies
	req := httptest.NewRequest("GET", "/enhanced-list/paginated", nil)
	w := httptest.NewRecorder()
	server.enhancedListPaginated(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var page register.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.PageSize)
	assert.Len(t, page.Items, 1)

	// Oversized request: clamped to the configured max
	req = httptest.NewRequest("GET", "/enhanced-list/paginated?pageSize=50", nil)
	w = httptest.NewRecorder()
	server.enhancedListPaginated(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.PageSize)
}

func itemDetailsRequest(itemID, itemType string) *http.Request {
	req := httptest.NewRequest("GET", "/item-details/"+itemID+"/"+itemType, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("itemId", itemID)
	rctx.URLParams.Add("itemType", itemType)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestItemDetailsRegistryFailureIsNotNotFound(t *testing.T) {
	src := sampleSource()
	src.entryErr = errors.New("registry unavailable")
	server := registerTestServer(src)

	w := httptest.NewRecorder()
	server.itemDetails(w, itemDetailsRequest("TL-001", "Tool"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Degraded"))
}

func TestItemDetailsUnknownItemIs404(t *testing.T) {
	server := registerTestServer(sampleSource())

	w := httptest.NewRecorder()
	server.itemDetails(w, itemDetailsRequest("TL-999", "Tool"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("X-Degraded"))
}

func TestMasterListRejectsUnknownType(t *testing.T) {
	server := registerTestServer(sampleSource())

	req := httptest.NewRequest("GET", "/master-list?types=Tool,Widget", nil)
	w := httptest.NewRecorder()
	server.masterList(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Widget")
}
