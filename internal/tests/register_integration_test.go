//go:build integration

package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kern-inventory-api/internal/models"
	"kern-inventory-api/internal/testutil"
	"kern-inventory-api/pkg/register"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	testServer.Router.ServeHTTP(w, req)
	return w
}

func enhancedRows(t *testing.T) []register.Row {
	t.Helper()

	w := doJSON(t, "GET", "/enhanced-list", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rows []register.Row
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	return rows
}

func findRow(rows []register.Row, itemID string) *register.Row {
	for i := range rows {
		if rows[i].ItemID == itemID {
			return &rows[i]
		}
	}
	return nil
}

// One full registration round trip: create a tool, see it on the computed
// list, deactivate it, see it disappear while its ledger rows survive.
func TestToolRegistrationRoundTrip(t *testing.T) {
	testutil.RequireIntegration(t)

	toolID := fmt.Sprintf("TL-IT-%d", time.Now().UnixNano())
	tool := models.Tool{
		ToolID:               toolID,
		ToolName:             "Integration Vice",
		Vendor:               "Acme",
		StorageLocation:      "Rack 7",
		MaintenanceFrequency: "Monthly",
	}

	// Create
	w := doJSON(t, "POST", "/tools", tool)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Duplicate active id is rejected
	w = doJSON(t, "POST", "/tools", tool)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Shows up on the enhanced list with a computed due date
	row := findRow(enhancedRows(t), toolID)
	require.NotNil(t, row, "created tool missing from enhanced list")
	assert.Equal(t, "Tool", row.ItemType)
	assert.Equal(t, "Integration Vice", row.ItemName)
	assert.Equal(t, "Available", row.AvailabilityStatus)
	require.NotNil(t, row.NextServiceDue)

	// Record a maintenance event; the due date follows the service date
	serviceDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	w = doJSON(t, "POST", "/maintenance", models.MaintenanceEvent{
		ItemType:    "Tool",
		ItemID:      toolID,
		ServiceDate: &serviceDate,
		ServiceType: "Preventive",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	row = findRow(enhancedRows(t), toolID)
	require.NotNil(t, row)
	require.NotNil(t, row.NextServiceDue)
	assert.Equal(t, serviceDate.AddDate(0, 1, 0), row.NextServiceDue.UTC())

	// Deactivate
	w = doJSON(t, "DELETE", "/tools/"+toolID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Gone from the computed list
	assert.Nil(t, findRow(enhancedRows(t), toolID))

	// Not retrievable directly either
	w = doJSON(t, "GET", "/tools/"+toolID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Ledger history survives deactivation
	var kept int
	err := testDB.QueryRow(
		"SELECT COUNT(*) FROM maintenance_events WHERE item_type = 'Tool' AND item_id = $1",
		toolID).Scan(&kept)
	require.NoError(t, err)
	assert.Equal(t, 1, kept)

	// Register entry stays, just inactive
	var active bool
	err = testDB.QueryRow(
		"SELECT is_active FROM master_register WHERE item_type = 'Tool' AND ref_id = $1 ORDER BY s_no DESC LIMIT 1",
		toolID).Scan(&active)
	require.NoError(t, err)
	assert.False(t, active)
}

// An open allocation flips the availability column; returning the item
// flips it back.
func TestAllocationDrivesAvailability(t *testing.T) {
	testutil.RequireIntegration(t)

	assetID := fmt.Sprintf("AST-IT-%d", time.Now().UnixNano())
	w := doJSON(t, "POST", "/assets-consumables", models.AssetConsumable{
		AssetID:     assetID,
		AssetName:   "Integration Crimper",
		ItemTypeKey: models.ItemTypeKeyAsset,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	issued := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	w = doJSON(t, "POST", "/allocation", models.AllocationEvent{
		ItemType:   "Asset",
		ItemID:     assetID,
		EmployeeID: "E-100",
		IssuedDate: &issued,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	row := findRow(enhancedRows(t), assetID)
	require.NotNil(t, row)
	assert.Equal(t, "Allocated", row.AvailabilityStatus)

	returned := issued.AddDate(0, 0, 3)
	w = doJSON(t, "POST", "/allocation", models.AllocationEvent{
		ItemType:         "Asset",
		ItemID:           assetID,
		EmployeeID:       "E-100",
		IssuedDate:       &issued,
		ActualReturnDate: &returned,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	row = findRow(enhancedRows(t), assetID)
	require.NotNil(t, row)
	assert.Equal(t, "Available", row.AvailabilityStatus)
}

// Re-registering an id after deactivation is allowed; only an active
// duplicate conflicts.
func TestReRegistrationAfterDeactivation(t *testing.T) {
	testutil.RequireIntegration(t)

	mmdID := fmt.Sprintf("MMD-IT-%d", time.Now().UnixNano())
	mmd := models.MMD{
		MmdID:       mmdID,
		MmdName:     "Integration Micrometer",
		ModelNumber: "IM-25",
	}

	w := doJSON(t, "POST", "/mmds", mmd)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, "DELETE", "/mmds/"+mmdID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// The deactivated type row stays behind; re-creating the same id must
	// still succeed, not trip a uniqueness error on mmds_master.
	mmd.MmdName = "Integration Micrometer Mk2"
	w = doJSON(t, "POST", "/mmds", mmd)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The new row is the live one
	w = doJSON(t, "GET", "/mmds/"+mmdID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.MMD
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Integration Micrometer Mk2", got.MmdName)

	var entries int
	err := testDB.QueryRow(
		"SELECT COUNT(*) FROM master_register WHERE item_type = 'MMD' AND ref_id = $1",
		mmdID).Scan(&entries)
	require.NoError(t, err)
	assert.Equal(t, 2, entries)

	// Both type rows kept, exactly one active
	var total, active int
	err = testDB.QueryRow(
		"SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active) FROM mmds_master WHERE mmd_id = $1",
		mmdID).Scan(&total, &active)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, active)
}
