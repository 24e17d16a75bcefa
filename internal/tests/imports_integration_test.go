//go:build integration

package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"kern-inventory-api/internal/testutil"
	"kern-inventory-api/pkg/importer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
)

// writeToolsWorkbook builds a small workbook with a Tools sheet: two good
// rows, one row with a blank id, then a fully empty row terminating the scan.
func writeToolsWorkbook(t *testing.T, prefix string) *bytes.Buffer {
	t.Helper()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Tools")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"Tool ID", "Tool Name", "Vendor", "Tool Cost"} {
		header.AddCell().SetString(h)
	}

	addRow := func(id, name, vendor, cost string) {
		row := sheet.AddRow()
		row.AddCell().SetString(id)
		row.AddCell().SetString(name)
		row.AddCell().SetString(vendor)
		row.AddCell().SetString(cost)
	}
	addRow(prefix+"-001", "Import Vice", "Acme", "120.50")
	addRow(prefix+"-002", "Import Clamp", "Acme", "80")
	addRow("", "No ID Row", "", "")

	buf := &bytes.Buffer{}
	require.NoError(t, file.Write(buf))
	return buf
}

// writeMapping materializes a minimal mapping config usable from the test's
// working directory.
func writeMapping(t *testing.T) string {
	t.Helper()

	mapping := `version: 1
sheets:
  Tools:
    item_type: Tool
    table: tools_master
    id_column: "Tool ID"
    id_field: tool_id
    aliases:
      "Tool Name":
        - "Name"
    columns:
      "Tool Name":
        field: tool_name
        type: TEXT
      "Vendor":
        field: vendor
        type: TEXT
      "Tool Cost":
        field: tool_cost
        type: NUMERIC
`
	path := filepath.Join(t.TempDir(), "tools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(mapping), 0o644))
	return path
}

func uploadWorkbook(t *testing.T, workbook *bytes.Buffer, mappingPath string, dryRun bool) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("mapping", mappingPath)
	if dryRun {
		writer.WriteField("dry_run", "true")
	}
	fileWriter, err := writer.CreateFormFile("file", "tools.xlsx")
	require.NoError(t, err)
	_, err = fileWriter.Write(workbook.Bytes())
	require.NoError(t, err)
	writer.Close()

	req := httptest.NewRequest("POST", "/imports/excel", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	testServer.Router.ServeHTTP(w, req)
	return w
}

func decodeSummary(t *testing.T, w *httptest.ResponseRecorder) importer.ImportSummary {
	t.Helper()

	var envelope struct {
		Data importer.ImportSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestImportsIntegration(t *testing.T) {
	testutil.RequireIntegration(t)

	mappingPath := writeMapping(t)
	prefix := fmt.Sprintf("TL-IMP-%d", time.Now().UnixNano())

	t.Run("DryRunCountsWithoutWriting", func(t *testing.T) {
		w := uploadWorkbook(t, writeToolsWorkbook(t, prefix), mappingPath, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		sum := decodeSummary(t, w)
		assert.True(t, sum.DryRun)
		assert.Equal(t, 2, sum.Inserted)
		assert.Equal(t, 1, sum.Skipped)
		assert.Equal(t, 0, sum.Errors)

		var count int
		err := testDB.QueryRow("SELECT COUNT(*) FROM tools_master WHERE tool_id LIKE $1", prefix+"%").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("ImportInsertsAndRegisters", func(t *testing.T) {
		w := uploadWorkbook(t, writeToolsWorkbook(t, prefix), mappingPath, false)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		sum := decodeSummary(t, w)
		assert.Equal(t, 2, sum.Inserted)
		assert.Equal(t, 0, sum.Errors)

		var count int
		err := testDB.QueryRow("SELECT COUNT(*) FROM tools_master WHERE tool_id LIKE $1 AND is_active", prefix+"%").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		err = testDB.QueryRow("SELECT COUNT(*) FROM master_register WHERE item_type = 'Tool' AND ref_id LIKE $1 AND is_active", prefix+"%").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("ReImportSkipsActiveDuplicates", func(t *testing.T) {
		w := uploadWorkbook(t, writeToolsWorkbook(t, prefix), mappingPath, false)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		sum := decodeSummary(t, w)
		assert.Equal(t, 0, sum.Inserted)
		assert.Equal(t, 3, sum.Skipped)
	})

	t.Run("RejectsUnknownMappingTable", func(t *testing.T) {
		badPath := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(badPath, []byte(`version: 1
sheets:
  Tools:
    item_type: Tool
    table: pg_catalog
    id_column: "Tool ID"
    id_field: tool_id
`), 0o644))

		w := uploadWorkbook(t, writeToolsWorkbook(t, prefix), badPath, true)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "IMPORT_FAILED")
	})
}
