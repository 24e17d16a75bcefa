// Package importer bulk-loads inventory items from Excel workbooks. Each
// mapped sheet feeds one type table; every accepted row inserts the type
// record together with its master-register entry in a single transaction.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"
	"gopkg.in/yaml.v3"
)

// ImportOptions defines the configuration for Excel import operations
type ImportOptions struct {
	MappingPath string // default "configs/mapping/toolroom_assets.yaml"
	DryRun      bool
	MaxErrors   int // default 50
}

// RowError represents an error that occurred during row processing
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// SheetSummary contains the import statistics for a single sheet
type SheetSummary struct {
	Name     string     `json:"name"`
	Inserted int        `json:"inserted"`
	Skipped  int        `json:"skipped"`
	Errors   int        `json:"errors"`
	Samples  []RowError `json:"error_samples,omitempty"`
}

// ImportSummary contains the overall import statistics
type ImportSummary struct {
	Inserted int            `json:"inserted"`
	Skipped  int            `json:"skipped"`
	Errors   int            `json:"errors"`
	Sheets   []SheetSummary `json:"sheets"`
	DryRun   bool           `json:"dry_run"`
}

// MappingConfig represents the YAML mapping configuration
type MappingConfig struct {
	Version int                    `yaml:"version"`
	Sheets  map[string]SheetConfig `yaml:"sheets"`
}

type SheetConfig struct {
	ItemType string                  `yaml:"item_type"`
	Table    string                  `yaml:"table"`
	IDColumn string                  `yaml:"id_column"`
	IDField  string                  `yaml:"id_field"`
	Defaults map[string]string       `yaml:"defaults"`
	Aliases  map[string][]string     `yaml:"aliases"`
	Columns  map[string]ColumnConfig `yaml:"columns"`
}

type ColumnConfig struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type"`
}

var allowedTables = map[string]bool{
	"tools_master":       true,
	"mmds_master":        true,
	"assets_consumables": true,
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ImportExcel processes an Excel workbook and imports items into the store.
func ImportExcel(ctx context.Context, db *pgxpool.Pool, r io.Reader, opts ImportOptions) (ImportSummary, error) {
	summary := ImportSummary{
		DryRun: opts.DryRun,
		Sheets: []SheetSummary{},
	}

	if opts.MappingPath == "" {
		opts.MappingPath = "configs/mapping/toolroom_assets.yaml"
	}
	if opts.MaxErrors == 0 {
		opts.MaxErrors = 50
	}

	mapping, err := loadMappingConfig(opts.MappingPath)
	if err != nil {
		return summary, fmt.Errorf("failed to load mapping config: %w", err)
	}

	// xlsx needs an io.ReaderAt, so buffer the upload first.
	data, err := io.ReadAll(r)
	if err != nil {
		return summary, fmt.Errorf("failed to read Excel file: %w", err)
	}
	xlFile, err := xlsx.OpenBinary(data)
	if err != nil {
		return summary, fmt.Errorf("failed to open Excel file: %w", err)
	}

	for _, sheet := range xlFile.Sheets {
		sheetConfig, exists := mapping.Sheets[sheet.Name]
		if !exists {
			continue // Skip sheets without mapping
		}

		sheetSummary := processSheet(ctx, db, sheet, sheetConfig, opts)
		summary.Sheets = append(summary.Sheets, sheetSummary)

		summary.Inserted += sheetSummary.Inserted
		summary.Skipped += sheetSummary.Skipped
		summary.Errors += sheetSummary.Errors

		if summary.Errors > opts.MaxErrors {
			return summary, fmt.Errorf("too many errors (%d), stopping import", summary.Errors)
		}
	}

	return summary, nil
}

func loadMappingConfig(path string) (*MappingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg MappingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	for name, sheet := range cfg.Sheets {
		switch sheet.ItemType {
		case "Tool", "MMD", "Asset", "Consumable":
		default:
			return nil, fmt.Errorf("sheet %q has unknown item_type %q", name, sheet.ItemType)
		}
		if !allowedTables[sheet.Table] {
			return nil, fmt.Errorf("sheet %q maps to unknown table %q", name, sheet.Table)
		}
		if !identRe.MatchString(sheet.IDField) {
			return nil, fmt.Errorf("sheet %q has invalid id_field %q", name, sheet.IDField)
		}
		for header, col := range sheet.Columns {
			if !identRe.MatchString(col.Field) {
				return nil, fmt.Errorf("sheet %q column %q has invalid field %q", name, header, col.Field)
			}
		}
		for field := range sheet.Defaults {
			if !identRe.MatchString(field) {
				return nil, fmt.Errorf("sheet %q has invalid default field %q", name, field)
			}
		}
	}
	return &cfg, nil
}

func processSheet(ctx context.Context, db *pgxpool.Pool, sheet *xlsx.Sheet, config SheetConfig, opts ImportOptions) SheetSummary {
	summary := SheetSummary{Name: sheet.Name}

	headerRow, err := sheet.Row(0)
	if err != nil {
		summary.Errors++
		summary.Samples = append(summary.Samples, RowError{
			Sheet:   sheet.Name,
			Row:     1,
			Message: "Failed to read header row: " + err.Error(),
		})
		return summary
	}

	// header text (canonicalized through aliases) -> column index
	headerMap := make(map[string]int)
	for colIdx := 0; ; colIdx++ {
		cell := headerRow.GetCell(colIdx)
		if cell == nil {
			break
		}
		headerName := strings.TrimSpace(cell.String())
		if headerName == "" {
			continue
		}
		headerMap[canonicalHeader(headerName, config.Aliases)] = colIdx
	}

	idCol, ok := headerMap[strings.ToUpper(config.IDColumn)]
	if !ok {
		summary.Errors++
		summary.Samples = append(summary.Samples, RowError{
			Sheet:   sheet.Name,
			Row:     1,
			Message: fmt.Sprintf("id column %q not found in header", config.IDColumn),
		})
		return summary
	}

	for rowIdx := 1; ; rowIdx++ {
		row, err := sheet.Row(rowIdx)
		if err != nil {
			break // No more rows
		}

		id := strings.TrimSpace(cellString(row, idCol))
		if id == "" {
			if rowEmpty(row, headerMap) {
				break
			}
			summary.Skipped++
			continue
		}

		fields, values, err := buildRecord(row, config, headerMap)
		if err != nil {
			summary.Errors++
			if len(summary.Samples) < 10 {
				summary.Samples = append(summary.Samples, RowError{
					Sheet:   sheet.Name,
					Row:     rowIdx + 1,
					Message: err.Error(),
				})
			}
			continue
		}

		if opts.DryRun {
			summary.Inserted++
			continue
		}

		inserted, err := insertItem(ctx, db, config, id, fields, values)
		if err != nil {
			summary.Errors++
			if len(summary.Samples) < 10 {
				summary.Samples = append(summary.Samples, RowError{
					Sheet:   sheet.Name,
					Row:     rowIdx + 1,
					Message: err.Error(),
				})
			}
			continue
		}
		if inserted {
			summary.Inserted++
		} else {
			summary.Skipped++
		}
	}

	return summary
}

func canonicalHeader(name string, aliases map[string][]string) string {
	upper := strings.ToUpper(name)
	for canonical, alts := range aliases {
		for _, alt := range alts {
			if strings.EqualFold(alt, name) {
				return strings.ToUpper(canonical)
			}
		}
	}
	return upper
}

func cellString(row *xlsx.Row, colIdx int) string {
	cell := row.GetCell(colIdx)
	if cell == nil {
		return ""
	}
	return cell.String()
}

func rowEmpty(row *xlsx.Row, headerMap map[string]int) bool {
	for _, colIdx := range headerMap {
		if strings.TrimSpace(cellString(row, colIdx)) != "" {
			return false
		}
	}
	return true
}

func buildRecord(row *xlsx.Row, config SheetConfig, headerMap map[string]int) ([]string, []interface{}, error) {
	fields := []string{}
	values := []interface{}{}

	for field, raw := range config.Defaults {
		fields = append(fields, field)
		values = append(values, raw)
	}

	for header, columnConfig := range config.Columns {
		colIdx, ok := headerMap[strings.ToUpper(header)]
		if !ok {
			continue
		}
		raw := strings.TrimSpace(cellString(row, colIdx))
		if raw == "" {
			continue
		}
		parsed, err := parseValue(raw, columnConfig.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("column %s: %v", header, err)
		}
		fields = append(fields, columnConfig.Field)
		values = append(values, parsed)
	}

	return fields, values, nil
}

func parseValue(value, valueType string) (interface{}, error) {
	switch strings.ToUpper(strings.TrimSuffix(valueType, "?")) {
	case "", "TEXT", "STRING":
		return value, nil
	case "INT":
		return strconv.Atoi(value)
	case "BOOL":
		value = strings.ToLower(value)
		return value == "yes" || value == "y" || value == "true" || value == "1", nil
	case "NUMERIC", "DECIMAL", "MONEY":
		d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
		if err != nil {
			return nil, fmt.Errorf("invalid number: %s", value)
		}
		return d, nil
	case "TIMESTAMP", "DATE":
		formats := []string{
			"2006-01-02",
			"2006-01-02 15:04:05",
			"02-01-2006",
			"01/02/2006",
		}
		for _, format := range formats {
			if t, err := time.Parse(format, value); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("invalid date format: %s", value)
	default:
		return value, nil
	}
}

// insertItem writes one row: the type record plus its register entry, both
// in the same transaction. Returns false when the id is already registered.
func insertItem(ctx context.Context, db *pgxpool.Pool, config SheetConfig, id string, fields []string, values []interface{}) (bool, error) {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM master_register
			WHERE item_type = $1 AND ref_id = $2 AND is_active
		)`, config.ItemType, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	allFields := append([]string{config.IDField}, fields...)
	allValues := append([]interface{}{id}, values...)
	placeholders := make([]string, len(allFields))
	for i := range allFields {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, is_active)
		VALUES (%s, TRUE)
	`, config.Table, strings.Join(allFields, ", "), strings.Join(placeholders, ", "))

	if _, err := tx.Exec(ctx, query, allValues...); err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO master_register (item_type, ref_id, is_active)
		VALUES ($1, $2, TRUE)`, config.ItemType, id)
	if err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}
