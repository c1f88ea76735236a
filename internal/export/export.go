// Package export writes dataset subsets and dashboard payloads to files
// that can be downloaded later.
package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"go-accident-dashboard/internal/analytics"
	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/internal/store"
	"go-accident-dashboard/pkg/utils"

	"github.com/xuri/excelize/v2"
)

// Format is an export file format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatXLSX, FormatSQLite}

// SheetName is the worksheet holding exported rows.
const SheetName = "Accidents"

// TableName is the table holding rows in SQLite exports.
const TableName = "accidents"

// ParseFormat validates a format name. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FormatCSV, nil
	case "excel":
		return FormatXLSX, nil
	case "db":
		return FormatSQLite, nil
	}
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
	return f, nil
}

// Extension returns the file extension of f.
func (f Format) Extension() string {
	if f == FormatSQLite {
		return ".db"
	}
	return "." + string(f)
}

// Info is the metadata block written ahead of JSON exports.
type Info struct {
	ExportID    string                `json:"export_id"`
	ExportedAt  time.Time             `json:"exported_at"`
	RecordCount int                   `json:"record_count"`
	ExportType  string                `json:"export_type"`
	Criteria    *model.FilterCriteria `json:"criteria,omitempty"`
}

// Result describes a finished export.
type Result struct {
	ID          string    `json:"id"`
	Format      Format    `json:"format"`
	File        string    `json:"file"`
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Size        int64     `json:"size"`
	DownloadURL string    `json:"download_url"`
	ExportedAt  time.Time `json:"exported_at"`
}

// Columns orders the keys found in rows: known fields in dataset order,
// then the rest alphabetically.
func Columns(rows []model.Row) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			seen[k] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for _, f := range model.KnownFields {
		if seen[f] {
			cols = append(cols, f)
			delete(seen, f)
		}
	}
	extra := make([]string, 0, len(seen))
	for k := range seen {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

func cell(row model.Row, column string) string {
	s, ok := utils.FormatValue(row[column])
	if !ok {
		return ""
	}
	return s
}

// WriteCSV writes a header line and one record per row. Missing and nil
// values are written as empty cells.
func WriteCSV(w io.Writer, columns []string, rows []model.Row) (int, error) {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(columns))
	count := 0
	for _, row := range rows {
		for i, c := range columns {
			record[i] = cell(row, c)
		}
		if err := writer.Write(record); err != nil {
			return count, fmt.Errorf("failed to write row: %w", err)
		}
		count++
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return count, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return count, nil
}

// WriteJSON writes rows under "data" with an "export_info" block. The
// output loads back as a JSON source.
func WriteJSON(w io.Writer, info Info, rows []model.Row) (int, error) {
	if rows == nil {
		rows = []model.Row{}
	}
	info.RecordCount = len(rows)
	if info.ExportType == "" {
		info.ExportType = "accident_records"
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	exportData := map[string]interface{}{
		"export_info": info,
		"data":        rows,
	}
	if err := encoder.Encode(exportData); err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return len(rows), nil
}

// WriteViewsJSON writes a computed dashboard with an "export_info" block.
func WriteViewsJSON(w io.Writer, info Info, dash analytics.Dashboard) error {
	info.RecordCount = dash.Summary.Count
	info.ExportType = "dashboard"
	if info.Criteria == nil {
		c := dash.Criteria
		info.Criteria = &c
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(map[string]interface{}{
		"export_info": info,
		"dashboard":   dash,
	}); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteXLSX writes rows to the Accidents sheet of a new workbook with a
// bold, frozen header row.
func WriteXLSX(w io.Writer, columns []string, rows []model.Row) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, c := range columns {
		name, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(SheetName, name, c); err != nil {
			return 0, err
		}
		if err := f.SetCellStyle(SheetName, name, name, headerStyle); err != nil {
			return 0, err
		}
	}

	for r, row := range rows {
		for i, c := range columns {
			v, ok := row.Value(c)
			if !ok {
				continue
			}
			name, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return r, err
			}
			if err := f.SetCellValue(SheetName, name, v); err != nil {
				return r, fmt.Errorf("failed to write cell %s: %w", name, err)
			}
		}
	}

	if len(columns) > 0 {
		if err := f.SetPanes(SheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return 0, err
		}
		last, err := excelize.CoordinatesToCellName(len(columns), len(rows)+1)
		if err != nil {
			return 0, err
		}
		if err := f.AutoFilter(SheetName, "A1:"+last, nil); err != nil {
			return 0, err
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return len(rows), nil
}

// writeSQLite saves rows into a fresh SQLite database at path.
func writeSQLite(ctx context.Context, path string, columns []string, rows []model.Row) (int, error) {
	db, err := store.Open(store.DriverSQLite, path)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return db.SaveRows(ctx, TableName, columns, rows)
}

// Export writes rows in format into a new export directory. Columns fall
// back to the keys found in rows when empty.
func (m *Manager) Export(ctx context.Context, rows []model.Row, columns []string, format Format) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !slices.Contains(Formats, format) {
		return Result{}, fmt.Errorf("unsupported export format: %q", format)
	}
	if len(columns) == 0 {
		columns = Columns(rows)
	}

	id := m.NewID()
	fileName := "accidents" + format.Extension()

	return m.write(id, fileName, format, func(path string, w io.Writer) (int, error) {
		switch format {
		case FormatJSON:
			return WriteJSON(w, Info{ExportID: id, ExportedAt: time.Now().UTC()}, rows)
		case FormatXLSX:
			return WriteXLSX(w, columns, rows)
		case FormatSQLite:
			return writeSQLite(ctx, path, columns, rows)
		default:
			return WriteCSV(w, columns, rows)
		}
	})
}

// ExportDashboard writes dash as JSON into a new export directory.
func (m *Manager) ExportDashboard(ctx context.Context, dash analytics.Dashboard) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	id := m.NewID()
	return m.write(id, "dashboard.json", FormatJSON, func(_ string, w io.Writer) (int, error) {
		err := WriteViewsJSON(w, Info{ExportID: id, ExportedAt: time.Now().UTC()}, dash)
		return dash.Summary.Count, err
	})
}

// write runs fn against a buffered file in the export directory. SQLite
// exports manage the file themselves and receive a nil writer.
func (m *Manager) write(id, fileName string, format Format, fn func(path string, w io.Writer) (int, error)) (Result, error) {
	path, err := m.FilePath(id, fileName)
	if err != nil {
		return Result{}, err
	}

	var count int
	if format == FormatSQLite {
		count, err = fn(path, nil)
	} else {
		count, err = writeFile(path, func(w io.Writer) (int, error) { return fn(path, w) })
	}
	if err != nil {
		os.RemoveAll(filepath.Join(m.BaseDir, id))
		utils.LogError("export failed", err, map[string]interface{}{"id": id, "format": string(format)})
		return Result{}, err
	}

	size, _ := FileSize(path)
	res := Result{
		ID:          id,
		Format:      format,
		File:        fileName,
		Path:        path,
		RecordCount: count,
		Size:        size,
		DownloadURL: m.DownloadURL(id, fileName),
		ExportedAt:  time.Now().UTC(),
	}
	utils.LogInfo("export written", map[string]interface{}{
		"id":      id,
		"format":  string(format),
		"records": count,
		"path":    path,
	})
	return res, nil
}

func writeFile(path string, fn func(io.Writer) (int, error)) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	count, err := fn(buf)
	if err != nil {
		return count, err
	}
	if err := buf.Flush(); err != nil {
		return count, fmt.Errorf("failed to write file: %w", err)
	}
	return count, file.Close()
}
