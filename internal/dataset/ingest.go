package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/internal/store"
	"go-accident-dashboard/pkg/utils"

	"github.com/google/uuid"
)

// ErrDataUnavailable reports that the source could not be loaded or parsed.
// No analytics run without a dataset.
var ErrDataUnavailable = errors.New("data unavailable")

func unavailable(src Source, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDataUnavailable, src, err)
}

// Source types.
const (
	TypeCSV  = "csv"
	TypeJSON = "json"
	TypeSQL  = "sql"
)

// Source describes where the dataset comes from.
type Source struct {
	Type     string `json:"type"`               // csv, json or sql; inferred when empty
	Location string `json:"location,omitempty"` // file path or http(s) URL
	Driver   string `json:"driver,omitempty"`   // sql only
	DSN      string `json:"-"`                  // sql only
	Table    string `json:"table,omitempty"`    // sql only
}

func (s Source) String() string {
	if s.resolvedType() == TypeSQL {
		return fmt.Sprintf("%s table %s", s.Driver, s.Table)
	}
	return s.Location
}

func (s Source) resolvedType() string {
	if s.Type != "" {
		return strings.ToLower(s.Type)
	}
	if s.Table != "" && s.Location == "" {
		return TypeSQL
	}
	loc := s.Location
	if i := strings.IndexAny(loc, "?#"); i >= 0 && isRemote(loc) {
		loc = loc[:i]
	}
	if strings.EqualFold(filepath.Ext(loc), ".json") {
		return TypeJSON
	}
	return TypeCSV
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Stats describes one load.
type Stats struct {
	Rows      int           `json:"rows"`
	Malformed int           `json:"malformed"`
	Attempts  int           `json:"attempts"`
	Duration  time.Duration `json:"duration"`
}

// Dataset is an immutable, ordered set of rows with its provenance.
type Dataset struct {
	ID       string      `json:"id"`
	Source   Source      `json:"source"`
	Columns  []string    `json:"columns"`
	Rows     []model.Row `json:"-"`
	LoadedAt time.Time   `json:"loadedAt"`
	Stats    Stats       `json:"stats"`
	Report   Report      `json:"report"`
}

// New wraps already structured rows as a dataset.
func New(src Source, columns []string, rows []model.Row) *Dataset {
	return &Dataset{
		ID:       uuid.New().String(),
		Source:   src,
		Columns:  columns,
		Rows:     rows,
		LoadedAt: time.Now().UTC(),
		Stats:    Stats{Rows: len(rows)},
		Report:   Validate(columns, rows),
	}
}

// Loader reads datasets from files, URLs and SQL tables.
type Loader struct {
	Client *http.Client
	Retry  RetryConfig
}

// NewLoader returns a loader using the given HTTP timeout.
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{
		Client: &http.Client{Timeout: timeout},
		Retry:  DefaultRetryConfig,
	}
}

// Load reads src completely. Every failure wraps ErrDataUnavailable.
func (l *Loader) Load(ctx context.Context, src Source) (*Dataset, error) {
	start := time.Now()
	utils.LogInfo("loading dataset", map[string]interface{}{"source": src.String(), "type": src.resolvedType()})

	var (
		columns []string
		rows    []model.Row
		stats   Stats
		dups    []string
		err     error
	)
	switch src.resolvedType() {
	case TypeCSV:
		stats.Attempts, err = l.read(ctx, src, func(r io.Reader) error {
			var perr error
			columns, rows, dups, stats.Malformed, perr = ParseCSV(r)
			return perr
		})
	case TypeJSON:
		stats.Attempts, err = l.read(ctx, src, func(r io.Reader) error {
			var perr error
			columns, rows, perr = ParseJSON(r)
			return perr
		})
	case TypeSQL:
		stats.Attempts = 1
		columns, rows, err = loadSQL(ctx, src)
	default:
		err = fmt.Errorf("unknown source type: %s", src.Type)
	}
	if err != nil {
		return nil, unavailable(src, err)
	}

	ds := New(src, columns, rows)
	stats.Rows = len(rows)
	stats.Duration = time.Since(start)
	ds.Stats = stats
	ds.Report.DuplicateColumns = dups

	fields := map[string]interface{}{
		"id":       ds.ID,
		"rows":     stats.Rows,
		"columns":  len(columns),
		"duration": stats.Duration.String(),
	}
	if stats.Malformed > 0 {
		fields["malformed"] = stats.Malformed
	}
	utils.LogInfo("dataset loaded", fields)
	if !ds.Report.Clean() {
		utils.LogWarn("dataset does not match the expected columns", map[string]interface{}{
			"missing":    ds.Report.MissingColumns,
			"extra":      ds.Report.ExtraColumns,
			"duplicate":  ds.Report.DuplicateColumns,
			"nonNumeric": ds.Report.NonNumeric,
		})
	}
	return ds, nil
}

// read opens a file or URL and hands its body to parse. Remote sources are
// retried on network errors, 429 and 5xx responses.
func (l *Loader) read(ctx context.Context, src Source, parse func(io.Reader) error) (int, error) {
	if src.Location == "" {
		return 0, errors.New("no source location configured")
	}
	if !isRemote(src.Location) {
		file, err := os.Open(src.Location)
		if err != nil {
			return 1, fmt.Errorf("failed to open file: %w", err)
		}
		defer file.Close()
		return 1, parse(file)
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	return withRetry(ctx, l.Retry, src.Location, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Location, nil)
		if err != nil {
			return permanent(fmt.Errorf("build request: %w", err))
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to GET: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			err := fmt.Errorf("unexpected status %s", resp.Status)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return err
			}
			return permanent(err)
		}
		if err := parse(resp.Body); err != nil {
			return permanent(err)
		}
		return nil
	})
}

// ParseCSV reads a header line followed by records. Header cells are
// cleaned, cells are typed with utils.ParseValue and blank lines are
// skipped. Records the CSV reader rejects are counted as malformed and
// skipped.
func ParseCSV(r io.Reader) (columns []string, rows []model.Row, duplicates []string, malformed int, err error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1
	csvReader.ReuseRecord = true

	raw, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil, 0, errors.New("missing CSV header")
		}
		return nil, nil, nil, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	headers, duplicates := cleanHeaders(raw)
	columns = columnsOf(headers)
	if len(columns) == 0 {
		return nil, nil, nil, 0, errors.New("CSV header has no column names")
	}

	rows = make([]model.Row, 0)
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				malformed++
				continue
			}
			return nil, nil, nil, 0, fmt.Errorf("CSV read error: %w", err)
		}
		if blank(record) {
			continue
		}
		rows = append(rows, typeRecord(headers, record))
	}
	return columns, rows, duplicates, malformed, nil
}

func blank(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}

// ParseJSON reads an array of objects, an object with a "data" array (the
// JSON export format) or a single object.
func ParseJSON(r io.Reader) ([]string, []model.Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	var items []interface{}
	switch data := raw.(type) {
	case []interface{}:
		items = data
	case map[string]interface{}:
		if arr, ok := data["data"].([]interface{}); ok {
			items = arr
		} else {
			items = []interface{}{data}
		}
	default:
		return nil, nil, errors.New("unexpected JSON structure")
	}

	rows := make([]model.Row, 0, len(items))
	seen := make(map[string]bool)
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		row := normalizeJSONRecord(obj)
		for k := range row {
			seen[k] = true
		}
		rows = append(rows, row)
	}
	return jsonColumns(seen), rows, nil
}

// jsonColumns orders object keys: known fields in dataset order, then the
// rest alphabetically.
func jsonColumns(seen map[string]bool) []string {
	cols := make([]string, 0, len(seen))
	for _, f := range model.KnownFields {
		if seen[f] {
			cols = append(cols, f)
		}
	}
	var extra []string
	for k := range seen {
		if !slices.Contains(model.KnownFields, k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

func loadSQL(ctx context.Context, src Source) ([]string, []model.Row, error) {
	if src.Table == "" {
		return nil, nil, errors.New("no sql table configured")
	}
	db, err := store.Open(src.Driver, src.DSN)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()

	rows, columns, err := db.LoadRows(ctx, src.Table)
	if err != nil {
		return nil, nil, err
	}
	return columns, rows, nil
}
