package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `"Year", "Month" ,Region,Country,Accident Severity,Emergency Response Time,Economic Loss
2020,Jan,Asia,India,Minor,10,1000.5
2021,Feb,Europe,Germany,Severe,x,

2020,Mar,Asia,,Severe,20,50
`

func TestParseCSV(t *testing.T) {
	columns, rows, dups, malformed, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Empty(t, dups)
	assert.Zero(t, malformed)

	assert.Equal(t, []string{"Year", "Month", "Region", "Country", "Accident Severity", "Emergency Response Time", "Economic Loss"}, columns)
	require.Len(t, rows, 3, "blank line is skipped")

	assert.Equal(t, 2020, rows[0]["Year"])
	assert.Equal(t, "Jan", rows[0]["Month"])
	assert.Equal(t, 1000.5, rows[0]["Economic Loss"])
	assert.Equal(t, "x", rows[1]["Emergency Response Time"])
	assert.Nil(t, rows[1]["Economic Loss"])
	assert.Nil(t, rows[2]["Country"])
}

func TestParseCSV_RaggedAndDuplicateHeaders(t *testing.T) {
	in := "\ufeffYear,Region,Year,\n2020,Asia,1999,extra,more\n2021\n"
	columns, rows, dups, _, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"Year", "Region"}, columns)
	assert.Equal(t, []string{"Year"}, dups)
	require.Len(t, rows, 2)
	assert.Equal(t, model.Row{"Year": 2020, "Region": "Asia"}, rows[0])
	assert.Equal(t, model.Row{"Year": 2021}, rows[1], "missing trailing cells stay absent")
}

func TestParseCSV_Errors(t *testing.T) {
	_, _, _, _, err := ParseCSV(strings.NewReader(""))
	assert.ErrorContains(t, err, "missing CSV header")

	_, _, _, _, err = ParseCSV(strings.NewReader(" , \"\"\n1,2\n"))
	assert.ErrorContains(t, err, "no column names")
}

func TestParseJSON(t *testing.T) {
	columns, rows, err := ParseJSON(strings.NewReader(`[
		{"Year": 2020, "Region": "Asia", "Economic Loss": 10.5, "note": "a"},
		{"Year": 2021, "Region": " ", "Accident Severity": null, "nested": {"x": 1}},
		"skipped"
	]`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Year", "Region", "Accident Severity", "Economic Loss", "nested", "note"}, columns)
	require.Len(t, rows, 2)
	assert.Equal(t, 2020, rows[0]["Year"])
	assert.Equal(t, 10.5, rows[0]["Economic Loss"])
	assert.Nil(t, rows[1]["Region"])
	assert.Nil(t, rows[1]["nested"])
}

func TestParseJSON_ExportEnvelope(t *testing.T) {
	_, rows, err := ParseJSON(strings.NewReader(`{"export_info": {"record_count": 1}, "data": [{"Year": 2019}]}`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2019, rows[0]["Year"])

	_, rows, err = ParseJSON(strings.NewReader(`{"Year": 2018}`))
	require.NoError(t, err)
	assert.Equal(t, []model.Row{{"Year": 2018}}, rows)

	_, _, err = ParseJSON(strings.NewReader(`42`))
	assert.Error(t, err)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeFile(t, "accidents.csv", sampleCSV)

	ds, err := NewLoader(time.Second).Load(context.Background(), Source{Location: path})
	require.NoError(t, err)

	assert.NotEmpty(t, ds.ID)
	assert.Len(t, ds.Rows, 3)
	assert.Equal(t, 3, ds.Stats.Rows)
	assert.Equal(t, 1, ds.Stats.Attempts)
	assert.Contains(t, ds.Report.MissingColumns, model.FieldCause)
	assert.Equal(t, 1, ds.Report.NonNumeric[model.FieldResponseTime])
}

func TestLoader_LoadJSONFile(t *testing.T) {
	path := writeFile(t, "accidents.json", `[{"Year": 2020}]`)

	ds, err := NewLoader(time.Second).Load(context.Background(), Source{Location: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"Year"}, ds.Columns)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(time.Second).Load(context.Background(), Source{Location: filepath.Join(t.TempDir(), "nope.csv")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataUnavailable))
}

func TestLoader_NoLocation(t *testing.T) {
	_, err := NewLoader(time.Second).Load(context.Background(), Source{})
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestLoader_HTTPRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	loader := NewLoader(time.Second)
	loader.Retry = RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffMultiplier: 2}

	ds, err := loader.Load(context.Background(), Source{Location: srv.URL + "/accidents.csv"})
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 3)
	assert.Equal(t, 2, ds.Stats.Attempts)
	assert.EqualValues(t, 2, calls.Load())
}

func TestLoader_HTTPNotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	loader := NewLoader(time.Second)
	loader.Retry = RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond}

	_, err := loader.Load(context.Background(), Source{Location: srv.URL + "/data.json"})
	require.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorContains(t, err, "404")
	assert.EqualValues(t, 1, calls.Load())
}

func TestLoader_SQL(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "accidents.db")
	db, err := store.Open(store.DriverSQLite, dsn)
	require.NoError(t, err)
	_, err = db.SaveRows(context.Background(), "accidents", []string{"Year", "Region"}, []model.Row{
		{"Year": 2020, "Region": "Asia"},
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ds, err := NewLoader(time.Second).Load(context.Background(), Source{Type: TypeSQL, Driver: store.DriverSQLite, DSN: dsn, Table: "accidents"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Year", "Region"}, ds.Columns)
	assert.Equal(t, []model.Row{{"Year": 2020, "Region": "Asia"}}, ds.Rows)

	_, err = NewLoader(time.Second).Load(context.Background(), Source{Type: TypeSQL, Driver: store.DriverSQLite, DSN: dsn, Table: "missing"})
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestSource_Type(t *testing.T) {
	assert.Equal(t, TypeCSV, Source{Location: "a.csv"}.resolvedType())
	assert.Equal(t, TypeJSON, Source{Location: "https://x.test/a.JSON?token=1"}.resolvedType())
	assert.Equal(t, TypeSQL, Source{Table: "accidents"}.resolvedType())
	assert.Equal(t, TypeJSON, Source{Type: "JSON", Location: "a.txt"}.resolvedType())
	assert.Equal(t, "sqlite3 table accidents", Source{Driver: "sqlite3", Table: "accidents"}.String())
}

func TestRetryConfig_Delay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, BackoffMultiplier: 2}
	assert.Equal(t, 100*time.Millisecond, cfg.delay(1))
	assert.Equal(t, 200*time.Millisecond, cfg.delay(2))
	assert.Equal(t, 300*time.Millisecond, cfg.delay(3))
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts, err := withRetry(ctx, RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour}, "x", func(context.Context) error {
		return errors.New("boom")
	})
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidate(t *testing.T) {
	rows := []model.Row{
		{model.FieldYear: "twenty", model.FieldInjuries: 2},
		{model.FieldYear: nil, model.FieldInjuries: "3"},
	}
	r := Validate([]string{model.FieldYear, model.FieldInjuries, "Notes"}, rows)

	assert.Equal(t, []string{"Notes"}, r.ExtraColumns)
	assert.Len(t, r.MissingColumns, len(model.KnownFields)-2)
	assert.Equal(t, map[string]int{model.FieldYear: 1}, r.NonNumeric)
	assert.False(t, r.Clean())

	assert.True(t, Validate(model.KnownFields, nil).Clean())
}
