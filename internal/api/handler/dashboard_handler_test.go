package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-accident-dashboard/internal/analytics"
	"go-accident-dashboard/internal/dataset"
	"go-accident-dashboard/internal/export"
	"go-accident-dashboard/internal/geo"
	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/internal/render"
	"go-accident-dashboard/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColumns = []string{model.FieldYear, model.FieldRegion, model.FieldSeverity, model.FieldCountry, model.FieldFatalities}

func testRows() []model.Row {
	return []model.Row{
		{model.FieldYear: 2020, model.FieldRegion: "Asia", model.FieldSeverity: "Minor", model.FieldCountry: "India", model.FieldFatalities: 1},
		{model.FieldYear: 2021, model.FieldRegion: "Europe", model.FieldSeverity: "Severe", model.FieldCountry: "Germany", model.FieldFatalities: 2},
		{model.FieldYear: 2020, model.FieldRegion: "Asia", model.FieldSeverity: "Severe", model.FieldCountry: "India", model.FieldFatalities: 3},
	}
}

type stubLoader struct {
	ds  *dataset.Dataset
	err error
}

func (l stubLoader) Load(context.Context, dataset.Source) (*dataset.Dataset, error) {
	return l.ds, l.err
}

func newTestHandler(t *testing.T, ds *dataset.Dataset, loader session.Loader) *Handler {
	t.Helper()
	reg := render.NewRegistry()
	s := session.New(ds, session.Options{
		DashboardOptions: analytics.DashboardOptions{ViewOptions: analytics.ViewOptions{Countries: geo.Default()}},
		Presenter:        reg,
	})
	if ds != nil {
		_, err := s.Apply(model.AllCriteria())
		require.NoError(t, err)
	}
	return New(s, reg, export.NewManager(t.TempDir()), loader, dataset.Source{Location: "test.csv"})
}

func do(h http.HandlerFunc, method, target string, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(method, target, r))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func testDataset() *dataset.Dataset {
	return dataset.New(dataset.Source{Location: "test.csv"}, testColumns, testRows())
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, testDataset(), nil)
	rec := do(h.Health, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	decode(t, rec, &resp)
	assert.Equal(t, "ok", resp["status"])
	assert.EqualValues(t, 3, resp["rows"])

	empty := newTestHandler(t, nil, nil)
	rec = do(empty.Health, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetDataset(t *testing.T) {
	ds := testDataset()
	h := newTestHandler(t, ds, nil)
	rec := do(h.GetDataset, http.MethodGet, "/api/v1/dataset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	decode(t, rec, &resp)
	assert.Equal(t, ds.ID, resp["id"])
	assert.Len(t, resp["columns"], len(testColumns))
	assert.NotContains(t, resp, "rows")

	empty := newTestHandler(t, nil, nil)
	rec = do(empty.GetDataset, http.MethodGet, "/api/v1/dataset", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReloadDataset(t *testing.T) {
	fresh := dataset.New(dataset.Source{}, testColumns, testRows()[:1])
	h := newTestHandler(t, testDataset(), stubLoader{ds: fresh})

	rec := do(h.ReloadDataset, http.MethodPost, "/api/v1/dataset/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Same(t, fresh, h.Session.Dataset())

	failing := newTestHandler(t, testDataset(), stubLoader{err: fmt.Errorf("%w: boom", dataset.ErrDataUnavailable)})
	before := failing.Session.Dataset()
	rec = do(failing.ReloadDataset, http.MethodPost, "/api/v1/dataset/reload", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Same(t, before, failing.Session.Dataset())
}

func TestGetFilters(t *testing.T) {
	h := newTestHandler(t, testDataset(), nil)
	rec := do(h.GetFilters, http.MethodGet, "/api/v1/filters", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var opts analytics.FilterOptions
	decode(t, rec, &opts)
	assert.Equal(t, []string{"All", "2020", "2021"}, opts.Years)
	assert.Equal(t, []string{"All", "Asia", "Europe"}, opts.Regions)
}

func TestGetDashboard(t *testing.T) {
	h := newTestHandler(t, testDataset(), nil)
	rec := do(h.GetDashboard, http.MethodGet, "/api/v1/dashboard?year=2020&severity=Severe", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var dash analytics.Dashboard
	decode(t, rec, &dash)
	assert.Equal(t, 1, dash.Summary.Count)
	assert.Equal(t, 3.0, dash.Summary.Fatalities)
	assert.Equal(t, model.All, dash.Criteria.Region)
	assert.Len(t, dash.Views, len(analytics.ViewKeys()))
	assert.Equal(t, model.AllCriteria(), h.Session.Criteria(), "stateless")

	rec = do(h.GetDashboard, http.MethodGet, "/api/v1/dashboard?year=twenty", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionFilter(t *testing.T) {
	h := newTestHandler(t, testDataset(), nil)

	rec := do(h.SetSessionFilter, http.MethodPut, "/api/v1/session/filter", `{"region": "Asia"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash analytics.Dashboard
	decode(t, rec, &dash)
	assert.Equal(t, 2, dash.Summary.Count)

	rec = do(h.GetSession, http.MethodGet, "/api/v1/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &dash)
	assert.Equal(t, "Asia", dash.Criteria.Region)

	view, ok := h.Views.Get("year")
	require.True(t, ok)
	assert.Equal(t, []model.GroupCount{{Key: "2020", Count: 2}}, view.Groups)

	rec = do(h.SetSessionFilter, http.MethodPut, "/api/v1/session/filter", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.SetSessionFilter, http.MethodPut, "/api/v1/session/filter", `{"year": "soon"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSummary(t *testing.T) {
	h := newTestHandler(t, testDataset(), nil)
	rec := do(h.GetSummary, http.MethodGet, "/api/v1/summary?region=Europe", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total   int               `json:"total"`
		Summary analytics.Summary `json:"summary"`
		Cards   []analytics.Card  `json:"cards"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Summary.Count)
	require.Len(t, resp.Cards, 5)
	assert.Equal(t, "1", resp.Cards[0].Value)
}

func TestViews(t *testing.T) {
	h := newTestHandler(t, testDataset(), nil)

	rec := do(h.ListViews, http.MethodGet, "/api/v1/views", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Views []string `json:"views"`
	}
	decode(t, rec, &list)
	assert.Equal(t, analytics.ViewKeys(), list.Views)

	rec = do(h.GetView, http.MethodGet, "/api/v1/views/severity", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view analytics.View
	decode(t, rec, &view)
	assert.Equal(t, analytics.KindPie, view.Kind)
	assert.Equal(t, []model.GroupCount{{Key: "Minor", Count: 1}, {Key: "Severe", Count: 2}}, view.Groups)

	rec = do(h.GetView, http.MethodGet, "/api/v1/views/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetChart(t *testing.T) {
	h := newTestHandler(t, testDataset(), nil)

	rec := do(h.GetChart, http.MethodGet, "/api/v1/charts/year.png?region=Asia", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = do(h.GetChart, http.MethodGet, "/api/v1/charts/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportAndDownload(t *testing.T) {
	h := newTestHandler(t, testDataset(), nil)

	rec := do(h.CreateExport, http.MethodPost, "/api/v1/exports", `{"format": "csv", "criteria": {"region": "Europe"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res export.Result
	decode(t, rec, &res)
	assert.Equal(t, 1, res.RecordCount)

	rec = do(h.DownloadFile, http.MethodGet, res.DownloadURL, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "accidents.csv")
	assert.Equal(t, "Year,Region,Accident Severity,Country,Number of Fatalities\n2021,Europe,Severe,Germany,2\n", rec.Body.String())
}

func TestExport_DefaultsAndDashboard(t *testing.T) {
	h := newTestHandler(t, testDataset(), nil)
	_, err := h.Session.Apply(model.FilterCriteria{Year: "2020"})
	require.NoError(t, err)

	rec := do(h.CreateExport, http.MethodPost, "/api/v1/exports", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var res export.Result
	decode(t, rec, &res)
	assert.Equal(t, export.FormatCSV, res.Format)
	assert.Equal(t, 2, res.RecordCount, "session filter applies by default")

	rec = do(h.CreateExport, http.MethodPost, "/api/v1/exports", `{"dashboard": true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	decode(t, rec, &res)
	assert.Equal(t, "dashboard.json", res.File)
}

func TestExport_BadRequests(t *testing.T) {
	h := newTestHandler(t, testDataset(), nil)

	rec := do(h.CreateExport, http.MethodPost, "/api/v1/exports", `{"format": "pdf"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.CreateExport, http.MethodPost, "/api/v1/exports", `[`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	empty := newTestHandler(t, nil, nil)
	rec = do(empty.CreateExport, http.MethodPost, "/api/v1/exports", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDownloadFile_Errors(t *testing.T) {
	h := newTestHandler(t, testDataset(), nil)

	rec := do(h.DownloadFile, http.MethodGet, "/api/v1/download/only-id", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h.DownloadFile, http.MethodGet, "/api/v1/download/00000000-0000-0000-0000-000000000000/missing.csv", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	fail(rec, "x", errors.New("plain"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	fail(rec, "x", session.ErrNoDataset)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
