package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-accident-dashboard/internal/analytics"
	"go-accident-dashboard/internal/api/handler"
	"go-accident-dashboard/internal/dataset"
	"go-accident-dashboard/internal/export"
	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/internal/render"
	"go-accident-dashboard/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	rows := []model.Row{
		{model.FieldYear: 2019, model.FieldRegion: "Asia", model.FieldSeverity: "Minor"},
		{model.FieldYear: 2020, model.FieldRegion: "Europe", model.FieldSeverity: "Fatal"},
	}
	ds := dataset.New(dataset.Source{Location: "mem"}, []string{model.FieldYear, model.FieldRegion, model.FieldSeverity}, rows)
	reg := render.NewRegistry()
	s := session.New(ds, session.Options{Presenter: reg})
	_, err := s.Apply(model.AllCriteria())
	require.NoError(t, err)
	return NewRouter(handler.New(s, reg, export.NewManager(t.TempDir()), nil, ds.Source))
}

func get(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/api/v1/dataset", http.StatusOK},
		{http.MethodGet, "/api/v1/filters", http.StatusOK},
		{http.MethodGet, "/api/v1/dashboard?region=Asia", http.StatusOK},
		{http.MethodGet, "/api/v1/summary", http.StatusOK},
		{http.MethodGet, "/api/v1/session", http.StatusOK},
		{http.MethodGet, "/api/v1/views", http.StatusOK},
		{http.MethodGet, "/api/v1/views/severity", http.StatusOK},
		{http.MethodGet, "/api/v1/charts/year.png", http.StatusOK},
		{http.MethodGet, "/api/v1/views/missing", http.StatusNotFound},
		{http.MethodPost, "/api/v1/dashboard", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/session/filter", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.status, get(r, tt.method, tt.path).Code)
		})
	}
}

func TestRoutes_Filters(t *testing.T) {
	rec := get(newTestRouter(t), http.MethodGet, "/api/v1/filters")
	require.Equal(t, http.StatusOK, rec.Code)

	var opts analytics.FilterOptions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"All", "Fatal", "Minor"}, opts.Severities)
}

func TestSwaggerDoc(t *testing.T) {
	rec := get(newTestRouter(t), http.MethodGet, "/swagger/doc.json")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	for _, p := range []string{"/health", "/dashboard", "/session/filter", "/views/{key}", "/exports", "/download/{id}/{filename}"} {
		assert.Contains(t, doc.Paths, p)
	}
}
