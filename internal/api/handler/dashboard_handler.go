package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-accident-dashboard/internal/analytics"
	"go-accident-dashboard/internal/dataset"
	"go-accident-dashboard/internal/export"
	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/internal/render"
	"go-accident-dashboard/internal/session"
	"go-accident-dashboard/pkg/utils"
)

// Handler serves the dashboard API from one session.
type Handler struct {
	Session *session.Session
	Views   *render.Registry
	Charts  *render.PNGPresenter
	Exports *export.Manager
	Loader  session.Loader
	Source  dataset.Source

	startedAt time.Time
}

// New wires a handler. Views should be the presenter the session pushes to.
func New(s *session.Session, views *render.Registry, exports *export.Manager, loader session.Loader, src dataset.Source) *Handler {
	return &Handler{
		Session:   s,
		Views:     views,
		Charts:    render.NewPNGPresenter(""),
		Exports:   exports,
		Loader:    loader,
		Source:    src,
		startedAt: time.Now().UTC(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.LogError("failed to encode response", err, nil)
	}
}

// fail maps err to a status code: 503 while no data is available, 500
// otherwise.
func fail(w http.ResponseWriter, msg string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, dataset.ErrDataUnavailable) {
		status = http.StatusServiceUnavailable
	}
	utils.LogError(msg, err, map[string]interface{}{"status": status})
	http.Error(w, fmt.Sprintf("%s: %v", msg, err), status)
}

// pathParam returns what follows prefix in the request path.
func pathParam(r *http.Request, prefix string) string {
	return strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
}

// validateCriteria rejects years that are neither "All" nor a number.
func validateCriteria(c model.FilterCriteria) error {
	c = c.Normalize()
	if c.Year != model.All {
		if _, err := strconv.ParseFloat(c.Year, 64); err != nil {
			return fmt.Errorf("invalid year %q", c.Year)
		}
	}
	return nil
}

func queryCriteria(r *http.Request) (model.FilterCriteria, error) {
	c := analytics.CriteriaFromQuery(r.URL.Query().Get)
	return c, validateCriteria(c)
}

// Health reports whether a dataset is loaded
// @Summary Health check
// @Description Service status and the ID of the loaded dataset
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{} "Service healthy"
// @Failure 503 {object} map[string]interface{} "No dataset loaded"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.Session.Status()
	resp := map[string]interface{}{
		"status":    "ok",
		"datasetId": st.DatasetID,
		"rows":      st.Rows,
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
		"time":      time.Now().UTC(),
	}
	status := http.StatusOK
	if st.DatasetID == "" {
		resp["status"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// GetDataset describes the loaded dataset
// @Summary Get dataset
// @Description Source, load ID, load time, columns, load statistics and validation report
// @Tags dataset
// @Produce json
// @Success 200 {object} map[string]interface{} "Dataset details"
// @Failure 503 {object} map[string]interface{} "No dataset loaded"
// @Router /dataset [get]
func (h *Handler) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds := h.Session.Dataset()
	if ds == nil {
		fail(w, "dataset unavailable", session.ErrNoDataset)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

// ReloadDataset reloads the configured source
// @Summary Reload dataset
// @Description Load the configured source again and recompute every view. The current data is kept when loading fails.
// @Tags dataset
// @Produce json
// @Success 200 {object} map[string]interface{} "Dataset reloaded"
// @Failure 503 {object} map[string]interface{} "Source unavailable"
// @Router /dataset/reload [post]
func (h *Handler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Session.Reload(r.Context(), h.Loader, h.Source)
	if err != nil && ds == nil {
		fail(w, "reload failed", err)
		return
	}
	resp := map[string]interface{}{
		"message": "Dataset reloaded",
		"dataset": ds,
	}
	if err != nil {
		resp["warning"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetFilters lists the selectable filter values
// @Summary Get filter options
// @Description Distinct years, regions and severities of the full dataset, each list starting with "All"
// @Tags dashboard
// @Produce json
// @Success 200 {object} analytics.FilterOptions
// @Failure 503 {object} map[string]interface{} "No dataset loaded"
// @Router /filters [get]
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	ds := h.Session.Dataset()
	if ds == nil {
		fail(w, "dataset unavailable", session.ErrNoDataset)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Options(ds.Rows))
}

// GetDashboard computes the dashboard for query criteria
// @Summary Get dashboard
// @Description Summary, cards and every view for the given criteria. The session filter is not changed.
// @Tags dashboard
// @Produce json
// @Param year query string false "Year or All"
// @Param region query string false "Region or All"
// @Param severity query string false "Accident severity or All"
// @Success 200 {object} analytics.Dashboard
// @Failure 400 {object} map[string]interface{} "Invalid criteria"
// @Failure 503 {object} map[string]interface{} "No dataset loaded"
// @Router /dashboard [get]
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	criteria, err := queryCriteria(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dash, err := h.Session.Preview(criteria)
	if err != nil {
		fail(w, "dashboard unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// GetSession returns the dashboard for the session filter
// @Summary Get session dashboard
// @Description Dashboard for the filter currently selected in the session
// @Tags session
// @Produce json
// @Success 200 {object} analytics.Dashboard
// @Failure 503 {object} map[string]interface{} "No dataset loaded"
// @Router /session [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	dash, err := h.Session.Snapshot()
	if err != nil {
		fail(w, "dashboard unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// SetSessionFilter changes the session filter
// @Summary Set session filter
// @Description Select new criteria, recompute every view and push them to the presenters
// @Tags session
// @Accept json
// @Produce json
// @Param criteria body model.FilterCriteria true "Filter criteria; empty fields mean All"
// @Success 200 {object} analytics.Dashboard
// @Failure 400 {object} map[string]interface{} "Invalid criteria"
// @Failure 500 {object} map[string]interface{} "Presenter failure"
// @Failure 503 {object} map[string]interface{} "No dataset loaded"
// @Router /session/filter [put]
func (h *Handler) SetSessionFilter(w http.ResponseWriter, r *http.Request) {
	var criteria model.FilterCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if err := validateCriteria(criteria); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dash, err := h.Session.Apply(criteria)
	if err != nil {
		fail(w, "failed to apply filter", err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// GetSummary returns the summary cards for query criteria
// @Summary Get summary
// @Description Totals and formatted cards for the given criteria
// @Tags dashboard
// @Produce json
// @Param year query string false "Year or All"
// @Param region query string false "Region or All"
// @Param severity query string false "Accident severity or All"
// @Success 200 {object} map[string]interface{} "Summary and cards"
// @Failure 400 {object} map[string]interface{} "Invalid criteria"
// @Failure 503 {object} map[string]interface{} "No dataset loaded"
// @Router /summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	criteria, err := queryCriteria(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dash, err := h.Session.Preview(criteria)
	if err != nil {
		fail(w, "summary unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"criteria": dash.Criteria,
		"total":    dash.Total,
		"summary":  dash.Summary,
		"cards":    dash.Cards,
	})
}

// ListViews lists the views pushed by the session
// @Summary List views
// @Description Keys of the views held by the registry, in creation order
// @Tags views
// @Produce json
// @Success 200 {object} map[string]interface{} "View keys"
// @Router /views [get]
func (h *Handler) ListViews(w http.ResponseWriter, r *http.Request) {
	keys := h.Views.Keys()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"views":    keys,
		"criteria": h.Session.Criteria(),
		"count":    len(keys),
	})
}

// GetView returns one view pushed by the session
// @Summary Get view
// @Description Latest payload of one view for the session filter
// @Tags views
// @Produce json
// @Param key path string true "View key"
// @Success 200 {object} analytics.View
// @Failure 404 {object} map[string]interface{} "Unknown view"
// @Router /views/{key} [get]
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "/api/v1/views/")
	view, ok := h.Views.Get(key)
	if !ok {
		http.Error(w, fmt.Sprintf("View %q not found", key), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetChart renders one view as PNG
// @Summary Get chart image
// @Description PNG rendering of one view for the given criteria
// @Tags views
// @Produce png
// @Param key path string true "View key"
// @Param year query string false "Year or All"
// @Param region query string false "Region or All"
// @Param severity query string false "Accident severity or All"
// @Success 200 {file} file "PNG image"
// @Failure 400 {object} map[string]interface{} "Invalid criteria"
// @Failure 404 {object} map[string]interface{} "Unknown view"
// @Failure 503 {object} map[string]interface{} "No dataset loaded"
// @Router /charts/{key} [get]
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSuffix(pathParam(r, "/api/v1/charts/"), ".png")
	criteria, err := queryCriteria(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dash, err := h.Session.Preview(criteria)
	if err != nil {
		fail(w, "chart unavailable", err)
		return
	}
	view, ok := analytics.FindView(dash.Views, key)
	if !ok {
		http.Error(w, fmt.Sprintf("View %q not found", key), http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := h.Charts.Render(&buf, view); err != nil {
		fail(w, "failed to render chart", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// ExportRequest selects what to export.
type ExportRequest struct {
	// Format is csv, json, xlsx or sqlite; empty means csv.
	Format string `json:"format" example:"csv"`
	// Criteria defaults to the session filter.
	Criteria *model.FilterCriteria `json:"criteria,omitempty"`
	// Dashboard exports the computed dashboard as JSON instead of rows.
	Dashboard bool `json:"dashboard,omitempty"`
}

// CreateExport writes the filtered rows to a downloadable file
// @Summary Create export
// @Description Export the rows matching the criteria, or the computed dashboard, to a file
// @Tags exports
// @Accept json
// @Produce json
// @Param export body ExportRequest true "Export options"
// @Success 201 {object} export.Result
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 503 {object} map[string]interface{} "No dataset loaded"
// @Router /exports [post]
func (h *Handler) CreateExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	criteria := h.Session.Criteria()
	if req.Criteria != nil {
		criteria = req.Criteria.Normalize()
	}
	if err := validateCriteria(criteria); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var res export.Result
	if req.Dashboard {
		dash, derr := h.Session.Preview(criteria)
		if derr != nil {
			fail(w, "export unavailable", derr)
			return
		}
		res, err = h.Exports.ExportDashboard(r.Context(), dash)
	} else {
		columns, rows, serr := h.Session.Subset(criteria)
		if serr != nil {
			fail(w, "export unavailable", serr)
			return
		}
		res, err = h.Exports.Export(r.Context(), rows, columns, format)
	}
	if err != nil {
		fail(w, "export failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// DownloadFile serves an exported file
// @Summary Download file
// @Description Download a file written by an export
// @Tags exports
// @Produce application/octet-stream
// @Param id path string true "Export ID"
// @Param filename path string true "File name"
// @Success 200 {file} file "File download"
// @Failure 400 {object} map[string]interface{} "Invalid URL format"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /download/{id}/{filename} [get]
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	// URL format: /api/v1/download/{id}/{filename}
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) != 5 {
		http.Error(w, fmt.Sprintf("Invalid URL format. Expected 5 parts, got %d", len(pathParts)), http.StatusBadRequest)
		return
	}
	id, fileName := pathParts[3], pathParts[4]

	path, err := h.Exports.Resolve(id, fileName)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Type", export.ContentType(fileName))
	http.ServeFile(w, r, path)
}
