// Package session owns the loaded dataset and the current filter
// selection, and pushes recomputed views to a presenter whenever either
// changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-accident-dashboard/internal/analytics"
	"go-accident-dashboard/internal/dataset"
	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/internal/render"
	"go-accident-dashboard/pkg/utils"
)

// ErrNoDataset is returned when the session has nothing to analyze.
var ErrNoDataset = fmt.Errorf("%w: no dataset loaded", dataset.ErrDataUnavailable)

// Loader loads a dataset from a source.
type Loader interface {
	Load(ctx context.Context, src dataset.Source) (*dataset.Dataset, error)
}

// Options configures a session.
type Options struct {
	analytics.DashboardOptions
	// Presenter receives every view after each update; nil disables pushing.
	Presenter render.Presenter
}

// Status describes the session for health and dataset endpoints.
type Status struct {
	DatasetID string               `json:"datasetId"`
	Rows      int                  `json:"rows"`
	Criteria  model.FilterCriteria `json:"criteria"`
	UpdatedAt time.Time            `json:"updatedAt"`
	Updates   int                  `json:"updates"`
}

// Session is safe for concurrent use. Reads run in parallel, while filter
// changes and reloads are serialized so views reach the presenter in order.
type Session struct {
	mu        sync.RWMutex
	ds        *dataset.Dataset
	criteria  model.FilterCriteria
	opts      Options
	updatedAt time.Time
	updates   int
}

// New starts a session over ds with no filter applied.
func New(ds *dataset.Dataset, opts Options) *Session {
	return &Session{
		ds:       ds,
		criteria: model.AllCriteria(),
		opts:     opts,
	}
}

// Dataset returns the dataset currently analyzed.
func (s *Session) Dataset() *dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

// Criteria returns the current filter selection.
func (s *Session) Criteria() model.FilterCriteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// Status reports what the session holds.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{Criteria: s.criteria, UpdatedAt: s.updatedAt, Updates: s.updates}
	if s.ds != nil {
		st.DatasetID = s.ds.ID
		st.Rows = len(s.ds.Rows)
	}
	return st
}

// Apply makes criteria current, recomputes the dashboard and pushes every
// view to the presenter. Presenter failures are returned together with the
// computed dashboard.
func (s *Session) Apply(criteria model.FilterCriteria) (analytics.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ds == nil {
		return analytics.Dashboard{}, ErrNoDataset
	}
	s.criteria = criteria.Normalize()
	return s.update()
}

// Refresh recomputes the dashboard for the current criteria.
func (s *Session) Refresh() (analytics.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ds == nil {
		return analytics.Dashboard{}, ErrNoDataset
	}
	return s.update()
}

// Snapshot computes the dashboard for the current criteria without pushing
// views.
func (s *Session) Snapshot() (analytics.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return analytics.Dashboard{}, ErrNoDataset
	}
	return analytics.Compute(s.ds.Rows, s.criteria, s.opts.DashboardOptions), nil
}

// Preview computes the dashboard for criteria without changing the current
// selection.
func (s *Session) Preview(criteria model.FilterCriteria) (analytics.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return analytics.Dashboard{}, ErrNoDataset
	}
	return analytics.Compute(s.ds.Rows, criteria, s.opts.DashboardOptions), nil
}

// Subset returns the dataset's columns and the rows matching criteria, both
// taken from the same dataset even while a Reload runs.
func (s *Session) Subset(criteria model.FilterCriteria) ([]string, []model.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, nil, ErrNoDataset
	}
	return s.ds.Columns, analytics.Filter(s.ds.Rows, criteria), nil
}

// Reload replaces the dataset with a fresh load of src and re-applies the
// current criteria. When loading fails the previous dataset stays in place.
func (s *Session) Reload(ctx context.Context, loader Loader, src dataset.Source) (*dataset.Dataset, error) {
	ds, err := loader.Load(ctx, src)
	if err != nil {
		utils.LogError("dataset reload failed, keeping current data", err, map[string]interface{}{
			"source": src.String(),
		})
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
	if _, err := s.update(); err != nil {
		return ds, err
	}
	return ds, nil
}

// update must be called with the write lock held.
func (s *Session) update() (analytics.Dashboard, error) {
	start := time.Now()
	dash := analytics.Compute(s.ds.Rows, s.criteria, s.opts.DashboardOptions)
	s.updatedAt = time.Now().UTC()
	s.updates++

	var errs []error
	if s.opts.Presenter != nil {
		for _, v := range dash.Views {
			if err := s.opts.Presenter.UpsertView(v.Key, v); err != nil {
				errs = append(errs, fmt.Errorf("view %s: %w", v.Key, err))
			}
		}
	}

	if v, ok := analytics.FindView(dash.Views, "countries"); ok && v.Geo != nil && len(v.Geo.Unmapped) > 0 {
		names := make([]string, len(v.Geo.Unmapped))
		for i, g := range v.Geo.Unmapped {
			names[i] = g.Key
		}
		utils.LogWarn("countries without coordinates", map[string]interface{}{"countries": names})
	}

	utils.LogInfo("dashboard updated", map[string]interface{}{
		"year":     dash.Criteria.Year,
		"region":   dash.Criteria.Region,
		"severity": dash.Criteria.Severity,
		"matched":  dash.Summary.Count,
		"total":    dash.Total,
		"duration": time.Since(start).String(),
	})

	if err := errors.Join(errs...); err != nil {
		utils.LogError("failed to present views", err, nil)
		return dash, err
	}
	return dash, nil
}
