// Package render hands computed views to whatever displays them.
package render

import (
	"errors"
	"slices"
	"sync"

	"go-accident-dashboard/internal/analytics"
)

// Presenter receives views. UpsertView replaces the view stored under key,
// or creates it the first time the key is seen.
type Presenter interface {
	UpsertView(key string, view analytics.View) error
}

// Registry is an in-memory Presenter holding the latest view per key.
type Registry struct {
	mu      sync.RWMutex
	views   map[string]analytics.View
	order   []string
	updates map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		views:   make(map[string]analytics.View),
		updates: make(map[string]int),
	}
}

// UpsertView implements Presenter.
func (r *Registry) UpsertView(key string, view analytics.View) error {
	if key == "" {
		return errors.New("view key is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.views[key]; exists {
		r.updates[key]++
	} else {
		r.order = append(r.order, key)
	}
	r.views[key] = view
	return nil
}

// Get returns the latest view stored under key.
func (r *Registry) Get(key string) (analytics.View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[key]
	return v, ok
}

// Keys lists stored keys in the order they were first created.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Updates reports how many times key was updated after being created.
func (r *Registry) Updates(key string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updates[key]
}

// multi fans views out to several presenters.
type multi []Presenter

// Multi returns a Presenter forwarding every view to each of presenters.
// All presenters are called even when some fail.
func Multi(presenters ...Presenter) Presenter {
	return multi(presenters)
}

func (m multi) UpsertView(key string, view analytics.View) error {
	var errs []error
	for _, p := range m {
		if err := p.UpsertView(key, view); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
