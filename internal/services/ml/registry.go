package ml

import (
	"sort"
	"strings"
	"sync"

	"WalkSim/internal/domain/models"
)

// Registry holds the current model per symbol. Retraining swaps the entry
// whole; readers keep using the model they already fetched.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*TrainedModel
}

func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*TrainedModel)}
}

// Get returns the current model for symbol.
func (r *Registry) Get(symbol string) (*TrainedModel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[strings.ToUpper(symbol)]
	return m, ok
}

// Replace installs m as the current model for its symbol and returns the
// previous one, if any.
func (r *Registry) Replace(m *TrainedModel) *TrainedModel {
	if m == nil {
		return nil
	}
	key := strings.ToUpper(m.Symbol())
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.models[key]
	r.models[key] = m
	return prev
}

func (r *Registry) Remove(symbol string) {
	r.mu.Lock()
	delete(r.models, strings.ToUpper(symbol))
	r.mu.Unlock()
}

// Symbols lists registered symbols in sorted order.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.models))
	for s := range r.models {
		out = append(out, s)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Snapshot summarizes every registered model.
func (r *Registry) Snapshot() map[string]models.ModelSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]models.ModelSummary, len(r.models))
	for s, m := range r.models {
		out[s] = m.Summary()
	}
	return out
}
