// Package incidenttest provides an in-memory incident.Store for tests.
package incidenttest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dynoinc/respond/internal/incident"
)

type MemoryStore struct {
	mu        sync.Mutex
	seq       int
	incidents map[string]*incident.Incident

	// LoadHook runs before every Load, outside the store lock.
	LoadHook func(id string)
	// SaveErr, when set, makes Save fail without writing anything.
	SaveErr error
	// ListErr, when set, makes List fail.
	ListErr error

	Saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{incidents: make(map[string]*incident.Incident)}
}

func (m *MemoryStore) Create(_ context.Context, inc *incident.Incident) (*incident.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	c := inc.Clone()
	c.ID = fmt.Sprintf("INC-%d", m.seq)
	m.incidents[c.ID] = c
	return c.Clone(), nil
}

// Put stores inc as-is, keeping its ID.
func (m *MemoryStore) Put(inc *incident.Incident) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incidents[inc.ID] = inc.Clone()
}

func (m *MemoryStore) Load(_ context.Context, id string) (*incident.Incident, error) {
	if m.LoadHook != nil {
		m.LoadHook(id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	inc, ok := m.incidents[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, incident.ErrNotFound)
	}
	return inc.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, inc *incident.Incident) (*incident.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	if _, ok := m.incidents[inc.ID]; !ok {
		return nil, fmt.Errorf("%s: %w", inc.ID, incident.ErrNotFound)
	}
	m.Saves++
	m.incidents[inc.ID] = inc.Clone()
	return inc.Clone(), nil
}

func (m *MemoryStore) List(_ context.Context, filter incident.ListFilter) ([]incident.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var out []incident.Incident
	for _, inc := range m.incidents {
		if filter.Scope.Match(inc.Status) {
			out = append(out, *inc.Clone())
		}
	}
	slices.SortFunc(out, func(a, b incident.Incident) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Seed creates an incident with the given status and severity.
func (m *MemoryStore) Seed(name string, status incident.Status, severity incident.Severity) *incident.Incident {
	inc, _ := m.Create(context.Background(), &incident.Incident{
		Name:     name,
		Type:     incident.TypeOther,
		Status:   status,
		Severity: severity,
	})
	return inc
}
