package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store.
type Memory struct {
	mu       sync.RWMutex
	profiles map[string]*ProfileRecord
	leads    map[string]*LeadRecord
}

func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[string]*ProfileRecord),
		leads:    make(map[string]*LeadRecord),
	}
}

func (m *Memory) SaveProfile(ctx context.Context, rec *ProfileRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.profiles[rec.ID] = &cp
	return nil
}

func (m *Memory) GetProfile(ctx context.Context, id string) (*ProfileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) SaveLead(ctx context.Context, rec *LeadRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.leads[rec.ID] = &cp
	return nil
}

func (m *Memory) GetLead(ctx context.Context, id string) (*LeadRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.leads[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) ListLeads(ctx context.Context, profileID string) ([]*LeadRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*LeadRecord
	for _, rec := range m.leads {
		if profileID != "" && rec.ProfileID != profileID {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
