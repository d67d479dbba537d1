package booking

import (
	"context"
	"sort"
	"sync"
)

// InMemory is a mutex-guarded map store used by tests and local tooling. Its
// version semantics mirror the Postgres repository: a stale expected version
// fails with ErrVersionConflict.
type InMemory struct {
	mu       sync.Mutex
	bookings map[string]Booking
}

func NewInMemory() *InMemory {
	return &InMemory{bookings: make(map[string]Booking)}
}

func (m *InMemory) Create(ctx context.Context, b Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[b.ID]; ok {
		return ValidationError{Code: "BOOKING_EXISTS", Message: "booking id already exists"}
	}
	m.bookings[b.ID] = b.clone()
	return nil
}

func (m *InMemory) Get(ctx context.Context, id string) (Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	return b.clone(), nil
}

func (m *InMemory) Update(ctx context.Context, b Booking, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return ErrVersionConflict
	}
	m.bookings[b.ID] = b.clone()
	return nil
}

func (m *InMemory) ListByTenant(ctx context.Context, tenantID string) ([]Booking, error) {
	return m.list(func(b Booking) bool { return b.TenantID == tenantID })
}

func (m *InMemory) ListByLandlord(ctx context.Context, landlordID string) ([]Booking, error) {
	return m.list(func(b Booking) bool { return b.LandlordID == landlordID })
}

func (m *InMemory) ListAll(ctx context.Context) ([]Booking, error) {
	return m.list(func(Booking) bool { return true })
}

func (m *InMemory) list(keep func(Booking) bool) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		if keep(b) {
			out = append(out, b.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
