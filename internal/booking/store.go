package booking

import "context"

// Store persists bookings. Update is an optimistic write: it must fail with
// ErrVersionConflict when the stored version no longer matches
// expectedVersion, and must commit the booking row and its new timeline entry
// atomically or not at all.
type Store interface {
	Create(ctx context.Context, b Booking) error
	Get(ctx context.Context, id string) (Booking, error)
	Update(ctx context.Context, b Booking, expectedVersion int64) error
	ListByTenant(ctx context.Context, tenantID string) ([]Booking, error)
	ListByLandlord(ctx context.Context, landlordID string) ([]Booking, error)
	ListAll(ctx context.Context) ([]Booking, error)
}
