package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeLongTerm Type = "long_term"
	TypeShortlet Type = "shortlet"
)

// Charge is a monetary obligation attached to a booking stage.
type Charge struct {
	Amount decimal.Decimal `json:"amount"`
	Paid   bool            `json:"paid"`
}

// Application is the tenant's rental application, present once submitted.
type Application struct {
	MoveInDate     time.Time       `json:"moveInDate"`
	DurationMonths int             `json:"durationMonths,omitempty"` // long-term
	StayNights     int             `json:"stayNights,omitempty"`     // shortlet
	MinBudget      decimal.Decimal `json:"minBudget"`
	Notes          string          `json:"notes,omitempty"`
}

// Agreement carries the tenancy agreement document and its signing state.
type Agreement struct {
	DocumentURL string `json:"documentUrl"`
	Signed      bool   `json:"signed"`
}

// TimelineEntry is one immutable step in a booking's history.
// Entries are append-only and oldest-first; the last entry's status always
// equals the booking's current status.
type TimelineEntry struct {
	Status     Status    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
	Note       string    `json:"note,omitempty"`
}

// Booking is one tenant's interest in one property, from viewing request
// through tenancy. It is mutated only through Apply; handlers and services
// must treat values as immutable snapshots.
type Booking struct {
	ID         string `json:"id"`
	PropertyID string `json:"propertyId"`
	LandlordID string `json:"landlordId"`
	TenantID   string `json:"tenantId"`

	Type   Type   `json:"type"`
	Status Status `json:"status"`

	Application *Application `json:"application,omitempty"`
	SignOffFee  *Charge      `json:"signOffFee,omitempty"`
	Payment     *Charge      `json:"payment,omitempty"`
	Agreement   *Agreement   `json:"agreement,omitempty"`

	Timeline []TimelineEntry `json:"timeline"`

	RejectionReason    string `json:"rejectionReason,omitempty"`
	CancellationReason string `json:"cancellationReason,omitempty"`

	// Version guards against lost updates when two writers race on the same
	// booking; the store rejects a write whose expected version is stale.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New returns a pending booking with its opening timeline entry.
func New(id, propertyID, landlordID, tenantID string, typ Type, now time.Time) Booking {
	return Booking{
		ID:         id,
		PropertyID: propertyID,
		LandlordID: landlordID,
		TenantID:   tenantID,
		Type:       typ,
		Status:     StatusPending,
		Timeline:   []TimelineEntry{{Status: StatusPending, OccurredAt: now, Note: "viewing requested"}},
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// clone deep-copies b so Apply never aliases the caller's value.
func (b Booking) clone() Booking {
	out := b
	if b.Application != nil {
		a := *b.Application
		out.Application = &a
	}
	if b.SignOffFee != nil {
		c := *b.SignOffFee
		out.SignOffFee = &c
	}
	if b.Payment != nil {
		c := *b.Payment
		out.Payment = &c
	}
	if b.Agreement != nil {
		ag := *b.Agreement
		out.Agreement = &ag
	}
	out.Timeline = make([]TimelineEntry, len(b.Timeline))
	copy(out.Timeline, b.Timeline)
	return out
}
