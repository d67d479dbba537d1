package booking

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeRequest describes one payment to collect before a payment-gated
// transition may be applied.
type ChargeRequest struct {
	BookingID string
	Payer     string
	Purpose   string
	Amount    decimal.Decimal
	Reference string
}

// Processor collects a payment. A nil error means the charge is confirmed;
// anything else leaves the booking untouched.
type Processor interface {
	Charge(ctx context.Context, req ChargeRequest) error
}

// DocumentGenerator produces the tenancy agreement document for a booking.
type DocumentGenerator interface {
	GenerateAgreement(ctx context.Context, bookingID string) (string, error)
}

// Notifier tells the counter-party about a transition. Notification is
// best-effort: a failure is logged, never rolled into the transition result.
type Notifier interface {
	NotifyStatusChanged(ctx context.Context, b Booking, entry TimelineEntry) error
}

// Recorder counts transition outcomes for the metrics endpoint.
type Recorder interface {
	TransitionApplied(action string)
	TransitionRejected(action string)
}

// Service owns the booking lifecycle: it validates and applies transitions,
// collects payments and documents from collaborators first, persists with an
// optimistic version guard, and notifies the counter-party afterwards.
type Service struct {
	Store     Store
	Processor Processor
	Documents DocumentGenerator
	Notifier  Notifier
	Metrics   Recorder

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RequestViewing creates a pending booking for a tenant against a property.
func (s *Service) RequestViewing(ctx context.Context, propertyID, landlordID, tenantID string, typ Type) (Booking, error) {
	if typ != TypeLongTerm && typ != TypeShortlet {
		return Booking{}, ValidationError{Code: "BOOKING_TYPE_INVALID", Message: "type must be long_term or shortlet"}
	}
	b := New(uuid.NewString(), propertyID, landlordID, tenantID, typ, s.now())
	if err := s.Store.Create(ctx, b); err != nil {
		return Booking{}, err
	}
	s.notify(ctx, b)
	return b, nil
}

// Do executes one lifecycle action against the booking.
//
// Ordering contract: guards and payload validation run first and reject with
// the booking unchanged; external collaborators (charge, document generation)
// run next and their failure also leaves the booking unchanged; only then is
// the transition persisted, atomically with its timeline entry.
func (s *Service) Do(ctx context.Context, id string, act Action, p Payload) (Booking, error) {
	cur, err := s.Store.Get(ctx, id)
	if err != nil {
		return Booking{}, err
	}

	// sendAgreement generates the document before the transition is legal.
	if act == ActionSendAgreement && p.DocumentURL == "" {
		// Pre-check the guard so a doomed action never generates a document.
		if cur.Type != TypeLongTerm || cur.Status != StatusApproved {
			s.rejected(act)
			return Booking{}, IllegalTransitionError{Action: act, Status: cur.Status}
		}
		url, err := s.Documents.GenerateAgreement(ctx, cur.ID)
		if err != nil {
			s.rejected(act)
			return Booking{}, ExternalOperationError{Op: "generate_agreement", Err: err}
		}
		p.DocumentURL = url
	}

	next, err := Apply(cur, act, p, s.now())
	if err != nil {
		s.rejected(act)
		return Booking{}, err
	}

	if req, ok := chargeFor(cur, act, p); ok {
		if err := s.Processor.Charge(ctx, req); err != nil {
			s.rejected(act)
			return Booking{}, ExternalOperationError{Op: string(act), Err: err}
		}
	}

	if err := s.Store.Update(ctx, next, cur.Version); err != nil {
		s.rejected(act)
		return Booking{}, err
	}

	if s.Metrics != nil {
		s.Metrics.TransitionApplied(string(act))
	}
	s.notify(ctx, next)
	return next, nil
}

// chargeFor maps payment-gated actions to the charge they require.
func chargeFor(b Booking, act Action, p Payload) (ChargeRequest, bool) {
	req := ChargeRequest{BookingID: b.ID, Payer: b.TenantID, Reference: p.PaymentReference}
	switch act {
	case ActionPaySignOffFee:
		if b.SignOffFee == nil {
			return ChargeRequest{}, false
		}
		req.Purpose = "sign_off_fee"
		req.Amount = b.SignOffFee.Amount
		return req, true
	case ActionPayRental:
		if b.Payment == nil {
			return ChargeRequest{}, false
		}
		req.Purpose = "rental_payment"
		req.Amount = b.Payment.Amount
		return req, true
	case ActionPayMoveIn:
		if b.Payment == nil {
			return ChargeRequest{}, false
		}
		req.Purpose = "move_in_payment"
		req.Amount = b.Payment.Amount
		return req, true
	}
	return ChargeRequest{}, false
}

func (s *Service) rejected(act Action) {
	if s.Metrics != nil {
		s.Metrics.TransitionRejected(string(act))
	}
}

func (s *Service) notify(ctx context.Context, b Booking) {
	if s.Notifier == nil || len(b.Timeline) == 0 {
		return
	}
	entry := b.Timeline[len(b.Timeline)-1]
	if err := s.Notifier.NotifyStatusChanged(ctx, b, entry); err != nil {
		log.Printf("booking %s: notify failed: %v", b.ID, err)
	}
}
