package booking

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Action string

const (
	ActionScheduleViewing      Action = "schedule_viewing"
	ActionCompleteViewing      Action = "complete_viewing"
	ActionProceed              Action = "proceed"
	ActionDecline              Action = "decline"
	ActionPaySignOffFee        Action = "pay_sign_off_fee"
	ActionSubmitApplication    Action = "submit_application"
	ActionPayRental            Action = "pay_rental"
	ActionApprove              Action = "approve"
	ActionReject               Action = "reject"
	ActionSendAgreement        Action = "send_agreement"
	ActionSignAgreement        Action = "sign_agreement"
	ActionRequestMoveInPayment Action = "request_move_in_payment"
	ActionPayMoveIn            Action = "pay_move_in"
	ActionActivate             Action = "activate"
	ActionComplete             Action = "complete"
	ActionCancel               Action = "cancel"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionScheduleViewing, ActionCompleteViewing, ActionProceed, ActionDecline,
		ActionPaySignOffFee, ActionSubmitApplication, ActionPayRental,
		ActionApprove, ActionReject, ActionSendAgreement, ActionSignAgreement,
		ActionRequestMoveInPayment, ActionPayMoveIn,
		ActionActivate, ActionComplete, ActionCancel:
		return Action(s), nil
	default:
		return "", ValidationError{Code: "ACTION_INVALID", Message: "unknown action: " + s}
	}
}

// Payload carries the optional inputs an action may require. Fields not
// relevant to the action are ignored.
type Payload struct {
	Note             string           `json:"note,omitempty"`
	Reason           string           `json:"reason,omitempty"`
	SignOffFeeAmount *decimal.Decimal `json:"signOffFeeAmount,omitempty"`
	PaymentAmount    *decimal.Decimal `json:"paymentAmount,omitempty"`
	Application      *Application     `json:"application,omitempty"`
	DocumentURL      string           `json:"documentUrl,omitempty"`

	// PaymentReference is the processor transaction reference for
	// payment-gated actions; the service verifies it before applying.
	PaymentReference string `json:"paymentReference,omitempty"`
}

// Apply runs one action against a booking and returns the resulting value.
// It never mutates its input: on any error the caller's booking is exactly as
// it was, and on success the returned booking is a fresh copy with the status
// updated, a timeline entry appended and the version bumped.
//
// Apply is pure. Side effects the action implies (charging, document
// generation, notification) are owned by Service, which must confirm them
// before calling Apply.
func Apply(b Booking, act Action, p Payload, now time.Time) (Booking, error) {
	next, note, err := route(b, act, p)
	if err != nil {
		return Booking{}, err
	}
	if !CanTransition(b.Status, next) {
		return Booking{}, IllegalTransitionError{Action: act, Status: b.Status}
	}

	out := b.clone()
	out.Status = next

	switch act {
	case ActionCompleteViewing:
		if p.SignOffFeeAmount != nil {
			out.SignOffFee = &Charge{Amount: *p.SignOffFeeAmount}
		}
	case ActionPaySignOffFee:
		out.SignOffFee.Paid = true
	case ActionSubmitApplication:
		a := *p.Application
		out.Application = &a
		if p.PaymentAmount != nil {
			out.Payment = &Charge{Amount: *p.PaymentAmount}
		}
	case ActionPayRental, ActionPayMoveIn:
		out.Payment.Paid = true
	case ActionReject:
		out.RejectionReason = strings.TrimSpace(p.Reason)
	case ActionCancel:
		out.CancellationReason = strings.TrimSpace(p.Reason)
	case ActionSendAgreement:
		out.Agreement = &Agreement{DocumentURL: p.DocumentURL}
	case ActionSignAgreement:
		out.Agreement.Signed = true
	case ActionRequestMoveInPayment:
		out.Payment = &Charge{Amount: *p.PaymentAmount}
	}

	out.Timeline = append(out.Timeline, TimelineEntry{Status: next, OccurredAt: now, Note: note})
	out.Version = b.Version + 1
	out.UpdatedAt = now
	return out, nil
}

// route resolves the target status for an action and validates its payload.
// It rejects before any mutation; guard failures map to IllegalTransitionError
// and payload problems to ValidationError.
func route(b Booking, act Action, p Payload) (Status, string, error) {
	illegal := func() (Status, string, error) {
		return "", "", IllegalTransitionError{Action: act, Status: b.Status}
	}

	switch act {
	case ActionScheduleViewing:
		if b.Status != StatusPending {
			return illegal()
		}
		return StatusViewingScheduled, noteOr(p, "viewing scheduled"), nil

	case ActionCompleteViewing:
		if b.Status != StatusViewingScheduled {
			return illegal()
		}
		if p.SignOffFeeAmount != nil && !p.SignOffFeeAmount.GreaterThan(decimal.Zero) {
			return "", "", ValidationError{Code: "SIGN_OFF_FEE_INVALID", Message: "sign-off fee must be > 0"}
		}
		return StatusViewingCompleted, noteOr(p, "viewing completed"), nil

	case ActionProceed:
		if b.Status != StatusViewingCompleted {
			return illegal()
		}
		if b.Type == TypeLongTerm && b.SignOffFee != nil && b.SignOffFee.Amount.GreaterThan(decimal.Zero) {
			return StatusSignOffFeePending, "tenant proceeding; sign-off fee due", nil
		}
		return StatusInspectionCompleted, "inspection completed", nil

	case ActionDecline:
		if b.Status != StatusViewingCompleted {
			return illegal()
		}
		return StatusInspectionDeclined, noteOr(p, "tenant declined after inspection"), nil

	case ActionPaySignOffFee:
		if b.Status != StatusSignOffFeePending {
			return illegal()
		}
		if b.SignOffFee == nil || !b.SignOffFee.Amount.GreaterThan(decimal.Zero) {
			return "", "", ValidationError{Code: "SIGN_OFF_FEE_MISSING", Message: "sign-off fee amount must be > 0"}
		}
		return StatusSignOffFeeCompleted, "sign-off fee paid", nil

	case ActionSubmitApplication:
		if p.Application == nil {
			return "", "", ValidationError{Code: "APPLICATION_REQUIRED", Message: "application details are required"}
		}
		if b.Type == TypeShortlet {
			if b.Status != StatusInspectionCompleted {
				return illegal()
			}
			return StatusApplicationSubmitted, "application submitted", nil
		}
		if b.Status != StatusInspectionCompleted && b.Status != StatusSignOffFeeCompleted {
			return illegal()
		}
		if p.PaymentAmount == nil || !p.PaymentAmount.GreaterThan(decimal.Zero) {
			return "", "", ValidationError{Code: "RENTAL_AMOUNT_INVALID", Message: "rental payment amount must be > 0"}
		}
		return StatusRentalPaymentPending, "application received; rental payment due", nil

	case ActionPayRental:
		if b.Status != StatusRentalPaymentPending {
			return illegal()
		}
		if b.Payment == nil || !b.Payment.Amount.GreaterThan(decimal.Zero) {
			return "", "", ValidationError{Code: "PAYMENT_AMOUNT_INVALID", Message: "payment amount must be > 0"}
		}
		return StatusApplicationSubmitted, "rental payment confirmed", nil

	case ActionApprove:
		if b.Status != StatusApplicationSubmitted {
			return illegal()
		}
		return StatusApproved, noteOr(p, "application approved"), nil

	case ActionReject:
		if b.Status != StatusApplicationSubmitted && b.Status != StatusApproved {
			return illegal()
		}
		if strings.TrimSpace(p.Reason) == "" {
			return "", "", ValidationError{Code: "REJECTION_REASON_REQUIRED", Message: "rejection reason is required"}
		}
		return StatusRejected, "application rejected", nil

	case ActionSendAgreement:
		if b.Type != TypeLongTerm || b.Status != StatusApproved {
			return illegal()
		}
		if strings.TrimSpace(p.DocumentURL) == "" {
			return "", "", ValidationError{Code: "AGREEMENT_DOCUMENT_REQUIRED", Message: "agreement document url is required"}
		}
		return StatusAgreementSent, "tenancy agreement sent", nil

	case ActionSignAgreement:
		if b.Status != StatusAgreementSent {
			return illegal()
		}
		return StatusAgreementSigned, "tenancy agreement signed", nil

	case ActionRequestMoveInPayment:
		want := StatusAgreementSigned
		if b.Type == TypeShortlet {
			want = StatusApproved
		}
		if b.Status != want {
			return illegal()
		}
		if p.PaymentAmount == nil || !p.PaymentAmount.GreaterThan(decimal.Zero) {
			return "", "", ValidationError{Code: "PAYMENT_AMOUNT_INVALID", Message: "payment amount must be > 0"}
		}
		return StatusPaymentPending, "move-in payment due", nil

	case ActionPayMoveIn:
		if b.Status != StatusPaymentPending {
			return illegal()
		}
		if b.Payment == nil || !b.Payment.Amount.GreaterThan(decimal.Zero) {
			return "", "", ValidationError{Code: "PAYMENT_AMOUNT_INVALID", Message: "payment amount must be > 0"}
		}
		return StatusPaymentCompleted, "move-in payment confirmed", nil

	case ActionActivate:
		if b.Status != StatusPaymentCompleted {
			return illegal()
		}
		return StatusActive, "tenancy active", nil

	case ActionComplete:
		if b.Status != StatusActive {
			return illegal()
		}
		return StatusCompleted, "tenancy completed", nil

	case ActionCancel:
		if Terminal(b.Status) {
			return illegal()
		}
		if strings.TrimSpace(p.Reason) == "" {
			return "", "", ValidationError{Code: "CANCELLATION_REASON_REQUIRED", Message: "cancellation reason is required"}
		}
		return StatusCancelled, "booking cancelled", nil

	default:
		return "", "", ValidationError{Code: "ACTION_INVALID", Message: "unknown action: " + string(act)}
	}
}

func noteOr(p Payload, fallback string) string {
	if strings.TrimSpace(p.Note) != "" {
		return strings.TrimSpace(p.Note)
	}
	return fallback
}
