package booking

import "fmt"

type Status string

const (
	StatusPending              Status = "pending"
	StatusViewingScheduled     Status = "viewing_scheduled"
	StatusViewingCompleted     Status = "viewing_completed"
	StatusInspectionDeclined   Status = "inspection_declined"
	StatusInspectionCompleted  Status = "inspection_completed"
	StatusSignOffFeePending    Status = "sign_off_fee_pending"
	StatusSignOffFeeCompleted  Status = "sign_off_fee_completed"
	StatusRentalPaymentPending Status = "rental_payment_pending"
	StatusApplicationSubmitted Status = "application_submitted"
	StatusApproved             Status = "approved"
	StatusAgreementSent        Status = "agreement_sent"
	StatusAgreementSigned      Status = "agreement_signed"
	StatusPaymentPending       Status = "payment_pending"
	StatusPaymentCompleted     Status = "payment_completed"
	StatusActive               Status = "active"
	StatusCompleted            Status = "completed"
	StatusCancelled            Status = "cancelled"
	StatusRejected             Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusViewingScheduled, StatusViewingCompleted,
		StatusInspectionDeclined, StatusInspectionCompleted,
		StatusSignOffFeePending, StatusSignOffFeeCompleted,
		StatusRentalPaymentPending, StatusApplicationSubmitted,
		StatusApproved, StatusAgreementSent, StatusAgreementSigned,
		StatusPaymentPending, StatusPaymentCompleted,
		StatusActive, StatusCompleted, StatusCancelled, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

// allowedTransitions is the closed transition table for the long-term flow.
// The shortlet flow is a subset: it skips the sign-off fee and agreement
// stages (see machine.go for the action-level routing). cancelled is reachable
// from every non-terminal state and is therefore handled in CanTransition
// rather than enumerated here.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:              {StatusViewingScheduled: true},
	StatusViewingScheduled:     {StatusViewingCompleted: true},
	StatusViewingCompleted:     {StatusInspectionDeclined: true, StatusInspectionCompleted: true, StatusSignOffFeePending: true},
	StatusInspectionCompleted:  {StatusRentalPaymentPending: true, StatusApplicationSubmitted: true},
	StatusSignOffFeePending:    {StatusSignOffFeeCompleted: true},
	StatusSignOffFeeCompleted:  {StatusRentalPaymentPending: true},
	StatusRentalPaymentPending: {StatusApplicationSubmitted: true},
	StatusApplicationSubmitted: {StatusApproved: true, StatusRejected: true},
	StatusApproved:             {StatusAgreementSent: true, StatusPaymentPending: true, StatusRejected: true},
	StatusAgreementSent:        {StatusAgreementSigned: true},
	StatusAgreementSigned:      {StatusPaymentPending: true},
	StatusPaymentPending:       {StatusPaymentCompleted: true},
	StatusPaymentCompleted:     {StatusActive: true},
	StatusActive:               {StatusCompleted: true},
	StatusInspectionDeclined:   {},
	StatusCompleted:            {},
	StatusCancelled:            {},
	StatusRejected:             {},
}

// Terminal reports whether no further transition can leave s.
func Terminal(s Status) bool {
	switch s {
	case StatusInspectionDeclined, StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

func CanTransition(from, to Status) bool {
	if to == StatusCancelled {
		return !Terminal(from)
	}
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}
