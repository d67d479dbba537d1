package dispute

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusOpen            Status = "open"
	StatusInvestigating   Status = "investigating"
	StatusPendingResponse Status = "pending_response"
	StatusResolved        Status = "resolved"
	StatusClosed          Status = "closed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusInvestigating, StatusPendingResponse, StatusResolved, StatusClosed:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown dispute status %q", s)
}

// Party identifies which side of the dispute a resolution favours.
type Party string

const (
	PartyComplainant Party = "complainant"
	PartyRespondent  Party = "respondent"
)

func ParseParty(s string) (Party, error) {
	switch Party(s) {
	case PartyComplainant, PartyRespondent:
		return Party(s), nil
	}
	return "", fmt.Errorf("unknown party %q", s)
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusOpen: {
		StatusInvestigating:   true,
		StatusPendingResponse: true,
		StatusResolved:        true,
		StatusClosed:          true,
	},
	StatusInvestigating: {
		StatusPendingResponse: true,
		StatusResolved:        true,
		StatusClosed:          true,
	},
	StatusPendingResponse: {
		StatusInvestigating: true,
		StatusResolved:      true,
		StatusClosed:        true,
	},
	StatusResolved: {},
	StatusClosed:   {},
}

func CanTransition(from, to Status) bool {
	return allowedTransitions[from][to]
}

func Terminal(s Status) bool {
	return s == StatusResolved || s == StatusClosed
}

// IllegalTransitionError reports a dispute action attempted from a status
// that does not allow it.
type IllegalTransitionError struct {
	Action string
	Status Status
}

func (e IllegalTransitionError) Error() string {
	return fmt.Sprintf("action %q is not allowed while dispute is %s", e.Action, e.Status)
}

// Dispute is an admin-visible escalation between two parties. It may point at
// the booking or property the complaint is about, and once a resolution path
// starts it carries the conversation thread both parties were pulled into.
type Dispute struct {
	ID            string    `json:"id"`
	ComplainantID string    `json:"complainantId"`
	RespondentID  string    `json:"respondentId"`
	BookingID     string    `json:"bookingId,omitempty"`
	PropertyID    string    `json:"propertyId,omitempty"`
	Subject       string    `json:"subject"`
	Description   string    `json:"description"`
	Status        Status    `json:"status"`
	ThreadID      string    `json:"threadId,omitempty"`
	Outcome       Party     `json:"outcome,omitempty"`
	Resolution    string    `json:"resolution,omitempty"`
	Documents     []string  `json:"documents,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Advance moves the dispute through its investigation states.
func Advance(d Dispute, to Status, now time.Time) (Dispute, error) {
	if Terminal(to) {
		return Dispute{}, IllegalTransitionError{Action: "advance", Status: d.Status}
	}
	if !CanTransition(d.Status, to) {
		return Dispute{}, IllegalTransitionError{Action: "advance", Status: d.Status}
	}
	d.Status = to
	d.UpdatedAt = now
	return d, nil
}

// ResolveInFavorOf terminates the dispute with a verdict for one party.
// Legal only from the three non-terminal states.
func ResolveInFavorOf(d Dispute, party Party, note string, now time.Time) (Dispute, error) {
	if !CanTransition(d.Status, StatusResolved) {
		return Dispute{}, IllegalTransitionError{Action: "resolveInFavorOf", Status: d.Status}
	}
	d.Status = StatusResolved
	d.Outcome = party
	d.Resolution = note
	d.UpdatedAt = now
	return d, nil
}

// CloseWithoutResolution terminates the dispute with no verdict.
func CloseWithoutResolution(d Dispute, note string, now time.Time) (Dispute, error) {
	if !CanTransition(d.Status, StatusClosed) {
		return Dispute{}, IllegalTransitionError{Action: "closeWithoutResolution", Status: d.Status}
	}
	d.Status = StatusClosed
	d.Resolution = note
	d.UpdatedAt = now
	return d, nil
}
