package dispute

import (
	"errors"
	"testing"
	"time"
)

func sample(status Status) Dispute {
	return Dispute{
		ID:            "d-1",
		ComplainantID: "tenant-1",
		RespondentID:  "landlord-1",
		Subject:       "deposit not returned",
		Status:        status,
	}
}

func TestResolveLegalFromNonTerminalStates(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, from := range []Status{StatusOpen, StatusInvestigating, StatusPendingResponse} {
		d, err := ResolveInFavorOf(sample(from), PartyComplainant, "refund deposit", now)
		if err != nil {
			t.Fatalf("resolve from %s: unexpected error %v", from, err)
		}
		if d.Status != StatusResolved {
			t.Fatalf("expected resolved, got %s", d.Status)
		}
		if d.Outcome != PartyComplainant {
			t.Fatalf("expected outcome complainant, got %s", d.Outcome)
		}
	}
}

func TestCloseAfterResolveIsIllegal(t *testing.T) {
	now := time.Now()
	d, err := ResolveInFavorOf(sample(StatusOpen), PartyComplainant, "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = CloseWithoutResolution(d, "already handled", now)
	var ite IllegalTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if ite.Status != StatusResolved {
		t.Fatalf("expected error to carry resolved, got %s", ite.Status)
	}
}

func TestAdvanceRejectsTerminalTargets(t *testing.T) {
	now := time.Now()
	if _, err := Advance(sample(StatusOpen), StatusResolved, now); err == nil {
		t.Fatal("expected advance to reject a terminal target")
	}
	if _, err := Advance(sample(StatusClosed), StatusInvestigating, now); err == nil {
		t.Fatal("expected advance from closed to fail")
	}
}

func TestAdvancePath(t *testing.T) {
	now := time.Now()
	d := sample(StatusOpen)

	d, err := Advance(d, StatusInvestigating, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, err = Advance(d, StatusPendingResponse, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Respondent answered, investigation resumes.
	d, err = Advance(d, StatusInvestigating, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != StatusInvestigating {
		t.Fatalf("expected investigating, got %s", d.Status)
	}
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusOpen, StatusInvestigating, true},
		{StatusOpen, StatusClosed, true},
		{StatusPendingResponse, StatusInvestigating, true},
		{StatusResolved, StatusClosed, false},
		{StatusClosed, StatusResolved, false},
		{StatusInvestigating, StatusOpen, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
