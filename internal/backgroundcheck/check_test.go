package backgroundcheck

import (
	"testing"
	"time"
)

func fourDocCase() Case {
	return Case{
		ID:     "c-1",
		UserID: "u-1",
		Status: CasePending,
		Documents: []Document{
			{ID: "d-1", Type: DocIdentity, Status: DocPending},
			{ID: "d-2", Type: DocEmployment, Status: DocPending},
			{ID: "d-3", Type: DocFinancial, Status: DocPending},
			{ID: "d-4", Type: DocCompetency, Status: DocPending},
		},
	}
}

func TestProgress(t *testing.T) {
	cases := []struct {
		name     string
		statuses []DocumentStatus
		want     int
	}{
		{"none approved", []DocumentStatus{DocPending, DocPending, DocPending, DocPending}, 0},
		{"three of four", []DocumentStatus{DocApproved, DocApproved, DocApproved, DocPending}, 75},
		{"all approved", []DocumentStatus{DocApproved, DocApproved, DocApproved, DocApproved}, 100},
		{"one of three rounds", []DocumentStatus{DocApproved, DocPending, DocPending}, 33},
		{"two of three rounds", []DocumentStatus{DocApproved, DocApproved, DocRejected}, 67},
	}
	for _, c := range cases {
		docs := make([]Document, len(c.statuses))
		for i, s := range c.statuses {
			docs[i] = Document{ID: "d", Status: s}
		}
		if got := Progress(docs); got != c.want {
			t.Fatalf("%s: Progress = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestProgressEmptyCase(t *testing.T) {
	if got := Progress(nil); got != 0 {
		t.Fatalf("expected 0 for empty case, got %d", got)
	}
}

func TestReviewDocumentAutoAdvancesAtFull(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	c := fourDocCase()
	var err error
	for _, id := range []string{"d-1", "d-2", "d-3"} {
		c, err = ReviewDocument(c, id, DocApproved, "", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Status != CasePending {
			t.Fatalf("case advanced early at %s: %s", id, c.Status)
		}
	}

	c, err = ReviewDocument(c, "d-4", DocApproved, "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != CaseInReview {
		t.Fatalf("expected in_review at 100%%, got %s", c.Status)
	}
}

func TestReviewDocumentOnRejectedCase(t *testing.T) {
	c := fourDocCase()
	c.Status = CaseRejected
	if _, err := ReviewDocument(c, "d-1", DocApproved, "", time.Now()); err == nil {
		t.Fatal("expected review on a rejected case to fail")
	}
}

func TestReviewDocumentDoesNotMutateInput(t *testing.T) {
	c := fourDocCase()
	_, err := ReviewDocument(c, "d-1", DocApproved, "looks fine", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Documents[0].Status != DocPending {
		t.Fatal("input case was mutated")
	}
}

func TestApproveCaseRequiresFullProgress(t *testing.T) {
	now := time.Now()
	c := fourDocCase()
	var err error
	for _, id := range []string{"d-1", "d-2", "d-3"} {
		c, err = ReviewDocument(c, id, DocApproved, "", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if _, err := ApproveCase(c, now); err == nil {
		t.Fatal("expected approve at 75% to fail")
	}

	c, err = ReviewDocument(c, "d-4", DocApproved, "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err = ApproveCase(c, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != CaseApproved {
		t.Fatalf("expected approved, got %s", c.Status)
	}
}

func TestRejectCaseLegalAtAnyProgress(t *testing.T) {
	now := time.Now()
	c, err := RejectCase(fourDocCase(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != CaseRejected {
		t.Fatalf("expected rejected, got %s", c.Status)
	}

	// Terminal states cannot be re-decided.
	if _, err := ApproveCase(c, now); err == nil {
		t.Fatal("expected approve on rejected case to fail")
	}
	if _, err := RejectCase(c, now); err == nil {
		t.Fatal("expected reject on rejected case to fail")
	}
}

func TestAddDocumentResetsReviewedCase(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	c := fourDocCase()
	for i := range c.Documents {
		c.Documents[i].Status = DocApproved
	}
	c.Status = CaseInReview

	next, err := AddDocument(c, Document{ID: "d-5", Type: DocWorkshop, Status: DocPending, SubmittedAt: now})
	if err != nil {
		t.Fatalf("add document: %v", err)
	}
	if next.Status != CasePending {
		t.Fatalf("expected case back to pending, got %s", next.Status)
	}
	if got := Progress(next.Documents); got != 80 {
		t.Fatalf("expected progress 80 with the new pending document, got %d", got)
	}
	if len(c.Documents) != 4 || c.Status != CaseInReview {
		t.Fatal("input case must not be mutated")
	}
}

func TestAddDocumentKeepsPendingCasePending(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	c := fourDocCase()

	next, err := AddDocument(c, Document{ID: "d-5", Type: DocOther, Status: DocPending, SubmittedAt: now})
	if err != nil {
		t.Fatalf("add document: %v", err)
	}
	if next.Status != CasePending {
		t.Fatalf("expected pending, got %s", next.Status)
	}
	if len(next.Documents) != 5 {
		t.Fatalf("expected 5 documents, got %d", len(next.Documents))
	}
}

func TestAddDocumentOnTerminalCase(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	for _, status := range []CaseStatus{CaseApproved, CaseRejected} {
		c := fourDocCase()
		c.Status = status
		if _, err := AddDocument(c, Document{ID: "d-5", SubmittedAt: now}); err == nil {
			t.Fatalf("expected add on %s case to fail", status)
		}
	}
}
