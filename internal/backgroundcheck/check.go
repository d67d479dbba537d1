package backgroundcheck

import (
	"fmt"
	"math"
	"time"
)

type DocumentType string

const (
	DocIdentity   DocumentType = "identity"
	DocEmployment DocumentType = "employment"
	DocFinancial  DocumentType = "financial"
	DocCompetency DocumentType = "competency"
	DocWorkshop   DocumentType = "workshop"
	DocOther      DocumentType = "other"
)

func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case DocIdentity, DocEmployment, DocFinancial, DocCompetency, DocWorkshop, DocOther:
		return DocumentType(s), nil
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

type DocumentStatus string

const (
	DocPending  DocumentStatus = "pending"
	DocApproved DocumentStatus = "approved"
	DocRejected DocumentStatus = "rejected"
)

func ParseDocumentStatus(s string) (DocumentStatus, error) {
	switch DocumentStatus(s) {
	case DocPending, DocApproved, DocRejected:
		return DocumentStatus(s), nil
	}
	return "", fmt.Errorf("unknown document status %q", s)
}

type Document struct {
	ID          string         `json:"id"`
	Type        DocumentType   `json:"type"`
	FileURL     string         `json:"fileUrl"`
	Status      DocumentStatus `json:"status"`
	Note        string         `json:"note,omitempty"`
	SubmittedAt time.Time      `json:"submittedAt"`
	ReviewedAt  *time.Time     `json:"reviewedAt,omitempty"`
}

type CaseStatus string

const (
	CasePending  CaseStatus = "pending"
	CaseInReview CaseStatus = "in_review"
	CaseApproved CaseStatus = "approved"
	CaseRejected CaseStatus = "rejected"
)

// Case is one user's verification: the set of documents they must submit,
// reviewed one by one, with an aggregate status derived from document
// progress until an admin makes the terminal call.
type Case struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Status    CaseStatus `json:"status"`
	Documents []Document `json:"documents"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func CaseTerminal(s CaseStatus) bool {
	return s == CaseApproved || s == CaseRejected
}

// Progress is the percentage of documents approved, rounded to the nearest
// whole percent. A case with no documents has no progress.
func Progress(docs []Document) int {
	if len(docs) == 0 {
		return 0
	}
	approved := 0
	for _, d := range docs {
		if d.Status == DocApproved {
			approved++
		}
	}
	return int(math.Round(100 * float64(approved) / float64(len(docs))))
}

// ReviewError reports a case operation blocked by the case's current state.
type ReviewError struct {
	Code    string
	Message string
}

func (e ReviewError) Error() string { return e.Message }

// AddDocument appends a freshly submitted document. A case already under
// review drops back to pending: the new document is unreviewed, so the case
// no longer satisfies the 100% condition that put it in review.
func AddDocument(c Case, d Document) (Case, error) {
	if CaseTerminal(c.Status) {
		return Case{}, ReviewError{Code: "CASE_TERMINAL", Message: fmt.Sprintf("case already %s", c.Status)}
	}
	docs := make([]Document, len(c.Documents), len(c.Documents)+1)
	copy(docs, c.Documents)
	c.Documents = append(docs, d)
	if c.Status == CaseInReview {
		c.Status = CasePending
	}
	c.UpdatedAt = d.SubmittedAt
	return c, nil
}

// ReviewDocument sets one document's verdict and recomputes the case. The
// case auto-advances to in_review the moment every document is approved,
// unless an admin already rejected it.
func ReviewDocument(c Case, documentID string, status DocumentStatus, note string, now time.Time) (Case, error) {
	if status != DocApproved && status != DocRejected {
		return Case{}, ReviewError{Code: "DOCUMENT_VERDICT_INVALID", Message: "verdict must be approved or rejected"}
	}
	if c.Status == CaseRejected {
		return Case{}, ReviewError{Code: "CASE_REJECTED", Message: "case already rejected"}
	}

	docs := make([]Document, len(c.Documents))
	copy(docs, c.Documents)
	found := false
	for i := range docs {
		if docs[i].ID == documentID {
			docs[i].Status = status
			docs[i].Note = note
			t := now
			docs[i].ReviewedAt = &t
			found = true
			break
		}
	}
	if !found {
		return Case{}, ReviewError{Code: "DOCUMENT_NOT_FOUND", Message: "document not on this case"}
	}

	c.Documents = docs
	c.UpdatedAt = now
	if Progress(docs) == 100 && !CaseTerminal(c.Status) {
		c.Status = CaseInReview
	}
	return c, nil
}

// ApproveCase is the only way a case reaches approved, and it requires every
// document to be approved first.
func ApproveCase(c Case, now time.Time) (Case, error) {
	if CaseTerminal(c.Status) {
		return Case{}, ReviewError{Code: "CASE_TERMINAL", Message: fmt.Sprintf("case already %s", c.Status)}
	}
	if p := Progress(c.Documents); p < 100 {
		return Case{}, ReviewError{Code: "CASE_INCOMPLETE", Message: fmt.Sprintf("progress is %d%%, all documents must be approved", p)}
	}
	c.Status = CaseApproved
	c.UpdatedAt = now
	return c, nil
}

// RejectCase is legal regardless of document progress.
func RejectCase(c Case, now time.Time) (Case, error) {
	if CaseTerminal(c.Status) {
		return Case{}, ReviewError{Code: "CASE_TERMINAL", Message: fmt.Sprintf("case already %s", c.Status)}
	}
	c.Status = CaseRejected
	c.UpdatedAt = now
	return c, nil
}
