package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/api"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/user"
)

type fakeLinks struct {
	tokens []string
}

func (f *fakeLinks) IssueToken(ctx context.Context, bookingID string, expiresAt time.Time) (string, error) {
	tok := "link-" + bookingID
	f.tokens = append(f.tokens, tok)
	return tok, nil
}

func actRequest(t *testing.T, b Booking, actor *api.Actor, action string) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]string{"action": action})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/"+b.ID+"/actions", bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", b.ID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(api.WithActor(ctx, actor))
}

func TestActSendAgreementIssuesSigningLink(t *testing.T) {
	store := NewInMemory()
	svc, _, _, _ := newTestService(store)
	b := seedAt(t, svc, StatusApproved)

	links := &fakeLinks{}
	h := Handlers{Service: svc, Links: links}

	landlord := &api.Actor{ID: b.LandlordID, Role: user.RoleLandlord}
	rr := httptest.NewRecorder()
	h.Act(rr, actRequest(t, b, landlord, string(ActionSendAgreement)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		AgreementToken string `json:"agreementToken"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(links.tokens) != 1 || resp.AgreementToken != links.tokens[0] {
		t.Fatalf("expected the issued token back, got %q (issued %v)", resp.AgreementToken, links.tokens)
	}

	got, err := store.Get(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if got.Status != StatusAgreementSent {
		t.Fatalf("expected agreement_sent, got %s", got.Status)
	}
}

func TestActTenantMayNotSendAgreement(t *testing.T) {
	store := NewInMemory()
	svc, _, _, _ := newTestService(store)
	b := seedAt(t, svc, StatusApproved)

	links := &fakeLinks{}
	h := Handlers{Service: svc, Links: links}

	tenant := &api.Actor{ID: b.TenantID, Role: user.RoleTenant}
	rr := httptest.NewRecorder()
	h.Act(rr, actRequest(t, b, tenant, string(ActionSendAgreement)))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(links.tokens) != 0 {
		t.Fatalf("no link should be issued on a forbidden action, got %v", links.tokens)
	}

	got, err := store.Get(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if got.Status != StatusApproved {
		t.Fatalf("booking must be unchanged, got %s", got.Status)
	}
}
