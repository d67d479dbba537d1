package session

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok, err := IssueToken("user-1", "landlord", "s3cret", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, role, err := VerifyToken(tok, "s3cret", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}
	if role != "landlord" {
		t.Fatalf("expected landlord, got %q", role)
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok, err := IssueToken("user-1", "tenant", "s3cret", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, err := VerifyToken(tok, "s3cret", now.Add(25*time.Hour)); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok, err := IssueToken("user-1", "tenant", "s3cret", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, err := VerifyToken(tok, "other", now); err == nil {
		t.Fatal("expected wrong secret to fail")
	}
}

func TestTokenMissingSecret(t *testing.T) {
	if _, err := IssueToken("user-1", "tenant", "", time.Now()); err == nil {
		t.Fatal("expected issue without secret to fail")
	}
	if _, _, err := VerifyToken("x.y.z", "", time.Now()); err == nil {
		t.Fatal("expected verify without secret to fail")
	}
}
