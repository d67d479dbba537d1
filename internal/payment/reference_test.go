package payment

import (
	"strings"
	"testing"
)

func TestParseKeyFromReference(t *testing.T) {
	ref := "booking_id=abc-123;purpose=sign_off_fee;n=deadbeef"
	if got := ParseKeyFromReference(ref, "booking_id"); got != "abc-123" {
		t.Fatalf("expected abc-123, got %q", got)
	}
	if got := ParseKeyFromReference(ref, "purpose"); got != "sign_off_fee" {
		t.Fatalf("expected sign_off_fee, got %q", got)
	}
	if got := ParseKeyFromReference(ref, "missing"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestBuildReference_RoundTrips(t *testing.T) {
	ref := BuildReference("4f2c0b1a-aaaa-bbbb-cccc-0123456789ab", "move_in_payment")
	if got := ParseKeyFromReference(ref, "booking_id"); got != "4f2c0b1a-aaaa-bbbb-cccc-0123456789ab" {
		t.Fatalf("booking_id did not round-trip, got %q", got)
	}
	if got := ParseKeyFromReference(ref, "purpose"); got != "move_in_payment" {
		t.Fatalf("purpose did not round-trip, got %q", got)
	}
	if strings.ContainsAny(ref, " \t") {
		t.Fatalf("reference must not contain whitespace: %q", ref)
	}
}
