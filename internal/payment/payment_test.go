package payment

import "testing"

func TestCanTransition_RefundOnlyFromCompleted(t *testing.T) {
	cases := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusRefunded, false},
		{StatusCompleted, StatusRefunded, true},
		{StatusCompleted, StatusPending, false},
		{StatusFailed, StatusCompleted, false},
		{StatusFailed, StatusRefunded, false},
		{StatusRefunded, StatusCompleted, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestParseStatus_RejectsUnknown(t *testing.T) {
	if _, err := ParseStatus("settled"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
	if s, err := ParseStatus("refunded"); err != nil || s != StatusRefunded {
		t.Fatalf("expected refunded, got %v err %v", s, err)
	}
}
