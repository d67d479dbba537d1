package booking

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestBooking(typ Type) Booking {
	return New("b-1", "p-1", "landlord-1", "tenant-1", typ, testNow)
}

func mustApply(t *testing.T, b Booking, act Action, p Payload) Booking {
	t.Helper()
	out, err := Apply(b, act, p, testNow)
	if err != nil {
		t.Fatalf("apply %s from %s: unexpected error %v", act, b.Status, err)
	}
	return out
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func testApplication() *Application {
	return &Application{
		MoveInDate:     testNow.AddDate(0, 1, 0),
		DurationMonths: 12,
		MinBudget:      decimal.RequireFromString("1200000"),
	}
}

func TestLongTermHappyPath(t *testing.T) {
	b := newTestBooking(TypeLongTerm)

	steps := []struct {
		act  Action
		p    Payload
		want Status
	}{
		{ActionScheduleViewing, Payload{}, StatusViewingScheduled},
		{ActionCompleteViewing, Payload{SignOffFeeAmount: dec("25000")}, StatusViewingCompleted},
		{ActionProceed, Payload{}, StatusSignOffFeePending},
		{ActionPaySignOffFee, Payload{}, StatusSignOffFeeCompleted},
		{ActionSubmitApplication, Payload{Application: testApplication(), PaymentAmount: dec("1200000")}, StatusRentalPaymentPending},
		{ActionPayRental, Payload{}, StatusApplicationSubmitted},
		{ActionApprove, Payload{}, StatusApproved},
		{ActionSendAgreement, Payload{DocumentURL: "https://docs.example/agr.pdf"}, StatusAgreementSent},
		{ActionSignAgreement, Payload{}, StatusAgreementSigned},
		{ActionRequestMoveInPayment, Payload{PaymentAmount: dec("1560000")}, StatusPaymentPending},
		{ActionPayMoveIn, Payload{}, StatusPaymentCompleted},
		{ActionActivate, Payload{}, StatusActive},
		{ActionComplete, Payload{}, StatusCompleted},
	}

	for i, s := range steps {
		b = mustApply(t, b, s.act, s.p)
		if b.Status != s.want {
			t.Fatalf("step %d (%s): expected %s, got %s", i, s.act, s.want, b.Status)
		}
		last := b.Timeline[len(b.Timeline)-1]
		if last.Status != b.Status {
			t.Fatalf("step %d (%s): timeline tail %s != status %s", i, s.act, last.Status, b.Status)
		}
		if b.Version != int64(i)+2 {
			t.Fatalf("step %d (%s): expected version %d, got %d", i, s.act, i+2, b.Version)
		}
	}

	if !b.SignOffFee.Paid || !b.Payment.Paid || !b.Agreement.Signed {
		t.Fatalf("expected all obligations settled: %+v %+v %+v", b.SignOffFee, b.Payment, b.Agreement)
	}
}

func TestShortletSkipsAgreementStages(t *testing.T) {
	b := newTestBooking(TypeShortlet)
	b = mustApply(t, b, ActionScheduleViewing, Payload{})
	b = mustApply(t, b, ActionCompleteViewing, Payload{})
	b = mustApply(t, b, ActionProceed, Payload{})
	if b.Status != StatusInspectionCompleted {
		t.Fatalf("expected shortlet proceed to inspection_completed, got %s", b.Status)
	}

	app := testApplication()
	app.DurationMonths = 0
	app.StayNights = 5
	b = mustApply(t, b, ActionSubmitApplication, Payload{Application: app})
	if b.Status != StatusApplicationSubmitted {
		t.Fatalf("expected application_submitted, got %s", b.Status)
	}

	b = mustApply(t, b, ActionApprove, Payload{})
	b = mustApply(t, b, ActionRequestMoveInPayment, Payload{PaymentAmount: dec("90000")})
	b = mustApply(t, b, ActionPayMoveIn, Payload{})
	b = mustApply(t, b, ActionActivate, Payload{})
	if b.Status != StatusActive {
		t.Fatalf("expected active, got %s", b.Status)
	}

	// sendAgreement never applies to shortlets.
	if _, err := Apply(mustApply(t, newTestBooking(TypeShortlet), ActionScheduleViewing, Payload{}), ActionSendAgreement, Payload{DocumentURL: "x"}, testNow); err == nil {
		t.Fatal("expected sendAgreement on shortlet to fail")
	}
}

func TestProceedWithoutFeeSkipsSignOff(t *testing.T) {
	b := newTestBooking(TypeLongTerm)
	b = mustApply(t, b, ActionScheduleViewing, Payload{})
	b = mustApply(t, b, ActionCompleteViewing, Payload{})
	b = mustApply(t, b, ActionProceed, Payload{})
	if b.Status != StatusInspectionCompleted {
		t.Fatalf("expected inspection_completed when no fee attached, got %s", b.Status)
	}
}

func TestDeclineIsTerminal(t *testing.T) {
	b := newTestBooking(TypeLongTerm)
	b = mustApply(t, b, ActionScheduleViewing, Payload{})
	b = mustApply(t, b, ActionCompleteViewing, Payload{})
	b = mustApply(t, b, ActionDecline, Payload{})
	if b.Status != StatusInspectionDeclined {
		t.Fatalf("expected inspection_declined, got %s", b.Status)
	}

	for _, act := range []Action{ActionProceed, ActionScheduleViewing, ActionCancel, ActionApprove} {
		if _, err := Apply(b, act, Payload{Reason: "x"}, testNow); err == nil {
			t.Fatalf("expected %s after decline to fail", act)
		}
	}
}

func TestIllegalTransitionLeavesBookingUnchanged(t *testing.T) {
	b := newTestBooking(TypeLongTerm)
	before := b.clone()

	_, err := Apply(b, ActionPaySignOffFee, Payload{}, testNow)
	var ite IllegalTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if ite.Action != ActionPaySignOffFee || ite.Status != StatusPending {
		t.Fatalf("error should carry action and state: %+v", ite)
	}
	if !reflect.DeepEqual(b, before) {
		t.Fatal("booking mutated by rejected action")
	}

	// Rejection is idempotent: the same illegal call fails identically.
	_, err2 := Apply(b, ActionPaySignOffFee, Payload{}, testNow)
	if err2.Error() != err.Error() {
		t.Fatalf("expected identical rejection, got %v vs %v", err, err2)
	}
	if !reflect.DeepEqual(b, before) {
		t.Fatal("booking mutated by second rejected action")
	}
}

func TestReasonsSetOnlyOnMatchingStatus(t *testing.T) {
	b := newTestBooking(TypeLongTerm)
	b = mustApply(t, b, ActionScheduleViewing, Payload{})

	cancelled := mustApply(t, b, ActionCancel, Payload{Reason: "tenant travelled"})
	if cancelled.CancellationReason != "tenant travelled" || cancelled.RejectionReason != "" {
		t.Fatalf("expected only cancellationReason set: %+v", cancelled)
	}

	if _, err := Apply(b, ActionCancel, Payload{}, testNow); err == nil {
		t.Fatal("expected cancel without reason to fail")
	}

	// Rejection path.
	r := newTestBooking(TypeLongTerm)
	r = mustApply(t, r, ActionScheduleViewing, Payload{})
	r = mustApply(t, r, ActionCompleteViewing, Payload{})
	r = mustApply(t, r, ActionProceed, Payload{})
	r = mustApply(t, r, ActionSubmitApplication, Payload{Application: testApplication(), PaymentAmount: dec("100")})
	r = mustApply(t, r, ActionPayRental, Payload{})
	if _, err := Apply(r, ActionReject, Payload{}, testNow); err == nil {
		t.Fatal("expected reject without reason to fail")
	}
	rejected := mustApply(t, r, ActionReject, Payload{Reason: "failed screening"})
	if rejected.RejectionReason != "failed screening" || rejected.CancellationReason != "" {
		t.Fatalf("expected only rejectionReason set: %+v", rejected)
	}
}

func TestCancelLegalFromAnyNonTerminalState(t *testing.T) {
	b := newTestBooking(TypeLongTerm)
	b = mustApply(t, b, ActionScheduleViewing, Payload{})
	b = mustApply(t, b, ActionCompleteViewing, Payload{SignOffFeeAmount: dec("10000")})
	b = mustApply(t, b, ActionProceed, Payload{})

	c := mustApply(t, b, ActionCancel, Payload{Reason: "changed mind"})
	if c.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", c.Status)
	}

	// Cancel after a terminal state is illegal.
	if _, err := Apply(c, ActionCancel, Payload{Reason: "again"}, testNow); err == nil {
		t.Fatal("expected cancel on cancelled booking to fail")
	}
}

func TestApplyNeverAliasesInput(t *testing.T) {
	b := newTestBooking(TypeLongTerm)
	b = mustApply(t, b, ActionScheduleViewing, Payload{})
	b = mustApply(t, b, ActionCompleteViewing, Payload{SignOffFeeAmount: dec("10000")})
	b = mustApply(t, b, ActionProceed, Payload{})

	out := mustApply(t, b, ActionPaySignOffFee, Payload{})
	if b.SignOffFee.Paid {
		t.Fatal("input booking's charge was mutated")
	}
	if !out.SignOffFee.Paid {
		t.Fatal("output booking's charge not settled")
	}
	if len(b.Timeline) == len(out.Timeline) {
		t.Fatal("expected output timeline to grow")
	}
}

func TestValidationFailures(t *testing.T) {
	b := newTestBooking(TypeLongTerm)
	b = mustApply(t, b, ActionScheduleViewing, Payload{})

	cases := []struct {
		name string
		from Booking
		act  Action
		p    Payload
		code string
	}{
		{"zero sign-off fee", b, ActionCompleteViewing, Payload{SignOffFeeAmount: dec("0")}, "SIGN_OFF_FEE_INVALID"},
		{"missing application", func() Booking {
			x := mustApply(t, b, ActionCompleteViewing, Payload{})
			return mustApply(t, x, ActionProceed, Payload{})
		}(), ActionSubmitApplication, Payload{}, "APPLICATION_REQUIRED"},
	}
	for _, c := range cases {
		_, err := Apply(c.from, c.act, c.p, testNow)
		var ve ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError, got %v", c.name, err)
		}
		if ve.Code != c.code {
			t.Fatalf("%s: expected code %s, got %s", c.name, c.code, ve.Code)
		}
	}
}
