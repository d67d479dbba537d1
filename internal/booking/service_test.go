package booking

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

type fakeProcessor struct {
	err     error
	charges []ChargeRequest
}

func (f *fakeProcessor) Charge(ctx context.Context, req ChargeRequest) error {
	if f.err != nil {
		return f.err
	}
	f.charges = append(f.charges, req)
	return nil
}

type fakeGenerator struct {
	url   string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateAgreement(ctx context.Context, bookingID string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type recordingNotifier struct {
	entries []TimelineEntry
}

func (n *recordingNotifier) NotifyStatusChanged(ctx context.Context, b Booking, entry TimelineEntry) error {
	n.entries = append(n.entries, entry)
	return nil
}

func newTestService(store Store) (*Service, *fakeProcessor, *fakeGenerator, *recordingNotifier) {
	proc := &fakeProcessor{}
	gen := &fakeGenerator{url: "https://docs.example/agr.pdf"}
	not := &recordingNotifier{}
	svc := &Service{
		Store:     store,
		Processor: proc,
		Documents: gen,
		Notifier:  not,
		Now:       func() time.Time { return testNow },
	}
	return svc, proc, gen, not
}

func seedAt(t *testing.T, svc *Service, target Status) Booking {
	t.Helper()
	ctx := context.Background()
	b, err := svc.RequestViewing(ctx, "p-1", "landlord-1", "tenant-1", TypeLongTerm)
	if err != nil {
		t.Fatalf("request viewing: %v", err)
	}

	steps := []struct {
		act Action
		p   Payload
	}{
		{ActionScheduleViewing, Payload{}},
		{ActionCompleteViewing, Payload{SignOffFeeAmount: dec("25000")}},
		{ActionProceed, Payload{}},
		{ActionPaySignOffFee, Payload{PaymentReference: "booking_id=" + b.ID + ";purpose=sign_off_fee;n=ab"}},
		{ActionSubmitApplication, Payload{Application: testApplication(), PaymentAmount: dec("1200000")}},
		{ActionPayRental, Payload{PaymentReference: "booking_id=" + b.ID + ";purpose=rental_payment;n=cd"}},
		{ActionApprove, Payload{}},
	}
	for _, s := range steps {
		if b.Status == target {
			return b
		}
		var err error
		b, err = svc.Do(ctx, b.ID, s.act, s.p)
		if err != nil {
			t.Fatalf("seed %s: %v", s.act, err)
		}
	}
	if b.Status != target {
		t.Fatalf("seed stopped at %s, wanted %s", b.Status, target)
	}
	return b
}

func TestProcessorFailureLeavesBookingUnchanged(t *testing.T) {
	store := NewInMemory()
	svc, proc, _, _ := newTestService(store)
	ctx := context.Background()

	b := seedAt(t, svc, StatusSignOffFeePending)
	before, _ := store.Get(ctx, b.ID)

	proc.err = fmt.Errorf("card declined")
	_, err := svc.Do(ctx, b.ID, ActionPaySignOffFee, Payload{PaymentReference: "ref"})

	var ext ExternalOperationError
	if !errors.As(err, &ext) {
		t.Fatalf("expected ExternalOperationError, got %v", err)
	}
	if ext.Op != string(ActionPaySignOffFee) {
		t.Fatalf("expected op %s, got %s", ActionPaySignOffFee, ext.Op)
	}

	after, _ := store.Get(ctx, b.ID)
	if !reflect.DeepEqual(before, after) {
		t.Fatal("booking changed despite processor failure")
	}

	// Caller retries once the card works; no automatic retry happened.
	proc.err = nil
	got, err := svc.Do(ctx, b.ID, ActionPaySignOffFee, Payload{PaymentReference: "ref"})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if got.Status != StatusSignOffFeeCompleted {
		t.Fatalf("expected sign_off_fee_completed, got %s", got.Status)
	}
	if len(proc.charges) != 1 {
		t.Fatalf("expected exactly one successful charge, got %d", len(proc.charges))
	}
}

func TestDocumentGenerationFailureBlocksSendAgreement(t *testing.T) {
	store := NewInMemory()
	svc, _, gen, _ := newTestService(store)
	ctx := context.Background()

	b := seedAt(t, svc, StatusApproved)
	gen.err = fmt.Errorf("renderer down")

	_, err := svc.Do(ctx, b.ID, ActionSendAgreement, Payload{})
	var ext ExternalOperationError
	if !errors.As(err, &ext) {
		t.Fatalf("expected ExternalOperationError, got %v", err)
	}

	after, _ := store.Get(ctx, b.ID)
	if after.Status != StatusApproved || after.Agreement != nil {
		t.Fatalf("booking changed despite generation failure: %+v", after)
	}
}

func TestSendAgreementGeneratesDocument(t *testing.T) {
	store := NewInMemory()
	svc, _, gen, _ := newTestService(store)
	ctx := context.Background()

	b := seedAt(t, svc, StatusApproved)
	got, err := svc.Do(ctx, b.ID, ActionSendAgreement, Payload{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Agreement == nil || got.Agreement.DocumentURL != gen.url {
		t.Fatalf("expected agreement url %s, got %+v", gen.url, got.Agreement)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generation call, got %d", gen.calls)
	}
}

func TestSendAgreementGuardRunsBeforeGeneration(t *testing.T) {
	store := NewInMemory()
	svc, _, gen, _ := newTestService(store)
	ctx := context.Background()

	b := seedAt(t, svc, StatusApplicationSubmitted)
	_, err := svc.Do(ctx, b.ID, ActionSendAgreement, Payload{})
	var ite IllegalTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatal("document generated for a doomed action")
	}
}

func TestConcurrentApproveSecondWriterConflicts(t *testing.T) {
	store := NewInMemory()
	svc, _, _, _ := newTestService(store)
	ctx := context.Background()

	b := seedAt(t, svc, StatusApplicationSubmitted)

	// Two actors loaded the same version; both try to approve.
	cur, _ := store.Get(ctx, b.ID)
	first, err := Apply(cur, ActionApprove, Payload{}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Apply(cur, ActionApprove, Payload{}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Update(ctx, first, cur.Version); err != nil {
		t.Fatalf("first writer failed: %v", err)
	}
	if err := store.Update(ctx, second, cur.Version); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict for second writer, got %v", err)
	}

	got, _ := store.Get(ctx, b.ID)
	if got.Version != first.Version {
		t.Fatalf("expected version %d, got %d", first.Version, got.Version)
	}
}

func TestEveryTransitionNotifiesCounterparty(t *testing.T) {
	store := NewInMemory()
	svc, _, _, not := newTestService(store)

	b := seedAt(t, svc, StatusApproved)

	// One notification per applied transition, including creation.
	if len(not.entries) != len(b.Timeline) {
		t.Fatalf("expected %d notifications, got %d", len(b.Timeline), len(not.entries))
	}
	last := not.entries[len(not.entries)-1]
	if last.Status != StatusApproved {
		t.Fatalf("expected last notification for approved, got %s", last.Status)
	}
}
