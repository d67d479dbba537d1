package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemorySuite) TestCreateAndGetReturnsCopy() {
	b := newTestBooking(TypeLongTerm)
	s.Require().NoError(s.store.Create(s.ctx, b))

	got, err := s.store.Get(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(b.ID, got.ID)

	// Mutating the returned value must not reach the store.
	got.Timeline[0].Note = "tampered"
	again, err := s.store.Get(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal("viewing requested", again.Timeline[0].Note)
}

func (s *InMemorySuite) TestCreateDuplicateFails() {
	b := newTestBooking(TypeLongTerm)
	s.Require().NoError(s.store.Create(s.ctx, b))
	s.Error(s.store.Create(s.ctx, b))
}

func (s *InMemorySuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, "nope")
	s.ErrorIs(err, ErrNotFound)
}

func (s *InMemorySuite) TestUpdateStaleVersionConflicts() {
	b := newTestBooking(TypeLongTerm)
	s.Require().NoError(s.store.Create(s.ctx, b))

	next, err := Apply(b, ActionScheduleViewing, Payload{}, testNow)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Update(s.ctx, next, b.Version))

	// A second writer still holding the old version loses.
	s.ErrorIs(s.store.Update(s.ctx, next, b.Version), ErrVersionConflict)
}

func (s *InMemorySuite) TestListScoping() {
	a := New("b-a", "p-1", "landlord-1", "tenant-1", TypeLongTerm, testNow)
	b := New("b-b", "p-2", "landlord-2", "tenant-1", TypeShortlet, testNow.Add(1))
	c := New("b-c", "p-3", "landlord-1", "tenant-2", TypeLongTerm, testNow.Add(2))
	for _, x := range []Booking{a, b, c} {
		s.Require().NoError(s.store.Create(s.ctx, x))
	}

	byTenant, err := s.store.ListByTenant(s.ctx, "tenant-1")
	s.Require().NoError(err)
	s.Len(byTenant, 2)

	byLandlord, err := s.store.ListByLandlord(s.ctx, "landlord-1")
	s.Require().NoError(err)
	s.Len(byLandlord, 2)

	all, err := s.store.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("b-a", all[0].ID)
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}
