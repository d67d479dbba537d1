package messaging

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

func (s *InMemorySuite) TestCreateOrReuseThreadIsIdempotent() {
	first, err := s.store.CreateOrReuseThread(s.ctx, "dispute", "d-1", []string{"tenant-1", "landlord-1"})
	s.Require().NoError(err)

	// Same context and participants, in a different order.
	second, err := s.store.CreateOrReuseThread(s.ctx, "dispute", "d-1", []string{"landlord-1", "tenant-1"})
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	threads, err := s.store.ListThreadsByParticipant(s.ctx, "tenant-1")
	s.Require().NoError(err)
	s.Len(threads, 1)
}

func (s *InMemorySuite) TestDistinctContextsGetDistinctThreads() {
	a, err := s.store.CreateOrReuseThread(s.ctx, "dispute", "d-1", []string{"a", "b"})
	s.Require().NoError(err)
	b, err := s.store.CreateOrReuseThread(s.ctx, "dispute", "d-2", []string{"a", "b"})
	s.Require().NoError(err)
	s.NotEqual(a.ID, b.ID)
}

func (s *InMemorySuite) TestKindFollowsParticipantCount() {
	direct, err := s.store.CreateOrReuseThread(s.ctx, "booking", "b-1", []string{"a", "b"})
	s.Require().NoError(err)
	s.Equal(KindDirect, direct.Kind)

	group, err := s.store.CreateOrReuseThread(s.ctx, "dispute", "d-1", []string{"a", "b", "admin"})
	s.Require().NoError(err)
	s.Equal(KindGroup, group.Kind)
}

func (s *InMemorySuite) TestPostAppendsInOrder() {
	t, err := s.store.CreateOrReuseThread(s.ctx, "booking", "b-1", []string{"a", "b"})
	s.Require().NoError(err)

	_, err = s.store.Post(s.ctx, t.ID, "a", "hello")
	s.Require().NoError(err)
	_, err = s.store.Post(s.ctx, t.ID, "b", "hi back")
	s.Require().NoError(err)

	msgs, err := s.store.ListMessages(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Require().Len(msgs, 2)
	s.Equal("hello", msgs[0].Body)
	s.Equal("hi back", msgs[1].Body)
}

func (s *InMemorySuite) TestPostToMissingThread() {
	_, err := s.store.Post(s.ctx, "nope", "a", "hello")
	s.ErrorIs(err, ErrThreadNotFound)
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}
