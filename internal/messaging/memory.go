package messaging

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemory is a mutex-guarded Store for tests and local development.
type InMemory struct {
	mu       sync.Mutex
	threads  map[string]Thread
	messages map[string][]Message

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{
		threads:  make(map[string]Thread),
		messages: make(map[string][]Message),
	}
}

func (s *InMemory) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *InMemory) CreateOrReuseThread(ctx context.Context, contextType, contextID string, participants []string) (Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := participantKey(participants)
	for _, t := range s.threads {
		if t.ContextType == contextType && t.ContextID == contextID && sameParticipants(t.Participants, key) {
			return t, nil
		}
	}

	t := Thread{
		ID:           uuid.NewString(),
		Kind:         kindFor(key),
		ContextType:  contextType,
		ContextID:    contextID,
		Participants: key,
		CreatedAt:    s.now(),
	}
	s.threads[t.ID] = t
	return t, nil
}

func (s *InMemory) FindThread(ctx context.Context, contextType, contextID string) (Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.threads {
		if t.ContextType == contextType && t.ContextID == contextID {
			return t, nil
		}
	}
	return Thread{}, ErrThreadNotFound
}

func (s *InMemory) Post(ctx context.Context, threadID, senderID, body string) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[threadID]; !ok {
		return Message{}, ErrThreadNotFound
	}
	m := Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: s.now(),
	}
	s.messages[threadID] = append(s.messages[threadID], m)
	return m, nil
}

func (s *InMemory) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[threadID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *InMemory) ListThreadsByParticipant(ctx context.Context, userID string) ([]Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Thread
	for _, t := range s.threads {
		for _, p := range t.Participants {
			if p == userID {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

func sameParticipants(a, b []string) bool {
	return strings.Join(a, "\x00") == strings.Join(b, "\x00")
}
