package messaging

import (
	"context"
	"errors"
	"sort"
	"time"
)

var ErrThreadNotFound = errors.New("messaging: thread not found")

type Kind string

const (
	KindDirect Kind = "direct"
	KindGroup  Kind = "group"
)

// Thread is a conversation between a fixed set of participants, anchored to
// the record it is about (a booking or a dispute).
type Thread struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	ContextType  string    `json:"contextType"`
	ContextID    string    `json:"contextId"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Message struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	SenderID  string    `json:"senderId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists threads and messages. CreateOrReuseThread must be
// idempotent: calling it again with the same participants and context returns
// the thread created the first time, never a duplicate.
type Store interface {
	CreateOrReuseThread(ctx context.Context, contextType, contextID string, participants []string) (Thread, error)
	FindThread(ctx context.Context, contextType, contextID string) (Thread, error)
	Post(ctx context.Context, threadID, senderID, body string) (Message, error)
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
	ListThreadsByParticipant(ctx context.Context, userID string) ([]Thread, error)
}

// participantKey canonicalizes a participant set so the same people always
// map to the same thread regardless of argument order.
func participantKey(participants []string) []string {
	out := make([]string, len(participants))
	copy(out, participants)
	sort.Strings(out)
	return out
}

func kindFor(participants []string) Kind {
	if len(participants) > 2 {
		return KindGroup
	}
	return KindDirect
}
