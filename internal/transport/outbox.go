package transport

import (
	"context"
	"sync"

	"quizbot/internal/domain"
)

type outboxKey struct {
	userID int64
	kind   domain.SessionKind
}

// Outbox buffers outbound messages per user and session kind until the HTTP layer
// drains them into the response of the request that produced them.
type Outbox struct {
	mu      sync.Mutex
	pending map[outboxKey][]domain.Message
	limit   int
}

// NewOutbox keeps at most limit messages per (user, kind), dropping the oldest. limit <= 0 means 64.
func NewOutbox(limit int) *Outbox {
	if limit <= 0 {
		limit = 64
	}
	return &Outbox{pending: make(map[outboxKey][]domain.Message), limit: limit}
}

func (o *Outbox) push(userID int64, msg domain.Message) {
	key := outboxKey{userID: userID, kind: msg.Session}
	o.mu.Lock()
	defer o.mu.Unlock()
	q := append(o.pending[key], msg)
	if len(q) > o.limit {
		q = q[len(q)-o.limit:]
	}
	o.pending[key] = q
}

// Prompt queues msg under msg.Session.
func (o *Outbox) Prompt(ctx context.Context, userID int64, msg domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.push(userID, msg)
	return nil
}

func (o *Outbox) Notify(ctx context.Context, userID int64, msg domain.Message) error {
	return o.Prompt(ctx, userID, msg)
}

// Drain returns and forgets everything queued for one session of userID, oldest first.
func (o *Outbox) Drain(userID int64, kind domain.SessionKind) []domain.Message {
	key := outboxKey{userID: userID, kind: kind}
	o.mu.Lock()
	defer o.mu.Unlock()
	msgs := o.pending[key]
	delete(o.pending, key)
	return msgs
}

var _ domain.Transport = (*Outbox)(nil)
