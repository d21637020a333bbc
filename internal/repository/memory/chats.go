package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
)

// chatRepository keeps each thread in insertion order, which is also
// chronological order.
type chatRepository struct {
	mu      sync.RWMutex
	threads map[uuid.UUID][]model.ChatMessage
}

func NewChatRepository() repository.ChatRepository {
	return &chatRepository{threads: make(map[uuid.UUID][]model.ChatMessage)}
}

func (r *chatRepository) Create(_ context.Context, msg *model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now()
	}
	r.threads[msg.CaseID] = append(r.threads[msg.CaseID], *msg)
	return nil
}

func (r *chatRepository) ListByCase(_ context.Context, caseID uuid.UUID) ([]*model.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	thread := r.threads[caseID]
	messages := make([]*model.ChatMessage, 0, len(thread))
	for i := range thread {
		m := thread[i]
		messages = append(messages, &m)
	}
	return messages, nil
}
