package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
)

type chatRepository struct {
	BaseRepository
}

func NewChatRepository(base BaseRepository) repository.ChatRepository {
	return &chatRepository{base}
}

func (r *chatRepository) Create(ctx context.Context, msg *model.ChatMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO chat_messages (id, case_id, sender_id, sender_type, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.CaseID, msg.SenderID, msg.SenderType, msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat message: %w", mapError(err))
	}
	return nil
}

func (r *chatRepository) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*model.ChatMessage, error) {
	query := `
		SELECT id, case_id, sender_id, sender_type, content, created_at
		FROM chat_messages
		WHERE case_id = $1
		ORDER BY created_at ASC, id
	`
	messages := []*model.ChatMessage{}
	if err := r.db.SelectContext(ctx, &messages, query, caseID); err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", mapError(err))
	}
	return messages, nil
}
