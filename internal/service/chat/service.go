package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
	"github.com/jwalitptl/careline-api/internal/service/audit"
	"github.com/jwalitptl/careline-api/internal/service/event"
	apperrors "github.com/jwalitptl/careline-api/pkg/errors"
)

type Service struct {
	chats   repository.ChatRepository
	cases   repository.PatientCaseRepository
	events  event.Emitter
	auditor *audit.Service
}

func NewService(chats repository.ChatRepository, cases repository.PatientCaseRepository, events event.Emitter, auditor *audit.Service) *Service {
	return &Service{
		chats:   chats,
		cases:   cases,
		events:  events,
		auditor: auditor,
	}
}

// ListMessages returns the case thread oldest first.
func (s *Service) ListMessages(ctx context.Context, requester *model.User, caseID uuid.UUID) ([]*model.ChatMessage, error) {
	if _, err := s.authorize(ctx, requester, caseID); err != nil {
		return nil, err
	}

	messages, err := s.chats.ListByCase(ctx, caseID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list chat messages: %w", err))
	}
	return messages, nil
}

// PostMessage appends to a case thread. The case must exist before any
// role or sender check is made.
func (s *Service) PostMessage(ctx context.Context, requester *model.User, req *model.PostMessageRequest) (*model.ChatMessage, error) {
	if _, err := s.authorize(ctx, requester, req.CaseID); err != nil {
		return nil, err
	}

	if !req.SenderType.Valid() || !requester.Role.CanSendAs(req.SenderType) {
		return nil, apperrors.InvalidSender(fmt.Sprintf("a %s cannot post as %q", requester.Role, req.SenderType))
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.InvalidInput("content is required", nil)
	}

	msg := &model.ChatMessage{
		ID:         uuid.New(),
		CaseID:     req.CaseID,
		SenderID:   requester.ID,
		SenderType: req.SenderType,
		Content:    req.Content,
	}
	if err := s.chats.Create(ctx, msg); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create chat message: %w", err))
	}

	s.auditor.Log(ctx, requester.ID, "chat.post", "chat_message", msg.ID.String())
	s.events.Emit(ctx, model.EventChatMessagePosted, model.ChatEvent{
		MessageID:  msg.ID,
		CaseID:     msg.CaseID,
		SenderID:   msg.SenderID,
		SenderType: msg.SenderType,
	})
	return msg, nil
}

func (s *Service) authorize(ctx context.Context, requester *model.User, caseID uuid.UUID) (*model.PatientCase, error) {
	c, err := s.cases.Get(ctx, caseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient case", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get patient case: %w", err))
	}
	if !requester.CanAccessCase(c) {
		return nil, apperrors.Forbidden("not allowed to access this case thread")
	}
	return c, nil
}
