package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careline-api/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("record already exists")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id string) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}

	DoctorProfileRepository interface {
		Create(ctx context.Context, profile *model.DoctorProfile) error
		Get(ctx context.Context, id string) (*model.DoctorProfile, error)
		Update(ctx context.Context, profile *model.DoctorProfile) error
		List(ctx context.Context) ([]*model.DoctorProfile, error)
	}

	PatientCaseRepository interface {
		Create(ctx context.Context, c *model.PatientCase) error
		Get(ctx context.Context, id uuid.UUID) (*model.PatientCase, error)
		Update(ctx context.Context, c *model.PatientCase) error
		// List returns matching cases newest first.
		List(ctx context.Context, filter model.CaseFilter) ([]*model.PatientCase, error)
		Count(ctx context.Context) (int, error)
	}

	ChatRepository interface {
		Create(ctx context.Context, msg *model.ChatMessage) error
		// ListByCase returns the thread oldest first.
		ListByCase(ctx context.Context, caseID uuid.UUID) ([]*model.ChatMessage, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending marks up to limit pending events as processing and returns them.
		ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)

// Repositories bundles every store the API needs.
type Repositories struct {
	Users          UserRepository
	DoctorProfiles DoctorProfileRepository
	Cases          PatientCaseRepository
	Chats          ChatRepository
	Outbox         OutboxRepository
}
