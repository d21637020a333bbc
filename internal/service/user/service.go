package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
	"github.com/jwalitptl/careline-api/internal/service/audit"
	apperrors "github.com/jwalitptl/careline-api/pkg/errors"
	"github.com/jwalitptl/careline-api/pkg/identity"
)

type Service struct {
	users    repository.UserRepository
	profiles repository.DoctorProfileRepository
	auditor  *audit.Service
}

func NewService(users repository.UserRepository, profiles repository.DoctorProfileRepository, auditor *audit.Service) *Service {
	return &Service{
		users:    users,
		profiles: profiles,
		auditor:  auditor,
	}
}

// Resolve maps a verified identity to its application profile.
func (s *Service) Resolve(ctx context.Context, id *identity.Identity) (*model.User, error) {
	user, err := s.users.Get(ctx, id.UID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ProfileNotFound()
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to resolve user: %w", err))
	}
	if user.Disabled {
		return nil, apperrors.Forbidden("inactive user")
	}
	return user, nil
}

// Register creates the profile for a verified identity that has none yet.
func (s *Service) Register(ctx context.Context, id *identity.Identity, req *model.RegisterRequest) (*model.User, error) {
	if !req.Role.Valid() {
		return nil, apperrors.InvalidInput("role must be doctor or patient", nil)
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperrors.InvalidInput("username is required", nil)
	}
	if req.Role == model.RolePatient && req.DoctorProfile != nil {
		return nil, apperrors.InvalidInput("only doctors can have a doctor profile", nil)
	}

	if _, err := s.users.Get(ctx, id.UID); err == nil {
		return nil, apperrors.Conflict("user profile already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(fmt.Errorf("failed to check user: %w", err))
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.Conflict("username already registered", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(fmt.Errorf("failed to check username: %w", err))
	}

	email := id.Email
	if email == "" {
		email = req.Email
	}

	user := &model.User{
		ID:       id.UID,
		Username: username,
		Email:    email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     req.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("user profile already exists", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to create user: %w", err))
	}

	if req.DoctorProfile != nil {
		profile := model.NewDoctorProfile(user, req.DoctorProfile)
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, apperrors.Internal(fmt.Errorf("failed to create doctor profile: %w", err))
		}
		user.DoctorProfile = profile
	}

	s.auditor.Log(ctx, user.ID, "user.register", "user", user.ID)
	return user, nil
}

// Me returns the requester's profile with the doctor profile embedded.
func (s *Service) Me(ctx context.Context, requester *model.User) (*model.User, error) {
	user, err := s.users.Get(ctx, requester.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ProfileNotFound()
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get user: %w", err))
	}

	switch user.Role {
	case model.RoleDoctor:
		profile, err := s.profiles.Get(ctx, user.ID)
		switch {
		case err == nil:
			user.DoctorProfile = profile
		case errors.Is(err, repository.ErrNotFound):
		default:
			return nil, apperrors.Internal(fmt.Errorf("failed to get doctor profile: %w", err))
		}
	case model.RolePatient:
	}
	return user, nil
}

// UpdateMe patches the requester's contact fields.
func (s *Service) UpdateMe(ctx context.Context, requester *model.User, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.users.Get(ctx, requester.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ProfileNotFound()
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get user: %w", err))
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Email != nil {
		user.Email = *req.Email
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to update user: %w", err))
	}

	s.auditor.Log(ctx, user.ID, "user.update", "user", user.ID)
	return s.Me(ctx, user)
}
