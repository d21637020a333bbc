package doctorprofile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
	"github.com/jwalitptl/careline-api/internal/service/audit"
	apperrors "github.com/jwalitptl/careline-api/pkg/errors"
)

type Service struct {
	repo    repository.DoctorProfileRepository
	auditor *audit.Service
}

func NewService(repo repository.DoctorProfileRepository, auditor *audit.Service) *Service {
	return &Service{repo: repo, auditor: auditor}
}

func (s *Service) CreateProfile(ctx context.Context, requester *model.User, req *model.CreateDoctorProfileRequest) (*model.DoctorProfile, error) {
	if !requester.IsDoctor() {
		return nil, apperrors.Forbidden("only doctors can create a doctor profile")
	}

	if _, err := s.repo.Get(ctx, requester.ID); err == nil {
		return nil, apperrors.Conflict("doctor profile already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(fmt.Errorf("failed to check doctor profile: %w", err))
	}

	profile := model.NewDoctorProfile(requester, req)
	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("doctor profile already exists", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to create doctor profile: %w", err))
	}

	s.auditor.Log(ctx, requester.ID, "doctor_profile.create", "doctor_profile", profile.ID)
	return profile, nil
}

func (s *Service) GetProfile(ctx context.Context, id string) (*model.DoctorProfile, error) {
	profile, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor profile", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get doctor profile: %w", err))
	}
	return profile, nil
}

func (s *Service) ListProfiles(ctx context.Context) ([]*model.DoctorProfile, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list doctor profiles: %w", err))
	}
	return profiles, nil
}

// UpdateProfile patches the profile; only its owner may change it.
func (s *Service) UpdateProfile(ctx context.Context, requester *model.User, id string, req *model.UpdateDoctorProfileRequest) (*model.DoctorProfile, error) {
	if requester.ID != id {
		return nil, apperrors.Forbidden("doctors can only update their own profile")
	}

	profile, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(profile)
	if err := s.repo.Update(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor profile", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update doctor profile: %w", err))
	}

	s.auditor.Log(ctx, requester.ID, "doctor_profile.update", "doctor_profile", profile.ID)
	return profile, nil
}
