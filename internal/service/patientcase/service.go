package patientcase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
	"github.com/jwalitptl/careline-api/internal/service/audit"
	"github.com/jwalitptl/careline-api/internal/service/event"
	apperrors "github.com/jwalitptl/careline-api/pkg/errors"
)

type Options struct {
	// AllowAnonymous accepts intake without a signed-in patient.
	AllowAnonymous bool
}

type Service struct {
	repo    repository.PatientCaseRepository
	events  event.Emitter
	auditor *audit.Service
	opts    Options
}

func NewService(repo repository.PatientCaseRepository, events event.Emitter, auditor *audit.Service, opts Options) *Service {
	return &Service{
		repo:    repo,
		events:  events,
		auditor: auditor,
		opts:    opts,
	}
}

// CreateCase files a new case owned by requester. A nil requester is an
// anonymous intake and produces an ownerless case.
func (s *Service) CreateCase(ctx context.Context, requester *model.User, req *model.CreatePatientCaseRequest) (*model.PatientCase, error) {
	if requester == nil && !s.opts.AllowAnonymous {
		return nil, apperrors.Unauthenticated("", nil)
	}
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	severity := req.Severity
	if severity == "" {
		severity = model.SeverityMedium
	}

	c := &model.PatientCase{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(req.Name),
		Age:              req.Age,
		Gender:           req.Gender,
		Severity:         severity,
		Symptoms:         append([]string{}, req.Symptoms...),
		MedicalHistory:   req.MedicalHistory,
		AIRecommendation: model.DefaultAIRecommendation,
		Status:           model.CaseStatusPending,
	}
	actorID := "anonymous"
	if requester != nil {
		owner := requester.ID
		c.PatientID = &owner
		actorID = requester.ID
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create patient case: %w", err))
	}

	s.auditor.Log(ctx, actorID, "case.create", "patient_case", c.ID.String())
	s.events.Emit(ctx, model.EventCaseCreated, caseEvent(c, actorID))
	return c, nil
}

// ListCases returns every case to doctors and only their own to patients,
// newest first. A nil query lists without filtering or paging.
func (s *Service) ListCases(ctx context.Context, requester *model.User, query *model.ListCasesQuery) ([]*model.PatientCase, error) {
	filter := model.CaseFilter{}
	if query != nil {
		if query.Status != "" {
			status := query.Status
			filter.Status = &status
		}
		filter.Limit = query.Limit
		filter.Offset = query.Offset
	}
	switch requester.Role {
	case model.RoleDoctor:
	case model.RolePatient:
		owner := requester.ID
		filter.PatientID = &owner
	default:
		return nil, apperrors.Forbidden("unknown role")
	}

	cases, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list patient cases: %w", err))
	}
	return cases, nil
}

func (s *Service) GetCase(ctx context.Context, requester *model.User, id uuid.UUID) (*model.PatientCase, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccessCase(c) {
		return nil, apperrors.Forbidden("not allowed to view this case")
	}
	s.auditor.Log(ctx, requester.ID, "case.read", "patient_case", c.ID.String())
	return c, nil
}

// UpdateCase applies a doctor's review. Touching any review field assigns
// the case to that doctor.
func (s *Service) UpdateCase(ctx context.Context, requester *model.User, id uuid.UUID, req *model.UpdatePatientCaseRequest) (*model.PatientCase, error) {
	if !requester.IsDoctor() {
		return nil, apperrors.Forbidden("only doctors can update cases")
	}
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DoctorID != nil {
		if *req.DoctorID != requester.ID {
			return nil, apperrors.Forbidden("doctors can only assign cases to themselves")
		}
	}

	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.Severity != nil {
		c.Severity = *req.Severity
	}
	if req.DoctorNotes != nil {
		notes := *req.DoctorNotes
		c.DoctorNotes = &notes
	}
	if req.DoctorRecommendation != nil {
		rec := *req.DoctorRecommendation
		c.DoctorRecommendation = &rec
	}
	if req.DoctorID != nil || req.TouchesReview() {
		doctor := requester.ID
		c.DoctorID = &doctor
	}

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient case", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update patient case: %w", err))
	}

	s.auditor.Log(ctx, requester.ID, "case.update", "patient_case", c.ID.String(),
		zap.String("status", string(c.Status)),
		zap.String("severity", string(c.Severity)),
	)
	s.events.Emit(ctx, model.EventCaseUpdated, caseEvent(c, requester.ID))
	return c, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*model.PatientCase, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient case", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get patient case: %w", err))
	}
	return c, nil
}

func validateCreate(req *model.CreatePatientCaseRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.InvalidInput("name is required", nil)
	}
	if req.Age < 0 {
		return apperrors.InvalidInput("age must not be negative", nil)
	}
	if len(req.Symptoms) == 0 {
		return apperrors.InvalidInput("at least one symptom is required", nil)
	}
	if req.Severity != "" && !req.Severity.Valid() {
		return apperrors.InvalidInput("severity must be one of low, medium, high", nil)
	}
	return nil
}

func validateUpdate(req *model.UpdatePatientCaseRequest) error {
	if req.Status != nil && !req.Status.Valid() {
		return apperrors.InvalidInput("status must be one of pending, in_review, reviewed, closed", nil)
	}
	if req.Severity != nil && !req.Severity.Valid() {
		return apperrors.InvalidInput("severity must be one of low, medium, high", nil)
	}
	return nil
}

func caseEvent(c *model.PatientCase, actorID string) model.CaseEvent {
	return model.CaseEvent{
		CaseID:    c.ID,
		PatientID: c.PatientID,
		DoctorID:  c.DoctorID,
		Name:      c.Name,
		Severity:  c.Severity,
		Status:    c.Status,
		ActorID:   actorID,
	}
}
