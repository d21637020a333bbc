package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
)

type patientCaseRepository struct {
	mu    sync.RWMutex
	cases map[uuid.UUID]model.PatientCase
}

func NewPatientCaseRepository() repository.PatientCaseRepository {
	return &patientCaseRepository{cases: make(map[uuid.UUID]model.PatientCase)}
}

func cloneCase(c model.PatientCase) *model.PatientCase {
	c.Symptoms = append([]string{}, c.Symptoms...)
	c.PatientID = cloneStr(c.PatientID)
	c.DoctorID = cloneStr(c.DoctorID)
	c.DoctorNotes = cloneStr(c.DoctorNotes)
	c.DoctorRecommendation = cloneStr(c.DoctorRecommendation)
	return &c
}

func (r *patientCaseRepository) Create(_ context.Context, c *model.PatientCase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if _, ok := r.cases[c.ID]; ok {
		return repository.ErrDuplicate
	}
	t := now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = t
	}
	c.UpdatedAt = t
	r.cases[c.ID] = *cloneCase(*c)
	return nil
}

func (r *patientCaseRepository) Get(_ context.Context, id uuid.UUID) (*model.PatientCase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneCase(c), nil
}

func (r *patientCaseRepository) Update(_ context.Context, c *model.PatientCase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.cases[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Severity = c.Severity
	existing.Status = c.Status
	existing.DoctorID = cloneStr(c.DoctorID)
	existing.DoctorNotes = cloneStr(c.DoctorNotes)
	existing.DoctorRecommendation = cloneStr(c.DoctorRecommendation)
	existing.AIRecommendation = c.AIRecommendation
	existing.UpdatedAt = now()
	r.cases[c.ID] = existing

	c.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *patientCaseRepository) List(_ context.Context, filter model.CaseFilter) ([]*model.PatientCase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cases := make([]*model.PatientCase, 0, len(r.cases))
	for _, c := range r.cases {
		if filter.PatientID != nil && (c.PatientID == nil || *c.PatientID != *filter.PatientID) {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		cases = append(cases, cloneCase(c))
	}

	sort.Slice(cases, func(i, j int) bool {
		if !cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].CreatedAt.After(cases[j].CreatedAt)
		}
		return cases[i].ID.String() < cases[j].ID.String()
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(cases) {
			return []*model.PatientCase{}, nil
		}
		cases = cases[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(cases) {
		cases = cases[:filter.Limit]
	}
	return cases, nil
}

func (r *patientCaseRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cases), nil
}

func sortProfiles(profiles []*model.DoctorProfile) {
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].FullName != profiles[j].FullName {
			return profiles[i].FullName < profiles[j].FullName
		}
		return profiles[i].ID < profiles[j].ID
	})
}
