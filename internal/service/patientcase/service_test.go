package patientcase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository/memory"
	"github.com/jwalitptl/careline-api/internal/service/audit"
	apperrors "github.com/jwalitptl/careline-api/pkg/errors"
)

var (
	house = &model.User{ID: "uid-house", Username: "dr_house", Role: model.RoleDoctor}
	cuddy = &model.User{ID: "uid-cuddy", Username: "dr_cuddy", Role: model.RoleDoctor}
	john  = &model.User{ID: "uid-john", Username: "john", Role: model.RolePatient}
	jane  = &model.User{ID: "uid-jane", Username: "jane", Role: model.RolePatient}
)

type recordedEvent struct {
	eventType string
	payload   interface{}
}

type fakeEmitter struct {
	events []recordedEvent
}

func (f *fakeEmitter) Emit(_ context.Context, eventType string, payload interface{}) {
	f.events = append(f.events, recordedEvent{eventType, payload})
}

func newTestService(opts Options) (*Service, *fakeEmitter) {
	emitter := &fakeEmitter{}
	return NewService(memory.NewPatientCaseRepository(), emitter, audit.NewNop(), opts), emitter
}

func strPtr(s string) *string { return &s }

func intake(name string, symptoms ...string) *model.CreatePatientCaseRequest {
	return &model.CreatePatientCaseRequest{Name: name, Age: 45, Gender: "Male", Symptoms: symptoms}
}

func TestService_CreateCaseDefaults(t *testing.T) {
	ctx := context.Background()
	svc, emitter := newTestService(Options{})

	c, err := svc.CreateCase(ctx, john, intake("John Doe", "fever", "cough"))
	require.NoError(t, err)

	assert.Equal(t, model.CaseStatusPending, c.Status)
	assert.Equal(t, model.SeverityMedium, c.Severity)
	assert.Equal(t, model.DefaultAIRecommendation, c.AIRecommendation)
	assert.Nil(t, c.DoctorID)
	require.NotNil(t, c.PatientID)
	assert.Equal(t, john.ID, *c.PatientID)
	assert.Equal(t, []string{"fever", "cough"}, c.Symptoms)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, model.EventCaseCreated, emitter.events[0].eventType)
}

func TestService_CreateCaseValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})

	_, err := svc.CreateCase(ctx, john, intake("John Doe"))
	assert.ErrorIs(t, err, apperrors.InvalidInputError)

	req := intake("John Doe", "fever")
	req.Severity = "critical"
	_, err = svc.CreateCase(ctx, john, req)
	assert.ErrorIs(t, err, apperrors.InvalidInputError)
}

func TestService_CreateCaseAnonymous(t *testing.T) {
	ctx := context.Background()

	closed, _ := newTestService(Options{AllowAnonymous: false})
	_, err := closed.CreateCase(ctx, nil, intake("Walk In", "rash"))
	assert.ErrorIs(t, err, apperrors.UnauthenticatedError)

	open, _ := newTestService(Options{AllowAnonymous: true})
	c, err := open.CreateCase(ctx, nil, intake("Walk In", "rash"))
	require.NoError(t, err)
	assert.Nil(t, c.PatientID)
}

func TestService_ListCasesScopedByRole(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})

	_, err := svc.CreateCase(ctx, john, intake("John Doe", "fever"))
	require.NoError(t, err)
	_, err = svc.CreateCase(ctx, jane, intake("Jane Smith", "headache"))
	require.NoError(t, err)

	all, err := svc.ListCases(ctx, house, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.ListCases(ctx, john, nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	for _, c := range mine {
		assert.Equal(t, john.ID, *c.PatientID)
	}
}

func TestService_ListCasesFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})

	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.CreateCase(ctx, john, intake(name, "fever"))
		require.NoError(t, err)
	}
	other, err := svc.CreateCase(ctx, jane, intake("Jane Smith", "headache"))
	require.NoError(t, err)

	reviewed := model.CaseStatusReviewed
	_, err = svc.UpdateCase(ctx, house, other.ID, &model.UpdatePatientCaseRequest{Status: &reviewed})
	require.NoError(t, err)

	got, err := svc.ListCases(ctx, house, &model.ListCasesQuery{Status: model.CaseStatusReviewed})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, other.ID, got[0].ID)

	page, err := svc.ListCases(ctx, house, &model.ListCasesQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := svc.ListCases(ctx, house, &model.ListCasesQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.NotEqual(t, page[0].ID, rest[0].ID)

	// paging stays inside the patient's own cases
	mine, err := svc.ListCases(ctx, john, &model.ListCasesQuery{Status: model.CaseStatusPending, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

func TestService_GetCaseAuthorization(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(Options{})

	c, err := svc.CreateCase(ctx, john, intake("John Doe", "fever"))
	require.NoError(t, err)

	_, err = svc.GetCase(ctx, jane, c.ID)
	assert.ErrorIs(t, err, apperrors.ForbiddenError)

	got, err := svc.GetCase(ctx, john, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = svc.GetCase(ctx, house, c.ID)
	assert.NoError(t, err)

	_, err = svc.GetCase(ctx, house, uuid.New())
	assert.ErrorIs(t, err, apperrors.NotFoundError)
}

func TestService_UpdateCase(t *testing.T) {
	ctx := context.Background()
	svc, emitter := newTestService(Options{})

	c, err := svc.CreateCase(ctx, john, intake("John Doe", "fever", "cough"))
	require.NoError(t, err)

	t.Run("patients cannot update", func(t *testing.T) {
		_, err := svc.UpdateCase(ctx, john, c.ID, &model.UpdatePatientCaseRequest{DoctorNotes: strPtr("x")})
		assert.ErrorIs(t, err, apperrors.ForbiddenError)
	})

	t.Run("cannot assign another doctor", func(t *testing.T) {
		_, err := svc.UpdateCase(ctx, house, c.ID, &model.UpdatePatientCaseRequest{DoctorID: strPtr(cuddy.ID)})
		assert.ErrorIs(t, err, apperrors.ForbiddenError)
	})

	t.Run("unknown case", func(t *testing.T) {
		_, err := svc.UpdateCase(ctx, house, uuid.New(), &model.UpdatePatientCaseRequest{DoctorNotes: strPtr("x")})
		assert.ErrorIs(t, err, apperrors.NotFoundError)
	})

	t.Run("invalid status", func(t *testing.T) {
		status := model.CaseStatus("archived")
		_, err := svc.UpdateCase(ctx, house, c.ID, &model.UpdatePatientCaseRequest{Status: &status})
		assert.ErrorIs(t, err, apperrors.InvalidInputError)
	})

	t.Run("review assigns the doctor", func(t *testing.T) {
		status := model.CaseStatusReviewed
		updated, err := svc.UpdateCase(ctx, house, c.ID, &model.UpdatePatientCaseRequest{
			Status:      &status,
			DoctorNotes: strPtr("rest"),
		})
		require.NoError(t, err)
		assert.Equal(t, model.CaseStatusReviewed, updated.Status)
		require.NotNil(t, updated.DoctorID)
		assert.Equal(t, house.ID, *updated.DoctorID)
		assert.Equal(t, "rest", *updated.DoctorNotes)
		assert.Equal(t, model.SeverityMedium, updated.Severity)

		stored, err := svc.GetCase(ctx, john, c.ID)
		require.NoError(t, err)
		assert.Equal(t, house.ID, *stored.DoctorID)
	})

	t.Run("another doctor taking over", func(t *testing.T) {
		sev := model.SeverityHigh
		updated, err := svc.UpdateCase(ctx, cuddy, c.ID, &model.UpdatePatientCaseRequest{Severity: &sev})
		require.NoError(t, err)
		assert.Equal(t, cuddy.ID, *updated.DoctorID)
		assert.Equal(t, "rest", *updated.DoctorNotes)
	})

	assert.Equal(t, model.EventCaseUpdated, emitter.events[len(emitter.events)-1].eventType)
}
