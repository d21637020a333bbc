package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	advicehandler "github.com/jwalitptl/careline-api/internal/handler/advice"
	chathandler "github.com/jwalitptl/careline-api/internal/handler/chat"
	profilehandler "github.com/jwalitptl/careline-api/internal/handler/doctorprofile"
	"github.com/jwalitptl/careline-api/internal/handler/health"
	casehandler "github.com/jwalitptl/careline-api/internal/handler/patientcase"
	userhandler "github.com/jwalitptl/careline-api/internal/handler/user"
	"github.com/jwalitptl/careline-api/internal/middleware"
	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/internal/repository"
	"github.com/jwalitptl/careline-api/internal/repository/memory"
	"github.com/jwalitptl/careline-api/internal/service/advice"
	"github.com/jwalitptl/careline-api/internal/service/audit"
	"github.com/jwalitptl/careline-api/internal/service/chat"
	"github.com/jwalitptl/careline-api/internal/service/doctorprofile"
	"github.com/jwalitptl/careline-api/internal/service/event"
	"github.com/jwalitptl/careline-api/internal/service/patientcase"
	"github.com/jwalitptl/careline-api/internal/service/user"
	"github.com/jwalitptl/careline-api/pkg/httputil"
	"github.com/jwalitptl/careline-api/pkg/identity"
	"github.com/jwalitptl/careline-api/pkg/llm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type tokenVerifier map[string]*identity.Identity

func (v tokenVerifier) Verify(_ context.Context, token string) (*identity.Identity, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return nil, identity.ErrInvalidToken
}

type echoGenerator struct {
	err error
}

func (g echoGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "consider influenza", nil
}

func (echoGenerator) Model() string { return "test-model" }

type testServer struct {
	handler http.Handler
	repos   *repository.Repositories
}

func newTestServer(t *testing.T, generator llm.Generator, allowAnonymous bool) *testServer {
	t.Helper()

	repos := memory.New()
	auditor := audit.NewNop()
	events := event.NewService(repos.Outbox)

	users := user.NewService(repos.Users, repos.DoctorProfiles, auditor)
	verifier := tokenVerifier{
		"tok-house": {UID: "uid-house", Email: "house@example.com"},
		"tok-john":  {UID: "uid-john", Email: "john@example.com"},
		"tok-jane":  {UID: "uid-jane", Email: "jane@example.com"},
		"tok-ghost": {UID: "uid-ghost"},
	}
	auth := middleware.NewAuthMiddleware(verifier, users)

	r := NewRouter(auth, health.NewHandler(nil), Config{
		MetricsEnabled: true,
		MaxBodyBytes:   1 << 20,
		Registry:       prometheus.NewRegistry(),
	},
		userhandler.NewHandler(users),
		casehandler.NewHandler(patientcase.NewService(repos.Cases, events, auditor, patientcase.Options{AllowAnonymous: allowAnonymous}), allowAnonymous),
		chathandler.NewHandler(chat.NewService(repos.Chats, repos.Cases, events, auditor)),
		advicehandler.NewHandler(advice.NewService(generator, auditor)),
		profilehandler.NewHandler(doctorprofile.NewService(repos.DoctorProfiles, auditor)),
	)
	r.Setup()

	return &testServer{handler: r.Engine(), repos: repos}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *testServer) register(t *testing.T, token, username string, role model.Role) model.User {
	t.Helper()
	w := s.do(t, http.MethodPost, "/register", token, map[string]interface{}{
		"username": username,
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var u model.User
	decode(t, w, &u)
	return u
}

func TestRouter_TriageFlow(t *testing.T) {
	s := newTestServer(t, echoGenerator{}, false)

	house := s.register(t, "tok-house", "dr_house", model.RoleDoctor)
	assert.Equal(t, "uid-house", house.ID)
	s.register(t, "tok-john", "john", model.RolePatient)

	w := s.do(t, http.MethodPost, "/patient-cases", "tok-john", map[string]interface{}{
		"name":     "John Doe",
		"age":      45,
		"gender":   "Male",
		"symptoms": []string{"fever", "cough"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.PatientCase
	decode(t, w, &created)
	assert.Equal(t, model.CaseStatusPending, created.Status)
	assert.Equal(t, model.SeverityMedium, created.Severity)
	assert.Equal(t, []string{"fever", "cough"}, created.Symptoms)
	assert.Nil(t, created.DoctorID)

	w = s.do(t, http.MethodPut, "/patient-cases/"+created.ID.String(), "tok-house", map[string]interface{}{
		"status":       "reviewed",
		"doctor_notes": "rest",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated model.PatientCase
	decode(t, w, &updated)
	assert.Equal(t, model.CaseStatusReviewed, updated.Status)
	require.NotNil(t, updated.DoctorID)
	assert.Equal(t, house.ID, *updated.DoctorID)
	require.NotNil(t, updated.DoctorNotes)
	assert.Equal(t, "rest", *updated.DoctorNotes)

	// the patient sees the review on their own listing
	w = s.do(t, http.MethodGet, "/patient-cases", "tok-john", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.PatientCase
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, model.CaseStatusReviewed, list[0].Status)

	w = s.do(t, http.MethodGet, "/patient-cases?status=pending&limit=5", "tok-house", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(t, http.MethodGet, "/patient-cases?status=reviewed&limit=1&offset=0", "tok-house", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	w = s.do(t, http.MethodPost, "/chats", "tok-house", map[string]interface{}{
		"patient_case_id": created.ID,
		"sender_type":     "ai",
		"content":         "Likely viral.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/chats", "tok-john", map[string]interface{}{
		"patient_case_id": created.ID,
		"sender_type":     "patient",
		"content":         "Thanks",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/chats/"+created.ID.String(), "tok-john", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msgs []model.ChatMessage
	decode(t, w, &msgs)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.SenderAI, msgs[0].SenderType)
	assert.Equal(t, model.SenderPatient, msgs[1].SenderType)

	w = s.do(t, http.MethodPost, "/ai-assistant", "tok-house", map[string]interface{}{
		"prompt":           "What could this be?",
		"patient_symptoms": []string{"fever", "cough"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var advised model.AdviceResponse
	decode(t, w, &advised)
	assert.Equal(t, "consider influenza", advised.Response)

	events, err := s.repos.Outbox.ClaimPending(context.Background(), 10)
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}
	assert.ElementsMatch(t, []string{
		model.EventCaseCreated,
		model.EventCaseUpdated,
		model.EventChatMessagePosted,
		model.EventChatMessagePosted,
	}, types)
}

func TestRouter_ErrorBodies(t *testing.T) {
	s := newTestServer(t, nil, false)
	s.register(t, "tok-house", "dr_house", model.RoleDoctor)
	s.register(t, "tok-john", "john", model.RolePatient)
	s.register(t, "tok-jane", "jane", model.RolePatient)

	w := s.do(t, http.MethodPost, "/patient-cases", "tok-john", map[string]interface{}{
		"name": "John Doe", "age": 45, "gender": "Male", "symptoms": []string{"fever"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.PatientCase
	decode(t, w, &created)
	casePath := "/patient-cases/" + created.ID.String()

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       interface{}
		wantStatus int
		wantError  string
	}{
		{"no token", http.MethodGet, "/patient-cases", "", nil, http.StatusUnauthorized, "unauthenticated"},
		{"bad token", http.MethodGet, "/patient-cases", "nope", nil, http.StatusUnauthorized, "unauthenticated"},
		{"no profile", http.MethodGet, "/users/me", "tok-ghost", nil, http.StatusForbidden, "profile_not_found"},
		{"foreign case", http.MethodGet, casePath, "tok-jane", nil, http.StatusForbidden, "forbidden"},
		{"unknown case", http.MethodGet, "/patient-cases/00000000-0000-0000-0000-000000000001", "tok-house", nil, http.StatusNotFound, "not_found"},
		{"malformed id", http.MethodGet, "/patient-cases/abc", "tok-house", nil, http.StatusNotFound, "not_found"},
		{"patient update", http.MethodPut, casePath, "tok-john", map[string]string{"status": "closed"}, http.StatusForbidden, "forbidden"},
		{"bad status", http.MethodPut, casePath, "tok-house", map[string]string{"status": "done"}, http.StatusBadRequest, "invalid_input"},
		{"patient asks ai", http.MethodPost, "/ai-assistant", "tok-john", map[string]string{"prompt": "?"}, http.StatusForbidden, "forbidden"},
		{"ai unconfigured", http.MethodPost, "/ai-assistant", "tok-house", map[string]string{"prompt": "?"}, http.StatusServiceUnavailable, "upstream_unavailable"},
		{"patient claims doctor", http.MethodPost, "/chats", "tok-john", map[string]interface{}{
			"patient_case_id": created.ID, "sender_type": "doctor", "content": "hi",
		}, http.StatusBadRequest, "invalid_sender"},
		{"duplicate register", http.MethodPost, "/register", "tok-john", map[string]string{"username": "john2", "role": "patient"}, http.StatusConflict, "conflict"},
		{"bad list status", http.MethodGet, "/patient-cases?status=done", "tok-house", nil, http.StatusBadRequest, "invalid_input"},
		{"bad list limit", http.MethodGet, "/patient-cases?limit=abc", "tok-house", nil, http.StatusBadRequest, "invalid_input"},
		{"empty content unknown case", http.MethodPost, "/chats", "tok-house", map[string]interface{}{
			"patient_case_id": "00000000-0000-0000-0000-000000000001", "sender_type": "doctor", "content": "",
		}, http.StatusNotFound, "not_found"},
		{"empty content", http.MethodPost, "/chats", "tok-john", map[string]interface{}{
			"patient_case_id": created.ID, "sender_type": "patient", "content": "  ",
		}, http.StatusBadRequest, "invalid_input"},
		{"missing symptoms", http.MethodPost, "/patient-cases", "tok-john", map[string]interface{}{"name": "X", "gender": "F"}, http.StatusBadRequest, "invalid_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.token, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			var body httputil.ErrorBody
			decode(t, w, &body)
			assert.Equal(t, tt.wantStatus, body.Code)
			assert.Equal(t, tt.wantError, body.Error)
			assert.NotEmpty(t, body.Message)
			assert.Equal(t, w.Header().Get(middleware.HeaderXRequestID), body.TraceID)
		})
	}
}

func TestRouter_UpstreamFailure(t *testing.T) {
	s := newTestServer(t, echoGenerator{err: errors.New("quota exceeded")}, false)
	s.register(t, "tok-house", "dr_house", model.RoleDoctor)

	w := s.do(t, http.MethodPost, "/ai-assistant", "tok-house", map[string]string{"prompt": "?"})
	require.Equal(t, http.StatusBadGateway, w.Code)

	var body httputil.ErrorBody
	decode(t, w, &body)
	assert.Contains(t, body.Message, "test-model")
	assert.NotContains(t, body.Message, "quota")
}

func TestRouter_AnonymousIntake(t *testing.T) {
	closed := newTestServer(t, nil, false)
	w := closed.do(t, http.MethodPost, "/patient-cases", "", map[string]interface{}{
		"name": "Walk In", "gender": "Female", "symptoms": []string{"headache"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	open := newTestServer(t, nil, true)
	w = open.do(t, http.MethodPost, "/patient-cases", "", map[string]interface{}{
		"name": "Walk In", "gender": "Female", "symptoms": []string{"headache"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.PatientCase
	decode(t, w, &created)
	assert.Nil(t, created.PatientID)
}

func TestRouter_DoctorProfiles(t *testing.T) {
	s := newTestServer(t, nil, false)
	s.register(t, "tok-house", "dr_house", model.RoleDoctor)
	s.register(t, "tok-john", "john", model.RolePatient)

	w := s.do(t, http.MethodPost, "/doctor-profiles", "tok-house", map[string]string{
		"specialization": "Diagnostics",
		"hospital":       "Princeton-Plainsboro",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/doctor-profiles/uid-house", "tok-john", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile model.DoctorProfile
	decode(t, w, &profile)
	assert.Equal(t, "Diagnostics", profile.Specialization)

	w = s.do(t, http.MethodPut, "/doctor-profiles/uid-house", "tok-house", map[string]string{"hospital": "Mercy"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &profile)
	assert.Equal(t, "Mercy", profile.Hospital)
	assert.Equal(t, "Diagnostics", profile.Specialization)

	w = s.do(t, http.MethodPost, "/doctor-profiles", "tok-john", map[string]string{"specialization": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/users/me", "tok-house", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me model.User
	decode(t, w, &me)
	require.NotNil(t, me.DoctorProfile)
	assert.Equal(t, "Mercy", me.DoctorProfile.Hospital)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t, nil, false)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "careline_requests_total")

	w = s.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
