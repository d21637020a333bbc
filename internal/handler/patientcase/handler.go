package patientcase

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/careline-api/internal/handler"
	"github.com/jwalitptl/careline-api/internal/middleware"
	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/pkg/httputil"
)

const resource = "patient case"

type Service interface {
	CreateCase(ctx context.Context, requester *model.User, req *model.CreatePatientCaseRequest) (*model.PatientCase, error)
	ListCases(ctx context.Context, requester *model.User, query *model.ListCasesQuery) ([]*model.PatientCase, error)
	GetCase(ctx context.Context, requester *model.User, id uuid.UUID) (*model.PatientCase, error)
	UpdateCase(ctx context.Context, requester *model.User, id uuid.UUID, req *model.UpdatePatientCaseRequest) (*model.PatientCase, error)
}

type Handler struct {
	service        Service
	allowAnonymous bool
}

// NewHandler builds the case handler. With allowAnonymous, POST accepts
// requests without credentials.
func NewHandler(service Service, allowAnonymous bool) *Handler {
	return &Handler{service: service, allowAnonymous: allowAnonymous}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, auth *middleware.AuthMiddleware) {
	intake := auth.Authenticate()
	if h.allowAnonymous {
		intake = auth.OptionalAuthenticate()
	}
	r.POST("/patient-cases", intake, h.CreateCase)

	cases := r.Group("/patient-cases", auth.Authenticate())
	{
		cases.GET("", h.ListCases)
		cases.GET("/:id", h.GetCase)
		cases.PUT("/:id", auth.RequireRole(model.RoleDoctor), h.UpdateCase)
	}
}

func (h *Handler) CreateCase(c *gin.Context) {
	var req model.CreatePatientCaseRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	pc, err := h.service.CreateCase(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, pc)
}

// ListCases accepts optional status, limit and offset query parameters.
func (h *Handler) ListCases(c *gin.Context) {
	var query model.ListCasesQuery
	if err := handler.BindQuery(c, &query); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	cases, err := h.service.ListCases(c.Request.Context(), middleware.CurrentUser(c), &query)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if cases == nil {
		cases = []*model.PatientCase{}
	}
	httputil.RespondWithSuccess(c, http.StatusOK, cases)
}

func (h *Handler) GetCase(c *gin.Context) {
	id, err := handler.ParseUUIDParam(c, "id", resource)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	pc, err := h.service.GetCase(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, pc)
}

func (h *Handler) UpdateCase(c *gin.Context) {
	id, err := handler.ParseUUIDParam(c, "id", resource)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdatePatientCaseRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	pc, err := h.service.UpdateCase(c.Request.Context(), middleware.CurrentUser(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, pc)
}
