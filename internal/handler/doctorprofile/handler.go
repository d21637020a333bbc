package doctorprofile

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/careline-api/internal/handler"
	"github.com/jwalitptl/careline-api/internal/middleware"
	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/pkg/httputil"
)

type Service interface {
	CreateProfile(ctx context.Context, requester *model.User, req *model.CreateDoctorProfileRequest) (*model.DoctorProfile, error)
	GetProfile(ctx context.Context, id string) (*model.DoctorProfile, error)
	ListProfiles(ctx context.Context) ([]*model.DoctorProfile, error)
	UpdateProfile(ctx context.Context, requester *model.User, id string, req *model.UpdateDoctorProfileRequest) (*model.DoctorProfile, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, auth *middleware.AuthMiddleware) {
	profiles := r.Group("/doctor-profiles", auth.Authenticate())
	{
		profiles.GET("", h.ListProfiles)
		profiles.GET("/:id", h.GetProfile)
		profiles.POST("", auth.RequireRole(model.RoleDoctor), h.CreateProfile)
		profiles.PUT("/:id", auth.RequireRole(model.RoleDoctor), h.UpdateProfile)
	}
}

func (h *Handler) CreateProfile(c *gin.Context) {
	var req model.CreateDoctorProfileRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	profile, err := h.service.CreateProfile(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, profile)
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.service.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, profile)
}

func (h *Handler) ListProfiles(c *gin.Context) {
	profiles, err := h.service.ListProfiles(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if profiles == nil {
		profiles = []*model.DoctorProfile{}
	}
	httputil.RespondWithSuccess(c, http.StatusOK, profiles)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdateDoctorProfileRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, profile)
}
