package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/careline-api/internal/handler"
	"github.com/jwalitptl/careline-api/internal/middleware"
	"github.com/jwalitptl/careline-api/internal/model"
	"github.com/jwalitptl/careline-api/pkg/httputil"
	"github.com/jwalitptl/careline-api/pkg/identity"
)

type Service interface {
	Register(ctx context.Context, id *identity.Identity, req *model.RegisterRequest) (*model.User, error)
	Me(ctx context.Context, requester *model.User) (*model.User, error)
	UpdateMe(ctx context.Context, requester *model.User, req *model.UpdateUserRequest) (*model.User, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, auth *middleware.AuthMiddleware) {
	r.POST("/register", auth.VerifyIdentity(), h.Register)
	r.POST("/users/create_profile", auth.VerifyIdentity(), h.Register)

	users := r.Group("/users", auth.Authenticate())
	{
		users.GET("/me", h.Me)
		users.PUT("/me", h.UpdateMe)
	}
}

// Register creates the caller's profile from a verified identity.
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), middleware.CurrentIdentity(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, user)
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, user)
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req model.UpdateUserRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	user, err := h.service.UpdateMe(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, user)
}
