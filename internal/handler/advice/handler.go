package advice

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
	RequestAdvice(ctx context.Context, requester *model.User, req *model.AdviceRequest) (*model.AdviceResponse, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, auth *middleware.AuthMiddleware) {
	r.POST("/ai-assistant", auth.Authenticate(), auth.RequireRole(model.RoleDoctor), h.RequestAdvice)
}

func (h *Handler) RequestAdvice(c *gin.Context) {
	var req model.AdviceRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	resp, err := h.service.RequestAdvice(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, resp)
}
