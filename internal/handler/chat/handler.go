package chat

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

type Service interface {
	ListMessages(ctx context.Context, requester *model.User, caseID uuid.UUID) ([]*model.ChatMessage, error)
	PostMessage(ctx context.Context, requester *model.User, req *model.PostMessageRequest) (*model.ChatMessage, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, auth *middleware.AuthMiddleware) {
	chats := r.Group("/chats", auth.Authenticate())
	{
		chats.GET("/:caseId", h.ListMessages)
		chats.POST("", h.PostMessage)
	}
}

func (h *Handler) ListMessages(c *gin.Context) {
	caseID, err := handler.ParseUUIDParam(c, "caseId", "patient case")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	msgs, err := h.service.ListMessages(c.Request.Context(), middleware.CurrentUser(c), caseID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if msgs == nil {
		msgs = []*model.ChatMessage{}
	}
	httputil.RespondWithSuccess(c, http.StatusOK, msgs)
}

func (h *Handler) PostMessage(c *gin.Context) {
	var req model.PostMessageRequest
	if err := handler.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	msg, err := h.service.PostMessage(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, msg)
}
