package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/vendersphere/internal/notification/application"
	"github.com/wyfcoding/vendersphere/internal/notification/domain"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/response"
)

// NotificationHandler 通知 HTTP 处理器
type NotificationHandler struct {
	app *application.NotificationApplicationService
}

// NewNotificationHandler 创建通知 HTTP 处理器实例
func NewNotificationHandler(app *application.NotificationApplicationService) *NotificationHandler {
	return &NotificationHandler{app: app}
}

// RegisterRoutes 注册路由
func (h *NotificationHandler) RegisterRoutes(public *gin.RouterGroup) {
	public.POST("/newsletter", h.Subscribe)
}

// SubscribeRequest 订阅请求
type SubscribeRequest struct {
	Email string `json:"email" binding:"required"`
}

// Subscribe 订阅新闻邮件
func (h *NotificationHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	if err := h.app.Subscribe(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadySubscribed):
			response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "CONFLICT")
		case errors.Is(err, domain.ErrInvalidEmail):
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "VALIDATION")
		default:
			logger.Error(c.Request.Context(), "Newsletter subscription failed", "error", err)
			response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", "INTERNAL")
		}
		return
	}
	response.Created(c, gin.H{"email": req.Email})
}
