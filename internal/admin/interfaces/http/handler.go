package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/vendersphere/internal/admin/application"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/middleware"
	"github.com/wyfcoding/vendersphere/pkg/response"
)

// AdminHandler 管理端 HTTP 处理器
type AdminHandler struct {
	app *application.AdminApplicationService
}

// NewAdminHandler 创建管理端 HTTP 处理器实例
func NewAdminHandler(app *application.AdminApplicationService) *AdminHandler {
	return &AdminHandler{app: app}
}

// RegisterRoutes 注册路由；private 分组已挂载 JWT 鉴权
func (h *AdminHandler) RegisterRoutes(private *gin.RouterGroup) {
	admin := private.Group("/admin", middleware.RequireRole("admin"))
	{
		admin.GET("/dashboard", h.Dashboard)
	}
}

// Dashboard 看板快照
func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.app.Dashboard(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Dashboard query failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", "INTERNAL")
		return
	}
	response.Success(c, dashboard)
}
