package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/vendersphere/internal/user/application"
	"github.com/wyfcoding/vendersphere/internal/user/domain"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/middleware"
	"github.com/wyfcoding/vendersphere/pkg/response"
)

// UserHandler 用户 HTTP 处理器
type UserHandler struct {
	app *application.UserApplicationService
}

// NewUserHandler 创建用户 HTTP 处理器实例
func NewUserHandler(app *application.UserApplicationService) *UserHandler {
	return &UserHandler{app: app}
}

// RegisterRoutes 注册路由；private 分组已挂载 JWT 鉴权
func (h *UserHandler) RegisterRoutes(public, private *gin.RouterGroup) {
	public.GET("/sellers/top", h.TopSellers)

	private.POST("/users/sync", h.SyncProfile)
	private.GET("/users/me", h.Me)
	private.POST("/seller-requests", h.RequestSeller)

	admin := private.Group("/admin/seller-requests", middleware.RequireRole("admin"))
	{
		admin.GET("", h.ListSellerRequests)
		admin.POST("/:email/approve", h.ApproveSeller)
		admin.POST("/:email/reject", h.RejectSeller)
	}
}

// SyncProfileRequest 登录同步请求
type SyncProfileRequest struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

// SyncProfile 登录后同步资料
func (h *UserHandler) SyncProfile(c *gin.Context) {
	var req SyncProfileRequest
	_ = c.ShouldBindJSON(&req)

	user, err := h.app.SyncProfile(c.Request.Context(), middleware.SubjectEmail(c), req.Name, req.Photo)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, user)
}

// Me 当前用户资料
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.app.GetProfile(c.Request.Context(), middleware.SubjectEmail(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, user)
}

// RequestSellerRequest 卖家入驻申请
type RequestSellerRequest struct {
	ShopName    string `json:"shop_name" binding:"required"`
	Description string `json:"description"`
}

// RequestSeller 提交卖家入驻申请
func (h *UserHandler) RequestSeller(c *gin.Context) {
	var req RequestSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	request, err := h.app.RequestSeller(c.Request.Context(), middleware.SubjectEmail(c), req.ShopName, req.Description)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Created(c, request)
}

// ListSellerRequests 管理端申请列表
func (h *UserHandler) ListSellerRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	status := domain.SellerRequestStatus(c.Query("status"))

	requests, total, err := h.app.ListSellerRequests(c.Request.Context(), status, page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"requests": requests, "total": total, "page": page})
}

// ApproveSeller 审批通过卖家申请
func (h *UserHandler) ApproveSeller(c *gin.Context) {
	email := c.Param("email")
	if err := h.app.ApproveSeller(c.Request.Context(), email); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"user_email": email, "status": domain.SellerRequestApproved})
}

// RejectSeller 驳回卖家申请
func (h *UserHandler) RejectSeller(c *gin.Context) {
	email := c.Param("email")
	if err := h.app.RejectSeller(c.Request.Context(), email); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"user_email": email, "status": domain.SellerRequestRejected})
}

// TopSellers 首页卖家榜单
func (h *UserHandler) TopSellers(c *gin.Context) {
	sellers, err := h.app.TopSellers(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, sellers)
}

func (h *UserHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrSellerRequestNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, domain.ErrSellerRequestExists),
		errors.Is(err, domain.ErrAlreadySeller),
		errors.Is(err, domain.ErrInvalidRequestTransition):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "CONFLICT")
	default:
		logger.Error(c.Request.Context(), "User request failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", "INTERNAL")
	}
}
