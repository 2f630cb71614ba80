package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/vendersphere/internal/payout/application"
	"github.com/wyfcoding/vendersphere/internal/payout/domain"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/middleware"
	"github.com/wyfcoding/vendersphere/pkg/response"
)

// PayoutHandler 提现 HTTP 处理器
type PayoutHandler struct {
	app *application.PayoutApplicationService
}

// NewPayoutHandler 创建提现 HTTP 处理器实例
func NewPayoutHandler(app *application.PayoutApplicationService) *PayoutHandler {
	return &PayoutHandler{app: app}
}

// RegisterRoutes 注册路由；private 分组已挂载 JWT 鉴权
func (h *PayoutHandler) RegisterRoutes(private *gin.RouterGroup) {
	seller := private.Group("/seller", middleware.RequireRole("seller", "admin"))
	{
		seller.GET("/balance", h.GetBalance)
		seller.POST("/payouts", h.RequestPayout)
		seller.GET("/payouts", h.MyPayouts)
	}

	admin := private.Group("/admin/payouts", middleware.RequireRole("admin"))
	{
		admin.GET("", h.ListPayouts)
		admin.POST("/:payoutNo/approve", h.Approve)
		admin.POST("/:payoutNo/reject", h.Reject)
		admin.POST("/:payoutNo/pay", h.MarkPaid)
	}
}

// GetBalance 查询卖家余额
func (h *PayoutHandler) GetBalance(c *gin.Context) {
	balance, err := h.app.GetBalance(c.Request.Context(), middleware.SubjectEmail(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, balance)
}

// RequestPayoutRequest 发起提现请求
type RequestPayoutRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// RequestPayout 发起提现
func (h *PayoutHandler) RequestPayout(c *gin.Context) {
	var req RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	payout, err := h.app.RequestPayout(c.Request.Context(),
		middleware.SubjectEmail(c), decimal.NewFromFloat(req.Amount))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Created(c, payout)
}

// MyPayouts 卖家提现历史
func (h *PayoutHandler) MyPayouts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	payouts, total, err := h.app.ListBySeller(c.Request.Context(), middleware.SubjectEmail(c), page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"payouts": payouts, "total": total, "page": page})
}

// ListPayouts 管理端提现单列表
func (h *PayoutHandler) ListPayouts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	status := domain.PayoutStatus(c.Query("status"))

	payouts, total, err := h.app.ListAll(c.Request.Context(), status, page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"payouts": payouts, "total": total, "page": page})
}

// NoteRequest 审核备注
type NoteRequest struct {
	Note string `json:"note"`
}

// Approve 审核通过
func (h *PayoutHandler) Approve(c *gin.Context) {
	var req NoteRequest
	_ = c.ShouldBindJSON(&req)

	payoutNo := c.Param("payoutNo")
	if err := h.app.Approve(c.Request.Context(), payoutNo, req.Note); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"payout_no": payoutNo, "status": domain.PayoutStatusApproved})
}

// Reject 驳回
func (h *PayoutHandler) Reject(c *gin.Context) {
	var req NoteRequest
	_ = c.ShouldBindJSON(&req)

	payoutNo := c.Param("payoutNo")
	if err := h.app.Reject(c.Request.Context(), payoutNo, req.Note); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"payout_no": payoutNo, "status": domain.PayoutStatusRejected})
}

// MarkPaid 打款完成
func (h *PayoutHandler) MarkPaid(c *gin.Context) {
	payoutNo := c.Param("payoutNo")
	if err := h.app.MarkPaid(c.Request.Context(), payoutNo); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"payout_no": payoutNo, "status": domain.PayoutStatusPaid})
}

func (h *PayoutHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPayoutNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, domain.ErrInsufficientBalance), errors.Is(err, domain.ErrInvalidPayoutTransition):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, domain.ErrInvalidPayoutAmount):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "VALIDATION")
	default:
		logger.Error(c.Request.Context(), "Payout request failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", "INTERNAL")
	}
}
