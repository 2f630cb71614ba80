package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	orderdomain "github.com/wyfcoding/vendersphere/internal/order/domain"
	"github.com/wyfcoding/vendersphere/internal/payment/application"
	"github.com/wyfcoding/vendersphere/internal/payment/domain"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/middleware"
	"github.com/wyfcoding/vendersphere/pkg/response"
)

// PaymentHandler 支付 HTTP 处理器
type PaymentHandler struct {
	app *application.PaymentApplicationService
}

// NewPaymentHandler 创建支付 HTTP 处理器实例
func NewPaymentHandler(app *application.PaymentApplicationService) *PaymentHandler {
	return &PaymentHandler{app: app}
}

// RegisterRoutes 注册路由；private 分组已挂载 JWT 鉴权
func (h *PaymentHandler) RegisterRoutes(private *gin.RouterGroup) {
	private.POST("/orders/:orderNo/payments", h.RecordPayment)
	private.GET("/orders/:orderNo/payments", h.GetPayment)
	private.GET("/payments", h.MyPayments)
}

// RecordPaymentRequest 支付入账请求
type RecordPaymentRequest struct {
	TransactionID string  `json:"transaction_id" binding:"required"`
	Method        string  `json:"method" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
}

// RecordPayment 记录一笔网关确认的支付
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	payment, err := h.app.Reconcile(c.Request.Context(),
		middleware.SubjectEmail(c), middleware.SubjectRole(c),
		c.Param("orderNo"), req.TransactionID, req.Method,
		decimal.NewFromFloat(req.Amount))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Created(c, payment)
}

// GetPayment 查询订单支付记录
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.app.GetByOrderNo(c.Request.Context(),
		middleware.SubjectEmail(c), middleware.SubjectRole(c), c.Param("orderNo"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, payment)
}

// MyPayments 当前用户支付记录列表
func (h *PaymentHandler) MyPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	payments, total, err := h.app.ListByUser(c.Request.Context(), middleware.SubjectEmail(c), page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{
		"payments": payments,
		"total":    total,
		"page":     page,
	})
}

func (h *PaymentHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orderdomain.ErrOrderNotFound), errors.Is(err, domain.ErrPaymentNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, orderdomain.ErrNotOwner):
		response.ErrorWithStatus(c, http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, domain.ErrAlreadyPaid), errors.Is(err, domain.ErrOrderNotPayable):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, domain.ErrAmountMismatch), errors.Is(err, domain.ErrInvalidPayment):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "VALIDATION")
	default:
		logger.Error(c.Request.Context(), "Payment request failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", "INTERNAL")
	}
}
