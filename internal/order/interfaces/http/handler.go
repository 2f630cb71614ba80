package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	cartdomain "github.com/wyfcoding/vendersphere/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/vendersphere/internal/catalog/domain"
	"github.com/wyfcoding/vendersphere/internal/order/application"
	"github.com/wyfcoding/vendersphere/internal/order/domain"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/middleware"
	"github.com/wyfcoding/vendersphere/pkg/response"
	"github.com/wyfcoding/vendersphere/pkg/utils"
)

// OrderHandler 订单 HTTP 处理器
type OrderHandler struct {
	app *application.OrderApplicationService
}

// NewOrderHandler 创建订单 HTTP 处理器实例
func NewOrderHandler(app *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{app: app}
}

// RegisterRoutes 注册路由；private 分组已挂载 JWT 鉴权
func (h *OrderHandler) RegisterRoutes(private *gin.RouterGroup) {
	orders := private.Group("/orders")
	{
		orders.POST("", h.Checkout)
		orders.GET("", h.MyOrders)
		orders.GET("/:orderNo", h.GetOrder)
		orders.POST("/:orderNo/cancel", h.CancelOrder)
		orders.POST("/:orderNo/reorder", h.Reorder)
	}

	admin := private.Group("/admin/orders", middleware.RequireRole("admin"))
	{
		admin.GET("", h.ListOrders)
		admin.POST("/:orderNo/ship", h.MarkShipped)
		admin.POST("/:orderNo/deliver", h.MarkDelivered)
	}
}

// CheckoutRequest 下单请求
type CheckoutRequest struct {
	Address struct {
		Name   string `json:"name" binding:"required"`
		Phone  string `json:"phone" binding:"required"`
		Street string `json:"street" binding:"required"`
		City   string `json:"city" binding:"required"`
		Region string `json:"region"`
	} `json:"address" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// Checkout 提交下单
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	order, err := h.app.Checkout(c.Request.Context(), application.CheckoutCommand{
		UserEmail: middleware.SubjectEmail(c),
		Address: domain.ShippingAddress{
			Name:   req.Address.Name,
			Phone:  req.Address.Phone,
			Street: req.Address.Street,
			City:   req.Address.City,
			Region: req.Address.Region,
		},
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Created(c, order)
}

// GetOrder 获取订单详情
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.app.Get(c.Request.Context(),
		middleware.SubjectEmail(c), middleware.SubjectRole(c), c.Param("orderNo"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, order)
}

// MyOrders 当前用户订单列表
func (h *OrderHandler) MyOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	orders, total, err := h.app.ListByUser(c.Request.Context(), middleware.SubjectEmail(c), page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{
		"orders":      orders,
		"total":       total,
		"page":        page,
		"total_pages": utils.TotalPages(total, limit),
	})
}

// ListOrders 管理端订单列表
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	status := domain.OrderStatus(c.Query("status"))

	orders, total, err := h.app.ListAll(c.Request.Context(), status, page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
	})
}

// CancelOrder 取消订单
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderNo := c.Param("orderNo")
	err := h.app.Cancel(c.Request.Context(),
		middleware.SubjectEmail(c), middleware.SubjectRole(c), orderNo)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"order_no": orderNo, "status": domain.OrderStatusCancelled})
}

// Reorder 再来一单：历史订单行合并进购物车
func (h *OrderHandler) Reorder(c *gin.Context) {
	orderNo := c.Param("orderNo")
	if err := h.app.Reorder(c.Request.Context(), middleware.SubjectEmail(c), orderNo); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"order_no": orderNo})
}

// MarkShipped 发货
func (h *OrderHandler) MarkShipped(c *gin.Context) {
	orderNo := c.Param("orderNo")
	if err := h.app.MarkShipped(c.Request.Context(), orderNo); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"order_no": orderNo, "status": domain.OrderStatusShipped})
}

// MarkDelivered 签收
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	orderNo := c.Param("orderNo")
	if err := h.app.MarkDelivered(c.Request.Context(), orderNo); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"order_no": orderNo, "status": domain.OrderStatusDelivered})
}

func (h *OrderHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, catalogdomain.ErrProductNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, catalogdomain.ErrInsufficientStock):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "INSUFFICIENT_STOCK")
	case errors.Is(err, domain.ErrNotOwner):
		response.ErrorWithStatus(c, http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, domain.ErrNotCancellable),
		errors.Is(err, domain.ErrCancelWindowExpired),
		errors.Is(err, domain.ErrInvalidTransition):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, domain.ErrInvalidOrderRequest),
		errors.Is(err, application.ErrEmptyCart),
		errors.Is(err, cartdomain.ErrInvalidQuantity):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "VALIDATION")
	default:
		logger.Error(c.Request.Context(), "Order request failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", "INTERNAL")
	}
}
