package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/wyfcoding/vendersphere/internal/catalog/domain"
	"github.com/wyfcoding/vendersphere/internal/cart/application"
	"github.com/wyfcoding/vendersphere/internal/cart/domain"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/middleware"
	"github.com/wyfcoding/vendersphere/pkg/response"
)

// CartHandler HTTP 处理器
type CartHandler struct {
	app *application.CartApplicationService
}

// NewCartHandler 创建 HTTP 处理器实例
func NewCartHandler(app *application.CartApplicationService) *CartHandler {
	return &CartHandler{app: app}
}

// RegisterRoutes 注册路由；全部需要鉴权，购物车只属于当前用户
func (h *CartHandler) RegisterRoutes(private *gin.RouterGroup) {
	cart := private.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddItem)
		cart.PATCH("/items/:productId", h.UpdateQuantity)
		cart.DELETE("/items/:productId", h.RemoveItem)
		cart.DELETE("", h.ClearCart)
	}
}

// GetCart 获取当前用户的购物车
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.app.GetCart(c.Request.Context(), middleware.SubjectEmail(c))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{
		"cart":       cart,
		"total":      cart.Total(),
		"item_count": cart.ItemCount(),
	})
}

// AddItemRequest 加购请求
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// AddItem 加购一件商品
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	if err := h.app.AddItem(c.Request.Context(), middleware.SubjectEmail(c), req.ProductID); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"product_id": req.ProductID})
}

// UpdateQuantityRequest 设置数量请求
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// UpdateQuantity 设置某行数量
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	productID, ok := h.productID(c)
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	if err := h.app.UpdateQuantity(c.Request.Context(), middleware.SubjectEmail(c), productID, req.Quantity); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"product_id": productID, "quantity": req.Quantity})
}

// RemoveItem 移除某行
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := h.productID(c)
	if !ok {
		return
	}
	if err := h.app.RemoveItem(c.Request.Context(), middleware.SubjectEmail(c), productID); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"product_id": productID})
}

// ClearCart 清空购物车
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.app.ClearCart(c.Request.Context(), middleware.SubjectEmail(c)); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

func (h *CartHandler) productID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id", "")
		return 0, false
	}
	return uint(id), true
}

func (h *CartHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrCartItemNotFound),
		errors.Is(err, catalogdomain.ErrProductNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, domain.ErrInvalidQuantity):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "VALIDATION")
	case errors.Is(err, application.ErrProductUnavailable):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "CONFLICT")
	default:
		logger.Error(c.Request.Context(), "Cart request failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", "INTERNAL")
	}
}
