package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/vendersphere/internal/catalog/application"
	"github.com/wyfcoding/vendersphere/internal/catalog/domain"
	"github.com/wyfcoding/vendersphere/pkg/logger"
	"github.com/wyfcoding/vendersphere/pkg/middleware"
	"github.com/wyfcoding/vendersphere/pkg/response"
)

// CatalogHandler HTTP 处理器
// 负责处理商品目录相关的 HTTP 请求
type CatalogHandler struct {
	app *application.CatalogApplicationService
}

// NewCatalogHandler 创建 HTTP 处理器实例
func NewCatalogHandler(app *application.CatalogApplicationService) *CatalogHandler {
	return &CatalogHandler{app: app}
}

// RegisterRoutes 注册路由；private 分组已挂载 JWT 鉴权
func (h *CatalogHandler) RegisterRoutes(public, private *gin.RouterGroup) {
	products := public.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/featured", h.FeaturedProducts)
		products.GET("/flash-sale", h.FlashSaleProducts)
		products.GET("/:id", h.GetProduct)
		products.GET("/:id/related", h.RelatedProducts)
		products.GET("/:id/reviews", h.ProductReviews)
	}
	public.GET("/categories", h.Categories)
	public.GET("/testimonials", h.Testimonials)

	seller := private.Group("", middleware.RequireRole("seller", "admin"))
	{
		seller.POST("/products", h.AddProduct)
		seller.PATCH("/products/:id", h.UpdateProduct)
		seller.PATCH("/products/:id/status", h.SetProductStatus)
		seller.DELETE("/products/:id", h.DeleteProduct)
		seller.GET("/seller/products", h.SellerProducts)
	}
	private.POST("/products/:id/reviews", h.AddReview)
}

// AddProductRequest 新增商品请求
type AddProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Brand       string  `json:"brand"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category" binding:"required"`
	Price       float64 `json:"price" binding:"required"`
	Discount    int     `json:"discount"`
	Stock       int     `json:"stock"`
	SellerID    string  `json:"seller_id"`
}

// AddProduct 新增商品
func (h *CatalogHandler) AddProduct(c *gin.Context) {
	var req AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	id, err := h.app.AddProduct(c.Request.Context(), application.AddProductRequest{
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
		Price:       decimal.NewFromFloat(req.Price),
		Discount:    req.Discount,
		Stock:       req.Stock,
		SellerEmail: middleware.SubjectEmail(c),
		SellerID:    req.SellerID,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Created(c, gin.H{"product_id": id})
}

// UpdateProduct 更新商品
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	if err := h.app.UpdateProduct(c.Request.Context(), id, fields); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"product_id": id})
}

// SetProductStatusRequest 切换商品状态请求
type SetProductStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetProductStatus 切换商品状态
func (h *CatalogHandler) SetProductStatus(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	var req SetProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	if err := h.app.SetProductStatus(c.Request.Context(), id, domain.ProductStatus(req.Status)); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"product_id": id, "status": req.Status})
}

// DeleteProduct 删除商品
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	if err := h.app.DeleteProduct(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{"product_id": id})
}

// GetProduct 获取商品详情
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	product, err := h.app.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, product)
}

// ListProducts 商品列表（过滤 + 排序 + 分页）
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	filter := domain.ListFilter{
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		SellerID:  c.Query("seller"),
		FlashOnly: c.Query("flash") == "true",
		Sort:      domain.SortOrder(c.Query("sort")),
	}
	if v := c.Query("price_min"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			filter.PriceMin = &d
		}
	}
	if v := c.Query("price_max"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			filter.PriceMax = &d
		}
	}
	if v := c.Query("rating_gte"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.RatingGte = f
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "12"))

	products, total, err := h.app.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.renderError(c, err)
		return
	}
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	response.Success(c, gin.H{
		"products":    products,
		"total":       total,
		"page":        filter.Page,
		"total_pages": totalPages,
	})
}

// FeaturedProducts 精选商品
func (h *CatalogHandler) FeaturedProducts(c *gin.Context) {
	products, err := h.app.FeaturedProducts(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, products)
}

// FlashSaleProducts 限时折扣商品
func (h *CatalogHandler) FlashSaleProducts(c *gin.Context) {
	products, err := h.app.FlashSaleProducts(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, products)
}

// RelatedProducts 相关商品
func (h *CatalogHandler) RelatedProducts(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	products, err := h.app.RelatedProducts(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, products)
}

// SellerProducts 卖家商品列表
func (h *CatalogHandler) SellerProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	products, total, err := h.app.SellerProducts(c.Request.Context(), middleware.SubjectEmail(c), page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, gin.H{
		"products": products,
		"total":    total,
		"page":     page,
	})
}

// Categories 分类列表
func (h *CatalogHandler) Categories(c *gin.Context) {
	categories, err := h.app.Categories(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, categories)
}

// AddReviewRequest 新增评价请求
type AddReviewRequest struct {
	UserName string `json:"user_name"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment"`
}

// AddReview 新增评价
func (h *CatalogHandler) AddReview(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	var req AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	err := h.app.AddReview(c.Request.Context(), id, middleware.SubjectEmail(c), req.UserName, req.Rating, req.Comment)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Created(c, gin.H{"product_id": id})
}

// ProductReviews 商品评价列表
func (h *CatalogHandler) ProductReviews(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	reviews, err := h.app.ProductReviews(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, reviews)
}

// Testimonials 首页评价列表
func (h *CatalogHandler) Testimonials(c *gin.Context) {
	testimonials, err := h.app.Testimonials(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, testimonials)
}

func (h *CatalogHandler) productID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id", "")
		return 0, false
	}
	return uint(id), true
}

func (h *CatalogHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, domain.ErrAlreadyReviewed):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, domain.ErrInvalidProduct), errors.Is(err, application.ErrInvalidReview):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "VALIDATION")
	default:
		logger.Error(c.Request.Context(), "Catalog request failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", "INTERNAL")
	}
}
