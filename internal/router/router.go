package router

import (
	"errors"
	"net/http"
	"strconv"

	"shop_backend/internal/config"
	"shop_backend/internal/middleware"
	"shop_backend/internal/model"
	"shop_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Setup 注册全部 HTTP 路由。
func Setup(r *gin.Engine, db *gorm.DB, rdb *rd.Client, svc *service.OrderService, cfg config.AppConfig) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})

	// Products（仅保留建种/查询，核心流程的库存载体）
	r.GET("/api/products", listProducts(db))
	r.POST("/api/products", createProduct(db))

	// Carts（capture 成功后整车删除，这里只提供创建入口）
	r.POST("/api/carts", createCart(db))

	// Order / Payment 核心流程
	order := r.Group("/api/shop/order")
	order.POST("/create", middleware.RedisRateLimit(rdb, cfg.CreateRateLimit, cfg.CreateRateWindow), createOrder(svc))
	order.POST("/capture", capturePayment(svc))
	order.GET("/user/:userId", ordersByUser(svc))
	order.GET("/details/:id", orderDetails(svc))
}

// writeError 按错误类型映射 HTTP 状态码；库存/网关/存储错误维持 500。
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var validationErr *service.ValidationError
	var verificationErr *service.VerificationError
	var notFoundErr *service.NotFoundError
	if errors.As(err, &validationErr) || errors.As(err, &verificationErr) {
		status = http.StatusBadRequest
	} else if errors.As(err, &notFoundErr) {
		status = http.StatusNotFound
	}

	c.JSON(status, gin.H{"success": false, "message": err.Error()})
}

// createOrder 建单入口：校验 → 网关建单 → 落 DRAFT 台账。
func createOrder(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID        string            `json:"userId" binding:"required"`
			CartID        string            `json:"cartId"`
			CartItems     []model.CartItem  `json:"cartItems"`
			AddressInfo   model.AddressInfo `json:"addressInfo"`
			PaymentMethod string            `json:"paymentMethod"`
			TotalAmount   float64           `json:"totalAmount"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		res, err := svc.CreateOrder(c.Request.Context(), service.CreateOrderInput{
			UserID:        req.UserID,
			CartID:        req.CartID,
			CartItems:     req.CartItems,
			AddressInfo:   req.AddressInfo,
			PaymentMethod: req.PaymentMethod,
			TotalAmount:   req.TotalAmount,
		})
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":      true,
			"message":      "Gateway order created successfully",
			"order":        res.Order,
			"gatewayOrder": res.GatewayOrder,
			"gatewayKeyId": res.GatewayKeyID,
		})
	}
}

// capturePayment 支付回调入口：验签通过才会动库存。
func capturePayment(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			GatewayOrderID   string `json:"gatewayOrderId"`
			GatewayPaymentID string `json:"gatewayPaymentId"`
			GatewaySignature string `json:"gatewaySignature"`
			OrderID          uint   `json:"orderId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		order, err := svc.CapturePayment(c.Request.Context(), service.CaptureInput{
			GatewayOrderID:   req.GatewayOrderID,
			GatewayPaymentID: req.GatewayPaymentID,
			GatewaySignature: req.GatewaySignature,
			OrderID:          req.OrderID,
		})
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Payment verified and order confirmed.",
			"data":    order,
		})
	}
}

// ordersByUser 查用户全部订单。
// 无订单返回 404 而不是空列表，沿用既有 API 语义。
func ordersByUser(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.OrdersByUser(c.Request.Context(), c.Param("userId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
	}
}

// orderDetails 按内部订单号查单条。
func orderDetails(svc *service.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order id."})
			return
		}

		order, err := svc.OrderDetails(c.Request.Context(), uint(id))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
	}
}

// listProducts 查询商品列表。
func listProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []model.Product
		if err := db.Find(&list).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
	}
}

// createProduct 创建商品（建种库存用）。
func createProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Title      string  `json:"title" binding:"required"`
			Image      string  `json:"image"`
			Price      float64 `json:"price" binding:"required,gt=0"`
			TotalStock int64   `json:"totalStock" binding:"min=0"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		p := &model.Product{
			Title:      req.Title,
			Image:      req.Image,
			Price:      req.Price,
			TotalStock: req.TotalStock,
		}
		if err := db.Create(p).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": p})
	}
}

// createCart 创建购物车快照，供建单→capture 全链路使用。
func createCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserID string           `json:"userId" binding:"required"`
			Items  []model.CartItem `json:"items" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		cart := &model.Cart{
			ID:     uuid.NewString(),
			UserID: req.UserID,
			Items:  req.Items,
		}
		if err := db.Create(cart).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": cart})
	}
}
