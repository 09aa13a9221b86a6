package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shop_backend/internal/config"
	"shop_backend/internal/gateway"
	"shop_backend/internal/model"
	"shop_backend/internal/router"
	"shop_backend/internal/service"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "s3cret"

type stubGateway struct{}

func (stubGateway) CreateOrder(_ context.Context, in gateway.OrderInput) (gateway.OrderResult, error) {
	return gateway.OrderResult{
		ID:  "order_gw_http",
		Raw: map[string]interface{}{"id": "order_gw_http", "amount": in.AmountMinor},
	}, nil
}

// newTestRouter 组装一套完整 HTTP 栈。
// Redis 指向不可达地址：限流中间件在 Redis 出错时设计为放行，正好适合单测。
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Product{}, &model.Cart{}, &model.Order{}, &model.PaymentEvent{}))

	rdb := rd.NewClient(&rd.Options{Addr: "localhost:1"})
	svc := service.New(db, stubGateway{}, nil, nil, service.Config{
		GatewayKeyID:  "rzp_test_key",
		GatewaySecret: testSecret,
		Currency:      "INR",
	}, nil)

	cfg := config.AppConfig{CreateRateLimit: 100, CreateRateWindow: time.Second}
	r := gin.New()
	router.Setup(r, db, rdb, svc, cfg)
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestCreateOrderEndpoint(t *testing.T) {
	r, db := newTestRouter(t)

	w, out := doJSON(t, r, http.MethodPost, "/api/shop/order/create", map[string]any{
		"userId": "u-1",
		"cartItems": []map[string]any{
			{"productId": 1, "title": "widget", "price": 250.0, "quantity": 2},
		},
		"addressInfo": map[string]any{"address": "1 Main St", "city": "Pune"},
		"totalAmount": 500.0,
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, out["success"])
	assert.NotNil(t, out["order"])
	assert.NotNil(t, out["gatewayOrder"])
	assert.Equal(t, "rzp_test_key", out["gatewayKeyId"])

	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateOrderEndpointRejectsBadAmount(t *testing.T) {
	r, _ := newTestRouter(t)

	w, out := doJSON(t, r, http.MethodPost, "/api/shop/order/create", map[string]any{
		"userId": "u-1",
		"cartItems": []map[string]any{
			{"productId": 1, "title": "widget", "price": 250.0, "quantity": 1},
		},
		"totalAmount": 0,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Invalid amount.", out["message"])
}

func TestCaptureEndpointStatusMapping(t *testing.T) {
	r, db := newTestRouter(t)

	// 准备一张 DRAFT 订单 + 对应库存
	p := &model.Product{Title: "widget", Price: 250, TotalStock: 5}
	require.NoError(t, db.Create(p).Error)
	order := &model.Order{
		UserID:         "u-1",
		CartItems:      []model.CartItem{{ProductID: p.ID, Title: p.Title, Price: p.Price, Quantity: 1}},
		OrderStatus:    model.OrderPending,
		PaymentMethod:  "Razorpay",
		PaymentStatus:  model.PaymentDraft,
		TotalAmount:    250,
		GatewayOrderID: "order_gw_http",
	}
	require.NoError(t, db.Create(order).Error)

	t.Run("forged signature is 400", func(t *testing.T) {
		w, out := doJSON(t, r, http.MethodPost, "/api/shop/order/capture", map[string]any{
			"gatewayOrderId":   "order_gw_http",
			"gatewayPaymentId": "pay_1",
			"gatewaySignature": "deadbeef",
			"orderId":          order.ID,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, out["success"])
	})

	t.Run("unknown order is 404", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/api/shop/order/capture", map[string]any{
			"gatewayOrderId":   "order_gw_http",
			"gatewayPaymentId": "pay_1",
			"gatewaySignature": "deadbeef",
			"orderId":          order.ID + 100,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("valid capture is 200", func(t *testing.T) {
		sig := gateway.Signature(testSecret, "order_gw_http", "pay_1")
		w, out := doJSON(t, r, http.MethodPost, "/api/shop/order/capture", map[string]any{
			"gatewayOrderId":   "order_gw_http",
			"gatewayPaymentId": "pay_1",
			"gatewaySignature": sig,
			"orderId":          order.ID,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, true, out["success"])
	})
}

func TestOrderQueryEndpoints(t *testing.T) {
	r, db := newTestRouter(t)

	order := &model.Order{
		UserID:         "u-1",
		OrderStatus:    model.OrderPending,
		PaymentMethod:  "Razorpay",
		PaymentStatus:  model.PaymentDraft,
		TotalAmount:    100,
		GatewayOrderID: "order_gw_http",
	}
	require.NoError(t, db.Create(order).Error)

	w, out := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/shop/order/details/%d", order.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])

	w, _ = doJSON(t, r, http.MethodGet, "/api/shop/order/details/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/shop/order/details/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, out = doJSON(t, r, http.MethodGet, "/api/shop/order/user/u-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])

	// 无订单用户返回 404 而不是空列表
	w, _ = doJSON(t, r, http.MethodGet, "/api/shop/order/user/nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
