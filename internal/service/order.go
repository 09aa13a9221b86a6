package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"shop_backend/internal/gateway"
	"shop_backend/internal/model"
	"shop_backend/internal/queue"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// paymentMethods 历史沿袭的封闭集合；默认走 Razorpay。
var paymentMethods = map[string]bool{
	"COD":      true,
	"Stripe":   true,
	"PayPal":   true,
	"paypal":   true,
	"Razorpay": true,
}

const defaultPaymentMethod = "Razorpay"

// Config 注入网关凭证与币种，启动时加载一次，不再读环境变量。
type Config struct {
	GatewayKeyID  string
	GatewaySecret string
	Currency      string
}

// OrderService 核心订单/支付流程：
// 建网关订单 → 落 DRAFT 台账 → 回调验签 → 事务内扣库存删购物车 → 置 PAID。
type OrderService struct {
	db     *gorm.DB
	gw     gateway.Client
	guard  CaptureGuard // 可为 nil（单测或无 Redis 部署）
	events EventSink    // 可为 nil
	cfg    Config
	log    *slog.Logger
}

func New(db *gorm.DB, gw gateway.Client, guard CaptureGuard, events EventSink, cfg Config, log *slog.Logger) *OrderService {
	if log == nil {
		log = slog.Default()
	}
	return &OrderService{db: db, gw: gw, guard: guard, events: events, cfg: cfg, log: log}
}

// CreateOrderInput 建单入参。UserID/CartID 是外部系统的不透明引用。
type CreateOrderInput struct {
	UserID        string
	CartID        string
	CartItems     []model.CartItem
	AddressInfo   model.AddressInfo
	PaymentMethod string
	TotalAmount   float64
}

// CreateOrderResult 返回台账订单 + 网关原始订单 + 前端可用的 key id。
type CreateOrderResult struct {
	Order        *model.Order
	GatewayOrder map[string]interface{}
	GatewayKeyID string
}

// CreateOrder 先调网关、成功后才落库，网关失败时不留半截订单。
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	if in.TotalAmount <= 0 {
		return nil, &ValidationError{Message: "Invalid amount."}
	}
	if len(s.cfg.Currency) != 3 {
		return nil, &ValidationError{Message: "Invalid currency."}
	}
	if len(in.CartItems) == 0 {
		return nil, &ValidationError{Message: "Cart is empty."}
	}
	for _, it := range in.CartItems {
		if it.ProductID == 0 || it.Quantity <= 0 || it.Price < 0 {
			return nil, &ValidationError{Message: fmt.Sprintf("Invalid cart item %q.", it.Title)}
		}
	}

	method := in.PaymentMethod
	if method == "" {
		method = defaultPaymentMethod
	}
	if !paymentMethods[method] {
		return nil, &ValidationError{Message: fmt.Sprintf("Unsupported payment method %q.", method)}
	}

	// 网关按最小货币单位计费，四舍五入避免浮点误差
	amountMinor := toMinorUnits(in.TotalAmount)

	cartRef := in.CartID
	if cartRef == "" {
		cartRef = "N/A"
	}
	gwOrder, err := s.gw.CreateOrder(ctx, gateway.OrderInput{
		AmountMinor: amountMinor,
		Currency:    s.cfg.Currency,
		// receipt 必须每次唯一，防止网关侧幂等碰撞
		Receipt: fmt.Sprintf("order_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8]),
		Notes: map[string]string{
			"userId": in.UserID,
			"cartId": cartRef,
		},
	})
	if err != nil {
		s.log.Error("gateway order create failed", "user_id", in.UserID, "err", err)
		return nil, &GatewayError{Err: err}
	}

	order := model.Order{
		UserID:         in.UserID,
		CartID:         in.CartID,
		CartItems:      in.CartItems,
		AddressInfo:    in.AddressInfo,
		OrderStatus:    model.OrderPending,
		PaymentMethod:  method,
		PaymentStatus:  model.PaymentDraft,
		TotalAmount:    in.TotalAmount,
		GatewayOrderID: gwOrder.ID,
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		s.log.Error("order ledger write failed", "gateway_order_id", gwOrder.ID, "err", err)
		return nil, &PersistenceError{Err: err}
	}

	return &CreateOrderResult{
		Order:        &order,
		GatewayOrder: gwOrder.Raw,
		GatewayKeyID: s.cfg.GatewayKeyID,
	}, nil
}

// CaptureInput 支付回调入参，四个字段全部必填。
type CaptureInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
	OrderID          uint
}

// CapturePayment 按固定顺序过闸：
// 订单存在 → 仍为 DRAFT → 网关订单号一致 → 签名验证，
// 全通过后在单个事务里条件扣库存、删购物车、置 PAID。
// 任一商品库存不足则整体回滚，订单标记 stock_issue/FAILED。
func (s *OrderService) CapturePayment(ctx context.Context, in CaptureInput) (*model.Order, error) {
	if in.GatewayOrderID == "" || in.GatewayPaymentID == "" || in.GatewaySignature == "" || in.OrderID == 0 {
		return nil, &ValidationError{Message: "Missing payment details for verification."}
	}

	// 并发 capture 同一订单时只放行一个，其余直接拒绝。
	// Redis 故障时降级放行，DRAFT 闸门仍能挡住串行重放。
	if s.guard != nil {
		token := uuid.NewString()
		ok, err := s.guard.Acquire(ctx, in.OrderID, token)
		if err == nil && !ok {
			return nil, &ValidationError{Message: "Capture already in progress for this order."}
		}
		if err != nil {
			s.log.Warn("capture guard unavailable, proceeding", "order_id", in.OrderID, "err", err)
		} else {
			defer func() {
				if relErr := s.guard.Release(ctx, in.OrderID, token); relErr != nil {
					s.log.Warn("capture guard release failed", "order_id", in.OrderID, "err", relErr)
				}
			}()
		}
	}

	var order model.Order
	if err := s.db.WithContext(ctx).First(&order, in.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Message: "Order not found."}
		}
		return nil, &PersistenceError{Err: err}
	}

	// 终态订单不允许重复 capture，防止二次扣库存
	if order.PaymentStatus != model.PaymentDraft {
		return nil, &ValidationError{Message: "Order is not awaiting capture."}
	}

	if order.GatewayOrderID != in.GatewayOrderID {
		return nil, &VerificationError{Message: "Payment verification failed: Order ID mismatch."}
	}

	if !gateway.VerifySignature(s.cfg.GatewaySecret, in.GatewayOrderID, in.GatewayPaymentID, in.GatewaySignature) {
		return nil, &VerificationError{Message: "Payment verification failed: Signature mismatch."}
	}

	// 验签通过后才允许动库存。整个 capture 跑在一个事务里：
	// 条件 UPDATE（total_stock >= quantity）原子判断 + 扣减，
	// 任何一项不满足就回滚所有已扣项。
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range order.CartItems {
			res := tx.Model(&model.Product{}).
				Where("id = ? AND total_stock >= ?", it.ProductID, it.Quantity).
				Update("total_stock", gorm.Expr("total_stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			// 0 行受影响：商品不存在或库存不够，二者同样处置
			if res.RowsAffected == 0 {
				return &StockError{Title: it.Title}
			}
		}

		if order.CartID != "" {
			if err := tx.Where("id = ?", order.CartID).Delete(&model.Cart{}).Error; err != nil {
				return err
			}
		}

		order.PaymentStatus = model.PaymentPaid
		order.OrderStatus = model.OrderConfirmed
		order.GatewayPaymentID = in.GatewayPaymentID
		order.GatewaySignature = in.GatewaySignature
		return tx.Save(&order).Error
	})
	if txErr != nil {
		var stockErr *StockError
		if errors.As(txErr, &stockErr) {
			// 库存不足：事务已回滚，单独把订单标记为终态
			if markErr := s.db.WithContext(ctx).Model(&model.Order{}).
				Where("id = ?", order.ID).
				Updates(map[string]any{
					"order_status":   model.OrderStockIssue,
					"payment_status": model.PaymentFailed,
				}).Error; markErr != nil {
				s.log.Error("mark stock_issue failed", "order_id", order.ID, "err", markErr)
			}
			return nil, stockErr
		}
		return nil, &PersistenceError{Err: txErr}
	}

	// 审计事件走 outbox，失败不影响 capture 结果
	if s.events != nil {
		msg := queue.PaymentMessage{
			EventID:     uuid.NewString(),
			OrderID:     order.ID,
			UserID:      order.UserID,
			PaymentID:   in.GatewayPaymentID,
			AmountMinor: toMinorUnits(order.TotalAmount),
		}
		if err := s.events.Append(ctx, msg); err != nil {
			s.log.Error("payment event append failed", "order_id", order.ID, "err", err)
		}
	}

	return &order, nil
}

// OrdersByUser 按下单时间倒序返回用户全部订单。
// 查不到返回 NotFoundError 而不是空列表，维持既有 API 语义。
func (s *OrderService) OrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, &ValidationError{Message: "userId is required."}
	}

	var orders []model.Order
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, &PersistenceError{Err: err}
	}
	if len(orders) == 0 {
		return nil, &NotFoundError{Message: "No orders found."}
	}
	return orders, nil
}

// OrderDetails 按内部订单号查询单条订单。
func (s *OrderService) OrderDetails(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Message: "Order not found."}
		}
		return nil, &PersistenceError{Err: err}
	}
	return &order, nil
}

// toMinorUnits 主货币单位 → 最小货币单位（卢比→派萨），四舍五入取整。
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
