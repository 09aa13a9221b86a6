package model

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus 订单履约状态
type OrderStatus string

// PaymentStatus 支付状态（DRAFT → PAID / FAILED，到终态后不再变更）
type PaymentStatus string

const (
	OrderPending    OrderStatus = "pending"     // 已建单，等待支付回调
	OrderConfirmed  OrderStatus = "confirmed"   // 支付验签通过，库存已扣
	OrderStockIssue OrderStatus = "stock_issue" // 回调时发现库存不足

	PaymentDraft  PaymentStatus = "DRAFT"
	PaymentPaid   PaymentStatus = "PAID"
	PaymentFailed PaymentStatus = "FAILED"
)

// CartItem 是下单时刻的商品快照，不引用实时商品数据。
type CartItem struct {
	ProductID uint    `json:"productId"`
	Title     string  `json:"title"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// AddressInfo 收货地址快照（冗余存储，不做外键约束）。
type AddressInfo struct {
	AddressID string `json:"addressId"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Pincode   string `json:"pincode"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

// Order 订单台账：一次购买尝试的完整记录
type Order struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"orderDate"`
	UpdatedAt time.Time      `json:"orderUpdateDate"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID      string      `gorm:"size:64;not null;index" json:"userId"`
	CartID      string      `gorm:"size:64" json:"cartId"`
	CartItems   []CartItem  `gorm:"serializer:json" json:"cartItems"`
	AddressInfo AddressInfo `gorm:"serializer:json" json:"addressInfo"`

	OrderStatus   OrderStatus   `gorm:"size:32;not null;default:'pending'" json:"orderStatus"`
	PaymentMethod string        `gorm:"size:32;not null" json:"paymentMethod"`
	PaymentStatus PaymentStatus `gorm:"size:16;not null;default:'DRAFT'" json:"paymentStatus"`
	// TotalAmount 以主货币单位存储（卢比），调网关时才转最小单位。
	TotalAmount float64 `gorm:"not null" json:"totalAmount"`

	// GatewayOrderID 建单成功后写入；capture 时必须与回调里的一致。
	GatewayOrderID   string `gorm:"size:64;index" json:"gatewayOrderId"`
	GatewayPaymentID string `gorm:"size:64" json:"gatewayPaymentId,omitempty"`
	GatewaySignature string `gorm:"size:128" json:"gatewaySignature,omitempty"`
}

// 显式实现结构，确定表名
func (Order) TableName() string { return "orders" }
