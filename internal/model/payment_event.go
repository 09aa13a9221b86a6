package model

import "time"

// PaymentEvent 是 Kafka 消费端落库的支付成功审计记录。
// EventID 唯一索引保证重复消费幂等。
type PaymentEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	EventID     string `gorm:"size:64;uniqueIndex;not null" json:"event_id"`
	OrderID     uint   `gorm:"not null;index" json:"order_id"`
	UserID      string `gorm:"size:64;not null;index" json:"user_id"`
	PaymentID   string `gorm:"size:64;not null" json:"payment_id"`
	AmountMinor int64  `gorm:"not null" json:"amount_minor"` // 最小货币单位
}

func (PaymentEvent) TableName() string { return "payment_events" }
