package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"shop_backend/internal/model"

	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

// Consumer 消费支付事件并落审计表。
type Consumer struct {
	r   *kafka.Reader
	db  *gorm.DB
	log *slog.Logger
}

func NewConsumer(brokers []string, topic, groupID string, db *gorm.DB, log *slog.Logger) *Consumer {
	if log == nil {
		log = slog.Default()
	}
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
		db:  db,
		log: log,
	}
}

func (c *Consumer) Close() error { return c.r.Close() }

func (c *Consumer) Run(ctx context.Context) {
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			return // ctx cancel / 连接断开等
		}

		var msg PaymentMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			c.log.Error("consumer unmarshal", "err", err)
			continue
		}
		if err := msg.Validate(); err != nil {
			c.log.Error("consumer drop dirty message", "err", err)
			continue
		}

		ev := &model.PaymentEvent{
			EventID:     msg.EventID,
			OrderID:     msg.OrderID,
			UserID:      msg.UserID,
			PaymentID:   msg.PaymentID,
			AmountMinor: msg.AmountMinor,
		}

		if err := c.db.Create(ev).Error; err != nil {
			// 幂等：重复消息导致 UNIQUE 冲突，直接当作成功
			if errorsLikeUnique(err) {
				continue
			}
			c.log.Error("consumer db create", "err", err)
			continue
		}
	}
}

func errorsLikeUnique(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE") || strings.Contains(s, "unique")
}
