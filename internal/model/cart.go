package model

import (
	"time"

	"gorm.io/gorm"
)

// Cart 购物车：支付确认后整车删除，核心流程只用到这一种写操作。
type Cart struct {
	ID        string         `gorm:"primarykey;size:64" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID string     `gorm:"size:64;not null;index" json:"userId"`
	Items  []CartItem `gorm:"serializer:json" json:"items"`
}

func (Cart) TableName() string { return "carts" }
