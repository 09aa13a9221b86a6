package model

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品：标题、图片、单价、可售库存
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title string  `gorm:"size:128;not null" json:"title"`
	Image string  `gorm:"size:512" json:"image"`
	Price float64 `gorm:"not null" json:"price"` // 主货币单位
	// TotalStock 是 capture 阶段唯一消费的字段，扣减走条件 UPDATE。
	TotalStock int64 `gorm:"not null;default:0" json:"totalStock"`
}

func (Product) TableName() string { return "products" }
