package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is the single paper-trading account. One row per deployment,
// created on first use with the configured initial balance.
type Portfolio struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Balance   decimal.Decimal `gorm:"type:numeric(30,10);not null" json:"balance"`
	UpdatedAt time.Time       `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Portfolio) TableName() string {
	return "portfolio"
}
