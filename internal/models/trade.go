package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DirectionYes = "YES"
	DirectionNo  = "NO"

	TradeStatusActive = "ACTIVE"
	TradeStatusClosed = "CLOSED"
)

// Trade is a simulated position. Amount and entry price are fixed at creation;
// only current_price, status and closed_at change afterwards.
type Trade struct {
	ID             uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	MarketID       string           `gorm:"type:varchar(255);index" json:"market_id"`
	MarketQuestion string           `gorm:"type:text" json:"market_question"`
	Direction      string           `gorm:"type:varchar(10);not null" json:"direction"`
	Amount         decimal.Decimal  `gorm:"type:numeric(30,10);not null" json:"amount"`
	EntryPrice     decimal.Decimal  `gorm:"type:numeric(20,10);not null" json:"entry_price"`
	CurrentPrice   *decimal.Decimal `gorm:"type:numeric(20,10)" json:"current_price,omitempty"`
	Status         string           `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_trade_status_market" json:"status"`
	CreatedAt      time.Time        `gorm:"type:timestamptz;autoCreateTime;index" json:"created_at"`
	ClosedAt       *time.Time       `gorm:"type:timestamptz" json:"closed_at,omitempty"`
}

func (Trade) TableName() string {
	return "trades"
}
