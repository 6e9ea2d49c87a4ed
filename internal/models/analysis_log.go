package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AnalysisLog records one advisory call against a market.
type AnalysisLog struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	MarketID       string          `gorm:"type:varchar(255);index:idx_analysis_market_created" json:"market_id"`
	MarketQuestion string          `gorm:"type:text" json:"market_question"`
	MarketPrice    decimal.Decimal `gorm:"type:numeric(20,10)" json:"market_price"`
	AIProbability  decimal.Decimal `gorm:"column:ai_probability;type:numeric(20,10)" json:"ai_probability"`
	Edge           decimal.Decimal `gorm:"type:numeric(20,10)" json:"edge"`
	Confidence     string          `gorm:"type:varchar(20)" json:"confidence"`
	Reasoning      string          `gorm:"type:text" json:"reasoning"`
	KeyEvents      datatypes.JSON  `gorm:"type:jsonb" json:"key_events"`
	Risks          datatypes.JSON  `gorm:"type:jsonb" json:"risks"`
	Sources        datatypes.JSON  `gorm:"type:jsonb" json:"sources"`
	CreatedAt      time.Time       `gorm:"type:timestamptz;autoCreateTime;index:idx_analysis_market_created" json:"created_at"`
}

func (AnalysisLog) TableName() string {
	return "analysis_logs"
}
