package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"polysim/internal/models"
)

var (
	// ErrInsufficientBalance is returned when the guarded balance debit
	// matched no row, meaning the stake exceeded the available balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrTradeNotActive is returned when a close targets a trade that does
	// not exist or is already closed.
	ErrTradeNotActive = errors.New("trade not active")
)

// Repository is the durable store behind the paper-trading ledger. All
// balance mutations are relative adjustments applied at commit time, never
// read-then-write of a cached value.
type Repository interface {
	GetPortfolio(ctx context.Context) (*models.Portfolio, error)
	EnsurePortfolio(ctx context.Context, initialBalance decimal.Decimal) (*models.Portfolio, error)

	// PlaceTrade debits the stake and inserts the trade as one transaction.
	PlaceTrade(ctx context.Context, portfolioID uint64, trade *models.Trade) error
	// CloseTrade marks an active trade closed and credits its value back.
	CloseTrade(ctx context.Context, portfolioID, tradeID uint64, credit decimal.Decimal, closedAt time.Time) error

	GetTradeByID(ctx context.Context, id uint64) (*models.Trade, error)
	ListTradesByStatus(ctx context.Context, status string) ([]models.Trade, error)
	UpdateTradeCurrentPrice(ctx context.Context, id uint64, price decimal.Decimal) error

	// ResetPortfolio restores the balance and deletes every trade.
	ResetPortfolio(ctx context.Context, portfolioID uint64, balance decimal.Decimal) error

	InsertAnalysisLog(ctx context.Context, item *models.AnalysisLog) error
	ListAnalysisLogs(ctx context.Context, marketID string, limit int) ([]models.AnalysisLog, error)
}
