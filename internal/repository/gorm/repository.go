package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"polysim/internal/models"
	"polysim/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetPortfolio(ctx context.Context) (*models.Portfolio, error) {
	var item models.Portfolio
	err := s.db.WithContext(ctx).Order("id asc").First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) EnsurePortfolio(ctx context.Context, initialBalance decimal.Decimal) (*models.Portfolio, error) {
	existing, err := s.GetPortfolio(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	item := models.Portfolio{Balance: initialBalance}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) PlaceTrade(ctx context.Context, portfolioID uint64, trade *models.Trade) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Relative debit guarded by the current balance. A concurrent
		// placement that spent the balance first makes this match no rows.
		res := tx.Model(&models.Portfolio{}).
			Where("id = ? AND balance >= ?", portfolioID, trade.Amount).
			Update("balance", gorm.Expr("balance - ?", trade.Amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrInsufficientBalance
		}
		return tx.Create(trade).Error
	})
}

func (s *Store) CloseTrade(ctx context.Context, portfolioID, tradeID uint64, credit decimal.Decimal, closedAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Trade{}).
			Where("id = ? AND status = ?", tradeID, models.TradeStatusActive).
			Updates(map[string]any{
				"status":    models.TradeStatusClosed,
				"closed_at": closedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrTradeNotActive
		}
		return tx.Model(&models.Portfolio{}).
			Where("id = ?", portfolioID).
			Update("balance", gorm.Expr("balance + ?", credit)).Error
	})
}

func (s *Store) GetTradeByID(ctx context.Context, id uint64) (*models.Trade, error) {
	var item models.Trade
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListTradesByStatus(ctx context.Context, status string) ([]models.Trade, error) {
	query := s.db.WithContext(ctx).Model(&models.Trade{})
	if strings.TrimSpace(status) != "" {
		query = query.Where("status = ?", status)
	}
	var items []models.Trade
	if err := query.Order("created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateTradeCurrentPrice(ctx context.Context, id uint64, price decimal.Decimal) error {
	return s.db.WithContext(ctx).Model(&models.Trade{}).
		Where("id = ?", id).
		Update("current_price", price).Error
}

func (s *Store) ResetPortfolio(ctx context.Context, portfolioID uint64, balance decimal.Decimal) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Portfolio{}).
			Where("id = ?", portfolioID).
			Update("balance", balance).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&models.Trade{}).Error
	})
}

func (s *Store) InsertAnalysisLog(ctx context.Context, item *models.AnalysisLog) error {
	if item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListAnalysisLogs(ctx context.Context, marketID string, limit int) ([]models.AnalysisLog, error) {
	query := s.db.WithContext(ctx).Model(&models.AnalysisLog{})
	if strings.TrimSpace(marketID) != "" {
		query = query.Where("market_id = ?", strings.TrimSpace(marketID))
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var items []models.AnalysisLog
	if err := query.Order("created_at desc").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
