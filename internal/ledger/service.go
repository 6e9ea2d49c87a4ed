package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"polysim/internal/models"
	"polysim/internal/repository"
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidDirection    = errors.New("direction must be YES or NO")
	ErrInvalidPrice        = errors.New("price must be in (0, 1]")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTradeNotActive      = errors.New("trade not active")
)

// Quoter resolves the latest YES/NO prices for a market. Satisfied by
// opportunity.Service.
type Quoter interface {
	Quote(ctx context.Context, marketID string) (yes, no float64, err error)
}

// Service is the paper-trading ledger: one portfolio, its balance, and the
// lifecycle of simulated trades against it.
type Service struct {
	Repo   repository.Repository
	Quotes Quoter
	Logger *zap.Logger

	InitialBalance decimal.Decimal
	MinTradeAmount decimal.Decimal
}

type PlaceTradeInput struct {
	MarketID       string
	MarketQuestion string
	Direction      string
	Amount         decimal.Decimal
	Price          decimal.Decimal
}

type PlaceTradeResult struct {
	Trade      models.Trade    `json:"trade"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// PlaceTrade validates the request and applies the debit and the trade insert
// as one atomic unit. The debit itself is a relative adjustment committed by
// the store, so concurrent placements cannot double-spend the balance.
func (s *Service) PlaceTrade(ctx context.Context, in PlaceTradeInput) (*PlaceTradeResult, error) {
	direction := strings.ToUpper(strings.TrimSpace(in.Direction))
	if direction != models.DirectionYes && direction != models.DirectionNo {
		return nil, ErrInvalidDirection
	}
	amount := in.Amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) || amount.LessThan(s.MinTradeAmount) {
		return nil, ErrInvalidAmount
	}
	if in.Price.LessThanOrEqual(decimal.Zero) || in.Price.GreaterThan(decimal.NewFromInt(1)) {
		return nil, ErrInvalidPrice
	}

	portfolio, err := s.Repo.EnsurePortfolio(ctx, s.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}

	price := in.Price
	trade := models.Trade{
		MarketID:       in.MarketID,
		MarketQuestion: in.MarketQuestion,
		Direction:      direction,
		Amount:         amount,
		EntryPrice:     price,
		CurrentPrice:   &price,
		Status:         models.TradeStatusActive,
	}
	if err := s.Repo.PlaceTrade(ctx, portfolio.ID, &trade); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("place trade: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Info("trade placed",
			zap.Uint64("trade_id", trade.ID),
			zap.String("market_id", trade.MarketID),
			zap.String("direction", trade.Direction),
			zap.String("amount", amount.String()),
		)
	}

	updated, err := s.Repo.GetPortfolio(ctx)
	if err != nil || updated == nil {
		// The trade is committed; fall back to the arithmetic balance.
		return &PlaceTradeResult{Trade: trade, NewBalance: portfolio.Balance.Sub(amount)}, nil
	}
	return &PlaceTradeResult{Trade: trade, NewBalance: updated.Balance}, nil
}

type TradeView struct {
	models.Trade
	PnL decimal.Decimal `json:"pnl"`
}

type PortfolioView struct {
	Balance      decimal.Decimal `json:"balance"`
	ActiveTrades []TradeView     `json:"active_trades"`
	TotalPnL     decimal.Decimal `json:"total_pnl"`
}

// Portfolio returns the balance, every active trade, and the aggregate
// unrealized PnL.
func (s *Service) Portfolio(ctx context.Context) (*PortfolioView, error) {
	portfolio, err := s.Repo.EnsurePortfolio(ctx, s.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	trades, err := s.Repo.ListTradesByStatus(ctx, models.TradeStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}

	view := PortfolioView{
		Balance:      portfolio.Balance,
		ActiveTrades: make([]TradeView, 0, len(trades)),
		TotalPnL:     decimal.Zero,
	}
	for _, t := range trades {
		pnl := TradePnL(t)
		view.TotalPnL = view.TotalPnL.Add(pnl)
		view.ActiveTrades = append(view.ActiveTrades, TradeView{Trade: t, PnL: pnl})
	}
	return &view, nil
}

// TradePnL is the unrealized profit of one trade: the stake scaled by the
// relative price move, signed by direction. Unknown prices yield zero.
func TradePnL(t models.Trade) decimal.Decimal {
	if t.CurrentPrice == nil || t.EntryPrice.IsZero() {
		return decimal.Zero
	}
	move := t.CurrentPrice.Sub(t.EntryPrice)
	if t.Direction == models.DirectionNo {
		move = t.EntryPrice.Sub(*t.CurrentPrice)
	}
	return move.Mul(t.Amount).DivRound(t.EntryPrice, 2)
}

type RefreshResult struct {
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// RefreshPrices re-quotes every active trade. A failed quote skips that trade
// and the next one is still attempted; the result reports how many of the
// total were updated.
func (s *Service) RefreshPrices(ctx context.Context) (RefreshResult, error) {
	trades, err := s.Repo.ListTradesByStatus(ctx, models.TradeStatusActive)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("list trades: %w", err)
	}
	result := RefreshResult{Total: len(trades)}
	for _, t := range trades {
		yes, no, err := s.Quotes.Quote(ctx, t.MarketID)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Warn("price refresh skipped",
					zap.Uint64("trade_id", t.ID),
					zap.String("market_id", t.MarketID),
					zap.Error(err),
				)
			}
			continue
		}
		price := yes
		if t.Direction == models.DirectionNo {
			price = no
		}
		quote := decimal.NewFromFloat(price).Round(6)
		if err := s.Repo.UpdateTradeCurrentPrice(ctx, t.ID, quote); err != nil {
			if s.Logger != nil {
				s.Logger.Warn("price update failed", zap.Uint64("trade_id", t.ID), zap.Error(err))
			}
			continue
		}
		result.Updated++
	}
	return result, nil
}

// CloseTrade marks the trade closed and credits its current value back to the
// balance: the stake plus unrealized PnL, or the bare stake when the trade
// was never re-priced.
func (s *Service) CloseTrade(ctx context.Context, tradeID uint64) (*models.Trade, error) {
	trade, err := s.Repo.GetTradeByID(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("load trade: %w", err)
	}
	if trade == nil || trade.Status != models.TradeStatusActive {
		return nil, ErrTradeNotActive
	}
	portfolio, err := s.Repo.EnsurePortfolio(ctx, s.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}

	credit := trade.Amount.Add(TradePnL(*trade)).Round(2)
	if credit.IsNegative() {
		credit = decimal.Zero
	}
	now := time.Now().UTC()
	if err := s.Repo.CloseTrade(ctx, portfolio.ID, trade.ID, credit, now); err != nil {
		if errors.Is(err, repository.ErrTradeNotActive) {
			return nil, ErrTradeNotActive
		}
		return nil, fmt.Errorf("close trade: %w", err)
	}

	trade.Status = models.TradeStatusClosed
	trade.ClosedAt = &now
	if s.Logger != nil {
		s.Logger.Info("trade closed",
			zap.Uint64("trade_id", trade.ID),
			zap.String("credit", credit.String()),
		)
	}
	return trade, nil
}

// Reset restores the configured initial balance and deletes every trade,
// active and closed. There is no undo.
func (s *Service) Reset(ctx context.Context) (decimal.Decimal, error) {
	portfolio, err := s.Repo.EnsurePortfolio(ctx, s.InitialBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load portfolio: %w", err)
	}
	if err := s.Repo.ResetPortfolio(ctx, portfolio.ID, s.InitialBalance); err != nil {
		return decimal.Zero, fmt.Errorf("reset portfolio: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("portfolio reset", zap.String("balance", s.InitialBalance.String()))
	}
	return s.InitialBalance, nil
}

// PotentialReturn is the payout if the market resolves in the trade's favor:
// amount/price shares paying one unit each. Shares are kept to six decimal
// places, the payout to two, both rounded half-up.
func PotentialReturn(amount, price decimal.Decimal) (shares, payout decimal.Decimal, err error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, ErrInvalidAmount
	}
	if price.LessThanOrEqual(decimal.Zero) || price.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, decimal.Zero, ErrInvalidPrice
	}
	shares = amount.DivRound(price, 6)
	payout = shares.Round(2)
	return shares, payout, nil
}
