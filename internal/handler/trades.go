package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"polysim/internal/gate"
	"polysim/internal/ledger"
	"polysim/internal/opportunity"
)

type TradeHandler struct {
	Ledger  *ledger.Service
	Limiter *gate.Limiter
}

func (h *TradeHandler) Register(r *gin.Engine) {
	api := r.Group("/api/v1", RateLimit(h.Limiter, gate.EndpointLight))
	api.POST("/trades", h.place)
	api.POST("/trades/:id/close", h.close)
	api.GET("/trades/potential-return", h.potentialReturn)
	api.GET("/portfolio", h.portfolio)
	api.POST("/portfolio/refresh", h.refresh)
	api.POST("/portfolio/reset", h.reset)
}

type placeTradeRequest struct {
	MarketID       string          `json:"market_id" binding:"required"`
	MarketQuestion string          `json:"market_question" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Direction      string          `json:"direction" binding:"required"`
	Price          decimal.Decimal `json:"price"`
}

func (h *TradeHandler) place(c *gin.Context) {
	var req placeTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request: "+err.Error(), nil)
		return
	}
	result, err := h.Ledger.PlaceTrade(c.Request.Context(), ledger.PlaceTradeInput{
		MarketID:       req.MarketID,
		MarketQuestion: req.MarketQuestion,
		Amount:         req.Amount,
		Direction:      req.Direction,
		Price:          req.Price,
	})
	if err != nil {
		Error(c, ledgerStatus(err), err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}

func (h *TradeHandler) close(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		Error(c, http.StatusBadRequest, "invalid trade id", nil)
		return
	}
	trade, err := h.Ledger.CloseTrade(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrTradeNotActive) {
			Error(c, http.StatusNotFound, err.Error(), nil)
			return
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, trade, nil)
}

func (h *TradeHandler) potentialReturn(c *gin.Context) {
	amount, errA := decimal.NewFromString(c.Query("amount"))
	price, errP := decimal.NewFromString(c.Query("price"))
	if errA != nil || errP != nil {
		Error(c, http.StatusBadRequest, "amount and price are required decimals", nil)
		return
	}
	shares, payout, err := ledger.PotentialReturn(amount, price)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	Ok(c, map[string]any{
		"shares":           shares,
		"potential_return": payout,
	}, nil)
}

func (h *TradeHandler) portfolio(c *gin.Context) {
	view, err := h.Ledger.Portfolio(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, view, nil)
}

func (h *TradeHandler) refresh(c *gin.Context) {
	result, err := h.Ledger.RefreshPrices(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}

func (h *TradeHandler) reset(c *gin.Context) {
	balance, err := h.Ledger.Reset(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, map[string]any{"balance": balance}, nil)
}

func ledgerStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidDirection),
		errors.Is(err, ledger.ErrInvalidPrice),
		errors.Is(err, ledger.ErrInsufficientBalance):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrTradeNotActive),
		errors.Is(err, opportunity.ErrMarketNotFound):
		return http.StatusNotFound
	case errors.Is(err, opportunity.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
