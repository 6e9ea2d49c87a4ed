package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"polysim/internal/client/xai"
	"polysim/internal/gate"
	"polysim/internal/models"
	"polysim/internal/repository"
)

// AnalyzeHandler fronts the advisory (LLM) call. It lives behind the heavy
// rate budget and records every analysis.
type AnalyzeHandler struct {
	Advisor *xai.Client
	Repo    repository.Repository
	Limiter *gate.Limiter
	Logger  *zap.Logger
}

func (h *AnalyzeHandler) Register(r *gin.Engine) {
	api := r.Group("/api/v1", RateLimit(h.Limiter, gate.EndpointHeavy))
	api.POST("/analyze", h.analyze)

	// History is a plain DB read, so it rides the light budget.
	reads := r.Group("/api/v1", RateLimit(h.Limiter, gate.EndpointLight))
	reads.GET("/analyze/history", h.history)
}

type analyzeRequest struct {
	MarketID      string   `json:"market_id" binding:"required"`
	Question      string   `json:"question" binding:"required"`
	Description   string   `json:"description"`
	CurrentPrice  float64  `json:"current_price" binding:"required"`
	EndDate       string   `json:"end_date"`
	OneDayChange  *float64 `json:"one_day_change"`
	OneWeekChange *float64 `json:"one_week_change"`
	Volume24h     float64  `json:"volume_24h"`
}

type analyzeResponse struct {
	xai.Analysis
	Edge float64 `json:"edge"`
}

func (h *AnalyzeHandler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request: "+err.Error(), nil)
		return
	}

	analysis, err := h.Advisor.AnalyzeMarket(c.Request.Context(), xai.Request{
		Question:      req.Question,
		Description:   req.Description,
		CurrentPrice:  req.CurrentPrice,
		EndDate:       req.EndDate,
		OneDayChange:  req.OneDayChange,
		OneWeekChange: req.OneWeekChange,
		Volume24h:     req.Volume24h,
	})
	if err != nil {
		Error(c, http.StatusBadGateway, "analysis failed: "+err.Error(), nil)
		return
	}

	edge := analysis.EstimatedProbability - req.CurrentPrice
	h.logAnalysis(c, req, analysis, edge)

	Ok(c, analyzeResponse{Analysis: *analysis, Edge: edge}, nil)
}

func (h *AnalyzeHandler) history(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := h.Repo.ListAnalysisLogs(c.Request.Context(), c.Query("market_id"), limit)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func (h *AnalyzeHandler) logAnalysis(c *gin.Context, req analyzeRequest, analysis *xai.Analysis, edge float64) {
	if h.Repo == nil {
		return
	}
	item := models.AnalysisLog{
		MarketID:       req.MarketID,
		MarketQuestion: req.Question,
		MarketPrice:    decimal.NewFromFloat(req.CurrentPrice).Round(6),
		AIProbability:  decimal.NewFromFloat(analysis.EstimatedProbability).Round(6),
		Edge:           decimal.NewFromFloat(edge).Round(6),
		Confidence:     analysis.Confidence,
		Reasoning:      analysis.Reasoning,
		KeyEvents:      toJSON(analysis.KeyEvents),
		Risks:          toJSON(analysis.Risks),
		Sources:        toJSON(analysis.Sources),
	}
	if err := h.Repo.InsertAnalysisLog(c.Request.Context(), &item); err != nil && h.Logger != nil {
		h.Logger.Warn("failed to record analysis", zap.String("market_id", req.MarketID), zap.Error(err))
	}
}

func toJSON(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON([]byte(`[]`))
	}
	return datatypes.JSON(raw)
}
