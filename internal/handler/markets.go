package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"polysim/internal/gate"
	"polysim/internal/opportunity"
)

type MarketHandler struct {
	Service *opportunity.Service
	Limiter *gate.Limiter

	DefaultLimit int
	MaxLimit     int
}

func (h *MarketHandler) Register(r *gin.Engine) {
	api := r.Group("/api/v1", RateLimit(h.Limiter, gate.EndpointLight))
	api.GET("/markets", h.markets)
	api.GET("/opportunities", h.opportunities)
}

func (h *MarketHandler) markets(c *gin.Context) {
	limit := clampLimit(intQuery(c, "limit", 30), h.MaxLimit)
	items, err := h.Service.Markets(c.Request.Context(), limit)
	if err != nil {
		Error(c, http.StatusBadGateway, "failed to fetch markets: "+err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func (h *MarketHandler) opportunities(c *gin.Context) {
	limit := intQuery(c, "limit", h.DefaultLimit)
	if limit <= 0 {
		limit = 10
	}
	limit = clampLimit(limit, h.MaxLimit)

	items, err := h.Service.TopOpportunities(c.Request.Context(), opportunity.Query{
		Limit: limit,
		Title: strings.TrimSpace(c.Query("title")),
	})
	if err != nil {
		if errors.Is(err, opportunity.ErrUpstreamUnavailable) {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, map[string]any{"count": len(items)})
}

func clampLimit(limit, max int) int {
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}
