package market

import (
	"strings"
	"time"

	"polysim/internal/client/gamma"
)

const (
	minPrice = 0.001
	maxPrice = 0.999

	// Spread carried into scoring when the upstream field is absent or
	// malformed. Matches the scorer's neutral default.
	defaultSpread = 0.05
)

// Snapshot is the canonical, immutable view of one market. It is built fresh
// on every normalization call and never mutated afterwards.
type Snapshot struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	Description string `json:"description,omitempty"`

	YesPrice float64 `json:"yes_price"`
	NoPrice  float64 `json:"no_price"`

	BestBid        *float64 `json:"best_bid,omitempty"`
	BestAsk        *float64 `json:"best_ask,omitempty"`
	LastTradePrice *float64 `json:"last_trade_price,omitempty"`

	Volume    float64 `json:"volume"`
	Volume24h float64 `json:"volume_24h"`
	Volume1w  float64 `json:"volume_1w"`
	Liquidity float64 `json:"liquidity"`
	Spread    float64 `json:"spread"`

	Change1h  float64 `json:"one_hour_change"`
	Change24h float64 `json:"one_day_change"`
	Change1w  float64 `json:"one_week_change"`
	Change1m  float64 `json:"one_month_change"`

	CommentCount int      `json:"comment_count"`
	Featured     bool     `json:"is_featured"`
	Tags         []string `json:"tags,omitempty"`
	Image        string   `json:"image,omitempty"`

	EndDate             string `json:"end_date,omitempty"`
	DaysUntilResolution *int   `json:"days_until_resolution,omitempty"`
}

// Normalize translates one raw market record and its parent event into a
// Snapshot. It never fails: missing or malformed upstream fields degrade to
// their documented defaults.
func Normalize(m gamma.RawMarket, e gamma.RawEvent, now time.Time) Snapshot {
	s := Snapshot{
		ID:          firstNonEmpty(m.ConditionID, m.ID),
		Question:    firstNonEmpty(m.Question, e.Title, "Unknown"),
		Description: firstNonEmpty(m.Description, e.Description),

		BestBid:        m.BestBid.Ptr(),
		BestAsk:        m.BestAsk.Ptr(),
		LastTradePrice: m.LastTradePrice.Ptr(),

		Volume:    nonNegative(m.Volume.Or(0)),
		Volume24h: nonNegative(m.Volume24h.Or(0)),
		Volume1w:  nonNegative(m.Volume1w.Or(0)),
		Liquidity: nonNegative(m.LiquidityNum.Or(m.Liquidity.Or(0))),
		Spread:    nonNegative(m.Spread.Or(defaultSpread)),

		Change1h:  m.OneHourPriceChange.Or(0),
		Change24h: m.OneDayPriceChange.Or(0),
		Change1w:  m.OneWeekPriceChange.Or(0),
		Change1m:  m.OneMonthPriceChange.Or(0),

		Featured: e.Featured,
		Image:    firstNonEmpty(m.Image, e.Image),
		EndDate:  firstNonEmpty(m.EndDate, e.EndDate),
	}

	if c := e.CommentCount.Or(0); c > 0 {
		s.CommentCount = int(c)
	}
	for _, tag := range e.Tags {
		if label := strings.TrimSpace(tag.Label); label != "" {
			s.Tags = append(s.Tags, label)
		}
	}

	s.YesPrice = clampPrice(resolveYesPrice(m))
	s.NoPrice = 1 - s.YesPrice

	if s.EndDate != "" {
		if end, ok := parseEndDate(s.EndDate); ok {
			days := int(end.Sub(now).Hours() / 24)
			if days < 0 {
				days = 0
			}
			s.DaysUntilResolution = &days
		}
	}

	return s
}

// resolveYesPrice applies the price priority chain: last trade, then bid/ask
// mid, then the first outcome price, then 0.5.
func resolveYesPrice(m gamma.RawMarket) float64 {
	if m.LastTradePrice.Valid {
		return m.LastTradePrice.Value
	}
	if m.BestBid.Valid && m.BestAsk.Valid {
		return (m.BestBid.Value + m.BestAsk.Value) / 2
	}
	if len(m.OutcomePrices) >= 1 {
		return m.OutcomePrices[0]
	}
	return 0.5
}

func parseEndDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func clampPrice(v float64) float64 {
	if v < minPrice {
		return minPrice
	}
	if v > maxPrice {
		return maxPrice
	}
	return v
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
