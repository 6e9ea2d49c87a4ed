package gamma

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number decodes a numeric field that Gamma may serve as a JSON number, a
// quoted numeric string, or garbage. Malformed input leaves the value unset
// instead of failing the surrounding decode.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	n.Value = f
	n.Valid = true
	return nil
}

// Or returns the decoded value or def when the field was absent or malformed.
func (n Number) Or(def float64) float64 {
	if n.Valid {
		return n.Value
	}
	return def
}

func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// PriceList decodes Gamma's outcomePrices field, which arrives either as a
// JSON array or as a JSON-string-encoded array. Any non-numeric entry makes
// the whole list absent, matching the all-or-nothing upstream contract.
type PriceList []float64

func (p *PriceList) UnmarshalJSON(b []byte) error {
	s := bytes.TrimSpace(b)
	if len(s) == 0 || string(s) == "null" {
		return nil
	}
	if s[0] == '"' {
		var inner string
		if err := json.Unmarshal(s, &inner); err != nil {
			return nil
		}
		s = []byte(inner)
	}
	var items []any
	if err := json.Unmarshal(s, &items); err != nil {
		return nil
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case float64:
			out = append(out, v)
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil
			}
			out = append(out, f)
		default:
			return nil
		}
	}
	*p = out
	return nil
}

// RawMarket is the untyped market record exactly as Gamma serves it. Every
// field is optional; the normalizer is the only consumer.
type RawMarket struct {
	ID                   string    `json:"id"`
	ConditionID          string    `json:"conditionId"`
	Question             string    `json:"question"`
	Description          string    `json:"description"`
	LastTradePrice       Number    `json:"lastTradePrice"`
	BestBid              Number    `json:"bestBid"`
	BestAsk              Number    `json:"bestAsk"`
	OutcomePrices        PriceList `json:"outcomePrices"`
	Spread               Number    `json:"spread"`
	Volume               Number    `json:"volume"`
	Volume24h            Number    `json:"volume24hr"`
	Volume1w             Number    `json:"volume1wk"`
	Liquidity            Number    `json:"liquidity"`
	LiquidityNum         Number    `json:"liquidityNum"`
	OneHourPriceChange   Number    `json:"oneHourPriceChange"`
	OneDayPriceChange    Number    `json:"oneDayPriceChange"`
	OneWeekPriceChange   Number    `json:"oneWeekPriceChange"`
	OneMonthPriceChange  Number    `json:"oneMonthPriceChange"`
	EndDate              string    `json:"endDate"`
	Image                string    `json:"image"`
	Active               *bool     `json:"active"`
	AcceptingOrders      *bool     `json:"acceptingOrders"`
}

// RawEvent is the untyped event record; each event nests its markets.
type RawEvent struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	EndDate      string      `json:"endDate"`
	Image        string      `json:"image"`
	CommentCount Number      `json:"commentCount"`
	Featured     bool        `json:"featured"`
	Tags         []RawTag    `json:"tags"`
	Markets      []RawMarket `json:"markets"`
}

type RawTag struct {
	Label string `json:"label"`
}

// Tradable reports whether the market should enter the ranking pipeline.
// Both flags default to true when absent upstream.
func (m RawMarket) Tradable() bool {
	if m.Active != nil && !*m.Active {
		return false
	}
	if m.AcceptingOrders != nil && !*m.AcceptingOrders {
		return false
	}
	return true
}
