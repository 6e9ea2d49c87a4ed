package market

import (
	"encoding/json"
	"testing"
	"time"

	"polysim/internal/client/gamma"
)

func rawMarket(t *testing.T, body string) gamma.RawMarket {
	t.Helper()
	var m gamma.RawMarket
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatalf("unmarshal raw market: %v", err)
	}
	return m
}

func TestNormalize_LastTradeWinsOverBidAsk(t *testing.T) {
	m := rawMarket(t, `{"conditionId":"c1","question":"Q","lastTradePrice":"0.73","bestBid":"0.10","bestAsk":"0.20"}`)
	s := Normalize(m, gamma.RawEvent{}, time.Now().UTC())
	if s.YesPrice != 0.73 {
		t.Fatalf("yes_price=%v want=0.73", s.YesPrice)
	}
	if s.NoPrice != 1-0.73 {
		t.Fatalf("no_price=%v want=%v", s.NoPrice, 1-0.73)
	}
}

func TestNormalize_BidAskMid(t *testing.T) {
	m := rawMarket(t, `{"conditionId":"c1","bestBid":0.4,"bestAsk":0.6}`)
	s := Normalize(m, gamma.RawEvent{}, time.Now().UTC())
	if s.YesPrice != 0.5 {
		t.Fatalf("yes_price=%v want=0.5", s.YesPrice)
	}
}

func TestNormalize_OutcomePricesStringEncoded(t *testing.T) {
	m := rawMarket(t, `{"conditionId":"c1","outcomePrices":"[\"0.4\", \"0.6\"]"}`)
	s := Normalize(m, gamma.RawEvent{}, time.Now().UTC())
	if s.YesPrice != 0.4 {
		t.Fatalf("yes_price=%v want=0.4", s.YesPrice)
	}
	if s.NoPrice != 0.6 {
		t.Fatalf("no_price=%v want=0.6", s.NoPrice)
	}
}

func TestNormalize_NoPriceSourceDefaults(t *testing.T) {
	m := rawMarket(t, `{"conditionId":"c1"}`)
	s := Normalize(m, gamma.RawEvent{}, time.Now().UTC())
	if s.YesPrice != 0.5 || s.NoPrice != 0.5 {
		t.Fatalf("prices=%v/%v want=0.5/0.5", s.YesPrice, s.NoPrice)
	}
}

func TestNormalize_PriceClampAndSumToOne(t *testing.T) {
	cases := []struct {
		name string
		body string
		want float64
	}{
		{"above_max", `{"lastTradePrice":1.5}`, 0.999},
		{"below_min", `{"lastTradePrice":0}`, 0.001},
		{"negative", `{"lastTradePrice":-0.3}`, 0.001},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Normalize(rawMarket(t, tc.body), gamma.RawEvent{}, time.Now().UTC())
			if s.YesPrice != tc.want {
				t.Fatalf("yes_price=%v want=%v", s.YesPrice, tc.want)
			}
			if s.YesPrice+s.NoPrice != 1 {
				t.Fatalf("yes+no=%v want=1", s.YesPrice+s.NoPrice)
			}
		})
	}
}

func TestNormalize_MalformedNumericsDegrade(t *testing.T) {
	m := rawMarket(t, `{"conditionId":"c1","volume24hr":"not-a-number","liquidity":{"bad":true},"spread":"oops","lastTradePrice":"0.6"}`)
	s := Normalize(m, gamma.RawEvent{}, time.Now().UTC())
	if s.Volume24h != 0 {
		t.Fatalf("volume_24h=%v want=0", s.Volume24h)
	}
	if s.Liquidity != 0 {
		t.Fatalf("liquidity=%v want=0", s.Liquidity)
	}
	if s.Spread != 0.05 {
		t.Fatalf("spread=%v want=0.05", s.Spread)
	}
	if s.YesPrice != 0.6 {
		t.Fatalf("yes_price=%v want=0.6", s.YesPrice)
	}
}

func TestNormalize_EventFallbacks(t *testing.T) {
	m := rawMarket(t, `{"conditionId":"c1"}`)
	e := gamma.RawEvent{Title: "Event title", Description: "Event desc", Featured: true,
		Tags: []gamma.RawTag{{Label: "politics"}, {Label: " "}, {Label: "us"}}}
	s := Normalize(m, e, time.Now().UTC())
	if s.Question != "Event title" {
		t.Fatalf("question=%q want event title", s.Question)
	}
	if s.Description != "Event desc" {
		t.Fatalf("description=%q want event desc", s.Description)
	}
	if !s.Featured {
		t.Fatalf("featured=false want=true")
	}
	if len(s.Tags) != 2 || s.Tags[0] != "politics" || s.Tags[1] != "us" {
		t.Fatalf("tags=%v want=[politics us]", s.Tags)
	}
}

func TestNormalize_DaysUntilResolution(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	m := rawMarket(t, `{"conditionId":"c1","endDate":"2026-01-11T12:00:00Z"}`)
	s := Normalize(m, gamma.RawEvent{}, now)
	if s.DaysUntilResolution == nil || *s.DaysUntilResolution != 10 {
		t.Fatalf("days=%v want=10", s.DaysUntilResolution)
	}

	// Past end dates floor at zero.
	m = rawMarket(t, `{"conditionId":"c1","endDate":"2025-06-01T00:00:00Z"}`)
	s = Normalize(m, gamma.RawEvent{}, now)
	if s.DaysUntilResolution == nil || *s.DaysUntilResolution != 0 {
		t.Fatalf("days=%v want=0", s.DaysUntilResolution)
	}

	// Unparseable end dates leave the field absent.
	m = rawMarket(t, `{"conditionId":"c1","endDate":"soon"}`)
	s = Normalize(m, gamma.RawEvent{}, now)
	if s.DaysUntilResolution != nil {
		t.Fatalf("days=%v want absent", *s.DaysUntilResolution)
	}
}
