package gamma

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListEvents(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			t.Errorf("path=%q want=/events", r.URL.Path)
		}
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"title":"E1","featured":true,"markets":[{"conditionId":"c1","lastTradePrice":"0.6"}]}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	active, closed := true, false
	events, err := c.ListEvents(context.Background(), EventsQuery{
		Active: &active,
		Closed: &closed,
		Limit:  50,
		Order:  "volume24hr",
		Title:  "fed",
	})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].Title != "E1" {
		t.Fatalf("events=%+v", events)
	}
	if len(events[0].Markets) != 1 || !events[0].Markets[0].LastTradePrice.Valid {
		t.Fatalf("nested market not decoded: %+v", events[0].Markets)
	}

	want := map[string]string{
		"active":    "true",
		"closed":    "false",
		"limit":     "50",
		"order":     "volume24hr",
		"ascending": "false",
		"title":     "fed",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Fatalf("query %s=%q want=%q", k, gotQuery[k], v)
		}
	}
}

func TestListEvents_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	_, err := c.ListEvents(context.Background(), EventsQuery{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err=%v want *APIError", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Fatalf("status=%d want=429", apiErr.Status)
	}
}

func TestGetMarket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("path=%q want=/markets", r.URL.Path)
		}
		if got := r.URL.Query().Get("condition_id"); got != "c1" {
			t.Errorf("condition_id=%q want=c1", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"conditionId":"c1","bestBid":0.4,"bestAsk":0.6}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	m, err := c.GetMarket(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetMarket: %v", err)
	}
	if m == nil || m.ConditionID != "c1" || !m.BestBid.Valid {
		t.Fatalf("market=%+v", m)
	}
}

func TestGetMarket_UnknownIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	m, err := c.GetMarket(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetMarket: %v", err)
	}
	if m != nil {
		t.Fatalf("market=%+v want nil", m)
	}
}

func TestGetMarket_RequiresConditionID(t *testing.T) {
	c := NewClient(http.DefaultClient, "http://unused.invalid")
	if _, err := c.GetMarket(context.Background(), "  "); err == nil {
		t.Fatalf("blank condition id accepted")
	}
}
