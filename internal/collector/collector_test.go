package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockDashboard/internal/model"
)

func day(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

const yahooBody = `{"chart":{"result":[{"meta":{"gmtoffset":-14400},
"timestamp":[1709731800,1709818200,1709904600,1709904601],
"indicators":{"quote":[{
"open":[100,null,102,103],"high":[101,null,103,104],"low":[99,null,101,102],
"close":[100.5,null,102.5,103.5],"volume":[1000,null,1200,1300]}]}}],"error":null}}`

func TestYahooFetcher_Fetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(yahooBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL + "/"
	s, err := f.Fetch(context.Background(), "AAPL", day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotQuery == "" {
		t.Fatal("no request reached the server")
	}
	// null bar skipped, same-day duplicate collapsed to the last one
	if s.Len() != 2 {
		t.Fatalf("expected 2 bars, got %d: %+v", s.Len(), s.Bars)
	}
	if got := s.Bars[0].Time.Format(model.DateLayout); got != "2024-03-06" {
		t.Errorf("expected exchange-local date 2024-03-06, got %s", got)
	}
	if s.Bars[1].Close != 103.5 {
		t.Errorf("expected last duplicate to win, got close %v", s.Bars[1].Close)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("fetched series should validate: %v", err)
	}
}

func TestYahooFetcher_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL + "/"
	s, err := f.Fetch(context.Background(), "NOPE", day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatalf("unknown symbol should not be an error: %v", err)
	}
	if !s.Empty() {
		t.Errorf("expected empty series, got %d bars", s.Len())
	}
}

func TestYahooFetcher_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL + "/"
	if _, err := f.Fetch(context.Background(), "AAPL", day("2024-03-01"), day("2024-03-31")); err == nil {
		t.Error("expected error on status 500")
	}
}

func TestRESTFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/bars/daily" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("from") != "2024-03-01" || r.URL.Query().Get("to") != "2024-03-08" {
			t.Errorf("unexpected range %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing API key header")
		}
		// out of order and one bar past the end date
		w.Write([]byte(`[
{"timestamp":1709856000,"open":11,"high":12,"low":10,"close":11.5,"volume":10},
{"timestamp":1709683200,"open":10,"high":11,"low":9,"close":10.5,"volume":10},
{"timestamp":1710460800,"open":12,"high":13,"low":11,"close":12.5,"volume":10}]`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL+"/", "secret", "")
	s, err := f.Fetch(context.Background(), "MSFT", day("2024-03-01"), day("2024-03-08"))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 bars in range, got %d", s.Len())
	}
	if s.Bars[0].Close != 10.5 || s.Bars[1].Close != 11.5 {
		t.Errorf("bars not in date order: %+v", s.Bars)
	}
}

func TestMockFetcher(t *testing.T) {
	boom := errors.New("boom")
	m := &MockFetcher{
		Errors: map[string]error{"BAD": boom},
		Delay:  map[string]time.Duration{"SLOW": time.Second},
		Series: map[string][]model.OHLCV{
			"FIX": {{Time: day("2024-03-04"), Open: 1, High: 1, Low: 1, Close: 1}},
		},
	}
	start, end := day("2024-03-01"), day("2024-03-31")

	if _, err := m.Fetch(context.Background(), "BAD", start, end); !errors.Is(err, boom) {
		t.Errorf("expected configured error, got %v", err)
	}
	if s, _ := m.Fetch(context.Background(), "FIX", start, end); s.Len() != 1 {
		t.Errorf("expected fixed series, got %d bars", s.Len())
	}
	if s, _ := m.Fetch(context.Background(), "OTHER", start, end); !s.Empty() {
		t.Error("expected empty series without a base price")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := m.Fetch(ctx, "SLOW", start, end); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if m.Calls() != 4 {
		t.Errorf("expected 4 calls, got %d", m.Calls())
	}
}

func TestMockFetcher_Generated(t *testing.T) {
	m := &MockFetcher{BasePrice: 100}
	s, err := m.Fetch(context.Background(), "AAPL", day("2024-03-01"), day("2024-03-31"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 21 {
		t.Errorf("expected 21 weekdays in March 2024, got %d", s.Len())
	}
	if err := s.Validate(); err != nil {
		t.Errorf("generated series should validate: %v", err)
	}
}
