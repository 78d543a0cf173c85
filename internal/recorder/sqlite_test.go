package recorder

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"StockDashboard/internal/model"
)

func publishedState(seq uint64) *model.RefreshState {
	now := time.Now()
	ok := &model.SymbolResult{Symbol: "AAPL", Series: model.Series{Symbol: "AAPL", Bars: []model.OHLCV{
		{Time: now, Open: 190, High: 191, Low: 189, Close: 190},
	}}}
	bad := &model.SymbolResult{Symbol: "BAD", Err: &model.ProviderError{Symbol: "BAD", Err: errors.New("timeout")}}
	return &model.RefreshState{
		Seq:    seq,
		Status: model.StatusOK,
		Config: model.PassConfig{Symbols: []string{"AAPL", "BAD"}, Currency: "USD"},
		Snapshot: model.Snapshot{Currency: "USD", Entries: []model.ComparisonEntry{
			{Symbol: "AAPL", Close: 190},
		}},
		Results: []*model.SymbolResult{ok, bad},
		Valuations: []model.Valuation{
			{Symbol: "AAPL", Currency: "USD", Shares: 10, Price: decimal.NewFromInt(190),
				Value: decimal.NewFromInt(1900), PurchasePrice: decimal.NewFromInt(150),
				ProfitLoss: decimal.NewNullDecimal(decimal.NewFromInt(400))},
		},
		StartedAt:   now.Add(-time.Second),
		PublishedAt: now,
	}
}

func TestSQLiteRecorder_RecordAndHistory(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "data", "dashboard.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	for seq := uint64(1); seq <= 3; seq++ {
		if err := r.RecordPass(publishedState(seq)); err != nil {
			t.Fatalf("record pass %d: %v", seq, err)
		}
	}

	hist, err := r.History(2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected 2 records, got %d", len(hist))
	}
	if hist[0].Seq != 3 || hist[1].Seq != 2 {
		t.Errorf("expected newest first, got %d, %d", hist[0].Seq, hist[1].Seq)
	}
	h := hist[0]
	if h.Status != model.StatusOK || h.Symbols != 2 || h.Succeeded != 1 || h.Failed != 1 {
		t.Errorf("unexpected summary %+v", h)
	}
	if len(h.Entries) != 1 || h.Entries[0].Symbol != "AAPL" || h.Entries[0].Close != 190 {
		t.Errorf("unexpected entries %+v", h.Entries)
	}

	var kind string
	if err := r.db.QueryRow(`SELECT kind FROM symbol_errors WHERE symbol = 'BAD' LIMIT 1`).Scan(&kind); err != nil {
		t.Fatal(err)
	}
	if kind != "provider" {
		t.Errorf("expected provider error kind, got %q", kind)
	}
}

func TestSQLiteRecorder_NullProfitLoss(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "dashboard.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	state := publishedState(1)
	state.Valuations[0].PurchasePrice = decimal.Zero
	state.Valuations[0].ProfitLoss = decimal.NullDecimal{}
	if err := r.RecordPass(state); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM valuations WHERE profit_loss IS NULL`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("undefined P/L should be stored as NULL, got %d NULL rows", count)
	}
}

func TestSQLiteRecorder_ConfigErrorPass(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "dashboard.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	state := &model.RefreshState{
		Seq:         1,
		Status:      model.StatusConfigError,
		Err:         model.NewConfigError("currency", "unrecognized currency code %q", "EUR"),
		Snapshot:    model.Snapshot{Currency: "EUR", Entries: []model.ComparisonEntry{}},
		PublishedAt: time.Now(),
	}
	if err := r.RecordPass(state); err != nil {
		t.Fatal(err)
	}
	hist, err := r.History(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].Error == "" || hist[0].Status != model.StatusConfigError {
		t.Errorf("unexpected history %+v", hist)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordPass(publishedState(1)); err != nil {
		t.Error(err)
	}
	if hist, err := r.History(5); err != nil || len(hist) != 0 {
		t.Errorf("expected empty history, got %v %v", hist, err)
	}
}
