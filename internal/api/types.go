package api

import (
	"time"

	"github.com/shopspring/decimal"

	"StockDashboard/internal/model"
	"StockDashboard/internal/portfolio"
	"StockDashboard/internal/scheduler"
)

// APIResponse is the standard envelope for JSON responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ConfigDTO is the wire form of a pass configuration.
type ConfigDTO struct {
	Symbols    []string               `json:"symbols"`
	StartDate  string                 `json:"start_date"`
	EndDate    string                 `json:"end_date"`
	Indicators model.IndicatorToggles `json:"indicators"`
	Currency   string                 `json:"currency"`
	Interval   string                 `json:"interval"`
}

func newConfigDTO(c model.PassConfig) ConfigDTO {
	dto := ConfigDTO{
		Symbols:    c.Symbols,
		Indicators: c.Indicators,
		Currency:   c.Currency,
		Interval:   c.Interval.String(),
	}
	if dto.Symbols == nil {
		dto.Symbols = []string{}
	}
	if !c.Start.IsZero() {
		dto.StartDate = c.Start.Format(model.DateLayout)
	}
	if !c.End.IsZero() {
		dto.EndDate = c.End.Format(model.DateLayout)
	}
	return dto
}

// ConfigRequest is the body for PUT /api/v1/config. Absent fields keep their
// current value. SymbolsText accepts comma-separated input like "aapl, msft".
type ConfigRequest struct {
	Symbols     *[]string               `json:"symbols,omitempty"`
	SymbolsText *string                 `json:"symbols_text,omitempty"`
	StartDate   *string                 `json:"start_date,omitempty"`
	EndDate     *string                 `json:"end_date,omitempty"`
	Indicators  *model.IndicatorToggles `json:"indicators,omitempty"`
	Currency    *string                 `json:"currency,omitempty"`
	Interval    *string                 `json:"interval,omitempty"`
}

// apply merges the request onto cur.
func (r ConfigRequest) apply(cur model.PassConfig) (model.PassConfig, error) {
	out := cur
	if r.Symbols != nil {
		out.Symbols = *r.Symbols
	}
	if r.SymbolsText != nil {
		out.Symbols = model.ParseSymbols(*r.SymbolsText)
	}
	if r.StartDate != nil {
		t, err := model.ParseDate(*r.StartDate)
		if err != nil {
			return cur, model.NewConfigError("start_date", "invalid date %q", *r.StartDate)
		}
		out.Start = t
	}
	if r.EndDate != nil {
		t, err := model.ParseDate(*r.EndDate)
		if err != nil {
			return cur, model.NewConfigError("end_date", "invalid date %q", *r.EndDate)
		}
		out.End = t
	}
	if r.Indicators != nil {
		out.Indicators = *r.Indicators
	}
	if r.Currency != nil {
		out.Currency = *r.Currency
	}
	if r.Interval != nil {
		d, err := time.ParseDuration(*r.Interval)
		if err != nil {
			return cur, model.NewConfigError("interval", "invalid duration %q", *r.Interval)
		}
		out.Interval = d
	}
	return out.Normalized(), nil
}

// SymbolSummary is one symbol's line in the state response.
type SymbolSummary struct {
	Symbol      string                 `json:"symbol"`
	OK          bool                   `json:"ok"`
	ErrorKind   string                 `json:"error_kind,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Bars        int                    `json:"bars"`
	LatestClose model.Value            `json:"latest_close"`
	PeriodHigh  model.Value            `json:"period_high"`
	PeriodLow   model.Value            `json:"period_low"`
	Indicators  map[string]model.Value `json:"indicators"`
}

func newSymbolSummary(r *model.SymbolResult) SymbolSummary {
	s := SymbolSummary{
		Symbol:      r.Symbol,
		OK:          r.OK(),
		Bars:        r.Series.Len(),
		LatestClose: r.LatestClose,
		PeriodHigh:  r.PeriodHigh,
		PeriodLow:   r.PeriodLow,
		Indicators:  map[string]model.Value{},
	}
	if r.Err != nil {
		s.ErrorKind = model.ErrorKind(r.Err)
		s.Error = r.Err.Error()
	}
	for _, name := range r.Indicators.Names() {
		s.Indicators[name] = r.Indicators.Latest(name)
	}
	return s
}

// Totals sums the portfolio.
type Totals struct {
	Value      decimal.Decimal     `json:"value"`
	ProfitLoss decimal.NullDecimal `json:"profit_loss"`
}

// StateResponse is the wire form of a published refresh state.
type StateResponse struct {
	Seq         uint64            `json:"seq"`
	Status      model.PassStatus  `json:"status"`
	Phase       scheduler.Phase   `json:"phase"`
	Config      ConfigDTO         `json:"config"`
	Snapshot    model.Snapshot    `json:"snapshot"`
	Symbols     []SymbolSummary   `json:"symbols"`
	Valuations  []model.Valuation `json:"valuations"`
	Totals      Totals            `json:"totals"`
	Error       string            `json:"error,omitempty"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	PublishedAt *time.Time        `json:"published_at,omitempty"`
}

func newStateResponse(s *model.RefreshState, phase scheduler.Phase) StateResponse {
	resp := StateResponse{
		Seq:        s.Seq,
		Status:     s.Status,
		Phase:      phase,
		Config:     newConfigDTO(s.Config),
		Snapshot:   s.Snapshot,
		Symbols:    make([]SymbolSummary, 0, len(s.Results)),
		Valuations: s.Valuations,
	}
	if resp.Snapshot.Entries == nil {
		resp.Snapshot.Entries = []model.ComparisonEntry{}
	}
	if resp.Valuations == nil {
		resp.Valuations = []model.Valuation{}
	}
	for _, r := range s.Results {
		resp.Symbols = append(resp.Symbols, newSymbolSummary(r))
	}
	resp.Totals.Value, resp.Totals.ProfitLoss = portfolio.Totals(s.Valuations)
	if s.Err != nil {
		resp.Error = s.Err.Error()
	}
	if !s.StartedAt.IsZero() {
		t := s.StartedAt
		resp.StartedAt = &t
	}
	if !s.PublishedAt.IsZero() {
		t := s.PublishedAt
		resp.PublishedAt = &t
	}
	return resp
}

// SymbolResponse carries the full series and indicator columns of a symbol.
type SymbolResponse struct {
	Symbol     string             `json:"symbol"`
	Currency   string             `json:"currency"`
	Summary    SymbolSummary      `json:"summary"`
	Bars       []model.OHLCV      `json:"bars"`
	Indicators model.IndicatorSet `json:"indicators"`
}

// PositionRequest is the body for PUT /api/v1/positions/{symbol}.
type PositionRequest struct {
	Shares        int64           `json:"shares"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Seq  uint64      `json:"seq"`
	Data interface{} `json:"data,omitempty"`
}

// WebSocket message types.
const (
	WSInitial = "INITIAL"
	WSUpdate  = "UPDATE"
)
