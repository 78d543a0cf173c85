package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"StockDashboard/internal/aggregator"
	"StockDashboard/internal/calculator"
	"StockDashboard/internal/collector"
	"StockDashboard/internal/currency"
	"StockDashboard/internal/model"
	"StockDashboard/internal/portfolio"
)

const (
	DefaultConcurrency  = 4
	DefaultFetchTimeout = 15 * time.Second
)

// PositionSource supplies the held positions valued at the end of a pass.
type PositionSource interface {
	Holdings() map[string]model.Position
}

// Pipeline runs one fetch, compute and aggregate pass. It keeps no state
// between passes.
type Pipeline struct {
	Fetcher      collector.Fetcher
	Engine       *calculator.Engine
	Converter    *currency.Converter
	Positions    PositionSource
	Concurrency  int
	FetchTimeout time.Duration
}

type fetchOutcome struct {
	series model.Series
	err    error
}

// Run executes a pass for cfg and returns the state to publish. The error is
// non-nil only when ctx was cancelled, in which case the partial work must
// be discarded. onPhase, if set, is told when fetching and computing begin.
func (p *Pipeline) Run(ctx context.Context, cfg model.PassConfig, onPhase func(Phase)) (*model.RefreshState, error) {
	cfg = cfg.Normalized()
	state := &model.RefreshState{
		Config:     cfg,
		Snapshot:   model.Snapshot{Currency: cfg.Currency, Entries: []model.ComparisonEntry{}},
		Valuations: []model.Valuation{},
		StartedAt:  time.Now(),
	}

	holdings := map[string]model.Position{}
	if p.Positions != nil {
		holdings = p.Positions.Holdings()
	}
	if err := p.checkConfig(cfg, holdings); err != nil {
		state.Status = model.StatusConfigError
		state.Err = err
		return state, nil
	}
	if len(cfg.Symbols) == 0 {
		state.Status = model.StatusEmpty
		return state, nil
	}

	if onPhase != nil {
		onPhase(PhaseFetching)
	}
	fetched, err := p.fetchAll(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if onPhase != nil {
		onPhase(PhaseComputing)
	}
	state.Results = make([]*model.SymbolResult, len(cfg.Symbols))
	for i, sym := range cfg.Symbols {
		state.Results[i] = p.compute(cfg, sym, fetched[i])
	}
	state.Snapshot = aggregator.Build(cfg.Currency, cfg.Symbols, state.Results)

	vals, err := portfolio.ValuateAll(holdings, state.Snapshot)
	if err != nil {
		state.Status = model.StatusConfigError
		state.Err = err
		return state, nil
	}
	state.Valuations = vals

	if len(state.Snapshot.Entries) == 0 {
		state.Status = model.StatusFailed
		state.Err = errors.New("no symbol returned data")
	} else {
		state.Status = model.StatusOK
	}
	return state, nil
}

func (p *Pipeline) checkConfig(cfg model.PassConfig, holdings map[string]model.Position) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := p.Converter.Rate(cfg.Currency); err != nil {
		return err
	}
	return portfolio.ValidatePositions(holdings)
}

// fetchAll fetches every symbol with bounded parallelism. Per-symbol failures
// are kept in the outcome; only cancellation of ctx aborts the fan-out.
func (p *Pipeline) fetchAll(ctx context.Context, cfg model.PassConfig) ([]fetchOutcome, error) {
	limit := p.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	timeout := p.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	out := make([]fetchOutcome, len(cfg.Symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, sym := range cfg.Symbols {
		i, sym := i, sym
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			series, err := p.Fetcher.Fetch(fctx, sym, cfg.Start, cfg.End)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil && errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("fetch timed out after %s: %w", timeout, err)
			}
			out[i] = fetchOutcome{series: series, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// compute turns one fetch outcome into a tagged symbol result.
func (p *Pipeline) compute(cfg model.PassConfig, sym string, f fetchOutcome) *model.SymbolResult {
	r := &model.SymbolResult{Symbol: sym, Currency: cfg.Currency}
	switch {
	case f.err != nil:
		r.Err = &model.ProviderError{Symbol: sym, Err: f.err}
	case f.series.Empty():
		r.Err = &model.ProviderError{Symbol: sym, Err: model.ErrEmptySeries}
	}
	if r.Err != nil {
		log.Printf("[WARN] %v", r.Err)
		return r
	}

	series := model.Series{Symbol: sym, Bars: f.series.Bars}
	if err := series.Validate(); err != nil {
		r.Err = &model.ComputationError{Symbol: sym, Err: err}
		log.Printf("[WARN] %v", r.Err)
		return r
	}

	set := p.Engine.Compute(series, cfg.Indicators)
	converted, err := p.Converter.ConvertSeries(series, cfg.Currency)
	if err != nil {
		r.Err = &model.ComputationError{Symbol: sym, Err: err}
		return r
	}
	convertedSet, err := p.Converter.ConvertIndicators(set, cfg.Currency)
	if err != nil {
		r.Err = &model.ComputationError{Symbol: sym, Err: err}
		return r
	}

	r.Series = converted
	r.Indicators = convertedSet
	if latest, ok := converted.Latest(); ok {
		r.LatestClose = model.Defined(latest.Close)
	}
	if high, low, err := calculator.PeriodRange(converted.Bars); err == nil {
		r.PeriodHigh = model.Defined(high)
		r.PeriodLow = model.Defined(low)
	}
	return r
}
