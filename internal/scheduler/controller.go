// Package scheduler drives refresh passes and publishes their results.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"StockDashboard/internal/model"
)

// Phase is the controller's position in the refresh cycle.
type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhaseFetching  Phase = "FETCHING"
	PhaseComputing Phase = "COMPUTING"
	PhasePublished Phase = "PUBLISHED"
)

// Controller runs one pass at a time and swaps in each finished RefreshState
// as a whole. Passes are started by Start, by Reconfigure, by Trigger and by
// the refresh timer.
type Controller struct {
	pipeline *Pipeline
	cron     *cron.Cron
	cronSpec string

	mu          sync.Mutex
	cfg         model.PassConfig
	gen         uint64
	entryID     cron.EntryID
	scheduled   string
	cancelPass  context.CancelFunc
	blocked     bool
	blockedGen  uint64
	hooks       []func(*model.RefreshState)
	passMu      sync.Mutex
	loopCancel  context.CancelFunc
	loopStopped chan struct{}

	state   atomic.Pointer[model.RefreshState]
	phase   atomic.Value
	seq     atomic.Uint64
	trigger chan struct{}
}

// NewController creates a controller for cfg. A non-empty cronSpec replaces
// the interval-based timer.
func NewController(p *Pipeline, cfg model.PassConfig, cronSpec string) *Controller {
	c := &Controller{
		pipeline: p,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cron.PrintfLogger(log.Default())),
			cron.WithChain(cron.Recover(cron.PrintfLogger(log.Default()))),
		),
		cronSpec: cronSpec,
		cfg:      cfg.Normalized(),
		trigger:  make(chan struct{}, 1),
	}
	c.phase.Store(PhaseIdle)
	return c
}

// OnPublish registers fn to run after every publish, on the pass goroutine.
func (c *Controller) OnPublish(fn func(*model.RefreshState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, fn)
}

// Config returns the configuration of the next pass.
func (c *Controller) Config() model.PassConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Phase reports where the refresh cycle currently is.
func (c *Controller) Phase() Phase {
	return c.phase.Load().(Phase)
}

// Current returns the last published state, or a PENDING state if no pass
// has finished yet. The returned value must not be modified.
func (c *Controller) Current() *model.RefreshState {
	if s := c.state.Load(); s != nil {
		return s
	}
	return &model.RefreshState{
		Status:   model.StatusPending,
		Config:   c.Config(),
		Snapshot: model.Snapshot{Currency: c.Config().Currency, Entries: []model.ComparisonEntry{}},
	}
}

// Start schedules the refresh timer and runs the first pass in the
// background.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if err := c.scheduleLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.loopCancel = cancel
	c.loopStopped = make(chan struct{})
	c.mu.Unlock()

	c.cron.Start()
	go c.loop(loopCtx)
	c.Trigger()
	log.Println("[INFO] scheduler started")
	return nil
}

// Stop stops the timer, cancels any running pass and waits for the loop.
func (c *Controller) Stop() {
	<-c.cron.Stop().Done()

	c.mu.Lock()
	cancel, stopped := c.loopCancel, c.loopStopped
	c.mu.Unlock()
	if cancel != nil {
		cancel()
		<-stopped
	}
	log.Println("[INFO] scheduler stopped")
}

// Trigger requests a pass. Requests arriving while one is queued coalesce.
func (c *Controller) Trigger() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Reconfigure replaces the pass configuration. An in-flight pass is
// cancelled and its results are discarded; a fresh pass follows.
func (c *Controller) Reconfigure(cfg model.PassConfig) error {
	cfg = cfg.Normalized()

	c.mu.Lock()
	c.cfg = cfg
	c.gen++
	if c.cancelPass != nil {
		c.cancelPass()
	}
	err := c.scheduleLocked()
	c.mu.Unlock()

	log.Printf("[INFO] configuration changed: symbols=%v currency=%s", cfg.Symbols, cfg.Currency)
	c.Trigger()
	return err
}

// RunOnce runs a pass synchronously and returns the published state. It
// returns nil if the pass was cancelled.
func (c *Controller) RunOnce(ctx context.Context) *model.RefreshState {
	return c.runPass(ctx)
}

func (c *Controller) loop(ctx context.Context) {
	defer close(c.loopStopped)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.trigger:
			c.runPass(ctx)
		}
	}
}

// timerFire is the refresh timer callback. A configuration error is not
// retried until the configuration changes.
func (c *Controller) timerFire() {
	c.mu.Lock()
	skip := c.blocked && c.blockedGen == c.gen
	c.mu.Unlock()
	if skip {
		log.Println("[WARN] refresh skipped: configuration error pending a change")
		return
	}
	c.Trigger()
}

func (c *Controller) runPass(parent context.Context) *model.RefreshState {
	c.passMu.Lock()
	defer c.passMu.Unlock()

	passCtx, cancel := context.WithCancel(parent)
	defer cancel()

	c.mu.Lock()
	cfg, gen := c.cfg, c.gen
	c.cancelPass = cancel
	c.mu.Unlock()

	state, err := c.pipeline.Run(passCtx, cfg, c.setPhase)

	c.mu.Lock()
	c.cancelPass = nil
	stale := gen != c.gen
	if err == nil && !stale {
		c.blocked = state.Status == model.StatusConfigError
		c.blockedGen = gen
	}
	c.mu.Unlock()

	if err != nil || stale {
		log.Printf("[INFO] pass discarded: configuration changed or shutting down")
		c.setPhase(PhaseIdle)
		return nil
	}
	c.publish(state)
	return state
}

func (c *Controller) publish(state *model.RefreshState) {
	state.Seq = c.seq.Add(1)
	state.PublishedAt = time.Now()
	c.state.Store(state)
	c.setPhase(PhasePublished)

	switch state.Status {
	case model.StatusConfigError:
		log.Printf("[ERROR] pass %d: %v", state.Seq, state.Err)
	case model.StatusFailed:
		log.Printf("[ERROR] pass %d published with no data: %d symbols failed", state.Seq, len(state.Failed()))
	default:
		log.Printf("[INFO] pass %d published: status=%s ok=%d failed=%d",
			state.Seq, state.Status, len(state.Succeeded()), len(state.Failed()))
	}

	c.mu.Lock()
	hooks := append([]func(*model.RefreshState){}, c.hooks...)
	c.mu.Unlock()
	for _, h := range hooks {
		h(state)
	}
}

func (c *Controller) setPhase(p Phase) { c.phase.Store(p) }

// scheduleLocked (re)registers the refresh timer for the current config.
// Must be called with c.mu held.
func (c *Controller) scheduleLocked() error {
	spec := c.cronSpec
	if spec == "" && c.cfg.Interval > 0 {
		spec = "@every " + c.cfg.Interval.String()
	}
	if spec == c.scheduled {
		return nil
	}
	if c.entryID != 0 {
		c.cron.Remove(c.entryID)
		c.entryID = 0
	}
	c.scheduled = spec
	if spec == "" {
		return nil
	}
	id, err := c.cron.AddFunc(spec, c.timerFire)
	if err != nil {
		c.scheduled = ""
		return fmt.Errorf("register refresh timer %q: %w", spec, err)
	}
	c.entryID = id
	log.Printf("[INFO] refresh timer set: %s", spec)
	return nil
}
