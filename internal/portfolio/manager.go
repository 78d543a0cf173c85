package portfolio

import (
	"log"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"StockDashboard/internal/model"
)

// Manager keeps the user's positions with concurrency safety and persists
// every change.
type Manager struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewManager creates a Manager, loading state from disk. Stored positions
// are validated so a hand-edited file cannot smuggle in negative values.
func NewManager(filePath string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	clean := make(map[string]model.Position, len(state.Positions))
	for sym, p := range state.Positions {
		p.Symbol = model.NormalizeSymbol(sym)
		if err := p.Validate(); err != nil {
			return nil, err
		}
		clean[p.Symbol] = p
	}
	state.Positions = clean
	return &Manager{state: state, filePath: filePath}, nil
}

// Set records shares and purchase price for symbol. A zero share count keeps
// the entered price but leaves the symbol out of valuation.
func (m *Manager) Set(symbol string, shares int64, purchasePrice decimal.Decimal) (model.Position, error) {
	p := model.Position{
		Symbol:        model.NormalizeSymbol(symbol),
		Shares:        shares,
		PurchasePrice: purchasePrice,
	}
	if p.Symbol == "" {
		return model.Position{}, model.NewConfigError("symbol", "symbol is required")
	}
	if err := p.Validate(); err != nil {
		return model.Position{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Positions[p.Symbol] = p
	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save portfolio state: %v", err)
	}
	return p, nil
}

// Remove deletes the position of symbol.
func (m *Manager) Remove(symbol string) bool {
	sym := model.NormalizeSymbol(symbol)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.Positions[sym]; !ok {
		return false
	}
	delete(m.state.Positions, sym)
	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save portfolio state after remove: %v", err)
	}
	return true
}

// Positions returns a copy of every stored position, sorted by symbol.
func (m *Manager) Positions() []model.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Position, 0, len(m.state.Positions))
	for _, p := range m.state.Positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Holdings returns the positions with shares > 0 keyed by symbol.
func (m *Manager) Holdings() map[string]model.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]model.Position)
	for sym, p := range m.state.Positions {
		if p.Held() {
			out[sym] = p
		}
	}
	return out
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}
