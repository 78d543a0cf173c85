package portfolio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"StockDashboard/internal/model"
)

// State is the on-disk form of the position book.
type State struct {
	Positions map[string]model.Position `json:"positions"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// LoadState reads the position book from a JSON file. Returns an empty book
// if the file doesn't exist or filePath is empty.
func LoadState(filePath string) (*State, error) {
	state := &State{Positions: map[string]model.Position{}}
	if filePath == "" {
		return state, nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	if state.Positions == nil {
		state.Positions = map[string]model.Position{}
	}
	return state, nil
}

// SaveState writes the position book to a JSON file. An empty filePath keeps
// the book in memory only.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	if filePath == "" {
		return nil
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
