package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"StockDashboard/internal/export"
	"StockDashboard/internal/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status": "ok",
			"phase":  s.ctrl.Phase(),
			"seq":    s.ctrl.Current().Seq,
		},
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    newStateResponse(s.ctrl.Current(), s.ctrl.Phase()),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	state := s.ctrl.Current()
	snap := state.Snapshot
	if snap.Entries == nil {
		snap.Entries = []model.ComparisonEntry{}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: snap})
}

func (s *Server) handleValuations(w http.ResponseWriter, r *http.Request) {
	resp := newStateResponse(s.ctrl.Current(), s.ctrl.Phase())
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"currency":   resp.Snapshot.Currency,
			"valuations": resp.Valuations,
			"totals":     resp.Totals,
		},
	})
}

func (s *Server) handleSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := model.NormalizeSymbol(chi.URLParam(r, "symbol"))
	state := s.ctrl.Current()
	res, ok := state.Result(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("symbol %s is not in the current pass", symbol))
		return
	}
	bars := res.Series.Bars
	if bars == nil {
		bars = []model.OHLCV{}
	}
	ind := res.Indicators
	if ind.Columns == nil {
		ind = model.NewIndicatorSet(nil)
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: SymbolResponse{
			Symbol:     res.Symbol,
			Currency:   state.Snapshot.Currency,
			Summary:    newSymbolSummary(res),
			Bars:       bars,
			Indicators: ind,
		},
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	state := s.ctrl.Current()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=dashboard-%d.csv", state.Seq))
	if err := export.WriteCSV(w, state); err != nil {
		log.Printf("[ERROR] export csv: %v", err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	hist, err := s.recorder.History(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: hist})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: newConfigDTO(s.ctrl.Config())})
}

func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	cfg, err := req.apply(s.ctrl.Config())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.converter.Supports(cfg.Currency) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unrecognized currency code %q", cfg.Currency))
		return
	}
	if err := s.ctrl.Reconfigure(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, APIResponse{Success: true, Data: newConfigDTO(cfg)})
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	rates := map[string]string{}
	for _, code := range s.converter.Codes() {
		rate, _ := s.converter.Rate(code)
		rates[code] = rate.String()
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rates})
}

func (s *Server) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.positions.Positions()})
}

func (s *Server) handlePutPosition(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	pos, err := s.positions.Set(chi.URLParam(r, "symbol"), req.Shares, req.PurchasePrice)
	if err != nil {
		var cfgErr *model.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.ctrl.Trigger()
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: pos})
}

func (s *Server) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	if !s.positions.Remove(chi.URLParam(r, "symbol")) {
		writeError(w, http.StatusNotFound, "position not found")
		return
	}
	s.ctrl.Trigger()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Trigger()
	writeJSON(w, http.StatusAccepted, APIResponse{
		Success: true,
		Data:    map[string]interface{}{"phase": s.ctrl.Phase()},
	})
}
