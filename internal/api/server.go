// Package api exposes published dashboard state over HTTP and WebSocket.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"StockDashboard/internal/currency"
	"StockDashboard/internal/model"
	"StockDashboard/internal/portfolio"
	"StockDashboard/internal/recorder"
	"StockDashboard/internal/scheduler"
)

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	ctrl      *scheduler.Controller
	positions *portfolio.Manager
	converter *currency.Converter
	recorder  recorder.Recorder
	wsHub     *WSHub
	origins   []string
}

// NewServer wires the routes and subscribes the WebSocket hub to publishes.
func NewServer(ctrl *scheduler.Controller, positions *portfolio.Manager, conv *currency.Converter, rec recorder.Recorder, corsOrigins []string) *Server {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	s := &Server{
		ctrl:      ctrl,
		positions: positions,
		converter: conv,
		recorder:  rec,
		wsHub:     NewWSHub(),
		origins:   corsOrigins,
	}
	s.router = s.buildRouter()
	ctrl.OnPublish(s.broadcastState)
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] api listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("[INFO] shutting down api server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := []string{"*"}
	if len(s.origins) > 0 {
		origins = s.origins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/state", s.handleState)
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/valuations", s.handleValuations)
		r.Get("/symbols/{symbol}", s.handleSymbol)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/history", s.handleHistory)

		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handlePutConfig)
		r.Get("/currencies", s.handleCurrencies)

		r.Get("/positions", s.handleGetPositions)
		r.Put("/positions/{symbol}", s.handlePutPosition)
		r.Delete("/positions/{symbol}", s.handleDeletePosition)

		r.Post("/refresh", s.handleRefresh)
	})

	return r
}

func (s *Server) broadcastState(state *model.RefreshState) {
	s.wsHub.Broadcast(WSMessage{
		Type: WSUpdate,
		Seq:  state.Seq,
		Data: newStateResponse(state, scheduler.PhasePublished),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
