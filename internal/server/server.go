// Package server exposes the HTTP and websocket surface: symbol search,
// historical series with indicator enrichment, strategy backtests, and the
// replay websocket.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-replay/internal/backtest"
	"github.com/rxtech-lab/argo-replay/internal/indicator"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/runtime/wasm"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"github.com/rxtech-lab/argo-replay/pkg/marketdata"
)

const (
	// initialVisibleCount is the window of candles the client renders
	// before replay starts.
	initialVisibleCount = 100
	fetchTimeout        = 60 * time.Second
)

// Server wires the HTTP routes over the series arena and the market data
// client.
type Server struct {
	config   Config
	router   *mux.Router
	arena    *SeriesArena
	client   *marketdata.Client
	pipeline *indicator.Pipeline
	log      *logger.Logger
}

// NewServer builds the route table. The market data client and indicator
// pipeline are injected so tests can stand in fakes.
func NewServer(config Config, client *marketdata.Client, log *logger.Logger) *Server {
	s := &Server{
		config:   config,
		router:   mux.NewRouter(),
		arena:    NewSeriesArena(config.MaxSeries),
		client:   client,
		pipeline: indicator.NewPipeline(indicator.DefaultRegistry(), log),
		log:      log,
	}

	s.router.Use(corsMiddleware)
	s.router.HandleFunc("/api/search", s.handleSearch).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/historical", s.handleHistorical).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/backtest", s.handleBacktest).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/ws/replay", s.handleReplay).Methods(http.MethodGet)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving HTTP until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("Server shutdown failed", zap.Error(err))
		}
	}()

	s.log.Info("Serving HTTP",
		zap.String("host", s.config.Host),
		zap.Int("port", s.config.Port),
	)

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	matches := marketdata.SearchSymbols(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, matches)
}

// historicalResponse is the payload of GET /api/historical.
type historicalResponse struct {
	SeriesID     string        `json:"seriesId"`
	Data         []types.Candle `json:"data"`
	InitialCount int           `json:"initialCount"`
}

func (s *Server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	symbol := query.Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	timeframe := types.Timeframe(query.Get("timeframe"))
	if timeframe == "" {
		timeframe = types.Timeframe1Day
	}

	if !timeframe.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid timeframe: %s", timeframe))
		return
	}

	start, err := parseUnixParam(query.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start time")
		return
	}

	end, err := parseUnixParam(query.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end time")
		return
	}

	var specs []types.IndicatorSpec
	if raw := query.Get("indicators"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &specs); err != nil {
			writeError(w, http.StatusBadRequest, "invalid indicators payload")
			return
		}
	}

	// Blocking fetch stays on this request's goroutine; the deadline keeps
	// a stalled provider from pinning the connection.
	ctx, cancel := context.WithTimeout(r.Context(), fetchTimeout)
	defer cancel()

	series, err := s.client.FetchSeries(ctx, symbol, timeframe, start, end)
	if err != nil {
		s.log.Warn("Historical fetch failed",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		writeError(w, http.StatusBadGateway, err.Error())

		return
	}

	s.pipeline.Enrich(series, specs)

	writeJSON(w, http.StatusOK, historicalResponse{
		SeriesID:     s.arena.Put(series),
		Data:         series.Candles,
		InitialCount: initialVisibleCount,
	})
}

// backtestRequest is the payload of POST /api/backtest. Strategy carries a
// base64-encoded wasm module exporting on_candle.
type backtestRequest struct {
	SeriesID       string   `json:"series_id"`
	Strategy       string   `json:"strategy"`
	InitialCapital *float64 `json:"initial_capital"`
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Strategy == "" {
		writeError(w, http.StatusBadRequest, "strategy is required")
		return
	}

	series, err := s.arena.Get(req.SeriesID)
	if err != nil {
		// The original surface reports missing data as an error body,
		// not a transport failure.
		writeJSON(w, http.StatusOK, map[string]string{"error": "no data loaded"})
		return
	}

	wasmBytes, err := base64.StdEncoding.DecodeString(req.Strategy)
	if err != nil {
		writeError(w, http.StatusBadRequest, "strategy must be base64-encoded wasm")
		return
	}

	strategy, err := wasm.NewStrategyWasmRuntime(wasmBytes, wasm.DefaultCandleTimeout)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": errorMessage(err)})
		return
	}
	defer strategy.Close()

	engine := backtest.NewEngine(s.log)

	if req.InitialCapital != nil {
		if err := engine.SetInitialCapital(*req.InitialCapital); err != nil {
			writeError(w, http.StatusBadRequest, errorMessage(err))
			return
		}
	}

	report, err := engine.Run(r.Context(), strategy, series)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": errorMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// errorMessage strips the structured wrapper down to the user-facing text.
func errorMessage(err error) string {
	var coded *errors.Error
	if errors.As(err, &coded) {
		return coded.Message
	}

	return err.Error()
}

func parseUnixParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.Unix(seconds, 0), nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// corsMiddleware mirrors the permissive CORS policy of the reference
// deployment.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
