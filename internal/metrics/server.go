package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"TacticalSentinel/internal/model"
)

// Latest keeps the most recent allocation for display. It is never fed back
// into a computation.
type Latest struct {
	mu    sync.RWMutex
	alloc *model.Allocation
	runID string
}

// Set replaces the displayed allocation.
func (l *Latest) Set(runID string, a *model.Allocation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runID, l.alloc = runID, a
}

// Get returns the displayed allocation, or nil before the first success.
func (l *Latest) Get() (string, *model.Allocation) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.runID, l.alloc
}

type sleeveView struct {
	Sleeve     string   `json:"sleeve"`
	Symbol     string   `json:"symbol"`
	Price      *float64 `json:"price"`
	PrevChange *float64 `json:"prev_change"`
	Score      int      `json:"score"`
	MaxScore   int      `json:"max_score"`
	Scalar     float64  `json:"scalar"`
	Invested   float64  `json:"invested"`
	Cash       float64  `json:"cash_contribution"`
}

type reportView struct {
	RunID       string             `json:"run_id"`
	AsOf        string             `json:"as_of"`
	RatesRising bool               `json:"rates_rising"`
	Rate        *float64           `json:"rate"`
	RateMA      *float64           `json:"rate_ma"`
	BondSymbol  string             `json:"bond_symbol"`
	CashYield   *float64           `json:"cash_yield"`
	Sleeves     []sleeveView       `json:"sleeves"`
	Weights     map[string]float64 `json:"weights"`
	Total       float64            `json:"total"`
}

// optional maps undefined values to JSON null.
func optional(v float64) *float64 {
	if !model.Defined(v) {
		return nil
	}
	return &v
}

func newReportView(runID string, a *model.Allocation) reportView {
	v := reportView{
		RunID:       runID,
		AsOf:        a.AsOf.Format("2006-01-02"),
		RatesRising: a.Regime.Rising,
		Rate:        optional(a.Regime.Rate),
		RateMA:      optional(a.Regime.RateMA),
		BondSymbol:  a.Regime.BondSymbol,
		CashYield:   optional(a.CashYield),
		Weights:     make(map[string]float64, len(a.Weights)),
		Total:       a.Total,
	}
	for _, s := range a.Sleeves {
		v.Sleeves = append(v.Sleeves, sleeveView{
			Sleeve: string(s.Sleeve), Symbol: s.Symbol,
			Price: optional(s.Price), PrevChange: optional(s.PrevChange),
			Score: s.Score, MaxScore: s.MaxScore, Scalar: s.Scalar,
			Invested: s.Invested, Cash: s.CashContribution,
		})
	}
	for _, w := range a.Weights {
		v.Weights[w.Symbol] = w.Weight
	}
	return v
}

// NewRouter wires /metrics, /healthz and /report/latest.
func NewRouter(reg *Registry, latest *Latest) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg.Gatherer(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/report/latest", func(w http.ResponseWriter, _ *http.Request) {
		runID, a := latest.Get()
		if a == nil {
			http.Error(w, "no report yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(newReportView(runID, a)); err != nil {
			log.Error().Err(err).Msg("encode latest report")
		}
	}).Methods(http.MethodGet)
	return r
}

// Server is the optional status HTTP server.
type Server struct {
	srv *http.Server
}

// NewServer builds a status server listening on addr.
func NewServer(addr string, reg *Registry, latest *Latest) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           NewRouter(reg, latest),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Start serves in the background until Shutdown is called.
func (s *Server) Start() {
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("status server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("status server stopped")
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
