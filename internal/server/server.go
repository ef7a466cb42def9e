package server

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"positionScope/internal/model"
	"positionScope/internal/valuation"
)

var walletPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

const cacheControlValue = "public, max-age=60, s-maxage=60, stale-while-revalidate=120"

// Valuator produces a wallet's valuation report.
type Valuator interface {
	Valuate(ctx context.Context, wallet common.Address, ent model.Entitlements) (*valuation.Report, error)
}

// Server exposes the valuation engine over HTTP.
type Server struct {
	httpServer *http.Server
	engine     Valuator
	roles      *RoleResolver
	logger     *zap.Logger
}

func New(addr string, engine Valuator, roles *RoleResolver, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{engine: engine, roles: roles, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/positions", s.handlePositions)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type envelope struct {
	Success bool    `json:"success"`
	Data    payload `json:"data"`
}

type payload struct {
	Positions []model.PositionRow `json:"positions"`
	Meta      responseMeta        `json:"meta"`
}

type responseMeta struct {
	Address   string `json:"address"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// handlePositions serves GET /positions?wallet=0x... . Total subsystem
// failure still answers 200 with an empty list: an empty portfolio is a
// valid and more useful signal to the dashboard than a hard failure.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}

	wallet := r.URL.Query().Get("wallet")
	if !walletPattern.MatchString(wallet) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid wallet address"})
		return
	}

	ent := s.roles.Resolve(r)
	address := common.HexToAddress(wallet)

	start := time.Now()
	report, err := s.engine.Valuate(r.Context(), address, ent)
	if err != nil {
		s.logger.Error("valuation failed",
			zap.String("wallet", wallet),
			zap.Error(err))
		report = &valuation.Report{
			Address:   strings.ToLower(address.Hex()),
			Positions: []model.PositionRow{},
			ElapsedMs: time.Since(start).Milliseconds(),
		}
	}
	if report.Positions == nil {
		report.Positions = []model.PositionRow{}
	}

	w.Header().Set("Cache-Control", cacheControlValue)
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data: payload{
			Positions: report.Positions,
			Meta:      responseMeta{Address: report.Address, ElapsedMs: report.ElapsedMs},
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
