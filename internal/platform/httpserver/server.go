package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	distributionservice "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service"
	distributionhttp "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/transport/http"
	_ "github.com/Fhkhdu777/chase-linker-payout/internal/platform/httpserver/docs"
)

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	addr         string
	distribution distributionservice.Module
}

func New(
	distribution distributionservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":5555"
	}

	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		addr:         addr,
		distribution: distribution,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux, for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/traders", s.handleListTraders)
	s.mux.HandleFunc("GET /api/payouts", s.handleListPayouts)
	s.mux.HandleFunc("GET /api/deals", s.handleListDeals)
	s.mux.HandleFunc("POST /api/payouts/{payout_id}/assign", s.handleAssignPayout)
	s.mux.HandleFunc("POST /api/payouts/{payout_id}/cancel", s.handleCancelPayout)
	s.mux.HandleFunc("GET /api/settings/auto-distribution", s.handleGetAutoSettings)
	s.mux.HandleFunc("POST /api/settings/auto-distribution", s.handleUpdateAutoSettings)
	s.mux.HandleFunc("POST /api/traders/{trader_id}/limit", s.handleUpdateTraderLimit)
}

func writeDistributionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, distributionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
