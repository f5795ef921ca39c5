// Package api exposes route discovery, transfer execution and the router
// statistics over HTTP.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourorg/settlement-switch/internal/app"
	"github.com/yourorg/settlement-switch/internal/config"
	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/journal"
	"github.com/yourorg/settlement-switch/internal/model"
)

// Version is reported by /health and /status. Release builds set it with
// -ldflags "-X github.com/yourorg/settlement-switch/internal/api.Version=...".
var Version = "1.0.0"

// adminKeyHeader carries the administrative API key
const adminKeyHeader = "X-API-Key"

// Server serves the settlement switch HTTP API
type Server struct {
	app     *app.App
	config  config.Config
	limiter *rate.Limiter
	metrics *httpMetrics
	router  *mux.Router
	started time.Time
}

// NewServer creates a server for a and registers its routes
func NewServer(a *app.App, cfg config.Config) *Server {
	s := &Server{
		app:     a,
		config:  cfg,
		metrics: registerHTTPMetrics(a.Metrics),
		router:  mux.NewRouter(),
		started: time.Now(),
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
		logrus.Infof("Rate limiting initialized: %v req/s, burst: %d", cfg.RateLimitRPS, burst)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.instrument, s.rateLimit)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	if s.config.EnableMetrics {
		r.Handle("/metrics", promhttp.HandlerFor(s.app.Metrics, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	r.HandleFunc("/routes/best", s.handleBestRoute).Methods(http.MethodPost)
	r.HandleFunc("/routes", s.handleRoutes).Methods(http.MethodPost)
	r.HandleFunc("/transfers", s.handleTransfer).Methods(http.MethodPost)
	r.HandleFunc("/transfers", s.handleListTransfers).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/adapters", s.handleAdapters).Methods(http.MethodGet)
	r.HandleFunc("/assets", s.handleAssets).Methods(http.MethodGet)

	r.HandleFunc("/adapters/{id}", s.handleRemoveAdapter).Methods(http.MethodDelete)
	r.HandleFunc("/assets/{asset}", s.handleSetAssetSupport).Methods(http.MethodPut)
	r.HandleFunc("/circuit/{id}/reset", s.handleResetCircuit).Methods(http.MethodPost)
}

// Handler returns the HTTP handler of the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured port until ctx is cancelled, then shuts down
// gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Server starting on port %s", s.config.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logrus.Info("Server stopped")
	return nil
}

// handleHealth is a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus provides detailed service status information
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rt := s.app.Router
	configuration := map[string]interface{}{
		"cost_model":  rt.CostModel().String(),
		"preference":  rt.Preference().String(),
		"rate_limit":  s.limiter != nil,
		"admin_calls": s.config.AdminAPIKey != "",
	}
	status := map[string]interface{}{
		"status":           "operational",
		"uptime":           time.Since(s.started).String(),
		"version":          Version,
		"authority":        rt.Authority(),
		"initialized":      rt.Initialized(),
		"providers":        rt.AdapterCount(),
		"configuration":    configuration,
		"circuit_breakers": s.app.Breakers(),
	}
	if webhook := s.app.WebhookStatus(); webhook != nil {
		status["webhook"] = webhook
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleBestRoute(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTransfer(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	best, err := s.app.Router.FindBestRoute(ctx, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRouteResponse(best))
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTransfer(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	routes, err := s.app.Router.FindRoutes(ctx, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	out := make([]RouteResponse, 0, len(routes))
	for _, route := range routes {
		out = append(out, newRouteResponse(route))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTransfer(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	receipt, err := s.app.Router.Execute(ctx, req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TransferResponse{Success: true, Receipt: receipt})
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	if s.app.Journal == nil {
		s.fail(w, http.StatusNotFound, "", "transfer journal disabled")
		return
	}
	limit := journal.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.fail(w, http.StatusBadRequest, errs.KindValidation.String(), "limit must be a positive integer")
			return
		}
		limit = n
	}

	receipts, err := s.app.Journal.List(r.Context(), limit)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStatsResponse(s.app.Router.Statistics()))
}

func (s *Server) handleAdapters(w http.ResponseWriter, r *http.Request) {
	resp := AdaptersResponse{Adapters: s.app.Router.Adapters()}
	for _, e := range s.app.Router.History() {
		resp.History = append(resp.History, HistoryEntry{ID: e.ID, Admitted: e.Admitted})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Router.SupportedAssets())
}

func (s *Server) handleRemoveAdapter(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathAddress(w, r, "id")
	if !ok {
		return
	}
	if err := s.app.Router.RemoveBridgeAdapter(s.caller(r), id); err != nil {
		s.errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetAssetSupport(w http.ResponseWriter, r *http.Request) {
	asset, ok := s.pathAddress(w, r, "asset")
	if !ok {
		return
	}
	var body AssetSupportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, http.StatusBadRequest, errs.KindValidation.String(), "invalid request body")
		return
	}
	if err := s.app.Router.SetAssetSupport(s.caller(r), asset, body.Supported); err != nil {
		s.errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"asset": asset, "supported": body.Supported})
}

// handleResetCircuit closes the circuit of one provider
func (s *Server) handleResetCircuit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathAddress(w, r, "id")
	if !ok {
		return
	}
	if s.caller(r) != s.app.Authority {
		s.errorResponse(w, errs.E("api.ResetCircuit", errs.ErrUnauthorized))
		return
	}
	if !s.app.ResetBreaker(id) {
		s.errorResponse(w, errs.Ef("api.ResetCircuit", errs.ErrAdapterNotFound, "provider %s", id.Hex()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Circuit breaker reset"})
}

// caller maps the request to an identity. Only a matching admin key acts as
// the authority; everyone else is the null identity.
func (s *Server) caller(r *http.Request) common.Address {
	key := r.Header.Get(adminKeyHeader)
	if s.config.AdminAPIKey == "" || key == "" {
		return common.Address{}
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.config.AdminAPIKey)) != 1 {
		return common.Address{}
	}
	return s.app.Authority
}

func (s *Server) decodeTransfer(w http.ResponseWriter, r *http.Request) (req model.TransferRequest, ok bool) {
	var body TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, http.StatusBadRequest, errs.KindValidation.String(), "invalid request body")
		return req, false
	}
	req, err := body.toModel()
	if err != nil {
		s.fail(w, http.StatusBadRequest, errs.KindValidation.String(), err.Error())
		return req, false
	}
	return req, true
}

func (s *Server) pathAddress(w http.ResponseWriter, r *http.Request, name string) (common.Address, bool) {
	raw := mux.Vars(r)[name]
	if !common.IsHexAddress(raw) {
		s.fail(w, http.StatusBadRequest, errs.KindValidation.String(), fmt.Sprintf("invalid %s %q", name, raw))
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}
