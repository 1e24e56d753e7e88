package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	rolestewardship "stewardship/contexts/group-governance/role-stewardship"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	httptransport "stewardship/contexts/group-governance/role-stewardship/transport/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "stewardship/internal/platform/httpserver/docs"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	addr        string
	stewardship rolestewardship.Module
	auth        Authenticator
	gatherer    prometheus.Gatherer
}

func New(
	stewardship rolestewardship.Module,
	auth Authenticator,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		addr:        addr,
		stewardship: stewardship,
		auth:        auth,
		gatherer:    gatherer,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is done, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("http server stopping",
			"event", "http_server_stopping",
			"module", "internal/platform/httpserver",
			"layer", "platform",
		)
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.registerStewardshipRoutes()
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrInvalidInput),
		errors.Is(err, domainerrors.ErrInvalidWeight),
		errors.Is(err, domainerrors.ErrSelfTrust),
		errors.Is(err, domainerrors.ErrInvalidRoleDefinition):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domainerrors.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domainerrors.ErrNotAMember):
		writeError(w, http.StatusForbidden, "not_a_member", err.Error())
	case errors.Is(err, domainerrors.ErrRoleNotFound):
		writeError(w, http.StatusNotFound, "role_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "group_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyHolder):
		writeError(w, http.StatusConflict, "already_holder", err.Error())
	case errors.Is(err, domainerrors.ErrRoleFull):
		writeError(w, http.StatusConflict, "role_full", err.Error())
	case errors.Is(err, domainerrors.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domainerrors.ErrRoleNotTrustActivated):
		writeError(w, http.StatusUnprocessableEntity, "role_not_trust_activated", err.Error())
	case errors.Is(err, domainerrors.ErrRoleNotAdminAssigned):
		writeError(w, http.StatusUnprocessableEntity, "role_not_admin_assigned", err.Error())
	case errors.Is(err, domainerrors.ErrNotACandidate):
		writeError(w, http.StatusUnprocessableEntity, "not_a_candidate", err.Error())
	case errors.Is(err, domainerrors.ErrBootstrapUnavailable):
		writeError(w, http.StatusUnprocessableEntity, "bootstrap_unavailable", err.Error())
	case errors.Is(err, domainerrors.ErrModeTransitionForbidden):
		writeError(w, http.StatusUnprocessableEntity, "mode_transition_forbidden", err.Error())
	case errors.Is(err, domainerrors.ErrMembershipTooRecent):
		writeError(w, http.StatusUnprocessableEntity, "membership_too_recent", err.Error())
	case errors.Is(err, domainerrors.ErrTrustRateLimited):
		writeError(w, http.StatusTooManyRequests, "trust_rate_limited", err.Error())
	case domainerrors.IsRetryable(err):
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, httptransport.ErrorResponse{
			Code:      "role_busy",
			Message:   err.Error(),
			Retryable: true,
		})
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, httptransport.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
