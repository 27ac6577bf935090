// Package api exposes the compliance engines over HTTP.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"fleetcomp/internal/assignment"
	"fleetcomp/internal/catalog"
	"fleetcomp/internal/hos"
	"fleetcomp/internal/metrics"
	"fleetcomp/internal/store"
	"fleetcomp/internal/webhooks"
	"fleetcomp/internal/weight"
)

// Server holds the wired dependencies; handlers are methods on it.
type Server struct {
	log     *zap.Logger
	st      store.Store
	cat     *catalog.Catalog
	weights *weight.Engine
	hos     *hos.Engine
	gate    *assignment.Gate
	broker  EventBroker
	hooks   *webhooks.Worker
	met     *metrics.Metrics
	limiter *rate.Limiter
	up      websocket.Upgrader
	started time.Time
}

// Deps are the collaborators a Server needs.
type Deps struct {
	Log     *zap.Logger
	Store   store.Store
	Catalog *catalog.Catalog
	Weights *weight.Engine
	HOS     *hos.Engine
	Gate    *assignment.Gate
	Broker  EventBroker
	Hooks   *webhooks.Worker
	Metrics *metrics.Metrics
	RateRPS float64
	Burst   int
}

// NewServer wires a Server from its dependencies.
func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	rps := d.RateRPS
	if rps <= 0 {
		rps = 50
	}
	burst := d.Burst
	if burst <= 0 {
		burst = 100
	}
	return &Server{
		log:     log,
		st:      d.Store,
		cat:     d.Catalog,
		weights: d.Weights,
		hos:     d.HOS,
		gate:    d.Gate,
		broker:  d.Broker,
		hooks:   d.Hooks,
		met:     d.Metrics,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		up:      websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		started: time.Now(),
	}
}

// Routes builds the full handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("GET /debug", s.handleDebug)
	mux.HandleFunc("GET /openapi.yaml", s.handleOpenAPI)
	mux.HandleFunc("GET /docs", s.handleDocs)
	if s.met != nil {
		mux.Handle("GET /metrics", s.met.Handler())
	}

	mux.HandleFunc("GET /v1/configurations", s.handleListConfigurations)
	mux.HandleFunc("GET /v1/configurations/{id}", s.handleGetConfiguration)
	mux.HandleFunc("GET /v1/states", s.handleListStates)

	mux.HandleFunc("POST /v1/loads/assess", s.handleAssessLoad)
	mux.HandleFunc("POST /v1/loads/validate", s.handleValidateLoad)
	mux.HandleFunc("POST /v1/assignments", s.handleAssignment)

	mux.HandleFunc("POST /v1/devices", s.handleCreateDevice)
	mux.HandleFunc("GET /v1/devices", s.handleListDevices)
	mux.HandleFunc("GET /v1/devices/{id}", s.handleGetDevice)

	mux.HandleFunc("POST /v1/drivers", s.handleCreateDriver)
	mux.HandleFunc("GET /v1/drivers", s.handleListDrivers)
	mux.HandleFunc("GET /v1/drivers/{id}", s.handleGetDriver)
	mux.HandleFunc("POST /v1/drivers/{id}/device", s.handleAssignDevice)

	mux.HandleFunc("POST /v1/drivers/{id}/duty-status", s.handleStartDutyStatus)
	mux.HandleFunc("POST /v1/drivers/{id}/duty-status/end", s.handleEndDutyStatus)
	mux.HandleFunc("GET /v1/drivers/{id}/duty-status", s.handleCurrentDutyStatus)
	mux.HandleFunc("GET /v1/drivers/{id}/duty-logs", s.handleDutyLogs)

	mux.HandleFunc("GET /v1/drivers/{id}/compliance", s.handleCheckCompliance)
	mux.HandleFunc("GET /v1/drivers/{id}/compliance/summary", s.handleComplianceSummary)
	mux.HandleFunc("GET /v1/drivers/{id}/weight-logs", s.handleWeightLogs)
	mux.HandleFunc("GET /v1/drivers/{id}/weight-logs/export", s.handleWeightLogsExport)
	mux.HandleFunc("GET /v1/drivers/{id}/violations", s.handleListViolations)
	mux.HandleFunc("GET /v1/drivers/{id}/export", s.handleExport)

	mux.HandleFunc("POST /v1/violations/{id}/acknowledge", s.handleAcknowledgeViolation)
	mux.HandleFunc("POST /v1/violations/{id}/resolve", s.handleResolveViolation)
	mux.HandleFunc("POST /v1/inspections", s.handleCreateInspection)

	mux.HandleFunc("GET /v1/subscriptions", s.handleListSubscriptions)
	mux.HandleFunc("POST /v1/subscriptions", s.handleCreateSubscription)
	mux.HandleFunc("DELETE /v1/subscriptions/{id}", s.handleDeleteSubscription)

	mux.HandleFunc("GET /v1/duty-events/ws", s.handleDutyEventsWS)

	return s.withMiddleware(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeProblem(w, http.StatusTooManyRequests, "rate limited", "request rate exceeded")
			return
		}
		// Websocket upgrades must keep the raw ResponseWriter.
		if strings.HasSuffix(r.URL.Path, "/ws") {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		route := routeLabel(r.URL.Path)
		if s.met != nil {
			s.met.HTTPRequests.WithLabelValues(r.Method, route, http.StatusText(rec.status)).Inc()
			s.met.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// routeLabel collapses entity ids so metric cardinality stays bounded.
func routeLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "v1" {
		return "/" + strings.Join(parts, "/")
	}
	switch parts[1] {
	case "drivers", "devices", "configurations", "violations", "subscriptions":
		if len(parts) >= 3 {
			parts[2] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}
