package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riverqueue/river"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"riverqueue.com/riverui"

	"github.com/dynoinc/respond/internal/incident"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type incidentLister interface {
	List(ctx context.Context, filter incident.ListFilter) ([]incident.Incident, error)
}

type httpHandlers struct {
	db        pinger
	incidents incidentLister
}

// New serves health, Prometheus metrics, a read-only incident listing and the
// river job UI. Every route is traced.
func New(ctx context.Context, db *pgxpool.Pool, riverClient *river.Client[pgx.Tx], incidents incidentLister, gatherer prometheus.Gatherer) (http.Handler, error) {
	opts := &riverui.ServerOpts{
		Client: riverClient,
		DB:     db,
		Prefix: "/riverui",
		Logger: slog.Default(),
	}
	riverServer, err := riverui.NewServer(opts)
	if err != nil {
		return nil, err
	}
	if err := riverServer.Start(ctx); err != nil {
		return nil, err
	}

	mux := newMux(&httpHandlers{db: db, incidents: incidents}, gatherer)
	mux.Handle("/riverui/", riverServer)

	return otelhttp.NewHandler(mux, "respond",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.Pattern
		}),
	), nil
}

func newMux(h *httpHandlers, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /api/incidents", h.listIncidents)
	return mux
}

func (h *httpHandlers) healthz(writer http.ResponseWriter, request *http.Request) {
	if err := h.db.Ping(request.Context()); err != nil {
		slog.WarnContext(request.Context(), "health check failed", "error", err)
		http.Error(writer, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	writer.Header().Set("Content-Type", "text/plain")
	_, _ = writer.Write([]byte("ok\n"))
}

func (h *httpHandlers) listIncidents(writer http.ResponseWriter, request *http.Request) {
	var scope incident.Scope
	switch request.URL.Query().Get("scope") {
	case "", "open":
		scope = incident.ScopeOpen
	case "closed":
		scope = incident.ScopeClosed
	case "all":
		scope = incident.ScopeAll
	default:
		http.Error(writer, "scope must be one of open, closed, all", http.StatusBadRequest)
		return
	}

	incidents, err := h.incidents.List(request.Context(), incident.ListFilter{Scope: scope, Limit: 100})
	if err != nil {
		slog.ErrorContext(request.Context(), "listing incidents", "error", err)
		http.Error(writer, "unable to list incidents", http.StatusInternalServerError)
		return
	}
	if incidents == nil {
		incidents = []incident.Incident{}
	}

	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(incidents); err != nil {
		slog.WarnContext(request.Context(), "writing response", "error", err)
	}
}
