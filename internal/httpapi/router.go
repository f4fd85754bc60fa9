package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"augur/internal/config"
	"augur/internal/connectors"
	"augur/internal/gateway"
	"augur/internal/heartbeat"
	"augur/internal/reporting"
	"augur/internal/store"
)

type Dependencies struct {
	Config   config.Config
	Gateway  *gateway.Service
	Store    *store.Store
	Health   *heartbeat.Registry
	Counters *reporting.Counters
	Events   *EventHub
	Logger   *slog.Logger
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.handleHealth)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.HandleFunc("/api/v1/info", rt.handleInfo)
	mux.HandleFunc("/api/v1/assist", rt.handleAssist)
	mux.HandleFunc("/api/v1/stats", rt.handleStats)
	mux.HandleFunc("/api/v1/events", rt.handleEvents)
	return mux
}

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	if r.deps.Store != nil {
		if err := r.deps.Store.Ping(req.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": err.Error()})
			return
		}
	}
	if r.deps.Health != nil {
		snapshot := r.deps.Health.Snapshot(time.Duration(r.deps.Config.HeartbeatStale) * time.Second)
		if !snapshot.Healthy() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":     "not-ready",
				"overall":    snapshot.Overall,
				"components": snapshot.Components,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (r *router) handleInfo(w http.ResponseWriter, req *http.Request) {
	payload := map[string]any{
		"name":        "augur",
		"environment": r.deps.Config.Environment,
		"connectors":  connectors.All(),
	}
	if r.deps.Health != nil {
		payload["heartbeat"] = r.deps.Health.Snapshot(time.Duration(r.deps.Config.HeartbeatStale) * time.Second)
	}
	writeJSON(w, http.StatusOK, payload)
}

func (r *router) handleStats(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if r.deps.Counters == nil {
		writeJSON(w, http.StatusOK, reporting.Totals{})
		return
	}
	writeJSON(w, http.StatusOK, r.deps.Counters.Totals())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
