// internal/api/handlers/status.go

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ps-vitor/imoveis-crawler/internal/domain"
)

// StatsProvider exposes the running crawl counters.
type StatsProvider interface {
	Snapshot() []domain.Stats
	Site(name string) (domain.Stats, bool)
}

type StatusHandler struct {
	provider StatsProvider
}

func NewStatusHandler(provider StatsProvider) *StatusHandler {
	return &StatusHandler{provider: provider}
}

func (h *StatusHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", h.HandleStatus).Methods(http.MethodGet)
	r.HandleFunc("/status/{site}", h.HandleSiteStatus).Methods(http.MethodGet)
}

func (h *StatusHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Snapshot())
}

func (h *StatusHandler) HandleSiteStatus(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["site"]
	stats, ok := h.provider.Site(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown site " + name})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
