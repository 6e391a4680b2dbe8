package monitoring

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// HealthServer exposes the monitor over HTTP: /health answers liveness
// probes in plain text, /status reports the last pipeline run as JSON.
type HealthServer struct {
	monitor *Monitor
	port    string
	mux     *http.ServeMux
}

func NewHealthServer(monitor *Monitor, port string) *HealthServer {
	if port == "" {
		port = "8080"
	}

	h := &HealthServer{
		monitor: monitor,
		port:    port,
		mux:     http.NewServeMux(),
	}
	h.mux.HandleFunc("/health", h.healthHandler)
	h.mux.HandleFunc("/status", h.statusHandler)
	return h
}

// Handler returns the route table, usable without opening a port.
func (h *HealthServer) Handler() http.Handler {
	return h.mux
}

func (h *HealthServer) Start() {
	log.Printf("Health check server starting on port %s", h.port)
	go func() {
		if err := http.ListenAndServe(":"+h.port, h.mux); err != nil {
			log.Printf("Health server error: %v", err)
		}
	}()
}

func (h *HealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if h.monitor.IsHealthy() {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK - %s", h.monitor.GetStatusSummary())
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	fmt.Fprintf(w, "Service unhealthy - %s", h.monitor.GetStatusSummary())
}

func (h *HealthServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.monitor.Status()); err != nil {
		log.Printf("Failed to encode status: %v", err)
	}
}
