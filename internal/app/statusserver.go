package app

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// healthHandler answers liveness probes from the orchestrator.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// statusHandler serves a JSON snapshot of the run: aggregate status plus
// per-stage states.
func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Status endpoint hit.", "remote_addr", r.RemoteAddr)
	w.Header().Set("Content-Type", "application/json")

	snap := a.tools.Status.Snapshot()
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		a.logger.Error("Failed to encode status snapshot.", "error", err)
	}
}

// startStatusServer runs the status HTTP server for the duration of the
// process. It is observational only; failures never affect the run.
func (a *App) startStatusServer(port int) {
	a.logger.Debug("Configuring status server.")
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/status", a.statusHandler)

	addr := fmt.Sprintf(":%d", port)

	go func() {
		a.logger.Info("🩺 Status server starting", "address", fmt.Sprintf("http://localhost%s/status", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			a.logger.Error("Status server failed", "error", err)
		}
	}()
}
