package server

import (
	"net/http"
	"runtime"
	"time"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Store     string `json:"store"`
	WorkRoot  string `json:"work_root"`
	MapInputs bool   `json:"map_inputs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	store := "disabled"
	if s.config.DBPath != "" {
		store = "sqlite"
	}
	respondOK(w, reqID, healthResponse{
		Status:    "healthy",
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Store:     store,
		WorkRoot:  s.config.WorkRoot,
		MapInputs: s.config.MapInputs,
	})
}
