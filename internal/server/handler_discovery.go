package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "jobbind API",
		Version:     "v1",
		Description: "Stage job files and build deterministic command lines",
		Endpoints: []endpointInfo{
			{"/api/v1/bind", []string{"POST"}, "Run a binding pass over a job document (YAML or JSON)"},
			{"/api/v1/infer", []string{"POST"}, "Infer the type of a value"},
			{"/api/v1/passes", []string{"GET"}, "List recorded passes. Accepts ?job_id= and ?digest="},
			{"/api/v1/passes/{id}", []string{"GET"}, "Single pass detail"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
