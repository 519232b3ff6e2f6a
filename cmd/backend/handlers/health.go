package handlers

import (
	"net/http"
)

// HealthResponse is the liveness probe payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HealthHandler reports process liveness. It does not touch the database
// or the browser driver, so it stays fast even mid-generation.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: "qa-agent"})
}
