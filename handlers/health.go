package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HandleHealth reports service liveness and database reachability.
// GET /api/health
func (s *Service) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "ok"}
	status := http.StatusOK

	if s.pinger != nil {
		if err := s.pinger.Ping(); err != nil {
			s.logger.Error("database ping failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}
