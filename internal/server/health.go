package server

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Scorer    string    `json:"scorer"`
	Timestamp time.Time `json:"timestamp"`
}

// handleLive is the liveness probe. It reports "degraded" while the scorer
// is unavailable but always answers 200.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := s.scorer.IsAvailable(); err != nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    status,
		Version:   s.version,
		Scorer:    s.scorer.Name(),
		Timestamp: time.Now(),
	})
}
