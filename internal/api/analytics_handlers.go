package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hackgods/peer-support-platform/internal/simulator"
)

func analyticsState(id uuid.UUID, a *simulator.Analytics) AnalyticsViewResponse {
	return AnalyticsViewResponse{
		SessionID: id,
		Running:   a.Running(),
		Snapshot:  toSnapshotResponse(a.Snapshot()),
	}
}

func createAnalyticsHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := cfg.NewAnalytics()
		if _, err := a.Start(cfg.AnalyticsInterval); err != nil {
			handleError(w, err)
			return
		}
		id := cfg.Dashboards.Create(a)
		writeJSON(w, http.StatusCreated, analyticsState(id, a))
	}
}

func getAnalyticsHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		a, err := cfg.Dashboards.Get(id)
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, analyticsState(id, a))
	}
}
