package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hackgods/peer-support-platform/internal/booking"
	"github.com/hackgods/peer-support-platform/internal/session"
	"github.com/hackgods/peer-support-platform/internal/simulator"
	"github.com/hackgods/peer-support-platform/internal/video"
	"github.com/hackgods/peer-support-platform/pkg/logging"
)

type RouterConfig struct {
	Bookings   *session.Registry[*booking.Controller]
	Chats      *session.Registry[*simulator.Chat]
	Dashboards *session.Registry[*simulator.Analytics]

	// Factories build a fresh view for each mount.
	NewBooking        func() *booking.Controller
	NewChat           func() *simulator.Chat
	NewAnalytics      func() *simulator.Analytics
	AnalyticsInterval time.Duration

	Rooms *booking.RoomIssuer
	Video video.Options

	Redis    Pinger // nil when redis is disabled
	Gatherer prometheus.Gatherer
	Logger   *logging.Logger
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoverMiddleware(cfg.Logger))

	health := NewHealthHandler(cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/booking/sessions", func(r chi.Router) {
		r.Post("/", createBookingHandler(cfg))
		r.Get("/{id}", getBookingHandler(cfg))
		r.Delete("/{id}", deleteSessionHandler(cfg.Bookings))
		r.Post("/{id}/load", loadCatalogHandler(cfg))
		r.Get("/{id}/slots", listSlotsHandler(cfg))
		r.Post("/{id}/date", selectDateHandler(cfg))
		r.Post("/{id}/slot", selectSlotHandler(cfg))
		r.Post("/{id}/reset", resetBookingHandler(cfg))
		r.Post("/{id}/confirm", confirmBookingHandler(cfg))
	})

	r.Route("/chat/sessions", func(r chi.Router) {
		r.Post("/", createChatHandler(cfg))
		r.Delete("/{id}", deleteSessionHandler(cfg.Chats))
		r.Get("/{id}/messages", listMessagesHandler(cfg))
		r.Post("/{id}/messages", sendMessageHandler(cfg))
	})

	r.Route("/analytics/views", func(r chi.Router) {
		r.Post("/", createAnalyticsHandler(cfg))
		r.Get("/{id}", getAnalyticsHandler(cfg))
		r.Delete("/{id}", deleteSessionHandler(cfg.Dashboards))
	})

	r.Get("/meet", listRoomsHandler())
	r.Post("/meet", issueRoomHandler(cfg))
	r.Get("/meet/{room}", meetHandler(cfg))

	return r
}

// deleteSessionHandler unmounts a view, cancelling whatever it owns.
func deleteSessionHandler[T any](sessions *session.Registry[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sessionID(w, r)
		if !ok {
			return
		}
		if err := sessions.Delete(id); err != nil {
			handleError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
