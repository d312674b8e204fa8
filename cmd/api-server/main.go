package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hackgods/peer-support-platform/internal/api"
	"github.com/hackgods/peer-support-platform/internal/booking"
	"github.com/hackgods/peer-support-platform/internal/config"
	"github.com/hackgods/peer-support-platform/internal/metrics"
	"github.com/hackgods/peer-support-platform/internal/random"
	redisclient "github.com/hackgods/peer-support-platform/internal/redis"
	"github.com/hackgods/peer-support-platform/internal/session"
	"github.com/hackgods/peer-support-platform/internal/simulator"
	"github.com/hackgods/peer-support-platform/internal/video"
	"github.com/hackgods/peer-support-platform/pkg/logging"
)

var version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", "api-server", "env", cfg.Env)
	log.Printf("running in env=%s http_port=%s", cfg.Env, cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clockwork.NewRealClock()
	src := random.New()
	m := metrics.NewPlatformMetrics(prometheus.DefaultRegisterer)

	var (
		roomRegistry booking.RoomRegistry = booking.NewMemoryRoomRegistry(clk)
		readiness    api.Pinger
	)
	if cfg.RedisEnabled() {
		rdb, err := redisclient.NewRedisClient(rootCtx, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Fatalf("redis connection error: %v", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		}()
		log.Println("connected to Redis")

		rooms := redisclient.NewRoomRegistry(rdb)
		roomRegistry = rooms
		readiness = rooms
	} else {
		log.Println("redis disabled, room ids reserved in memory")
	}

	dates := booking.NewLatentDateProvider(
		booking.NewWeekdayDateProvider(clk, cfg.CatalogHorizonDays), clk, cfg.CatalogLatency)
	slots, err := booking.NewStaticTimeSlotProvider(booking.DefaultTimeSlots())
	if err != nil {
		log.Fatalf("time slot catalog: %v", err)
	}
	issuer := booking.NewRoomIssuer(roomRegistry, src, cfg.RoomLabel, cfg.RoomTTL)
	delay := simulator.TypingDelay{Min: cfg.TypingDelayMin, Max: cfg.TypingDelayMax}

	bookings := session.NewRegistry[*booking.Controller]("booking", clk, cfg.SessionTTL, m)
	chats := session.NewRegistry[*simulator.Chat]("chat", clk, cfg.SessionTTL, m)
	dashboards := session.NewRegistry[*simulator.Analytics]("analytics", clk, cfg.SessionTTL, m)

	router := api.NewRouter(api.RouterConfig{
		Bookings:   bookings,
		Chats:      chats,
		Dashboards: dashboards,
		NewBooking: func() *booking.Controller {
			return booking.NewController(dates, slots, issuer, clk, logger, m)
		},
		NewChat: func() *simulator.Chat {
			return simulator.NewChat(clk, src, delay, m)
		},
		NewAnalytics: func() *simulator.Analytics {
			return simulator.NewAnalytics(clk, src, m)
		},
		AnalyticsInterval: cfg.AnalyticsInterval,
		Rooms:             issuer,
		Video:             video.Options{Domain: cfg.VideoDomain, DisplayName: cfg.VideoDisplayName},
		Redis:             readiness,
		Gatherer:          prometheus.DefaultGatherer,
		Logger:            logger,
		Env:               cfg.Env,
		Version:           version,
	})

	sweepCtx, stopSweep := context.WithCancel(rootCtx)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		session.RunSweeper(sweepCtx, clk, cfg.SweepInterval, logger, bookings, chats, dashboards)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Printf("http server error: %v", err)
		}
	}

	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	stopSweep()
	<-sweepDone

	// Cancel every pending typing delay and analytics ticker.
	bookings.CloseAll()
	chats.CloseAll()
	dashboards.CloseAll()

	log.Println("api-server stopped")
}
