package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	authhandler "peakform/internal/auth/handler"
	authmetrics "peakform/internal/auth/metrics"
	authservice "peakform/internal/auth/service"
	sessionstore "peakform/internal/auth/store/session"
	userstore "peakform/internal/auth/store/user"
	"peakform/internal/catalog"
	"peakform/internal/gate"
	gatehandler "peakform/internal/gate/handler"
	gatemetrics "peakform/internal/gate/metrics"
	"peakform/internal/jwttoken"
	"peakform/internal/platform/config"
	"peakform/internal/platform/httpserver"
	"peakform/internal/platform/logger"
	platformredis "peakform/internal/platform/redis"
	reghandler "peakform/internal/registration/handler"
	regmetrics "peakform/internal/registration/metrics"
	regservice "peakform/internal/registration/service"
	draftstore "peakform/internal/registration/store/draft"
	httptransport "peakform/internal/transport/http"
	"peakform/internal/wellness"
	"peakform/pkg/platform/audit"
)

// main wires dependencies and keeps the server lifecycle small. Stores fall
// back to in-memory implementations when Redis or Postgres are not
// configured, so a bare `go run` serves a working single-instance stack.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err == nil {
			err = db.Ping()
		}
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	var users authservice.UserStore
	if db != nil {
		users = userstore.NewPostgres(db)
	} else {
		users = userstore.NewMemory()
	}

	var sessions authservice.SessionStore
	var drafts regservice.DraftStore
	if redisClient != nil {
		sessions = sessionstore.NewRedis(redisClient.Client)
		drafts = draftstore.NewRedis(redisClient.Client, cfg.DraftTTL)
	} else {
		sessions = sessionstore.NewMemory()
		drafts = draftstore.NewMemory(cfg.DraftTTL)
	}

	auditLog := audit.NewInMemoryStore()
	tokens := jwttoken.NewService(cfg.JWTSigningKey, "peakform", "peakform-app")

	authSvc := authservice.New(users, sessions, tokens, cfg.TokenTTL,
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(auditLog),
		authservice.WithActivityLog(auditLog),
		authservice.WithMetrics(authmetrics.New()),
	)

	registrationSvc := regservice.New(drafts, authSvc,
		regservice.WithLogger(log),
		regservice.WithAuditPublisher(auditLog),
		regservice.WithMetrics(regmetrics.New()),
	)

	gateMetrics := gatemetrics.New()
	gateRegistry := gate.NewRegistry(cfg.RedirectCooldown,
		gate.WithLogger(log),
		gate.WithAuditPublisher(auditLog),
		gate.WithMetrics(gateMetrics),
	)

	// Auth transitions flip the gate's view of the session immediately,
	// so a logout on one request redirects the very next navigation.
	authSvc.Subscribe(func(ev authservice.Event) {
		g := gateRegistry.Get(ev.SessionID.String())
		g.Observe(context.Background(), gate.AuthState{
			UserPresent: ev.Type == authservice.EventSignedIn,
		})
	})

	wellnessSvc := wellness.New(
		[]wellness.Source{wellness.SimulatedSource{}},
		wellness.WithLogger(log),
	)

	router := httptransport.NewRouter(httptransport.Handlers{
		Auth:     authhandler.New(authSvc, log),
		Gate:     gatehandler.New(gateRegistry, log, gateMetrics),
		Register: reghandler.New(registrationSvc, log),
		Wellness: wellness.NewHandler(wellnessSvc, log),
		Sports:   catalog.Handler(),
	}, tokens, log, func() error {
		if redisClient != nil {
			return redisClient.Health(context.Background())
		}
		return nil
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting peakform server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
