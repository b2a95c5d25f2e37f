package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"agendly/internal/config"
	"agendly/internal/database"
	"agendly/internal/logging"
	"agendly/internal/middleware"
	"agendly/internal/modules/agenda"
	"agendly/internal/modules/auth"
	"agendly/internal/modules/schedule"
	"agendly/internal/notification"
	jwtsvc "agendly/internal/pkg/jwt"
	"agendly/internal/repository"

	"agendly/internal/domain"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logging.Setup(cfg.AppEnv)

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	partyRepo := repository.NewPartyRepository(db)
	agendaRepo := repository.NewAgendaRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	txManager := repository.NewTxManager(db)

	notifRepo := notification.NewRepository(db)
	if err := notifRepo.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("notification migration failed")
	}
	hub := notification.NewHub()
	defer hub.Close()
	notifService := notification.NewService(notifRepo, hub)
	notifHandler := notification.NewHandler(notifService, hub)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	authService := auth.NewService(partyRepo, j)
	authHandler := auth.NewHandler(authService)

	agendaService := agenda.NewService(agendaRepo, domain.PromotionPolicy(cfg.DefaultPromotionPolicy))
	agendaHandler := agenda.NewHandler(agendaService)

	scheduleService := schedule.NewService(
		agendaRepo,
		slotRepo,
		reservationRepo,
		waitlistRepo,
		txManager,
		notifService,
		schedule.Options{
			LockTimeout:       cfg.SlotLockTimeout,
			LockRetries:       cfg.SlotLockRetries,
			NotifyResponseTTL: cfg.NotifyResponseTTL,
		},
	)
	scheduleHandler := schedule.NewHandler(scheduleService)

	go runSweeper(scheduleService, cfg.SweepInterval)

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth(j))
		{
			agendaHandler.RegisterRoutes(protected)
			scheduleHandler.RegisterRoutes(protected)
			notifHandler.RegisterRoutes(protected)
		}
	}

	log.Info().Str("addr", cfg.ListenAddr).Msg("starting API server")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// runSweeper expires notified waitlist entries whose response window
// has passed, so held seats cascade to the next candidate.
func runSweeper(svc *schedule.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		expired, err := svc.ExpireOverdue(context.Background())
		if err != nil {
			log.Error().Err(err).Msg("waitlist sweep failed")
			continue
		}
		if expired > 0 {
			log.Info().Int("expired", expired).Msg("waitlist sweep")
		}
	}
}
