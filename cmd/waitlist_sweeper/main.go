package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"agendly/internal/config"
	"agendly/internal/database"
	"agendly/internal/logging"
	"agendly/internal/modules/schedule"
	"agendly/internal/notification"
	"agendly/internal/repository"
)

// One-shot sweep of overdue notified waitlist entries, intended to run
// from cron when the API's in-process sweeper is disabled.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logging.Setup(cfg.AppEnv)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}

	notifRepo := notification.NewRepository(db)
	notifService := notification.NewService(notifRepo, nil)

	svc := schedule.NewService(
		repository.NewAgendaRepository(db),
		repository.NewSlotRepository(db),
		repository.NewReservationRepository(db),
		repository.NewWaitlistRepository(db),
		repository.NewTxManager(db),
		notifService,
		schedule.Options{
			LockTimeout:       cfg.SlotLockTimeout,
			LockRetries:       cfg.SlotLockRetries,
			NotifyResponseTTL: cfg.NotifyResponseTTL,
		},
	)

	expired, err := svc.ExpireOverdue(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("waitlist sweep failed")
	}
	log.Info().Int("expired", expired).Msg("waitlist sweep completed")
}
