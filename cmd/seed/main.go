package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"agendly/internal/database"
	"agendly/internal/domain"
	"agendly/internal/logging"
	"agendly/internal/notification"
	"agendly/internal/repository"
)

func main() {
	logging.Setup("dev")

	db, err := database.Connect("agendly.db")
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}

	if err := repository.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	notifRepo := notification.NewRepository(db)
	if err := notifRepo.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("notification migration failed")
	}

	log.Info().Msg("cleaning old data")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM waitlist_entries")
	db.Exec("DELETE FROM reservations")
	db.Exec("DELETE FROM slots")
	db.Exec("DELETE FROM agendas")
	db.Exec("DELETE FROM parties")

	ctx := context.Background()
	parties := repository.NewPartyRepository(db)
	agendas := repository.NewAgendaRepository(db)
	slots := repository.NewSlotRepository(db)

	log.Info().Msg("creating parties")

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	announcer := &domain.Party{
		Email:        "coach@agendly.dev",
		PasswordHash: string(hash),
		Role:         domain.RoleAnnouncer,
		Name:         "Dana Coach",
	}
	if err := parties.Create(ctx, announcer); err != nil {
		log.Fatal().Err(err).Msg("seed announcer failed")
	}

	clientNames := []string{"Alice Client", "Bob Client", "Carol Client", "Derek Client"}
	clientEmails := []string{"alice@agendly.dev", "bob@agendly.dev", "carol@agendly.dev", "derek@agendly.dev"}
	for i := range clientNames {
		p := &domain.Party{
			Email:        clientEmails[i],
			PasswordHash: string(hash),
			Role:         domain.RoleParty,
			Name:         clientNames[i],
		}
		if err := parties.Create(ctx, p); err != nil {
			log.Fatal().Err(err).Msg("seed client failed")
		}
	}

	log.Info().Msg("creating agendas and slots")

	yoga := &domain.Agenda{
		OwnerID:         announcer.ID,
		Title:           "Morning Yoga",
		Type:            domain.AgendaClass,
		DurationMinutes: 60,
		CapacityPerSlot: 2,
		Price:           15,
		Status:          domain.AgendaActive,
		PromotionPolicy: domain.PromotionAuto,
	}
	if err := agendas.Create(ctx, yoga); err != nil {
		log.Fatal().Err(err).Msg("seed agenda failed")
	}

	consult := &domain.Agenda{
		OwnerID:         announcer.ID,
		Title:           "One-on-one Consultation",
		Type:            domain.AgendaService,
		DurationMinutes: 30,
		CapacityPerSlot: 1,
		Price:           40,
		Status:          domain.AgendaActive,
		PromotionPolicy: domain.PromotionManual,
	}
	if err := agendas.Create(ctx, consult); err != nil {
		log.Fatal().Err(err).Msg("seed agenda failed")
	}

	tomorrow := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	for day := 0; day < 5; day++ {
		start := tomorrow.Add(time.Duration(day) * 24 * time.Hour)
		slot := &domain.Slot{
			AgendaID:  yoga.ID,
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Capacity:  yoga.CapacityPerSlot,
			Status:    domain.SlotOpen,
		}
		if err := slots.Create(ctx, slot); err != nil {
			log.Fatal().Err(err).Msg("seed slot failed")
		}

		consultStart := start.Add(3 * time.Hour)
		consultSlot := &domain.Slot{
			AgendaID:  consult.ID,
			StartTime: consultStart,
			EndTime:   consultStart.Add(30 * time.Minute),
			Capacity:  consult.CapacityPerSlot,
			Status:    domain.SlotOpen,
		}
		if err := slots.Create(ctx, consultSlot); err != nil {
			log.Fatal().Err(err).Msg("seed slot failed")
		}
	}

	log.Info().Msg("seed completed")
}
