// Command seed inserts an admin user and a handful of sample events.  Rows
// that already exist are skipped, so it is safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/event-ticket-reservation/internal/config"
	"github.com/iliyamo/event-ticket-reservation/internal/database"
	"github.com/iliyamo/event-ticket-reservation/internal/logger"
	"github.com/iliyamo/event-ticket-reservation/internal/model"
	"github.com/iliyamo/event-ticket-reservation/internal/repository"
	"github.com/iliyamo/event-ticket-reservation/internal/utils"
)

const adminEmail = "admin@admin.com"

var sampleEvents = []model.Event{
	{Name: "Obon", Description: "Buddhist festival honouring the spirits of ancestors, closed by the Bon Odori dance.", Date: mustDate("2027-08-13 13:00:00"), Availability: 10},
	{Name: "Carnival", Description: "A season of festivity and indulgence held before Lent.", Date: mustDate("2013-03-03 10:00:00"), Availability: 5},
	{Name: "Swiss Yodeling Festival", Description: "Choirs and soloists from across the Alps perform traditional yodeling.", Date: mustDate("2025-06-17 14:00:00"), Availability: 1},
	{Name: "Tanabata Matsuri", Description: "Star festival celebrating the yearly meeting of Orihime and Hikoboshi.", Date: mustDate("2007-07-07 13:00:00"), Availability: 200},
	{Name: "Sechseläuten", Description: "Zurich spring festival ending with the burning of the Böögg.", Date: mustDate("2047-04-21 09:00:00"), Availability: 0},
}

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seedAdmin(ctx, repository.NewUserRepo(db), cfg.BcryptCost, log); err != nil {
		log.Error("seed admin", "err", err)
	}
	seedEvents(ctx, repository.NewEventRepo(db), log)
}

func seedAdmin(ctx context.Context, users *repository.UserRepo, cost int, log *slog.Logger) error {
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "password"
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	u := model.User{Name: "Admin", Email: adminEmail, PasswordHash: hash, EmailVerifiedAt: &now}
	if err := users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Info("admin user already exists", "email", adminEmail)
			return nil
		}
		return err
	}
	log.Info("created admin user", "id", u.ID, "email", u.Email)
	return nil
}

func seedEvents(ctx context.Context, events *repository.EventRepo, log *slog.Logger) {
	for _, e := range sampleEvents {
		e := e
		if err := events.Create(ctx, &e); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				log.Info("event already exists", "name", e.Name)
				continue
			}
			log.Error("create event", "name", e.Name, "err", err)
			continue
		}
		log.Info("created event", "id", e.ID, "name", e.Name)
	}
}

func mustDate(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}
