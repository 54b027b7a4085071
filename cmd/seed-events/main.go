package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"event-ticketing-api/internal/config"
	"event-ticketing-api/internal/database"
	"event-ticketing-api/internal/logging"
	"event-ticketing-api/internal/models"
	"event-ticketing-api/internal/repositories"
)

var sampleEvents = []struct {
	name     string
	location string
	capacity int
}{
	{"Tech Conference", "Nairobi", 500},
	{"Jazz Night", "Mombasa", 120},
	{"Startup Pitch Day", "Kisumu", 200},
	{"Food Festival", "Nakuru", 1000},
	{"Marathon Expo", "Eldoret", 300},
}

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("Seeding failed")
		os.Exit(1)
	}
}

func run() error {
	var count int

	flagSet := pflag.NewFlagSet("seed-events", pflag.ContinueOnError)
	flagSet.IntVarP(&count, "count", "n", len(sampleEvents), "number of events to create")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if count <= 0 {
		return fmt.Errorf("--count must be positive")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logging.Init(cfg.Log.Level, true)

	db, err := database.NewConnection(database.ConfigFrom(cfg.Database))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	eventRepo := repositories.NewEventRepository(db.DB)
	ctx := context.Background()
	start := time.Now().UTC().Truncate(24 * time.Hour)

	for i := 0; i < count; i++ {
		sample := sampleEvents[i%len(sampleEvents)]
		date := start.AddDate(0, 0, 7*(i+1)).Add(18 * time.Hour)

		name := sample.name
		if i >= len(sampleEvents) {
			name = fmt.Sprintf("%s #%d", sample.name, i/len(sampleEvents)+1)
		}

		event := &models.Event{
			Name:         name,
			Description:  fmt.Sprintf("%s in %s", sample.name, sample.location),
			Location:     sample.location,
			Date:         &date,
			TotalTickets: sample.capacity,
		}
		if err := eventRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("creating %q: %w", name, err)
		}

		logrus.WithFields(logrus.Fields{"event_id": event.ID, "name": event.Name}).Info("Event created")
	}

	logrus.WithField("count", count).Info("Seeding complete")
	return nil
}
