package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"event-ticketing-api/internal/config"
	"event-ticketing-api/internal/database"
	"event-ticketing-api/internal/logging"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("Migration failed")
		os.Exit(1)
	}
}

func run() error {
	var up, down, status bool

	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.BoolVar(&up, "up", false, "run pending migrations")
	flagSet.BoolVar(&down, "down", false, "roll back the most recent migration")
	flagSet.BoolVar(&status, "status", false, "show the current migration version")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logging.Init(cfg.Log.Level, true)

	migrator, err := database.NewMigrator(database.ConfigFrom(cfg.Database))
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch {
	case status:
		version, dirty, err := migrator.Status()
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Migration status")
	case up:
		if err := migrator.Up(); err != nil {
			return err
		}
		logrus.Info("All migrations completed successfully")
	case down:
		if err := migrator.Down(); err != nil {
			return err
		}
		logrus.Info("Rolled back one migration")
	default:
		fmt.Fprintln(os.Stderr, "Usage: migrate [--up | --down | --status]")
		flagSet.PrintDefaults()
		os.Exit(2)
	}

	return nil
}
