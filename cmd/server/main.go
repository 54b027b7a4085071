package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"event-ticketing-api/internal/config"
	"event-ticketing-api/internal/database"
	"event-ticketing-api/internal/logging"
	"event-ticketing-api/internal/server"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("Server exited")
		os.Exit(1)
	}
}

func run() error {
	var skipMigrations bool

	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flagSet.BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")
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

	logging.Init(cfg.Log.Level, cfg.IsDevelopment())

	db, err := database.NewConnection(database.ConfigFrom(cfg.Database))
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if !skipMigrations {
		if err := db.RunMigrations(); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		logrus.Info("Database migrations applied")
	}

	srv, err := server.New(cfg, db, nil)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.WithFields(logrus.Fields{
		"env":    cfg.Server.Env,
		"driver": db.Config().Driver,
	}).Info("Event ticketing API starting")

	return srv.Run(ctx)
}
