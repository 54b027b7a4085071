package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"event-ticketing-api/internal/config"
	"event-ticketing-api/internal/database"
	"event-ticketing-api/internal/logging"
	"event-ticketing-api/internal/messaging"
	"event-ticketing-api/internal/models"
	"event-ticketing-api/internal/repositories"
	"event-ticketing-api/internal/services"
	"event-ticketing-api/internal/utils"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("Failed to create admin")
		os.Exit(1)
	}
}

func run() error {
	var req models.UserCreateRequest

	flagSet := pflag.NewFlagSet("create-admin", pflag.ContinueOnError)
	flagSet.StringVar(&req.Email, "email", "", "admin email (required)")
	flagSet.StringVar(&req.Password, "password", "", "admin password (required for new accounts)")
	flagSet.StringVar(&req.FirstName, "first-name", "Admin", "first name")
	flagSet.StringVar(&req.LastName, "last-name", "User", "last name")
	flagSet.StringVar(&req.Username, "username", "", "username (defaults to the email)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if req.Email == "" || req.Password == "" {
		flagSet.PrintDefaults()
		return fmt.Errorf("--email and --password are required")
	}
	if req.Username == "" {
		req.Username = req.Email
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

	userService := services.NewUserService(
		repositories.NewUserRepository(db.DB),
		utils.NewPasswordHasher(nil),
		messaging.DiscardPublisher{},
	)

	user, created, err := userService.EnsureAdmin(context.Background(), &req)
	if err != nil {
		return err
	}

	entry := logrus.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email})
	if created {
		entry.Info("Admin user created")
	} else {
		entry.Info("Existing user has the Admin role")
	}
	return nil
}
