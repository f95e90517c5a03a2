// Command promote_admin grants the admin role to an existing profile.
//
//	promote_admin -email someone@example.com
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"study-deck/internal/config"
	"study-deck/internal/database"
	"study-deck/internal/logger"
	"study-deck/internal/repository"
	"study-deck/internal/service"

	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "", "email of the profile to promote")
	flag.Parse()
	if *email == "" {
		flag.Usage()
		log.Fatal("-email is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXPostgresDB(cfg)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// The running API drops its cached copy when the profile TTL expires.
	profiles := service.NewProfileService(repository.NewSQLXProfileRepository(db), nil, 0, cfg.Plans.FreeUploadLimit)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	profile, err := profiles.PromoteAdmin(ctx, *email)
	if err != nil {
		l.Fatal("Failed to promote profile", zap.String("email", *email), zap.Error(err))
	}
	l.Info("Profile promoted to admin", zap.String("userID", profile.ID), zap.String("email", profile.Email))
}
