package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"study-deck/internal/config"
	"study-deck/internal/database"
	"study-deck/internal/logger"

	"go.uber.org/zap"
)

const usage = "usage: migrate up | down | steps N | version"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
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

	mg, err := database.NewMigrator(cfg.GetMigrateURL())
	if err != nil {
		l.Fatal("Failed to open migrator", zap.Error(err))
	}
	defer func() {
		if err := mg.Close(); err != nil {
			l.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	switch cmd := os.Args[1]; cmd {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down()
	case "steps":
		if len(os.Args) < 3 {
			l.Fatal(usage)
		}
		n, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil || n == 0 {
			l.Fatal("steps needs a non-zero integer", zap.String("value", os.Args[2]))
		}
		err = mg.Steps(n)
	case "version":
	default:
		l.Fatal("Unknown command", zap.String("command", cmd), zap.String("usage", usage))
	}
	if err != nil {
		l.Fatal("Migration failed", zap.String("command", os.Args[1]), zap.Error(err))
	}

	version, dirty, ok, err := mg.Version()
	if err != nil {
		l.Fatal("Failed to read schema version", zap.Error(err))
	}
	if !ok {
		l.Info("No migrations applied")
		return
	}
	l.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
}
