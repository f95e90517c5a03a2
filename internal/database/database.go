package database

import (
	"context"
	"fmt"
	"time"

	"study-deck/internal/config"
	"study-deck/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// NewSQLXPostgresDB opens a pooled Postgres connection through the pgx stdlib driver.
func NewSQLXPostgresDB(cfg *config.Config) (*sqlx.DB, error) {
	connCfg, err := pgx.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	if cfg.DB.SimpleProtocol {
		connCfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	db := sqlx.NewDb(stdlib.OpenDB(*connCfg), "pgx")
	if cfg.DB.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.DB.MaxConns)
		db.SetMaxIdleConns(cfg.DB.MaxConns / 2)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Postgres database: %w", err)
	}

	logger.Get().Info("Connected to Postgres",
		zap.String("host", cfg.DB.Host),
		zap.String("database", cfg.DB.DBName),
		zap.Bool("simple_protocol", cfg.DB.SimpleProtocol))
	return db, nil
}
