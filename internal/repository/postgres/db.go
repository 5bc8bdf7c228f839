package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"orderscan/internal/config"
	"orderscan/internal/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	salesOrderNumberKey = "sales_order_headers_sales_order_number_key"
)

// NewDB creates a new PostgreSQL connection pool.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	return db, nil
}

// translateWriteError maps constraint violations onto domain errors.
func translateWriteError(op, salesOrderNumber string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == salesOrderNumberKey:
			return &domain.DuplicateOrderError{SalesOrderNumber: salesOrderNumber}
		case pgErr.Code == pgForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidField, pgErr.Detail)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
