package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"orderscan/internal/domain"
	"orderscan/internal/port"
)

// catalogReader runs catalog lookups on either the pool or an open transaction.
type catalogReader struct {
	q sqlx.QueryerContext
}

// NewCatalogRepo creates a PostgreSQL-backed CatalogReader outside any transaction.
func NewCatalogRepo(db *sqlx.DB) port.CatalogReader {
	return &catalogReader{q: db}
}

func (r *catalogReader) FindIndividualCustomerByName(ctx context.Context, firstName, lastName string) (*domain.IndividualCustomer, error) {
	var person domain.IndividualCustomer
	err := sqlx.GetContext(ctx, r.q, &person,
		`SELECT * FROM individual_customers
		 WHERE first_name = $1 AND last_name = $2
		 ORDER BY individual_customer_id
		 LIMIT 1`, firstName, lastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("catalog.FindIndividualCustomerByName: %w", err)
	}
	return &person, nil
}

func (r *catalogReader) FindCustomerByPersonID(ctx context.Context, personID int64) (*domain.Customer, error) {
	var customer domain.Customer
	err := sqlx.GetContext(ctx, r.q, &customer,
		`SELECT * FROM customers WHERE person_id = $1 ORDER BY customer_id LIMIT 1`, personID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("catalog.FindCustomerByPersonID: %w", err)
	}
	return &customer, nil
}

func (r *catalogReader) FindProductByNumber(ctx context.Context, productNumber string) (*domain.Product, error) {
	var product domain.Product
	err := sqlx.GetContext(ctx, r.q, &product,
		`SELECT * FROM products WHERE product_number = $1`, productNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("catalog.FindProductByNumber: %w", err)
	}
	return &product, nil
}
