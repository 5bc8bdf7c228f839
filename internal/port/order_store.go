package port

import (
	"context"

	"orderscan/internal/domain"
)

// CatalogReader performs exact-match lookups against the reference catalog.
// Lookups that find nothing return domain.ErrNotFound.
type CatalogReader interface {
	FindIndividualCustomerByName(ctx context.Context, firstName, lastName string) (*domain.IndividualCustomer, error)
	FindCustomerByPersonID(ctx context.Context, personID int64) (*domain.Customer, error)
	FindProductByNumber(ctx context.Context, productNumber string) (*domain.Product, error)
}

// OrderTx is a unit of work over orders. Every write made through it becomes
// visible only after Commit; Rollback discards all of them.
type OrderTx interface {
	CatalogReader

	OrderNumberExists(ctx context.Context, salesOrderNumber string) (bool, error)
	MaxOrderNumberSuffix(ctx context.Context, prefix string) (int64, error)
	InsertHeader(ctx context.Context, header domain.HeaderFields) (int64, error)
	InsertDetail(ctx context.Context, salesOrderID int64, detail domain.DetailFields) (int64, error)
	GetHeaderForUpdate(ctx context.Context, salesOrderID int64) (*domain.SalesOrderHeader, error)
	UpdateHeader(ctx context.Context, header domain.SalesOrderHeader) error
	DeleteDetails(ctx context.Context, salesOrderID int64) (int64, error)
	DeleteHeader(ctx context.Context, salesOrderID int64) (int64, error)

	Commit() error
	Rollback() error
}

// OrderStore opens order transactions and serves committed reads.
type OrderStore interface {
	Begin(ctx context.Context) (OrderTx, error)
	GetHeader(ctx context.Context, salesOrderID int64) (*domain.SalesOrderHeader, error)
	ListHeaders(ctx context.Context, offset, limit int) ([]domain.SalesOrderHeader, int, error)
	ListDetails(ctx context.Context, salesOrderIDs []int64) ([]domain.HydratedDetail, error)
}
