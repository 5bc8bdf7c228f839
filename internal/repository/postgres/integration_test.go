//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"orderscan/internal/domain"
	"orderscan/internal/metrics"
	"orderscan/internal/repository/postgres"
	"orderscan/internal/service"
)

// startPostgres runs a disposable PostgreSQL container with the schema migrated
// and a small catalog loaded.
func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("orderscan_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dir, err := filepath.Abs(filepath.Join("..", "..", "..", "db", "migrations"))
	require.NoError(t, err)
	m, err := migrate.New("file://"+dir, dsn)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate up: %v", err)
	}
	_, _ = m.Close()

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	db.MustExec(`INSERT INTO individual_customers (business_entity_id, first_name, last_name, city)
		VALUES (11000, 'Jon', 'Yang', 'Rockhampton')`)
	db.MustExec(`INSERT INTO customers (customer_id, person_id) VALUES (29485, 11000)`)
	db.MustExec(`INSERT INTO products (product_id, product_number, name, color, size, list_price)
		VALUES (771, 'BK-M82S-44', 'Mountain-100 Silver, 44', 'Silver', '44', 3399.99),
		       (707, 'HL-U509', 'Sport-100 Helmet, Red', 'Red', NULL, 34.99)`)
	return db
}

const invoiceResponse = "```json\n" + `{
  "SalesOrderHeader": {
    "SalesOrderNumber": "SO99999",
    "OrderDate": "2024-01-05",
    "SubTotal": 3434.98,
    "TaxAmt": 274.80,
    "Freight": 85.87,
    "TotalDue": 3795.65
  },
  "SalesOrderDetail": [
    {"ProductNumber": "BK-M82S-44", "OrderQty": 1, "UnitPrice": 3399.99, "LineTotal": 3399.99},
    {"ProductNumber": "HL-U509", "OrderQty": 1, "UnitPrice": 34.99, "LineTotal": 34.99},
    {"ProductNumber": "XX-UNKNOWN", "OrderQty": 3, "UnitPrice": 1, "LineTotal": 3}
  ],
  "CustomerName": "Jon Yang"
}` + "\n```"

func newIntegrationService(db *sqlx.DB, testMode bool) service.OrderService {
	return service.NewOrderService(postgres.NewOrderStore(db), nil,
		func() bool { return testMode }, metrics.NewRegistry(), zap.NewNop())
}

func TestIntegration_OrderLifecycle(t *testing.T) {
	db := startPostgres(t)
	svc := newIntegrationService(db, false)
	ctx := context.Background()

	created, err := svc.CreateFromResponse(ctx, invoiceResponse)
	require.NoError(t, err)
	id := created.SalesOrderHeader.SalesOrderID
	assert.Equal(t, "SO99999", created.SalesOrderHeader.SalesOrderNumber)
	assert.Equal(t, int64(29485), *created.SalesOrderHeader.CustomerID)
	require.Len(t, created.SalesOrderDetail, 2)
	assert.Equal(t, "Mountain-100 Silver, 44", *created.SalesOrderDetail[0].Name)
	var codes []string
	for _, w := range created.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []string{domain.WarnProductUnresolved}, codes)

	_, err = svc.CreateFromResponse(ctx, invoiceResponse)
	assert.ErrorIs(t, err, domain.ErrDuplicateOrderNumber)

	var headers int
	require.NoError(t, db.Get(&headers, "SELECT COUNT(*) FROM sales_order_headers"))
	assert.Equal(t, 1, headers)

	updated, err := svc.Update(ctx, &service.UpdateOrderInput{
		SalesOrderID: id,
		Header:       map[string]any{"Freight": 100.0},
		Details: []map[string]any{
			{"ProductNumber": "HL-U509", "OrderQty": 2, "UnitPrice": 34.99, "LineTotal": 69.98},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.SalesOrderHeader.Freight)
	assert.Equal(t, 3434.98, updated.SalesOrderHeader.SubTotal)
	require.Len(t, updated.SalesOrderDetail, 1)
	assert.Equal(t, "HL-U509", updated.SalesOrderDetail[0].ProductNumber)

	fetched, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, fetched.SalesOrderDetail, 1)
	assert.Equal(t, updated.SalesOrderDetail[0].SalesOrderDetailID, fetched.SalesOrderDetail[0].SalesOrderDetailID)
	assert.Equal(t, int64(2), fetched.SalesOrderDetail[0].OrderQty)

	require.NoError(t, svc.Delete(ctx, id))
	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	var details int
	require.NoError(t, db.Get(&details, "SELECT COUNT(*) FROM sales_order_details"))
	assert.Zero(t, details)
}

func TestIntegration_TestModeRenumbersAboveFloor(t *testing.T) {
	db := startPostgres(t)
	svc := newIntegrationService(db, true)
	ctx := context.Background()

	first, err := svc.CreateFromResponse(ctx, invoiceResponse)
	require.NoError(t, err)
	second, err := svc.CreateFromResponse(ctx, invoiceResponse)
	require.NoError(t, err)

	assert.Equal(t, "SO75124", first.SalesOrderHeader.SalesOrderNumber)
	assert.Equal(t, "SO75125", second.SalesOrderHeader.SalesOrderNumber)
}

func TestIntegration_FailedDetailInsertLeavesNoHeader(t *testing.T) {
	db := startPostgres(t)
	store := postgres.NewOrderStore(db)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	orderDate := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	id, err := tx.InsertHeader(ctx, domain.HeaderFields{OrderDate: &orderDate, SalesOrderNumber: "SO1"})
	require.NoError(t, err)

	_, err = tx.InsertDetail(ctx, id, domain.DetailFields{ProductID: 999999, OrderQty: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidField)
	require.NoError(t, tx.Rollback())

	_, err = store.GetHeader(ctx, id)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
