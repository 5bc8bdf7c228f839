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

const headerColumns = `revision_number, order_date, due_date, ship_date, status, online_order_flag,
	sales_order_number, purchase_order_number, account_number, customer_id, sales_person_id,
	territory_id, bill_to_address_id, ship_to_address_id, ship_method_id, credit_card_id,
	credit_card_approval_code, currency_rate_id, sub_total, tax_amt, freight, total_due`

const insertHeaderSQL = `INSERT INTO sales_order_headers (` + headerColumns + `)
	VALUES (:revision_number, :order_date, :due_date, :ship_date, :status, :online_order_flag,
	:sales_order_number, :purchase_order_number, :account_number, :customer_id, :sales_person_id,
	:territory_id, :bill_to_address_id, :ship_to_address_id, :ship_method_id, :credit_card_id,
	:credit_card_approval_code, :currency_rate_id, :sub_total, :tax_amt, :freight, :total_due)
	RETURNING sales_order_id`

const updateHeaderSQL = `UPDATE sales_order_headers SET
	revision_number = :revision_number, order_date = :order_date, due_date = :due_date,
	ship_date = :ship_date, status = :status, online_order_flag = :online_order_flag,
	sales_order_number = :sales_order_number, purchase_order_number = :purchase_order_number,
	account_number = :account_number, customer_id = :customer_id, sales_person_id = :sales_person_id,
	territory_id = :territory_id, bill_to_address_id = :bill_to_address_id,
	ship_to_address_id = :ship_to_address_id, ship_method_id = :ship_method_id,
	credit_card_id = :credit_card_id, credit_card_approval_code = :credit_card_approval_code,
	currency_rate_id = :currency_rate_id, sub_total = :sub_total, tax_amt = :tax_amt,
	freight = :freight, total_due = :total_due
	WHERE sales_order_id = :sales_order_id`

const insertDetailSQL = `INSERT INTO sales_order_details (sales_order_id, carrier_tracking_number,
	order_qty, product_id, special_offer_id, unit_price, unit_price_discount, line_total)
	VALUES (:sales_order_id, :carrier_tracking_number, :order_qty, :product_id, :special_offer_id,
	:unit_price, :unit_price_discount, :line_total)
	RETURNING sales_order_detail_id`

type orderStore struct {
	db *sqlx.DB
}

// NewOrderStore creates a PostgreSQL-backed OrderStore.
func NewOrderStore(db *sqlx.DB) port.OrderStore {
	return &orderStore{db: db}
}

func (s *orderStore) Begin(ctx context.Context) (port.OrderTx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("orderStore.Begin: %w", err)
	}
	return &orderTx{catalogReader: catalogReader{q: tx}, tx: tx}, nil
}

func (s *orderStore) GetHeader(ctx context.Context, salesOrderID int64) (*domain.SalesOrderHeader, error) {
	var header domain.SalesOrderHeader
	err := s.db.GetContext(ctx, &header,
		"SELECT * FROM sales_order_headers WHERE sales_order_id = $1", salesOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("orderStore.GetHeader: %w", err)
	}
	return &header, nil
}

func (s *orderStore) ListHeaders(ctx context.Context, offset, limit int) ([]domain.SalesOrderHeader, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM sales_order_headers"); err != nil {
		return nil, 0, fmt.Errorf("orderStore.ListHeaders count: %w", err)
	}

	var headers []domain.SalesOrderHeader
	err := s.db.SelectContext(ctx, &headers,
		`SELECT * FROM sales_order_headers
		 ORDER BY order_date DESC, sales_order_id DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("orderStore.ListHeaders: %w", err)
	}
	return headers, total, nil
}

// hydratedDetailRow is a detail row joined with its product display columns.
type hydratedDetailRow struct {
	domain.SalesOrderDetail
	ProductNumber string   `db:"product_number"`
	Name          *string  `db:"name"`
	Color         *string  `db:"color"`
	Size          *string  `db:"size"`
	ListPrice     *float64 `db:"list_price"`
}

func (s *orderStore) ListDetails(ctx context.Context, salesOrderIDs []int64) ([]domain.HydratedDetail, error) {
	if len(salesOrderIDs) == 0 {
		return []domain.HydratedDetail{}, nil
	}
	query, args, err := sqlx.In(
		`SELECT d.*, p.product_number, p.name, p.color, p.size, p.list_price
		 FROM sales_order_details d
		 JOIN products p ON p.product_id = d.product_id
		 WHERE d.sales_order_id IN (?)
		 ORDER BY d.sales_order_id, d.sales_order_detail_id`, salesOrderIDs)
	if err != nil {
		return nil, fmt.Errorf("orderStore.ListDetails: %w", err)
	}

	var rows []hydratedDetailRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("orderStore.ListDetails: %w", err)
	}
	details := make([]domain.HydratedDetail, 0, len(rows))
	for i := range rows {
		details = append(details, domain.HydratedDetail{
			SalesOrderDetail: rows[i].SalesOrderDetail,
			ProductNumber:    rows[i].ProductNumber,
			Name:             rows[i].Name,
			Color:            rows[i].Color,
			Size:             rows[i].Size,
			ListPrice:        rows[i].ListPrice,
		})
	}
	return details, nil
}

type orderTx struct {
	catalogReader
	tx *sqlx.Tx
}

func (t *orderTx) OrderNumberExists(ctx context.Context, salesOrderNumber string) (bool, error) {
	var exists bool
	err := t.tx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM sales_order_headers WHERE sales_order_number = $1)", salesOrderNumber)
	if err != nil {
		return false, fmt.Errorf("orderTx.OrderNumberExists: %w", err)
	}
	return exists, nil
}

// MaxOrderNumberSuffix returns the largest numeric suffix among order numbers made of
// prefix followed by digits only, or 0 when none exist.
func (t *orderTx) MaxOrderNumberSuffix(ctx context.Context, prefix string) (int64, error) {
	var max int64
	err := t.tx.GetContext(ctx, &max,
		`SELECT COALESCE(MAX(CAST(SUBSTRING(sales_order_number FROM LENGTH($1::text) + 1) AS BIGINT)), 0)
		 FROM sales_order_headers
		 WHERE sales_order_number ~ ('^' || $1::text || '[0-9]{1,18}$')`, prefix)
	if err != nil {
		return 0, fmt.Errorf("orderTx.MaxOrderNumberSuffix: %w", err)
	}
	return max, nil
}

func (t *orderTx) InsertHeader(ctx context.Context, header domain.HeaderFields) (int64, error) {
	query, args, err := sqlx.Named(insertHeaderSQL, header)
	if err != nil {
		return 0, fmt.Errorf("orderTx.InsertHeader: %w", err)
	}
	var id int64
	if err := t.tx.QueryRowxContext(ctx, t.tx.Rebind(query), args...).Scan(&id); err != nil {
		return 0, translateWriteError("orderTx.InsertHeader", header.SalesOrderNumber, err)
	}
	return id, nil
}

func (t *orderTx) InsertDetail(ctx context.Context, salesOrderID int64, detail domain.DetailFields) (int64, error) {
	row := domain.SalesOrderDetail{SalesOrderID: salesOrderID, DetailFields: detail}
	query, args, err := sqlx.Named(insertDetailSQL, row)
	if err != nil {
		return 0, fmt.Errorf("orderTx.InsertDetail: %w", err)
	}
	var id int64
	if err := t.tx.QueryRowxContext(ctx, t.tx.Rebind(query), args...).Scan(&id); err != nil {
		return 0, translateWriteError("orderTx.InsertDetail", "", err)
	}
	return id, nil
}

func (t *orderTx) GetHeaderForUpdate(ctx context.Context, salesOrderID int64) (*domain.SalesOrderHeader, error) {
	var header domain.SalesOrderHeader
	err := t.tx.GetContext(ctx, &header,
		"SELECT * FROM sales_order_headers WHERE sales_order_id = $1 FOR UPDATE", salesOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("orderTx.GetHeaderForUpdate: %w", err)
	}
	return &header, nil
}

func (t *orderTx) UpdateHeader(ctx context.Context, header domain.SalesOrderHeader) error {
	query, args, err := sqlx.Named(updateHeaderSQL, header)
	if err != nil {
		return fmt.Errorf("orderTx.UpdateHeader: %w", err)
	}
	result, err := t.tx.ExecContext(ctx, t.tx.Rebind(query), args...)
	if err != nil {
		return translateWriteError("orderTx.UpdateHeader", header.SalesOrderNumber, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("orderTx.UpdateHeader rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (t *orderTx) DeleteDetails(ctx context.Context, salesOrderID int64) (int64, error) {
	result, err := t.tx.ExecContext(ctx,
		"DELETE FROM sales_order_details WHERE sales_order_id = $1", salesOrderID)
	if err != nil {
		return 0, fmt.Errorf("orderTx.DeleteDetails: %w", err)
	}
	return result.RowsAffected()
}

func (t *orderTx) DeleteHeader(ctx context.Context, salesOrderID int64) (int64, error) {
	result, err := t.tx.ExecContext(ctx,
		"DELETE FROM sales_order_headers WHERE sales_order_id = $1", salesOrderID)
	if err != nil {
		return 0, fmt.Errorf("orderTx.DeleteHeader: %w", err)
	}
	return result.RowsAffected()
}

func (t *orderTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("orderTx.Commit: %w", err)
	}
	return nil
}

// Rollback is safe to call after Commit; it then returns sql.ErrTxDone.
func (t *orderTx) Rollback() error {
	return t.tx.Rollback()
}
