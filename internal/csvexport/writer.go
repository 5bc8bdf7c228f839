package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"orderscan/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row: order columns followed by line columns.
var columns = []string{
	"Sales Order ID",
	"Sales Order Number",
	"Order Date",
	"Due Date",
	"Ship Date",
	"Customer ID",
	"Account Number",
	"Purchase Order Number",
	"Sub Total",
	"Tax Amount",
	"Freight",
	"Total Due",
	"Detail ID",
	"Product Number",
	"Product Name",
	"Order Qty",
	"Unit Price",
	"Unit Price Discount",
	"Line Total",
}

const headerColumnCount = 12

// Writer wraps csv.Writer for exporting sales orders as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteOrders writes one row per detail line. An order without lines still gets
// one row with the line columns empty.
func (w *Writer) WriteOrders(orders []domain.PersistedOrder) error {
	for i := range orders {
		for _, row := range orderToRows(&orders[i]) {
			if err := w.csv.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func orderToRows(order *domain.PersistedOrder) [][]string {
	h := order.SalesOrderHeader
	prefix := []string{
		strconv.FormatInt(h.SalesOrderID, 10),
		h.SalesOrderNumber,
		formatDate(h.OrderDate),
		formatDate(h.DueDate),
		formatDate(h.ShipDate),
		formatInt(h.CustomerID),
		deref(h.AccountNumber),
		deref(h.PurchaseOrderNumber),
		formatMoney(h.SubTotal),
		formatMoney(h.TaxAmt),
		formatMoney(h.Freight),
		formatMoney(h.TotalDue),
	}

	if len(order.SalesOrderDetail) == 0 {
		row := make([]string, len(columns))
		copy(row, prefix)
		return [][]string{row}
	}

	rows := make([][]string, 0, len(order.SalesOrderDetail))
	for _, d := range order.SalesOrderDetail {
		row := make([]string, len(columns))
		copy(row, prefix)
		row[headerColumnCount] = strconv.FormatInt(d.SalesOrderDetailID, 10)
		row[headerColumnCount+1] = d.ProductNumber
		row[headerColumnCount+2] = deref(d.Name)
		row[headerColumnCount+3] = strconv.FormatInt(d.OrderQty, 10)
		row[headerColumnCount+4] = formatMoney(d.UnitPrice)
		row[headerColumnCount+5] = strconv.FormatFloat(d.UnitPriceDiscount, 'f', -1, 64)
		row[headerColumnCount+6] = formatMoney(d.LineTotal)
		rows = append(rows, row)
	}
	return rows
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// BuildFilename returns the Content-Disposition filename for an export.
// Format: sales_orders_{YYYY-MM-DD}.csv
func BuildFilename(now time.Time) string {
	return fmt.Sprintf("sales_orders_%s.csv", now.Format("2006-01-02"))
}
