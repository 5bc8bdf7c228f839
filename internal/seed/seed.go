// Package seed loads the reference catalog and historical orders from an Excel workbook.
package seed

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"orderscan/internal/salesorder"
)

var (
	spaces          = regexp.MustCompile(`\s+`)
	nonIdentifierRe = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

// SanitizeHeader strips whitespace and every character that cannot appear in a
// column identifier, so "Sales Order ID" and "SalesOrderID" map to the same column.
func SanitizeHeader(h string) string {
	return nonIdentifierRe.ReplaceAllString(spaces.ReplaceAllString(h, ""), "")
}

// SheetResult reports the outcome of loading one sheet.
type SheetResult struct {
	Sheet   string
	Table   string
	Rows    int
	Skipped []string // sheet headers with no matching column
	Err     error
}

// Seeder inserts workbook sheets into their tables, one transaction per sheet.
type Seeder struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(db *sqlx.DB, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{db: db, logger: logger.Named("seed")}
}

// Reset empties every seeded table.
func (s *Seeder) Reset(ctx context.Context) error {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[len(tables)-1-i] = t.name
	}
	if _, err := s.db.ExecContext(ctx, "TRUNCATE TABLE "+strings.Join(names, ", ")+" RESTART IDENTITY CASCADE"); err != nil {
		return fmt.Errorf("seed.Reset: %w", err)
	}
	return nil
}

// SeedWorkbook loads every known sheet present in the workbook. A failing sheet is
// rolled back and reported; the remaining sheets are still loaded.
func (s *Seeder) SeedWorkbook(ctx context.Context, f *excelize.File) []SheetResult {
	present := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		present[name] = true
	}

	var results []SheetResult
	for _, t := range tables {
		if !present[t.sheet] {
			s.logger.Warn("sheet not found in workbook", zap.String("sheet", t.sheet))
			continue
		}
		res := s.seedSheet(ctx, f, t)
		if res.Err != nil {
			s.logger.Error("could not process sheet", zap.String("sheet", t.sheet), zap.Error(res.Err))
		} else {
			s.logger.Info("sheet loaded", zap.String("sheet", t.sheet), zap.String("table", t.name), zap.Int("rows", res.Rows))
		}
		results = append(results, res)
	}
	return results
}

func (s *Seeder) seedSheet(ctx context.Context, f *excelize.File, t table) SheetResult {
	res := SheetResult{Sheet: t.sheet, Table: t.name}

	rows, err := f.GetRows(t.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		res.Err = fmt.Errorf("reading sheet: %w", err)
		return res
	}
	if len(rows) == 0 {
		return res
	}

	// Map sheet columns by position onto table columns.
	var (
		positions []int
		cols      []column
	)
	for i, h := range rows[0] {
		key := SanitizeHeader(h)
		c, ok := t.columns[key]
		if !ok {
			if key != "" {
				res.Skipped = append(res.Skipped, h)
			}
			continue
		}
		positions = append(positions, i)
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		res.Err = fmt.Errorf("no recognised columns in header row")
		return res
	}

	query := insertSQL(t.name, cols)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		res.Err = fmt.Errorf("begin: %w", err)
		return res
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for r, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		args := make([]any, len(cols))
		for i, pos := range positions {
			cell := ""
			if pos < len(row) {
				cell = row[pos]
			}
			v, err := convert(cell, cols[i].kind)
			if err != nil {
				res.Err = fmt.Errorf("row %d column %s: %w", r+2, cols[i].name, err)
				return res
			}
			args[i] = v
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			res.Err = fmt.Errorf("row %d: %w", r+2, err)
			return res
		}
		inserted++
	}

	if t.identity != "" && hasColumn(cols, t.identity) {
		// Explicit ids leave the identity sequence behind; move it past the seeded rows.
		if _, err := tx.ExecContext(ctx, resyncSQL(t.name, t.identity)); err != nil {
			res.Err = fmt.Errorf("resync identity: %w", err)
			return res
		}
	}

	if err := tx.Commit(); err != nil {
		res.Err = fmt.Errorf("commit: %w", err)
		return res
	}
	res.Rows = inserted
	return res
}

func insertSQL(tableName string, cols []column) string {
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
		marks[i] = "$" + strconv.Itoa(i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tableName, strings.Join(names, ", "), strings.Join(marks, ", "))
}

func resyncSQL(tableName, identity string) string {
	return fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE((SELECT MAX(%s) FROM %s), 0) + 1, false)",
		tableName, identity, identity, tableName)
}

func hasColumn(cols []column, name string) bool {
	for _, c := range cols {
		if c.name == name {
			return true
		}
	}
	return false
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// convert maps a raw cell onto a column value. Blank cells and the literal NULL become nil.
func convert(cell string, k kind) (any, error) {
	cell = strings.TrimSpace(cell)
	if k == kindText {
		return cell, nil
	}
	if cell == "" || strings.EqualFold(cell, "NULL") {
		return nil, nil
	}

	switch k {
	case kindString:
		return cell, nil
	case kindInt:
		f, err := cast.ToFloat64E(cell)
		if err != nil || f != math.Trunc(f) {
			return nil, fmt.Errorf("not an integer: %q", cell)
		}
		return int64(f), nil
	case kindFloat:
		f, err := cast.ToFloat64E(cell)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", cell)
		}
		return f, nil
	case kindBool:
		b, err := cast.ToBoolE(strings.ToLower(cell))
		if err != nil {
			return nil, fmt.Errorf("not a boolean: %q", cell)
		}
		return b, nil
	case kindDate:
		// Unformatted date cells arrive as Excel serial numbers.
		if serial, err := strconv.ParseFloat(cell, 64); err == nil {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return nil, fmt.Errorf("not a date: %q", cell)
			}
			return t.UTC(), nil
		}
		t, ok := salesorder.ParseDate(cell)
		if !ok {
			return nil, fmt.Errorf("not a date: %q", cell)
		}
		return *t, nil
	default:
		return nil, fmt.Errorf("unsupported column kind %d", k)
	}
}

// SheetNames returns the workbook sheets the seeder understands, in load order.
func SheetNames() []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.sheet
	}
	return names
}
