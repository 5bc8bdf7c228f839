package salesorder

import (
	"fmt"
	"strings"
	"time"

	"orderscan/internal/domain"
)

const (
	// layoutLongForm matches dates echoed back by a previous JSON round-trip,
	// e.g. "Mon, 05 Aug 2024 00:00:00 GMT".
	layoutLongForm      = "Mon, 02 Jan 2006 15:04:05 MST"
	layoutLongFormShort = "Mon, 2 Jan 2006 15:04:05 MST"
	layoutDate          = "2006-01-02"
	layoutDateLoose     = "2006-1-2"
)

// Header date fields handled by the normalizer.
const (
	FieldOrderDate = "OrderDate"
	FieldDueDate   = "DueDate"
	FieldShipDate  = "ShipDate"
)

// nonNullableDates lists the date fields whose update must never be silently nulled.
var nonNullableDates = map[string]bool{
	FieldOrderDate: true,
}

// DateError reports an unparseable value for a non-nullable date field.
type DateError struct {
	Field string
	Value any
}

func (e *DateError) Error() string {
	return fmt.Sprintf("Invalid date format for '%s'. Please use YYYY-MM-DD.", e.Field)
}

func (e *DateError) Is(target error) bool {
	return target == domain.ErrInvalidDate
}

// ParseDate converts a raw value into a calendar date at midnight UTC.
// It reports false when the value matches none of the supported representations.
func ParseDate(raw any) (*time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return &v, true
	case *time.Time:
		if v == nil {
			return nil, false
		}
		return v, true
	case string:
		return parseDateString(v)
	default:
		return nil, false
	}
}

func parseDateString(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	for _, layout := range []string{layoutLongForm, layoutLongFormShort} {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDate(t), true
		}
	}
	datePart := s
	if i := strings.IndexAny(s, "T "); i > 0 {
		datePart = s[:i]
	}
	for _, layout := range []string{layoutDate, layoutDateLoose} {
		if t, err := time.Parse(layout, datePart); err == nil {
			return calendarDate(t), true
		}
	}
	return nil, false
}

func calendarDate(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// NormalizeDate applies the update-path policy: an unparseable value on a
// non-nullable field is a DateError; on a nullable field it becomes null.
func NormalizeDate(field string, raw any) (*time.Time, error) {
	if isAbsent(raw) && !nonNullableDates[field] {
		return nil, nil
	}
	if t, ok := ParseDate(raw); ok {
		return t, nil
	}
	if nonNullableDates[field] {
		return nil, &DateError{Field: field, Value: raw}
	}
	return nil, nil
}

// NormalizeDateLenient applies the create-path policy: any unparseable value
// becomes null. The second result is false when a non-null value was discarded.
func NormalizeDateLenient(raw any) (*time.Time, bool) {
	if isAbsent(raw) {
		return nil, true
	}
	return ParseDate(raw)
}
