package salesorder

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"orderscan/internal/domain"
)

// policy selects how invalid values are treated while mapping untrusted fields.
type policy int

const (
	// policyCreate drops invalid optional values and records a warning.
	policyCreate policy = iota
	// policyUpdate rejects invalid values with a ValidationError.
	policyUpdate
)

// ValidationError reports a rejected field in an update payload.
type ValidationError struct {
	Field string
	Line  *int
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Line != nil {
		return fmt.Sprintf("SalesOrderDetail[%d].%s: %v", *e.Line, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

type headerSetter func(h *domain.HeaderFields, v any) error

// headerSetters is the allow-list of header fields accepted from outside the store.
// SalesOrderID and CustomerID are owned by the system and never appear here.
var headerSetters = map[string]headerSetter{
	"RevisionNumber":         func(h *domain.HeaderFields, v any) (err error) { h.RevisionNumber, err = optInt(v); return },
	"Status":                 func(h *domain.HeaderFields, v any) (err error) { h.Status, err = optInt(v); return },
	"OnlineOrderFlag":        func(h *domain.HeaderFields, v any) (err error) { h.OnlineOrderFlag, err = optBool(v); return },
	"SalesOrderNumber":       setSalesOrderNumber,
	"PurchaseOrderNumber":    func(h *domain.HeaderFields, v any) (err error) { h.PurchaseOrderNumber, err = optString(v); return },
	"AccountNumber":          func(h *domain.HeaderFields, v any) (err error) { h.AccountNumber, err = optString(v); return },
	"SalesPersonID":          func(h *domain.HeaderFields, v any) (err error) { h.SalesPersonID, err = optInt(v); return },
	"TerritoryID":            func(h *domain.HeaderFields, v any) (err error) { h.TerritoryID, err = optInt(v); return },
	"BillToAddressID":        func(h *domain.HeaderFields, v any) (err error) { h.BillToAddressID, err = optInt(v); return },
	"ShipToAddressID":        func(h *domain.HeaderFields, v any) (err error) { h.ShipToAddressID, err = optInt(v); return },
	"ShipMethodID":           func(h *domain.HeaderFields, v any) (err error) { h.ShipMethodID, err = optInt(v); return },
	"CreditCardID":           func(h *domain.HeaderFields, v any) (err error) { h.CreditCardID, err = optInt(v); return },
	"CreditCardApprovalCode": func(h *domain.HeaderFields, v any) (err error) { h.CreditCardApprovalCode, err = optString(v); return },
	"CurrencyRateID":         func(h *domain.HeaderFields, v any) (err error) { h.CurrencyRateID, err = optInt(v); return },
	"SubTotal":               func(h *domain.HeaderFields, v any) error { return setMoney(&h.SubTotal, v) },
	"TaxAmt":                 func(h *domain.HeaderFields, v any) error { return setMoney(&h.TaxAmt, v) },
	"Freight":                func(h *domain.HeaderFields, v any) error { return setMoney(&h.Freight, v) },
	"TotalDue":               func(h *domain.HeaderFields, v any) error { return setMoney(&h.TotalDue, v) },
}

// dateSetters are applied through the date normalizer rather than plain coercion.
var dateSetters = map[string]func(h *domain.HeaderFields, t *time.Time){
	FieldOrderDate: func(h *domain.HeaderFields, t *time.Time) { h.OrderDate = t },
	FieldDueDate:   func(h *domain.HeaderFields, t *time.Time) { h.DueDate = t },
	FieldShipDate:  func(h *domain.HeaderFields, t *time.Time) { h.ShipDate = t },
}

// editorSetters are accepted from the order editor only. On create the customer
// link comes from name resolution.
var editorSetters = map[string]headerSetter{
	"CustomerID": func(h *domain.HeaderFields, v any) (err error) { h.CustomerID, err = optInt(v); return },
}

// silentHeaderKeys are dropped without a warning.
var silentHeaderKeys = map[string]bool{
	"SalesOrderID": true,
	"CustomerID":   true,
}

var errRequired = errors.New("value is required")

func setSalesOrderNumber(h *domain.HeaderFields, v any) error {
	s, err := optString(v)
	if err != nil {
		return err
	}
	if s == nil || *s == "" {
		return errRequired
	}
	h.SalesOrderNumber = *s
	return nil
}

func setMoney(dst *float64, v any) error {
	if isAbsent(v) {
		return errRequired
	}
	f, err := toFloat(v)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

// ApplyHeaderPatch returns a copy of current with every allow-listed key of patch applied.
// Keys outside the allow-list are reported as FIELD_IGNORED warnings. An unparseable
// OrderDate or an invalid value for any other field is a ValidationError.
func ApplyHeaderPatch(current domain.HeaderFields, patch map[string]any) (domain.HeaderFields, []domain.Warning, error) {
	return applyHeader(current, patch, policyUpdate)
}

func applyHeader(current domain.HeaderFields, fields map[string]any, p policy) (domain.HeaderFields, []domain.Warning, error) {
	next := current
	var warnings []domain.Warning

	for _, key := range sortedKeys(fields) {
		raw := fields[key]

		if set, ok := dateSetters[key]; ok {
			t, err := normalizeHeaderDate(key, raw, p)
			if err != nil {
				return current, nil, err
			}
			if t == nil && !isAbsent(raw) {
				warnings = append(warnings, domain.Warning{
					Code:    domain.WarnDateUnparseable,
					Field:   key,
					Message: fmt.Sprintf("could not parse %v; stored as null", raw),
				})
			}
			set(&next, t)
			continue
		}

		set, ok := headerSetters[key]
		if !ok && p == policyUpdate {
			set, ok = editorSetters[key]
		}
		if !ok {
			if !silentHeaderKeys[key] {
				warnings = append(warnings, domain.Warning{
					Code:    domain.WarnFieldIgnored,
					Field:   key,
					Message: "field is not updatable",
				})
			}
			continue
		}

		if err := set(&next, raw); err != nil {
			if errors.Is(err, errRequired) {
				return current, nil, &ValidationError{Field: key, Err: domain.ErrMissingRequiredField}
			}
			if p == policyUpdate || isRequiredHeaderKey(key) {
				return current, nil, &ValidationError{Field: key, Err: fmt.Errorf("%w: %v", domain.ErrInvalidField, err)}
			}
			warnings = append(warnings, domain.Warning{
				Code:    domain.WarnFieldIgnored,
				Field:   key,
				Message: err.Error(),
			})
		}
	}
	return next, warnings, nil
}

func isRequiredHeaderKey(key string) bool {
	for _, k := range requiredHeaderKeys {
		if k == key {
			return true
		}
	}
	return false
}

func normalizeHeaderDate(field string, raw any, p policy) (*time.Time, error) {
	if p == policyCreate {
		t, _ := NormalizeDateLenient(raw)
		return t, nil
	}
	return NormalizeDate(field, raw)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
