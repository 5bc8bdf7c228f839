package salesorder

import (
	"errors"
	"fmt"

	"orderscan/internal/domain"
)

// displayKeys arrive on lines from a hydrated response or from the extraction and are
// never persisted on the detail row.
var displayKeys = map[string]bool{
	"ProductNumber":      true,
	"ProductID":          true,
	"SalesOrderID":       true,
	"SalesOrderDetailID": true,
	"Name":               true,
	"Color":              true,
	"Size":               true,
	"ListPrice":          true,
}

var detailKeys = map[string]bool{
	"OrderQty":              true,
	"UnitPrice":             true,
	"UnitPriceDiscount":     true,
	"LineTotal":             true,
	"CarrierTrackingNumber": true,
	"SpecialOfferID":        true,
}

// buildDetailFields maps one line onto its columns. ProductID is left for the caller.
func buildDetailFields(line map[string]any, idx int, p policy) (domain.DetailFields, []domain.Warning, error) {
	var (
		fields   domain.DetailFields
		warnings []domain.Warning
	)
	invalid := func(field string, err error) error {
		return &ValidationError{Field: field, Line: &idx, Err: fmt.Errorf("%w: %v", domain.ErrInvalidField, err)}
	}
	// soft reports an invalid optional value: fatal on update, a warning on create.
	soft := func(field string, err error) error {
		if p == policyUpdate {
			return invalid(field, err)
		}
		warnings = append(warnings, domain.Warning{Code: domain.WarnFieldIgnored, Field: field, Line: &idx, Message: err.Error()})
		return nil
	}

	for _, key := range []string{"OrderQty", "UnitPrice"} {
		if isAbsent(line[key]) {
			return fields, nil, &ValidationError{Field: key, Line: &idx, Err: domain.ErrMissingRequiredField}
		}
	}

	qty, err := toInt(line["OrderQty"])
	if err != nil {
		return fields, nil, invalid("OrderQty", err)
	}
	if qty <= 0 {
		return fields, nil, invalid("OrderQty", errors.New("must be positive"))
	}
	fields.OrderQty = qty

	if fields.UnitPrice, err = toFloat(line["UnitPrice"]); err != nil {
		return fields, nil, invalid("UnitPrice", err)
	}

	if d, err := optFloat(line["UnitPriceDiscount"]); err != nil {
		if err := soft("UnitPriceDiscount", err); err != nil {
			return fields, nil, err
		}
	} else if d != nil {
		fields.UnitPriceDiscount = *d
	}

	if fields.CarrierTrackingNumber, err = optString(line["CarrierTrackingNumber"]); err != nil {
		if err := soft("CarrierTrackingNumber", err); err != nil {
			return fields, nil, err
		}
	}
	if fields.SpecialOfferID, err = optInt(line["SpecialOfferID"]); err != nil {
		if err := soft("SpecialOfferID", err); err != nil {
			return fields, nil, err
		}
	}

	total, err := optFloat(line["LineTotal"])
	if err != nil {
		if err := soft("LineTotal", err); err != nil {
			return fields, nil, err
		}
	}
	if total != nil {
		fields.LineTotal = *total
	} else {
		fields.LineTotal = roundCents(float64(fields.OrderQty) * fields.UnitPrice * (1 - fields.UnitPriceDiscount))
	}

	for _, key := range sortedKeys(line) {
		if !detailKeys[key] && !displayKeys[key] {
			warnings = append(warnings, domain.Warning{Code: domain.WarnFieldIgnored, Field: key, Line: &idx, Message: "field is not a detail column"})
		}
	}
	return fields, warnings, nil
}
