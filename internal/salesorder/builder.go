package salesorder

import (
	"context"
	"errors"
	"fmt"

	"orderscan/internal/domain"
)

const (
	sectionHeader = "SalesOrderHeader"
	sectionDetail = "SalesOrderDetail"
)

// requiredHeaderKeys must be present in an extracted header.
var requiredHeaderKeys = []string{"SalesOrderNumber", "SubTotal", "TaxAmt", "Freight", "TotalDue"}

// BuildError reports why an extracted order cannot become a draft.
type BuildError struct {
	Section string
	Field   string
	Line    *int
	Err     error
}

func (e *BuildError) Error() string {
	switch {
	case e.Field == "":
		return fmt.Sprintf("%s: %v", e.Section, e.Err)
	case e.Line != nil:
		return fmt.Sprintf("%s[%d].%s: %v", e.Section, *e.Line, e.Field, e.Err)
	default:
		return fmt.Sprintf("%s.%s: %v", e.Section, e.Field, e.Err)
	}
}

func (e *BuildError) Unwrap() error { return e.Err }

// ProductResolver resolves a product number to a catalog product, returning nil when unknown.
type ProductResolver interface {
	ResolveProduct(ctx context.Context, productNumber string) (*domain.Product, error)
}

// DetailDraft is a validated detail line waiting for its header identity.
type DetailDraft struct {
	Line    int
	Product domain.Product
	Fields  domain.DetailFields
}

// Draft is a validated order ready to insert.
type Draft struct {
	Header   domain.HeaderFields
	Details  []DetailDraft
	Warnings []domain.Warning
}

// RequireSections checks that both the header and at least one detail line were extracted.
func RequireSections(e domain.ExtractedOrder) error {
	if len(e.SalesOrderHeader) == 0 {
		return &BuildError{Section: sectionHeader, Err: domain.ErrMissingSections}
	}
	if len(e.SalesOrderDetail) == 0 {
		return &BuildError{Section: sectionDetail, Err: domain.ErrMissingSections}
	}
	return nil
}

// OrderNumber returns the extracted SalesOrderNumber.
func OrderNumber(e domain.ExtractedOrder) (string, error) {
	s, err := optString(e.SalesOrderHeader["SalesOrderNumber"])
	if err != nil {
		return "", &BuildError{Section: sectionHeader, Field: "SalesOrderNumber", Err: fmt.Errorf("%w: %v", domain.ErrInvalidField, err)}
	}
	if s == nil || *s == "" {
		return "", &BuildError{Section: sectionHeader, Field: "SalesOrderNumber", Err: domain.ErrMissingRequiredField}
	}
	return *s, nil
}

// Build turns an extracted order into insertable drafts. The header never takes a
// SalesOrderID or CustomerID from the extraction; customerID is the resolved link.
// Lines whose product number is missing or unknown are dropped with a warning.
func Build(ctx context.Context, e domain.ExtractedOrder, customerID *int64, products ProductResolver) (Draft, error) {
	if err := RequireSections(e); err != nil {
		return Draft{}, err
	}
	for _, key := range requiredHeaderKeys {
		if isAbsent(e.SalesOrderHeader[key]) {
			return Draft{}, &BuildError{Section: sectionHeader, Field: key, Err: domain.ErrMissingRequiredField}
		}
	}

	header, warnings, err := applyHeader(domain.HeaderFields{}, e.SalesOrderHeader, policyCreate)
	if err != nil {
		return Draft{}, asBuildError(sectionHeader, err)
	}
	header.CustomerID = customerID
	if customerID == nil {
		warnings = append(warnings, customerWarning(e.CustomerName))
	}

	details, lineWarnings, err := buildDetails(ctx, e.SalesOrderDetail, products, policyCreate)
	if err != nil {
		return Draft{}, asBuildError(sectionDetail, err)
	}

	return Draft{
		Header:   header,
		Details:  details,
		Warnings: append(warnings, lineWarnings...),
	}, nil
}

// BuildReplacementDetails validates the full replacement line set of an update.
// Lines without a resolvable product number are skipped with a warning; any other
// invalid value is a ValidationError.
func BuildReplacementDetails(ctx context.Context, lines []map[string]any, products ProductResolver) ([]DetailDraft, []domain.Warning, error) {
	return buildDetails(ctx, lines, products, policyUpdate)
}

func buildDetails(ctx context.Context, lines []map[string]any, products ProductResolver, p policy) ([]DetailDraft, []domain.Warning, error) {
	drafts := make([]DetailDraft, 0, len(lines))
	var warnings []domain.Warning

	for i, line := range lines {
		idx := i
		number, err := optString(line["ProductNumber"])
		if err != nil || number == nil || *number == "" {
			warnings = append(warnings, domain.Warning{
				Code:    domain.WarnProductNumberMissing,
				Field:   "ProductNumber",
				Line:    &idx,
				Message: "line has no product number and was skipped",
			})
			continue
		}

		product, err := products.ResolveProduct(ctx, *number)
		if err != nil {
			return nil, nil, err
		}
		if product == nil {
			warnings = append(warnings, domain.Warning{
				Code:    domain.WarnProductUnresolved,
				Field:   "ProductNumber",
				Line:    &idx,
				Message: fmt.Sprintf("product %q not found; line was skipped", *number),
			})
			continue
		}

		fields, fieldWarnings, err := buildDetailFields(line, idx, p)
		if err != nil {
			return nil, nil, err
		}
		fields.ProductID = product.ProductID
		warnings = append(warnings, fieldWarnings...)
		drafts = append(drafts, DetailDraft{Line: idx, Product: *product, Fields: fields})
	}
	return drafts, warnings, nil
}

func asBuildError(section string, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return &BuildError{Section: section, Field: verr.Field, Line: verr.Line, Err: verr.Err}
	}
	return err
}

func customerWarning(name string) domain.Warning {
	msg := "no customer name was extracted"
	if name != "" {
		msg = fmt.Sprintf("no customer matches %q", name)
	}
	return domain.Warning{Code: domain.WarnCustomerUnresolved, Field: "CustomerName", Message: msg}
}
