package salesorder_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderscan/internal/domain"
	"orderscan/internal/salesorder"
)

func extractedOrder() domain.ExtractedOrder {
	return domain.ExtractedOrder{
		SalesOrderHeader: map[string]any{
			"SalesOrderNumber": "SO99999",
			"OrderDate":        "2024-01-05",
			"DueDate":          "2024-01-17",
			"AccountNumber":    "10-4030-018759",
			"SubTotal":         json.Number("3578.27"),
			"TaxAmt":           json.Number("286.26"),
			"Freight":          json.Number("89.46"),
			"TotalDue":         json.Number("3953.99"),
		},
		SalesOrderDetail: []map[string]any{
			{"ProductNumber": "BK-M82S-44", "OrderQty": json.Number("1"), "UnitPrice": json.Number("3399.99"), "LineTotal": json.Number("3399.99")},
			{"ProductNumber": "XX-UNKNOWN", "OrderQty": json.Number("2"), "UnitPrice": json.Number("89.14")},
		},
		CustomerName: "Jon Yang",
	}
}

func TestBuild_DropsUnresolvedLineAndKeepsExtractedTotals(t *testing.T) {
	customerID := int64(29485)

	draft, err := salesorder.Build(context.Background(), extractedOrder(), &customerID, catalog())

	require.NoError(t, err)
	require.Len(t, draft.Details, 1)
	assert.Equal(t, int64(771), draft.Details[0].Fields.ProductID)
	assert.Equal(t, "BK-M82S-44", draft.Details[0].Product.ProductNumber)
	assert.Equal(t, 0, draft.Details[0].Line)
	assert.Equal(t, 3399.99, draft.Details[0].Fields.LineTotal)

	assert.Equal(t, "SO99999", draft.Header.SalesOrderNumber)
	assert.Equal(t, 3578.27, draft.Header.SubTotal)
	assert.Equal(t, 3953.99, draft.Header.TotalDue)
	assert.True(t, datePtr(2024, time.January, 5).Equal(*draft.Header.OrderDate))
	assert.Equal(t, &customerID, draft.Header.CustomerID)

	require.Len(t, draft.Warnings, 1)
	w := draft.Warnings[0]
	assert.Equal(t, domain.WarnProductUnresolved, w.Code)
	require.NotNil(t, w.Line)
	assert.Equal(t, 1, *w.Line)
	assert.Contains(t, w.Message, "XX-UNKNOWN")
}

func TestBuild_UnresolvedCustomerIsNotFatal(t *testing.T) {
	e := extractedOrder()
	e.CustomerName = "Jordan Lee"

	draft, err := salesorder.Build(context.Background(), e, nil, catalog())

	require.NoError(t, err)
	assert.Nil(t, draft.Header.CustomerID)
	assert.Contains(t, warningCodes(draft.Warnings), domain.WarnCustomerUnresolved)
	for _, w := range draft.Warnings {
		if w.Code == domain.WarnCustomerUnresolved {
			assert.Contains(t, w.Message, "Jordan Lee")
		}
	}
}

func TestBuild_IgnoresSuppliedIdentities(t *testing.T) {
	e := extractedOrder()
	e.SalesOrderHeader["SalesOrderID"] = json.Number("43659")
	e.SalesOrderHeader["CustomerID"] = json.Number("1")
	customerID := int64(29485)

	draft, err := salesorder.Build(context.Background(), e, &customerID, catalog())

	require.NoError(t, err)
	assert.Equal(t, int64(29485), *draft.Header.CustomerID)
	assert.NotContains(t, warningCodes(draft.Warnings), domain.WarnFieldIgnored)
}

func TestBuild_MissingSections(t *testing.T) {
	for name, e := range map[string]domain.ExtractedOrder{
		"no header":  {SalesOrderDetail: []map[string]any{{"ProductNumber": "HL-U509"}}},
		"no details": {SalesOrderHeader: map[string]any{"SalesOrderNumber": "SO1"}},
		"empty":      {},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := salesorder.Build(context.Background(), e, nil, catalog())
			assert.ErrorIs(t, err, domain.ErrMissingSections)

			var berr *salesorder.BuildError
			assert.True(t, errors.As(err, &berr))
		})
	}
}

func TestBuild_MissingRequiredHeaderField(t *testing.T) {
	for _, key := range []string{"SalesOrderNumber", "SubTotal", "TaxAmt", "Freight", "TotalDue"} {
		t.Run(key, func(t *testing.T) {
			e := extractedOrder()
			delete(e.SalesOrderHeader, key)

			_, err := salesorder.Build(context.Background(), e, nil, catalog())

			assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
			var berr *salesorder.BuildError
			require.True(t, errors.As(err, &berr))
			assert.Equal(t, key, berr.Field)
		})
	}
}

func TestBuild_UnparseableDatesBecomeNull(t *testing.T) {
	e := extractedOrder()
	e.SalesOrderHeader["OrderDate"] = "fifth of January"
	e.SalesOrderHeader["ShipDate"] = "soon"

	draft, err := salesorder.Build(context.Background(), e, nil, catalog())

	require.NoError(t, err)
	assert.Nil(t, draft.Header.OrderDate)
	assert.Nil(t, draft.Header.ShipDate)

	var fields []string
	for _, w := range draft.Warnings {
		if w.Code == domain.WarnDateUnparseable {
			fields = append(fields, w.Field)
		}
	}
	assert.ElementsMatch(t, []string{"OrderDate", "ShipDate"}, fields)
}

func TestBuild_InvalidOptionalHeaderValueIsDropped(t *testing.T) {
	e := extractedOrder()
	e.SalesOrderHeader["Status"] = "shipped"
	e.SalesOrderHeader["Notes"] = "leave at door"

	draft, err := salesorder.Build(context.Background(), e, nil, catalog())

	require.NoError(t, err)
	assert.Nil(t, draft.Header.Status)

	ignored := map[string]bool{}
	for _, w := range draft.Warnings {
		if w.Code == domain.WarnFieldIgnored {
			ignored[w.Field] = true
		}
	}
	assert.True(t, ignored["Status"])
	assert.True(t, ignored["Notes"])
}

func TestBuild_CoercesFormattedMoney(t *testing.T) {
	e := extractedOrder()
	e.SalesOrderHeader["SubTotal"] = "$1,234.50"
	e.SalesOrderHeader["TaxAmt"] = 98.76
	e.SalesOrderHeader["Freight"] = "0"

	draft, err := salesorder.Build(context.Background(), e, nil, catalog())

	require.NoError(t, err)
	assert.Equal(t, 1234.5, draft.Header.SubTotal)
	assert.Equal(t, 98.76, draft.Header.TaxAmt)
	assert.Equal(t, 0.0, draft.Header.Freight)
}

func TestBuild_InvalidMoneyIsFatal(t *testing.T) {
	e := extractedOrder()
	e.SalesOrderHeader["TotalDue"] = "a lot"

	_, err := salesorder.Build(context.Background(), e, nil, catalog())

	assert.ErrorIs(t, err, domain.ErrInvalidField)
	var berr *salesorder.BuildError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, "TotalDue", berr.Field)
}

func TestBuild_BooleanMoneyIsFatal(t *testing.T) {
	e := extractedOrder()
	e.SalesOrderHeader["TotalDue"] = true

	_, err := salesorder.Build(context.Background(), e, nil, catalog())

	assert.ErrorIs(t, err, domain.ErrInvalidField)
	var berr *salesorder.BuildError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, "TotalDue", berr.Field)
}

func TestBuild_QtyBeyondInt64ReportsRange(t *testing.T) {
	e := extractedOrder()
	e.SalesOrderDetail = []map[string]any{
		{"ProductNumber": "HL-U509", "OrderQty": json.Number("1e19"), "UnitPrice": 10},
	}

	_, err := salesorder.Build(context.Background(), e, nil, catalog())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "integer out of range")
	assert.NotContains(t, err.Error(), "must be positive")
}

func TestBuild_DetailLineRules(t *testing.T) {
	tests := []struct {
		name    string
		line    map[string]any
		wantErr error
	}{
		{"missing qty", map[string]any{"ProductNumber": "HL-U509", "UnitPrice": 10}, domain.ErrMissingRequiredField},
		{"missing price", map[string]any{"ProductNumber": "HL-U509", "OrderQty": 1}, domain.ErrMissingRequiredField},
		{"zero qty", map[string]any{"ProductNumber": "HL-U509", "OrderQty": 0, "UnitPrice": 10}, domain.ErrInvalidField},
		{"fractional qty", map[string]any{"ProductNumber": "HL-U509", "OrderQty": 1.5, "UnitPrice": 10}, domain.ErrInvalidField},
		{"text price", map[string]any{"ProductNumber": "HL-U509", "OrderQty": 1, "UnitPrice": "ten"}, domain.ErrInvalidField},
		{"boolean price", map[string]any{"ProductNumber": "HL-U509", "OrderQty": 1, "UnitPrice": true}, domain.ErrInvalidField},
		{"qty beyond int64", map[string]any{"ProductNumber": "HL-U509", "OrderQty": json.Number("1e19"), "UnitPrice": 10}, domain.ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := extractedOrder()
			e.SalesOrderDetail = []map[string]any{tt.line}

			_, err := salesorder.Build(context.Background(), e, nil, catalog())

			assert.ErrorIs(t, err, tt.wantErr)
			var berr *salesorder.BuildError
			require.True(t, errors.As(err, &berr))
			assert.Equal(t, "SalesOrderDetail", berr.Section)
			require.NotNil(t, berr.Line)
			assert.Equal(t, 0, *berr.Line)
		})
	}
}

func TestBuild_LineWithoutProductNumberIsSkipped(t *testing.T) {
	e := extractedOrder()
	e.SalesOrderDetail = []map[string]any{
		{"OrderQty": 1, "UnitPrice": 10},
		{"ProductNumber": "HL-U509", "OrderQty": 3, "UnitPrice": 34.99, "UnitPriceDiscount": 0.1},
	}

	draft, err := salesorder.Build(context.Background(), e, nil, catalog())

	require.NoError(t, err)
	require.Len(t, draft.Details, 1)
	assert.Equal(t, 1, draft.Details[0].Line)
	assert.Equal(t, int64(3), draft.Details[0].Fields.OrderQty)
	assert.Equal(t, 94.47, draft.Details[0].Fields.LineTotal)
	assert.Contains(t, warningCodes(draft.Warnings), domain.WarnProductNumberMissing)
}

func TestBuild_AllLinesDroppedStillBuildsHeader(t *testing.T) {
	e := extractedOrder()
	e.SalesOrderDetail = []map[string]any{{"ProductNumber": "XX-1", "OrderQty": 1, "UnitPrice": 1}}

	draft, err := salesorder.Build(context.Background(), e, nil, catalog())

	require.NoError(t, err)
	assert.Empty(t, draft.Details)
	assert.Equal(t, "SO99999", draft.Header.SalesOrderNumber)
}

func TestBuild_DisplayFieldsAreStrippedSilently(t *testing.T) {
	e := extractedOrder()
	e.SalesOrderDetail = []map[string]any{{
		"ProductNumber": "HL-U509", "ProductID": 1, "Name": "Helmet", "Color": "Red", "Size": nil, "ListPrice": 34.99,
		"OrderQty": 1, "UnitPrice": 34.99, "Gift": true,
	}}

	draft, err := salesorder.Build(context.Background(), e, int64Ptr(1), catalog())

	require.NoError(t, err)
	require.Len(t, draft.Details, 1)
	assert.Equal(t, int64(707), draft.Details[0].Fields.ProductID)
	require.Len(t, draft.Warnings, 1)
	assert.Equal(t, "Gift", draft.Warnings[0].Field)
}

func TestBuild_ResolverFailureAborts(t *testing.T) {
	boom := errors.New("catalog offline")

	_, err := salesorder.Build(context.Background(), extractedOrder(), nil, failingProducts{err: boom})

	assert.ErrorIs(t, err, boom)
}

func TestOrderNumber(t *testing.T) {
	n, err := salesorder.OrderNumber(extractedOrder())
	require.NoError(t, err)
	assert.Equal(t, "SO99999", n)

	n, err = salesorder.OrderNumber(domain.ExtractedOrder{SalesOrderHeader: map[string]any{"SalesOrderNumber": json.Number("43659")}})
	require.NoError(t, err)
	assert.Equal(t, "43659", n)

	_, err = salesorder.OrderNumber(domain.ExtractedOrder{SalesOrderHeader: map[string]any{"SalesOrderNumber": "  "}})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
}

func TestBuildReplacementDetails(t *testing.T) {
	lines := []map[string]any{
		{"ProductNumber": "HL-U509", "OrderQty": json.Number("2"), "UnitPrice": json.Number("34.99"), "SalesOrderDetailID": 9},
		{"ProductNumber": "XX-1", "OrderQty": 1, "UnitPrice": 1},
		{"OrderQty": 1, "UnitPrice": 1},
	}

	drafts, warnings, err := salesorder.BuildReplacementDetails(context.Background(), lines, catalog())

	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, 69.98, drafts[0].Fields.LineTotal)
	assert.Equal(t, []string{domain.WarnProductUnresolved, domain.WarnProductNumberMissing}, warningCodes(warnings))
}

func TestBuildReplacementDetails_InvalidOptionalIsRejected(t *testing.T) {
	lines := []map[string]any{
		{"ProductNumber": "HL-U509", "OrderQty": 1, "UnitPrice": 10, "UnitPriceDiscount": "ten percent"},
	}

	_, _, err := salesorder.BuildReplacementDetails(context.Background(), lines, catalog())

	assert.ErrorIs(t, err, domain.ErrInvalidField)
	var verr *salesorder.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "UnitPriceDiscount", verr.Field)
	assert.Equal(t, "SalesOrderDetail[0].UnitPriceDiscount: invalid field value: not a number: ten percent", verr.Error())
}

func TestBuildReplacementDetails_RejectsUnrepresentableValues(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"special offer beyond int64", "SpecialOfferID", json.Number("1e20")},
		{"negative special offer beyond int64", "SpecialOfferID", json.Number("-1e20")},
		{"boolean discount", "UnitPriceDiscount", true},
		{"boolean line total", "LineTotal", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := map[string]any{"ProductNumber": "HL-U509", "OrderQty": 1, "UnitPrice": 10}
			line[tt.field] = tt.value

			drafts, _, err := salesorder.BuildReplacementDetails(context.Background(), []map[string]any{line}, catalog())

			assert.ErrorIs(t, err, domain.ErrInvalidField)
			var verr *salesorder.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Nil(t, drafts)
		})
	}
}

func TestBuildReplacementDetails_EmptySet(t *testing.T) {
	drafts, warnings, err := salesorder.BuildReplacementDetails(context.Background(), nil, catalog())
	require.NoError(t, err)
	assert.Empty(t, drafts)
	assert.Empty(t, warnings)
}
