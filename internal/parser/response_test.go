package parser_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderscan/internal/domain"
	"orderscan/internal/parser"
)

const sampleOrderJSON = `{
  "SalesOrderHeader": {"SalesOrderNumber": "SO43659", "OrderDate": "2024-08-05", "SubTotal": 100.5, "TaxAmt": 8, "Freight": 2.5, "TotalDue": 111},
  "SalesOrderDetail": [{"ProductNumber": "BK-M82S-44", "OrderQty": 2, "UnitPrice": 50.25}],
  "CustomerName": "  Jon Yang ",
  "BillingAddress": {"City": "Seattle"},
  "ShippingAddress": "same as billing"
}`

func TestParseResponse_FencedBlock(t *testing.T) {
	raw := "Here is the data you asked for:\n```json\n" + sampleOrderJSON + "\n```\nLet me know if you need more."

	order, err := parser.ParseResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, "SO43659", order.SalesOrderHeader["SalesOrderNumber"])
	assert.Equal(t, json.Number("100.5"), order.SalesOrderHeader["SubTotal"])
	require.Len(t, order.SalesOrderDetail, 1)
	assert.Equal(t, "BK-M82S-44", order.SalesOrderDetail[0]["ProductNumber"])
	assert.Equal(t, json.Number("2"), order.SalesOrderDetail[0]["OrderQty"])
	assert.Equal(t, "Jon Yang", order.CustomerName)
	assert.Equal(t, map[string]any{"City": "Seattle"}, order.BillingAddress)
	assert.Equal(t, "same as billing", order.ShippingAddress)
}

func TestParseResponse_BareObject(t *testing.T) {
	order, err := parser.ParseResponse("\n  " + sampleOrderJSON + "  \n")
	require.NoError(t, err)
	assert.Equal(t, "SO43659", order.SalesOrderHeader["SalesOrderNumber"])
}

func TestParseResponse_FirstFenceWins(t *testing.T) {
	raw := "```json\n{\"SalesOrderHeader\": {\"SalesOrderNumber\": \"A\"}}\n```\n" +
		"```json\n{\"SalesOrderHeader\": {\"SalesOrderNumber\": \"B\"}}\n```"

	order, err := parser.ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "A", order.SalesOrderHeader["SalesOrderNumber"])
}

func TestParseResponse_MissingSectionsAreEmpty(t *testing.T) {
	order, err := parser.ParseResponse(`{"CustomerName": "Jon Yang"}`)
	require.NoError(t, err)
	assert.Empty(t, order.SalesOrderHeader)
	assert.Empty(t, order.SalesOrderDetail)
}

func TestParseResponse_WrongSectionTypesAreDropped(t *testing.T) {
	order, err := parser.ParseResponse(`{"SalesOrderHeader": [1, 2], "SalesOrderDetail": [{"OrderQty": 1}, "junk", 3]}`)
	require.NoError(t, err)
	assert.Empty(t, order.SalesOrderHeader)
	require.Len(t, order.SalesOrderDetail, 1)
	assert.Equal(t, json.Number("1"), order.SalesOrderDetail[0]["OrderQty"])
}

func TestParseResponse_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose", "I could not read this invoice."},
		{"unterminated fence", "```json\n{\"a\": 1}"},
		{"empty fence", "```json\n   \n```"},
		{"malformed json", "```json\n{\"SalesOrderHeader\": {\n```"},
		{"array payload", "[1, 2, 3]"},
		{"trailing data", `{"a": 1} {"b": 2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseResponse(tt.raw)
			require.Error(t, err)

			var perr *parser.ParseError
			assert.True(t, errors.As(err, &perr))
			assert.ErrorIs(t, err, domain.ErrExtractionFailed)
		})
	}
}

func TestParseError_TruncatesRaw(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	_, err := parser.ParseResponse(string(long))
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 700)
	assert.Contains(t, err.Error(), "...")
}

func TestBuildSalesOrderPrompt_IncludesSchema(t *testing.T) {
	prompt := parser.BuildSalesOrderPrompt(parser.SalesOrderSchema)
	assert.Contains(t, prompt, "SalesOrderHeader")
	assert.Contains(t, prompt, "CustomerName")
	assert.Contains(t, prompt, "SalesOrderNumber TEXT UNIQUE NOT NULL")
}
