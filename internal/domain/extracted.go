package domain

// ExtractedOrder is the untrusted record decoded from a model response.
// Sections may be missing or hold values of unexpected types.
type ExtractedOrder struct {
	SalesOrderHeader map[string]any
	SalesOrderDetail []map[string]any
	CustomerName     string
	BillingAddress   any
	ShippingAddress  any
}

// WithOrderNumber returns a copy of the order whose header carries the given number.
func (e ExtractedOrder) WithOrderNumber(number string) ExtractedOrder {
	header := make(map[string]any, len(e.SalesOrderHeader)+1)
	for k, v := range e.SalesOrderHeader {
		header[k] = v
	}
	header["SalesOrderNumber"] = number
	e.SalesOrderHeader = header
	return e
}
