package salesorder_test

import (
	"context"
	"time"

	"orderscan/internal/domain"
)

// productMap resolves product numbers from an in-memory catalog.
type productMap map[string]domain.Product

func (m productMap) ResolveProduct(_ context.Context, number string) (*domain.Product, error) {
	p, ok := m[number]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// failingProducts fails every lookup.
type failingProducts struct{ err error }

func (f failingProducts) ResolveProduct(context.Context, string) (*domain.Product, error) {
	return nil, f.err
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func warningCodes(ws []domain.Warning) []string {
	codes := make([]string, 0, len(ws))
	for _, w := range ws {
		codes = append(codes, w.Code)
	}
	return codes
}

func catalog() productMap {
	return productMap{
		"BK-M82S-44": {ProductID: 771, ProductNumber: "BK-M82S-44", Name: strPtr("Mountain-100 Silver, 44")},
		"HL-U509":    {ProductID: 707, ProductNumber: "HL-U509", Name: strPtr("Sport-100 Helmet, Red")},
	}
}
