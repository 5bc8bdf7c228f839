package salesorder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orderscan/internal/domain"
	"orderscan/internal/port"
)

// Resolver maps free-text identifiers from an extraction onto catalog keys.
type Resolver struct {
	catalog port.CatalogReader
}

// NewResolver creates a Resolver that reads through the given catalog.
func NewResolver(catalog port.CatalogReader) *Resolver {
	return &Resolver{catalog: catalog}
}

// SplitName returns the first and last whitespace-separated tokens of a full name.
// A single token yields an empty last name.
func SplitName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}

// ResolveCustomer returns the CustomerID for a "First Last" name, or nil when no
// individual customer or linked customer record matches.
func (r *Resolver) ResolveCustomer(ctx context.Context, fullName string) (*int64, error) {
	first, last := SplitName(fullName)
	if first == "" {
		return nil, nil
	}

	person, err := r.catalog.FindIndividualCustomerByName(ctx, first, last)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving customer %q: %w", fullName, err)
	}

	customer, err := r.catalog.FindCustomerByPersonID(ctx, person.BusinessEntityID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving customer %q: %w", fullName, err)
	}
	id := customer.CustomerID
	return &id, nil
}

// ResolveProduct returns the product with the exact product number, or nil when none exists.
func (r *Resolver) ResolveProduct(ctx context.Context, productNumber string) (*domain.Product, error) {
	productNumber = strings.TrimSpace(productNumber)
	if productNumber == "" {
		return nil, nil
	}
	product, err := r.catalog.FindProductByNumber(ctx, productNumber)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving product %q: %w", productNumber, err)
	}
	return product, nil
}
