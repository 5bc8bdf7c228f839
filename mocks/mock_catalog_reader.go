package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"orderscan/internal/domain"
)

// MockCatalogReader is a mock implementation of port.CatalogReader.
type MockCatalogReader struct {
	mock.Mock
}

func (m *MockCatalogReader) FindIndividualCustomerByName(ctx context.Context, firstName, lastName string) (*domain.IndividualCustomer, error) {
	args := m.Called(ctx, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IndividualCustomer), args.Error(1)
}

func (m *MockCatalogReader) FindCustomerByPersonID(ctx context.Context, personID int64) (*domain.Customer, error) {
	args := m.Called(ctx, personID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCatalogReader) FindProductByNumber(ctx context.Context, productNumber string) (*domain.Product, error) {
	args := m.Called(ctx, productNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
