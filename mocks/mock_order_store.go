package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"orderscan/internal/domain"
	"orderscan/internal/port"
)

// MockOrderStore is a mock implementation of port.OrderStore.
type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) Begin(ctx context.Context) (port.OrderTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.OrderTx), args.Error(1)
}

func (m *MockOrderStore) GetHeader(ctx context.Context, salesOrderID int64) (*domain.SalesOrderHeader, error) {
	args := m.Called(ctx, salesOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesOrderHeader), args.Error(1)
}

func (m *MockOrderStore) ListHeaders(ctx context.Context, offset, limit int) ([]domain.SalesOrderHeader, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.SalesOrderHeader), args.Int(1), args.Error(2)
}

func (m *MockOrderStore) ListDetails(ctx context.Context, salesOrderIDs []int64) ([]domain.HydratedDetail, error) {
	args := m.Called(ctx, salesOrderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HydratedDetail), args.Error(1)
}

// MockOrderTx is a mock implementation of port.OrderTx.
type MockOrderTx struct {
	MockCatalogReader
}

func (m *MockOrderTx) OrderNumberExists(ctx context.Context, salesOrderNumber string) (bool, error) {
	args := m.Called(ctx, salesOrderNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderTx) MaxOrderNumberSuffix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderTx) InsertHeader(ctx context.Context, header domain.HeaderFields) (int64, error) {
	args := m.Called(ctx, header)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderTx) InsertDetail(ctx context.Context, salesOrderID int64, detail domain.DetailFields) (int64, error) {
	args := m.Called(ctx, salesOrderID, detail)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderTx) GetHeaderForUpdate(ctx context.Context, salesOrderID int64) (*domain.SalesOrderHeader, error) {
	args := m.Called(ctx, salesOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesOrderHeader), args.Error(1)
}

func (m *MockOrderTx) UpdateHeader(ctx context.Context, header domain.SalesOrderHeader) error {
	args := m.Called(ctx, header)
	return args.Error(0)
}

func (m *MockOrderTx) DeleteDetails(ctx context.Context, salesOrderID int64) (int64, error) {
	args := m.Called(ctx, salesOrderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderTx) DeleteHeader(ctx context.Context, salesOrderID int64) (int64, error) {
	args := m.Called(ctx, salesOrderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockOrderTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}
