package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"orderscan/internal/domain"
	"orderscan/internal/port"
	"orderscan/internal/service"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateFromDocument(ctx context.Context, input *port.ExtractInput) (*domain.PersistedOrder, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PersistedOrder), args.Error(1)
}

func (m *MockOrderService) CreateFromResponse(ctx context.Context, rawText string) (*domain.PersistedOrder, error) {
	args := m.Called(ctx, rawText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PersistedOrder), args.Error(1)
}

func (m *MockOrderService) Update(ctx context.Context, input *service.UpdateOrderInput) (*domain.PersistedOrder, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PersistedOrder), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, salesOrderID int64) error {
	args := m.Called(ctx, salesOrderID)
	return args.Error(0)
}

func (m *MockOrderService) Get(ctx context.Context, salesOrderID int64) (*domain.PersistedOrder, error) {
	args := m.Called(ctx, salesOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PersistedOrder), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, offset, limit int) ([]domain.PersistedOrder, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PersistedOrder), args.Int(1), args.Error(2)
}

// MockUploadService is a mock implementation of service.UploadService.
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Process(ctx context.Context, input service.InvoiceUploadInput) (*domain.PersistedOrder, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PersistedOrder), args.Error(1)
}
