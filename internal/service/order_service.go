package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"orderscan/internal/domain"
	"orderscan/internal/metrics"
	"orderscan/internal/parser"
	"orderscan/internal/port"
	"orderscan/internal/salesorder"
)

const (
	// testOrderPrefix and testOrderFloor drive order renumbering in test mode so
	// repeated fixture uploads never collide with each other or with seeded data.
	testOrderPrefix = "SO"
	testOrderFloor  = 75123
)

// UpdateOrderInput is the DTO for replacing an order's details and patching its header.
type UpdateOrderInput struct {
	SalesOrderID int64
	Header       map[string]any   // nil = no header change
	Details      []map[string]any // full replacement set; empty deletes every line
}

// OrderService defines the sales order lifecycle contract.
type OrderService interface {
	CreateFromDocument(ctx context.Context, input *port.ExtractInput) (*domain.PersistedOrder, error)
	CreateFromResponse(ctx context.Context, rawText string) (*domain.PersistedOrder, error)
	Update(ctx context.Context, input *UpdateOrderInput) (*domain.PersistedOrder, error)
	Delete(ctx context.Context, salesOrderID int64) error
	Get(ctx context.Context, salesOrderID int64) (*domain.PersistedOrder, error)
	List(ctx context.Context, offset, limit int) ([]domain.PersistedOrder, int, error)
}

type orderService struct {
	store     port.OrderStore
	extractor port.DocumentExtractor
	testMode  func() bool
	metrics   *metrics.Registry
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService implementation. testMode is consulted
// once per create.
func NewOrderService(
	store port.OrderStore,
	extractor port.DocumentExtractor,
	testMode func() bool,
	registry *metrics.Registry,
	logger *zap.Logger,
) OrderService {
	if testMode == nil {
		testMode = func() bool { return false }
	}
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &orderService{
		store:     store,
		extractor: extractor,
		testMode:  testMode,
		metrics:   registry,
		logger:    logger.Named("order_service"),
	}
}

func (s *orderService) CreateFromDocument(ctx context.Context, input *port.ExtractInput) (*domain.PersistedOrder, error) {
	in := *input
	if in.Prompt == "" {
		in.Prompt = parser.BuildSalesOrderPrompt(parser.SalesOrderSchema)
	}

	start := time.Now()
	output, err := s.extractor.Extract(ctx, in)
	s.metrics.ExtractLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		s.fail("extract")
		s.logger.Error("document extraction failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrExtractionFailed, err)
	}
	s.logger.Debug("document extracted",
		zap.String("model", output.ModelUsed),
		zap.Int("response_bytes", len(output.RawText)))

	return s.CreateFromResponse(ctx, output.RawText)
}

// CreateFromResponse runs the reconciliation pipeline over a raw model response.
// Nothing is visible to other transactions unless every step succeeds.
func (s *orderService) CreateFromResponse(ctx context.Context, rawText string) (*domain.PersistedOrder, error) {
	extracted, err := parser.ParseResponse(rawText)
	if err != nil {
		s.fail("parse")
		s.logger.Error("model response could not be parsed", zap.Error(err))
		return nil, err
	}
	if err := salesorder.RequireSections(extracted); err != nil {
		s.fail("build")
		return nil, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		s.fail("persist")
		return nil, persistError("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if s.testMode() {
		high, err := tx.MaxOrderNumberSuffix(ctx, testOrderPrefix)
		if err != nil {
			s.fail("persist")
			return nil, persistError("renumber", err)
		}
		number := fmt.Sprintf("%s%d", testOrderPrefix, max(high, testOrderFloor)+1)
		s.logger.Info("test mode: overriding SalesOrderNumber", zap.String("sales_order_number", number))
		extracted = extracted.WithOrderNumber(number)
	}

	number, err := salesorder.OrderNumber(extracted)
	if err != nil {
		s.fail("build")
		return nil, err
	}
	log := s.logger.With(zap.String("sales_order_number", number))

	exists, err := tx.OrderNumberExists(ctx, number)
	if err != nil {
		s.fail("persist")
		return nil, persistError("uniqueness check", err)
	}
	if exists {
		s.fail("duplicate")
		log.Info("rejecting duplicate sales order number")
		return nil, &domain.DuplicateOrderError{SalesOrderNumber: number}
	}

	resolver := salesorder.NewResolver(tx)
	customerID, err := resolver.ResolveCustomer(ctx, extracted.CustomerName)
	if err != nil {
		s.fail("resolve")
		return nil, persistError("resolve customer", err)
	}

	draft, err := salesorder.Build(ctx, extracted, customerID, resolver)
	if err != nil {
		var buildErr *salesorder.BuildError
		if errors.As(err, &buildErr) {
			s.fail("build")
			return nil, err
		}
		s.fail("resolve")
		return nil, persistError("resolve products", err)
	}
	log.Debug("order drafted",
		zap.Int("extracted_lines", len(extracted.SalesOrderDetail)),
		zap.Int("kept_lines", len(draft.Details)))

	order, err := s.insertDraft(ctx, tx, draft)
	if err != nil {
		s.fail("persist")
		log.Error("inserting order failed", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.fail("persist")
		log.Error("commit failed", zap.Error(err))
		return nil, persistError("commit", err)
	}
	committed = true

	order.CustomerInfo = extracted.CustomerName
	order.BillingAddress = extracted.BillingAddress
	order.ShippingAddress = extracted.ShippingAddress

	s.metrics.OrdersCreated.Inc()
	s.recordWarnings(log, order.Warnings)
	log.Info("sales order created", zap.Int64("sales_order_id", order.SalesOrderHeader.SalesOrderID))
	return order, nil
}

func (s *orderService) insertDraft(ctx context.Context, tx port.OrderTx, draft salesorder.Draft) (*domain.PersistedOrder, error) {
	id, err := tx.InsertHeader(ctx, draft.Header)
	if err != nil {
		return nil, persistError("insert header", err)
	}
	details, err := insertDetails(ctx, tx, id, draft.Details)
	if err != nil {
		return nil, err
	}
	return &domain.PersistedOrder{
		SalesOrderHeader: domain.SalesOrderHeader{SalesOrderID: id, HeaderFields: draft.Header},
		SalesOrderDetail: details,
		Warnings:         nonNilWarnings(draft.Warnings),
	}, nil
}

func insertDetails(ctx context.Context, tx port.OrderTx, salesOrderID int64, drafts []salesorder.DetailDraft) ([]domain.HydratedDetail, error) {
	details := make([]domain.HydratedDetail, 0, len(drafts))
	for _, d := range drafts {
		detailID, err := tx.InsertDetail(ctx, salesOrderID, d.Fields)
		if err != nil {
			return nil, persistError(fmt.Sprintf("insert detail line %d", d.Line), err)
		}
		details = append(details, domain.Hydrate(domain.SalesOrderDetail{
			SalesOrderDetailID: detailID,
			SalesOrderID:       salesOrderID,
			DetailFields:       d.Fields,
		}, d.Product))
	}
	return details, nil
}

// Update patches the header and replaces every detail line in one transaction.
func (s *orderService) Update(ctx context.Context, input *UpdateOrderInput) (*domain.PersistedOrder, error) {
	log := s.logger.With(zap.Int64("sales_order_id", input.SalesOrderID))

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, persistError("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	current, err := tx.GetHeaderForUpdate(ctx, input.SalesOrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
		return nil, persistError("load header", err)
	}

	fields, warnings, err := salesorder.ApplyHeaderPatch(current.HeaderFields, input.Header)
	if err != nil {
		s.fail("validate")
		return nil, err
	}

	if fields.SalesOrderNumber != current.SalesOrderNumber {
		exists, err := tx.OrderNumberExists(ctx, fields.SalesOrderNumber)
		if err != nil {
			return nil, persistError("uniqueness check", err)
		}
		if exists {
			s.fail("duplicate")
			return nil, &domain.DuplicateOrderError{SalesOrderNumber: fields.SalesOrderNumber}
		}
	}

	// Lines are validated and resolved before anything is written.
	drafts, lineWarnings, err := salesorder.BuildReplacementDetails(ctx, input.Details, salesorder.NewResolver(tx))
	if err != nil {
		var verr *salesorder.ValidationError
		if errors.As(err, &verr) {
			s.fail("validate")
			return nil, err
		}
		return nil, persistError("resolve products", err)
	}
	warnings = append(warnings, lineWarnings...)

	header := domain.SalesOrderHeader{SalesOrderID: current.SalesOrderID, HeaderFields: fields}
	if err := tx.UpdateHeader(ctx, header); err != nil {
		s.fail("persist")
		return nil, persistError("update header", err)
	}
	removed, err := tx.DeleteDetails(ctx, header.SalesOrderID)
	if err != nil {
		s.fail("persist")
		return nil, persistError("delete details", err)
	}
	details, err := insertDetails(ctx, tx, header.SalesOrderID, drafts)
	if err != nil {
		s.fail("persist")
		log.Error("replacing details failed", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.fail("persist")
		return nil, persistError("commit", err)
	}
	committed = true

	s.metrics.OrdersUpdated.Inc()
	s.recordWarnings(log, warnings)
	log.Info("sales order updated",
		zap.Int64("details_removed", removed),
		zap.Int("details_inserted", len(details)))
	return &domain.PersistedOrder{
		SalesOrderHeader: header,
		SalesOrderDetail: details,
		Warnings:         nonNilWarnings(warnings),
	}, nil
}

// Delete removes the details and then the header. Deleting an unknown order succeeds.
func (s *orderService) Delete(ctx context.Context, salesOrderID int64) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return persistError("begin", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.DeleteDetails(ctx, salesOrderID); err != nil {
		return persistError("delete details", err)
	}
	removed, err := tx.DeleteHeader(ctx, salesOrderID)
	if err != nil {
		return persistError("delete header", err)
	}
	if err := tx.Commit(); err != nil {
		return persistError("commit", err)
	}
	committed = true

	if removed > 0 {
		s.metrics.OrdersDeleted.Inc()
	}
	s.logger.Info("sales order deleted",
		zap.Int64("sales_order_id", salesOrderID),
		zap.Bool("existed", removed > 0))
	return nil
}

func (s *orderService) Get(ctx context.Context, salesOrderID int64) (*domain.PersistedOrder, error) {
	header, err := s.store.GetHeader(ctx, salesOrderID)
	if err != nil {
		return nil, err
	}
	details, err := s.store.ListDetails(ctx, []int64{salesOrderID})
	if err != nil {
		return nil, err
	}
	return &domain.PersistedOrder{
		SalesOrderHeader: *header,
		SalesOrderDetail: details,
		Warnings:         []domain.Warning{},
	}, nil
}

func (s *orderService) List(ctx context.Context, offset, limit int) ([]domain.PersistedOrder, int, error) {
	headers, total, err := s.store.ListHeaders(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]int64, len(headers))
	for i := range headers {
		ids[i] = headers[i].SalesOrderID
	}
	details, err := s.store.ListDetails(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	byOrder := make(map[int64][]domain.HydratedDetail, len(headers))
	for i := range details {
		byOrder[details[i].SalesOrderID] = append(byOrder[details[i].SalesOrderID], details[i])
	}
	orders := make([]domain.PersistedOrder, len(headers))
	for i := range headers {
		lines := byOrder[headers[i].SalesOrderID]
		if lines == nil {
			lines = []domain.HydratedDetail{}
		}
		orders[i] = domain.PersistedOrder{
			SalesOrderHeader: headers[i],
			SalesOrderDetail: lines,
			Warnings:         []domain.Warning{},
		}
	}
	return orders, total, nil
}

func (s *orderService) fail(stage string) {
	s.metrics.PipelineFailed.WithLabelValues(stage).Inc()
}

func (s *orderService) recordWarnings(log *zap.Logger, warnings []domain.Warning) {
	for _, w := range warnings {
		s.metrics.Warnings.WithLabelValues(w.Code).Inc()
		fields := []zap.Field{zap.String("code", w.Code), zap.String("field", w.Field), zap.String("message", w.Message)}
		if w.Line != nil {
			fields = append(fields, zap.Int("line", *w.Line))
		}
		log.Info("order warning", fields...)
	}
}

// persistError keeps domain conflicts and validation failures intact and
// classifies everything else as a persistence failure.
func persistError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicateOrderNumber),
		errors.Is(err, domain.ErrInvalidField),
		errors.Is(err, domain.ErrOrderNotFound):
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistFailed, op, err)
}

func nonNilWarnings(w []domain.Warning) []domain.Warning {
	if w == nil {
		return []domain.Warning{}
	}
	return w
}
