package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orderscan/internal/csvexport"
	"orderscan/internal/domain"
	"orderscan/internal/middleware"
	"orderscan/internal/service"
)

const (
	// multipartOverhead is allowed on top of the file size limit for form boundaries and headers.
	multipartOverhead = 1 << 20
	exportBatchSize   = 100
)

// OrderHandler handles sales order endpoints.
type OrderHandler struct {
	uploads  service.UploadService
	orders   service.OrderService
	maxBytes int64
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(uploads service.UploadService, orders service.OrderService, maxFileSizeMB int64) *OrderHandler {
	return &OrderHandler{uploads: uploads, orders: orders, maxBytes: maxFileSizeMB * 1024 * 1024}
}

// updateOrderRequest is the PUT body. Field names follow the response shape so a
// hydrated order can be edited and sent back as-is.
type updateOrderRequest struct {
	SalesOrderHeader map[string]any    `json:"SalesOrderHeader"`
	SalesOrderDetail *[]map[string]any `json:"SalesOrderDetail"`
}

// Upload handles POST /api/upload
// @Summary Upload an invoice
// @Description Extract a sales order from an invoice image or PDF and persist it
// @Tags sales_orders
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice document (JPG, PNG, WEBP or PDF)"
// @Success 201 {object} APIResponse{data=domain.PersistedOrder} "Order created"
// @Failure 400 {object} APIResponse{error=APIError} "Missing file, unsupported type or invalid extraction"
// @Failure 409 {object} APIResponse{error=APIError} "Sales order number already exists"
// @Failure 413 {object} APIResponse{error=APIError} "File too large"
// @Failure 500 {object} APIResponse{error=APIError} "Extraction or persistence failed"
// @Router /api/upload [post]
func (h *OrderHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			HandleError(c, domain.ErrFileTooLarge)
		case errors.Is(err, http.ErrMissingFile) && h.hasEmptyFilePart(c):
			HandleError(c, domain.ErrEmptyFilename)
		default:
			HandleError(c, domain.ErrMissingFile)
		}
		return
	}
	defer func() { _ = file.Close() }()

	order, err := h.uploads.Process(c.Request.Context(), service.InvoiceUploadInput{File: file, Header: header})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, order)
}

// hasEmptyFilePart reports whether a "file" part was sent without a filename.
// mime/multipart files such a part under the form values rather than the files.
func (h *OrderHandler) hasEmptyFilePart(c *gin.Context) bool {
	form := c.Request.MultipartForm
	if form == nil {
		return false
	}
	_, ok := form.Value["file"]
	return ok
}

// Get handles GET /api/sales_order/:id
// @Summary Get a sales order
// @Description Get a sales order header with its hydrated detail lines
// @Tags sales_orders
// @Produce json
// @Param id path int true "SalesOrderID"
// @Success 200 {object} APIResponse{data=domain.PersistedOrder} "Sales order"
// @Failure 400 {object} APIResponse{error=APIError} "Invalid ID"
// @Failure 404 {object} APIResponse{error=APIError} "Order not found"
// @Router /api/sales_order/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, order)
}

// List handles GET /api/sales_orders
// @Summary List sales orders
// @Description List sales orders newest first with pagination
// @Tags sales_orders
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} APIResponse{data=[]domain.PersistedOrder,meta=PagMeta} "List of orders"
// @Failure 500 {object} APIResponse{error=APIError} "Query failed"
// @Router /api/sales_orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	orders, total, err := h.orders.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, orders, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Update handles PUT /api/sales_order/:id
// @Summary Update a sales order
// @Description Patch header fields and replace every detail line of a sales order
// @Tags sales_orders
// @Accept json
// @Produce json
// @Param id path int true "SalesOrderID"
// @Param body body updateOrderRequest true "Header patch and replacement detail lines"
// @Success 200 {object} APIResponse{data=domain.PersistedOrder} "Updated order"
// @Failure 400 {object} APIResponse{error=APIError} "Invalid ID or payload"
// @Failure 404 {object} APIResponse{error=APIError} "Order not found"
// @Failure 409 {object} APIResponse{error=APIError} "Sales order number already exists"
// @Failure 500 {object} APIResponse{error=APIError} "Persistence failed"
// @Router /api/sales_order/{id} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}

	var req updateOrderRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			RespondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid data")
			return
		}
		RespondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "malformed JSON: "+err.Error())
		return
	}
	if req.SalesOrderDetail == nil {
		RespondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "SalesOrderDetail is required; send [] to remove every line")
		return
	}

	order, err := h.orders.Update(c.Request.Context(), &service.UpdateOrderInput{
		SalesOrderID: id,
		Header:       req.SalesOrderHeader,
		Details:      *req.SalesOrderDetail,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, order)
}

// Delete handles DELETE /api/sales_order/:id
// @Summary Delete a sales order
// @Description Delete a sales order and its detail lines. Deleting a missing order succeeds.
// @Tags sales_orders
// @Produce json
// @Param id path int true "SalesOrderID"
// @Success 200 {object} APIResponse "Order deleted"
// @Failure 400 {object} APIResponse{error=APIError} "Invalid ID"
// @Failure 500 {object} APIResponse{error=APIError} "Persistence failed"
// @Router /api/sales_order/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"SalesOrderID": id, "message": fmt.Sprintf("Order %d deleted.", id)})
}

// ExportCSV handles GET /api/sales_orders/export.csv
// @Summary Export sales orders as CSV
// @Description Stream every sales order line as a UTF-8 CSV attachment
// @Tags sales_orders
// @Produce text/csv
// @Success 200 {file} file "CSV export"
// @Failure 500 {object} APIResponse{error=APIError} "Query failed"
// @Router /api/sales_orders/export.csv [get]
func (h *OrderHandler) ExportCSV(c *gin.Context) {
	ctx := c.Request.Context()

	// Fetch the first batch before committing to a CSV response.
	orders, total, err := h.orders.List(ctx, 0, exportBatchSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, csvexport.BuildFilename(time.Now())))
	c.Status(http.StatusOK)

	_, _ = c.Writer.Write(csvexport.BOM)
	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}

	for offset := 0; ; {
		if err := w.WriteOrders(orders); err != nil {
			middleware.Logger(c).Error("csv export write failed", zap.Error(err))
			return
		}
		offset += len(orders)
		if len(orders) == 0 || offset >= total {
			break
		}
		orders, _, err = h.orders.List(ctx, offset, exportBatchSize)
		if err != nil {
			// Headers are already sent; the truncated file is the only signal left.
			middleware.Logger(c).Error("csv export batch failed", zap.Int("offset", offset), zap.Error(err))
			break
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		middleware.Logger(c).Error("csv export flush failed", zap.Error(err))
	}
}

func parseOrderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid sales order id")
		return 0, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
