package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"orderscan/internal/config"
	"orderscan/internal/domain"
	"orderscan/internal/port"
)

// InvoiceUploadInput is the DTO for an uploaded invoice image.
type InvoiceUploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// UploadService turns an uploaded invoice into a persisted order.
type UploadService interface {
	Process(ctx context.Context, input InvoiceUploadInput) (*domain.PersistedOrder, error)
}

type uploadService struct {
	orders   OrderService
	storage  port.ObjectStorage // nil when the archive is disabled
	upload   *config.UploadConfig
	archive  *config.ArchiveConfig
	logger   *zap.Logger
	maxBytes int64
}

// NewUploadService creates a new UploadService implementation.
func NewUploadService(
	orders OrderService,
	storage port.ObjectStorage,
	uploadCfg *config.UploadConfig,
	archiveCfg *config.ArchiveConfig,
	logger *zap.Logger,
) UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &uploadService{
		orders:   orders,
		storage:  storage,
		upload:   uploadCfg,
		archive:  archiveCfg,
		logger:   logger.Named("upload_service"),
		maxBytes: uploadCfg.MaxFileSizeMB * 1024 * 1024,
	}
}

func (s *uploadService) Process(ctx context.Context, input InvoiceUploadInput) (*domain.PersistedOrder, error) {
	if input.File == nil || input.Header == nil {
		return nil, domain.ErrMissingFile
	}
	if input.Header.Filename == "" {
		return nil, domain.ErrEmptyFilename
	}
	if input.Header.Size > s.maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	data, err := s.spool(input.File)
	if err != nil {
		return nil, err
	}

	contentType := http.DetectContentType(data)
	ext, ok := domain.AllowedContentTypes[contentType]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	s.logger.Info("processing invoice",
		zap.String("filename", input.Header.Filename),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(data)))

	order, err := s.orders.CreateFromDocument(ctx, &port.ExtractInput{FileBytes: data, ContentType: contentType})
	if err != nil {
		return nil, err
	}

	if s.archive.Enabled && s.storage != nil {
		if warning := s.archiveInvoice(ctx, order, data, contentType, ext); warning != nil {
			order.Warnings = append(order.Warnings, *warning)
		}
	}
	return order, nil
}

// spool writes the upload to a temporary file under the upload dir, reads it back
// and removes the file before returning.
func (s *uploadService) spool(src io.Reader) ([]byte, error) {
	if err := os.MkdirAll(s.upload.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.upload.Dir, "invoice-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger.Warn("removing temp upload failed", zap.String("path", tmp.Name()), zap.Error(rmErr))
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if n > s.maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	if n == 0 {
		return nil, domain.ErrUnsupportedFileType
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking temp file: %w", err)
	}
	data, err := io.ReadAll(tmp)
	if err != nil {
		return nil, fmt.Errorf("reading temp file: %w", err)
	}
	return data, nil
}

func (s *uploadService) archiveInvoice(ctx context.Context, order *domain.PersistedOrder, data []byte, contentType, ext string) *domain.Warning {
	key := fmt.Sprintf("invoices/%s/%s%s", order.SalesOrderHeader.SalesOrderNumber, uuid.New(), ext)
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.archive.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
		Size:        int64(len(data)),
	})
	if err != nil {
		s.logger.Error("archiving invoice failed",
			zap.Int64("sales_order_id", order.SalesOrderHeader.SalesOrderID),
			zap.String("key", key),
			zap.Error(err))
		return &domain.Warning{Code: domain.WarnArchiveFailed, Message: "order saved but the invoice image was not archived"}
	}
	s.logger.Debug("invoice archived", zap.String("key", key))
	return nil
}
