package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("resource not found")
	ErrOrderNotFound        = errors.New("sales order not found")
	ErrMissingFile          = errors.New("no file part")
	ErrEmptyFilename        = errors.New("no selected file")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrExtractionFailed     = errors.New("failed to extract data from document")
	ErrMissingSections      = errors.New("extracted data is missing required sections")
	ErrMissingRequiredField = errors.New("extracted data is missing a required field")
	ErrDuplicateOrderNumber = errors.New("sales order number already exists")
	ErrInvalidDate          = errors.New("invalid date format")
	ErrInvalidField         = errors.New("invalid field value")
	ErrInvalidPayload       = errors.New("invalid request payload")
	ErrPersistFailed        = errors.New("failed to persist sales order")
)

// DuplicateOrderError reports a conflicting SalesOrderNumber.
type DuplicateOrderError struct {
	SalesOrderNumber string
}

func (e *DuplicateOrderError) Error() string {
	return fmt.Sprintf("an order with SalesOrderNumber '%s' already exists", e.SalesOrderNumber)
}

func (e *DuplicateOrderError) Is(target error) bool {
	return target == ErrDuplicateOrderNumber
}
