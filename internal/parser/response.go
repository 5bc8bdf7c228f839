package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"

	"orderscan/internal/domain"
)

const (
	jsonFence  = "```json"
	closeFence = "```"
)

// ParseError reports a model response that could not be decoded into an order record.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "parsing model response: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s (raw: %s)", msg, truncate(e.Raw, 500))
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets callers match any ParseError against domain.ErrExtractionFailed.
func (e *ParseError) Is(target error) bool {
	return target == domain.ErrExtractionFailed
}

// ParseResponse extracts the order record from a model answer. The first ```json
// fenced block wins; without a fence the whole text must be a JSON object.
func ParseResponse(raw string) (domain.ExtractedOrder, error) {
	payload, err := locatePayload(raw)
	if err != nil {
		return domain.ExtractedOrder{}, err
	}

	obj, err := decodeObject(payload)
	if err != nil {
		return domain.ExtractedOrder{}, &ParseError{Reason: "invalid JSON", Raw: raw, Err: err}
	}
	return toExtractedOrder(obj), nil
}

func locatePayload(raw string) (string, error) {
	start := strings.Index(raw, jsonFence)
	if start == -1 {
		return strings.TrimSpace(raw), nil
	}
	start += len(jsonFence)
	end := strings.Index(raw[start:], closeFence)
	if end == -1 {
		return "", &ParseError{Reason: "unterminated json fence", Raw: raw}
	}
	payload := strings.TrimSpace(raw[start : start+end])
	if payload == "" {
		return "", &ParseError{Reason: "empty json fence", Raw: raw}
	}
	return payload, nil
}

func decodeObject(payload string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return obj, nil
}

func toExtractedOrder(obj map[string]any) domain.ExtractedOrder {
	out := domain.ExtractedOrder{
		BillingAddress:  obj["BillingAddress"],
		ShippingAddress: obj["ShippingAddress"],
	}
	if header, ok := obj["SalesOrderHeader"].(map[string]any); ok {
		out.SalesOrderHeader = header
	}
	if lines, ok := obj["SalesOrderDetail"].([]any); ok {
		for _, line := range lines {
			if m, ok := line.(map[string]any); ok {
				out.SalesOrderDetail = append(out.SalesOrderDetail, m)
			}
		}
	}
	if name, ok := obj["CustomerName"]; ok && name != nil {
		out.CustomerName = strings.TrimSpace(cast.ToString(name))
	}
	return out
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
