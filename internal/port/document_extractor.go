package port

import (
	"context"
)

// ExtractInput carries the document and the prompt sent to the model.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
	Prompt      string
}

// ExtractOutput holds the model's unprocessed answer.
type ExtractOutput struct {
	RawText   string
	ModelUsed string
}

// DocumentExtractor abstracts the document-understanding model.
type DocumentExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
