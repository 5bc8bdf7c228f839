package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderscan/internal/config"
	"orderscan/internal/parser"
	"orderscan/internal/parser/claude"
	"orderscan/internal/port"
)

func newTestExtractor(serverURL string) *claude.Extractor {
	cfg := &config.ParserProviderConfig{
		Provider:     "claude",
		APIKey:       "test-anthropic-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
	}
	return claude.NewExtractorWithEndpoint(cfg, serverURL)
}

func TestExtract_PDF_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-anthropic-key", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-sonnet-4-20250514", body["model"])
		assert.Equal(t, float64(16384), body["max_tokens"])

		msg := body["messages"].([]interface{})[0].(map[string]interface{})
		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)
		assert.Equal(t, "document", content[0].(map[string]interface{})["type"])
		assert.Equal(t, "text", content[1].(map[string]interface{})["type"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": `{"SalesOrderHeader":{}}`},
			},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("%PDF"),
		ContentType: "application/pdf",
		Prompt:      "extract",
	})

	require.NoError(t, err)
	assert.Equal(t, `{"SalesOrderHeader":{}}`, out.RawText)
	assert.Equal(t, "claude-sonnet-4-20250514", out.ModelUsed)
}

func TestExtract_Image_UsesImageBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		msg := body["messages"].([]interface{})[0].(map[string]interface{})
		block := msg["content"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "image", block["type"])
		assert.Equal(t, "image/webp", block["source"].(map[string]interface{})["media_type"])

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{
		FileBytes:   []byte("RIFF"),
		ContentType: "image/webp",
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.RawText)
}

func TestExtract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{ContentType: "image/png"})

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Extractor)
	assert.Equal(t, float64(60), rlErr.RetryAfter.Seconds())
}

func TestExtract_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{"}],"stop_reason":"max_tokens"}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), port.ExtractInput{ContentType: "image/png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestExtract_UnsupportedContentType(t *testing.T) {
	_, err := newTestExtractor("http://unused").Extract(context.Background(), port.ExtractInput{ContentType: "text/csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}
