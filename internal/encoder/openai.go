// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package encoder

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/pdiddy/topic-explorer/internal/httputil"
	"github.com/pdiddy/topic-explorer/pkg/types"
)

// OpenAI encodes texts through an OpenAI-compatible /embeddings endpoint.
type OpenAI struct {
	client openai.Client
	model  string
	batch  int
	logger *zap.Logger
}

var _ Encoder = (*OpenAI)(nil)

// NewOpenAI builds a client from cfg. Rate limiting is handled by the
// httputil retry transport, so the SDK's own retries are disabled.
func NewOpenAI(cfg types.EncoderConfig, logger *zap.Logger) *OpenAI {
	cfg = cfg.WithDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httputil.NewClient(cfg.Timeout, cfg.MaxRetries, logger)),
		option.WithMaxRetries(0),
		option.WithHeader("User-Agent", cfg.UserAgent),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  cfg.ID,
		batch:  cfg.BatchSize,
		logger: logger,
	}
}

// ID returns the model identifier.
func (o *OpenAI) ID() string { return o.model }

// BlankText stands in for empty or whitespace-only texts. OpenAI-compatible
// servers reject empty inputs, so every blank text shares the embedding of
// this sentinel, encoded once.
const BlankText = "untitled"

// Encode embeds texts in batches and L2-normalizes every vector.
func (o *OpenAI) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	var send []string
	var at []int // position in texts, -1 for the blank sentinel
	var blanks []int
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			blanks = append(blanks, i)
			continue
		}
		send = append(send, text)
		at = append(at, i)
	}
	if len(blanks) > 0 {
		send = append(send, BlankText)
		at = append(at, -1)
	}

	out := make([][]float64, len(texts))
	var blank []float64
	for i := 0; i < len(send); i += o.batch {
		end := min(i+o.batch, len(send))
		vecs, err := o.callAPI(ctx, send[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", i, end, err)
		}
		for j, v := range vecs {
			if pos := at[i+j]; pos >= 0 {
				out[pos] = v
			} else {
				blank = v
			}
		}
		o.logger.Debug("encoded batch", zap.Int("from", i), zap.Int("to", end))
	}
	for _, pos := range blanks {
		out[pos] = append([]float64(nil), blank...)
	}
	if len(blanks) > 0 {
		o.logger.Debug("encoded blank texts with sentinel", zap.Int("count", len(blanks)))
	}

	if err := checkDims(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *OpenAI) callAPI(ctx context.Context, texts []string) ([][]float64, error) {
	params := openai.EmbeddingNewParams{
		Model:          o.model,
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}

	resp, err := o.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, err
	}

	vecs := make([][]float64, len(texts))
	for _, item := range resp.Data {
		idx := item.Index
		if idx < 0 || idx >= int64(len(texts)) {
			return nil, fmt.Errorf("unexpected embedding index %d for batch size %d", idx, len(texts))
		}
		v := make([]float64, len(item.Embedding))
		copy(v, item.Embedding)
		Normalize(v)
		vecs[idx] = v
	}

	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for index %d", i)
		}
	}
	return vecs, nil
}
