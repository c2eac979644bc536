package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient is the ContentGenerator backed by the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	slots  chan struct{}
	logger *zap.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string, temperature float32, concurrentReqs int, logger *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(0.95)

	return &GeminiClient{
		client: client,
		model:  model,
		slots:  newSlots(concurrentReqs),
		logger: logger.Named("gemini").With(zap.String("model", modelName)),
	}, nil
}

func newSlots(n int) chan struct{} {
	slots := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		slots <- struct{}{}
	}
	return slots
}

// acquireSlot blocks until one of the concurrent request slots is free.
func acquireSlot(ctx context.Context, slots chan struct{}) error {
	select {
	case <-slots:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) GenerateContent(ctx context.Context, parts []ContentPart) (*Completion, error) {
	if err := acquireSlot(ctx, c.slots); err != nil {
		return nil, newTransportError(err)
	}
	defer func() { c.slots <- struct{}{} }()

	resp, err := c.model.GenerateContent(ctx, toGenaiParts(parts)...)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			c.logger.Warn("Gemini blocked the request", zap.Error(err))
			return &Completion{FinishReason: "BLOCKED"}, nil
		}
		return nil, classifyGeminiError(err)
	}

	completion := completionFromResponse(resp)
	if completion.FinishReason != "" && completion.FinishReason != genai.FinishReasonStop.String() {
		c.logger.Warn("Gemini stopped early", zap.String("finish_reason", completion.FinishReason))
	}
	return completion, nil
}

func toGenaiParts(parts []ContentPart) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsInline() {
			out = append(out, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
			continue
		}
		out = append(out, genai.Text(p.Text))
	}
	return out
}

func completionFromResponse(resp *genai.GenerateContentResponse) *Completion {
	completion := &Completion{}
	if resp == nil {
		return completion
	}

	for i, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		if i == 0 {
			completion.FinishReason = cand.FinishReason.String()
		}

		var text strings.Builder
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
		completion.Candidates = append(completion.Candidates, text.String())
	}

	return completion
}

// classifyGeminiError separates errors the API reported from failures to reach it.
func classifyGeminiError(err error) *GenerationError {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = gerr.Error()
		}
		return newAPIError(gerr.Code, msg, err)
	}

	if ae, ok := apierror.FromError(err); ok {
		if st := ae.GRPCStatus(); st != nil {
			return newAPIError(ae.HTTPCode(), st.Message(), err)
		}
		return newAPIError(ae.HTTPCode(), ae.Error(), err)
	}

	return newTransportError(err)
}
