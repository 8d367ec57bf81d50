// Package gemini adapts google.golang.org/genai to the llm.Client port.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/narration-flow/internal/llm"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
)

type implClient struct {
	client *genai.Client
	logger logger.Logger
}

// New creates a Gemini-backed llm.Client. baseURL may be empty.
func New(ctx context.Context, apiKey, baseURL string, log logger.Logger) (llm.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &implClient{client: client, logger: log}, nil
}

func (c *implClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	contents, cfg := buildContents(req)

	c.logger.Debug(ctx, "gemini generate: model=%s turns=%d image=%t", req.Model, len(contents), req.Image != nil)

	result, err := c.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if result == nil {
		return "", llm.ErrEmptyResponse
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

// buildContents maps a request onto Gemini contents. Gemini requires the
// conversation to end on a user turn, so a request with no final user part
// repeats the instruction as one.
func buildContents(req llm.Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	cfg := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if budget := thinkingBudget(req.Model); budget != nil {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: budget}
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, t := range req.History {
		role := genai.Role(genai.RoleUser)
		if t.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	var parts []*genai.Part
	if req.Prompt != "" {
		parts = append(parts, genai.NewPartFromText(req.Prompt))
	}
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}
	if len(parts) == 0 {
		parts = append(parts, genai.NewPartFromText(req.System))
	}
	contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))

	return contents, cfg
}

// thinkingBudget turns thinking off where the model allows it. On 2.5 Flash
// thinking tokens count against MaxOutputTokens and would truncate the reply.
// Pro models cannot disable thinking and keep the server default.
func thinkingBudget(model string) *int32 {
	if strings.Contains(model, "gemini-2.5-flash") {
		return genai.Ptr[int32](0)
	}
	return nil
}
