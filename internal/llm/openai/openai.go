// Package openai adapts github.com/openai/openai-go to the llm.Client port.
// Any OpenAI-compatible endpoint (OpenRouter, local gateways) works through
// the base URL.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/nguyentantai21042004/narration-flow/internal/llm"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
)

type implClient struct {
	client openai.Client
	logger logger.Logger
}

// New creates an OpenAI-backed llm.Client. baseURL may be empty.
func New(apiKey, baseURL string, log logger.Logger) llm.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &implClient{
		client: openai.NewClient(opts...),
		logger: log,
	}
}

func (c *implClient) Complete(ctx context.Context, req llm.Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: buildMessages(req),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	c.logger.Debug(ctx, "openai chat completion: model=%s messages=%d image=%t", req.Model, len(params.Messages), req.Image != nil)

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func buildMessages(req llm.Request) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}

	for _, t := range req.History {
		if t.Role == llm.RoleAssistant {
			msgs = append(msgs, openai.AssistantMessage(t.Text))
		} else {
			msgs = append(msgs, openai.UserMessage(t.Text))
		}
	}

	var parts []openai.ChatCompletionContentPartUnionParam
	if req.Prompt != "" {
		parts = append(parts, openai.TextContentPart(req.Prompt))
	}
	if req.Image != nil {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL(req.Image),
		}))
	}
	if len(parts) > 0 {
		msgs = append(msgs, openai.UserMessage(parts))
	}

	return msgs
}

func dataURL(img *llm.Image) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
