package narrator

import (
	"bytes"
	"context"
	"fmt"

	"github.com/nguyentantai21042004/narration-flow/internal/cache"
	"github.com/nguyentantai21042004/narration-flow/internal/llm"
)

// Generate returns the cached narration when present. Otherwise it reads the
// frame image, asks the vision model once and stores the answer.
func (g *implGenerator) Generate(ctx context.Context, req Request) (string, error) {
	key := req.Key.WithStage(cache.StageNarration)

	cached, ok, err := g.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read narration cache: %w", err)
	}
	if ok {
		g.logger.Debug(ctx, "Narration cache hit: %s", key.Name())
		return string(cached), nil
	}

	system, err := g.systemPrompt(req.Description)
	if err != nil {
		return "", err
	}

	img, err := g.images.Read(ctx, req.ImagePath)
	if err != nil {
		return "", fmt.Errorf("read frame image: %w", err)
	}

	g.logger.Info(ctx, "Narrating frame %d (%d prior narrations)", key.Index, req.Context.Len())

	text, err := g.client.Complete(ctx, llm.Request{
		Model:     g.opts.Model,
		System:    system,
		History:   req.Context.Turns(),
		Prompt:    g.opts.ImagePrompt,
		Image:     &llm.Image{Data: img, MIMEType: "image/jpeg"},
		MaxTokens: g.opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate narration: %w", err)
	}

	if err := g.store.Put(ctx, key, []byte(text)); err != nil {
		return "", fmt.Errorf("store narration: %w", err)
	}
	return text, nil
}

func (g *implGenerator) systemPrompt(description string) (string, error) {
	var buf bytes.Buffer
	if err := g.persona.Execute(&buf, struct{ Description string }{description}); err != nil {
		return "", fmt.Errorf("render persona: %w", err)
	}
	return buf.String(), nil
}
