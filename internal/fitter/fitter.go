// Package fitter asks the text model to shorten a narration toward the
// spoken length of its scene.
package fitter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/narration-flow/internal/cache"
	"github.com/nguyentantai21042004/narration-flow/internal/llm"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
	"github.com/nguyentantai21042004/narration-flow/internal/narrative"
)

// ErrZeroDuration is returned for text with no words: its spoken length is
// zero, so no ratio can be computed.
var ErrZeroDuration = errors.New("narration has no words")

const shortenPrompt = "shorten the following text to roughly %d%% it's original size:\n%s"

// Request is one narration to fit.
type Request struct {
	Key           cache.Key
	Text          string
	TargetSeconds int
	Context       narrative.Log
}

// Fitter returns length-adjusted narration, memoized per frame.
type Fitter interface {
	Fit(ctx context.Context, req Request) (string, error)
}

// Options configures the fitting request.
type Options struct {
	Model          string
	WordsPerMinute int
	MaxTokens      int
}

type implFitter struct {
	client llm.Client
	store  cache.Store
	opts   Options
	logger logger.Logger
}

func New(client llm.Client, store cache.Store, opts Options, log logger.Logger) Fitter {
	if opts.WordsPerMinute <= 0 {
		opts.WordsPerMinute = 200
	}
	return &implFitter{client: client, store: store, opts: opts, logger: log}
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Percentage is the target length relative to the current spoken length
// at wordsPerMinute, floored to an integer percent.
//
//	current = words / wpm * 60
//	percent = floor(target / current * 100)
//
// It is evaluated in integers so the floor is exact.
func Percentage(text string, targetSeconds, wordsPerMinute int) (int, error) {
	words := WordCount(text)
	if words == 0 || wordsPerMinute <= 0 {
		return 0, ErrZeroDuration
	}
	if targetSeconds < 0 {
		targetSeconds = 0
	}
	return targetSeconds * wordsPerMinute * 100 / (words * 60), nil
}

// Fit returns the cached fitted text when present; otherwise it issues one
// shortening request and stores the result.
func (f *implFitter) Fit(ctx context.Context, req Request) (string, error) {
	key := req.Key.WithStage(cache.StageFitted)

	var (
		text string
		hit  bool
	)

	cached, ok, err := f.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read fitted cache: %w", err)
	}

	if ok {
		text, hit = string(cached), true
	} else {
		pct, err := Percentage(req.Text, req.TargetSeconds, f.opts.WordsPerMinute)
		if err != nil {
			return "", fmt.Errorf("frame %d: %w", key.Index, err)
		}
		if pct > 100 {
			f.logger.Warn(ctx, "Frame %d narration is shorter than its %ds scene (%d%%)", key.Index, req.TargetSeconds, pct)
		}

		text, err = f.client.Complete(ctx, llm.Request{
			Model:     f.opts.Model,
			System:    fmt.Sprintf(shortenPrompt, pct, req.Text),
			History:   req.Context.Turns(),
			MaxTokens: f.opts.MaxTokens,
		})
		if err != nil {
			return "", fmt.Errorf("fit narration: %w", err)
		}
		if err := f.store.Put(ctx, key, []byte(text)); err != nil {
			return "", fmt.Errorf("store fitted narration: %w", err)
		}
	}

	f.logger.Info(ctx, "Frame %d word count: %d -> %d (cached=%t)", key.Index, WordCount(req.Text), WordCount(text), hit)
	return text, nil
}
