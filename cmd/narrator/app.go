package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/narration-flow/internal/cache"
	"github.com/nguyentantai21042004/narration-flow/internal/config"
	"github.com/nguyentantai21042004/narration-flow/internal/fitter"
	"github.com/nguyentantai21042004/narration-flow/internal/frames"
	"github.com/nguyentantai21042004/narration-flow/internal/llm"
	"github.com/nguyentantai21042004/narration-flow/internal/llm/gemini"
	"github.com/nguyentantai21042004/narration-flow/internal/llm/openai"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
	"github.com/nguyentantai21042004/narration-flow/internal/media"
	"github.com/nguyentantai21042004/narration-flow/internal/narrator"
	"github.com/nguyentantai21042004/narration-flow/internal/processor"
	"github.com/nguyentantai21042004/narration-flow/internal/speech"
	"github.com/nguyentantai21042004/narration-flow/internal/speech/elevenlabs"
	"github.com/nguyentantai21042004/narration-flow/internal/timeline"
	"github.com/nguyentantai21042004/narration-flow/internal/transcript"
	"github.com/nguyentantai21042004/narration-flow/pkg/executor"
	"github.com/nguyentantai21042004/narration-flow/pkg/retry"
)

type app struct {
	cfg  *config.Config
	log  logger.Logger
	proc processor.Processor
}

// newApp wires the pipeline. Without full only the transcript stage is
// built, so no credentials or external tools are needed.
func newApp(ctx context.Context, cfg *config.Config, log logger.Logger, full bool) (*app, error) {
	store := cache.NewFileStore(cfg.Paths.Output)
	title := strings.TrimSuffix(filepath.Base(cfg.Paths.Video), filepath.Ext(cfg.Paths.Video))

	deps := processor.Deps{
		Transcript: transcript.New(store, transcript.Options{
			OutputDir: cfg.Paths.Output,
			WrapWidth: cfg.Transcript.WrapWidth,
			Docx:      cfg.Transcript.Docx,
			Title:     title,
		}, log),
		Logger:    log,
		VideoPath: cfg.Paths.Video,
		OutputDir: cfg.Paths.Output,
	}

	if full {
		tl, err := timeline.Open(cfg.Paths.Description)
		if err != nil {
			return nil, err
		}

		client, err := newLLMClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}

		tool := media.New(cfg.FFmpeg, executor.New())

		gen, err := narrator.New(client, store,
			narrator.NewImageReader(retry.Policy{
				MaxRetries: cfg.Retry.ImageReadRetries,
				Delay:      cfg.Retry.ImageReadDelay,
			}),
			narrator.Options{
				Model:       cfg.LLM.VisionModel,
				Persona:     cfg.Narration.Persona,
				ImagePrompt: cfg.Narration.ImagePrompt,
				MaxTokens:   cfg.Narration.MaxTokens,
			}, log)
		if err != nil {
			return nil, err
		}

		tts, err := newTTS(cfg)
		if err != nil {
			return nil, err
		}

		deps.Timeline = tl
		deps.OpenVideo = func(ctx context.Context) (processor.FrameSource, error) {
			v, err := frames.Open(ctx, tool, cfg.Paths.Video, log)
			if err != nil {
				return nil, err
			}
			return v, nil
		}
		deps.Narrator = gen
		deps.Fitter = fitter.New(client, store, fitter.Options{
			Model:          cfg.LLM.TextModel,
			WordsPerMinute: cfg.Fitting.WordsPerMinute,
			MaxTokens:      cfg.Fitting.MaxTokens,
		}, log)
		deps.Speech = speech.New(tts, tool, store, log)

		log.Info(ctx, "LLM provider: %s (vision %s, text %s)", cfg.LLM.Provider, cfg.LLM.VisionModel, cfg.LLM.TextModel)
		log.Info(ctx, "Output: %s", cfg.Paths.Output)
	}

	return &app{cfg: cfg, log: log, proc: processor.New(deps)}, nil
}

func newLLMClient(ctx context.Context, cfg *config.Config, log logger.Logger) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return openai.New(cfg.LLM.OpenAIKey, cfg.LLM.BaseURL, log), nil
	case config.ProviderGemini:
		return gemini.New(ctx, cfg.LLM.GeminiKey, cfg.LLM.BaseURL, log)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func newTTS(cfg *config.Config) (speech.TTS, error) {
	switch cfg.Speech.Provider {
	case config.SpeechElevenLabs:
		c, err := elevenlabs.New(elevenlabs.Config{
			BaseURL: cfg.Speech.BaseURL,
			APIKey:  cfg.Speech.APIKey,
			VoiceID: cfg.Speech.VoiceID,
			ModelID: cfg.Speech.ModelID,
			Timeout: cfg.Speech.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.Speech.Provider)
	}
}
