package speech

import (
	"context"

	"github.com/nguyentantai21042004/narration-flow/internal/cache"
)

// TTS turns text into raw audio bytes in a fixed voice.
type TTS interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// Transcoder converts raw audio to MP3. media.Tool satisfies it.
type Transcoder interface {
	Transcode(ctx context.Context, inPath, outPath string) error
}

// Skip explains why no audio was produced.
type Skip string

const (
	SkipNone    Skip = ""
	SkipOpening Skip = "opening"
	SkipCached  Skip = "cached"
)

// Request is one fitted narration to voice. WavPath is where the raw
// audio is kept.
type Request struct {
	Key     cache.Key
	Text    string
	WavPath string
}

type Result struct {
	Skipped Skip
	MP3Path string
}

// Synthesizer voices fitted narrations, memoized by the MP3 artifact.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (Result, error)
}
