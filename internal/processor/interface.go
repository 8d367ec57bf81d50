package processor

import (
	"context"
	"iter"

	"github.com/nguyentantai21042004/narration-flow/internal/timeline"
	"github.com/nguyentantai21042004/narration-flow/internal/transcript"
)

// Processor runs the narration pipeline over the whole timeline.
type Processor interface {
	Process(ctx context.Context) (*Manifest, error)
	Assemble(ctx context.Context) (transcript.Result, error)
}

// Timeline is the restartable entry source. *timeline.Timeline satisfies it.
type Timeline interface {
	Path() string
	Validate() (int, error)
	Entries() iter.Seq2[timeline.Entry, error]
}

// FrameSource writes the still at a given offset. *frames.Video satisfies it.
type FrameSource interface {
	Extract(ctx context.Context, seconds int, outPath string) (bool, error)
}

// VideoOpener opens the source video once per run.
type VideoOpener func(ctx context.Context) (FrameSource, error)
