package media

import (
	"context"
	"time"
)

// Tool wraps the ffmpeg/ffprobe operations the pipeline needs.
type Tool interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
	ExtractFrame(ctx context.Context, videoPath string, at time.Duration, outJPEG string) error
	Transcode(ctx context.Context, inPath, outPath string) error
}
