// Package frames grabs still images from the source video. Frames are
// cheap to regenerate and are rewritten on every run.
package frames

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/nguyentantai21042004/narration-flow/internal/logger"
	"github.com/nguyentantai21042004/narration-flow/internal/media"
	"github.com/nguyentantai21042004/narration-flow/pkg/fsutil"
)

// Video is an opened source video.
type Video struct {
	path     string
	duration time.Duration
	tool     media.Tool
	logger   logger.Logger
}

// Open probes the video and returns a handle for frame extraction.
func Open(ctx context.Context, tool media.Tool, path string, log logger.Logger) (*Video, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}

	d, err := tool.ProbeDuration(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}

	return &Video{path: path, duration: d, tool: tool, logger: log}, nil
}

func (v *Video) Path() string {
	return v.path
}

func (v *Video) Duration() time.Duration {
	return v.duration
}

// Extract writes the frame at seconds to outPath as a JPEG. When no frame
// can be decoded (offset past the end, decoder failure) nothing is written,
// a warning is logged and ok is false. Only a missing ffmpeg binary or a
// filesystem failure is returned as an error.
func (v *Video) Extract(ctx context.Context, seconds int, outPath string) (bool, error) {
	at := time.Duration(seconds) * time.Second
	if v.duration > 0 && at >= v.duration {
		v.logger.Warn(ctx, "No frame at %ds: video is %s long", seconds, v.duration)
		return false, nil
	}

	tmp := strings.TrimSuffix(outPath, ".jpg") + ".partial.jpg"
	defer os.Remove(tmp)

	if err := v.tool.ExtractFrame(ctx, v.path, at, tmp); err != nil {
		if errors.Is(err, exec.ErrNotFound) || ctx.Err() != nil {
			return false, fmt.Errorf("extract frame at %ds: %w", seconds, err)
		}
		v.logger.Warn(ctx, "No frame decoded at %ds: %v", seconds, err)
		return false, nil
	}

	if !fsutil.NonEmpty(tmp) {
		v.logger.Warn(ctx, "No frame decoded at %ds: empty output", seconds)
		return false, nil
	}

	if err := fsutil.MoveFile(tmp, outPath); err != nil {
		return false, fmt.Errorf("save frame: %w", err)
	}
	return true, nil
}
