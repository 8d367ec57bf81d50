package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nguyentantai21042004/narration-flow/internal/config"
	"github.com/nguyentantai21042004/narration-flow/pkg/executor"
)

type implTool struct {
	exec         executor.Executor
	ffmpeg       string
	ffprobe      string
	imageQuality int
	audioQuality int
}

// New creates a Tool running the binaries named in cfg through exec.
func New(cfg config.FFmpegConfig, exec executor.Executor) Tool {
	t := &implTool{
		exec:         exec,
		ffmpeg:       cfg.Binary,
		ffprobe:      cfg.Probe,
		imageQuality: cfg.ImageQuality,
		audioQuality: cfg.AudioQuality,
	}
	if t.ffmpeg == "" {
		t.ffmpeg = "ffmpeg"
	}
	if t.ffprobe == "" {
		t.ffprobe = "ffprobe"
	}
	if t.imageQuality == 0 {
		t.imageQuality = 2
	}
	if t.audioQuality == 0 {
		t.audioQuality = 2
	}
	return t
}

func (t *implTool) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	out, err := t.exec.Execute(ctx, t.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}

	s := strings.TrimSpace(out)
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

// ExtractFrame decodes the single frame at the given offset into a JPEG.
// -ss before -i seeks on the input, which is millisecond accurate for the
// decoded frame.
func (t *implTool) ExtractFrame(ctx context.Context, videoPath string, at time.Duration, outJPEG string) error {
	args := []string{
		"-y",
		"-ss", fmtSeconds(at),
		"-i", videoPath,
		"-frames:v", "1",
		"-c:v", "mjpeg",
		"-q:v", strconv.Itoa(t.imageQuality),
		"-f", "image2",
		outJPEG,
	}
	if _, err := t.exec.Execute(ctx, t.ffmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg extract frame: %w", err)
	}
	return nil
}

// Transcode converts raw speech audio to MP3.
func (t *implTool) Transcode(ctx context.Context, inPath, outPath string) error {
	args := []string{
		"-y",
		"-i", inPath,
		"-codec:a", "libmp3lame",
		"-q:a", strconv.Itoa(t.audioQuality),
		"-f", "mp3",
		outPath,
	}
	if _, err := t.exec.Execute(ctx, t.ffmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg transcode: %w", err)
	}
	return nil
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
