package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nguyentantai21042004/narration-flow/internal/cache"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
	"github.com/nguyentantai21042004/narration-flow/pkg/fsutil"
)

// ErrTranscode means the raw audio could not be turned into an MP3.
var ErrTranscode = errors.New("transcode failed")

type implSynthesizer struct {
	tts        TTS
	transcoder Transcoder
	store      cache.Store
	logger     logger.Logger
}

func New(tts TTS, transcoder Transcoder, store cache.Store, log logger.Logger) Synthesizer {
	return &implSynthesizer{tts: tts, transcoder: transcoder, store: store, logger: log}
}

// Synthesize never voices the opening frame. Otherwise an existing MP3 is a
// hit; a miss calls the TTS service once, keeps the raw audio at WavPath,
// transcodes it and stores the MP3.
func (s *implSynthesizer) Synthesize(ctx context.Context, req Request) (Result, error) {
	if req.Key.Index == 0 {
		s.logger.Debug(ctx, "Frame 0 is the opening shot; no audio")
		return Result{Skipped: SkipOpening}, nil
	}

	key := req.Key.WithStage(cache.StageAudio)
	has, err := s.store.Has(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("check audio cache: %w", err)
	}
	if has {
		s.logger.Debug(ctx, "Audio cache hit: %s", key.Name())
		return Result{Skipped: SkipCached, MP3Path: s.store.Path(key)}, nil
	}

	audio, err := s.tts.Speak(ctx, req.Text)
	if err != nil {
		return Result{}, fmt.Errorf("synthesize frame %d: %w", key.Index, err)
	}

	if err := fsutil.WriteFileAtomic(req.WavPath, audio, 0o644); err != nil {
		return Result{}, fmt.Errorf("write raw audio: %w", err)
	}

	tmp := strings.TrimSuffix(req.WavPath, ".wav") + ".partial.mp3"
	defer os.Remove(tmp)

	if err := s.transcoder.Transcode(ctx, req.WavPath, tmp); err != nil {
		return Result{}, fmt.Errorf("frame %d: %w: %w", key.Index, ErrTranscode, err)
	}
	if !fsutil.NonEmpty(tmp) {
		return Result{}, fmt.Errorf("frame %d: %w: no output", key.Index, ErrTranscode)
	}

	mp3, err := os.ReadFile(tmp)
	if err != nil {
		return Result{}, fmt.Errorf("read transcoded audio: %w", err)
	}
	if err := s.store.Put(ctx, key, mp3); err != nil {
		return Result{}, fmt.Errorf("store audio: %w", err)
	}

	s.logger.Info(ctx, "Audio ready: %s (%d bytes)", key.Name(), len(mp3))
	return Result{MP3Path: s.store.Path(key)}, nil
}
