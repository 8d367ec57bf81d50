package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/narration-flow/internal/cache"
	"github.com/nguyentantai21042004/narration-flow/internal/fitter"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
	"github.com/nguyentantai21042004/narration-flow/internal/narrative"
	"github.com/nguyentantai21042004/narration-flow/internal/narrator"
	"github.com/nguyentantai21042004/narration-flow/internal/speech"
	"github.com/nguyentantai21042004/narration-flow/internal/timeline"
	"github.com/nguyentantai21042004/narration-flow/internal/transcript"
)

// Process validates the whole timeline, then runs every entry through
// extract, narrate, fit and synthesize in file order, and finally writes the
// transcript. Each frame sees the raw narrations of all frames before it.
// The first failing stage aborts the run.
func (p *implProcessor) Process(ctx context.Context) (m *Manifest, err error) {
	runID := p.newID()
	ctx = logger.WithRunID(ctx, runID)
	startTime := time.Now()

	m = &Manifest{
		RunID:       runID,
		Video:       p.deps.VideoPath,
		Description: p.deps.Timeline.Path(),
		Status:      StatusRunning,
		StartedAt:   startTime.UTC(),
		Frames:      []FrameRecord{},
	}

	defer func() {
		finished := time.Now().UTC()
		m.FinishedAt = &finished
		if err != nil {
			m.Status = StatusFailed
			m.Error = err.Error()
		} else {
			m.Status = StatusCompleted
		}
		p.save(ctx, m)
	}()

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting narration run %s", runID)
	p.logger.Info(ctx, "Video: %s", p.deps.VideoPath)
	p.logger.Info(ctx, "Description: %s", p.deps.Timeline.Path())
	p.logger.Info(ctx, "========================================")

	if err := os.MkdirAll(p.deps.OutputDir, 0o755); err != nil {
		return m, fmt.Errorf("create output dir: %w", err)
	}

	total, err := p.deps.Timeline.Validate()
	if err != nil {
		return m, fmt.Errorf("timeline: %w", err)
	}
	p.logger.Info(ctx, "Timeline has %d entries", total)

	video, err := p.deps.OpenVideo(ctx)
	if err != nil {
		return m, fmt.Errorf("open video: %w", err)
	}

	var (
		story narrative.Log
		keys  []cache.Key
	)
	for entry, err := range p.deps.Timeline.Entries() {
		if err != nil {
			return m, fmt.Errorf("timeline: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return m, err
		}

		p.logger.Info(ctx, "[%d/%d] %s (at %ds, %ds)", entry.Index+1, total, entry.Description, entry.StartSeconds, entry.DurationSeconds)

		key := cache.NewKey(entry.Index, entry.Description, cache.StageNarration)
		rec, next, err := p.processFrame(ctx, video, entry, key, story)
		m.Frames = append(m.Frames, rec)
		if err != nil {
			return m, err
		}
		story = next
		keys = append(keys, key.WithStage(cache.StageFitted))
		p.save(ctx, m)
	}

	// only this run's frames; the output dir may hold scenes from older descriptions
	res, err := p.deps.Transcript.AssembleKeys(ctx, keys)
	if err != nil {
		return m, fmt.Errorf("assemble transcript: %w", err)
	}
	m.Transcript = res.TextPath
	m.Docx = res.DocxPath

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Narration completed: %d frames", len(m.Frames))
	p.logger.Info(ctx, "Transcript: %s", res.TextPath)
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime).Round(time.Millisecond))
	p.logger.Info(ctx, "========================================")

	return m, nil
}

// processFrame runs one entry through every stage and returns the context
// extended with the raw narration. The fitted text never enters the context.
func (p *implProcessor) processFrame(ctx context.Context, video FrameSource, e timeline.Entry, key cache.Key, story narrative.Log) (FrameRecord, narrative.Log, error) {
	image := filepath.Join(p.deps.OutputDir, key.Base()+".jpg")

	rec := FrameRecord{
		Index:           e.Index,
		StartSeconds:    e.StartSeconds,
		DurationSeconds: e.DurationSeconds,
		Description:     e.Description,
		Image:           image,
	}

	ok, err := video.Extract(ctx, e.StartSeconds, image)
	if err != nil {
		return rec, story, fmt.Errorf("frame %d: extract: %w", e.Index, err)
	}
	rec.FrameExtracted = ok

	raw, err := p.deps.Narrator.Generate(ctx, narrator.Request{
		Key:         key,
		Description: e.Description,
		ImagePath:   image,
		Context:     story,
	})
	if err != nil {
		return rec, story, fmt.Errorf("frame %d: narrate: %w", e.Index, err)
	}
	rec.NarrationWords = fitter.WordCount(raw)

	fitted, err := p.deps.Fitter.Fit(ctx, fitter.Request{
		Key:           key,
		Text:          raw,
		TargetSeconds: e.DurationSeconds,
		Context:       story,
	})
	if err != nil {
		return rec, story, fmt.Errorf("frame %d: fit: %w", e.Index, err)
	}
	rec.FittedWords = fitter.WordCount(fitted)

	sr, err := p.deps.Speech.Synthesize(ctx, speech.Request{
		Key:     key,
		Text:    fitted,
		WavPath: filepath.Join(p.deps.OutputDir, key.Base()+".wav"),
	})
	if err != nil {
		return rec, story, fmt.Errorf("frame %d: synthesize: %w", e.Index, err)
	}
	rec.Audio = sr.MP3Path
	rec.AudioSkipped = string(sr.Skipped)

	return rec, story.Append(raw), nil
}

// Assemble rebuilds the transcript from every fitted narration in the
// output dir, whichever run produced it.
func (p *implProcessor) Assemble(ctx context.Context) (transcript.Result, error) {
	res, err := p.deps.Transcript.Assemble(ctx)
	if err != nil {
		return transcript.Result{}, fmt.Errorf("assemble transcript: %w", err)
	}
	return res, nil
}

func (p *implProcessor) save(ctx context.Context, m *Manifest) {
	if err := saveManifest(m, p.deps.OutputDir); err != nil {
		p.logger.Warn(ctx, "Failed to save run manifest: %v", err)
	}
}
