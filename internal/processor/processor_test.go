package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/narration-flow/internal/cache"
	"github.com/nguyentantai21042004/narration-flow/internal/fitter"
	"github.com/nguyentantai21042004/narration-flow/internal/llm"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
	"github.com/nguyentantai21042004/narration-flow/internal/narrator"
	"github.com/nguyentantai21042004/narration-flow/internal/speech"
	"github.com/nguyentantai21042004/narration-flow/internal/timeline"
	"github.com/nguyentantai21042004/narration-flow/internal/transcript"
	"github.com/nguyentantai21042004/narration-flow/pkg/retry"
)

type fakeVideo struct {
	extracted []int
}

func (f *fakeVideo) Extract(_ context.Context, seconds int, out string) (bool, error) {
	f.extracted = append(f.extracted, seconds)
	return true, os.WriteFile(out, []byte{0xff, 0xd8, 0xff}, 0o644)
}

type fakeNarrator struct {
	contexts [][]string
	failAt   int
}

func (f *fakeNarrator) Generate(_ context.Context, req narrator.Request) (string, error) {
	f.contexts = append(f.contexts, req.Context.Entries())
	if req.Key.Index == f.failAt {
		return "", errors.New("service down")
	}
	return fmt.Sprintf("raw %d", req.Key.Index), nil
}

type fakeFitter struct {
	contexts [][]string
	texts    []string
}

func (f *fakeFitter) Fit(_ context.Context, req fitter.Request) (string, error) {
	f.contexts = append(f.contexts, req.Context.Entries())
	f.texts = append(f.texts, req.Text)
	return fmt.Sprintf("fitted %d", req.Key.Index), nil
}

type fakeSpeech struct {
	texts []string
}

func (f *fakeSpeech) Synthesize(_ context.Context, req speech.Request) (speech.Result, error) {
	f.texts = append(f.texts, req.Text)
	if req.Key.Index == 0 {
		return speech.Result{Skipped: speech.SkipOpening}, nil
	}
	return speech.Result{MP3Path: strings.TrimSuffix(req.WavPath, ".wav") + ".mp3"}, nil
}

type fakeAssembler struct {
	calls int
	keys  []cache.Key
}

func (f *fakeAssembler) Assemble(context.Context) (transcript.Result, error) {
	f.calls++
	return transcript.Result{TextPath: "full_transcript.txt"}, nil
}

func (f *fakeAssembler) AssembleKeys(_ context.Context, keys []cache.Key) (transcript.Result, error) {
	f.calls++
	f.keys = keys
	return transcript.Result{TextPath: "full_transcript.txt", Sections: len(keys)}, nil
}

type harness struct {
	dir       string
	video     *fakeVideo
	narrator  *fakeNarrator
	fitter    *fakeFitter
	speech    *fakeSpeech
	assembler *fakeAssembler
	opened    int
	proc      Processor
}

func newHarness(t *testing.T, description string) *harness {
	t.Helper()
	dir := t.TempDir()
	descPath := filepath.Join(dir, "description.txt")
	if err := os.WriteFile(descPath, []byte(description), 0o644); err != nil {
		t.Fatal(err)
	}
	tl, err := timeline.Open(descPath)
	if err != nil {
		t.Fatal(err)
	}

	h := &harness{
		dir:       filepath.Join(dir, "frames"),
		video:     &fakeVideo{},
		narrator:  &fakeNarrator{failAt: -1},
		fitter:    &fakeFitter{},
		speech:    &fakeSpeech{},
		assembler: &fakeAssembler{},
	}
	h.proc = New(Deps{
		Timeline: tl,
		OpenVideo: func(context.Context) (FrameSource, error) {
			h.opened++
			return h.video, nil
		},
		Narrator:   h.narrator,
		Fitter:     h.fitter,
		Speech:     h.speech,
		Transcript: h.assembler,
		Logger:     logger.NewNop(),
		VideoPath:  "video.mp4",
		OutputDir:  h.dir,
	})
	return h
}

func readManifest(t *testing.T, dir string) Manifest {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	return m
}

const threeScenes = "0:00:00 4 Opening shot\n0:00:05 6 Skier waves\n0:01:05 12 Skier jumps off a cliff\n"

func TestProcessThreadsRawNarration(t *testing.T) {
	h := newHarness(t, threeScenes)

	m, err := h.proc.Process(context.Background())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := [][]string{
		{},
		{"raw 0"},
		{"raw 0", "raw 1"},
	}
	for i := range want {
		if len(h.narrator.contexts[i]) != len(want[i]) || (len(want[i]) > 0 && !reflect.DeepEqual(h.narrator.contexts[i], want[i])) {
			t.Errorf("narrator context %d = %v, want %v", i, h.narrator.contexts[i], want[i])
		}
		if len(h.fitter.contexts[i]) != len(want[i]) || (len(want[i]) > 0 && !reflect.DeepEqual(h.fitter.contexts[i], want[i])) {
			t.Errorf("fitter context %d = %v, want %v", i, h.fitter.contexts[i], want[i])
		}
	}

	if !reflect.DeepEqual(h.fitter.texts, []string{"raw 0", "raw 1", "raw 2"}) {
		t.Errorf("fitter inputs = %v", h.fitter.texts)
	}
	if !reflect.DeepEqual(h.speech.texts, []string{"fitted 0", "fitted 1", "fitted 2"}) {
		t.Errorf("speech inputs = %v", h.speech.texts)
	}
	if !reflect.DeepEqual(h.video.extracted, []int{0, 5, 65}) {
		t.Errorf("extracted = %v", h.video.extracted)
	}
	if h.assembler.calls != 1 {
		t.Errorf("assembler calls = %d", h.assembler.calls)
	}
	wantKeys := []cache.Key{
		cache.NewKey(0, "Opening shot", cache.StageFitted),
		cache.NewKey(1, "Skier waves", cache.StageFitted),
		cache.NewKey(2, "Skier jumps off a cliff", cache.StageFitted),
	}
	if !reflect.DeepEqual(h.assembler.keys, wantKeys) {
		t.Errorf("transcript keys = %v, want %v", h.assembler.keys, wantKeys)
	}

	if m.Status != StatusCompleted || len(m.Frames) != 3 {
		t.Errorf("manifest = %+v", m)
	}
	if m.Frames[0].AudioSkipped != string(speech.SkipOpening) {
		t.Errorf("frame 0 audio = %+v", m.Frames[0])
	}
	if m.Frames[2].Image != filepath.Join(h.dir, "frame_2_Skier_jumps_off_a_cliff.jpg") {
		t.Errorf("frame 2 image = %q", m.Frames[2].Image)
	}

	saved := readManifest(t, h.dir)
	if saved.RunID != m.RunID || saved.Status != StatusCompleted || saved.FinishedAt == nil {
		t.Errorf("saved manifest = %+v", saved)
	}
}

func TestProcessMalformedTimelineAbortsBeforeFrames(t *testing.T) {
	h := newHarness(t, "0:00:00 4 Opening\n0:00:05 6 Fine\nnot a line\n")

	_, err := h.proc.Process(context.Background())
	if !errors.Is(err, timeline.ErrMalformedLine) {
		t.Fatalf("Process() error = %v, want ErrMalformedLine", err)
	}
	if h.opened != 0 || len(h.video.extracted) != 0 || len(h.narrator.contexts) != 0 {
		t.Errorf("work done before validation failed: opened=%d extracted=%v", h.opened, h.video.extracted)
	}

	saved := readManifest(t, h.dir)
	if saved.Status != StatusFailed || saved.Error == "" {
		t.Errorf("saved manifest = %+v", saved)
	}
}

func TestProcessStopsAtFirstFailure(t *testing.T) {
	h := newHarness(t, threeScenes)
	h.narrator.failAt = 1

	_, err := h.proc.Process(context.Background())
	if err == nil || !strings.Contains(err.Error(), "frame 1: narrate") {
		t.Fatalf("Process() error = %v", err)
	}
	if len(h.video.extracted) != 2 {
		t.Errorf("extracted = %v, want frames 0 and 1 only", h.video.extracted)
	}
	if len(h.fitter.texts) != 1 || len(h.speech.texts) != 1 {
		t.Errorf("fitter = %v, speech = %v", h.fitter.texts, h.speech.texts)
	}
	if h.assembler.calls != 0 {
		t.Error("transcript assembled after failure")
	}

	saved := readManifest(t, h.dir)
	if saved.Status != StatusFailed || len(saved.Frames) != 2 {
		t.Errorf("saved manifest = %+v", saved)
	}
}

func TestProcessCanceled(t *testing.T) {
	h := newHarness(t, threeScenes)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.proc.Process(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Process() error = %v, want context.Canceled", err)
	}
}

type countingLLM struct {
	calls int
}

func (c *countingLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	c.calls++
	if req.Image != nil {
		return fmt.Sprintf("narration number %d with several words here", c.calls), nil
	}
	return fmt.Sprintf("short %d", c.calls), nil
}

type countingTTS struct {
	calls int
}

func (c *countingTTS) Speak(context.Context, string) ([]byte, error) {
	c.calls++
	return []byte("RIFF"), nil
}

type copyTranscoder struct{}

func (copyTranscoder) Transcode(_ context.Context, in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return os.WriteFile(out, append([]byte("ID3"), data...), 0o644)
}

type pipeline struct {
	proc     Processor
	out      string
	descPath string
	model    *countingLLM
	tts      *countingTTS
}

// newPipeline wires the real stages over a file store, with only the
// external services faked.
func newPipeline(t *testing.T, description string) *pipeline {
	t.Helper()
	dir := t.TempDir()
	p := &pipeline{
		out:      filepath.Join(dir, "frames"),
		descPath: filepath.Join(dir, "description.txt"),
		model:    &countingLLM{},
		tts:      &countingTTS{},
	}
	if err := os.WriteFile(p.descPath, []byte(description), 0o644); err != nil {
		t.Fatal(err)
	}
	tl, err := timeline.Open(p.descPath)
	if err != nil {
		t.Fatal(err)
	}

	log := logger.NewNop()
	store := cache.NewFileStore(p.out)

	gen, err := narrator.New(p.model, store, narrator.NewImageReader(retry.Policy{MaxRetries: 1}), narrator.Options{
		Model:   "vision",
		Persona: "Narrate {{.Description}}",
	}, log)
	if err != nil {
		t.Fatal(err)
	}

	p.proc = New(Deps{
		Timeline:   tl,
		OpenVideo:  func(context.Context) (FrameSource, error) { return &fakeVideo{}, nil },
		Narrator:   gen,
		Fitter:     fitter.New(p.model, store, fitter.Options{Model: "text"}, log),
		Speech:     speech.New(p.tts, copyTranscoder{}, store, log),
		Transcript: transcript.New(store, transcript.Options{OutputDir: p.out}, log),
		Logger:     log,
		VideoPath:  "video.mp4",
		OutputDir:  p.out,
	})
	return p
}

func (p *pipeline) transcript(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.out, transcript.TextFile))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestProcessResumesFromCache(t *testing.T) {
	p := newPipeline(t, threeScenes)

	if _, err := p.proc.Process(context.Background()); err != nil {
		t.Fatalf("first Process() error = %v", err)
	}
	if p.model.calls != 6 || p.tts.calls != 2 {
		t.Fatalf("first run: llm calls = %d, tts calls = %d; want 6, 2", p.model.calls, p.tts.calls)
	}
	first := p.transcript(t)

	if _, err := p.proc.Process(context.Background()); err != nil {
		t.Fatalf("second Process() error = %v", err)
	}
	if p.model.calls != 6 || p.tts.calls != 2 {
		t.Errorf("second run made external calls: llm = %d, tts = %d", p.model.calls, p.tts.calls)
	}
	if second := p.transcript(t); first != second {
		t.Errorf("transcript changed between runs:\n%s\n---\n%s", first, second)
	}

	if _, err := os.Stat(filepath.Join(p.out, "frame_0_Opening_shot.mp3")); !os.IsNotExist(err) {
		t.Error("opening frame has audio")
	}
	if _, err := os.Stat(filepath.Join(p.out, "frame_1_Skier_waves.mp3")); err != nil {
		t.Errorf("frame 1 audio missing: %v", err)
	}
}

func TestProcessEditedDescriptionDropsOldScenes(t *testing.T) {
	p := newPipeline(t, threeScenes)

	if _, err := p.proc.Process(context.Background()); err != nil {
		t.Fatalf("first Process() error = %v", err)
	}

	edited := "0:00:00 4 Opening shot\n0:00:05 6 Skier falls\n"
	if err := os.WriteFile(p.descPath, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := p.proc.Process(context.Background())
	if err != nil {
		t.Fatalf("second Process() error = %v", err)
	}

	out := p.transcript(t)
	if got := strings.Count(out, "###### "); got != len(m.Frames) || got != 2 {
		t.Errorf("transcript sections = %d, frames = %d; want 2:\n%s", got, len(m.Frames), out)
	}
	for _, stale := range []string{"Skier_waves", "Skier_jumps_off_a_cliff"} {
		if strings.Contains(out, stale) {
			t.Errorf("transcript still has %s:\n%s", stale, out)
		}
	}
	if !strings.Contains(out, "###### frame_1_Skier_falls.adjusted.txt #######") {
		t.Errorf("transcript missing the edited scene:\n%s", out)
	}

	// the cached artifacts of removed scenes stay on disk for the transcript command
	if _, err := os.Stat(filepath.Join(p.out, "frame_2_Skier_jumps_off_a_cliff.adjusted.txt")); err != nil {
		t.Errorf("old fitted narration removed: %v", err)
	}
}

func TestAssembleUsesWholeStore(t *testing.T) {
	h := newHarness(t, threeScenes)

	if _, err := h.proc.Assemble(context.Background()); err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if h.assembler.calls != 1 || h.assembler.keys != nil {
		t.Errorf("assembler calls = %d, keys = %v; want the store-wide path", h.assembler.calls, h.assembler.keys)
	}
	if h.opened != 0 {
		t.Error("video opened for transcript-only assembly")
	}
}
