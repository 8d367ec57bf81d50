// Package transcript joins the fitted narrations into one document.
package transcript

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/narration-flow/internal/cache"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
	"github.com/nguyentantai21042004/narration-flow/pkg/fsutil"
)

const (
	TextFile = "full_transcript.txt"
	DocxFile = "full_transcript.docx"
)

// Section is one frame's fitted narration.
type Section struct {
	Index int
	Name  string
	Text  string
}

type Result struct {
	Sections int
	TextPath string
	DocxPath string
}

// Assembler writes the transcript. Assemble covers every fitted narration in
// the store; AssembleKeys covers exactly the given keys, in order.
type Assembler interface {
	Assemble(ctx context.Context) (Result, error)
	AssembleKeys(ctx context.Context, keys []cache.Key) (Result, error)
}

type Options struct {
	OutputDir string
	WrapWidth int
	Docx      bool
	Title     string
}

type implAssembler struct {
	store  cache.Store
	opts   Options
	logger logger.Logger
}

func New(store cache.Store, opts Options, log logger.Logger) Assembler {
	if opts.WrapWidth <= 0 {
		opts.WrapWidth = 80
	}
	if opts.Title == "" {
		opts.Title = "Transcript"
	}
	return &implAssembler{store: store, opts: opts, logger: log}
}

// Assemble reads every fitted narration in the store in frame-index order
// and writes the transcript.
func (a *implAssembler) Assemble(ctx context.Context) (Result, error) {
	keys, err := a.store.List(ctx, cache.StageFitted)
	if err != nil {
		return Result{}, fmt.Errorf("list fitted narrations: %w", err)
	}
	return a.AssembleKeys(ctx, keys)
}

// AssembleKeys writes the text transcript for keys, plus the docx variant
// when enabled. A key without a stored narration is an error.
func (a *implAssembler) AssembleKeys(ctx context.Context, keys []cache.Key) (Result, error) {
	sections, err := a.collect(ctx, keys)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Sections: len(sections),
		TextPath: filepath.Join(a.opts.OutputDir, TextFile),
	}

	if err := fsutil.WriteFileAtomic(res.TextPath, []byte(Render(sections, a.opts.WrapWidth)), 0o644); err != nil {
		return Result{}, fmt.Errorf("write transcript: %w", err)
	}

	if a.opts.Docx {
		res.DocxPath = filepath.Join(a.opts.OutputDir, DocxFile)
		if err := writeDocx(a.opts.Title, sections, res.DocxPath); err != nil {
			return Result{}, fmt.Errorf("write docx transcript: %w", err)
		}
	}

	a.logger.Info(ctx, "Transcript written: %s (%d sections)", res.TextPath, res.Sections)
	return res, nil
}

func (a *implAssembler) collect(ctx context.Context, keys []cache.Key) ([]Section, error) {
	sections := make([]Section, 0, len(keys))
	for _, k := range keys {
		k = k.WithStage(cache.StageFitted)
		data, ok, err := a.store.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", k.Name(), err)
		}
		if !ok {
			return nil, fmt.Errorf("read %s: no fitted narration", k.Name())
		}
		sections = append(sections, Section{Index: k.Index, Name: k.Name(), Text: string(data)})
	}
	return sections, nil
}

// Render lays sections out as banner, wrapped text and a blank separator.
func Render(sections []Section, width int) string {
	var b strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&b, "###### %s #######\n", s.Name)
		b.WriteString(Wrap(s.Text, width))
		b.WriteString("\n\n\n")
	}
	return b.String()
}
