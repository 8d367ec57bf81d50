package processor

import (
	"github.com/nguyentantai21042004/narration-flow/internal/fitter"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
	"github.com/nguyentantai21042004/narration-flow/internal/narrator"
	"github.com/nguyentantai21042004/narration-flow/internal/speech"
	"github.com/nguyentantai21042004/narration-flow/internal/transcript"
)

// Deps are the stages the orchestrator sequences.
type Deps struct {
	Timeline   Timeline
	OpenVideo  VideoOpener
	Narrator   narrator.Generator
	Fitter     fitter.Fitter
	Speech     speech.Synthesizer
	Transcript transcript.Assembler
	Logger     logger.Logger

	VideoPath string
	OutputDir string
}

type implProcessor struct {
	deps   Deps
	logger logger.Logger
	newID  func() string
}

// New creates a new Processor instance
func New(deps Deps) Processor {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &implProcessor{
		deps:   deps,
		logger: log,
		newID:  newRunID,
	}
}
