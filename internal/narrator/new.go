package narrator

import (
	"fmt"
	"text/template"

	"github.com/nguyentantai21042004/narration-flow/internal/cache"
	"github.com/nguyentantai21042004/narration-flow/internal/llm"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
)

// Options configures the narration request.
type Options struct {
	Model       string
	Persona     string
	ImagePrompt string
	MaxTokens   int
}

type implGenerator struct {
	client  llm.Client
	store   cache.Store
	images  ImageReader
	persona *template.Template
	opts    Options
	logger  logger.Logger
}

// New creates a Generator. Persona is a text/template receiving
// {{.Description}}.
func New(client llm.Client, store cache.Store, images ImageReader, opts Options, log logger.Logger) (Generator, error) {
	tmpl, err := template.New("persona").Option("missingkey=error").Parse(opts.Persona)
	if err != nil {
		return nil, fmt.Errorf("parse persona: %w", err)
	}
	if opts.ImagePrompt == "" {
		opts.ImagePrompt = "Describe this image"
	}
	return &implGenerator{
		client:  client,
		store:   store,
		images:  images,
		persona: tmpl,
		opts:    opts,
		logger:  log,
	}, nil
}
