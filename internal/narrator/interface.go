package narrator

import (
	"context"

	"github.com/nguyentantai21042004/narration-flow/internal/cache"
	"github.com/nguyentantai21042004/narration-flow/internal/narrative"
)

// Request describes one frame to narrate.
type Request struct {
	Key         cache.Key
	Description string
	ImagePath   string
	Context     narrative.Log
}

// Generator produces the raw narration for a frame, memoized per frame.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
