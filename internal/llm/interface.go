// Package llm defines the text-generation port used by the narration and
// fitting stages. Adapters live in subpackages.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the service answers without any text.
var ErrEmptyResponse = errors.New("empty response from model")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior message of the conversation.
type Turn struct {
	Role Role
	Text string
}

// Image is attached to the final user turn.
type Image struct {
	Data     []byte
	MIMEType string
}

// Request is a single completion call. System is the instruction, History
// the prior turns, and Prompt plus Image form the final user turn. Either
// may be empty.
type Request struct {
	Model     string
	System    string
	History   []Turn
	Prompt    string
	Image     *Image
	MaxTokens int
}

// Client produces one completion per call. Implementations do not retry.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
