// Package narrative holds the running narration context passed from one
// frame to the next.
package narrative

import "github.com/nguyentantai21042004/narration-flow/internal/llm"

// Log is an immutable, ordered list of prior raw narrations.
// The zero value is an empty log.
type Log struct {
	entries []string
}

// Append returns a new Log with text at the end. The receiver is unchanged.
func (l Log) Append(text string) Log {
	next := make([]string, len(l.entries), len(l.entries)+1)
	copy(next, l.entries)
	return Log{entries: append(next, text)}
}

func (l Log) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the narrations in order.
func (l Log) Entries() []string {
	return append([]string(nil), l.entries...)
}

// Turns renders the log as assistant turns of a conversation.
func (l Log) Turns() []llm.Turn {
	turns := make([]llm.Turn, 0, len(l.entries))
	for _, e := range l.entries {
		turns = append(turns, llm.Turn{Role: llm.RoleAssistant, Text: e})
	}
	return turns
}
