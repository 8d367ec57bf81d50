package processor

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/narration-flow/pkg/fsutil"
)

const ManifestFile = "run.json"

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Manifest records what one run did. It is rewritten after every frame so
// an interrupted run leaves its progress behind.
type Manifest struct {
	RunID       string        `json:"run_id"`
	Video       string        `json:"video"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  *time.Time    `json:"finished_at,omitempty"`
	Frames      []FrameRecord `json:"frames"`
	Transcript  string        `json:"transcript,omitempty"`
	Docx        string        `json:"docx,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// FrameRecord is the outcome of one timeline entry.
type FrameRecord struct {
	Index           int    `json:"index"`
	StartSeconds    int    `json:"start_seconds"`
	DurationSeconds int    `json:"duration_seconds"`
	Description     string `json:"description"`
	Image           string `json:"image"`
	FrameExtracted  bool   `json:"frame_extracted"`
	NarrationWords  int    `json:"narration_words"`
	FittedWords     int    `json:"fitted_words"`
	Audio           string `json:"audio,omitempty"`
	AudioSkipped    string `json:"audio_skipped,omitempty"`
}

func newRunID() string {
	return uuid.NewString()[:8]
}

func saveManifest(m *Manifest, dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(dir, ManifestFile), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
