package cache

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Stage names a memoized pipeline stage.
type Stage string

const (
	StageNarration Stage = "narration"
	StageFitted    Stage = "fitted"
	StageAudio     Stage = "audio"
)

// Ext returns the file suffix used for the stage's artifacts.
func (s Stage) Ext() string {
	switch s {
	case StageNarration:
		return ".txt"
	case StageFitted:
		return ".adjusted.txt"
	case StageAudio:
		return ".mp3"
	}
	return "." + string(s)
}

// Key identifies one frame's artifact for one stage.
type Key struct {
	Index int
	Slug  string
	Stage Stage
}

// NewKey builds a key from a frame index and its raw scene description.
func NewKey(index int, description string, stage Stage) Key {
	return Key{Index: index, Slug: Slug(description), Stage: stage}
}

// WithStage returns the same frame's key for another stage.
func (k Key) WithStage(s Stage) Key {
	k.Stage = s
	return k
}

// Base is the extension-less artifact name shared by all stages of a frame.
func (k Key) Base() string {
	if k.Slug == "" {
		return fmt.Sprintf("frame_%d", k.Index)
	}
	return fmt.Sprintf("frame_%d_%s", k.Index, k.Slug)
}

// Name is the artifact file name.
func (k Key) Name() string {
	return k.Base() + k.Stage.Ext()
}

var invalidFileRunes = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)

// Slug turns a scene description into a file-name fragment: spaces become
// underscores, dots are dropped, and characters that are unsafe in file
// names are removed.
func Slug(description string) string {
	s := strings.ReplaceAll(description, " ", "_")
	s = strings.ReplaceAll(s, ".", "")
	return invalidFileRunes.ReplaceAllString(s, "")
}

var baseName = regexp.MustCompile(`^frame_(\d+)(?:_(.*))?$`)

// ParseName recovers a key from an artifact file name of the given stage.
func ParseName(name string, stage Stage) (Key, bool) {
	ext := stage.Ext()
	if !strings.HasSuffix(name, ext) {
		return Key{}, false
	}
	base := strings.TrimSuffix(name, ext)
	// slugs never contain dots, so "x.adjusted" is not a narration artifact
	if strings.Contains(base, ".") {
		return Key{}, false
	}

	m := baseName.FindStringSubmatch(base)
	if m == nil {
		return Key{}, false
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil {
		return Key{}, false
	}
	return Key{Index: idx, Slug: m[2], Stage: stage}, true
}
