package media

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/narration-flow/internal/config"
)

type call struct {
	name string
	args []string
}

type fakeExecutor struct {
	calls []call
	out   string
	err   error
}

func (f *fakeExecutor) Execute(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	return f.out, f.err
}


func TestProbeDuration(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		err     error
		want    time.Duration
		wantErr bool
	}{
		{"ok", "12.500000\n", nil, 12500 * time.Millisecond, false},
		{"garbage", "N/A\n", nil, 0, true},
		{"exec error", "", errors.New("boom"), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := &fakeExecutor{out: tt.out, err: tt.err}
			tool := New(config.FFmpegConfig{Probe: "/opt/ffprobe"}, fe)

			got, err := tool.ProbeDuration(context.Background(), "in.mp4")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ProbeDuration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ProbeDuration() = %v, want %v", got, tt.want)
			}
			if fe.calls[0].name != "/opt/ffprobe" {
				t.Errorf("binary = %q", fe.calls[0].name)
			}
		})
	}
}

func TestExtractFrameArgs(t *testing.T) {
	fe := &fakeExecutor{}
	tool := New(config.FFmpegConfig{}, fe)

	if err := tool.ExtractFrame(context.Background(), "in.mp4", 65*time.Second, "out.jpg"); err != nil {
		t.Fatalf("ExtractFrame() error = %v", err)
	}

	c := fe.calls[0]
	joined := strings.Join(c.args, " ")
	if c.name != "ffmpeg" {
		t.Errorf("binary = %q", c.name)
	}
	for _, want := range []string{"-ss 65.000", "-i in.mp4", "-frames:v 1", "-q:v 2"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
	if c.args[len(c.args)-1] != "out.jpg" {
		t.Errorf("output = %q", c.args[len(c.args)-1])
	}
}

func TestTranscodeError(t *testing.T) {
	fe := &fakeExecutor{err: errors.New("exit status 1")}
	tool := New(config.FFmpegConfig{AudioQuality: 4}, fe)

	err := tool.Transcode(context.Background(), "a.wav", "a.mp3")
	if err == nil || !strings.Contains(err.Error(), "ffmpeg transcode") {
		t.Fatalf("Transcode() error = %v", err)
	}
	if !strings.Contains(strings.Join(fe.calls[0].args, " "), "-q:a 4") {
		t.Errorf("args = %v", fe.calls[0].args)
	}
}

func TestFmtSeconds(t *testing.T) {
	if got := fmtSeconds(1500 * time.Millisecond); got != "1.500" {
		t.Errorf("fmtSeconds() = %q", got)
	}
}
