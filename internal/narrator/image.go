package narrator

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"syscall"

	"github.com/nguyentantai21042004/narration-flow/pkg/retry"
)

// ImageReader reads frame images, waiting out files that are still locked
// by the writer.
type ImageReader struct {
	Policy   retry.Policy
	ReadFile func(string) ([]byte, error)
}

// NewImageReader returns a reader backed by os.ReadFile.
func NewImageReader(p retry.Policy) ImageReader {
	return ImageReader{Policy: p, ReadFile: os.ReadFile}
}

// Read returns the file content. Only lock contention is retried; any
// other error is returned after the first attempt.
func (r ImageReader) Read(ctx context.Context, path string) ([]byte, error) {
	readFile := r.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	var data []byte
	err := retry.Do(ctx, r.Policy, IsLockContention, func() error {
		b, err := readFile(path)
		if err != nil {
			return err
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// IsLockContention reports whether err means another process holds the file.
func IsLockContention(err error) bool {
	return errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.EBUSY)
}
