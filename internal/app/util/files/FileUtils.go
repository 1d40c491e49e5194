package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Workspace owns the scratch directory used while extracting audio from
// uploaded video. Every scratch path it hands out is unique, so concurrent
// flows never share a file.
type Workspace struct {
	dir    string
	logger *zap.Logger
}

// NewWorkspace creates dir if it does not exist yet
func NewWorkspace(dir string, logger *zap.Logger) (*Workspace, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work directory %s: %w", dir, err)
	}
	return &Workspace{dir: dir, logger: logger}, nil
}

// Dir returns the scratch directory
func (w *Workspace) Dir() string {
	return w.dir
}

// ScratchPair returns fresh video and audio scratch paths for one flow
// invocation. The fingerprint prefix keeps the files traceable in logs.
func (w *Workspace) ScratchPair(fingerprint string) (videoPath, audioPath string) {
	prefix := fingerprint
	if len(prefix) > 16 {
		prefix = prefix[:16]
	}
	base := fmt.Sprintf("%s-%s", prefix, uuid.New().String()[:8])
	return filepath.Join(w.dir, base+".mp4"), filepath.Join(w.dir, base+".mp3")
}

// Write creates or truncates path and copies r into it
func (w *Workspace) Write(path string, r io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return n, nil
}

// Remove deletes path. A missing file is fine; any other failure is logged
// and swallowed so cleanup never changes the caller's outcome.
func (w *Workspace) Remove(path string) {
	if path == "" {
		return
	}
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}
	w.logger.Warn("failed to remove scratch file",
		zap.String("path", path),
		zap.Error(err),
	)
}
