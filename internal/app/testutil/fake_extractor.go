package testutil

import (
	"context"
	"os"
	"sync"

	"app-transcript/internal/app/audio"
)

// FakeExtractor stands in for ffmpeg. It writes Audio to the audio path, or
// returns Err without touching the filesystem.
type FakeExtractor struct {
	Audio []byte
	Err   error

	mu         sync.Mutex
	VideoPaths []string
	AudioPaths []string
	// VideoBytes holds the scratch video content seen on each call
	VideoBytes [][]byte
}

func (f *FakeExtractor) ExtractAudio(_ context.Context, videoPath, audioPath string) error {
	video, err := os.ReadFile(videoPath)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.VideoPaths = append(f.VideoPaths, videoPath)
	f.AudioPaths = append(f.AudioPaths, audioPath)
	f.VideoBytes = append(f.VideoBytes, video)
	f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}
	return os.WriteFile(audioPath, f.Audio, 0o644)
}

// Calls returns how many extractions ran
func (f *FakeExtractor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.VideoPaths)
}

var _ audio.Extractor = (*FakeExtractor)(nil)
