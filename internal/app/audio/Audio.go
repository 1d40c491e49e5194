package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	apperrors "app-transcript/internal/app/errors"
	"app-transcript/internal/app/model"
)

// Extractor demuxes the audio track of a video container into a standalone
// compressed audio file.
type Extractor interface {
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
}

// CommandRunner runs an external binary and returns its stdout and stderr
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// FFmpegExtractor implements Extractor with the ffprobe and ffmpeg binaries
type FFmpegExtractor struct {
	ffmpegPath  string
	ffprobePath string
	run         CommandRunner
	logger      *zap.Logger
}

// NewFFmpegExtractor creates an extractor; empty paths fall back to the
// binaries found on PATH
func NewFFmpegExtractor(ffmpegPath, ffprobePath string, logger *zap.Logger) *FFmpegExtractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegExtractor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		run:         execRunner,
		logger:      logger,
	}
}

// Probe lists the streams of a media container
func (e *FFmpegExtractor) Probe(ctx context.Context, path string) (*model.FFProbeOutput, error) {
	stdout, stderr, err := e.run(ctx, e.ffprobePath, "-v", "error", "-print_format", "json", "-show_streams", path)
	if err != nil {
		return nil, apperrors.Wrap(commandError(err, stderr), apperrors.KindMediaDecode, "ffprobe could not read the container")
	}

	var probe model.FFProbeOutput
	if err := json.Unmarshal(stdout, &probe); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindMediaDecode, "ffprobe returned unreadable output")
	}
	return &probe, nil
}

// ExtractAudio writes the audio track of videoPath to audioPath as mp3.
// A container without an audio stream yields ErrNoAudioTrack; every other
// failure is a media decode failure.
func (e *FFmpegExtractor) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	probe, err := e.Probe(ctx, videoPath)
	if err != nil {
		return err
	}
	if !probe.HasAudio() {
		return apperrors.ErrNoAudioTrack
	}

	e.logger.Debug("extracting audio track",
		zap.String("video", videoPath),
		zap.String("audio", audioPath),
	)

	_, stderr, err := e.run(ctx, e.ffmpegPath, "-y", "-v", "error", "-i", videoPath, "-vn", "-acodec", "libmp3lame", audioPath)
	if err != nil {
		return apperrors.Wrap(commandError(err, stderr), apperrors.KindMediaDecode, "ffmpeg could not extract the audio track")
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindMediaDecode, "extracted audio is missing")
	}
	if info.Size() == 0 {
		return apperrors.New(apperrors.KindMediaDecode, "extracted audio is empty")
	}
	return nil
}

func commandError(err error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return err
	}
	return fmt.Errorf("%v, stderr: %s", err, msg)
}
