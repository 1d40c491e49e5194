package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"app-transcript/internal/app/api"
	"app-transcript/internal/app/audio"
	"app-transcript/internal/app/cache"
	apperrors "app-transcript/internal/app/errors"
	"app-transcript/internal/app/model"
	"app-transcript/internal/app/util/files"
	"app-transcript/internal/app/utils"
)

// Stage is a step of one flow invocation
type Stage string

const (
	StageIdle         Stage = "idle"
	StageWriting      Stage = "writing"
	StageExtracting   Stage = "extracting"
	StageTranscribing Stage = "transcribing"
	StageDone         Stage = "done"
	StageFailed       Stage = "failed"
)

// Options are the user inputs that accompany an upload
type Options struct {
	Prompt string
	// Retry skips the cache lookup so a previously failed file can be sent again
	Retry bool
}

// Result is what a flow hands to the presentation layer
type Result struct {
	Kind        model.MediaKind
	Filename    string
	Fingerprint string
	SizeBytes   int64
	Text        string
	Cached      bool
	// PreviouslyFailed is set when the cache only holds a failed attempt
	PreviouslyFailed bool
}

// SizeMB returns the upload size in megabytes rounded to two decimals
func (r *Result) SizeMB() float64 {
	return model.SizeMB(r.SizeBytes)
}

// Config carries the fixed parameters of every transcription call
type Config struct {
	Language string
	Timeout  time.Duration
}

// Service runs the audio and video flows
type Service struct {
	transcriber api.Transcriber
	extractor   audio.Extractor
	workspace   *files.Workspace
	config      Config
	metrics     *Metrics
	logger      *zap.Logger
	inflight    singleflight.Group
}

// NewService wires the flow dependencies
func NewService(
	transcriber api.Transcriber,
	extractor audio.Extractor,
	workspace *files.Workspace,
	config Config,
	metrics *Metrics,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		transcriber: transcriber,
		extractor:   extractor,
		workspace:   workspace,
		config:      config,
		metrics:     metrics,
		logger:      logger,
	}
}

// Metrics returns the service's collectors
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

// Transcribe dispatches to the flow matching upload.Kind
func (s *Service) Transcribe(ctx context.Context, c cache.Cache, upload *model.UploadedFile, opts Options) (*Result, error) {
	if upload == nil {
		return nil, nil
	}
	switch upload.Kind {
	case model.KindVideo:
		return s.TranscribeVideo(ctx, c, upload, opts)
	default:
		return s.TranscribeAudio(ctx, c, upload, opts)
	}
}

// TranscribeAudio sends the uploaded audio bytes straight to the
// transcription service. A nil upload is a no-op.
func (s *Service) TranscribeAudio(ctx context.Context, c cache.Cache, upload *model.UploadedFile, opts Options) (*Result, error) {
	return s.run(ctx, c, upload, model.KindAudio, opts, s.audioFlow)
}

// TranscribeVideo extracts the audio track of the uploaded video into
// scratch files and transcribes it. Scratch files are removed on every exit
// path. A nil upload is a no-op.
func (s *Service) TranscribeVideo(ctx context.Context, c cache.Cache, upload *model.UploadedFile, opts Options) (*Result, error) {
	return s.run(ctx, c, upload, model.KindVideo, opts, s.videoFlow)
}

type flowFunc func(ctx context.Context, upload *model.UploadedFile, fingerprint string, opts Options, log *zap.Logger) (string, error)

func (s *Service) run(ctx context.Context, c cache.Cache, upload *model.UploadedFile, kind model.MediaKind, opts Options, flow flowFunc) (*Result, error) {
	if upload == nil || upload.Content == nil {
		return nil, nil
	}
	if upload.Kind != kind || !upload.HasExtension() {
		return nil, apperrors.Newf(apperrors.KindInvalidUpload, "%s uploads must be %s files", kind, kind.Extension())
	}

	fingerprint, err := utils.Fingerprint(upload.Content)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, "failed to fingerprint upload")
	}

	result := &Result{
		Kind:        kind,
		Filename:    upload.Filename,
		Fingerprint: fingerprint,
		SizeBytes:   upload.Size,
	}
	log := s.logger.With(
		zap.String("kind", string(kind)),
		zap.String("session", c.ID()),
		zap.String("fingerprint", fingerprint),
	)

	if !opts.Retry {
		entry, ok, err := c.Get(ctx, kind, fingerprint)
		if err != nil {
			log.Warn("cache lookup failed, transcribing anyway", zap.Error(err))
		} else if ok {
			log.Debug("cache hit")
			s.metrics.flow(string(kind), OutcomeCached)
			result.Cached = true
			result.Text = entry.Text
			result.PreviouslyFailed = entry.Failed
			return result, nil
		}
	}

	s.metrics.upload(string(kind), upload.Size)

	key := c.ID() + "|" + cache.Key(kind, fingerprint)
	for {
		ch := s.inflight.DoChan(key, func() (interface{}, error) {
			return s.shared(ctx, c, upload, kind, fingerprint, opts, log, flow)
		})

		var res singleflight.Result
		select {
		case <-ctx.Done():
			s.metrics.flow(string(kind), OutcomeCancelled)
			log.Info("flow finished", zap.String("stage", string(StageFailed)), zap.Error(ctx.Err()))
			return nil, fmt.Errorf("%s transcription: %w", kind, ctx.Err())
		case res = <-ch:
		}

		if errors.Is(res.Err, errAbandoned) && ctx.Err() == nil {
			log.Debug("shared attempt was abandoned, running again")
			continue
		}
		if res.Err != nil {
			s.metrics.flow(string(kind), OutcomeFailed)
			log.Info("flow finished", zap.String("stage", string(StageFailed)), zap.Error(res.Err))
			return nil, res.Err
		}

		s.metrics.flow(string(kind), OutcomeDone)
		log.Info("flow finished", zap.String("stage", string(StageDone)))
		result.Text = res.Val.(string)
		return result, nil
	}
}

// errAbandoned marks a shared attempt that failed after the caller feeding
// it went away. Such failures are not cached.
var errAbandoned = errors.New("transcription abandoned by its caller")

// shared runs flow once for every caller waiting on the same session and key.
// It is detached from ctx so one caller leaving does not fail the others.
func (s *Service) shared(ctx context.Context, c cache.Cache, upload *model.UploadedFile, kind model.MediaKind, fingerprint string, opts Options, log *zap.Logger, flow flowFunc) (string, error) {
	runCtx := context.WithoutCancel(ctx)
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.config.Timeout)
		defer cancel()
	}

	text, err := flow(runCtx, upload, fingerprint, opts, log)
	if err != nil && (ctx.Err() != nil || errors.Is(err, context.Canceled)) {
		log.Warn("attempt failed after its caller left, not caching", zap.Error(err))
		return "", fmt.Errorf("%w: %w", errAbandoned, err)
	}

	entry := cache.Entry{
		Kind:        kind,
		Fingerprint: fingerprint,
		Filename:    upload.Filename,
		Text:        text,
		Failed:      err != nil,
		CreatedAt:   time.Now(),
	}
	if perr := c.Put(runCtx, entry); perr != nil {
		log.Warn("failed to store result in session cache", zap.Error(perr))
	}
	return text, err
}

func (s *Service) audioFlow(ctx context.Context, upload *model.UploadedFile, _ string, opts Options, log *zap.Logger) (string, error) {
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", apperrors.Wrap(err, apperrors.KindInternal, "failed to rewind upload")
	}

	log.Debug("flow stage", zap.String("stage", string(StageTranscribing)))
	return s.callRemote(ctx, model.KindAudio, api.Request{
		Audio:    upload.Content,
		Filename: filepath.Base(upload.Filename),
		Language: s.config.Language,
		Prompt:   opts.Prompt,
	})
}

func (s *Service) videoFlow(ctx context.Context, upload *model.UploadedFile, fingerprint string, opts Options, log *zap.Logger) (string, error) {
	videoPath, audioPath := s.workspace.ScratchPair(fingerprint)
	defer func() {
		s.workspace.Remove(videoPath)
		s.workspace.Remove(audioPath)
	}()

	log.Debug("flow stage", zap.String("stage", string(StageWriting)), zap.String("path", videoPath))
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return "", apperrors.Wrap(err, apperrors.KindInternal, "failed to rewind upload")
	}
	if _, err := s.workspace.Write(videoPath, upload.Content); err != nil {
		return "", apperrors.Wrap(err, apperrors.KindInternal, "failed to write scratch video")
	}

	log.Debug("flow stage", zap.String("stage", string(StageExtracting)))
	if err := s.extractor.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return "", err
	}

	log.Debug("flow stage", zap.String("stage", string(StageTranscribing)))
	f, err := os.Open(audioPath)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.KindMediaDecode, "extracted audio is unreadable")
	}
	defer f.Close()

	return s.callRemote(ctx, model.KindVideo, api.Request{
		Audio:    f,
		Filename: filepath.Base(audioPath),
		Language: s.config.Language,
		Prompt:   opts.Prompt,
	})
}

func (s *Service) callRemote(ctx context.Context, kind model.MediaKind, req api.Request) (string, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.transcriber.Transcribe(ctx, req)
	outcome := OutcomeDone
	if err != nil {
		outcome = OutcomeFailed
		if apperrors.KindOf(err) != apperrors.KindRemoteService {
			err = apperrors.Remote(err, apperrors.CodeServiceError, "transcription failed")
		}
	}
	s.metrics.remote(string(kind), outcome, time.Since(start).Seconds())

	if err != nil {
		return "", fmt.Errorf("%s transcription: %w", kind, err)
	}
	return text, nil
}
