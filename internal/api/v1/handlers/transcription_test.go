package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"app-transcript/internal/api/middleware"
	"app-transcript/internal/api/server"
	"app-transcript/internal/api/v1/handlers"
	"app-transcript/internal/app/cache"
	apperrors "app-transcript/internal/app/errors"
	"app-transcript/internal/app/testutil"
	"app-transcript/internal/app/transcript"
	"app-transcript/internal/app/util/files"
)

type testEnv struct {
	router      *gin.Engine
	transcriber *testutil.MockTranscriber
	extractor   *testutil.FakeExtractor
	cookie      *http.Cookie
}

func setupTestRouter(t *testing.T, maxUploadMB int64) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ws, err := files.NewWorkspace(t.TempDir(), nil)
	require.NoError(t, err)

	tr := testutil.NewMockTranscriber()
	ex := &testutil.FakeExtractor{Audio: testutil.SampleAudio}
	metrics := transcript.NewMetrics()
	svc := transcript.NewService(tr, ex, ws, transcript.Config{Language: "pt"}, metrics, nil)

	store := cache.NewMemoryStore(time.Hour)
	t.Cleanup(func() { store.Close() })

	handler := handlers.NewTranscriptionHandler(svc, store, maxUploadMB, nil)
	srv, err := server.NewServer(server.Config{
		Addr:        "127.0.0.1:0",
		MaxUploadMB: maxUploadMB,
		SessionTTL:  time.Hour,
		Environment: "test",
	}, handler, metrics.Registry(), testutil.NopLogger())
	require.NoError(t, err)

	return &testEnv{router: srv.Router(), transcriber: tr, extractor: ex}
}

// do sends req and keeps the session cookie for the following requests
func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			e.cookie = c
		}
	}
	return rec
}

func uploadRequest(t *testing.T, path string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestIndexPage(t *testing.T) {
	env := setupTestRouter(t, 10)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, "App Transcript")
	assert.Contains(t, html, "Use prompts curtos para orientar a transcrição (opcional).")
	assert.Contains(t, html, `accept=".mp4"`)
	assert.Contains(t, html, `accept=".mp3"`)
	assert.Less(t, strings.Index(html, "Transcrição de Vídeo"), strings.Index(html, "Transcrição de Áudio"), "video tab comes first")
	require.NotNil(t, env.cookie, "a session cookie is issued on first visit")
}

func TestCreateTranscription(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		filename       string
		content        []byte
		setupMocks     func(*testEnv)
		expectedStatus int
		validateBody   func(*testing.T, map[string]interface{})
		expectedCalls  int
	}{
		{
			name:     "audio upload",
			path:     "/api/v1/transcriptions/audio",
			filename: "talk.mp3",
			content:  testutil.SampleMP3,
			setupMocks: func(e *testEnv) {
				e.transcriber.On("Transcribe", mock.Anything, mock.Anything).Return("olá mundo", nil).Once()
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "audio", body["kind"])
				assert.Equal(t, "talk.mp3", body["filename"])
				assert.Equal(t, "olá mundo", body["text"])
				assert.Equal(t, false, body["cached"])
				assert.Len(t, body["fingerprint"], 64)
			},
			expectedCalls: 1,
		},
		{
			name:           "video without audio track",
			path:           "/api/v1/transcriptions/video",
			filename:       "silent.mp4",
			content:        testutil.SampleMP4,
			setupMocks:     func(e *testEnv) { e.extractor.Err = apperrors.ErrNoAudioTrack },
			expectedStatus: http.StatusUnprocessableEntity,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "no_audio_track", body["kind"])
				assert.NotEmpty(t, body["request_id"])
			},
		},
		{
			name:     "remote failure",
			path:     "/api/v1/transcriptions/audio",
			filename: "talk.mp3",
			content:  testutil.SampleMP3,
			setupMocks: func(e *testEnv) {
				e.transcriber.On("Transcribe", mock.Anything, mock.Anything).
					Return("", apperrors.Remote(fmt.Errorf("status 401"), apperrors.CodeAuthentication, "OpenAI API authentication failed")).Once()
			},
			expectedStatus: http.StatusBadGateway,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "remote_service_failure", body["kind"])
				assert.Equal(t, apperrors.CodeAuthentication, body["code"])
			},
			expectedCalls: 1,
		},
		{
			name:           "wrong extension",
			path:           "/api/v1/transcriptions/audio",
			filename:       "song.wav",
			content:        testutil.SampleMP3,
			setupMocks:     func(e *testEnv) {},
			expectedStatus: http.StatusUnprocessableEntity,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "validation", body["kind"])
			},
		},
		{
			name:           "missing file",
			path:           "/api/v1/transcriptions/audio",
			setupMocks:     func(e *testEnv) {},
			expectedStatus: http.StatusUnprocessableEntity,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				details := body["details"].(map[string]interface{})
				assert.Equal(t, "is required", details["file"])
			},
		},
		{
			name:           "unknown kind",
			path:           "/api/v1/transcriptions/image",
			filename:       "a.png",
			content:        []byte("png"),
			setupMocks:     func(e *testEnv) {},
			expectedStatus: http.StatusUnprocessableEntity,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				details := body["details"].(map[string]interface{})
				assert.Contains(t, details["kind"], "must be one of")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestRouter(t, 10)
			tt.setupMocks(env)

			rec := env.do(uploadRequest(t, tt.path, map[string]string{"prompt": "technical terms"}, tt.filename, tt.content))

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			tt.validateBody(t, decode(t, rec))
			assert.Equal(t, tt.expectedCalls, env.transcriber.CallCount())
		})
	}
}

func TestRepeatedUploadIsServedFromSession(t *testing.T) {
	env := setupTestRouter(t, 10)
	env.transcriber.On("Transcribe", mock.Anything, mock.Anything).Return("olá mundo", nil).Once()

	first := env.do(uploadRequest(t, "/api/v1/transcriptions/audio", nil, "talk.mp3", testutil.SampleMP3))
	require.Equal(t, http.StatusOK, first.Code)

	second := env.do(uploadRequest(t, "/api/v1/transcriptions/audio", nil, "talk.mp3", testutil.SampleMP3))
	require.Equal(t, http.StatusOK, second.Code)
	body := decode(t, second)
	assert.Equal(t, true, body["cached"])
	assert.Equal(t, "olá mundo", body["text"])
	assert.Equal(t, 1, env.transcriber.CallCount())

	// a new browser session starts with an empty cache
	env.cookie = nil
	env.transcriber.On("Transcribe", mock.Anything, mock.Anything).Return("olá mundo", nil).Once()
	third := env.do(uploadRequest(t, "/api/v1/transcriptions/audio", nil, "talk.mp3", testutil.SampleMP3))
	require.Equal(t, http.StatusOK, third.Code)
	assert.Equal(t, false, decode(t, third)["cached"])
	assert.Equal(t, 2, env.transcriber.CallCount())
}

func TestPageRendersResult(t *testing.T) {
	env := setupTestRouter(t, 10)
	env.transcriber.On("Transcribe", mock.Anything, mock.Anything).Return("olá do vídeo", nil).Once()

	rec := env.do(uploadRequest(t, "/transcribe/video", map[string]string{"prompt": "nomes próprios"}, "clip.mp4", testutil.SampleMP4))

	assert.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, "Transcrição concluída com sucesso.")
	assert.Contains(t, html, "olá do vídeo")
	assert.Contains(t, html, "Tamanho do arquivo: 0.00 MB")
	assert.Contains(t, html, `value="nomes próprios"`)
	assert.Equal(t, "nomes próprios", env.transcriber.Calls()[0].Prompt)
}

func TestPageRendersErrors(t *testing.T) {
	env := setupTestRouter(t, 10)
	env.transcriber.On("Transcribe", mock.Anything, mock.Anything).
		Return("", apperrors.Remote(fmt.Errorf("status 503"), apperrors.CodeServiceError, "OpenAI API service error")).Once()

	rec := env.do(uploadRequest(t, "/transcribe/audio", nil, "talk.mp3", testutil.SampleMP3))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, "Erro ao transcrever áudio")
	assert.NotContains(t, html, "Transcrição concluída com sucesso.")

	// the failure is remembered for the session
	rec = env.do(uploadRequest(t, "/transcribe/audio", nil, "talk.mp3", testutil.SampleMP3))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "falhou anteriormente")
	assert.Equal(t, 1, env.transcriber.CallCount())

	env.transcriber.On("Transcribe", mock.Anything, mock.Anything).Return("segunda tentativa", nil).Once()
	rec = env.do(uploadRequest(t, "/transcribe/audio", map[string]string{"retry": "true"}, "talk.mp3", testutil.SampleMP3))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "segunda tentativa")
}

func TestPageWithoutFileIsNoOp(t *testing.T) {
	env := setupTestRouter(t, 10)

	rec := env.do(uploadRequest(t, "/transcribe/audio", map[string]string{"prompt": "x"}, "", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Resultado")
	assert.Equal(t, 0, env.transcriber.CallCount())
}

func TestUploadTooLarge(t *testing.T) {
	env := setupTestRouter(t, 1)

	big := bytes.Repeat([]byte{0xff}, 3*1024*1024)
	rec := env.do(uploadRequest(t, "/api/v1/transcriptions/audio", nil, "big.mp3", big))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "too_large", decode(t, rec)["kind"])
	assert.Equal(t, 0, env.transcriber.CallCount())
}

func TestSessionEntriesAndExport(t *testing.T) {
	env := setupTestRouter(t, 10)
	env.transcriber.On("Transcribe", mock.Anything, mock.Anything).Return("olá mundo", nil).Once()

	rec := env.do(uploadRequest(t, "/api/v1/transcriptions/audio", nil, "talk.mp3", testutil.SampleMP3))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/session/entries", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, env.cookie.Value, body["session"])
	assert.Equal(t, float64(1), body["total"])
	entry := body["entries"].([]interface{})[0].(map[string]interface{})
	assert.True(t, strings.HasPrefix(entry["key"].(string), "audio_"))
	assert.Equal(t, "olá mundo", entry["text"])

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/session/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	file, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	assert.Len(t, file.Sheets[0].Rows, 2)
}

func TestHealthAndMetrics(t *testing.T) {
	env := setupTestRouter(t, 10)
	env.transcriber.On("Transcribe", mock.Anything, mock.Anything).Return("olá", nil).Once()
	env.do(uploadRequest(t, "/api/v1/transcriptions/audio", nil, "talk.mp3", testutil.SampleMP3))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `transcript_flows_total{kind="audio",outcome="done"} 1`)
}
