package testutil

import (
	"bytes"

	"go.uber.org/zap"

	"app-transcript/internal/app/model"
)

// Sample media payloads; their content only matters for fingerprinting
var (
	SampleMP3   = append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), bytes.Repeat([]byte{0xff, 0xfb, 0x90, 0x64}, 256)...)
	SampleMP4   = append([]byte("\x00\x00\x00\x18ftypmp42"), bytes.Repeat([]byte{0x00, 0x01, 0x02, 0x03}, 256)...)
	SampleAudio = []byte("ID3 extracted audio track")
)

// NewUpload wraps content as an upload of the given kind
func NewUpload(kind model.MediaKind, filename string, content []byte) *model.UploadedFile {
	return &model.UploadedFile{
		Kind:     kind,
		Filename: filename,
		Size:     int64(len(content)),
		Content:  bytes.NewReader(content),
	}
}

// NopLogger returns a logger that discards everything
func NopLogger() *zap.Logger {
	return zap.NewNop()
}
