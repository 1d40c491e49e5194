package model

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
)

// MediaKind is the declared kind of an upload
type MediaKind string

const (
	KindAudio MediaKind = "audio"
	KindVideo MediaKind = "video"
)

// Extension returns the single file extension accepted for the kind
func (k MediaKind) Extension() string {
	switch k {
	case KindAudio:
		return ".mp3"
	case KindVideo:
		return ".mp4"
	default:
		return ""
	}
}

// Valid reports whether k is a known kind
func (k MediaKind) Valid() bool {
	return k == KindAudio || k == KindVideo
}

// ParseMediaKind maps a route or flag value to a kind
func ParseMediaKind(s string) (MediaKind, error) {
	k := MediaKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown media kind %q", s)
	}
	return k, nil
}

// KindFromFilename picks the kind whose extension matches filename
func KindFromFilename(filename string) (MediaKind, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, k := range []MediaKind{KindAudio, KindVideo} {
		if k.Extension() == ext {
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported file extension %q", ext)
}

// UploadedFile is one user upload. It lives only as long as the request.
type UploadedFile struct {
	Kind     MediaKind
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

// HasExtension reports whether the filename carries the kind's extension
func (u *UploadedFile) HasExtension() bool {
	return strings.ToLower(filepath.Ext(u.Filename)) == u.Kind.Extension()
}

// SizeMB returns the size in megabytes rounded to two decimals
func SizeMB(size int64) float64 {
	return math.Round(float64(size)/1024/1024*100) / 100
}
