package model

// FFProbeOutput is the subset of `ffprobe -show_streams -print_format json`
// the extractor reads
type FFProbeOutput struct {
	Streams []FFProbeStream `json:"streams"`
}

// FFProbeStream is one entry of the probe's stream list
type FFProbeStream struct {
	CodecType string `json:"codec_type"`
}

// HasAudio reports whether any stream is an audio stream
func (o FFProbeOutput) HasAudio() bool {
	for _, s := range o.Streams {
		if s.CodecType == "audio" {
			return true
		}
	}
	return false
}
