package dto

import "app-transcript/internal/app/model"

// Tab is one upload panel of the page
type Tab struct {
	Kind        string
	Label       string
	Title       string
	UploadLabel string
	Accept      string
	Pending     string
}

// Tabs lists the upload panels, video first
var Tabs = []Tab{
	{
		Kind:        string(model.KindVideo),
		Label:       "Vídeo",
		Title:       "Transcrição de Vídeo (.mp4)",
		UploadLabel: "Envie um vídeo .mp4",
		Accept:      model.KindVideo.Extension(),
		Pending:     "Processando vídeo...",
	},
	{
		Kind:        string(model.KindAudio),
		Label:       "Áudio",
		Title:       "Transcrição de Áudio (.mp3)",
		UploadLabel: "Envie um áudio .mp3",
		Accept:      model.KindAudio.Extension(),
		Pending:     "Transcrevendo áudio...",
	},
}

// PageView is the data rendered by the index template
type PageView struct {
	Tabs      []Tab
	ActiveTab string
	Prompt    string
	Result    *TranscriptionResponse
	Error     string
}

// NewPageView returns the page with the given tab selected. Unknown tabs
// fall back to video.
func NewPageView(active string) *PageView {
	if _, err := model.ParseMediaKind(active); err != nil {
		active = string(model.KindVideo)
	}
	return &PageView{Tabs: Tabs, ActiveTab: active}
}
