package session

import (
	"fmt"

	"github.com/alkime/audioscribe/internal/document"
	"github.com/alkime/audioscribe/internal/export"
	"github.com/alkime/audioscribe/internal/media"
)

// ProcessingMessage is shown while a transcription is in flight.
const ProcessingMessage = "Analyzing audio file..."

// Status is the transcription lifecycle.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// State is the processing state. Message is set for Processing and Error.
type State struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

func idle() State                 { return State{Status: StatusIdle} }
func processing(msg string) State { return State{Status: StatusProcessing, Message: msg} }
func completed() State            { return State{Status: StatusCompleted} }
func failed(msg string) State     { return State{Status: StatusError, Message: msg} }

// Tab is the pane in front.
type Tab string

const (
	TabOriginal Tab = "original"
	TabRemix    Tab = "remix"
	TabFinal    Tab = "final"
)

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case TabOriginal, TabRemix, TabFinal:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tab %q", s)
	}
}

// FileInfo describes the selected file without its bytes.
type FileInfo struct {
	Name      string `json:"name"`
	MIMEType  string `json:"mimeType"`
	Size      int64  `json:"size"`
	SizeLabel string `json:"sizeLabel"`
	IsVideo   bool   `json:"isVideo"`
}

func fileInfo(f *media.File) *FileInfo {
	if f == nil {
		return nil
	}

	return &FileInfo{
		Name:      f.Name,
		MIMEType:  f.MIMEType,
		Size:      f.Size,
		SizeLabel: f.SizeLabel(),
		IsVideo:   f.IsVideo(),
	}
}

// Snapshot is a copy of everything a front end renders.
type Snapshot struct {
	File        *FileInfo `json:"file"`
	State       State     `json:"state"`
	Transcript  string    `json:"transcript"`
	Remix       string    `json:"remix"`
	Instruction string    `json:"instruction"`
	FinalMarkup string    `json:"finalMarkup"`
	Tab         Tab       `json:"tab"`
	Refining    bool      `json:"refining"`
	BaseName    string    `json:"baseName"`
}

// HasResult reports whether the result panes should show.
func (s Snapshot) HasResult() bool {
	return s.State.Status == StatusCompleted && s.Transcript != ""
}

// CanTranscribe reports whether the transcribe action should be offered.
func (s Snapshot) CanTranscribe() bool {
	return s.File != nil && !s.HasResult()
}

// Busy reports whether the file control is inert.
func (s Snapshot) Busy() bool {
	return s.State.Status == StatusProcessing
}

// Export returns the text exported for a pane and the file name suffix that
// goes with it. The final document is reduced to plain text.
func (s Snapshot) Export(tab Tab) (text, suffix string) {
	switch tab {
	case TabRemix:
		return s.Remix, export.SuffixRemix
	case TabFinal:
		return document.PlainText(s.FinalMarkup), export.SuffixFinal
	default:
		return s.Transcript, export.SuffixOriginal
	}
}

func baseName(f *media.File) string {
	if f == nil {
		return media.DefaultBaseName
	}

	return media.BaseName(f.Name)
}

// initialFinal is the markup of a fresh final document.
const initialFinal = document.Placeholder
