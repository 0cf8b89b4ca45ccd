package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alkime/audioscribe/internal/document"
	"github.com/alkime/audioscribe/internal/export"
	"github.com/alkime/audioscribe/internal/media"
	"github.com/alkime/audioscribe/internal/session"
	"github.com/alkime/audioscribe/internal/views"
)

const workspaceKey = "workspace"

type textRequest struct {
	Text string `json:"text"`
}

type markupRequest struct {
	Markup string `json:"markup"`
}

type instructionRequest struct {
	Instruction string `json:"instruction"`
}

type tabRequest struct {
	Tab string `json:"tab"`
}

// Offsets in fragment and command requests are UTF-16 code units, the unit
// of browser selection APIs.
type fragmentRequest struct {
	Source string `json:"source"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Text   string `json:"text"`
}

type commandRequest struct {
	Command string `json:"command"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sizeHint":        media.SizeHint,
		"accept":          "audio/*,video/*",
		"formats":         export.Formats,
		"commands":        document.Commands,
		"placeholder":     document.Placeholder,
		"maxUploadBytes":  s.config.MaxUploadBytes,
		"processingLabel": session.ProcessingMessage,
	})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	id, ws, err := s.store.Create()
	if err != nil {
		s.fail(c, fmt.Errorf("failed to create session: %w", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       id,
		"snapshot": ws.Sync(),
	})
}

// loadWorkspace resolves :id and refreshes the views before the handler runs.
func (s *Server) loadWorkspace(c *gin.Context) {
	ws, err := s.store.Get(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ws.Sync()
	c.Set(workspaceKey, ws)
	c.Next()
}

func workspace(c *gin.Context) *session.Workspace {
	return c.MustGet(workspaceKey).(*session.Workspace) //nolint:forcetypeassert // set by loadWorkspace
}

func (s *Server) respond(c *gin.Context, status int, ws *session.Workspace) {
	c.JSON(status, ws.Sync())
}

// fail maps session and validation errors to status codes.
func (s *Server) fail(c *gin.Context, err error) {
	var verr *media.ValidationError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNoFile),
		errors.Is(err, session.ErrNoTranscript),
		errors.Is(err, session.ErrBlankInstruction),
		errors.Is(err, session.ErrNotEditable),
		errors.Is(err, document.ErrUnknownCommand):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	s.respond(c, http.StatusOK, workspace(c))
}

func (s *Server) handleUpload(c *gin.Context) {
	ws := workspace(c)
	if ws.Picker.Disabled() {
		s.fail(c, session.ErrBusy)
		return
	}

	if s.config.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.MaxUploadBytes)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		s.badRequest(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	if !media.Accepts(fh.Header.Get("Content-Type")) {
		s.fail(c, &media.ValidationError{Name: fh.Filename, MIMEType: fh.Header.Get("Content-Type")})
		return
	}

	f, err := media.FromUpload(fh)
	if err != nil {
		s.fail(c, err)
		return
	}

	if err := ws.Picker.Pick(f); err != nil {
		_ = f.Release()
		s.fail(c, err)
		return
	}

	s.logger.Info("file selected", "name", f.Name, "type", f.MIMEType, "size", f.Size)
	s.respond(c, http.StatusOK, ws)
}

func (s *Server) handleClearFile(c *gin.Context) {
	ws := workspace(c)
	if ws.Picker.Disabled() {
		s.fail(c, session.ErrBusy)
		return
	}

	ws.Picker.Clear()
	s.respond(c, http.StatusOK, ws)
}

func (s *Server) handleTranscribe(c *gin.Context) {
	ws := workspace(c)
	if err := ws.Transcribe(); err != nil {
		s.fail(c, err)
		return
	}

	s.respond(c, http.StatusAccepted, ws)
}

func (s *Server) handleDismiss(c *gin.Context) {
	ws := workspace(c)
	ws.Dismiss()
	s.respond(c, http.StatusOK, ws)
}

func (s *Server) handleRefine(c *gin.Context) {
	var req instructionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	ws := workspace(c)
	if err := ws.Refine(req.Instruction); err != nil {
		s.fail(c, err)
		return
	}

	s.respond(c, http.StatusAccepted, ws)
}

func (s *Server) handleSetTranscript(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	ws := workspace(c)
	if err := ws.SetTranscript(req.Text); err != nil {
		s.fail(c, err)
		return
	}

	s.respond(c, http.StatusOK, ws)
}

func (s *Server) handleSetRemix(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	ws := workspace(c)
	ws.Remix.SetContent(req.Text)
	s.respond(c, http.StatusOK, ws)
}

func (s *Server) handleSetInstruction(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	ws := workspace(c)
	ws.SetInstruction(req.Text)
	s.respond(c, http.StatusOK, ws)
}

func (s *Server) handleSetFinal(c *gin.Context) {
	var req markupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	ws := workspace(c)
	ws.Final.SetContent(req.Markup)
	s.respond(c, http.StatusOK, ws)
}

func (s *Server) handleAddFragment(c *gin.Context) {
	var req fragmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	ws := workspace(c)

	var captured bool
	switch req.Source {
	case "":
		captured = req.Text != ""
		ws.AddToFinal(req.Text)
	case "transcript", string(session.TabOriginal):
		captured = ws.Original.Capture(views.SelectionFromUTF16(ws.Original.Content(), req.Start, req.End))
	case string(session.TabRemix):
		captured = ws.Remix.Capture(views.SelectionFromUTF16(ws.Remix.Content(), req.Start, req.End))
	default:
		s.badRequest(c, fmt.Errorf("unknown fragment source %q", req.Source))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"captured": captured,
		"snapshot": ws.Sync(),
	})
}

func (s *Server) handleCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	cmd, err := document.ParseCommand(req.Command)
	if err != nil {
		s.fail(c, err)
		return
	}

	ws := workspace(c)
	if err := ws.Final.Exec(cmd, views.SelectionFromUTF16(ws.Final.Text(), req.Start, req.End)); err != nil {
		s.fail(c, err)
		return
	}

	s.respond(c, http.StatusOK, ws)
}

func (s *Server) handleSetTab(c *gin.Context) {
	var req tabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	tab, err := session.ParseTab(req.Tab)
	if err != nil {
		s.badRequest(c, err)
		return
	}

	ws := workspace(c)
	if err := ws.SetTab(tab); err != nil {
		s.fail(c, err)
		return
	}

	s.respond(c, http.StatusOK, ws)
}

func (s *Server) handleClear(c *gin.Context) {
	ws := workspace(c)
	ws.Clear()
	s.respond(c, http.StatusOK, ws)
}

func (s *Server) handleExport(c *gin.Context) {
	target := c.Param("target")
	if target == "transcript" {
		target = string(session.TabOriginal)
	}

	tab, err := session.ParseTab(target)
	if err != nil {
		s.badRequest(c, err)
		return
	}

	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.TXT)))
	if err != nil {
		s.badRequest(c, err)
		return
	}

	snap := workspace(c).Snapshot()
	text, suffix := snap.Export(tab)

	data, err := export.Render(text, format)
	if err != nil {
		s.fail(c, fmt.Errorf("failed to render %s: %w", format, err))
		return
	}

	name := export.FileName(snap.BaseName, suffix, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, format.ContentType(), data)
}
