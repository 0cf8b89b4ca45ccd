package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alkime/audioscribe/internal/config"
	"github.com/alkime/audioscribe/internal/document"
	"github.com/alkime/audioscribe/internal/server"
	"github.com/alkime/audioscribe/internal/session"
)

type fakeService struct {
	refineGate chan struct{}
}

func (f *fakeService) Transcribe(context.Context, []byte, string) (string, error) {
	return "Hello World", nil
}

func (f *fakeService) Refine(ctx context.Context, text, instruction string) (string, error) {
	if f.refineGate != nil {
		select {
		case <-f.refineGate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return strings.ToUpper(text), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Env:            "test",
		Port:           "8080",
		HSTSMaxAge:     31536000,
		CSPMode:        "relaxed",
		LogLevel:       "info",
		MaxUploadBytes: 10 << 20,
	}
}

func newServer(t *testing.T, svc *fakeService) *server.Server {
	t.Helper()

	// Create a test logger (discard output)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:       slog.LevelError, // Only show errors during tests
		AddSource:   false,
		ReplaceAttr: nil,
	}))

	store := session.NewStore(context.Background(), svc, time.Hour)
	t.Cleanup(store.Close)

	return server.New(testConfig(), logger, store)
}

func do(t *testing.T, srv *server.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	return w
}

func upload(t *testing.T, srv *server.Server, id, name, mimeType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/"+id+"/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	return w
}

func createSession(t *testing.T, srv *server.Server) string {
	t.Helper()

	w := do(t, srv, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ID       string           `json:"id"`
		Snapshot session.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	assert.Equal(t, document.Placeholder, resp.Snapshot.FinalMarkup)

	return resp.ID
}

func snapshot(t *testing.T, w *httptest.ResponseRecorder) session.Snapshot {
	t.Helper()

	var snap session.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))

	return snap
}

func transcribe(t *testing.T, srv *server.Server, id string) {
	t.Helper()

	require.Equal(t, http.StatusOK, upload(t, srv, id, "talk.mp3", "audio/mpeg", []byte("ID3 data")).Code)
	require.Equal(t, http.StatusAccepted, do(t, srv, http.MethodPost, "/api/sessions/"+id+"/transcribe", nil).Code)

	ws, err := srv.Store().Get(id)
	require.NoError(t, err)
	ws.Wait()
}

func TestHealthEndpoint(t *testing.T) {
	srv := newServer(t, &fakeService{})

	w := do(t, srv, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code, "Health endpoint should return 200 OK")
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "audioscribe")
}

func TestStaticUI(t *testing.T) {
	srv := newServer(t, &fakeService{})

	w := do(t, srv, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Audio to Document")
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = do(t, srv, http.MethodGet, "/app.js", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfigEndpoint(t *testing.T) {
	srv := newServer(t, &fakeService{})

	w := do(t, srv, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "MP3, WAV, MP4, M4A (Max 2GB)")
}

func TestUnknownSession(t *testing.T) {
	srv := newServer(t, &fakeService{})

	w := do(t, srv, http.MethodGet, "/api/sessions/6f1c2d1e-6a3b-4c55-9d1e-2f3a4b5c6d7e", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpload(t *testing.T) {
	srv := newServer(t, &fakeService{})
	id := createSession(t, srv)

	w := upload(t, srv, id, "notes.pdf", "application/pdf", []byte("%PDF"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Please upload a valid audio or video file.")

	w = upload(t, srv, id, "clip.mp4", "video/mp4", []byte("video bytes"))
	require.Equal(t, http.StatusOK, w.Code)
	snap := snapshot(t, w)
	require.NotNil(t, snap.File)
	assert.Equal(t, "clip.mp4", snap.File.Name)
	assert.True(t, snap.File.IsVideo)
	assert.Equal(t, session.StatusIdle, snap.State.Status)

	w = do(t, srv, http.MethodDelete, "/api/sessions/"+id+"/file", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, snapshot(t, w).File)
}

func TestTranscribeFlow(t *testing.T) {
	srv := newServer(t, &fakeService{})
	id := createSession(t, srv)
	base := "/api/sessions/" + id

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, base+"/transcribe", nil).Code)

	transcribe(t, srv, id)

	snap := snapshot(t, do(t, srv, http.MethodGet, base, nil))
	assert.Equal(t, session.StatusCompleted, snap.State.Status)
	assert.Equal(t, "Hello World", snap.Transcript)
	assert.Equal(t, "talk", snap.BaseName)

	w := do(t, srv, http.MethodPost, base+"/final/fragments", map[string]any{"source": "original", "start": 0, "end": 5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"captured":true`)

	w = do(t, srv, http.MethodPost, base+"/final/fragments", map[string]any{"source": "original"})
	require.Equal(t, http.StatusOK, w.Code)

	snap = snapshot(t, do(t, srv, http.MethodGet, base, nil))
	assert.Equal(t, document.Placeholder+"<p>Hello</p><p>Hello World</p>", snap.FinalMarkup)

	w = do(t, srv, http.MethodPut, base+"/transcript", map[string]string{"text": "Edited"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Edited", snapshot(t, w).Transcript)
}

func TestRefine(t *testing.T) {
	gate := make(chan struct{})
	srv := newServer(t, &fakeService{refineGate: gate})
	id := createSession(t, srv)
	base := "/api/sessions/" + id
	transcribe(t, srv, id)

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, base+"/refine", map[string]string{"instruction": " "}).Code)

	w := do(t, srv, http.MethodPost, base+"/refine", map[string]string{"instruction": "shout"})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.True(t, snapshot(t, w).Refining)

	w = do(t, srv, http.MethodPost, base+"/refine", map[string]string{"instruction": "again"})
	assert.Equal(t, http.StatusConflict, w.Code)

	close(gate)
	ws, err := srv.Store().Get(id)
	require.NoError(t, err)
	ws.Wait()

	snap := snapshot(t, do(t, srv, http.MethodGet, base, nil))
	assert.Equal(t, "HELLO WORLD", snap.Remix)
	assert.Equal(t, "shout", snap.Instruction)
}

func TestFinalEditing(t *testing.T) {
	srv := newServer(t, &fakeService{})
	id := createSession(t, srv)
	base := "/api/sessions/" + id

	w := do(t, srv, http.MethodPut, base+"/final", map[string]string{"markup": "<p>make me bold</p>"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodPost, base+"/final/commands", map[string]any{"command": "bold", "start": 8, "end": 12})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>make me <b>bold</b></p>", snapshot(t, w).FinalMarkup)

	w = do(t, srv, http.MethodPost, base+"/final/commands", map[string]any{"command": "strike", "start": 0, "end": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, base+"/final/commands", map[string]any{"command": "undo"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>make me bold</p>", snapshot(t, w).FinalMarkup)
}

func TestSelectionsUseBrowserOffsets(t *testing.T) {
	srv := newServer(t, &fakeService{})
	id := createSession(t, srv)
	base := "/api/sessions/" + id

	transcribe(t, srv, id)

	w := do(t, srv, http.MethodPut, base+"/transcript", map[string]string{"text": "😀 Hello World"})
	require.Equal(t, http.StatusOK, w.Code)

	// The emoji is two UTF-16 code units, so "Hello" spans 3..8.
	w = do(t, srv, http.MethodPost, base+"/final/fragments", map[string]any{"source": "original", "start": 3, "end": 8})
	require.Equal(t, http.StatusOK, w.Code)

	snap := snapshot(t, do(t, srv, http.MethodGet, base, nil))
	assert.Equal(t, document.Placeholder+"<p>Hello</p>", snap.FinalMarkup)

	w = do(t, srv, http.MethodPut, base+"/final", map[string]string{"markup": "<p>🎙 make me bold</p>"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodPost, base+"/final/commands", map[string]any{"command": "bold", "start": 11, "end": 15})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>🎙 make me <b>bold</b></p>", snapshot(t, w).FinalMarkup)
}

func TestTabAndClear(t *testing.T) {
	srv := newServer(t, &fakeService{})
	id := createSession(t, srv)
	base := "/api/sessions/" + id
	transcribe(t, srv, id)

	w := do(t, srv, http.MethodPut, base+"/tab", map[string]string{"tab": "final"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.TabFinal, snapshot(t, w).Tab)

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPut, base+"/tab", map[string]string{"tab": "nope"}).Code)

	w = do(t, srv, http.MethodPost, base+"/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := snapshot(t, w)
	assert.Nil(t, snap.File)
	assert.Empty(t, snap.Transcript)
	assert.Equal(t, session.TabOriginal, snap.Tab)
	assert.Equal(t, document.Placeholder, snap.FinalMarkup)
}

func TestExport(t *testing.T) {
	srv := newServer(t, &fakeService{})
	id := createSession(t, srv)
	base := "/api/sessions/" + id
	transcribe(t, srv, id)

	w := do(t, srv, http.MethodGet, base+"/export/original?format=txt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello World", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="talk.txt"`)

	w = do(t, srv, http.MethodGet, base+"/export/final?format=pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="talk_final.pdf"`)

	w = do(t, srv, http.MethodGet, base+"/export/remix?format=docx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="talk_remix.docx"`)

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, base+"/export/final?format=rtf", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, base+"/export/other", nil).Code)
}

func TestEventsWebsocket(t *testing.T) {
	srv := newServer(t, &fakeService{})
	id := createSession(t, srv)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/sessions/" + id + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first session.Event
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, session.EventSnapshot, first.Kind)

	w := do(t, srv, http.MethodPut, "/api/sessions/"+id+"/tab", map[string]string{"tab": "remix"})
	require.Equal(t, http.StatusOK, w.Code)

	var ev session.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, session.EventTabChanged, ev.Kind)
	assert.Equal(t, session.TabRemix, ev.Snapshot.Tab)
}
