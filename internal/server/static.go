package server

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

//go:embed web
var webFiles embed.FS

// embeddedFS adapts the embedded UI to static.ServeFileSystem.
type embeddedFS struct {
	http.FileSystem
}

var _ static.ServeFileSystem = embeddedFS{}

func (e embeddedFS) Exists(prefix, filepath string) bool {
	p, ok := strings.CutPrefix(filepath, prefix)
	if !ok {
		return false
	}

	f, err := e.Open(path.Clean("/" + p))
	if err != nil {
		return false
	}
	_ = f.Close()

	return true
}

func setupStatic(router *gin.Engine, logger *slog.Logger) {
	sub, err := fs.Sub(webFiles, "web")
	if err != nil {
		logger.Error("embedded web UI missing", "error", err)
		return
	}

	router.Use(static.Serve("/", embeddedFS{FileSystem: http.FS(sub)}))
}
