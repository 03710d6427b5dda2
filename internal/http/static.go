package http

import (
	nethttp "net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"ytt/backend/internal/logger"
)

// registerStatic serves the single-page frontend from dir. Unknown paths
// fall back to index.html so client-side routes work; /api never does.
func registerStatic(e *echo.Echo, dir string) {
	if dir == "" {
		return
	}
	indexPath := filepath.Join(dir, "index.html")
	if info, err := os.Stat(indexPath); err != nil || info.IsDir() {
		logger.Warn("frontend not found, serving API only", "module", "http", "action", "start", "resource", "static", "result", "failed", "path", indexPath)
		return
	}
	logger.Info("frontend enabled", "module", "http", "action", "start", "resource", "static", "result", "ok", "dir", dir)

	files := nethttp.FileServer(nethttp.Dir(dir))
	e.GET("/*", func(c echo.Context) error {
		p := c.Request().URL.Path
		if p == "/api" || strings.HasPrefix(p, "/api/") {
			return echo.ErrNotFound
		}

		rel := strings.TrimPrefix(path.Clean(p), "/")
		if rel != "" && rel != "." {
			if info, err := os.Stat(filepath.Join(dir, rel)); err == nil && !info.IsDir() {
				files.ServeHTTP(c.Response(), c.Request())
				return nil
			}
		}
		return c.File(indexPath)
	})
}
