// Package static serves the site's stylesheet and scripts.
package static

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
)

//go:embed css/*.css js/*.js
var staticFS embed.FS

var isDevelopment = os.Getenv("GO_ENV") == "development"

// FS returns the static filesystem. With GO_ENV=development files are read
// from disk so CSS and JS edits show up without a rebuild.
func FS() fs.FS {
	if isDevelopment {
		return os.DirFS("web/static")
	}
	return staticFS
}

// Handler serves FS under prefix. Embedded assets are cached for an hour;
// development assets are never cached.
func Handler(prefix string) http.Handler {
	files := http.StripPrefix(prefix, http.FileServer(http.FS(FS())))
	cache := "public, max-age=3600"
	if isDevelopment {
		cache = "no-cache"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cache)
		files.ServeHTTP(w, r)
	})
}
