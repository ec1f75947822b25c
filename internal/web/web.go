// Package web embeds the console's HTML templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"time"
)

//go:embed all:templates
var templateFS embed.FS

//go:embed all:assets
var assetsFS embed.FS

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"ms": func(d time.Duration) int64 {
		return d.Milliseconds()
	},
	"pct": func(f float64) string {
		return fmt.Sprintf("%.0f", f)
	},
}

// Templates parses the embedded templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}

// Assets returns the static files rooted at the assets directory.
func Assets() (fs.FS, error) {
	return fs.Sub(assetsFS, "assets")
}
