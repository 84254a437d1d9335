// Package webui embeds the single-page frontend served at the site root.
package webui

import (
	"embed"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

func serveFile(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := staticFS.ReadFile("static/" + name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(data)
	}
}

// IndexHandler serves the frontend entry page.
var IndexHandler = serveFile("index.html", "text/html; charset=utf-8")

// StylesHandler serves the stylesheet referenced by index.html.
var StylesHandler = serveFile("styles.css", "text/css; charset=utf-8")

// ScriptHandler serves the frontend script referenced by index.html.
var ScriptHandler = serveFile("script.js", "application/javascript; charset=utf-8")
