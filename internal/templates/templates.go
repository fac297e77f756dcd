package templates

import (
	"embed"
	"net/http"
	"strings"
)

//go:embed home.html board.html
var pages embed.FS

var commit = "dev"

// SetCommit records the build commit shown in page footers.
func SetCommit(c string) {
	if c != "" {
		commit = c
	}
}

func writePage(w http.ResponseWriter, name string, vars map[string]string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	content, err := pages.ReadFile(name)
	if err != nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	html := string(content)
	html = strings.ReplaceAll(html, "{{COMMIT}}", commit)
	for k, v := range vars {
		html = strings.ReplaceAll(html, "{{"+k+"}}", v)
	}
	_, _ = w.Write([]byte(html))
}

// WriteHomeHTML serves the home page
func WriteHomeHTML(w http.ResponseWriter) {
	writePage(w, "home.html", nil)
}

// WriteBoardHTML serves the board page with the session id substituted
func WriteBoardHTML(w http.ResponseWriter, boardID string) {
	writePage(w, "board.html", map[string]string{"BOARD_ID": boardID})
}
