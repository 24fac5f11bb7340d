package api

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/juander/eihub-rag/internal/appstate"
	"github.com/juander/eihub-rag/internal/qa"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// renderer turns snapshots and results into the HTML the search page and
// its htmx fragments are built from.
type renderer struct {
	tmpl        *template.Template
	repoBaseURL string
}

func newRenderer(repoBaseURL string) *renderer {
	return &renderer{
		tmpl:        template.Must(template.ParseFS(templateFS, "templates/*.tmpl")),
		repoBaseURL: repoBaseURL,
	}
}

type homeView struct {
	Status        string
	StatusColor   string
	Ready         bool
	DocumentCount int
}

type fieldView struct {
	Label string
	Text  string
}

type sourceView struct {
	Name string
	Page string
	URL  string
}

type resultView struct {
	Fields            []fieldView
	ConfidencePercent string
	Sources           []sourceView
}

func (rd *renderer) home(w http.ResponseWriter, snap appstate.Snapshot) {
	color := "red"
	if snap.Status == appstate.StatusReady {
		color = "green"
	}
	rd.render(w, "home.tmpl", homeView{
		Status:        snap.Status.String(),
		StatusColor:   color,
		Ready:         snap.Status == appstate.StatusReady,
		DocumentCount: snap.DocumentCount,
	})
}

func (rd *renderer) result(w http.ResponseWriter, res qa.Result) {
	view := resultView{
		ConfidencePercent: fmt.Sprintf("%.0f%%", res.ConfidencePercent),
	}
	for _, f := range res.Sections.Fields() {
		view.Fields = append(view.Fields, fieldView{
			Label: strings.ToUpper(f.Label) + ":",
			Text:  f.Text,
		})
	}
	for _, s := range res.Sources {
		view.Sources = append(view.Sources, sourceView{
			Name: s.Source,
			Page: s.Page.String(),
			URL:  rd.repoBaseURL + url.PathEscape(s.Source),
		})
	}
	rd.render(w, "result.tmpl", view)
}

func (rd *renderer) errorFragment(w http.ResponseWriter, msg string) {
	rd.render(w, "error.tmpl", struct{ Message string }{Message: msg})
}

func (rd *renderer) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rd.tmpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
	}
}
