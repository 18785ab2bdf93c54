package handler

import (
	"html/template"
	"log"
	"net/http"

	"github.com/legaltech/webgate/web"
)

// Pages renders the embedded HTML templates.
type Pages struct {
	tmpl *template.Template
}

func NewPages() (*Pages, error) {
	tmpl, err := template.ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Pages{tmpl: tmpl}, nil
}

func (p *Pages) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := p.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render %s: %v", name, err)
	}
}

// GET /
func (p *Pages) Home(w http.ResponseWriter, _ *http.Request) {
	p.render(w, http.StatusOK, "home.html", nil)
}

type errorPage struct {
	Message   string
	RetryPath string
}

func (p *Pages) renderUpstreamError(w http.ResponseWriter, retryPath string) {
	p.render(w, http.StatusBadGateway, "error.html", errorPage{
		Message:   "The service is temporarily unreachable. Your session is still valid.",
		RetryPath: retryPath,
	})
}
