// Package render produces the guest-facing HTML pages.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/domain"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/theme"
)

//go:embed templates/*.html
var templateFS embed.FS

// InvitationPage is the data behind the public and personalized views.
// Guest is nil on the public page.
type InvitationPage struct {
	Invitation *domain.Invitation
	Guest      *domain.Guest
	Theme      theme.Theme
	Photos     []domain.Photo
	// RSVPAction is where the form posts; empty hides the form.
	RSVPAction string
	Notice     string
	Error      string
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"css": func(t theme.Theme) template.CSS {
		return template.CSS(t.CSS())
	},
	"eventDate": func(inv *domain.Invitation) string {
		d, ok := inv.Details.Date()
		if !ok {
			return inv.Details.EventDate
		}
		return spanishDate(d)
	},
}

func New() (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, page := range []string{"invitation", "denied", "notfound"} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

type layoutData struct {
	Title string
	Theme theme.Theme
	Page  any
}

// render buffers the page so a template error never leaves a half-written body.
func (r *Renderer) render(w http.ResponseWriter, status int, page, title string, th theme.Theme, data any) error {
	var buf bytes.Buffer
	if err := r.pages[page].Execute(&buf, layoutData{Title: title, Theme: th, Page: data}); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) Invitation(w http.ResponseWriter, p InvitationPage) error {
	title := p.Invitation.Details.Title
	if p.Guest != nil {
		title = p.Guest.Name + " · " + title
	}
	return r.render(w, http.StatusOK, "invitation", title, p.Theme, p)
}

// Denied is the generic page for any link the access gate rejects. It is a
// normal 200 page so it reveals nothing about why the link failed.
func (r *Renderer) Denied(w http.ResponseWriter) error {
	return r.render(w, http.StatusOK, "denied", "Enlace no válido", theme.Default, nil)
}

func (r *Renderer) NotFound(w http.ResponseWriter) error {
	return r.render(w, http.StatusNotFound, "notfound", "Invitación no encontrada", theme.Default, nil)
}

var months = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

func spanishDate(d time.Time) string {
	return fmt.Sprintf("%d de %s de %d", d.Day(), months[d.Month()-1], d.Year())
}
