package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/contactform/internal/contact"
	"github.com/vango-dev/contactform/pkg/render"
)

// pageStyles is the inline stylesheet of the contact page.
const pageStyles = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1d2330}
.contact{max-width:32rem;margin:3rem auto;padding:2rem;background:#fff;border-radius:8px;box-shadow:0 1px 3px rgba(0,0,0,.12)}
.contact h1{margin-top:0}
.contact fieldset{border:0;margin:0;padding:0}
.contact legend{font-size:.9rem;color:#5b6472;margin-bottom:1rem}
.field{display:flex;flex-direction:column;margin-bottom:1rem}
.field label{font-weight:600;margin-bottom:.25rem}
.field input,.field textarea{font:inherit;padding:.5rem;border:1px solid #c5cad3;border-radius:4px}
.field-error input{border-color:#c62828}
.error{color:#c62828;margin:.25rem 0 0}
button{font:inherit;padding:.5rem 1.5rem;border:0;border-radius:4px;background:#1d4ed8;color:#fff;cursor:pointer}
.display{margin-top:2rem;padding-top:1rem;border-top:1px solid #e3e6eb}`

// sessionID returns the request's session id, issuing a cookie when the
// request has none.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(s.config.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// handlePage renders the form, resumed from the session store when the
// session has a saved state.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	f := s.newForm(id)
	s.resume(r.Context(), id, f)
	s.writePage(w, r, http.StatusOK, f)
}

// handleSubmit is the no-JavaScript path: the posted fields are set one by
// one and the form is submitted. A rejected submit answers 422.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	f := s.newForm(id)
	for _, name := range contact.FieldNames {
		if err := f.SetField(name, r.PostForm.Get(name)); err != nil {
			s.logger.Error("set field failed", "field", name, "error", err)
		}
	}

	status := http.StatusOK
	if _, ok := f.Submit(); !ok {
		status = http.StatusUnprocessableEntity
	}
	s.saveState(r.Context(), id, time.Now(), f)
	s.writePage(w, r, status, f)
}

// writePage renders the full document for f.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, f *contact.Form) {
	var buf bytes.Buffer
	renderer := render.NewRenderer(render.RendererConfig{})
	err := renderer.RenderPage(&buf, render.PageData{
		Body:     f.Render(),
		Title:    s.config.Title,
		Styles:   []string{pageStyles},
		LivePath: s.config.LivePath,
	})
	if err != nil {
		s.logger.Error("render failed", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// handleHealth reports liveness and the number of live connections.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"live":   s.LiveConnections(),
	})
}
