// Package handlers serves the DonationHub pages and the small JSON surface
// used by the browser scripts.
package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"donationhub/internal/api"
	"donationhub/internal/assistant"
	"donationhub/internal/config"
	apperrors "donationhub/internal/errors"
	"donationhub/internal/logger"
	"donationhub/internal/session"
	"donationhub/internal/settings"
	"donationhub/web/templates"
)

const defaultSiteName = "DonationHub"

// Handler holds what the page controllers share. Per-request state lives in
// the request.
type Handler struct {
	API       *api.Client
	Sessions  *session.Manager
	Settings  *settings.Controller
	Assistant *assistant.Assistant
	Cfg       *config.Config

	now func() time.Time
}

// New creates a Handler. bot may be nil when no model is configured.
func New(cfg *config.Config, client *api.Client, sessions *session.Manager, bot *assistant.Assistant) *Handler {
	return &Handler{
		API:       client,
		Sessions:  sessions,
		Settings:  settings.New(client.Admin.Settings),
		Assistant: bot,
		Cfg:       cfg,
		now:       time.Now,
	}
}

// page is the data every template receives. Data carries the page's own
// view model.
type page struct {
	Title    string
	SiteName string
	Year     int
	Session  *session.Session
	Flashes  []session.Flash
	Data     any
}

type errorData struct {
	Code        int
	Title       string
	Message     string
	RetryURL    string
	ExploreLink bool
}

func (h *Handler) siteName() string {
	if s, ok := h.Settings.Settings(); ok && s.Branding.SiteName != "" {
		return s.Branding.SiteName
	}
	return defaultSiteName
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	sess, _ := session.FromContext(r.Context())
	p := page{
		Title:    title,
		SiteName: h.siteName(),
		Year:     h.now().Year(),
		Session:  sess,
		Flashes:  h.Sessions.Flashes(w, r),
		Data:     data,
	}

	var buf bytes.Buffer
	if err := templates.Render(&buf, name, p); err != nil {
		logger.ErrorContext(r.Context(), "failed to render template", "template", name, "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.DebugContext(r.Context(), "failed to write page", "error", err)
	}
}

// renderError shows the error page for a failed backend call. An expired
// token ends the session and sends the visitor to log in again.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var nf apperrors.NotFoundError
	switch {
	case errors.As(err, &nf):
		h.notFound(w, r, titleKind(nf.Kind)+" Not Found",
			"We couldn't find this "+nf.Kind+". It may have been removed or the link may be wrong.")
		return

	case errors.Is(err, apperrors.ErrNotFound):
		h.notFound(w, r, "Page Not Found", "We couldn't find what you were looking for.")
		return

	case errors.Is(err, apperrors.ErrUnauthorized):
		if endErr := h.Sessions.End(w, r); endErr != nil {
			logger.WarnContext(r.Context(), "failed to end session", "error", endErr)
		}
		http.Redirect(w, r, loginURL(r), http.StatusSeeOther)
		return

	case errors.Is(err, apperrors.ErrForbidden):
		h.render(w, r, http.StatusForbidden, "error.html", "Access Denied", errorData{
			Code:    http.StatusForbidden,
			Title:   "Access Denied",
			Message: "You don't have permission to view this page.",
		})
		return
	}

	logger.ErrorContext(r.Context(), "backend request failed", "path", r.URL.Path, "error", err)
	data := errorData{
		Code:    http.StatusBadGateway,
		Title:   "Something Went Wrong",
		Message: "We're having trouble reaching DonationHub. Please try again later.",
	}
	if errors.Is(err, apperrors.ErrRateLimit) {
		data.Code = http.StatusTooManyRequests
		data.Title = "Too Many Requests"
		data.Message = "You're going a little fast. Please wait a moment and try again."
	}
	if r.Method == http.MethodGet {
		data.RetryURL = r.URL.RequestURI()
	}
	h.render(w, r, data.Code, "error.html", data.Title, data)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, title, message string) {
	h.render(w, r, http.StatusNotFound, "error.html", title, errorData{
		Code:        http.StatusNotFound,
		Title:       title,
		Message:     message,
		ExploreLink: true,
	})
}

// NotFoundPage handles unknown routes.
func (h *Handler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r, "Page Not Found", "We couldn't find what you were looking for.")
}

// redirectWithFlash queues a notification and redirects with 303.
func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	h.Sessions.Flash(w, r, kind, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func loginURL(r *http.Request) string {
	if r.Method != http.MethodGet {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(r.URL.RequestURI())
}

// localPath returns next when it is a path on this site, else fallback.
// Absolute and scheme-relative URLs are refused.
func localPath(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}

// refererPath turns a Referer header into a local redirect target.
func refererPath(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || ref == "" {
		return "/"
	}
	return localPath(u.RequestURI(), "/")
}

func titleKind(kind string) string {
	if kind == "" {
		return "Page"
	}
	return strings.ToUpper(kind[:1]) + kind[1:]
}

func formBool(r *http.Request, key string) bool {
	switch strings.ToLower(r.PostFormValue(key)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}
