package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/logger"
	"donationhub/internal/models"
	"donationhub/internal/session"
	"donationhub/internal/settings"
)

const maxSettingsUpload = 8 << 20

type settingsData struct {
	Tab           settings.Tab
	Tabs          []settings.Tab
	Branding      settings.BrandingForm
	RateLimiter   models.RateLimiter
	WindowMinutes int
	Password      settings.PasswordForm
	Environment   string
	Users         []models.User
	Saving        map[string]bool
	Err           string
}

// editor names the admin whose drafts and in-flight saves a request sees.
func editor(r *http.Request) string {
	if sess, ok := session.FromContext(r.Context()); ok {
		return sess.ID
	}
	return ""
}

// SettingsPage shows one settings tab. Forms whose last save by this admin
// failed show the values that were submitted, once.
func (h *Handler) SettingsPage(w http.ResponseWriter, r *http.Request) {
	who := editor(r)
	tab := settings.ParseTab(r.URL.Query().Get("tab"))
	data := settingsData{Tab: tab, Tabs: settings.Tabs(), Saving: map[string]bool{}}

	s, err := h.Settings.Load(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.renderError(w, r, err)
			return
		}
		data.Err = "Failed to load settings. " + apperrors.Message(err)
		s, _ = h.Settings.Settings()
	}

	data.Branding = settings.BrandingForm{Branding: s.Branding, Contact: s.Contact, Copyright: s.Copyright}
	data.RateLimiter = s.RateLimiter
	env := s.Environment
	for _, a := range settings.Actions() {
		data.Saving[string(a)] = h.Settings.Saving(who, a)

		draft, ok := h.Settings.TakeDraft(who, a)
		if !ok {
			continue
		}
		switch d := draft.(type) {
		case settings.BrandingForm:
			data.Branding = settings.BrandingForm{Branding: d.Branding, Contact: d.Contact, Copyright: d.Copyright}
		case models.RateLimiter:
			data.RateLimiter = d
		case settings.PasswordForm:
			data.Password = settings.PasswordForm{UserID: d.UserID, AdminNote: d.AdminNote}
		case map[string]any:
			env = d
		}
	}
	data.WindowMinutes = data.RateLimiter.WindowMinutes()
	data.Environment = environmentText(env)

	if tab == settings.Security {
		users, err := h.API.Admin.AllUsers(r.Context())
		if err != nil {
			logger.WarnContext(r.Context(), "failed to load users for password reset", "error", err)
		}
		data.Users = users
	}

	h.render(w, r, http.StatusOK, "admin_settings.html", "Settings", data)
}

func environmentText(env map[string]any) string {
	if env == nil {
		env = map[string]any{}
	}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// SaveSettings submits one settings form and returns to its tab with the
// outcome as a notice.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	action, err := settings.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		h.notFound(w, r, "Page Not Found", "There is no such settings form.")
		return
	}
	back := "/admin/settings?tab=" + string(action.Tab()) + action.Tab().Fragment()

	payload, cleanup, err := settingsPayload(action, r)
	defer cleanup()
	if err != nil {
		h.redirectWithFlash(w, r, back, "error", apperrors.Message(err))
		return
	}

	notice, err := h.Settings.Save(r.Context(), editor(r), action, payload)
	switch {
	case errors.Is(err, settings.ErrSaveInProgress):
		h.redirectWithFlash(w, r, back, "info", "That form is already being saved.")
		return
	case errors.Is(err, apperrors.ErrUnauthorized):
		h.renderError(w, r, err)
		return
	}
	h.redirectWithFlash(w, r, back, notice.Kind, notice.Message)
}

// settingsPayload reads the form for action into the payload type the
// controller expects. cleanup closes any uploaded files.
func settingsPayload(action settings.Action, r *http.Request) (any, func(), error) {
	noop := func() {}

	switch action {
	case settings.ActionBranding:
		if err := r.ParseMultipartForm(maxSettingsUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, apperrors.ValidationError{Field: "branding", Message: "The upload is too large"}
		}
		form := settings.BrandingForm{
			Branding: models.Branding{
				SiteName:       strings.TrimSpace(r.FormValue("siteName")),
				PrimaryColor:   r.FormValue("primaryColor"),
				SecondaryColor: r.FormValue("secondaryColor"),
			},
			Contact: models.Contact{
				Email:   strings.TrimSpace(r.FormValue("contactEmail")),
				Phone:   strings.TrimSpace(r.FormValue("contactPhone")),
				Address: strings.TrimSpace(r.FormValue("contactAddress")),
			},
			Copyright: strings.TrimSpace(r.FormValue("copyright")),
		}

		var closers []io.Closer
		cleanup := func() {
			for _, c := range closers {
				c.Close()
			}
		}
		upload := func(field string) *settings.Upload {
			file, header, err := r.FormFile(field)
			if err != nil {
				return nil
			}
			closers = append(closers, file)
			if header.Size == 0 {
				return nil
			}
			return &settings.Upload{Filename: header.Filename, Content: file}
		}
		form.Logo = upload("logo")
		form.Favicon = upload("favicon")
		return form, cleanup, nil

	case settings.ActionRateLimiter:
		minutes, err1 := strconv.Atoi(strings.TrimSpace(r.PostFormValue("windowMinutes")))
		maxRequests, err2 := strconv.Atoi(strings.TrimSpace(r.PostFormValue("maxRequests")))
		if err1 != nil || err2 != nil {
			return nil, noop, apperrors.ValidationError{Field: "rateLimiter", Message: "Window and max requests must be whole numbers"}
		}
		return models.RateLimiter{
			WindowMs:    int64(minutes) * 60_000,
			MaxRequests: maxRequests,
			Message:     strings.TrimSpace(r.PostFormValue("message")),
		}, noop, nil

	case settings.ActionPassword:
		return settings.PasswordForm{
			UserID:      r.PostFormValue("userId"),
			NewPassword: r.PostFormValue("newPassword"),
			AdminNote:   strings.TrimSpace(r.PostFormValue("adminNote")),
		}, noop, nil

	case settings.ActionEnvironment:
		var env map[string]any
		raw := strings.TrimSpace(r.PostFormValue("environment"))
		if raw == "" {
			raw = "{}"
		}
		if err := json.Unmarshal([]byte(raw), &env); err != nil || env == nil {
			return nil, noop, apperrors.ValidationError{Field: "environment", Message: "Environment must be a JSON object"}
		}
		return env, noop, nil

	case settings.ActionReset:
		return nil, noop, nil
	}
	return nil, noop, apperrors.ValidationError{Field: "action", Message: "unknown settings action"}
}
