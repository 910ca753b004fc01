// Package settings drives the admin settings page: tab selection, per-action
// save state and the submit, refetch, notify cycle.
package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/logger"
	"donationhub/internal/models"
)

// ErrSaveInProgress is returned when the same action is saved twice
// concurrently.
var ErrSaveInProgress = errors.New("save already in progress")

// Tab is a section of the settings page.
type Tab string

const (
	General  Tab = "general"
	Security Tab = "security"
	System   Tab = "system"
)

// Tabs lists the tabs in display order.
func Tabs() []Tab {
	return []Tab{General, Security, System}
}

// ParseTab reads a tab from "#tab", "tab" or a URL carrying the tab in its
// fragment. Anything else selects General.
func ParseTab(s string) Tab {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[i+1:]
	}
	switch t := Tab(strings.ToLower(s)); t {
	case General, Security, System:
		return t
	}
	return General
}

// Fragment is the location fragment that selects t.
func (t Tab) Fragment() string {
	return "#" + string(t)
}

// Label is the tab's display name.
func (t Tab) Label() string {
	switch t {
	case Security:
		return "Security"
	case System:
		return "System"
	}
	return "General"
}

// Action is one save button on the settings page.
type Action string

const (
	ActionBranding    Action = "branding"
	ActionRateLimiter Action = "rateLimiter"
	ActionPassword    Action = "password"
	ActionEnvironment Action = "environment"
	ActionReset       Action = "reset"
)

// Actions lists every save action.
func Actions() []Action {
	return []Action{ActionBranding, ActionRateLimiter, ActionPassword, ActionEnvironment, ActionReset}
}

// ParseAction accepts an action name in any letter case.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions() {
		if strings.EqualFold(s, string(a)) {
			return a, nil
		}
	}
	return "", apperrors.ValidationError{Field: "action", Message: fmt.Sprintf("unknown settings action %q", s)}
}

// Tab is the tab the action's form lives on.
func (a Action) Tab() Tab {
	switch a {
	case ActionRateLimiter, ActionPassword:
		return Security
	case ActionEnvironment, ActionReset:
		return System
	}
	return General
}

func (a Action) successMessage() string {
	switch a {
	case ActionBranding:
		return "General settings saved!"
	case ActionRateLimiter:
		return "Rate limiter settings saved!"
	case ActionPassword:
		return "User password changed successfully!"
	case ActionEnvironment:
		return "Environment settings saved!"
	case ActionReset:
		return "System settings have been reset."
	}
	return "Settings saved!"
}

// Upload is a file chosen in the branding form.
type Upload struct {
	Filename string
	Content  io.Reader
}

// BrandingForm is the general tab: identity, contact details and optional
// logo and favicon files.
type BrandingForm struct {
	Branding  models.Branding
	Contact   models.Contact
	Copyright string
	Logo      *Upload
	Favicon   *Upload
}

// PasswordForm resets another user's password.
type PasswordForm struct {
	UserID      string
	NewPassword string
	AdminNote   string
}

// Validate requires a user and a new password.
func (f PasswordForm) Validate() error {
	if strings.TrimSpace(f.UserID) == "" {
		return apperrors.ValidationError{Field: "userId", Message: "Select a user"}
	}
	if f.NewPassword == "" {
		return apperrors.ValidationError{Field: "newPassword", Message: "New password is required"}
	}
	return nil
}

// Backend is the settings API. *api.SettingsService implements it.
type Backend interface {
	Get(ctx context.Context) (models.Settings, error)
	UpdateBranding(ctx context.Context, b models.BrandingUpdate) error
	UpdateContact(ctx context.Context, c models.ContactUpdate) error
	UploadLogo(ctx context.Context, filename string, content io.Reader) error
	UploadFavicon(ctx context.Context, filename string, content io.Reader) error
	UpdateRateLimiter(ctx context.Context, r models.RateLimitUpdate) error
	ChangeUserPassword(ctx context.Context, userID string, req models.PasswordReset) error
	UpdateEnvironment(ctx context.Context, env map[string]any) error
	Reset(ctx context.Context) error
}

// Notice is the toast shown after a save.
type Notice struct {
	Kind    string
	Message string
}

// Controller holds the settings page state. One controller serves every
// admin: the settings document is shared, while saving flags and drafts
// belong to the editor that made them, usually a session ID.
type Controller struct {
	backend Backend
	notify  func(context.Context, Notice)

	mu       sync.Mutex
	settings models.Settings
	loaded   bool
	saving   map[editKey]bool
	drafts   map[editKey]any
}

type editKey struct {
	editor string
	action Action
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier receives every notice produced by Load and Save.
func WithNotifier(fn func(context.Context, Notice)) Option {
	return func(c *Controller) { c.notify = fn }
}

// New creates a controller over backend.
func New(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		saving:  make(map[editKey]bool),
		drafts:  make(map[editKey]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the settings document. The last good copy is kept when the
// fetch fails.
func (c *Controller) Load(ctx context.Context) (models.Settings, error) {
	s, err := c.backend.Get(ctx)
	if err != nil {
		c.emit(ctx, Notice{Kind: "error", Message: fallback(apperrors.Message(err), "Failed to load settings.")})
		return models.Settings{}, err
	}

	c.mu.Lock()
	c.settings, c.loaded = s, true
	c.mu.Unlock()
	return s, nil
}

// Settings returns the last loaded settings and whether any were loaded.
func (c *Controller) Settings() (models.Settings, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings, c.loaded
}

// Saving reports whether editor has a save of action in flight.
func (c *Controller) Saving(editor string, action Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving[editKey{editor, action}]
}

// TakeDraft returns the payload of editor's last failed save of action and
// forgets it, so a draft is shown once.
func (c *Controller) TakeDraft(editor string, action Action) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := editKey{editor, action}
	d, ok := c.drafts[k]
	delete(c.drafts, k)
	return d, ok
}

// Forget drops every draft editor left behind.
func (c *Controller) Forget(editor string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.drafts {
		if k.editor == editor {
			delete(c.drafts, k)
		}
	}
}

// Save submits payload for action on behalf of editor, refetches the
// settings and returns the success notice. On failure the payload is kept as
// editor's draft and the notice carries the backend message.
//
// Payload types: BrandingForm, models.RateLimiter, PasswordForm,
// map[string]any for the environment, nil for reset.
func (c *Controller) Save(ctx context.Context, editor string, action Action, payload any) (Notice, error) {
	k := editKey{editor, action}

	c.mu.Lock()
	if c.saving[k] {
		c.mu.Unlock()
		return Notice{}, ErrSaveInProgress
	}
	c.saving[k] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.saving, k)
		c.mu.Unlock()
	}()

	if err := c.submit(ctx, action, payload); err != nil {
		c.mu.Lock()
		c.drafts[k] = draftOf(payload)
		c.mu.Unlock()

		logger.WarnContext(ctx, "settings save failed", "action", action, "error", err)
		n := Notice{Kind: "error", Message: fallback(apperrors.Message(err), fmt.Sprintf("Failed to save %s settings.", action))}
		c.emit(ctx, n)
		return n, err
	}

	c.mu.Lock()
	delete(c.drafts, k)
	c.mu.Unlock()

	if _, err := c.Load(ctx); err != nil {
		logger.WarnContext(ctx, "settings refetch failed", "action", action, "error", err)
	}

	n := Notice{Kind: "success", Message: action.successMessage()}
	c.emit(ctx, n)
	return n, nil
}

func (c *Controller) submit(ctx context.Context, action Action, payload any) error {
	switch action {
	case ActionBranding:
		form, ok := payload.(BrandingForm)
		if !ok {
			return payloadError(action, payload)
		}
		return c.saveBranding(ctx, form)

	case ActionRateLimiter:
		limits, ok := payload.(models.RateLimiter)
		if !ok {
			return payloadError(action, payload)
		}
		if limits.WindowMs <= 0 || limits.MaxRequests <= 0 {
			return apperrors.ValidationError{Field: "rateLimiter", Message: "Window and max requests must be positive"}
		}
		return c.backend.UpdateRateLimiter(ctx, models.RateLimitUpdate{
			WindowMinutes: limits.WindowMinutes(),
			MaxRequests:   limits.MaxRequests,
		})

	case ActionPassword:
		form, ok := payload.(PasswordForm)
		if !ok {
			return payloadError(action, payload)
		}
		if err := form.Validate(); err != nil {
			return err
		}
		return c.backend.ChangeUserPassword(ctx, form.UserID, models.PasswordReset{
			NewPassword: form.NewPassword,
			AdminNote:   form.AdminNote,
		})

	case ActionEnvironment:
		env, ok := payload.(map[string]any)
		if !ok {
			return payloadError(action, payload)
		}
		return c.backend.UpdateEnvironment(ctx, env)

	case ActionReset:
		return c.backend.Reset(ctx)
	}
	return apperrors.ValidationError{Field: "action", Message: fmt.Sprintf("unknown settings action %q", action)}
}

// saveBranding runs the general tab's requests in order and stops at the
// first failure.
func (c *Controller) saveBranding(ctx context.Context, form BrandingForm) error {
	if err := c.backend.UpdateBranding(ctx, models.BrandingUpdate{
		SiteName:       form.Branding.SiteName,
		PrimaryColor:   form.Branding.PrimaryColor,
		SecondaryColor: form.Branding.SecondaryColor,
	}); err != nil {
		return err
	}
	if err := c.backend.UpdateContact(ctx, models.ContactUpdate{
		ContactEmail:   form.Contact.Email,
		ContactPhone:   form.Contact.Phone,
		ContactAddress: form.Contact.Address,
		CopyrightText:  form.Copyright,
	}); err != nil {
		return err
	}
	if form.Logo != nil {
		if err := c.backend.UploadLogo(ctx, form.Logo.Filename, form.Logo.Content); err != nil {
			return err
		}
	}
	if form.Favicon != nil {
		if err := c.backend.UploadFavicon(ctx, form.Favicon.Filename, form.Favicon.Content); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) emit(ctx context.Context, n Notice) {
	if c.notify != nil {
		c.notify(ctx, n)
	}
}

// draftOf strips what must not outlive the request: passwords and open
// upload readers.
func draftOf(payload any) any {
	switch p := payload.(type) {
	case PasswordForm:
		p.NewPassword = ""
		return p
	case BrandingForm:
		p.Logo, p.Favicon = nil, nil
		return p
	}
	return payload
}

func payloadError(action Action, payload any) error {
	return apperrors.ValidationError{Field: string(action), Message: fmt.Sprintf("unexpected payload %T", payload)}
}

func fallback(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}
