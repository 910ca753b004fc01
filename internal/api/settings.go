package api

import (
	"context"
	"io"
	"net/http"

	"donationhub/internal/models"
	"donationhub/internal/normalize"
)

// SettingsService manages the admin settings document.
type SettingsService struct {
	c *Client
}

// Get returns the current settings.
func (s *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/admin/settings", nil, nil)
	if err != nil {
		return models.Settings{}, err
	}
	return normalize.Settings(object(data)), nil
}

func (s *SettingsService) put(ctx context.Context, path string, body any) error {
	_, err := s.c.call(ctx, http.MethodPut, "/admin/settings"+path, nil, body)
	return err
}

// UpdateBranding changes the site name and colours.
func (s *SettingsService) UpdateBranding(ctx context.Context, b models.BrandingUpdate) error {
	return s.put(ctx, "/branding", b)
}

// UpdateContact changes contact details and the copyright line.
func (s *SettingsService) UpdateContact(ctx context.Context, c models.ContactUpdate) error {
	return s.put(ctx, "/legal", c)
}

// UploadLogo replaces the site logo.
func (s *SettingsService) UploadLogo(ctx context.Context, filename string, content io.Reader) error {
	_, err := s.c.call(ctx, http.MethodPost, "/admin/settings/upload/logo", nil, NewFileUpload("logo", filename, content))
	return err
}

// UploadFavicon replaces the favicon.
func (s *SettingsService) UploadFavicon(ctx context.Context, filename string, content io.Reader) error {
	_, err := s.c.call(ctx, http.MethodPost, "/admin/settings/upload/favicon", nil, NewFileUpload("favicon", filename, content))
	return err
}

// UpdateRateLimiter changes the backend request throttle.
func (s *SettingsService) UpdateRateLimiter(ctx context.Context, r models.RateLimitUpdate) error {
	return s.put(ctx, "/rate-limiting", r)
}

// ChangeUserPassword sets another user's password.
func (s *SettingsService) ChangeUserPassword(ctx context.Context, userID string, req models.PasswordReset) error {
	err := s.put(ctx, "/users/"+escape(userID)+"/password", req)
	return notFound(err, "user", userID)
}

// UpdateEnvironment changes runtime environment settings.
func (s *SettingsService) UpdateEnvironment(ctx context.Context, env map[string]any) error {
	return s.put(ctx, "/environment", env)
}

// Reset restores every setting to its default.
func (s *SettingsService) Reset(ctx context.Context) error {
	req := models.ResetRequest{ConfirmReset: true, ResetType: "all"}
	_, err := s.c.call(ctx, http.MethodPost, "/admin/settings/reset", nil, req)
	return err
}
