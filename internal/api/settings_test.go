package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donationhub/internal/models"
)

func TestSettingsGet(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/settings", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "settings": map[string]any{
			"branding":      map[string]any{"site_name": "Hub"},
			"legal":         map[string]any{"contact_email": "legal@hub.example"},
			"rate_limiting": map[string]any{"window_minutes": 10.0},
		}})
	})

	s, err := client.Admin.Settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hub", s.Branding.SiteName)
	assert.Equal(t, "legal@hub.example", s.Contact.Email)
	assert.Equal(t, int64(600000), s.RateLimiter.WindowMs)
	assert.Equal(t, 100, s.RateLimiter.MaxRequests)
}

func TestSettingsWrites(t *testing.T) {
	type call struct {
		method, path string
		body         map[string]any
	}
	var calls []call

	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path, decodeBody(t, r)})
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	})
	ctx := context.Background()

	require.NoError(t, client.Admin.Settings.UpdateBranding(ctx, models.BrandingUpdate{SiteName: "Hub", PrimaryColor: "#111", SecondaryColor: "#222"}))
	require.NoError(t, client.Admin.Settings.UpdateRateLimiter(ctx, models.RateLimitUpdate{WindowMinutes: 15, MaxRequests: 200}))
	require.NoError(t, client.Admin.Settings.ChangeUserPassword(ctx, "u1", models.PasswordReset{NewPassword: "s3cret!"}))
	require.NoError(t, client.Admin.Settings.Reset(ctx))

	require.Len(t, calls, 4)
	assert.Equal(t, call{"PUT", "/api/admin/settings/branding", map[string]any{"site_name": "Hub", "primary_color": "#111", "secondary_color": "#222"}}, calls[0])
	assert.Equal(t, call{"PUT", "/api/admin/settings/rate-limiting", map[string]any{"window_minutes": 15.0, "max_requests": 200.0}}, calls[1])
	assert.Equal(t, call{"PUT", "/api/admin/settings/users/u1/password", map[string]any{"newPassword": "s3cret!"}}, calls[2])
	assert.Equal(t, call{"POST", "/api/admin/settings/reset", map[string]any{"confirmReset": true, "resetType": "all"}}, calls[3])
}
