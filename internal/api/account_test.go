package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/models"
)

func TestAccountEndpoints(t *testing.T) {
	user := map[string]any{"_id": "u1", "fullName": "Asha Rao", "role": "donor"}

	tests := []struct {
		name     string
		method   string
		path     string
		wantBody map[string]any
		response any
		call     func(t *testing.T, c *Client)
	}{
		{
			name: "refresh token", method: http.MethodPost, path: "/api/auth/refresh",
			wantBody: map[string]any{"refreshToken": "r1"},
			response: map[string]any{"accessToken": "jwt2", "refreshToken": "r2"},
			call: func(t *testing.T, c *Client) {
				res, err := c.Auth.RefreshToken(context.Background(), "r1")
				require.NoError(t, err)
				assert.Equal(t, "jwt2", res.Token)
				assert.Equal(t, "r2", res.RefreshToken)
			},
		},
		{
			name: "verify email", method: http.MethodPost, path: "/api/auth/verify-email",
			wantBody: map[string]any{"token": "v1"},
			response: map[string]any{"success": true},
			call: func(t *testing.T, c *Client) {
				require.NoError(t, c.Auth.VerifyEmail(context.Background(), "v1"))
			},
		},
		{
			name: "forgot password", method: http.MethodPost, path: "/api/auth/forgot-password",
			wantBody: map[string]any{"email": "a@b.c"},
			response: map[string]any{"success": true},
			call: func(t *testing.T, c *Client) {
				require.NoError(t, c.Auth.ForgotPassword(context.Background(), "a@b.c"))
			},
		},
		{
			name: "reset password", method: http.MethodPost, path: "/api/auth/reset-password",
			wantBody: map[string]any{"token": "t1", "password": "new-pw"},
			response: map[string]any{"success": true},
			call: func(t *testing.T, c *Client) {
				err := c.Auth.ResetPassword(context.Background(), models.PasswordResetConfirm{Token: "t1", Password: "new-pw"})
				require.NoError(t, err)
			},
		},
		{
			name: "get profile", method: http.MethodGet, path: "/api/user/profile",
			response: map[string]any{"user": user},
			call: func(t *testing.T, c *Client) {
				u, err := c.Users.GetProfile(context.Background())
				require.NoError(t, err)
				assert.Equal(t, "u1", u.ID)
				assert.Equal(t, "Asha Rao", u.Name)
			},
		},
		{
			name: "update profile", method: http.MethodPut, path: "/api/user/profile",
			wantBody: map[string]any{"fullName": "Asha R"},
			response: map[string]any{"_id": "u1", "fullName": "Asha R"},
			call: func(t *testing.T, c *Client) {
				u, err := c.Users.UpdateProfile(context.Background(), map[string]any{"fullName": "Asha R"})
				require.NoError(t, err)
				assert.Equal(t, "Asha R", u.Name)
			},
		},
		{
			name: "change password", method: http.MethodPut, path: "/api/user/change-password",
			wantBody: map[string]any{"currentPassword": "old", "newPassword": "new"},
			response: map[string]any{"success": true},
			call: func(t *testing.T, c *Client) {
				err := c.Users.ChangePassword(context.Background(), models.PasswordChange{CurrentPassword: "old", NewPassword: "new"})
				require.NoError(t, err)
			},
		},
		{
			name: "delete account", method: http.MethodDelete, path: "/api/user/account",
			response: map[string]any{"success": true},
			call: func(t *testing.T, c *Client) {
				require.NoError(t, c.Users.DeleteAccount(context.Background()))
			},
		},
		{
			name: "campaign by slug", method: http.MethodGet, path: "/api/campaigns/slug/clean-water",
			response: map[string]any{"campaign": map[string]any{"_id": "c1", "title": "Clean Water"}},
			call: func(t *testing.T, c *Client) {
				camp, err := c.Campaigns.GetBySlug(context.Background(), "clean-water")
				require.NoError(t, err)
				assert.Equal(t, "c1", camp.ID)
			},
		},
		{
			name: "my campaigns", method: http.MethodGet, path: "/api/campaigns/my-campaigns",
			response: map[string]any{"campaigns": []any{map[string]any{"_id": "c1", "title": "Clean Water"}}},
			call: func(t *testing.T, c *Client) {
				list, err := c.Campaigns.Mine(context.Background())
				require.NoError(t, err)
				require.Len(t, list, 1)
				assert.Equal(t, "Clean Water", list[0].Title)
			},
		},
		{
			name: "update campaign", method: http.MethodPut, path: "/api/campaigns/c1",
			wantBody: map[string]any{"title": "Cleaner Water"},
			response: map[string]any{"_id": "c1", "title": "Cleaner Water"},
			call: func(t *testing.T, c *Client) {
				camp, err := c.Campaigns.Update(context.Background(), "c1", map[string]any{"title": "Cleaner Water"})
				require.NoError(t, err)
				assert.Equal(t, "Cleaner Water", camp.Title)
			},
		},
		{
			name: "my donations", method: http.MethodGet, path: "/api/donations/my-donations",
			response: map[string]any{"donations": []any{map[string]any{"_id": "d1", "amount": 500.0, "campaign": "c1"}}},
			call: func(t *testing.T, c *Client) {
				list, err := c.Donations.Mine(context.Background())
				require.NoError(t, err)
				require.Len(t, list, 1)
				assert.Equal(t, 500.0, list[0].Amount)
				assert.Equal(t, "c1", list[0].CampaignID)
			},
		},
		{
			name: "campaign donations", method: http.MethodGet, path: "/api/donations/campaign/c1",
			response: []any{map[string]any{"_id": "d1", "amount": 250.0}},
			call: func(t *testing.T, c *Client) {
				list, err := c.Donations.ForCampaign(context.Background(), "c1")
				require.NoError(t, err)
				require.Len(t, list, 1)
				assert.Equal(t, "d1", list[0].ID)
			},
		},
		{
			name: "process payment", method: http.MethodPost, path: "/api/donations/process-payment",
			wantBody: map[string]any{"donationId": "d1", "amount": 250.0, "paymentMethod": "upi"},
			response: map[string]any{"paymentStatus": "completed"},
			call: func(t *testing.T, c *Client) {
				res, err := c.Donations.ProcessPayment(context.Background(), models.PaymentRequest{DonationID: "d1", Amount: 250, PaymentMethod: "upi"})
				require.NoError(t, err)
				assert.Equal(t, "completed", res["paymentStatus"])
			},
		},
		{
			name: "public ngo", method: http.MethodGet, path: "/api/public/ngo/n1",
			response: map[string]any{"ngo": map[string]any{"_id": "n1", "fullName": "Helping Hands"}, "campaigns": []any{}},
			call: func(t *testing.T, c *Client) {
				view, err := c.Public.NGO(context.Background(), "n1")
				require.NoError(t, err)
				assert.Equal(t, "n1", view.User.ID)
			},
		},
		{
			name: "public company", method: http.MethodGet, path: "/api/public/company/co1",
			response: map[string]any{"company": map[string]any{"_id": "co1", "fullName": "Acme Corp"}},
			call: func(t *testing.T, c *Client) {
				view, err := c.Public.Company(context.Background(), "co1")
				require.NoError(t, err)
				assert.Equal(t, "Acme Corp", view.User.Name)
			},
		},
		{
			name: "admin create user", method: http.MethodPost, path: "/api/admin/users",
			wantBody: map[string]any{"email": "n@b.c", "role": "ngo"},
			response: map[string]any{"user": map[string]any{"_id": "u9", "email": "n@b.c"}},
			call: func(t *testing.T, c *Client) {
				u, err := c.Admin.CreateUser(context.Background(), map[string]any{"email": "n@b.c", "role": "ngo"})
				require.NoError(t, err)
				assert.Equal(t, "u9", u.ID)
			},
		},
		{
			name: "admin update user", method: http.MethodPut, path: "/api/admin/users/u1/details",
			wantBody: map[string]any{"fullName": "Asha"},
			response: map[string]any{"success": true},
			call: func(t *testing.T, c *Client) {
				require.NoError(t, c.Admin.UpdateUser(context.Background(), "u1", map[string]any{"fullName": "Asha"}))
			},
		},
		{
			name: "admin update profile", method: http.MethodPut, path: "/api/admin/users/u1/profile",
			wantBody: map[string]any{"website": "https://example.org"},
			response: map[string]any{"success": true},
			call: func(t *testing.T, c *Client) {
				require.NoError(t, c.Admin.UpdateUserProfile(context.Background(), "u1", map[string]any{"website": "https://example.org"}))
			},
		},
		{
			name: "tasks today", method: http.MethodGet, path: "/api/user/tasks/today",
			response: map[string]any{"tasks": []any{map[string]any{"_id": "t1", "title": "Call donor", "status": "pending"}}},
			call: func(t *testing.T, c *Client) {
				tasks, err := c.Tasks.Today(context.Background())
				require.NoError(t, err)
				require.Len(t, tasks, 1)
				assert.Equal(t, "Call donor", tasks[0].Title)
			},
		},
		{
			name: "update task", method: http.MethodPut, path: "/api/user/tasks/t1",
			response: map[string]any{"task": map[string]any{"_id": "t1", "title": "Call donor back", "status": "in_progress"}},
			call: func(t *testing.T, c *Client) {
				task, err := c.Tasks.Update(context.Background(), "t1", models.Task{Title: "Call donor back"})
				require.NoError(t, err)
				assert.Equal(t, "Call donor back", task.Title)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.method, r.Method)
				assert.Equal(t, tt.path, r.URL.Path)
				if tt.wantBody != nil {
					assert.Equal(t, tt.wantBody, decodeBody(t, r))
				}
				writeJSON(t, w, http.StatusOK, tt.response)
			})
			tt.call(t, client)
		})
	}
}

func TestAccountEndpointsNotFound(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{"message": "Not found"})
	})
	ctx := context.Background()

	_, err := client.Campaigns.GetBySlug(ctx, "gone")
	var nf apperrors.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "gone", nf.ID)

	_, err = client.Donations.ForCampaign(ctx, "c404")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	err = client.Admin.UpdateUser(ctx, "u404", map[string]any{})
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "user", nf.Kind)
}

func TestUploadAvatar(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/avatar", r.URL.Path)
		file, header, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "me.jpg", header.Filename)
		assert.Equal(t, "JPEG", string(data))
		writeJSON(t, w, http.StatusOK, map[string]any{"profileImage": "https://cdn.example.org/me.jpg"})
	})

	url, err := client.Users.UploadAvatar(context.Background(), "me.jpg", strings.NewReader("JPEG"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.org/me.jpg", url)
}

func TestUploadCampaignImages(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/campaigns/c1/images", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Len(t, r.MultipartForm.File["images"], 2)
		writeJSON(t, w, http.StatusOK, map[string]any{"campaign": map[string]any{
			"_id": "c1", "title": "Clean Water", "images": []any{"a.jpg", "b.jpg"},
		}})
	})

	images, err := client.Campaigns.UploadImages(context.Background(), "c1", []FilePart{
		{Filename: "a.jpg", Content: strings.NewReader("A")},
		{Filename: "b.jpg", Content: strings.NewReader("B")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, images)
}

func TestBaseURL(t *testing.T) {
	server, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, server.URL+"/api", client.BaseURL())
}
