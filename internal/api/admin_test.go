package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/models"
)

func TestAdminUserDetail(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/users/u1", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"userProfile": map[string]any{
				"user":    map[string]any{"_id": "u1", "fullName": "Seva Trust", "role": "ngo", "approvalStatus": "pending"},
				"profile": map[string]any{"ngoName": "Seva Trust", "address": "Chennai"},
				"stats":   map[string]any{"totalCampaigns": 2.0},
				"activities": []any{
					map[string]any{"type": "login", "timestamp": "2026-01-01T00:00:00Z"},
					map[string]any{"type": "campaign", "timestamp": "2026-03-01T00:00:00Z"},
				},
				"campaigns": []any{map[string]any{"_id": "c1", "title": "Rain Water"}},
			},
		})
	})

	detail, err := client.Admin.User(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, models.UserPending, detail.User.Status)
	assert.Equal(t, "Chennai", detail.User.ProfileString("address"))
	assert.Equal(t, 2.0, detail.Stats["totalCampaigns"])
	require.Len(t, detail.Activities, 2)
	assert.Equal(t, "campaign", detail.Activities[0].Type)
	require.Len(t, detail.Campaigns, 1)
}

func TestAdminUserMissingProfile(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	})

	_, err := client.Admin.User(context.Background(), "u9")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestApprovalTransitions(t *testing.T) {
	tests := []struct {
		name string
		call func(*AdminService) error
		want string
	}{
		{"approve", func(s *AdminService) error { return s.ApproveUser(context.Background(), "u1") }, "approved"},
		{"reject", func(s *AdminService) error { return s.RejectUser(context.Background(), "u1") }, "pending"},
		{"disable active", func(s *AdminService) error {
			return s.ToggleUserStatus(context.Background(), models.User{ID: "u1", IsActive: true})
		}, "pending"},
		{"enable inactive", func(s *AdminService) error {
			return s.ToggleUserStatus(context.Background(), models.User{ID: "u1", IsActive: false})
		}, "approved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, "/api/admin/users/u1/approval", r.URL.Path)
				assert.Equal(t, map[string]any{"approvalStatus": tt.want}, decodeBody(t, r))
				writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
			})

			require.NoError(t, tt.call(client.Admin))
		})
	}
}

func TestToggleCampaignStatus(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/campaigns/c1/status", r.URL.Path)
		assert.Equal(t, map[string]any{"isActive": false}, decodeBody(t, r))
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	})

	require.NoError(t, client.Admin.ToggleCampaignStatus(context.Background(), models.Campaign{ID: "c1", IsActive: true}))
}

func TestDeleteUserUsesCompleteEndpoint(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/admin/users/u1/complete", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	})

	require.NoError(t, client.Admin.DeleteUser(context.Background(), "u1"))
}

func TestDashboardStatsFallback(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	stats, err := client.Admin.DashboardStats(context.Background())
	require.Error(t, err)
	assert.Zero(t, stats.TotalUsers)
	assert.NotNil(t, stats.SystemHealth)
}

func TestReport(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/admin/reports/donations", r.URL.Path)
		assert.Equal(t, map[string]any{"startDate": "2026-01-01"}, decodeBody(t, r))
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"summary": map[string]any{"totalAmount": 5000.0},
			"data":    []any{map[string]any{"amount": 5000.0}},
		}})
	})

	report, err := client.Admin.Report(context.Background(), models.ReportDonations, models.ReportParams{StartDate: "2026-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, report.Summary["totalAmount"])
	assert.Len(t, report.Data, 1)

	_, err = client.Admin.Report(context.Background(), "audit", models.ReportParams{})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestNotices(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, http.StatusOK, map[string]any{"notices": []any{
				map[string]any{"_id": "n1", "title": "Maintenance", "type": "warning", "priority": "high", "targetRole": "all", "isActive": true,
					"createdBy": map[string]any{"_id": "a1", "fullName": "Admin"}},
			}})
		case http.MethodPost:
			body := decodeBody(t, r)
			body["_id"] = "n2"
			writeJSON(t, w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"notice": body}})
		}
	})

	notices, err := client.Admin.Notices(context.Background())
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, "Admin", notices[0].CreatedBy.FullName)

	created, err := client.Admin.CreateNotice(context.Background(), models.NoticeRequest{Title: "Hello", Type: "info", Priority: "low", TargetRole: "ngo"})
	require.NoError(t, err)
	assert.Equal(t, "n2", created.ID)
	assert.Equal(t, "ngo", created.TargetRole)
}
