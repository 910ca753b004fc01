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

func TestPublicCampaignsPage(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/campaigns", r.URL.Path)
		assert.Equal(t, "", r.URL.Query().Get("category"))
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))

		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"campaigns": []any{
					map[string]any{"_id": "c1", "title": "Books for All", "targetAmount": 1000.0, "currentAmount": 250.0, "isActive": true},
					map[string]any{"_id": "c2", "campaignName": "Warm Winter", "goalAmount": 500.0, "raisedAmount": 500.0, "isActive": true},
				},
				"pagination": map[string]any{"page": 2.0, "limit": 12.0, "total": 30.0, "pages": 3.0, "hasNext": true},
				"filters":    map[string]any{"categories": []any{"Education"}, "locations": []any{"Delhi", "Pune"}},
			},
		})
	})

	page, err := client.Public.Campaigns(context.Background(), CampaignFilter{Category: "All", Status: "active", Page: 2, Limit: 12})
	require.NoError(t, err)

	require.Len(t, page.Campaigns, 2)
	assert.Equal(t, models.CampaignActive, page.Campaigns[0].Status)
	assert.Equal(t, 25, page.Campaigns[0].Percentage)
	assert.Equal(t, "Warm Winter", page.Campaigns[1].Title)
	assert.Equal(t, models.CampaignCompleted, page.Campaigns[1].Status)
	assert.True(t, page.Pagination.HasNext)
	assert.Equal(t, []string{"Delhi", "Pune"}, page.Filters.Locations)
}

func TestPublicCampaignsBareArray(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []any{map[string]any{"_id": "c1"}})
	})

	page, err := client.Public.Campaigns(context.Background(), CampaignFilter{Limit: 12})
	require.NoError(t, err)
	assert.Len(t, page.Campaigns, 1)
	assert.False(t, page.Pagination.HasNext)
	assert.Equal(t, 12, page.Pagination.Limit)
}

func TestPublicCampaignNotFound(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]any{"success": false, "message": "Campaign not found"})
	})

	_, err := client.Public.Campaign(context.Background(), "missing")
	require.Error(t, err)

	var nf apperrors.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "campaign", nf.Kind)
	assert.Equal(t, "missing", nf.ID)
}

func directoryHandler(t *testing.T, ngoStatus int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/organizations/ngos/public":
			if ngoStatus != http.StatusOK {
				w.WriteHeader(ngoStatus)
				return
			}
			writeJSON(t, w, http.StatusOK, map[string]any{"ngos": []any{
				map[string]any{"_id": "n1", "fullName": "Helping Hands", "role": "ngo", "approvalStatus": "approved"},
			}})
		case "/api/organizations/companies/public":
			writeJSON(t, w, http.StatusOK, map[string]any{"companies": []any{
				map[string]any{"_id": "co1", "fullName": "Acme Corp", "role": "company", "approvalStatus": "approved"},
			}})
		case "/api/public/campaigns":
			writeJSON(t, w, http.StatusOK, map[string]any{"campaigns": []any{
				map[string]any{"_id": "c1", "title": "Mine", "ngoId": map[string]any{"_id": "n1", "fullName": "Helping Hands"}},
				map[string]any{"_id": "c2", "title": "Theirs", "ngoId": map[string]any{"_id": "n2", "fullName": "Other"}},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestOrganizationsAllSettled(t *testing.T) {
	_, client := setupTestServer(t, directoryHandler(t, http.StatusInternalServerError))

	orgs, err := client.Public.Organizations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orgs.NGOs)
	require.Len(t, orgs.Companies, 1)
	assert.Equal(t, "acme_corp", orgs.Companies[0].Username)
}

func TestProfileByUsername(t *testing.T) {
	_, client := setupTestServer(t, directoryHandler(t, http.StatusOK))

	view, err := client.Public.ProfileByUsername(context.Background(), "helping_hands")
	require.NoError(t, err)
	assert.Equal(t, "n1", view.User.ID)
	require.Len(t, view.Campaigns, 1)
	assert.Equal(t, "c1", view.Campaigns[0].ID)

	company, err := client.Public.ProfileByUsername(context.Background(), "acme_corp")
	require.NoError(t, err)
	assert.Empty(t, company.Campaigns)

	_, err = client.Public.ProfileByUsername(context.Background(), "nobody")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestShareCampaign(t *testing.T) {
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/share/campaign/abc123", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{
			"campaign":      map[string]any{"_id": "c1", "title": "Shared"},
			"customization": map[string]any{"theme": "dark"},
		}})
	})

	shared, err := client.Public.ShareCampaign(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Shared", shared.Campaign.Title)
	assert.Equal(t, "dark", shared.Customization["theme"])
}

func TestSubscribeAndContact(t *testing.T) {
	var paths []string
	_, client := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "message": "ok"})
	})

	require.NoError(t, client.Public.Subscribe(context.Background(), "me@example.org"))
	require.NoError(t, client.Public.Contact(context.Background(), models.ContactMessage{Name: "A", Email: "a@b.c", Message: "hi"}))
	assert.Equal(t, []string{"/api/public/newsletter/subscribe", "/api/public/contact"}, paths)
}
