package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"donationhub/internal/models"
)

func TestDashboardStats(t *testing.T) {
	stats := DashboardStats(map[string]any{
		"overview": map[string]any{
			"totalUsers":       100.0,
			"totalngos":        20.0,
			"totalCompanies":   5.0,
			"totalCampaigns":   40.0,
			"activeCampaigns":  25.0,
			"totalRaised":      123456.5,
			"pendingApprovals": 3.0,
		},
		"recentUsers":  []any{map[string]any{"_id": "u1", "fullName": "New Person"}},
		"systemHealth": map[string]any{"db": "ok"},
	})

	assert.Equal(t, 100, stats.TotalUsers)
	assert.Equal(t, 123456.5, stats.TotalDonations)
	assert.Equal(t, models.UserDistribution{Donor: 75, NGO: 20, Company: 5}, stats.UserDistribution)
	assert.Equal(t, models.CampaignStatusCounts{Active: 25, Disabled: 15}, stats.CampaignStatus)
	assert.Equal(t, 3, stats.PendingApprovals)
	assert.Len(t, stats.RecentUsers, 1)
	assert.Equal(t, "ok", stats.SystemHealth["db"])
}

func TestDashboardStatsMissingOverview(t *testing.T) {
	stats := DashboardStats(map[string]any{})

	assert.Zero(t, stats.TotalUsers)
	assert.Zero(t, stats.TotalDonations)
	assert.Equal(t, models.UserDistribution{}, stats.UserDistribution)
	assert.NotNil(t, stats.SystemHealth)
}

func TestSettingsLegalShape(t *testing.T) {
	s := Settings(map[string]any{
		"branding": map[string]any{"site_name": "DonationHub", "primary_color": "#0a2540"},
		"legal": map[string]any{
			"contact_email":  "help@hub.example",
			"contact_phone":  "+91 1234",
			"copyright_text": "© Hub",
		},
		"contact":       map[string]any{"email": "old@hub.example", "address": "Old Street"},
		"rate_limiting": map[string]any{"window_minutes": 5.0, "max_requests": 50.0},
		"environment":   map[string]any{"NODE_ENV": "production"},
	})

	assert.Equal(t, "DonationHub", s.Branding.SiteName)
	assert.Equal(t, "#0a2540", s.Branding.PrimaryColor)
	assert.Equal(t, models.Contact{Email: "help@hub.example", Phone: "+91 1234", Address: "Old Street"}, s.Contact)
	assert.Equal(t, "© Hub", s.Copyright)
	assert.Equal(t, int64(300000), s.RateLimiter.WindowMs)
	assert.Equal(t, 50, s.RateLimiter.MaxRequests)
	assert.Equal(t, "production", s.Environment["NODE_ENV"])
}

func TestSettingsDefaults(t *testing.T) {
	s := Settings(map[string]any{"settings": map[string]any{"copyright": map[string]any{"text": "c"}}})

	assert.Equal(t, int64(900000), s.RateLimiter.WindowMs)
	assert.Equal(t, 100, s.RateLimiter.MaxRequests)
	assert.Equal(t, "c", s.Copyright)
	assert.NotNil(t, s.Environment)
}

func TestDonation(t *testing.T) {
	d := Donation(map[string]any{
		"_id":        "d1",
		"amount":     "1500",
		"campaignId": map[string]any{"_id": "c1", "title": "Meals"},
		"donorId":    map[string]any{"fullName": "Asha"},
		"status":     "completed",
	})

	assert.Equal(t, models.Donation{
		ID: "d1", Amount: 1500, CampaignID: "c1", CampaignTitle: "Meals", DonorName: "Asha", Status: "completed",
	}, d)

	plain := Donation(map[string]any{"campaign": "c9", "amount": -3.0})
	assert.Equal(t, "c9", plain.CampaignID)
	assert.Zero(t, plain.Amount)
}
