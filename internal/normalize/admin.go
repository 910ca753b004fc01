package normalize

import "donationhub/internal/models"

const (
	defaultRateWindowMs    = 900000
	defaultRateMaxRequests = 100
	defaultRateMessage     = "Too many requests, please try again later"
)

// DashboardStats maps the backend overview onto the dashboard model. Every
// missing figure is zero.
func DashboardStats(raw map[string]any) models.DashboardStats {
	overview, _ := raw["overview"].(map[string]any)

	users := intOf(overview, "totalUsers")
	ngos := intOf(overview, "totalngos", "totalNgos", "totalNGOs")
	companies := intOf(overview, "totalCompanies")
	campaigns := intOf(overview, "totalCampaigns")
	active := intOf(overview, "activeCampaigns")

	stats := models.DashboardStats{
		TotalUsers:       users,
		TotalCampaigns:   campaigns,
		TotalDonations:   amount(overview, []string{"totalRaised", "totalDonations"}),
		PendingApprovals: intOf(overview, "pendingApprovals"),
		UserDistribution: models.UserDistribution{
			Donor:   max(0, users-ngos-companies),
			NGO:     ngos,
			Company: companies,
		},
		CampaignStatus: models.CampaignStatusCounts{
			Active:    active,
			Completed: intOf(overview, "completedCampaigns"),
			Disabled:  max(0, campaigns-active),
		},
		SystemHealth: map[string]any{},
	}
	if list, ok := raw["recentUsers"].([]any); ok {
		stats.RecentUsers = Users(list)
	}
	if health, ok := raw["systemHealth"].(map[string]any); ok {
		stats.SystemHealth = health
	}
	return stats
}

// Settings reads the settings document. Contact details live under "legal"
// on newer backends and "contact" on older ones.
func Settings(raw map[string]any) models.Settings {
	if nested, ok := raw["settings"].(map[string]any); ok {
		raw = nested
	}
	branding, _ := raw["branding"].(map[string]any)
	legal, _ := raw["legal"].(map[string]any)
	contact, _ := raw["contact"].(map[string]any)
	copyright, _ := raw["copyright"].(map[string]any)
	limits, _ := raw["rate_limiting"].(map[string]any)

	firstOf := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}

	s := models.Settings{
		Branding: models.Branding{
			SiteName:       stringOf(branding, "site_name", "siteName"),
			PrimaryColor:   stringOf(branding, "primary_color", "primaryColor"),
			SecondaryColor: stringOf(branding, "secondary_color", "secondaryColor"),
			LogoURL:        stringOf(branding, "logo_url", "logoUrl", "logo"),
			FaviconURL:     stringOf(branding, "favicon_url", "faviconUrl", "favicon"),
		},
		Contact: models.Contact{
			Email:   firstOf(stringOf(legal, "contact_email"), stringOf(contact, "email")),
			Phone:   firstOf(stringOf(legal, "contact_phone"), stringOf(contact, "phone")),
			Address: firstOf(stringOf(legal, "contact_address"), stringOf(contact, "address")),
		},
		Copyright: firstOf(stringOf(legal, "copyright_text"), stringOf(copyright, "text")),
		RateLimiter: models.RateLimiter{
			WindowMs:    defaultRateWindowMs,
			MaxRequests: defaultRateMaxRequests,
			Message:     defaultRateMessage,
		},
		Environment: map[string]any{},
	}

	if minutes := intOf(limits, "window_minutes"); minutes > 0 {
		s.RateLimiter.WindowMs = int64(minutes) * 60 * 1000
	}
	if n := intOf(limits, "max_requests"); n > 0 {
		s.RateLimiter.MaxRequests = n
	}
	if env, ok := raw["environment"].(map[string]any); ok {
		s.Environment = env
	}
	return s
}

// Donation reads a donation record whose campaign and donor may be embedded
// objects or plain ids.
func Donation(raw map[string]any) models.Donation {
	d := models.Donation{
		ID:            stringOf(raw, "_id", "id"),
		Amount:        amount(raw, []string{"amount"}),
		DonorName:     stringOf(raw, "donorName"),
		PaymentMethod: stringOf(raw, "paymentMethod"),
		Status:        stringOf(raw, "status", "paymentStatus"),
		CreatedAt:     stringOf(raw, "createdAt"),
	}

	for _, k := range []string{"campaignId", "campaign"} {
		switch v := raw[k].(type) {
		case map[string]any:
			d.CampaignID = stringOf(v, "_id", "id")
			d.CampaignTitle = stringOf(v, "title", "campaignName")
		case string:
			d.CampaignID = v
		}
		if d.CampaignID != "" {
			break
		}
	}
	if d.CampaignTitle == "" {
		d.CampaignTitle = stringOf(raw, "campaignTitle")
	}

	if d.DonorName == "" {
		if donor, ok := raw["donorId"].(map[string]any); ok {
			d.DonorName = stringOf(donor, "fullName", "name")
		}
	}
	return d
}
