package models

// Branding is the site identity shown on every page.
type Branding struct {
	SiteName       string `json:"siteName"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	LogoURL        string `json:"logoUrl,omitempty"`
	FaviconURL     string `json:"faviconUrl,omitempty"`
}

// Contact details published in the footer and contact page.
type Contact struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// RateLimiter is the backend request throttle.
type RateLimiter struct {
	WindowMs    int64  `json:"windowMs"`
	MaxRequests int    `json:"maxRequests"`
	Message     string `json:"message"`
}

// WindowMinutes converts WindowMs back to the unit the backend stores.
func (r RateLimiter) WindowMinutes() int {
	return int((r.WindowMs + 30_000) / 60_000)
}

// Settings is the admin settings document.
type Settings struct {
	Branding    Branding       `json:"branding"`
	Contact     Contact        `json:"contact"`
	Copyright   string         `json:"copyright"`
	RateLimiter RateLimiter    `json:"rateLimiter"`
	Environment map[string]any `json:"environment"`
}

// BrandingUpdate is the body of the branding update.
type BrandingUpdate struct {
	SiteName       string `json:"site_name"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
}

// ContactUpdate is the body of the legal/contact update.
type ContactUpdate struct {
	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone"`
	ContactAddress string `json:"contact_address"`
	CopyrightText  string `json:"copyright_text"`
}

// RateLimitUpdate is the body of the rate limiter update.
type RateLimitUpdate struct {
	WindowMinutes int `json:"window_minutes"`
	MaxRequests   int `json:"max_requests"`
}

// PasswordReset sets a user's password from the admin console.
type PasswordReset struct {
	NewPassword string `json:"newPassword"`
	AdminNote   string `json:"adminNote,omitempty"`
}

// ResetRequest restores settings to their defaults.
type ResetRequest struct {
	ConfirmReset bool   `json:"confirmReset"`
	ResetType    string `json:"resetType"`
}
