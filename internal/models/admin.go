package models

import (
	"sort"
	"time"
)

// Activity is one entry in a user's admin activity feed.
type Activity struct {
	Type        string         `json:"type"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Timestamp   string         `json:"timestamp"`
	Details     map[string]any `json:"details,omitempty"`
}

// Time parses Timestamp, returning the zero time when it is malformed.
func (a Activity) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, a.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SortActivities orders activities newest first.
func SortActivities(activities []Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Time().After(activities[j].Time())
	})
}

// UserDetail is the admin view of a single user.
type UserDetail struct {
	User       User           `json:"user"`
	Stats      map[string]any `json:"stats"`
	Activities []Activity     `json:"activities"`
	Campaigns  []Campaign     `json:"campaigns"`
}

// UserDistribution counts users per role.
type UserDistribution struct {
	Donor   int `json:"donor"`
	NGO     int `json:"ngo"`
	Company int `json:"company"`
}

// CampaignStatusCounts counts campaigns per derived status.
type CampaignStatusCounts struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Disabled  int `json:"disabled"`
}

// DashboardStats feeds the admin dashboard. Missing values are zero.
type DashboardStats struct {
	TotalUsers       int                  `json:"totalUsers"`
	TotalCampaigns   int                  `json:"totalCampaigns"`
	TotalDonations   float64              `json:"totalDonations"`
	PendingApprovals int                  `json:"pendingApprovals"`
	UserDistribution UserDistribution     `json:"userDistribution"`
	CampaignStatus   CampaignStatusCounts `json:"campaignStatus"`
	RecentUsers      []User               `json:"recentUsers"`
	SystemHealth     map[string]any       `json:"systemHealth"`
}

// NoticeAuthor is the admin who published a notice.
type NoticeAuthor struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
}

// Notice is a broadcast message to a set of users.
type Notice struct {
	ID          string       `json:"_id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Type        string       `json:"type"`
	Priority    string       `json:"priority"`
	TargetRole  string       `json:"targetRole"`
	TargetUsers []string     `json:"targetUsers,omitempty"`
	IsActive    bool         `json:"isActive"`
	SendEmail   bool         `json:"sendEmail,omitempty"`
	ScheduledAt string       `json:"scheduledAt,omitempty"`
	CreatedBy   NoticeAuthor `json:"createdBy"`
	CreatedAt   string       `json:"createdAt,omitempty"`
	ReadBy      []string     `json:"readBy,omitempty"`
}

// NoticeRequest creates or updates a notice.
type NoticeRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	TargetRole  string   `json:"targetRole"`
	TargetUsers []string `json:"targetUsers,omitempty"`
	IsActive    bool     `json:"isActive"`
	SendEmail   bool     `json:"sendEmail"`
	ScheduledAt string   `json:"scheduledAt,omitempty"`
}

// ReportType names an admin report.
type ReportType string

const (
	ReportUsers     ReportType = "users"
	ReportCampaigns ReportType = "campaigns"
	ReportDonations ReportType = "donations"
	ReportFinancial ReportType = "financial"
)

// Valid reports whether t is a known report.
func (t ReportType) Valid() bool {
	switch t {
	case ReportUsers, ReportCampaigns, ReportDonations, ReportFinancial:
		return true
	}
	return false
}

// ReportParams narrows a report to a date range and filters.
type ReportParams struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Role      string `json:"role,omitempty"`
	Status    string `json:"status,omitempty"`
	Category  string `json:"category,omitempty"`
}

// Report is a generated report. Summary keys differ per report type.
type Report struct {
	Type    ReportType     `json:"type"`
	Summary map[string]any `json:"summary"`
	Data    []any          `json:"data,omitempty"`
}

// ShareLink is a public link to a customized profile or campaign page.
type ShareLink struct {
	ShareID   string `json:"shareId"`
	URL       string `json:"url"`
	Type      string `json:"type"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// ShareRequest customizes a share page.
type ShareRequest struct {
	Type          string         `json:"type"`
	TargetID      string         `json:"targetId"`
	Customization map[string]any `json:"customization,omitempty"`
}

// SharedProfile is the payload behind /share/profile/:shareId.
type SharedProfile struct {
	User          User           `json:"user"`
	Campaigns     []Campaign     `json:"campaigns"`
	Customization map[string]any `json:"customization,omitempty"`
}

// SharedCampaign is the payload behind /share/campaign/:shareId.
type SharedCampaign struct {
	Campaign      Campaign       `json:"campaign"`
	Customization map[string]any `json:"customization,omitempty"`
}
