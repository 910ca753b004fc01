package models

import (
	"encoding/json"
	"time"
)

// CampaignStatus is derived from funding, end date and the active flag.
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignDisabled  CampaignStatus = "disabled"
)

// UserStatus is derived from approval status and the active flag.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserPending  UserStatus = "pending"
	UserDisabled UserStatus = "disabled"
)

// ApprovalStatus is the admin review state of a user or campaign.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Role of an account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleNGO     Role = "ngo"
	RoleCompany Role = "company"
	RoleDonor   Role = "donor"
)

// Campaign is the view model rendered by every campaign page.
type Campaign struct {
	ID                      string         `json:"id"`
	Title                   string         `json:"title"`
	Slug                    string         `json:"slug"`
	Organizer               string         `json:"organizer"`
	OrganizerID             string         `json:"organizerId"`
	OrganizerLogo           string         `json:"organizerLogo"`
	OrganizerApprovalStatus ApprovalStatus `json:"organizerApprovalStatus"`
	OrganizerActive         bool           `json:"organizerActive"`
	Description             string         `json:"description"`
	FullDescription         string         `json:"fullDescription"`
	Goal                    float64        `json:"goal"`
	Raised                  float64        `json:"raised"`
	Percentage              int            `json:"percentage"`
	Category                string         `json:"category"`
	Location                string         `json:"location"`
	Verified                bool           `json:"verified"`
	Urgent                  bool           `json:"urgent"`
	Images                  []string       `json:"images"`
	Status                  CampaignStatus `json:"status"`
	EndDate                 *time.Time     `json:"endDate,omitempty"`
	IsActive                bool           `json:"isActive"`
	ApprovalStatus          ApprovalStatus `json:"approvalStatus,omitempty"`

	// Extra holds backend fields the view model does not name.
	Extra map[string]any `json:"-"`
}

// MarshalJSON writes Extra inline next to the named fields.
func (c Campaign) MarshalJSON() ([]byte, error) {
	type plain Campaign
	return marshalWithExtra(plain(c), c.Extra)
}

// DaysLeft returns whole days until the end date, never negative. The second
// result is false when the campaign has no end date.
func (c Campaign) DaysLeft(now time.Time) (int, bool) {
	if c.EndDate == nil {
		return 0, false
	}
	d := c.EndDate.Sub(now)
	if d <= 0 {
		return 0, true
	}
	return int(d.Hours()/24) + 1, true
}

// User is the view model for donors, NGOs, companies and admins.
type User struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Username       string         `json:"username"`
	Email          string         `json:"email,omitempty"`
	PhoneNumber    string         `json:"phoneNumber,omitempty"`
	Role           Role           `json:"role"`
	Status         UserStatus     `json:"status"`
	Avatar         string         `json:"avatar"`
	CreatedAt      string         `json:"createdAt,omitempty"`
	IsActive       bool           `json:"isActive"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
	Profile        map[string]any `json:"profile,omitempty"`

	Extra map[string]any `json:"-"`
}

// MarshalJSON writes Extra inline next to the named fields.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return marshalWithExtra(plain(u), u.Extra)
}

// ProfileString returns a string profile field or "".
func (u User) ProfileString(key string) string {
	if s, ok := u.Profile[key].(string); ok {
		return s
	}
	return ""
}

// AdminActions lists which moderation controls apply to a user.
type AdminActions struct {
	Approve bool
	Toggle  bool
	Delete  bool
}

// AdminActions returns the controls an admin may use on u. Pending users can
// only be approved; everyone else can be enabled or disabled.
func (u User) AdminActions() AdminActions {
	if u.Status == UserPending {
		return AdminActions{Approve: true, Delete: true}
	}
	return AdminActions{Toggle: true, Delete: true}
}

func marshalWithExtra(v any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, named := fields[k]; !named {
			fields[k] = val
		}
	}
	return json.Marshal(fields)
}

// Pagination describes one page of a list endpoint.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// CampaignFilters are the filter values the backend offers.
type CampaignFilters struct {
	Categories []string `json:"categories"`
	Locations  []string `json:"locations"`
}

// Empty reports whether no filter values are known yet.
func (f CampaignFilters) Empty() bool {
	return len(f.Categories) == 0 && len(f.Locations) == 0
}

// CampaignPage is one page of public campaigns.
type CampaignPage struct {
	Campaigns  []Campaign      `json:"campaigns"`
	Pagination Pagination      `json:"pagination"`
	Filters    CampaignFilters `json:"filters"`
}

// UserPage is one page of users from the admin listing.
type UserPage struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}

// Organizations groups the public NGO and company directories.
type Organizations struct {
	NGOs      []User `json:"ngos"`
	Companies []User `json:"companies"`
}

// ProfileView is an organization profile with its campaigns.
type ProfileView struct {
	User      User       `json:"user"`
	Campaigns []Campaign `json:"campaigns"`
}
