package api

import (
	"context"
	"net/http"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/logger"
	"donationhub/internal/models"
	"donationhub/internal/normalize"
)

// allUsersLimit is the page size used to fetch every user at once.
const allUsersLimit = 1000

// AdminService is the admin console: users, campaigns, notices, reports,
// dashboard and settings.
type AdminService struct {
	c        *Client
	Settings *SettingsService
}

func newAdminService(c *Client) *AdminService {
	return &AdminService{c: c, Settings: &SettingsService{c: c}}
}

// Users lists users one page at a time.
func (s *AdminService) Users(ctx context.Context, filter UserFilter) (models.UserPage, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/admin/users", filter.Values(), nil)
	if err != nil {
		return models.UserPage{}, err
	}

	page := models.UserPage{Users: normalize.Users(items(data, "users"))}
	pagination, _ := object(data)["pagination"].(map[string]any)
	page.Pagination = normalize.Pagination(pagination, len(page.Users))
	return page, nil
}

// AllUsers lists every user in a single request.
func (s *AdminService) AllUsers(ctx context.Context) ([]models.User, error) {
	page, err := s.Users(ctx, UserFilter{Limit: allUsersLimit})
	if err != nil {
		return nil, err
	}
	return page.Users, nil
}

// User returns a user with stats, newest-first activity and campaigns.
func (s *AdminService) User(ctx context.Context, id string) (models.UserDetail, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/admin/users/"+escape(id), nil, nil)
	if err != nil {
		return models.UserDetail{}, notFound(err, "user", id)
	}

	profile, _ := object(data)["userProfile"].(map[string]any)
	rawUser, _ := profile["user"].(map[string]any)
	if stringField(rawUser, "_id", "id") == "" {
		return models.UserDetail{}, apperrors.NotFoundError{Kind: "user", ID: id}
	}

	combined := make(map[string]any, len(rawUser)+1)
	for k, v := range rawUser {
		combined[k] = v
	}
	if p, ok := profile["profile"].(map[string]any); ok {
		combined["profile"] = p
	}

	detail := models.UserDetail{
		User:      normalize.User(combined),
		Stats:     map[string]any{},
		Campaigns: s.c.campaignList(profile["campaigns"]),
	}
	if stats, ok := profile["stats"].(map[string]any); ok {
		detail.Stats = stats
	}
	if err := decodeInto(profile["activities"], &detail.Activities); err != nil {
		logger.WarnContext(ctx, "ignoring malformed user activities", "user", id, "error", err)
		detail.Activities = nil
	}
	models.SortActivities(detail.Activities)
	return detail, nil
}

// CreateUser adds an account from the admin console.
func (s *AdminService) CreateUser(ctx context.Context, fields map[string]any) (models.User, error) {
	data, err := s.c.call(ctx, http.MethodPost, "/admin/users", nil, fields)
	if err != nil {
		return models.User{}, err
	}
	return userFrom(data), nil
}

// UpdateUser changes account details.
func (s *AdminService) UpdateUser(ctx context.Context, id string, fields map[string]any) error {
	_, err := s.c.call(ctx, http.MethodPut, "/admin/users/"+escape(id)+"/details", nil, fields)
	return notFound(err, "user", id)
}

// UpdateUserProfile changes organization profile fields.
func (s *AdminService) UpdateUserProfile(ctx context.Context, id string, fields map[string]any) error {
	_, err := s.c.call(ctx, http.MethodPut, "/admin/users/"+escape(id)+"/profile", nil, fields)
	return notFound(err, "user", id)
}

func (s *AdminService) setApproval(ctx context.Context, id string, status models.ApprovalStatus) error {
	body := map[string]models.ApprovalStatus{"approvalStatus": status}
	_, err := s.c.call(ctx, http.MethodPut, "/admin/users/"+escape(id)+"/approval", nil, body)
	return notFound(err, "user", id)
}

// ApproveUser approves a pending account.
func (s *AdminService) ApproveUser(ctx context.Context, id string) error {
	return s.setApproval(ctx, id, models.ApprovalApproved)
}

// RejectUser sends an account back to pending review.
func (s *AdminService) RejectUser(ctx context.Context, id string) error {
	return s.setApproval(ctx, id, models.ApprovalPending)
}

// ToggleUserStatus disables an active account or re-enables an inactive one.
func (s *AdminService) ToggleUserStatus(ctx context.Context, u models.User) error {
	next := models.ApprovalApproved
	if u.IsActive {
		next = models.ApprovalPending
	}
	return s.setApproval(ctx, u.ID, next)
}

// DeleteUser removes an account and everything it owns.
func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	_, err := s.c.call(ctx, http.MethodDelete, "/admin/users/"+escape(id)+"/complete", nil, nil)
	return notFound(err, "user", id)
}

// Campaigns lists every campaign regardless of status.
func (s *AdminService) Campaigns(ctx context.Context) ([]models.Campaign, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/admin/campaigns", nil, nil)
	if err != nil {
		return nil, err
	}
	return s.c.campaignList(data), nil
}

// Campaign returns a campaign for the admin detail and edit pages.
func (s *AdminService) Campaign(ctx context.Context, id string) (models.Campaign, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/admin/campaigns/"+escape(id), nil, nil)
	if err != nil {
		return models.Campaign{}, notFound(err, "campaign", id)
	}
	return s.c.campaignFrom(data), nil
}

// CreateCampaign creates a campaign on behalf of an organization.
func (s *AdminService) CreateCampaign(ctx context.Context, fields map[string]any) (models.Campaign, error) {
	data, err := s.c.call(ctx, http.MethodPost, "/admin/campaigns", nil, fields)
	if err != nil {
		return models.Campaign{}, err
	}
	return s.c.campaignFrom(data), nil
}

// UpdateCampaign changes campaign fields.
func (s *AdminService) UpdateCampaign(ctx context.Context, id string, fields map[string]any) (models.Campaign, error) {
	data, err := s.c.call(ctx, http.MethodPut, "/admin/campaigns/"+escape(id), nil, fields)
	if err != nil {
		return models.Campaign{}, notFound(err, "campaign", id)
	}
	return s.c.campaignFrom(data), nil
}

// ToggleCampaignStatus flips a campaign's active flag.
func (s *AdminService) ToggleCampaignStatus(ctx context.Context, c models.Campaign) error {
	body := map[string]bool{"isActive": !c.IsActive}
	_, err := s.c.call(ctx, http.MethodPut, "/admin/campaigns/"+escape(c.ID)+"/status", nil, body)
	return notFound(err, "campaign", c.ID)
}

// DeleteCampaign removes a campaign.
func (s *AdminService) DeleteCampaign(ctx context.Context, id string) error {
	_, err := s.c.call(ctx, http.MethodDelete, "/admin/campaigns/"+escape(id), nil, nil)
	return notFound(err, "campaign", id)
}

// DashboardStats returns the dashboard figures. On failure the zero-filled
// stats are returned along with the error so the page can still render.
func (s *AdminService) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/admin/dashboard/stats", nil, nil)
	if err != nil {
		return normalize.DashboardStats(nil), err
	}
	return normalize.DashboardStats(object(data)), nil
}

// Report generates an admin report.
func (s *AdminService) Report(ctx context.Context, reportType models.ReportType, params models.ReportParams) (models.Report, error) {
	if !reportType.Valid() {
		return models.Report{}, apperrors.ValidationError{Field: "reportType", Message: "unknown report " + string(reportType)}
	}

	data, err := s.c.call(ctx, http.MethodPost, "/admin/reports/"+escape(string(reportType)), nil, params)
	if err != nil {
		return models.Report{}, err
	}

	m := object(data)
	report := models.Report{Type: reportType, Summary: m}
	if summary, ok := m["summary"].(map[string]any); ok {
		report.Summary = summary
	}
	report.Data = items(m, "data", "details", "records")
	return report, nil
}

// Notices lists every notice.
func (s *AdminService) Notices(ctx context.Context) ([]models.Notice, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/admin/notices", nil, nil)
	if err != nil {
		return nil, err
	}
	var notices []models.Notice
	if err := decodeInto(items(data, "notices"), &notices); err != nil {
		return nil, err
	}
	return notices, nil
}

func noticeFrom(data any) (models.Notice, error) {
	m := object(data)
	if inner, ok := m["notice"].(map[string]any); ok {
		m = inner
	}
	var n models.Notice
	err := decodeInto(m, &n)
	return n, err
}

// CreateNotice publishes a notice.
func (s *AdminService) CreateNotice(ctx context.Context, req models.NoticeRequest) (models.Notice, error) {
	data, err := s.c.call(ctx, http.MethodPost, "/admin/notices", nil, req)
	if err != nil {
		return models.Notice{}, err
	}
	return noticeFrom(data)
}

// UpdateNotice edits a notice.
func (s *AdminService) UpdateNotice(ctx context.Context, id string, req models.NoticeRequest) (models.Notice, error) {
	data, err := s.c.call(ctx, http.MethodPut, "/admin/notices/"+escape(id), nil, req)
	if err != nil {
		return models.Notice{}, notFound(err, "notice", id)
	}
	return noticeFrom(data)
}

// DeleteNotice removes a notice.
func (s *AdminService) DeleteNotice(ctx context.Context, id string) error {
	_, err := s.c.call(ctx, http.MethodDelete, "/admin/notices/"+escape(id), nil, nil)
	return notFound(err, "notice", id)
}

// CreateShareLink creates a public share page for a profile or campaign.
func (s *AdminService) CreateShareLink(ctx context.Context, req models.ShareRequest) (models.ShareLink, error) {
	var link models.ShareLink
	err := s.c.callInto(ctx, http.MethodPost, "/admin/share", nil, req, &link)
	return link, err
}
