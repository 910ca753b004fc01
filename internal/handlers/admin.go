package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"donationhub/internal/api"
	apperrors "donationhub/internal/errors"
	"donationhub/internal/logger"
	"donationhub/internal/models"
)

const adminUsersPerPage = 20

var (
	adminRoles       = []models.Role{models.RoleDonor, models.RoleNGO, models.RoleCompany, models.RoleAdmin}
	adminUserStatus  = []models.UserStatus{models.UserActive, models.UserPending, models.UserDisabled}
	campaignStatuses = []models.CampaignStatus{models.CampaignActive, models.CampaignCompleted, models.CampaignDisabled}
	reportTypes      = []models.ReportType{models.ReportUsers, models.ReportCampaigns, models.ReportDonations, models.ReportFinancial}

	noticeTypes      = []string{"info", "warning", "success", "urgent"}
	noticePriorities = []string{"low", "medium", "high"}
	noticeAudiences  = []string{"all", "donor", "ngo", "company"}
)

type dashboardData struct {
	Stats models.DashboardStats
	Err   string
}

// DashboardPage shows the admin figures. When the stats call fails the
// zero-filled figures are shown with the error.
func (h *Handler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	stats, err := h.API.Admin.DashboardStats(r.Context())
	data := dashboardData{Stats: stats}
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.renderError(w, r, err)
			return
		}
		logger.ErrorContext(r.Context(), "failed to load dashboard stats", "error", err)
		data.Err = "Failed to load dashboard statistics. " + apperrors.Message(err)
	}
	h.render(w, r, http.StatusOK, "admin_dashboard.html", "Dashboard", data)
}

type usersData struct {
	Page     models.UserPage
	Role     string
	Status   string
	Roles    []models.Role
	Statuses []models.UserStatus
	PrevURL  string
	NextURL  string
	Err      string
}

// UsersPage lists users with role and status filters.
func (h *Handler) UsersPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := api.UserFilter{
		Page:   atoiDefault(q.Get("page"), 1),
		Limit:  adminUsersPerPage,
		Role:   q.Get("role"),
		Status: q.Get("status"),
	}
	data := usersData{Role: filter.Role, Status: filter.Status, Roles: adminRoles, Statuses: adminUserStatus}

	page, err := h.API.Admin.Users(r.Context(), filter)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.renderError(w, r, err)
			return
		}
		logger.ErrorContext(r.Context(), "failed to load users", "error", err)
		data.Err = "Failed to load users. " + apperrors.Message(err)
	}
	data.Page = page

	link := func(n int) string {
		v := url.Values{}
		if filter.Role != "" {
			v.Set("role", filter.Role)
		}
		if filter.Status != "" {
			v.Set("status", filter.Status)
		}
		v.Set("page", strconv.Itoa(n))
		return "/admin/users?" + v.Encode()
	}
	if page.Pagination.HasPrev {
		data.PrevURL = link(page.Pagination.Page - 1)
	}
	if page.Pagination.HasNext {
		data.NextURL = link(page.Pagination.Page + 1)
	}

	h.render(w, r, http.StatusOK, "admin_users.html", "Users", data)
}

// UserPage shows a user with stats, activity and campaigns.
func (h *Handler) UserPage(w http.ResponseWriter, r *http.Request) {
	detail, err := h.API.Admin.User(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_user.html", detail.User.Name, detail)
}

// ApproveUser approves a pending account.
func (h *Handler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userId")
	h.adminAction(w, r, "/admin/users/"+id, "User approved.", h.API.Admin.ApproveUser(r.Context(), id))
}

// RejectUser keeps an account pending.
func (h *Handler) RejectUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userId")
	h.adminAction(w, r, "/admin/users/"+id, "User rejected.", h.API.Admin.RejectUser(r.Context(), id))
}

// ToggleUser disables an active account or re-enables an inactive one. The
// form posts the state the admin saw.
func (h *Handler) ToggleUser(w http.ResponseWriter, r *http.Request) {
	u := models.User{ID: chi.URLParam(r, "userId"), IsActive: formBool(r, "active")}
	msg := "User enabled."
	if u.IsActive {
		msg = "User disabled."
	}
	h.adminAction(w, r, "/admin/users/"+u.ID, msg, h.API.Admin.ToggleUserStatus(r.Context(), u))
}

// DeleteUser removes an account.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.API.Admin.DeleteUser(r.Context(), chi.URLParam(r, "userId"))
	h.adminActionTo(w, r, "/admin/users", "User deleted.", err)
}

// adminAction finishes a moderation POST: back to the referring admin page,
// or fallback, with a notice.
func (h *Handler) adminAction(w http.ResponseWriter, r *http.Request, fallback, success string, err error) {
	back := refererPath(r.Referer())
	if !strings.HasPrefix(back, "/admin") {
		back = fallback
	}
	h.adminActionTo(w, r, back, success, err)
}

func (h *Handler) adminActionTo(w http.ResponseWriter, r *http.Request, target, success string, err error) {
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.renderError(w, r, err)
			return
		}
		logger.WarnContext(r.Context(), "admin action failed", "path", r.URL.Path, "error", err)
		h.redirectWithFlash(w, r, target, "error", apperrors.Message(err))
		return
	}
	logger.InfoContext(r.Context(), "admin action", "path", r.URL.Path)
	h.redirectWithFlash(w, r, target, "success", success)
}

type campaignsData struct {
	Campaigns []models.Campaign
	Status    string
	Statuses  []models.CampaignStatus
	Err       string
}

// CampaignsPage lists every campaign. ?status= narrows the list.
func (h *Handler) CampaignsPage(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	data := campaignsData{Status: status, Statuses: campaignStatuses}

	all, err := h.API.Admin.Campaigns(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.renderError(w, r, err)
			return
		}
		logger.ErrorContext(r.Context(), "failed to load campaigns", "error", err)
		data.Err = "Failed to load campaigns. " + apperrors.Message(err)
	}
	for _, c := range all {
		if status == "" || string(c.Status) == status {
			data.Campaigns = append(data.Campaigns, c)
		}
	}
	h.render(w, r, http.StatusOK, "admin_campaigns.html", "Campaigns", data)
}

// AdminCampaignPage shows one campaign to an admin.
func (h *Handler) AdminCampaignPage(w http.ResponseWriter, r *http.Request) {
	c, err := h.API.Admin.Campaign(r.Context(), chi.URLParam(r, "campaignId"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	days, ok := c.DaysLeft(h.now())
	h.render(w, r, http.StatusOK, "admin_campaign.html", c.Title, campaignData{Campaign: c, DaysLeft: days, HasEndDate: ok})
}

type editCampaignData struct {
	Campaign models.Campaign
	Error    string

	// New marks the create form, which also picks the running NGO.
	New   bool
	NGOID string
	NGOs  []models.User
}

// NewCampaignPage shows an empty campaign form.
func (h *Handler) NewCampaignPage(w http.ResponseWriter, r *http.Request) {
	h.renderNewCampaign(w, r, http.StatusOK, editCampaignData{New: true})
}

func (h *Handler) renderNewCampaign(w http.ResponseWriter, r *http.Request, status int, data editCampaignData) {
	orgs, err := h.API.Public.Organizations(r.Context())
	if err != nil {
		logger.WarnContext(r.Context(), "failed to load NGOs for campaign form", "error", err)
	}
	data.NGOs = orgs.NGOs
	h.render(w, r, status, "admin_campaign_edit.html", "New campaign", data)
}

// CreateCampaign submits the create form and opens the new campaign.
func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	draft, fields, err := campaignForm("", r)
	data := editCampaignData{Campaign: draft, New: true, NGOID: strings.TrimSpace(r.PostFormValue("ngoId"))}
	if err == nil && data.NGOID == "" {
		err = apperrors.ValidationError{Field: "ngoId", Message: "Choose the NGO running this campaign"}
	}
	if err != nil {
		data.Error = apperrors.Message(err)
		h.renderNewCampaign(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	fields["ngoId"] = data.NGOID
	fields["goalAmount"] = fields["targetAmount"]
	fields["isActive"] = true
	fields["approvalStatus"] = "approved"

	created, err := h.API.Admin.CreateCampaign(r.Context(), fields)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.renderError(w, r, err)
			return
		}
		logger.WarnContext(r.Context(), "campaign create failed", "error", err)
		data.Error = apperrors.Message(err)
		h.renderNewCampaign(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	target := "/admin/campaigns"
	if created.ID != "" {
		target += "/" + url.PathEscape(created.ID)
	}
	h.redirectWithFlash(w, r, target, "success", "Campaign created.")
}

// EditCampaignPage shows the campaign edit form.
func (h *Handler) EditCampaignPage(w http.ResponseWriter, r *http.Request) {
	c, err := h.API.Admin.Campaign(r.Context(), chi.URLParam(r, "campaignId"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_campaign_edit.html", "Edit "+c.Title, editCampaignData{Campaign: c})
}

// UpdateCampaign saves the edit form.
func (h *Handler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "campaignId")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	edited, fields, err := campaignForm(id, r)
	if err != nil {
		h.render(w, r, http.StatusUnprocessableEntity, "admin_campaign_edit.html", "Edit "+edited.Title,
			editCampaignData{Campaign: edited, Error: apperrors.Message(err)})
		return
	}

	if _, err := h.API.Admin.UpdateCampaign(r.Context(), id, fields); err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) || errors.Is(err, apperrors.ErrNotFound) {
			h.renderError(w, r, err)
			return
		}
		logger.WarnContext(r.Context(), "campaign update failed", "campaign", id, "error", err)
		h.render(w, r, http.StatusUnprocessableEntity, "admin_campaign_edit.html", "Edit "+edited.Title,
			editCampaignData{Campaign: edited, Error: apperrors.Message(err)})
		return
	}
	h.redirectWithFlash(w, r, "/admin/campaigns/"+id, "success", "Campaign updated.")
}

// campaignForm reads the edit form into a campaign for redisplay and the
// field map the backend expects.
func campaignForm(id string, r *http.Request) (models.Campaign, map[string]any, error) {
	c := models.Campaign{
		ID:          id,
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Category:    strings.TrimSpace(r.PostFormValue("category")),
		Location:    strings.TrimSpace(r.PostFormValue("location")),
		Urgent:      formBool(r, "urgent"),
	}
	fields := map[string]any{
		"title":       c.Title,
		"description": c.Description,
		"category":    c.Category,
		"location":    c.Location,
		"isUrgent":    c.Urgent,
	}

	goal, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(r.PostFormValue("targetAmount")), ",", ""), 64)
	if err == nil {
		c.Goal = goal
	}
	if end := r.PostFormValue("endDate"); end != "" {
		if t, perr := time.Parse("2006-01-02", end); perr == nil {
			c.EndDate = &t
			fields["endDate"] = t.Format(time.RFC3339)
		}
	}

	switch {
	case c.Title == "":
		return c, nil, apperrors.ValidationError{Field: "title", Message: "Title is required"}
	case err != nil || goal <= 0:
		return c, nil, apperrors.ValidationError{Field: "targetAmount", Message: "Goal must be a positive amount"}
	}
	fields["targetAmount"] = goal
	return c, fields, nil
}

// ToggleCampaign enables or disables a campaign. The form posts the state
// the admin saw.
func (h *Handler) ToggleCampaign(w http.ResponseWriter, r *http.Request) {
	c := models.Campaign{ID: chi.URLParam(r, "campaignId"), IsActive: formBool(r, "active")}
	msg := "Campaign enabled."
	if c.IsActive {
		msg = "Campaign disabled."
	}
	h.adminAction(w, r, "/admin/campaigns/"+c.ID, msg, h.API.Admin.ToggleCampaignStatus(r.Context(), c))
}

// DeleteCampaign removes a campaign.
func (h *Handler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	err := h.API.Admin.DeleteCampaign(r.Context(), chi.URLParam(r, "campaignId"))
	h.adminActionTo(w, r, "/admin/campaigns", "Campaign deleted.", err)
}

type noticesData struct {
	Notices    []models.Notice
	Form       models.NoticeRequest
	Types      []string
	Priorities []string
	Audiences  []string
	Err        string

	// EditID is the notice the form edits; empty publishes a new one.
	EditID string
}

func newNoticesData() noticesData {
	return noticesData{
		Form:       models.NoticeRequest{Type: "info", Priority: "medium", TargetRole: "all"},
		Types:      noticeTypes,
		Priorities: noticePriorities,
		Audiences:  noticeAudiences,
	}
}

// NoticesPage lists notices with a form to publish a new one, or to edit
// the notice named by ?edit=.
func (h *Handler) NoticesPage(w http.ResponseWriter, r *http.Request) {
	data := newNoticesData()
	data.EditID = r.URL.Query().Get("edit")
	h.renderNotices(w, r, http.StatusOK, data)
}

func (h *Handler) renderNotices(w http.ResponseWriter, r *http.Request, status int, data noticesData) {
	notices, err := h.API.Admin.Notices(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.renderError(w, r, err)
			return
		}
		logger.ErrorContext(r.Context(), "failed to load notices", "error", err)
		if data.Err == "" {
			data.Err = "Failed to load notices. " + apperrors.Message(err)
		}
	}
	data.Notices = notices

	if data.EditID != "" && data.Form.Title == "" {
		found := false
		for _, n := range notices {
			if n.ID == data.EditID {
				data.Form, found = noticeRequest(n), true
				break
			}
		}
		if !found {
			data.EditID = ""
		}
	}
	h.render(w, r, status, "admin_notices.html", "Notices", data)
}

// CreateNotice publishes a notice.
func (h *Handler) CreateNotice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	req := noticeForm(r)
	req.IsActive = true

	data := newNoticesData()
	data.Form = req
	if req.Title == "" || req.Content == "" {
		data.Err = "A notice needs a title and a message."
		h.renderNotices(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	if _, err := h.API.Admin.CreateNotice(r.Context(), req); err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.renderError(w, r, err)
			return
		}
		logger.WarnContext(r.Context(), "failed to create notice", "error", err)
		data.Err = apperrors.Message(err)
		h.renderNotices(w, r, http.StatusUnprocessableEntity, data)
		return
	}
	h.redirectWithFlash(w, r, "/admin/notices", "success", "Notice published.")
}

// UpdateNotice saves the edit form for one notice.
func (h *Handler) UpdateNotice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "noticeId")
	req := noticeForm(r)
	req.IsActive = formBool(r, "isActive")

	data := newNoticesData()
	data.Form, data.EditID = req, id
	if req.Title == "" || req.Content == "" {
		data.Err = "A notice needs a title and a message."
		h.renderNotices(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	if _, err := h.API.Admin.UpdateNotice(r.Context(), id, req); err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) || errors.Is(err, apperrors.ErrNotFound) {
			h.renderError(w, r, err)
			return
		}
		logger.WarnContext(r.Context(), "failed to update notice", "notice", id, "error", err)
		data.Err = apperrors.Message(err)
		h.renderNotices(w, r, http.StatusUnprocessableEntity, data)
		return
	}
	h.redirectWithFlash(w, r, "/admin/notices", "success", "Notice updated.")
}

func noticeForm(r *http.Request) models.NoticeRequest {
	return models.NoticeRequest{
		Title:      strings.TrimSpace(r.PostFormValue("title")),
		Content:    strings.TrimSpace(r.PostFormValue("content")),
		Type:       r.PostFormValue("type"),
		Priority:   r.PostFormValue("priority"),
		TargetRole: r.PostFormValue("targetRole"),
		SendEmail:  formBool(r, "sendEmail"),
	}
}

func noticeRequest(n models.Notice) models.NoticeRequest {
	return models.NoticeRequest{
		Title:       n.Title,
		Content:     n.Content,
		Type:        n.Type,
		Priority:    n.Priority,
		TargetRole:  n.TargetRole,
		TargetUsers: n.TargetUsers,
		IsActive:    n.IsActive,
		SendEmail:   n.SendEmail,
		ScheduledAt: n.ScheduledAt,
	}
}

// DeleteNotice removes a notice.
func (h *Handler) DeleteNotice(w http.ResponseWriter, r *http.Request) {
	err := h.API.Admin.DeleteNotice(r.Context(), chi.URLParam(r, "noticeId"))
	h.adminActionTo(w, r, "/admin/notices", "Notice deleted.", err)
}

type reportData struct {
	Type   models.ReportType
	Types  []models.ReportType
	Params models.ReportParams
	Report *models.Report
	Err    string
}

// ReportPage runs a report for the dates in the query string.
func (h *Handler) ReportPage(w http.ResponseWriter, r *http.Request) {
	reportType := models.ReportType(chi.URLParam(r, "reportType"))
	if !reportType.Valid() {
		h.notFound(w, r, "Report Not Found", "There is no "+string(reportType)+" report.")
		return
	}

	q := r.URL.Query()
	data := reportData{
		Type:  reportType,
		Types: reportTypes,
		Params: models.ReportParams{
			StartDate: q.Get("startDate"),
			EndDate:   q.Get("endDate"),
			Role:      q.Get("role"),
			Status:    q.Get("status"),
			Category:  q.Get("category"),
		},
	}

	report, err := h.API.Admin.Report(r.Context(), reportType, data.Params)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.renderError(w, r, err)
			return
		}
		logger.ErrorContext(r.Context(), "failed to run report", "type", reportType, "error", err)
		data.Err = "Failed to generate report. " + apperrors.Message(err)
	} else {
		data.Report = &report
	}
	h.render(w, r, http.StatusOK, "admin_report.html", titleKind(string(reportType))+" Report", data)
}

func atoiDefault(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}
