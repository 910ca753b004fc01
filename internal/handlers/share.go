package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/logger"
	"donationhub/internal/models"
)

const (
	shareProfile  = "profile"
	shareCampaign = "campaign"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// shareForm is what an admin can change about a share page.
type shareForm struct {
	Headline      string
	Message       string
	AccentColor   string
	ShowCampaigns bool
}

func (f shareForm) customization() map[string]any {
	c := map[string]any{"showCampaigns": f.ShowCampaigns}
	if f.Headline != "" {
		c["headline"] = f.Headline
	}
	if f.Message != "" {
		c["message"] = f.Message
	}
	if f.AccentColor != "" {
		c["accentColor"] = f.AccentColor
	}
	return c
}

// shareBanner is the customization shown on a public share page.
type shareBanner struct {
	Headline    string
	Message     string
	AccentColor string
}

func bannerFrom(c map[string]any) *shareBanner {
	b := shareBanner{}
	b.Headline, _ = c["headline"].(string)
	b.Message, _ = c["message"].(string)
	if color, _ := c["accentColor"].(string); hexColor.MatchString(color) {
		b.AccentColor = color
	}
	if b.Headline == "" && b.Message == "" {
		return nil
	}
	return &b
}

type shareData struct {
	Kind     string
	TargetID string
	Target   string
	BackURL  string
	Form     shareForm
	Link     *models.ShareLink
	LinkURL  string
	Error    string
}

// CustomizeSharePage shows the share-page form for an NGO or company profile.
func (h *Handler) CustomizeSharePage(w http.ResponseWriter, r *http.Request) {
	data, err := h.shareTarget(r, shareProfile, chi.URLParam(r, "userId"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	data.Form.ShowCampaigns = true
	h.render(w, r, http.StatusOK, "admin_share.html", "Share "+data.Target, data)
}

// CampaignSharePage shows the share-page form for a campaign.
func (h *Handler) CampaignSharePage(w http.ResponseWriter, r *http.Request) {
	data, err := h.shareTarget(r, shareCampaign, chi.URLParam(r, "campaignId"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "admin_share.html", "Share "+data.Target, data)
}

// CreateProfileShare creates a share link for a profile.
func (h *Handler) CreateProfileShare(w http.ResponseWriter, r *http.Request) {
	h.createShare(w, r, shareProfile, chi.URLParam(r, "userId"))
}

// CreateCampaignShare creates a share link for a campaign.
func (h *Handler) CreateCampaignShare(w http.ResponseWriter, r *http.Request) {
	h.createShare(w, r, shareCampaign, chi.URLParam(r, "campaignId"))
}

func (h *Handler) shareTarget(r *http.Request, kind, id string) (shareData, error) {
	data := shareData{Kind: kind, TargetID: id}
	switch kind {
	case shareProfile:
		detail, err := h.API.Admin.User(r.Context(), id)
		if err != nil {
			return data, err
		}
		data.Target, data.BackURL = detail.User.Name, "/admin/users/"+id
	default:
		c, err := h.API.Admin.Campaign(r.Context(), id)
		if err != nil {
			return data, err
		}
		data.Target, data.BackURL = c.Title, "/admin/campaigns/"+id
	}
	return data, nil
}

// createShare renders the form again with the new link, so the admin can
// copy it straight away.
func (h *Handler) createShare(w http.ResponseWriter, r *http.Request, kind, id string) {
	data, err := h.shareTarget(r, kind, id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	data.Form = shareForm{
		Headline:      strings.TrimSpace(r.PostFormValue("headline")),
		Message:       strings.TrimSpace(r.PostFormValue("message")),
		AccentColor:   strings.TrimSpace(r.PostFormValue("accentColor")),
		ShowCampaigns: formBool(r, "showCampaigns"),
	}
	if data.Form.AccentColor != "" && !hexColor.MatchString(data.Form.AccentColor) {
		data.Error = "Accent colour must look like #1a2b3c"
		h.render(w, r, http.StatusUnprocessableEntity, "admin_share.html", "Share "+data.Target, data)
		return
	}

	link, err := h.API.Admin.CreateShareLink(r.Context(), models.ShareRequest{
		Type:          kind,
		TargetID:      id,
		Customization: data.Form.customization(),
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.renderError(w, r, err)
			return
		}
		logger.WarnContext(r.Context(), "share link create failed", "type", kind, "target", id, "error", err)
		data.Error = apperrors.Message(err)
		h.render(w, r, http.StatusUnprocessableEntity, "admin_share.html", "Share "+data.Target, data)
		return
	}

	logger.InfoContext(r.Context(), "share link created", "type", kind, "target", id, "share", link.ShareID)
	data.Link = &link
	data.LinkURL = link.URL
	if data.LinkURL == "" {
		data.LinkURL = "/share/" + kind + "/" + link.ShareID
	}
	h.render(w, r, http.StatusOK, "admin_share.html", "Share "+data.Target, data)
}
