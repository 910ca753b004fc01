package handlers

import (
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"donationhub/internal/api"
	apperrors "donationhub/internal/errors"
	"donationhub/internal/explorer"
	"donationhub/internal/gallery"
	"donationhub/internal/logger"
	"donationhub/internal/models"
)

const (
	featuredCount = 3
	// maxExplorePages bounds how far "Load more" accumulates results.
	maxExplorePages = 10
)

var (
	exploreStatuses = []string{"All", "active", "completed"}
	sortOrders      = []api.SortOrder{api.SortNewest, api.SortEndingSoon, api.SortMostFunded, api.SortTargetAmount}
)

type homeData struct {
	Stats         models.PublicStats
	StatsErr      string
	Featured      []models.Campaign
	FeaturedErr   string
	Organizations models.Organizations
}

// HomePage loads the platform stats, featured campaigns and partner
// directory concurrently. Each section degrades on its own.
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	var data homeData
	ctx := r.Context()

	var g errgroup.Group
	g.Go(func() error {
		stats, err := h.API.Public.Stats(ctx)
		if err != nil {
			logger.WarnContext(ctx, "failed to load platform stats", "error", err)
			data.StatsErr = "Platform statistics are unavailable right now."
			return nil
		}
		data.Stats = stats
		return nil
	})
	g.Go(func() error {
		page, err := h.API.Public.Campaigns(ctx, api.CampaignFilter{
			Status: explorer.DefaultStatus,
			SortBy: api.SortNewest,
			Limit:  featuredCount,
		})
		if err != nil {
			logger.WarnContext(ctx, "failed to load featured campaigns", "error", err)
			data.FeaturedErr = "Failed to load campaigns."
			return nil
		}
		data.Featured = page.Campaigns
		return nil
	})
	g.Go(func() error {
		orgs, err := h.API.Public.Organizations(ctx)
		if err != nil {
			logger.WarnContext(ctx, "failed to load organizations", "error", err)
		}
		data.Organizations = orgs
		return nil
	})
	_ = g.Wait()

	h.render(w, r, http.StatusOK, "home.html", "", data)
}

type exploreData struct {
	Filters    explorer.Filters
	Campaigns  []models.Campaign
	Pagination models.Pagination
	Categories []string
	Locations  []string
	Statuses   []string
	Sorts      []api.SortOrder
	DebounceMs int64
	MoreURL    string
	Err        string
	RetryURL   string
}

// ExplorePage lists campaigns for the filters in the query string. "Load
// more" links carry the next page number; every page up to it is shown, so
// results accumulate rather than replace.
func (h *Handler) ExplorePage(w http.ResponseWriter, r *http.Request) {
	f := explorer.ParseFilters(r.URL.Query(), h.Cfg.ExplorePageSize)
	if f.Page > maxExplorePages {
		f.Page = maxExplorePages
	}

	data := exploreData{
		Filters:    f,
		Statuses:   withCurrent(exploreStatuses, f.Status),
		Sorts:      sortOrders,
		DebounceMs: h.Cfg.SearchDebounce.Milliseconds(),
	}

	q := f.Query()
	q.Page, q.Limit = 1, f.Limit*f.Page
	result, err := h.API.Public.Campaigns(r.Context(), q)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to load campaigns", "error", err)
		data.Err = "Failed to load campaigns. " + apperrors.Message(err)
		data.RetryURL = r.URL.RequestURI()
	} else {
		data.Campaigns = result.Campaigns
		data.Pagination = result.Pagination
		if result.Pagination.HasNext && f.Page < maxExplorePages {
			next := f.Values()
			next.Del("limit")
			next.Set("page", strconv.Itoa(f.Page+1))
			data.MoreURL = "/explore?" + next.Encode()
		}
	}
	data.Categories = withAll(result.Filters.Categories, f.Category)
	data.Locations = withAll(result.Filters.Locations, f.Location)

	h.render(w, r, http.StatusOK, "explore.html", "Explore Campaigns", data)
}

// withAll prefixes options with "All" and keeps current selectable even when
// the backend no longer offers it.
func withAll(options []string, current string) []string {
	out := []string{"All"}
	for _, o := range options {
		if o != "" && o != "All" {
			out = append(out, o)
		}
	}
	return withCurrent(out, current)
}

func withCurrent(options []string, current string) []string {
	if current == "" {
		return options
	}
	for _, o := range options {
		if o == current {
			return options
		}
	}
	return append(options, current)
}

type campaignData struct {
	Campaign   models.Campaign
	Gallery    *gallery.Gallery
	DaysLeft   int
	HasEndDate bool
	Shared     bool
	Banner     *shareBanner
}

func (h *Handler) campaignView(c models.Campaign, r *http.Request) campaignData {
	days, ok := c.DaysLeft(h.now())
	return campaignData{
		Campaign:   c,
		Gallery:    gallery.FromQuery(c.Images, r.URL.Query().Get("img")),
		DaysLeft:   days,
		HasEndDate: ok,
	}
}

// CampaignPage shows one campaign with its image gallery. ?img= selects the
// gallery image.
func (h *Handler) CampaignPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "campaignId")
	c, err := h.API.Public.Campaign(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "campaign.html", c.Title, h.campaignView(c, r))
}

// SharedCampaignPage resolves a share link to a campaign.
func (h *Handler) SharedCampaignPage(w http.ResponseWriter, r *http.Request) {
	shared, err := h.API.Public.ShareCampaign(r.Context(), chi.URLParam(r, "shareId"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	data := h.campaignView(shared.Campaign, r)
	data.Shared = true
	data.Banner = bannerFrom(shared.Customization)
	h.render(w, r, http.StatusOK, "campaign.html", shared.Campaign.Title, data)
}

type profileData struct {
	User          models.User
	Campaigns     []models.Campaign
	Banner        *shareBanner
	HideCampaigns bool
}

// ProfilePage shows an NGO or company by its username.
func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	view, err := h.API.Public.ProfileByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "profile.html", view.User.Name, profileData{User: view.User, Campaigns: view.Campaigns})
}

// SharedProfilePage resolves a share link to a profile.
func (h *Handler) SharedProfilePage(w http.ResponseWriter, r *http.Request) {
	shared, err := h.API.Public.ShareProfile(r.Context(), chi.URLParam(r, "shareId"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	show, set := shared.Customization["showCampaigns"].(bool)
	h.render(w, r, http.StatusOK, "profile.html", shared.User.Name, profileData{
		User:          shared.User,
		Campaigns:     shared.Campaigns,
		Banner:        bannerFrom(shared.Customization),
		HideCampaigns: set && !show,
	})
}

type infoData struct {
	Contact   models.Contact
	Copyright string
}

// InfoPage serves one of the static pages (about, legal, join us). Contact
// details come from the last loaded settings when there are any.
func (h *Handler) InfoPage(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data infoData
		if s, ok := h.Settings.Settings(); ok {
			data = infoData{Contact: s.Contact, Copyright: s.Copyright}
		}
		h.render(w, r, http.StatusOK, name, title, data)
	}
}

type contactData struct {
	Form  models.ContactMessage
	Error string
}

// ContactPage shows the contact form.
func (h *Handler) ContactPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "contact.html", "Contact Us", contactData{})
}

// SubmitContact sends the contact form to the backend.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	msg := models.ContactMessage{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Email:   strings.TrimSpace(r.PostFormValue("email")),
		Subject: strings.TrimSpace(r.PostFormValue("subject")),
		Message: strings.TrimSpace(r.PostFormValue("message")),
	}

	var problem string
	switch {
	case msg.Name == "":
		problem = "Please enter your name."
	case !validEmail(msg.Email):
		problem = "Please enter a valid email address."
	case msg.Message == "":
		problem = "Please enter a message."
	}
	if problem != "" {
		h.render(w, r, http.StatusUnprocessableEntity, "contact.html", "Contact Us", contactData{Form: msg, Error: problem})
		return
	}

	if err := h.API.Public.Contact(r.Context(), msg); err != nil {
		logger.ErrorContext(r.Context(), "contact form failed", "error", err)
		h.render(w, r, http.StatusBadGateway, "contact.html", "Contact Us", contactData{Form: msg, Error: apperrors.Message(err)})
		return
	}
	h.redirectWithFlash(w, r, "/contact", "success", "Thanks for getting in touch. We'll reply soon.")
}

// Subscribe adds an email address to the newsletter and returns to the page
// the form was on.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	back := refererPath(r.Referer())

	email := strings.TrimSpace(r.PostFormValue("email"))
	if !validEmail(email) {
		h.redirectWithFlash(w, r, back, "error", "Please enter a valid email address.")
		return
	}
	if err := h.API.Public.Subscribe(r.Context(), email); err != nil {
		logger.WarnContext(r.Context(), "newsletter subscription failed", "error", err)
		h.redirectWithFlash(w, r, back, "error", apperrors.Message(err))
		return
	}
	h.redirectWithFlash(w, r, back, "success", "You're subscribed. Watch your inbox for campaign updates.")
}

func validEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return s != "" && err == nil
}
