package api

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/logger"
	"donationhub/internal/models"
	"donationhub/internal/normalize"
)

// profileCampaignLimit bounds the campaign fetch behind a profile page.
const profileCampaignLimit = 100

// PublicService covers endpoints that need no login.
type PublicService struct {
	c *Client
}

// Campaigns returns one page of public campaigns with the filter values the
// backend offers.
func (s *PublicService) Campaigns(ctx context.Context, filter CampaignFilter) (models.CampaignPage, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/public/campaigns", filter.Values(), nil)
	if err != nil {
		return models.CampaignPage{}, err
	}

	page := models.CampaignPage{Campaigns: s.c.campaignList(data)}
	m := object(data)
	pagination, _ := m["pagination"].(map[string]any)
	page.Pagination = normalize.Pagination(pagination, len(page.Campaigns))
	if page.Pagination.Limit == 0 {
		page.Pagination.Limit = filter.Limit
	}
	if filters, ok := m["filters"].(map[string]any); ok {
		page.Filters = normalize.Filters(filters)
	}
	return page, nil
}

// Campaign returns a single public campaign.
func (s *PublicService) Campaign(ctx context.Context, id string) (models.Campaign, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/public/campaigns/"+escape(id), nil, nil)
	if err != nil {
		return models.Campaign{}, notFound(err, "campaign", id)
	}
	return s.c.campaignFrom(data), nil
}

func (s *PublicService) organization(ctx context.Context, kind, path, id string) (models.ProfileView, error) {
	data, err := s.c.call(ctx, http.MethodGet, path+escape(id), nil, nil)
	if err != nil {
		return models.ProfileView{}, notFound(err, kind, id)
	}

	m := object(data)
	view := models.ProfileView{Campaigns: s.c.campaignList(m["campaigns"])}
	for _, k := range []string{kind, "user", "organization"} {
		if u, ok := m[k].(map[string]any); ok {
			view.User = normalize.User(u)
			return view, nil
		}
	}
	view.User = normalize.User(m)
	return view, nil
}

// NGO returns a public NGO profile with its campaigns.
func (s *PublicService) NGO(ctx context.Context, id string) (models.ProfileView, error) {
	return s.organization(ctx, "ngo", "/public/ngo/", id)
}

// Company returns a public company profile.
func (s *PublicService) Company(ctx context.Context, id string) (models.ProfileView, error) {
	return s.organization(ctx, "company", "/public/company/", id)
}

// Stats returns the platform headline numbers.
func (s *PublicService) Stats(ctx context.Context) (models.PublicStats, error) {
	var stats models.PublicStats
	err := s.c.callInto(ctx, http.MethodGet, "/public/stats", nil, nil, &stats)
	return stats, err
}

// Contact sends a message from the contact form.
func (s *PublicService) Contact(ctx context.Context, msg models.ContactMessage) error {
	_, err := s.c.call(ctx, http.MethodPost, "/public/contact", nil, msg)
	return err
}

// Subscribe adds email to the newsletter.
func (s *PublicService) Subscribe(ctx context.Context, email string) error {
	_, err := s.c.call(ctx, http.MethodPost, "/public/newsletter/subscribe", nil, map[string]string{"email": email})
	return err
}

// Organizations fetches the NGO and company directories concurrently. A
// directory that fails to load is returned empty; an error is returned only
// when both fail.
func (s *PublicService) Organizations(ctx context.Context) (models.Organizations, error) {
	var (
		orgs               models.Organizations
		ngoErr, companyErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := s.c.call(gctx, http.MethodGet, "/organizations/ngos/public", nil, nil)
		if err != nil {
			ngoErr = err
			return nil
		}
		orgs.NGOs = normalize.Users(items(data, "ngos", "users"))
		return nil
	})
	g.Go(func() error {
		data, err := s.c.call(gctx, http.MethodGet, "/organizations/companies/public", nil, nil)
		if err != nil {
			companyErr = err
			return nil
		}
		orgs.Companies = normalize.Users(items(data, "companies", "users"))
		return nil
	})
	_ = g.Wait()

	if ngoErr != nil {
		logger.WarnContext(ctx, "failed to load NGO directory", "error", ngoErr)
	}
	if companyErr != nil {
		logger.WarnContext(ctx, "failed to load company directory", "error", companyErr)
	}
	if ngoErr != nil && companyErr != nil {
		return orgs, errors.Join(ngoErr, companyErr)
	}
	return orgs, nil
}

// ProfileByUsername finds an organization by its derived username. NGO
// profiles include the NGO's public campaigns.
func (s *PublicService) ProfileByUsername(ctx context.Context, username string) (models.ProfileView, error) {
	orgs, err := s.Organizations(ctx)
	if err != nil {
		return models.ProfileView{}, err
	}

	var (
		user  models.User
		found bool
	)
	for _, u := range append(orgs.NGOs, orgs.Companies...) {
		if u.Username == username {
			user, found = u, true
			break
		}
	}
	if !found {
		return models.ProfileView{}, apperrors.NotFoundError{Kind: "profile", ID: username}
	}

	view := models.ProfileView{User: user}
	if user.Role != models.RoleNGO {
		return view, nil
	}

	page, err := s.Campaigns(ctx, CampaignFilter{Limit: profileCampaignLimit})
	if err != nil {
		return models.ProfileView{}, err
	}
	for _, c := range page.Campaigns {
		if c.OrganizerID == user.ID {
			view.Campaigns = append(view.Campaigns, c)
		}
	}
	return view, nil
}

// ShareProfile resolves a shared profile link.
func (s *PublicService) ShareProfile(ctx context.Context, shareID string) (models.SharedProfile, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/public/share/profile/"+escape(shareID), nil, nil)
	if err != nil {
		return models.SharedProfile{}, notFound(err, "share link", shareID)
	}

	m := object(data)
	shared := models.SharedProfile{Campaigns: s.c.campaignList(m["campaigns"])}
	if u, ok := m["user"].(map[string]any); ok {
		shared.User = normalize.User(u)
	}
	shared.Customization, _ = m["customization"].(map[string]any)
	return shared, nil
}

// ShareCampaign resolves a shared campaign link.
func (s *PublicService) ShareCampaign(ctx context.Context, shareID string) (models.SharedCampaign, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/public/share/campaign/"+escape(shareID), nil, nil)
	if err != nil {
		return models.SharedCampaign{}, notFound(err, "share link", shareID)
	}

	m := object(data)
	shared := models.SharedCampaign{Campaign: s.c.campaignFrom(m)}
	shared.Customization, _ = m["customization"].(map[string]any)
	return shared, nil
}
