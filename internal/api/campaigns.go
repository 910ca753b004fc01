package api

import (
	"context"
	"errors"
	"net/http"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/models"
	"donationhub/internal/normalize"
)

// CampaignService manages campaigns owned by the signed-in organization.
type CampaignService struct {
	c *Client
}

func (c *Client) campaignFrom(data any) models.Campaign {
	m := object(data)
	if inner, ok := m["campaign"].(map[string]any); ok {
		m = inner
	}
	return normalize.Campaign(m, c.now())
}

func (c *Client) campaignList(data any) []models.Campaign {
	return normalize.Campaigns(items(data, "campaigns", "items", "results"), c.now())
}

// notFound turns a 404 into a NotFoundError naming what was missing.
func notFound(err error, kind, id string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NotFoundError{Kind: kind, ID: id}
	}
	return err
}

// Get returns a campaign by id.
func (s *CampaignService) Get(ctx context.Context, id string) (models.Campaign, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/campaigns/"+escape(id), nil, nil)
	if err != nil {
		return models.Campaign{}, notFound(err, "campaign", id)
	}
	return s.c.campaignFrom(data), nil
}

// GetBySlug returns a campaign by its slug.
func (s *CampaignService) GetBySlug(ctx context.Context, slug string) (models.Campaign, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/campaigns/slug/"+escape(slug), nil, nil)
	if err != nil {
		return models.Campaign{}, notFound(err, "campaign", slug)
	}
	return s.c.campaignFrom(data), nil
}

// Mine lists the signed-in organization's campaigns.
func (s *CampaignService) Mine(ctx context.Context) ([]models.Campaign, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/campaigns/my-campaigns", nil, nil)
	if err != nil {
		return nil, err
	}
	return s.c.campaignList(data), nil
}

// Create starts a new campaign.
func (s *CampaignService) Create(ctx context.Context, fields map[string]any) (models.Campaign, error) {
	data, err := s.c.call(ctx, http.MethodPost, "/campaigns", nil, fields)
	if err != nil {
		return models.Campaign{}, err
	}
	return s.c.campaignFrom(data), nil
}

// Update changes campaign fields.
func (s *CampaignService) Update(ctx context.Context, id string, fields map[string]any) (models.Campaign, error) {
	data, err := s.c.call(ctx, http.MethodPut, "/campaigns/"+escape(id), nil, fields)
	if err != nil {
		return models.Campaign{}, notFound(err, "campaign", id)
	}
	return s.c.campaignFrom(data), nil
}

// Delete removes a campaign.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	_, err := s.c.call(ctx, http.MethodDelete, "/campaigns/"+escape(id), nil, nil)
	return notFound(err, "campaign", id)
}

// UploadImages attaches images to a campaign and returns the image URLs.
func (s *CampaignService) UploadImages(ctx context.Context, id string, files []FilePart) ([]string, error) {
	body := &Multipart{}
	for _, f := range files {
		f.Field = "images"
		body.Files = append(body.Files, f)
	}
	data, err := s.c.call(ctx, http.MethodPost, "/campaigns/"+escape(id)+"/images", nil, body)
	if err != nil {
		return nil, notFound(err, "campaign", id)
	}
	return s.c.campaignFrom(data).Images, nil
}
