package api

import (
	"context"
	"net/http"

	"donationhub/internal/models"
	"donationhub/internal/normalize"
)

// DonationService records and lists donations.
type DonationService struct {
	c *Client
}

func donationList(data any) []models.Donation {
	list := items(data, "donations")
	out := make([]models.Donation, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, normalize.Donation(m))
		}
	}
	return out
}

// Create records a donation.
func (s *DonationService) Create(ctx context.Context, req models.DonationRequest) (models.Donation, error) {
	data, err := s.c.call(ctx, http.MethodPost, "/donations", nil, req)
	if err != nil {
		return models.Donation{}, err
	}
	m := object(data)
	if inner, ok := m["donation"].(map[string]any); ok {
		m = inner
	}
	return normalize.Donation(m), nil
}

// Mine lists the signed-in user's donations.
func (s *DonationService) Mine(ctx context.Context) ([]models.Donation, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/donations/my-donations", nil, nil)
	if err != nil {
		return nil, err
	}
	return donationList(data), nil
}

// ForCampaign lists donations made to a campaign.
func (s *DonationService) ForCampaign(ctx context.Context, campaignID string) ([]models.Donation, error) {
	data, err := s.c.call(ctx, http.MethodGet, "/donations/campaign/"+escape(campaignID), nil, nil)
	if err != nil {
		return nil, notFound(err, "campaign", campaignID)
	}
	return donationList(data), nil
}

// ProcessPayment asks the backend to settle a donation. The gateway response
// is returned as is.
func (s *DonationService) ProcessPayment(ctx context.Context, req models.PaymentRequest) (map[string]any, error) {
	data, err := s.c.call(ctx, http.MethodPost, "/donations/process-payment", nil, req)
	if err != nil {
		return nil, err
	}
	return object(data), nil
}
