// Package donate holds the donation form rules: preset amounts, the fee
// breakdown shown before payment and campaign selection.
package donate

import (
	"math"
	"net/mail"
	"regexp"
	"strconv"
	"strings"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/models"
)

const (
	// PlatformFeeRate is charged on the donated amount.
	PlatformFeeRate = 0.05
	// GSTRate is charged on the platform fee.
	GSTRate = 0.18

	DefaultAmount int64 = 1000

	// GeneralFund receives donations with no campaign.
	GeneralFund      = "General Fund"
	GeneralFundValue = "general"
)

// Presets are the quick-pick amounts in rupees.
var Presets = []int64{500, 1000, 2500, 5000}

var panPattern = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

// Fees is the breakdown of a donation in whole rupees.
type Fees struct {
	Amount         int64
	PlatformFee    int64
	GST            int64
	TotalDeduction int64
	NetToNGO       int64
}

// Breakdown computes the fees for amount. Each component is rounded to the
// nearest rupee.
func Breakdown(amount int64) Fees {
	fee := int64(math.Round(float64(amount) * PlatformFeeRate))
	gst := int64(math.Round(float64(fee) * GSTRate))
	return Fees{
		Amount:         amount,
		PlatformFee:    fee,
		GST:            gst,
		TotalDeduction: fee + gst,
		NetToNGO:       amount - (fee + gst),
	}
}

// ActiveCampaigns keeps the campaigns that can receive donations.
func ActiveCampaigns(all []models.Campaign) []models.Campaign {
	var out []models.Campaign
	for _, c := range all {
		if c.Status == models.CampaignActive {
			out = append(out, c)
		}
	}
	return out
}

// DefaultSelection picks the preselected campaign: the ?campaign= id when it
// names an active campaign, else the first active campaign, else the general
// fund.
func DefaultSelection(query string, active []models.Campaign) string {
	if query != "" {
		for _, c := range active {
			if c.ID == query {
				return c.ID
			}
		}
	}
	if len(active) > 0 {
		return active[0].ID
	}
	return GeneralFundValue
}

// Target is where a donation goes.
type Target struct {
	CampaignID string
	Title      string
}

// General reports whether the donation goes to the general fund.
func (t Target) General() bool {
	return t.CampaignID == ""
}

// ResolveCampaign maps a form selection to its target. Blank, "general" and
// unknown ids resolve to the general fund.
func ResolveCampaign(selected string, active []models.Campaign) Target {
	for _, c := range active {
		if c.ID == selected && selected != "" {
			return Target{CampaignID: c.ID, Title: c.Title}
		}
	}
	return Target{Title: GeneralFund}
}

// ParseAmount reads the amount from the form. A parseable custom amount wins
// over the preset.
func ParseAmount(preset, custom string) (int64, error) {
	custom = strings.NewReplacer(",", "", " ", "", "₹", "").Replace(custom)
	if n, err := strconv.ParseInt(custom, 10, 64); err == nil {
		return positive(n)
	}
	if preset == "" {
		return DefaultAmount, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(preset), 10, 64)
	if err != nil {
		return 0, apperrors.ValidationError{Field: "amount", Message: "Enter a valid amount"}
	}
	return positive(n)
}

func positive(n int64) (int64, error) {
	if n <= 0 {
		return 0, apperrors.ValidationError{Field: "amount", Message: "Amount must be greater than zero"}
	}
	return n, nil
}

// Form is a submitted donation form.
type Form struct {
	Campaign string
	Amount   int64
	Name     string
	Email    string
	Claim80G bool
	PAN      string
}

// Validate checks the donor details. A PAN is required to claim the 80G
// deduction.
func (f Form) Validate() error {
	if f.Amount <= 0 {
		return apperrors.ValidationError{Field: "amount", Message: "Amount must be greater than zero"}
	}
	if strings.TrimSpace(f.Name) == "" {
		return apperrors.ValidationError{Field: "name", Message: "Full name is required"}
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return apperrors.ValidationError{Field: "email", Message: "A valid email address is required"}
	}
	if f.Claim80G {
		pan := strings.ToUpper(strings.TrimSpace(f.PAN))
		if pan == "" {
			return apperrors.ValidationError{Field: "pan", Message: "PAN is required to claim the 80G tax benefit"}
		}
		if !panPattern.MatchString(pan) {
			return apperrors.ValidationError{Field: "pan", Message: "PAN must look like ABCDE1234F"}
		}
	}
	return nil
}

// Request builds the backend donation request for target.
func (f Form) Request(target Target) models.DonationRequest {
	req := models.DonationRequest{
		CampaignID:    target.CampaignID,
		Amount:        float64(f.Amount),
		DonorName:     strings.TrimSpace(f.Name),
		DonorEmail:    strings.TrimSpace(f.Email),
		Claim80G:      f.Claim80G,
		PaymentMethod: "online",
	}
	if f.Claim80G {
		req.PAN = strings.ToUpper(strings.TrimSpace(f.PAN))
	}
	return req
}
