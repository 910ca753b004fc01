package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"donationhub/internal/api"
	"donationhub/internal/donate"
	apperrors "donationhub/internal/errors"
	"donationhub/internal/logger"
	"donationhub/internal/models"
	"donationhub/internal/session"
)

const donateCampaignLimit = 100

type donateData struct {
	Campaigns    []models.Campaign
	Presets      []int64
	Form         donate.Form
	Custom       string
	Fees         donate.Fees
	GeneralValue string
	GeneralName  string
	Error        string
	Field        string
	LoadErr      string
}

// activeCampaigns loads the campaigns a donation can target. A failure
// leaves only the general fund.
func (h *Handler) activeCampaigns(r *http.Request) ([]models.Campaign, string) {
	page, err := h.API.Public.Campaigns(r.Context(), api.CampaignFilter{
		Status: string(models.CampaignActive),
		Limit:  donateCampaignLimit,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "failed to load campaigns for donation form", "error", err)
		return nil, "Campaigns could not be loaded. You can still give to the " + donate.GeneralFund + "."
	}
	return donate.ActiveCampaigns(page.Campaigns), ""
}

// readDonation reads the donation fields from values. Amount errors are
// returned alongside the partially filled form.
func readDonation(v url.Values) (donate.Form, string, error) {
	custom := strings.TrimSpace(v.Get("customAmount"))
	amount, err := donate.ParseAmount(v.Get("amount"), custom)
	form := donate.Form{
		Campaign: v.Get("campaign"),
		Amount:   amount,
		Name:     strings.TrimSpace(v.Get("name")),
		Email:    strings.TrimSpace(v.Get("email")),
		PAN:      strings.TrimSpace(v.Get("pan")),
	}
	switch strings.ToLower(v.Get("claim80G")) {
	case "true", "on", "1":
		form.Claim80G = true
	}
	return form, custom, err
}

func (h *Handler) donateView(form donate.Form, custom string, active []models.Campaign, loadErr string) donateData {
	amount := form.Amount
	if amount <= 0 {
		amount = donate.DefaultAmount
	}
	return donateData{
		Campaigns:    active,
		Presets:      donate.Presets,
		Form:         form,
		Custom:       custom,
		Fees:         donate.Breakdown(amount),
		GeneralValue: donate.GeneralFundValue,
		GeneralName:  donate.GeneralFund,
		LoadErr:      loadErr,
	}
}

// DonatePage shows the donation form. ?campaign= preselects a campaign; the
// other form fields may also be passed in the query to refresh the fee
// breakdown.
func (h *Handler) DonatePage(w http.ResponseWriter, r *http.Request) {
	active, loadErr := h.activeCampaigns(r)

	q := r.URL.Query()
	form, custom, err := readDonation(q)
	if err != nil {
		form.Amount = donate.DefaultAmount
	}
	if q.Get("campaign") != donate.GeneralFundValue {
		form.Campaign = donate.DefaultSelection(q.Get("campaign"), active)
	}
	if sess, ok := session.FromContext(r.Context()); ok && form.Name == "" {
		form.Name = sess.Name
	}

	h.render(w, r, http.StatusOK, "donate.html", "Donate", h.donateView(form, custom, active, loadErr))
}

// SubmitDonation validates the form and records the donation. Signed-in
// donors' gifts are sent to the backend; payment itself happens elsewhere.
func (h *Handler) SubmitDonation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	active, loadErr := h.activeCampaigns(r)

	form, custom, err := readDonation(r.PostForm)
	if err == nil {
		err = form.Validate()
	}
	if err != nil {
		data := h.donateView(form, custom, active, loadErr)
		data.Error = apperrors.Message(err)
		var vErr apperrors.ValidationError
		if errors.As(err, &vErr) {
			data.Field = vErr.Field
		}
		h.render(w, r, http.StatusUnprocessableEntity, "donate.html", "Donate", data)
		return
	}

	target := donate.ResolveCampaign(form.Campaign, active)
	if _, ok := session.FromContext(r.Context()); ok {
		if _, err := h.API.Donations.Create(r.Context(), form.Request(target)); err != nil {
			if errors.Is(err, apperrors.ErrUnauthorized) {
				h.renderError(w, r, err)
				return
			}
			logger.ErrorContext(r.Context(), "failed to record donation", "campaign", target.CampaignID, "error", err)
			data := h.donateView(form, custom, active, loadErr)
			data.Error = apperrors.Message(err)
			h.render(w, r, http.StatusBadGateway, "donate.html", "Donate", data)
			return
		}
	}

	logger.InfoContext(r.Context(), "donation submitted", "campaign", target.CampaignID, "amount", form.Amount, "claim80G", form.Claim80G)
	h.redirectWithFlash(w, r, "/donate", "success",
		fmt.Sprintf("Thank you for your donation of %s to %s!", models.Rupees(float64(form.Amount)), target.Title))
}
