package donate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/models"
)

func TestBreakdown(t *testing.T) {
	tests := []struct {
		amount int64
		want   Fees
	}{
		{500, Fees{Amount: 500, PlatformFee: 25, GST: 5, TotalDeduction: 30, NetToNGO: 470}},
		{1000, Fees{Amount: 1000, PlatformFee: 50, GST: 9, TotalDeduction: 59, NetToNGO: 941}},
		{2500, Fees{Amount: 2500, PlatformFee: 125, GST: 23, TotalDeduction: 148, NetToNGO: 2352}},
		{10, Fees{Amount: 10, PlatformFee: 1, GST: 0, TotalDeduction: 1, NetToNGO: 9}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Breakdown(tt.amount))
	}
}

func TestGeneralFundDefault(t *testing.T) {
	form := Form{Amount: 500, Name: "Asha", Email: "asha@example.org"}
	require.NoError(t, form.Validate())

	target := ResolveCampaign("", nil)
	assert.True(t, target.General())
	assert.Equal(t, GeneralFund, target.Title)

	fees := Breakdown(form.Amount)
	assert.Equal(t, int64(470), fees.NetToNGO)
	assert.Equal(t, form.Amount-(fees.PlatformFee+fees.GST), fees.NetToNGO)

	req := form.Request(target)
	assert.Empty(t, req.CampaignID)
	assert.Equal(t, 500.0, req.Amount)
}

func TestResolveCampaign(t *testing.T) {
	active := []models.Campaign{{ID: "c1", Title: "Clean Water"}, {ID: "c2", Title: "School Kits"}}

	assert.Equal(t, Target{CampaignID: "c2", Title: "School Kits"}, ResolveCampaign("c2", active))
	assert.True(t, ResolveCampaign(GeneralFundValue, active).General())
	assert.True(t, ResolveCampaign("gone", active).General())
}

func TestDefaultSelection(t *testing.T) {
	all := []models.Campaign{
		{ID: "done", Status: models.CampaignCompleted},
		{ID: "c1", Status: models.CampaignActive},
		{ID: "c2", Status: models.CampaignActive},
	}
	active := ActiveCampaigns(all)
	require.Len(t, active, 2)

	assert.Equal(t, "c2", DefaultSelection("c2", active))
	assert.Equal(t, "c1", DefaultSelection("done", active))
	assert.Equal(t, "c1", DefaultSelection("", active))
	assert.Equal(t, GeneralFundValue, DefaultSelection("c1", nil))
}

func TestParseAmount(t *testing.T) {
	n, err := ParseAmount("2500", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), n)

	n, err = ParseAmount("2500", "1,200")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), n)

	n, err = ParseAmount("500", "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(500), n)

	n, err = ParseAmount("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultAmount, n)

	_, err = ParseAmount("500", "0")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestFormValidate(t *testing.T) {
	base := Form{Amount: 1000, Name: "Ravi", Email: "ravi@example.org"}

	tests := []struct {
		name  string
		edit  func(*Form)
		field string
	}{
		{"valid", func(*Form) {}, ""},
		{"missing name", func(f *Form) { f.Name = " " }, "name"},
		{"bad email", func(f *Form) { f.Email = "ravi" }, "email"},
		{"80G without PAN", func(f *Form) { f.Claim80G = true }, "pan"},
		{"80G bad PAN", func(f *Form) { f.Claim80G, f.PAN = true, "1234" }, "pan"},
		{"80G with PAN", func(f *Form) { f.Claim80G, f.PAN = true, "abcde1234f" }, ""},
		{"zero amount", func(f *Form) { f.Amount = 0 }, "amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			tt.edit(&f)
			err := f.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve apperrors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestRequestUppercasesPAN(t *testing.T) {
	f := Form{Amount: 500, Name: "A", Email: "a@b.co", Claim80G: true, PAN: "abcde1234f"}
	req := f.Request(Target{CampaignID: "c1"})
	assert.Equal(t, "ABCDE1234F", req.PAN)
	assert.Equal(t, "c1", req.CampaignID)

	f.Claim80G = false
	assert.Empty(t, f.Request(Target{}).PAN)
}
