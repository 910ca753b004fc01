package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignMarshalInlinesExtra(t *testing.T) {
	c := Campaign{
		ID:     "c1",
		Title:  "Clean Water",
		Status: CampaignActive,
		Extra:  map[string]any{"beneficiaries": "villages", "title": "shadowed"},
	}

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "villages", out["beneficiaries"])
	assert.Equal(t, "Clean Water", out["title"])
	assert.Equal(t, "active", out["status"])
}

func TestCampaignDaysLeft(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	end := now.Add(36 * time.Hour)
	past := now.Add(-time.Hour)

	days, ok := Campaign{EndDate: &end}.DaysLeft(now)
	assert.True(t, ok)
	assert.Equal(t, 2, days)

	days, ok = Campaign{EndDate: &past}.DaysLeft(now)
	assert.True(t, ok)
	assert.Equal(t, 0, days)

	_, ok = Campaign{}.DaysLeft(now)
	assert.False(t, ok)
}

func TestUserAdminActions(t *testing.T) {
	tests := []struct {
		status UserStatus
		want   AdminActions
	}{
		{UserPending, AdminActions{Approve: true, Delete: true}},
		{UserActive, AdminActions{Toggle: true, Delete: true}},
		{UserDisabled, AdminActions{Toggle: true, Delete: true}},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, User{Status: tt.status}.AdminActions())
		})
	}
}

func TestSortActivitiesNewestFirst(t *testing.T) {
	activities := []Activity{
		{Type: "a", Timestamp: "2025-01-01T00:00:00Z"},
		{Type: "b", Timestamp: "2025-03-01T00:00:00.000Z"},
		{Type: "c", Timestamp: "garbage"},
		{Type: "d", Timestamp: "2025-02-01T00:00:00Z"},
	}

	SortActivities(activities)

	var order []string
	for _, a := range activities {
		order = append(order, a.Type)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, order)
}

func TestRateLimiterWindowMinutes(t *testing.T) {
	assert.Equal(t, 15, RateLimiter{WindowMs: 900000}.WindowMinutes())
	assert.Equal(t, 1, RateLimiter{WindowMs: 45000}.WindowMinutes())
}

func TestTaskStatusValid(t *testing.T) {
	assert.True(t, TaskInProgress.Valid())
	assert.False(t, TaskStatus("archived").Valid())
	assert.True(t, ReportFinancial.Valid())
	assert.False(t, ReportType("audit").Valid())
}

func TestGroupThousands(t *testing.T) {
	tests := map[float64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		123456.6: "123,457",
		-2500:    "-2,500",
		1e7:      "10,000,000",
	}
	for in, want := range tests {
		assert.Equal(t, want, GroupThousands(in))
	}
	assert.Equal(t, "₹5,000", Rupees(5000))
}
