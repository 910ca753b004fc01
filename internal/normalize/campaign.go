package normalize

import (
	"math"
	"time"
	"unicode/utf8"

	"donationhub/internal/models"
)

const (
	// MissingDescription is shown when a campaign has no description.
	MissingDescription = "Full description not provided."
	// DefaultCategory applies when the backend omits a category.
	DefaultCategory = "Health"
	// DefaultLocation applies when the backend omits a location.
	DefaultLocation = "India"
	// UnknownOrganizer is the display name of a campaign without organizer.
	UnknownOrganizer = "Unknown"

	summaryLength = 100
)

// PlaceholderImage is the stock image for a campaign without images.
func PlaceholderImage(title string) string {
	if title == "" {
		title = "default"
	}
	return "https://picsum.photos/seed/" + title + "/800/600"
}

// PlaceholderAvatar is the stock avatar seeded by a display name.
func PlaceholderAvatar(name string) string {
	return "https://picsum.photos/seed/" + name + "/100"
}

// CampaignStatus derives a campaign's status. A disabled campaign stays
// disabled; otherwise it completes when fully funded or past its end date.
func CampaignStatus(isActive bool, goal, raised float64, end *time.Time, now time.Time) models.CampaignStatus {
	if !isActive {
		return models.CampaignDisabled
	}
	if goal > 0 && raised >= goal {
		return models.CampaignCompleted
	}
	if end != nil && end.Before(now) {
		return models.CampaignCompleted
	}
	return models.CampaignActive
}

// Percentage is raised as a whole percentage of goal, capped at 100.
func Percentage(goal, raised float64) int {
	if goal <= 0 {
		return 0
	}
	p := math.Round(raised / goal * 100)
	if p > 100 {
		return 100
	}
	return int(p)
}

// Summary shortens a description to its first 100 characters.
func Summary(text string) string {
	if utf8.RuneCountInString(text) <= summaryLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:summaryLength]) + "..."
}

type organizer struct {
	id       string
	name     string
	logo     string
	approval models.ApprovalStatus
	active   bool
}

func resolveOrganizer(raw map[string]any, schema Schema) organizer {
	var org organizer
	activeKnown := false

	for _, k := range campaignKeys(schema, FieldOrganizer) {
		obj, ok := raw[k].(map[string]any)
		if !ok {
			continue
		}
		org.id = stringOf(obj, "_id", "id")
		org.name = stringOf(obj, "fullName", "name", "ngoName", "companyName")
		org.logo = stringOf(obj, "avatar", "profileImage", "logo")
		org.approval = models.ApprovalStatus(stringOf(obj, "approvalStatus"))
		org.active, activeKnown = boolOf(obj, "isActive")
		break
	}

	// A plain string under "organizer" is a display name; under the other
	// keys it is an id reference.
	if org.name == "" {
		if name, ok := raw["organizer"].(string); ok {
			org.name = name
		}
	}
	if org.id == "" {
		org.id = stringOf(raw, "organizerId", "ngoId", "ngo", "createdBy")
	}
	if org.logo == "" {
		org.logo = stringOf(raw, "organizerLogo")
	}
	if org.approval == "" {
		org.approval = models.ApprovalStatus(stringOf(raw, "organizerApprovalStatus"))
	}
	if !activeKnown {
		org.active, _ = boolOf(raw, "organizerActive")
	}

	if org.name == "" {
		org.name = UnknownOrganizer
	}
	if org.logo == "" {
		org.logo = PlaceholderAvatar(org.name)
	}
	if org.approval == "" {
		org.approval = models.ApprovalPending
	}
	return org
}

// Campaign converts a raw backend campaign into the view model. now is used
// to decide whether the end date has passed.
func Campaign(raw map[string]any, now time.Time) models.Campaign {
	if raw == nil {
		raw = map[string]any{}
	}
	schema := DetectCampaignSchema(raw)
	str := func(f Field) string { return stringOf(raw, campaignKeys(schema, f)...) }

	c := models.Campaign{
		ID:             str(FieldID),
		Title:          str(FieldTitle),
		Goal:           amount(raw, campaignKeys(schema, FieldGoal)),
		Raised:         amount(raw, campaignKeys(schema, FieldRaised)),
		Category:       str(FieldCategory),
		Location:       str(FieldLocation),
		ApprovalStatus: models.ApprovalStatus(str(FieldApproval)),
		Extra:          extras(raw, campaignKnown),
	}

	desc := str(FieldDescription)
	if desc == "" || desc == MissingDescription {
		c.Description = ""
		c.FullDescription = MissingDescription
	} else {
		c.Description = Summary(desc)
		c.FullDescription = desc
	}
	if c.Category == "" {
		c.Category = DefaultCategory
	}
	if c.Location == "" {
		c.Location = DefaultLocation
	}

	if v, _, ok := lookup(raw, campaignKeys(schema, FieldImages)); ok {
		c.Images = stringList(v)
	}
	if len(c.Images) == 0 {
		c.Images = []string{PlaceholderImage(c.Title)}
	}

	c.Urgent, _ = boolOf(raw, campaignKeys(schema, FieldUrgent)...)
	c.IsActive, _ = boolOf(raw, campaignKeys(schema, FieldActive)...)
	if v, _, ok := lookup(raw, campaignKeys(schema, FieldEndDate)); ok {
		if t, ok := asTime(v); ok {
			c.EndDate = &t
		}
	}

	org := resolveOrganizer(raw, schema)
	c.Organizer = org.name
	c.OrganizerID = org.id
	c.OrganizerLogo = org.logo
	c.OrganizerApprovalStatus = org.approval
	c.OrganizerActive = org.active

	c.Slug = Slug(c.Title)
	c.Verified = org.approval == models.ApprovalApproved && org.active
	c.Percentage = Percentage(c.Goal, c.Raised)
	c.Status = CampaignStatus(c.IsActive, c.Goal, c.Raised, c.EndDate, now)
	return c
}

// Campaigns normalizes a list, skipping items that are not objects.
func Campaigns(items []any, now time.Time) []models.Campaign {
	out := make([]models.Campaign, 0, len(items))
	for _, item := range items {
		if raw, ok := item.(map[string]any); ok {
			out = append(out, Campaign(raw, now))
		}
	}
	return out
}
