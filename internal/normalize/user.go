package normalize

import (
	"strings"

	"donationhub/internal/models"
)

// UserStatus derives the display status of an account:
//
//	approved + active   -> active
//	approved + inactive -> disabled
//	pending             -> pending
//	anything else       -> disabled
func UserStatus(approval models.ApprovalStatus, active bool) models.UserStatus {
	switch approval {
	case models.ApprovalApproved:
		if active {
			return models.UserActive
		}
		return models.UserDisabled
	case models.ApprovalPending:
		return models.UserPending
	default:
		return models.UserDisabled
	}
}

func role(s string) models.Role {
	switch r := models.Role(strings.ToLower(s)); r {
	case models.RoleAdmin, models.RoleNGO, models.RoleCompany, models.RoleDonor:
		return r
	}
	return models.RoleDonor
}

// User converts a raw backend user into the view model.
func User(raw map[string]any) models.User {
	if raw == nil {
		raw = map[string]any{}
	}
	str := func(f Field) string { return stringOf(raw, UserFields[f]...) }

	u := models.User{
		ID:          str(FieldID),
		Name:        str(FieldName),
		Email:       str(FieldEmail),
		PhoneNumber: str(FieldPhone),
		Role:        role(str(FieldRole)),
		CreatedAt:   str(FieldCreatedAt),
		Extra:       extras(raw, userKnown),
	}
	u.Username = Username(u.Name)

	u.ApprovalStatus = models.ApprovalStatus(strings.ToLower(str(FieldApproval)))
	if u.ApprovalStatus == "" {
		u.ApprovalStatus = models.ApprovalPending
	}

	// Approved accounts are active unless explicitly switched off; everyone
	// else must be explicitly switched on.
	active, known := boolOf(raw, UserFields[FieldActive]...)
	if u.ApprovalStatus == models.ApprovalApproved {
		u.IsActive = !known || active
	} else {
		u.IsActive = known && active
	}
	u.Status = UserStatus(u.ApprovalStatus, u.IsActive)

	u.Avatar = str(FieldAvatar)
	if u.Avatar == "" {
		u.Avatar = PlaceholderAvatar(u.Name)
	}

	u.Profile = mergeProfile(raw)
	return u
}

// mergeProfile combines the nested profile with the top-level description,
// address and website, which take precedence.
func mergeProfile(raw map[string]any) map[string]any {
	profile := make(map[string]any)
	if nested, ok := raw["profile"].(map[string]any); ok {
		for k, v := range nested {
			if v != nil {
				profile[k] = v
			}
		}
	}

	if s := stringOf(raw, "description"); s != "" {
		profile["description"] = s
	}
	if s := stringOf(raw, "address"); s != "" {
		profile["address"] = s
	} else if _, ok := profile["address"]; !ok {
		if s := stringOf(profile, "companyAddress"); s != "" {
			profile["address"] = s
		}
	}
	if s := stringOf(raw, "website"); s != "" {
		profile["website"] = s
	}

	if len(profile) == 0 {
		return nil
	}
	return profile
}

// Users normalizes a list, skipping items that are not objects.
func Users(items []any) []models.User {
	out := make([]models.User, 0, len(items))
	for _, item := range items {
		if raw, ok := item.(map[string]any); ok {
			out = append(out, User(raw))
		}
	}
	return out
}
