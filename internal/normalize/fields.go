// Package normalize turns raw backend payloads into view models.
//
// The backend has shipped several shapes for the same resource. Each shape
// is a Schema with its own ordered list of source keys per field, tried
// before the union table's keys for that field. Every function here is
// pure and total: malformed input degrades to defaults, never to a panic.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Schema identifies which backend payload shape a campaign came from.
type Schema int

const (
	// SchemaLegacy uses ngoId, targetAmount and currentAmount.
	SchemaLegacy Schema = iota
	// SchemaV2 uses ngo, campaignName, goalAmount and raisedAmount.
	SchemaV2
	// SchemaView is an already normalized campaign.
	SchemaView
)

func (s Schema) String() string {
	switch s {
	case SchemaLegacy:
		return "legacy"
	case SchemaV2:
		return "v2"
	case SchemaView:
		return "view"
	}
	return fmt.Sprintf("schema(%d)", int(s))
}

// Field is a logical campaign or user attribute with several possible
// source keys.
type Field string

const (
	FieldID          Field = "id"
	FieldTitle       Field = "title"
	FieldGoal        Field = "goal"
	FieldRaised      Field = "raised"
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
	FieldLocation    Field = "location"
	FieldImages      Field = "images"
	FieldUrgent      Field = "urgent"
	FieldEndDate     Field = "endDate"
	FieldActive      Field = "isActive"
	FieldApproval    Field = "approvalStatus"
	FieldOrganizer   Field = "organizer"
	FieldName        Field = "name"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phoneNumber"
	FieldAvatar      Field = "avatar"
	FieldRole        Field = "role"
	FieldCreatedAt   Field = "createdAt"
)

// CampaignFields lists source keys in precedence order for each schema.
var CampaignFields = map[Schema]map[Field][]string{
	SchemaLegacy: {
		FieldTitle:     {"title", "campaignName"},
		FieldGoal:      {"targetAmount", "goalAmount"},
		FieldRaised:    {"currentAmount", "raisedAmount"},
		FieldUrgent:    {"isUrgent"},
		FieldOrganizer: {"ngoId", "createdBy", "ngo", "organizer"},
	},
	SchemaV2: {
		FieldTitle:     {"campaignName", "title"},
		FieldGoal:      {"goalAmount", "targetAmount"},
		FieldRaised:    {"raisedAmount", "currentAmount"},
		FieldUrgent:    {"isUrgent", "urgent"},
		FieldOrganizer: {"ngo", "ngoId", "createdBy", "organizer"},
	},
	SchemaView: {
		FieldGoal:        {"goal"},
		FieldRaised:      {"raised"},
		FieldDescription: {"fullDescription", "description"},
		FieldUrgent:      {"urgent"},
		FieldOrganizer:   {"organizer", "ngoId", "ngo", "createdBy"},
	},
}

// campaignUnion is consulted for fields a schema does not list.
var campaignUnion = map[Field][]string{
	FieldID:          {"_id", "id"},
	FieldTitle:       {"title", "campaignName"},
	FieldGoal:        {"targetAmount", "goalAmount", "goal"},
	FieldRaised:      {"currentAmount", "raisedAmount", "raised"},
	FieldDescription: {"description", "fullDescription"},
	FieldCategory:    {"category"},
	FieldLocation:    {"location"},
	FieldImages:      {"images"},
	FieldUrgent:      {"isUrgent", "urgent"},
	FieldEndDate:     {"endDate", "deadline"},
	FieldActive:      {"isActive"},
	FieldApproval:    {"approvalStatus"},
	FieldOrganizer:   {"ngoId", "ngo", "createdBy", "organizer"},
}

// campaignDerived are output keys that are always recomputed, never read.
var campaignDerived = []string{
	"slug", "status", "verified", "percentage",
	"organizerId", "organizerLogo", "organizerApprovalStatus", "organizerActive",
}

// UserFields lists user source keys in precedence order.
var UserFields = map[Field][]string{
	FieldID:        {"_id", "id"},
	FieldName:      {"fullName", "name"},
	FieldEmail:     {"email"},
	FieldPhone:     {"phoneNumber", "phone"},
	FieldAvatar:    {"profileImage", "avatar"},
	FieldRole:      {"role"},
	FieldCreatedAt: {"createdAt"},
	FieldActive:    {"isActive"},
	FieldApproval:  {"approvalStatus"},
}

var userConsumed = []string{
	"profile", "description", "address", "website",
	"username", "status", "password",
}

var (
	campaignKnown = knownKeys(campaignUnion, CampaignFields, campaignDerived)
	userKnown     = knownKeys(UserFields, nil, userConsumed)
)

func knownKeys(union map[Field][]string, schemas map[Schema]map[Field][]string, extra []string) map[string]bool {
	known := make(map[string]bool)
	for _, keys := range union {
		for _, k := range keys {
			known[k] = true
		}
	}
	for _, table := range schemas {
		for _, keys := range table {
			for _, k := range keys {
				known[k] = true
			}
		}
	}
	for _, k := range extra {
		known[k] = true
	}
	return known
}

// DetectCampaignSchema picks the payload shape of raw.
func DetectCampaignSchema(raw map[string]any) Schema {
	if has(raw, "fullDescription") || has(raw, "organizerId") || (has(raw, "goal") && has(raw, "raised")) {
		return SchemaView
	}
	if has(raw, "ngo") || has(raw, "campaignName") {
		return SchemaV2
	}
	if (has(raw, "goalAmount") && !has(raw, "targetAmount")) ||
		(has(raw, "raisedAmount") && !has(raw, "currentAmount")) {
		return SchemaV2
	}
	return SchemaLegacy
}

// campaignKeys is the schema's own precedence for f followed by any union
// keys the schema does not list.
func campaignKeys(s Schema, f Field) []string {
	own := CampaignFields[s][f]
	if len(own) == 0 {
		return campaignUnion[f]
	}
	keys := append([]string(nil), own...)
	for _, k := range campaignUnion[f] {
		if !slices.Contains(own, k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func has(raw map[string]any, key string) bool {
	v, ok := raw[key]
	return ok && v != nil
}

// lookup returns the first present value among keys. Empty strings count as
// absent.
func lookup(raw map[string]any, keys []string) (any, string, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, k, true
	}
	return nil, "", false
}

func extras(raw map[string]any, known map[string]bool) map[string]any {
	var out map[string]any
	for k, v := range raw {
		if known[k] {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[k] = v
	}
	return out
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	}
	return "", false
}

func stringOf(raw map[string]any, keys ...string) string {
	v, _, ok := lookup(raw, keys)
	if !ok {
		return ""
	}
	s, _ := asString(v)
	return s
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// amount reads a non-negative money value, defaulting to 0.
func amount(raw map[string]any, keys []string) float64 {
	v, _, ok := lookup(raw, keys)
	if !ok {
		return 0
	}
	f, ok := asFloat(v)
	if !ok || f < 0 {
		return 0
	}
	return f
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	}
	if f, ok := asFloat(v); ok {
		return f != 0, true
	}
	return false, false
}

// boolOf returns the first parseable boolean among keys and whether one was
// found at all.
func boolOf(raw map[string]any, keys ...string) (bool, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			if b, ok := asBool(v); ok {
				return b, true
			}
		}
	}
	return false, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), true
			}
		}
		return time.Time{}, false
	}
	if ms, ok := asFloat(v); ok && ms > 0 {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

func stringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range t {
			switch it := item.(type) {
			case string:
				if it != "" {
					out = append(out, it)
				}
			case map[string]any:
				if s := stringOf(it, "url", "secure_url", "path"); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

var (
	whitespace  = regexp.MustCompile(`\s+`)
	nonWordChar = regexp.MustCompile(`[^\w-]+`)
)

// Slug derives a URL slug from a title: lowercase, whitespace runs become
// "-", and anything but word characters and "-" is dropped.
func Slug(title string) string {
	s := whitespace.ReplaceAllString(strings.ToLower(title), "-")
	return nonWordChar.ReplaceAllString(s, "")
}

// Username derives a handle from a display name. Handles are not unique.
func Username(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(name), "_")
}

// ToRaw converts a view model back into the raw map form the normalizer
// accepts.
func ToRaw(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
