package api

import (
	"net/url"
	"strconv"
	"strings"
)

// query builds URL query strings, leaving out values that mean "no filter".
type query url.Values

func newQuery() query {
	return query{}
}

// set adds value unless it is blank.
func (q query) set(key, value string) query {
	value = strings.TrimSpace(value)
	if value != "" {
		url.Values(q).Set(key, value)
	}
	return q
}

// choice adds a value picked from a list whose "All" entry means no filter.
func (q query) choice(key, value string) query {
	if strings.EqualFold(strings.TrimSpace(value), "all") {
		return q
	}
	return q.set(key, value)
}

// setInt adds n unless it is zero or negative.
func (q query) setInt(key string, n int) query {
	if n > 0 {
		url.Values(q).Set(key, strconv.Itoa(n))
	}
	return q
}

func (q query) values() url.Values {
	if len(q) == 0 {
		return nil
	}
	return url.Values(q)
}

// SortOrder is a campaign list ordering.
type SortOrder string

const (
	SortNewest       SortOrder = "newest"
	SortEndingSoon   SortOrder = "ending_soon"
	SortMostFunded   SortOrder = "most_funded"
	SortTargetAmount SortOrder = "target_amount"
)

// Valid reports whether s is a known ordering.
func (s SortOrder) Valid() bool {
	switch s {
	case SortNewest, SortEndingSoon, SortMostFunded, SortTargetAmount:
		return true
	}
	return false
}

// CampaignFilter selects a page of public campaigns. Blank values are not
// sent, nor is "All" for category, location or status.
type CampaignFilter struct {
	Category string
	Location string
	Status   string
	Search   string
	SortBy   SortOrder
	Page     int
	Limit    int
}

// Values encodes the filter as query parameters.
func (f CampaignFilter) Values() url.Values {
	return newQuery().
		choice("category", f.Category).
		choice("location", f.Location).
		choice("status", f.Status).
		set("search", f.Search).
		set("sortBy", string(f.SortBy)).
		setInt("page", f.Page).
		setInt("limit", f.Limit).
		values()
}

// UserFilter selects a page of users in the admin console.
type UserFilter struct {
	Page   int
	Limit  int
	Role   string
	Status string
}

// Values encodes the filter as query parameters.
func (f UserFilter) Values() url.Values {
	return newQuery().
		setInt("page", f.Page).
		setInt("limit", f.Limit).
		choice("role", f.Role).
		choice("status", f.Status).
		values()
}
