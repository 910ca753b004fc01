package normalize

import "donationhub/internal/models"

// Pagination reads a backend pagination block. When the backend omits
// hasNext/hasPrev they are derived from page and pages.
func Pagination(raw map[string]any, count int) models.Pagination {
	p := models.Pagination{
		Page:  intOf(raw, "page", "currentPage", "current"),
		Limit: intOf(raw, "limit", "perPage", "pageSize"),
		Total: intOf(raw, "total", "totalItems", "totalCount", "count"),
		Pages: intOf(raw, "pages", "totalPages"),
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Total == 0 {
		p.Total = count
	}
	if p.Pages == 0 && p.Limit > 0 {
		p.Pages = (p.Total + p.Limit - 1) / p.Limit
	}

	if v, ok := boolOf(raw, "hasNext", "hasNextPage"); ok {
		p.HasNext = v
	} else {
		p.HasNext = p.Page < p.Pages
	}
	if v, ok := boolOf(raw, "hasPrev", "hasPrevPage"); ok {
		p.HasPrev = v
	} else {
		p.HasPrev = p.Page > 1
	}
	return p
}

// Filters reads the available category and location filters.
func Filters(raw map[string]any) models.CampaignFilters {
	return models.CampaignFilters{
		Categories: stringList(raw["categories"]),
		Locations:  stringList(raw["locations"]),
	}
}

func intOf(raw map[string]any, keys ...string) int {
	v, _, ok := lookup(raw, keys)
	if !ok {
		return 0
	}
	f, ok := asFloat(v)
	if !ok || f < 0 {
		return 0
	}
	return int(f)
}
