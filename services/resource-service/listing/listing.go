// Package listing holds the search/filter and summary logic shared by the
// browse, dashboard, landing and admin screens. Everything here is pure.
package listing

import (
	"strings"

	"github.com/RigelNana/edumarket/services/resource-service/models"
)

// All disables the category predicate.
const All models.Category = "all"

// ParseCategory maps request input to a category filter. An empty value means All.
func ParseCategory(s string) models.Category {
	if s == "" {
		return All
	}
	return models.Category(s)
}

// Filter returns the resources matching both the free-text query and the
// category, in input order. The query is matched as-is (not trimmed) against
// title, description and subject, case-insensitively. A missing description
// only fails its own field.
func Filter(resources []*models.Resource, query string, category models.Category) []*models.Resource {
	q := strings.ToLower(query)
	out := make([]*models.Resource, 0, len(resources))
	for _, r := range resources {
		if r == nil {
			continue
		}
		if category != All && r.Category != category {
			continue
		}
		if !matchesQuery(r, q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesQuery(r *models.Resource, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Title), q) {
		return true
	}
	if r.Description != nil && strings.Contains(strings.ToLower(*r.Description), q) {
		return true
	}
	return strings.Contains(strings.ToLower(r.Subject), q)
}

// Stats summarizes one owner's resources.
type Stats struct {
	TotalUploads   int64 `json:"total_uploads"`
	TotalDownloads int64 `json:"total_downloads"`
	TotalViews     int64 `json:"total_views"`
}

// Aggregate counts records and sums their counters. Empty input gives zeros.
func Aggregate(resources []*models.Resource) Stats {
	var s Stats
	for _, r := range resources {
		if r == nil {
			continue
		}
		s.TotalUploads++
		s.TotalDownloads += r.Downloads
		s.TotalViews += r.Views
	}
	return s
}

// AggregateByOwner groups resources by uploaded_by and aggregates each group.
func AggregateByOwner(resources []*models.Resource) map[string]Stats {
	groups := make(map[string][]*models.Resource)
	for _, r := range resources {
		if r == nil {
			continue
		}
		groups[r.UploadedBy] = append(groups[r.UploadedBy], r)
	}
	out := make(map[string]Stats, len(groups))
	for owner, rs := range groups {
		out[owner] = Aggregate(rs)
	}
	return out
}

// CountByCategory counts resources per category, known categories always present.
func CountByCategory(resources []*models.Resource) map[models.Category]int64 {
	out := make(map[models.Category]int64, len(models.Categories))
	for _, c := range models.Categories {
		out[c] = 0
	}
	for _, r := range resources {
		if r == nil {
			continue
		}
		out[r.Category]++
	}
	return out
}
