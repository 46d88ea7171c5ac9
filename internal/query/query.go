package query

import (
	"slices"
	"strings"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/images"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
)

// SortKey selects the ordering of a result set
type SortKey string

const (
	SortDateDesc    SortKey = "date-desc"
	SortDateAsc     SortKey = "date-asc"
	SortAnimalsDesc SortKey = "animals-desc"
	SortAnimalsAsc  SortKey = "animals-asc"
)

// DefaultSort is the ordering a new view starts with
const DefaultSort = SortDateDesc

// SortOption pairs a sort key with its display label
type SortOption struct {
	Key   SortKey `json:"key" yaml:"key"`
	Label string  `json:"label" yaml:"label"`
}

var sortOptions = []SortOption{
	{Key: SortDateDesc, Label: "Newest First"},
	{Key: SortDateAsc, Label: "Oldest First"},
	{Key: SortAnimalsDesc, Label: "Most Animals"},
	{Key: SortAnimalsAsc, Label: "Fewest Animals"},
}

// SortKeys lists the supported orderings in display order
func SortKeys() []SortOption {
	return slices.Clone(sortOptions)
}

// ParseSort validates a user supplied sort key. An empty string selects
// DefaultSort.
func ParseSort(s string) (SortKey, bool) {
	if s == "" {
		return DefaultSort, true
	}
	for _, opt := range sortOptions {
		if string(opt.Key) == s {
			return opt.Key, true
		}
	}
	return "", false
}

// Matches reports whether an image has a detection whose common or
// scientific name contains search, ignoring case. Images without a
// detection list never match a non-empty search.
func Matches(rec models.ImageRecord, search string) bool {
	if search == "" {
		return true
	}

	detections, ok := rec.Metadata.DetectionList()
	if !ok {
		return false
	}

	needle := strings.ToLower(search)
	for _, d := range detections {
		if strings.Contains(strings.ToLower(d.CommonName), needle) ||
			strings.Contains(strings.ToLower(d.ScientificName), needle) {
			return true
		}
	}
	return false
}

// Apply filters records by search and then orders them by sort. The input
// slice is never modified. Sorting is stable, and an unknown sort key
// leaves the filtered records in input order.
func Apply(records []models.ImageRecord, search string, sort SortKey) []models.ImageRecord {
	result := make([]models.ImageRecord, 0, len(records))
	for _, rec := range records {
		if Matches(rec, search) {
			result = append(result, rec)
		}
	}

	var cmp func(a, b models.ImageRecord) int
	switch sort {
	case SortDateDesc:
		cmp = func(a, b models.ImageRecord) int { return compareTime(b, a) }
	case SortDateAsc:
		cmp = compareTime
	case SortAnimalsDesc:
		cmp = func(a, b models.ImageRecord) int { return b.Metadata.AnimalCount() - a.Metadata.AnimalCount() }
	case SortAnimalsAsc:
		cmp = func(a, b models.ImageRecord) int { return a.Metadata.AnimalCount() - b.Metadata.AnimalCount() }
	default:
		return result
	}

	slices.SortStableFunc(result, cmp)
	return result
}

func compareTime(a, b models.ImageRecord) int {
	return images.EffectiveTime(a.Key, a.LastModified).Compare(images.EffectiveTime(b.Key, b.LastModified))
}
