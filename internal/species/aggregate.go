package species

import (
	"slices"
	"sort"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
)

// Aggregate groups one image's detections by common name and returns the
// per-species count and average score, highest average first. Species
// with equal averages keep the order in which they were first seen.
// It returns nil when the metadata is not a detection list.
func Aggregate(md models.Metadata) []models.SpeciesSummary {
	detections, ok := md.DetectionList()
	if !ok {
		return nil
	}

	groups := make(map[string]int)
	summaries := make([]models.SpeciesSummary, 0)
	totals := make([]float64, 0)

	for _, d := range detections {
		idx, seen := groups[d.CommonName]
		if !seen {
			idx = len(summaries)
			groups[d.CommonName] = idx
			summaries = append(summaries, models.SpeciesSummary{
				CommonName:     d.CommonName,
				ScientificName: d.ScientificName,
			})
			totals = append(totals, 0)
		}
		summaries[idx].Count++
		totals[idx] += d.Score
	}

	for i := range summaries {
		summaries[i].AvgScore = totals[i] / float64(summaries[i].Count)
	}

	slices.SortStableFunc(summaries, func(a, b models.SpeciesSummary) int {
		switch {
		case a.AvgScore > b.AvgScore:
			return -1
		case a.AvgScore < b.AvgScore:
			return 1
		default:
			return 0
		}
	})

	return summaries
}

// CatalogTotal counts one species across a whole catalog
type CatalogTotal struct {
	CommonName     string  `json:"common_name" yaml:"common_name"`
	ScientificName string  `json:"scientific_name" yaml:"scientific_name"`
	Images         int     `json:"images" yaml:"images"`
	Detections     int     `json:"detections" yaml:"detections"`
	AvgScore       float64 `json:"avg_score" yaml:"avg_score"`
}

// Totals rolls every image's detections up into catalog-wide counts,
// ordered by number of images then detections, then name.
func Totals(records []models.ImageRecord) []CatalogTotal {
	byName := make(map[string]*CatalogTotal)
	scoreSums := make(map[string]float64)

	for _, rec := range records {
		for _, s := range Aggregate(rec.Metadata) {
			total, ok := byName[s.CommonName]
			if !ok {
				total = &CatalogTotal{CommonName: s.CommonName, ScientificName: s.ScientificName}
				byName[s.CommonName] = total
			}
			total.Images++
			total.Detections += s.Count
			scoreSums[s.CommonName] += s.AvgScore * float64(s.Count)
		}
	}

	result := make([]CatalogTotal, 0, len(byName))
	for name, total := range byName {
		total.AvgScore = scoreSums[name] / float64(total.Detections)
		result = append(result, *total)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Images != result[j].Images {
			return result[i].Images > result[j].Images
		}
		if result[i].Detections != result[j].Detections {
			return result[i].Detections > result[j].Detections
		}
		return result[i].CommonName < result[j].CommonName
	})

	return result
}
