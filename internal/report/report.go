package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/images"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/query"
	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/species"
)

// Format selects how a report is rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format flag value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatCSV, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Row is one image in a results page
type Row struct {
	Filename string `json:"filename" yaml:"filename"`
	Captured string `json:"captured" yaml:"captured"`
	Size     string `json:"size" yaml:"size"`
	Animals  int    `json:"animals" yaml:"animals"`
	Species  string `json:"species" yaml:"species"`
	URL      string `json:"url" yaml:"url"`
}

// Page is one page of query results
type Page struct {
	Search     string `json:"search" yaml:"search"`
	Sort       string `json:"sort" yaml:"sort"`
	Page       int    `json:"page" yaml:"page"`
	TotalPages int    `json:"total_pages" yaml:"total_pages"`
	Total      int    `json:"total" yaml:"total"`
	Links      []int  `json:"links" yaml:"links"`
	Rows       []Row  `json:"rows" yaml:"rows"`
}

// Detail describes a single image
type Detail struct {
	Filename     string                  `json:"filename" yaml:"filename"`
	Key          string                  `json:"key" yaml:"key"`
	URL          string                  `json:"url" yaml:"url"`
	Captured     string                  `json:"captured" yaml:"captured"`
	LastModified time.Time               `json:"last_modified" yaml:"last_modified"`
	Size         string                  `json:"size" yaml:"size"`
	MetadataKind string                  `json:"metadata_kind" yaml:"metadata_kind"`
	Species      []models.SpeciesSummary `json:"species,omitempty" yaml:"species,omitempty"`
	Metadata     string                  `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// FormatSize renders a byte count in kilobytes, e.g. "20.00 KB"
func FormatSize(size int64) string {
	return fmt.Sprintf("%.2f KB", float64(size)/1024)
}

// NewRow summarizes rec for a results table
func NewRow(rec models.ImageRecord) Row {
	summaries := species.Aggregate(rec.Metadata)
	names := make([]string, 0, len(summaries))
	for _, s := range summaries {
		names = append(names, s.CommonName)
	}

	return Row{
		Filename: images.Filename(rec.Key),
		Captured: images.FormatCaptureTime(rec.Key),
		Size:     FormatSize(rec.Size),
		Animals:  rec.Metadata.AnimalCount(),
		Species:  strings.Join(names, ", "),
		URL:      rec.URL,
	}
}

// NewPage builds a report from a query result
func NewPage(v query.View, res query.Result[models.ImageRecord]) Page {
	rows := make([]Row, 0, len(res.Items))
	for _, rec := range res.Items {
		rows = append(rows, NewRow(rec))
	}
	return Page{
		Search:     v.Search,
		Sort:       string(v.Sort),
		Page:       res.Page,
		TotalPages: res.TotalPages,
		Total:      res.Total,
		Links:      res.Links,
		Rows:       rows,
	}
}

// NewDetail builds the detail view of rec. A detection list yields a
// species table, opaque metadata is shown as indented JSON.
func NewDetail(rec models.ImageRecord) Detail {
	d := Detail{
		Filename:     images.Filename(rec.Key),
		Key:          rec.Key,
		URL:          rec.URL,
		Captured:     images.FormatCaptureTime(rec.Key),
		LastModified: rec.LastModified,
		Size:         FormatSize(rec.Size),
		MetadataKind: rec.Metadata.Kind.String(),
	}

	switch rec.Metadata.Kind {
	case models.MetadataDetections:
		d.Species = species.Aggregate(rec.Metadata)
	case models.MetadataOpaque:
		d.Metadata = rec.Metadata.IndentedRaw()
	}

	return d
}
