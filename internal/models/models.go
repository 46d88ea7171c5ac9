package models

import (
	"encoding/json"
	"time"
)

// ImageRecord represents one image in a catalog snapshot
type ImageRecord struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	LastModified time.Time `json:"last_modified"`
	Size         int64     `json:"size"`
	Metadata     Metadata  `json:"metadata"`
}

// Detection is one recognized organism within one image
type Detection struct {
	CommonName     string  `json:"common_name"`
	ScientificName string  `json:"scientific_name"`
	Score          float64 `json:"score"`
}

// MetadataKind tells which shape a sidecar record had
type MetadataKind int

const (
	MetadataNone MetadataKind = iota
	MetadataDetections
	MetadataOpaque
)

func (k MetadataKind) String() string {
	switch k {
	case MetadataDetections:
		return "detections"
	case MetadataOpaque:
		return "opaque"
	default:
		return "none"
	}
}

// Metadata is the sidecar attached to an image. Detections is only
// meaningful for MetadataDetections and may be empty; Raw is only set
// for MetadataOpaque.
type Metadata struct {
	Kind       MetadataKind    `json:"-"`
	Detections []Detection     `json:"-"`
	Raw        json.RawMessage `json:"-"`
}

// DetectionList returns the detections and true when the sidecar was a list
func (m Metadata) DetectionList() ([]Detection, bool) {
	if m.Kind != MetadataDetections {
		return nil, false
	}
	return m.Detections, true
}

// AnimalCount is the number of detections, 0 unless the sidecar was a list
func (m Metadata) AnimalCount() int {
	if m.Kind != MetadataDetections {
		return 0
	}
	return len(m.Detections)
}

// MarshalJSON writes the sidecar back in its original shape: null, a
// detection array or the opaque document.
func (m Metadata) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case MetadataDetections:
		if m.Detections == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(m.Detections)
	case MetadataOpaque:
		if len(m.Raw) == 0 {
			return []byte("null"), nil
		}
		return m.Raw, nil
	default:
		return []byte("null"), nil
	}
}

// SpeciesSummary groups the detections of one species within one image
type SpeciesSummary struct {
	CommonName     string  `json:"common_name" yaml:"common_name"`
	ScientificName string  `json:"scientific_name" yaml:"scientific_name"`
	Count          int     `json:"count" yaml:"count"`
	AvgScore       float64 `json:"avg_score" yaml:"avg_score"`
}

// Snapshot is an immutable catalog produced by one fetch cycle
type Snapshot struct {
	Images    []ImageRecord `json:"images"`
	FetchedAt time.Time     `json:"fetched_at"`
	Truncated bool          `json:"truncated,omitempty"`
}

// ViewSession holds one browsing session's query state
type ViewSession struct {
	ID        string    `json:"id"`
	Search    string    `json:"search"`
	Sort      string    `json:"sort"`
	Page      int       `json:"page"`
	// CatalogFetchedAt is the catalog the page number refers to. A newer
	// catalog sends the view back to page 1.
	CatalogFetchedAt time.Time `json:"catalog_fetched_at,omitzero"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
