package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// rawDetection accepts any JSON type per field so a badly typed entry
// degrades to zero values instead of failing the whole sidecar.
type rawDetection struct {
	CommonName     any `json:"common_name"`
	ScientificName any `json:"scientific_name"`
	Score          any `json:"score"`
}

// ParseMetadata classifies a sidecar body. A JSON array becomes a
// detection list, null becomes MetadataNone and any other valid JSON is
// kept as opaque data. Invalid JSON is an error.
func ParseMetadata(body []byte) (Metadata, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return Metadata{}, fmt.Errorf("invalid JSON sidecar")
	}

	switch trimmed[0] {
	case 'n':
		return Metadata{Kind: MetadataNone}, nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return Metadata{}, fmt.Errorf("failed to decode detection list: %w", err)
		}
		detections := make([]Detection, 0, len(elems))
		for _, elem := range elems {
			detections = append(detections, parseDetection(elem))
		}
		return Metadata{Kind: MetadataDetections, Detections: detections}, nil
	default:
		raw := make(json.RawMessage, len(trimmed))
		copy(raw, trimmed)
		return Metadata{Kind: MetadataOpaque, Raw: raw}, nil
	}
}

func parseDetection(elem json.RawMessage) Detection {
	var rd rawDetection
	if err := json.Unmarshal(elem, &rd); err != nil {
		return Detection{}
	}

	d := Detection{}
	if s, ok := rd.CommonName.(string); ok {
		d.CommonName = s
	}
	if s, ok := rd.ScientificName.(string); ok {
		d.ScientificName = s
	}
	if f, ok := rd.Score.(float64); ok {
		d.Score = f
	}
	return d
}

// IndentedRaw renders opaque metadata for display
func (m Metadata) IndentedRaw() string {
	if m.Kind != MetadataOpaque || len(m.Raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, m.Raw, "", "  "); err != nil {
		return string(m.Raw)
	}
	return buf.String()
}
