package species

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
)

func detections(ds ...models.Detection) models.Metadata {
	return models.Metadata{Kind: models.MetadataDetections, Detections: ds}
}

func TestAggregate(t *testing.T) {
	md := detections(
		models.Detection{CommonName: "Deer", ScientificName: "Odocoileus virginianus", Score: 0.9},
		models.Detection{CommonName: "Deer", ScientificName: "Odocoileus", Score: 0.7},
		models.Detection{CommonName: "Fox", ScientificName: "Vulpes vulpes", Score: 0.95},
	)

	got := Aggregate(md)
	require.Len(t, got, 2)

	assert.Equal(t, "Fox", got[0].CommonName)
	assert.Equal(t, 1, got[0].Count)
	assert.InDelta(t, 0.95, got[0].AvgScore, 1e-9)

	assert.Equal(t, "Deer", got[1].CommonName)
	assert.Equal(t, "Odocoileus virginianus", got[1].ScientificName)
	assert.Equal(t, 2, got[1].Count)
	assert.InDelta(t, 0.8, got[1].AvgScore, 1e-9)
}

func TestAggregate_NonDetections(t *testing.T) {
	tests := []struct {
		name string
		md   models.Metadata
	}{
		{name: "none", md: models.Metadata{}},
		{name: "opaque", md: models.Metadata{Kind: models.MetadataOpaque, Raw: []byte(`{"a":1}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Aggregate(tt.md))
		})
	}
}

func TestAggregate_EmptyList(t *testing.T) {
	got := Aggregate(detections())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregate_TiesKeepFirstSeenOrder(t *testing.T) {
	md := detections(
		models.Detection{CommonName: "Raccoon", Score: 0.5},
		models.Detection{CommonName: "", Score: 0.5},
		models.Detection{CommonName: "Coyote", Score: 0.5},
	)

	got := Aggregate(md)
	require.Len(t, got, 3)
	assert.Equal(t, "Raccoon", got[0].CommonName)
	assert.Equal(t, "", got[1].CommonName)
	assert.Equal(t, "Coyote", got[2].CommonName)
}

func TestTotals(t *testing.T) {
	records := []models.ImageRecord{
		{Key: "a.jpg", Metadata: detections(
			models.Detection{CommonName: "Deer", ScientificName: "Odocoileus virginianus", Score: 0.9},
			models.Detection{CommonName: "Deer", Score: 0.7},
		)},
		{Key: "b.jpg", Metadata: detections(
			models.Detection{CommonName: "Deer", Score: 0.5},
			models.Detection{CommonName: "Fox", Score: 1.0},
		)},
		{Key: "c.jpg", Metadata: models.Metadata{Kind: models.MetadataOpaque, Raw: []byte(`{}`)}},
		{Key: "d.jpg"},
	}

	got := Totals(records)
	require.Len(t, got, 2)

	assert.Equal(t, "Deer", got[0].CommonName)
	assert.Equal(t, "Odocoileus virginianus", got[0].ScientificName)
	assert.Equal(t, 2, got[0].Images)
	assert.Equal(t, 3, got[0].Detections)
	assert.InDelta(t, 0.7, got[0].AvgScore, 1e-9)

	assert.Equal(t, "Fox", got[1].CommonName)
	assert.Equal(t, 1, got[1].Images)
	assert.Equal(t, 1, got[1].Detections)

	assert.Empty(t, Totals(nil))
}
