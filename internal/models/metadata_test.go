package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind MetadataKind
		wantLen  int
		wantErr  bool
	}{
		{name: "detection list", body: `[{"common_name":"Deer","scientific_name":"Odocoileus virginianus","score":0.9}]`, wantKind: MetadataDetections, wantLen: 1},
		{name: "empty list", body: `[]`, wantKind: MetadataDetections, wantLen: 0},
		{name: "null body", body: ` null `, wantKind: MetadataNone},
		{name: "object body", body: `{"model":"speciesnet","ok":true}`, wantKind: MetadataOpaque},
		{name: "scalar body", body: `"pending"`, wantKind: MetadataOpaque},
		{name: "malformed", body: `[{"common_name":`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := ParseMetadata([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, md.Kind)
			assert.Len(t, md.Detections, tt.wantLen)
		})
	}
}

func TestParseMetadata_CoercesMissingFields(t *testing.T) {
	md, err := ParseMetadata([]byte(`[{"score":0.4},{"common_name":7,"score":"high"},42]`))
	require.NoError(t, err)
	require.Equal(t, MetadataDetections, md.Kind)
	require.Len(t, md.Detections, 3)

	assert.Equal(t, Detection{Score: 0.4}, md.Detections[0])
	assert.Equal(t, Detection{}, md.Detections[1])
	assert.Equal(t, Detection{}, md.Detections[2])
	assert.Equal(t, 3, md.AnimalCount())
}

func TestMetadataMarshalJSON(t *testing.T) {
	rec := ImageRecord{Key: "a.jpg", Metadata: Metadata{Kind: MetadataDetections}}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"metadata":[]`)

	rec.Metadata = Metadata{}
	data, err = json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"metadata":null`)

	rec.Metadata = Metadata{Kind: MetadataOpaque, Raw: json.RawMessage(`{"a":1}`)}
	data, err = json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"metadata":{"a":1}`)
}

func TestIndentedRaw(t *testing.T) {
	md := Metadata{Kind: MetadataOpaque, Raw: json.RawMessage(`{"a":1}`)}
	assert.Equal(t, "{\n  \"a\": 1\n}", md.IndentedRaw())
	assert.Empty(t, Metadata{Kind: MetadataDetections}.IndentedRaw())
}
