package snapshot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
)

func sampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		FetchedAt: time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC),
		Truncated: true,
		Images: []models.ImageRecord{
			{
				Key:          "validated/images/2026-01-19_13:48:20.123456.jpg",
				URL:          "https://assets.example.com/validated/images/2026-01-19_13:48:20.123456.jpg",
				LastModified: time.Date(2026, 1, 19, 22, 0, 0, 0, time.UTC),
				Size:         20480,
				Metadata: models.Metadata{Kind: models.MetadataDetections, Detections: []models.Detection{
					{CommonName: "Deer", ScientificName: "Odocoileus virginianus", Score: 0.9},
					{CommonName: "Fox", ScientificName: "Vulpes vulpes", Score: 0.95},
				}},
			},
			{
				Key:          "validated/images/empty.jpg",
				LastModified: time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC),
				Metadata:     models.Metadata{Kind: models.MetadataDetections, Detections: []models.Detection{}},
			},
			{
				Key:          "validated/images/opaque.png",
				LastModified: time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC),
				Size:         1,
				Metadata:     models.Metadata{Kind: models.MetadataOpaque, Raw: []byte(`{"status":"pending"}`)},
			},
			{
				Key:          "validated/images/none.gif",
				LastModified: time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC),
			},
		},
	}
}

func assertSameSnapshot(t *testing.T, want, got *models.Snapshot) {
	t.Helper()

	assert.True(t, want.FetchedAt.Equal(got.FetchedAt))
	assert.Equal(t, want.Truncated, got.Truncated)
	require.Len(t, got.Images, len(want.Images))

	for i := range want.Images {
		w, g := want.Images[i], got.Images[i]
		assert.Equal(t, w.Key, g.Key)
		assert.Equal(t, w.URL, g.URL)
		assert.Equal(t, w.Size, g.Size)
		assert.True(t, w.LastModified.Equal(g.LastModified), w.Key)
		assert.Equal(t, w.Metadata.Kind, g.Metadata.Kind, w.Key)
		assert.Equal(t, w.Metadata.AnimalCount(), g.Metadata.AnimalCount(), w.Key)
		if w.Metadata.Kind == models.MetadataDetections {
			assert.NotNil(t, g.Metadata.Detections)
			assert.Equal(t, len(w.Metadata.Detections), len(g.Metadata.Detections))
			for j := range w.Metadata.Detections {
				assert.Equal(t, w.Metadata.Detections[j], g.Metadata.Detections[j])
			}
		}
		assert.JSONEq(t, string(mustJSON(t, w.Metadata)), string(mustJSON(t, g.Metadata)))
	}
}

func mustJSON(t *testing.T, md models.Metadata) []byte {
	t.Helper()
	b, err := md.MarshalJSON()
	require.NoError(t, err)
	return b
}

func TestJSONL_RoundTrip(t *testing.T) {
	want := sampleSnapshot()

	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, want))
	assert.Equal(t, 4, bytes.Count(buf.Bytes(), []byte("\n")))

	rows, err := ReadJSONL(&buf)
	require.NoError(t, err)

	got, err := FromRows(rows, time.Now())
	require.NoError(t, err)
	assertSameSnapshot(t, want, got)
}

func TestParquet_RoundTrip(t *testing.T) {
	want := sampleSnapshot()

	var buf bytes.Buffer
	require.NoError(t, WriteParquet(&buf, want))

	rows, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	got, err := FromRows(rows, time.Now())
	require.NoError(t, err)
	assertSameSnapshot(t, want, got)
}

func TestExportAndLoad(t *testing.T) {
	for _, name := range []string{"catalog.parquet", "catalog.jsonl"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := sampleSnapshot()

			require.NoError(t, Export(path, want))

			got, err := File{Path: path}.Assemble(context.Background())
			require.NoError(t, err)
			assertSameSnapshot(t, want, got)
		})
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xml")
	require.Error(t, Export(path, sampleSnapshot()))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_EmptySnapshotUsesModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	require.NoError(t, Export(path, &models.Snapshot{FetchedAt: time.Now()}))

	info, err := os.Stat(path)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, got.Images)
	assert.True(t, info.ModTime().Equal(got.FetchedAt))
}

func TestFromRows_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
	}{
		{name: "duplicate key", rows: []Row{{Key: "a.jpg"}, {Key: "a.jpg"}}},
		{name: "unknown kind", rows: []Row{{Key: "a.jpg", MetadataKind: "xml"}}},
		{name: "bad opaque json", rows: []Row{{Key: "a.jpg", MetadataKind: "opaque", MetadataRaw: "{"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRows(tt.rows, time.Now())
			assert.Error(t, err)
		})
	}
}

func TestReadJSONL_BadLine(t *testing.T) {
	_, err := ReadJSONL(bytes.NewBufferString("{\"key\":\"a.jpg\"}\n\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}
