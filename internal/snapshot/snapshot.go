package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
)

// DetectionRow is one detection inside an exported row
type DetectionRow struct {
	CommonName     string  `json:"common_name" parquet:"common_name"`
	ScientificName string  `json:"scientific_name" parquet:"scientific_name"`
	Score          float64 `json:"score" parquet:"score"`
}

// Row is the flattened form of one image record. Snapshot-level fields
// are repeated on every row.
type Row struct {
	Key          string         `json:"key" parquet:"key"`
	URL          string         `json:"url" parquet:"url"`
	LastModified int64          `json:"last_modified_ns" parquet:"last_modified_ns"`
	Size         int64          `json:"size" parquet:"size"`
	MetadataKind string         `json:"metadata_kind" parquet:"metadata_kind"`
	Detections   []DetectionRow `json:"detections,omitempty" parquet:"detections,list"`
	MetadataRaw  string         `json:"metadata_raw,omitempty" parquet:"metadata_raw"`
	FetchedAt    int64          `json:"fetched_at_ns" parquet:"fetched_at_ns"`
	Truncated    bool           `json:"truncated" parquet:"truncated"`
}

// Rows flattens a snapshot in catalog order
func Rows(snap *models.Snapshot) []Row {
	rows := make([]Row, 0, len(snap.Images))
	for _, rec := range snap.Images {
		row := Row{
			Key:          rec.Key,
			URL:          rec.URL,
			LastModified: rec.LastModified.UnixNano(),
			Size:         rec.Size,
			MetadataKind: rec.Metadata.Kind.String(),
			FetchedAt:    snap.FetchedAt.UnixNano(),
			Truncated:    snap.Truncated,
		}
		switch rec.Metadata.Kind {
		case models.MetadataDetections:
			for _, d := range rec.Metadata.Detections {
				row.Detections = append(row.Detections, DetectionRow(d))
			}
		case models.MetadataOpaque:
			row.MetadataRaw = string(rec.Metadata.Raw)
		}
		rows = append(rows, row)
	}
	return rows
}

// FromRows rebuilds a snapshot. fallback is used as FetchedAt when there
// are no rows.
func FromRows(rows []Row, fallback time.Time) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Images:    make([]models.ImageRecord, 0, len(rows)),
		FetchedAt: fallback.UTC(),
	}

	seen := make(map[string]struct{}, len(rows))
	for i, row := range rows {
		if _, dup := seen[row.Key]; dup {
			return nil, fmt.Errorf("duplicate key %q at row %d", row.Key, i+1)
		}
		seen[row.Key] = struct{}{}

		md, err := row.metadata()
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i+1, row.Key, err)
		}
		snap.Images = append(snap.Images, models.ImageRecord{
			Key:          row.Key,
			URL:          row.URL,
			LastModified: time.Unix(0, row.LastModified).UTC(),
			Size:         row.Size,
			Metadata:     md,
		})
		if i == 0 {
			snap.FetchedAt = time.Unix(0, row.FetchedAt).UTC()
			snap.Truncated = row.Truncated
		}
	}

	return snap, nil
}

func (r Row) metadata() (models.Metadata, error) {
	switch r.MetadataKind {
	case "detections":
		detections := make([]models.Detection, 0, len(r.Detections))
		for _, d := range r.Detections {
			detections = append(detections, models.Detection(d))
		}
		return models.Metadata{Kind: models.MetadataDetections, Detections: detections}, nil
	case "opaque":
		if !json.Valid([]byte(r.MetadataRaw)) {
			return models.Metadata{}, fmt.Errorf("invalid opaque metadata")
		}
		return models.Metadata{Kind: models.MetadataOpaque, Raw: json.RawMessage(r.MetadataRaw)}, nil
	case "none", "":
		return models.Metadata{}, nil
	default:
		return models.Metadata{}, fmt.Errorf("unknown metadata kind %q", r.MetadataKind)
	}
}

// Export writes snap to path as Parquet or JSONL depending on the extension
func Export(path string, snap *models.Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		err = WriteParquet(file, snap)
	case ".jsonl", ".json":
		err = WriteJSONL(file, snap)
	default:
		err = fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}

	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close snapshot file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// Load reads a snapshot written by Export
func Load(path string) (*models.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	var rows []Row
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		rows, err = ReadParquet(file, info.Size())
	case ".jsonl", ".json":
		rows, err = ReadJSONL(file)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
	if err != nil {
		return nil, err
	}

	return FromRows(rows, info.ModTime())
}

// File serves a previously exported snapshot in place of the live bucket
type File struct {
	Path string
}

func (f File) Assemble(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(f.Path)
}
