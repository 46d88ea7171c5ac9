package snapshot

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/parquet-go/parquet-go"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/models"
)

// WriteJSONL writes one row per line
func WriteJSONL(w io.Writer, snap *models.Snapshot) error {
	bw := bufio.NewWriter(w)
	encoder := json.NewEncoder(bw)
	for _, row := range Rows(snap) {
		if err := encoder.Encode(row); err != nil {
			return fmt.Errorf("failed to encode row %s: %w", row.Key, err)
		}
	}
	return bw.Flush()
}

// ReadJSONL reads rows written by WriteJSONL. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]Row, error) {
	var rows []Row
	scanner := bufio.NewScanner(r)

	// Opaque sidecars can make long lines
	const maxCapacity = 10 * 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var row Row
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading snapshot: %w", err)
	}

	slog.Debug("Finished reading JSONL snapshot", "rows", len(rows), "lines", lineNum)
	return rows, nil
}

// WriteParquet writes the rows of snap as a single Parquet file
func WriteParquet(w io.Writer, snap *models.Snapshot) error {
	writer := parquet.NewGenericWriter[Row](w)

	rows := Rows(snap)
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet reads rows written by WriteParquet
func ReadParquet(r io.ReaderAt, size int64) ([]Row, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet snapshot opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	rows := make([]Row, 0, pf.NumRows())
	for {
		// The reader may reuse nested slices of the batch it is given
		batch := make([]Row, 128)
		n, err := reader.Read(batch)
		rows = append(rows, batch[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return rows, nil
}
