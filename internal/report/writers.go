package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/species"
)

// WritePage renders a results page
func WritePage(w io.Writer, format Format, p Page) error {
	switch format {
	case FormatText:
		return writePageText(w, p)
	case FormatJSON:
		return writeJSON(w, p)
	case FormatYAML:
		return writeYAML(w, p)
	case FormatCSV:
		return writePageCSV(w, p)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteDetail renders a single image
func WriteDetail(w io.Writer, format Format, d Detail) error {
	switch format {
	case FormatText:
		return writeDetailText(w, d)
	case FormatJSON:
		return writeJSON(w, d)
	case FormatYAML:
		return writeYAML(w, d)
	case FormatCSV:
		return writeDetailCSV(w, d)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteSpecies renders catalog-wide species totals
func WriteSpecies(w io.Writer, format Format, totals []species.CatalogTotal) error {
	switch format {
	case FormatText:
		return writeSpeciesText(w, totals)
	case FormatJSON:
		return writeJSON(w, totals)
	case FormatYAML:
		return writeYAML(w, totals)
	case FormatCSV:
		return writeSpeciesCSV(w, totals)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

func writePageText(w io.Writer, p Page) error {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, "Buckshot Gallery")
	fmt.Fprintln(w, "========================================")
	if p.Search != "" {
		fmt.Fprintf(w, "Search: %s\n", p.Search)
	}
	fmt.Fprintf(w, "Sort:   %s\n", p.Sort)
	fmt.Fprintf(w, "Images: %d\n\n", p.Total)

	if len(p.Rows) == 0 {
		if p.Search != "" {
			fmt.Fprintln(w, "No images match your search.")
		} else {
			fmt.Fprintln(w, "No images found.")
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILENAME\tCAPTURED\tSIZE\tANIMALS\tSPECIES")
	for _, r := range p.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.Filename, r.Captured, r.Size, r.Animals, r.Species)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nPage %d of %d  %s\n", p.Page, p.TotalPages, pageStrip(p.Page, p.Links))
	return nil
}

func pageStrip(current int, links []int) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		switch l {
		case 0:
			parts = append(parts, "...")
		case current:
			parts = append(parts, "["+strconv.Itoa(l)+"]")
		default:
			parts = append(parts, strconv.Itoa(l))
		}
	}
	return strings.Join(parts, " ")
}

func writeDetailText(w io.Writer, d Detail) error {
	fmt.Fprintf(w, "%s\n", d.Filename)
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Captured: %s\n", d.Captured)
	fmt.Fprintf(w, "Size:     %s\n", d.Size)
	fmt.Fprintf(w, "URL:      %s\n\n", d.URL)

	switch {
	case len(d.Species) > 0:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SPECIES\tSCIENTIFIC NAME\tCOUNT\tCONFIDENCE")
		for _, s := range d.Species {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f%%\n", s.CommonName, s.ScientificName, s.Count, s.AvgScore*100)
		}
		return tw.Flush()
	case d.Metadata != "":
		fmt.Fprintln(w, "Metadata:")
		fmt.Fprintln(w, d.Metadata)
	case d.MetadataKind == "detections":
		fmt.Fprintln(w, "No animals detected.")
	default:
		fmt.Fprintln(w, "No metadata available.")
	}
	return nil
}

func writeSpeciesText(w io.Writer, totals []species.CatalogTotal) error {
	if len(totals) == 0 {
		fmt.Fprintln(w, "No detections in catalog.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SPECIES\tSCIENTIFIC NAME\tIMAGES\tDETECTIONS\tAVG CONFIDENCE")
	for _, t := range totals {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.1f%%\n", t.CommonName, t.ScientificName, t.Images, t.Detections, t.AvgScore*100)
	}
	return tw.Flush()
}

func writePageCSV(w io.Writer, p Page) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Filename", "Captured", "Size", "Animals", "Species", "URL"}); err != nil {
		return err
	}
	for _, r := range p.Rows {
		row := []string{r.Filename, r.Captured, r.Size, strconv.Itoa(r.Animals), r.Species, r.URL}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeDetailCSV(w io.Writer, d Detail) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Filename", "Common Name", "Scientific Name", "Count", "Avg Score"}); err != nil {
		return err
	}
	for _, s := range d.Species {
		row := []string{d.Filename, s.CommonName, s.ScientificName, strconv.Itoa(s.Count), fmt.Sprintf("%.4f", s.AvgScore)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeSpeciesCSV(w io.Writer, totals []species.CatalogTotal) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Common Name", "Scientific Name", "Images", "Detections", "Avg Score"}); err != nil {
		return err
	}
	for _, t := range totals {
		row := []string{t.CommonName, t.ScientificName, strconv.Itoa(t.Images), strconv.Itoa(t.Detections), fmt.Sprintf("%.4f", t.AvgScore)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
