package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kataras/golog"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// MetadataFile is the name of the metadata listing written next to the
// prepared documents.
const MetadataFile = "metadata.json"

// Prepare trims every downloaded report to its relevant pages and
// writes it under preparedDir/<company>/. Reports without a page list
// are copied whole. The per-document metadata is returned and also
// persisted as metadata.json in preparedDir.
func Prepare(rawDir, preparedDir string, mapping Mapping) ([]Metadata, error) {
	if err := os.MkdirAll(preparedDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", preparedDir, err)
	}

	var metadata []Metadata
	for company, docs := range mapping {
		rawCompanyDir := filepath.Join(rawDir, company)
		preparedCompanyDir := filepath.Join(preparedDir, company)
		if err := os.MkdirAll(preparedCompanyDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", preparedCompanyDir, err)
		}

		for _, doc := range docs {
			if doc.URL == "" {
				continue
			}

			filename := fmt.Sprintf("annual_report_%s.pdf", doc.Year)
			inPath := filepath.Join(rawCompanyDir, filename)
			outPath := filepath.Join(preparedCompanyDir, filename)

			meta := Metadata{
				Company:      company,
				Year:         doc.Year,
				DocURL:       doc.URL,
				LocalPDFPath: outPath,
			}

			if len(doc.Pages) == 0 {
				if err := copyFile(inPath, outPath); err != nil {
					return nil, fmt.Errorf("failed to copy %s: %w", inPath, err)
				}
				metadata = append(metadata, meta)
				continue
			}

			meta.PagesKept = doc.Pages
			if err := trimPages(inPath, outPath, doc.Pages); err != nil {
				return nil, fmt.Errorf("failed to trim %s: %w", inPath, err)
			}
			golog.Infof("kept %d pages of %s for %s", len(doc.Pages), filename, company)
			metadata = append(metadata, meta)
		}
	}

	if err := SaveMetadata(metadata, filepath.Join(preparedDir, MetadataFile)); err != nil {
		return nil, err
	}
	return metadata, nil
}

// trimPages writes a copy of the PDF containing only the selected
// 1-based pages.
func trimPages(inPath, outPath string, pages []int) error {
	selected := make([]string, len(pages))
	for i, p := range pages {
		selected[i] = strconv.Itoa(p)
	}
	return api.TrimFile(inPath, outPath, selected, nil)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// SaveMetadata writes the metadata listing as JSON.
func SaveMetadata(metadata []Metadata, path string) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// LoadMetadata reads a metadata listing written by Prepare.
func LoadMetadata(path string) ([]Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	var metadata []Metadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata %s: %w", path, err)
	}
	return metadata, nil
}
