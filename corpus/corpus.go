// Package corpus manages the source documents of the pipeline: which
// annual reports to download, trimming them to their relevant pages,
// and the per-document metadata produced along the way.
package corpus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DocumentSpec describes one report to fetch for a company. Pages are
// 1-based page numbers to keep from the raw PDF; an empty list keeps
// the whole file.
type DocumentSpec struct {
	URL   string `yaml:"doc_url" json:"doc_url"`
	Year  string `yaml:"year" json:"year"`
	Pages []int  `yaml:"pages,omitempty" json:"pages,omitempty"`
}

// Mapping maps a company name to the reports to process for it.
type Mapping map[string][]DocumentSpec

// Metadata records where a prepared document came from. One record is
// written per prepared PDF; the full list is persisted as
// metadata.json next to the prepared files.
type Metadata struct {
	Company      string `json:"company"`
	Year         string `json:"year"`
	DocURL       string `json:"doc_url"`
	LocalPDFPath string `json:"local_pdf_path"`
	PagesKept    []int  `json:"pages_kept,omitempty"`
}

// DefaultMapping returns the built-in document mapping.
func DefaultMapping() Mapping {
	return Mapping{
		"Amazon": {
			{
				URL:   "https://s2.q4cdn.com/299287126/files/doc_financials/2023/ar/Amazon-2022-Annual-Report.pdf",
				Year:  "2022",
				Pages: []int{15, 17, 18, 47, 48},
			},
			{
				URL:   "https://s2.q4cdn.com/299287126/files/doc_financials/2022/ar/Amazon-2021-Annual-Report.pdf",
				Year:  "2021",
				Pages: []int{14, 16, 17, 18, 46, 47},
			},
		},
	}
}

// LoadMapping reads a document mapping from a YAML file.
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}
	return m, nil
}
