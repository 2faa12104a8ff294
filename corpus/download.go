package corpus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kataras/golog"
)

// Some document hosts reject requests without a browser user agent.
const downloadUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Download fetches every report of the mapping into
// baseDir/<company>/annual_report_<year>.pdf. Files already on disk
// are left alone, empty URLs are skipped.
func Download(ctx context.Context, client *http.Client, baseDir string, mapping Mapping) error {
	if client == nil {
		client = http.DefaultClient
	}

	for company, docs := range mapping {
		companyDir := filepath.Join(baseDir, company)
		if err := os.MkdirAll(companyDir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", companyDir, err)
		}

		for _, doc := range docs {
			if doc.URL == "" {
				continue
			}

			filename := fmt.Sprintf("annual_report_%s.pdf", doc.Year)
			path := filepath.Join(companyDir, filename)

			if _, err := os.Stat(path); err == nil {
				golog.Infof("%s already exists for %s", filename, company)
				continue
			}

			if err := downloadFile(ctx, client, doc.URL, path); err != nil {
				return fmt.Errorf("failed to download %s for %s: %w", filename, company, err)
			}
			golog.Infof("downloaded %s for %s", filename, company)
		}
	}
	return nil
}

func downloadFile(ctx context.Context, client *http.Client, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", downloadUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
