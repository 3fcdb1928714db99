package mediathek

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gosimple/slug"

	"ardfetch/internal/httputil"
)

// pageTitle fetches the mediathek page and extracts its title tag.
func pageTitle(client *http.Client, pageURL string) (string, error) {
	resp, err := httputil.Get(client, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("parsing page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return "", fmt.Errorf("%w: page has no title", ErrNotFound)
	}
	return title, nil
}

// deriveFilename turns a page title into a filesystem-friendly mp4
// name. Mediathek titles carry a station suffix after a pipe, which
// is cut off.
func deriveFilename(title string) string {
	name, _, _ := strings.Cut(title, "|")
	return slug.Make(strings.TrimSpace(name)) + ".mp4"
}

// expandUser resolves a bare ~ or a leading ~/ against the home
// directory.
func expandUser(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
