// Package mediathek resolves and downloads videos from ARD Mediathek
// pages. Given a page URL it locates the media descriptor, buckets the
// available streams into quality tiers by file size, and streams the
// chosen tier to disk, optionally together with the subtitle track.
package mediathek

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"ardfetch/internal/httputil"
)

const (
	defaultBase     = "www.ardmediathek.de"
	defaultQuality  = 2
	defaultFilename = "video.mp4"

	// mediaEndpoint is the descriptor URL, parameterized by host and
	// document ID.
	mediaEndpoint = "http://%s/play/media/%s?devicetype=pc&features"

	// chunkSize is the copy buffer size for streaming downloads.
	chunkSize = 4096

	// maxBodySize caps descriptor and page reads. Stream and subtitle
	// bodies are exempt.
	maxBodySize = 10 << 20
)

var (
	pageURLPattern    = regexp.MustCompile(`(?i)^https?://(?:(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+(?:[a-z]{2,6}\.?|[a-z0-9-]{2,}\.?)|\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})(?::\d+)?(?:/?|[/?]\S+)$`)
	documentIDPattern = regexp.MustCompile(`documentId=(\d+)`)
)

// Progress receives download progress updates. Start is called once
// with the expected total (-1 when unknown), Add after every chunk,
// and Done exactly once when the transfer ends.
type Progress interface {
	Start(total int64)
	Add(n int)
	Done()
}

type noopProgress struct{}

func (noopProgress) Start(int64) {}
func (noopProgress) Add(int)     {}
func (noopProgress) Done()       {}

// Options configures a Fetcher. The zero value is usable: quality
// defaults to the middle tier and downloads land in the current
// directory under a default name.
type Options struct {
	// Quality selects the stream tier: 1 lowest, 2 middle, 3 highest.
	Quality int

	// OutputPath names the video file explicitly. When empty the name
	// is derived from the page title or falls back to a default.
	OutputPath string

	// DeriveTitle derives the output name from the page title instead
	// of the default name. Ignored when OutputPath is set.
	DeriveTitle bool

	// Dir is the target directory for derived and default names.
	// Empty means the current directory.
	Dir string

	// Base overrides the media endpoint host.
	Base string

	// Client overrides the HTTP client.
	Client *http.Client

	// Progress receives transfer updates during Download.
	Progress Progress
}

// Fetcher downloads a single video from an ARD Mediathek page.
type Fetcher struct {
	client      *http.Client
	pageURL     string
	base        string
	quality     int
	outputPath  string
	dir         string
	deriveTitle bool
	progress    Progress

	subtitleURL string
}

// New validates the page URL and prepares a Fetcher for it.
func New(pageURL string, opts Options) (*Fetcher, error) {
	if !pageURLPattern.MatchString(pageURL) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, pageURL)
	}

	f := &Fetcher{
		client:      opts.Client,
		pageURL:     pageURL,
		base:        opts.Base,
		quality:     opts.Quality,
		dir:         opts.Dir,
		deriveTitle: opts.DeriveTitle,
		progress:    opts.Progress,
	}
	if f.client == nil {
		f.client = httputil.NewClient()
	}
	if f.base == "" {
		f.base = defaultBase
	}
	if f.quality == 0 {
		f.quality = defaultQuality
	}
	if f.progress == nil {
		f.progress = noopProgress{}
	}

	if opts.OutputPath != "" {
		path, err := expandUser(opts.OutputPath)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving output path: %w", err)
		}
		f.outputPath = abs
	}

	return f, nil
}

// ResolveStreamURL fetches the media descriptor for the page and
// returns the stream URL matching the configured quality tier.
func (f *Fetcher) ResolveStreamURL() (string, error) {
	m := documentIDPattern.FindStringSubmatch(f.pageURL)
	if m == nil {
		return "", fmt.Errorf("%w: page URL carries no documentId", ErrNotFound)
	}
	docID := m[1]

	endpoint := fmt.Sprintf(mediaEndpoint, f.base, docID)
	log.Debugf("fetching media descriptor %s", endpoint)

	resp, err := httputil.GetJSON(f.client, endpoint)
	if err != nil {
		return "", fmt.Errorf("fetching media descriptor: %w", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		return "", fmt.Errorf("%w: got %q", ErrNotJSON, ct)
	}

	var desc mediaDescriptor
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&desc); err != nil {
		return "", fmt.Errorf("decoding media descriptor: %w", err)
	}

	f.subtitleURL = desc.SubtitleURL

	sizes, err := probeSizes(f.client, desc.candidates())
	if err != nil {
		return "", err
	}

	tiers := tiersBySize(sizes)
	if len(tiers) == 0 {
		return "", fmt.Errorf("%w: no usable streams", ErrNotFound)
	}

	streamURL, ok := tiers[f.quality]
	if !ok {
		available := make([]int, 0, len(tiers))
		for tier := range tiers {
			available = append(available, tier)
		}
		sort.Ints(available)
		return "", fmt.Errorf("%w: quality tier %d not available (have %v)", ErrNotFound, f.quality, available)
	}

	log.Debugf("resolved tier %d stream %s", f.quality, streamURL)
	return streamURL, nil
}

// SubtitleURL returns the subtitle track URL recorded during
// resolution, or an empty string when the video has none.
func (f *Fetcher) SubtitleURL() string {
	return f.subtitleURL
}

// Download resolves the stream and writes it to the output path,
// which is returned. A partially written file is removed when the
// transfer fails.
func (f *Fetcher) Download() (string, error) {
	if err := f.ensureOutputPath(); err != nil {
		return "", err
	}

	streamURL, err := f.ResolveStreamURL()
	if err != nil {
		return "", err
	}

	resp, err := httputil.Get(f.client, streamURL)
	if err != nil {
		return "", fmt.Errorf("fetching stream: %w", err)
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(f.outputPath), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	out, err := os.Create(f.outputPath)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", f.outputPath, err)
	}

	f.progress.Start(resp.ContentLength)
	defer f.progress.Done()

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(io.MultiWriter(out, progressWriter{f.progress}), resp.Body, buf); err != nil {
		out.Close()
		os.Remove(f.outputPath)
		return "", fmt.Errorf("writing %s: %w", f.outputPath, err)
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", f.outputPath, err)
	}

	return f.outputPath, nil
}

// FetchSubtitles downloads the subtitle track next to the video file,
// swapping the extension for .srt, and returns the written path. The
// track content is stored verbatim. A subtitle URL is only recorded by
// ResolveStreamURL; without one the call fails with ErrNotFound.
func (f *Fetcher) FetchSubtitles() (string, error) {
	if f.subtitleURL == "" {
		return "", fmt.Errorf("%w: video does not contain subtitles", ErrNotFound)
	}

	if err := f.ensureOutputPath(); err != nil {
		return "", err
	}

	resp, err := httputil.Get(f.client, f.subtitleURL)
	if err != nil {
		return "", fmt.Errorf("fetching subtitles: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading subtitles: %w", err)
	}

	subPath := strings.TrimSuffix(f.outputPath, filepath.Ext(f.outputPath)) + ".srt"
	if err := os.MkdirAll(filepath.Dir(subPath), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(subPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", subPath, err)
	}

	log.Infof("subtitles saved as %s", filepath.Base(subPath))
	return subPath, nil
}

// ensureOutputPath fills in the output path when none was given,
// either from the page title or from the default name.
func (f *Fetcher) ensureOutputPath() error {
	if f.outputPath != "" {
		return nil
	}

	name := defaultFilename
	if f.deriveTitle {
		title, err := pageTitle(f.client, f.pageURL)
		if err != nil {
			return err
		}
		name = deriveFilename(title)
	}
	log.Infof("no filename given, defaulting to %s", name)

	dir := f.dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		dir = cwd
	}

	path, err := httputil.SafeDownloadPath(dir, name)
	if err != nil {
		return err
	}
	f.outputPath = path
	return nil
}

// progressWriter forwards written byte counts to a Progress.
type progressWriter struct {
	prog Progress
}

func (w progressWriter) Write(p []byte) (int, error) {
	w.prog.Add(len(p))
	return len(p), nil
}
