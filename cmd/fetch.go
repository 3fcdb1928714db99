package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ardfetch/internal/history"
	"ardfetch/internal/mediathek"
	"ardfetch/internal/progress"
)

// streamMetadata is the --json output shape.
type streamMetadata struct {
	Page      string `json:"page"`
	Stream    string `json:"stream"`
	Quality   int    `json:"quality"`
	Subtitles string `json:"subtitles,omitempty"`
}

// fetchRun downloads the video behind the given mediathek page URL.
func fetchRun(cmd *cobra.Command, args []string) error {
	pageURL := args[0]

	opts := mediathek.Options{
		Quality:     cfg.Quality,
		OutputPath:  flagOutput,
		DeriveTitle: cfg.DeriveTitle,
		Base:        cfg.Base,
	}
	if flagOutput == "" && cfg.DownloadDir != "" {
		dir, err := cfg.ExpandDownloadDir()
		if err != nil {
			return err
		}
		opts.Dir = dir
	}

	if flagJSON {
		return printMetadata(pageURL, opts)
	}

	opts.Progress = newProgress()

	f, err := mediathek.New(pageURL, opts)
	if err != nil {
		return err
	}

	path, err := f.Download()
	if err != nil {
		return err
	}

	withSubs := false
	if cfg.Subtitles {
		if _, err := f.FetchSubtitles(); err != nil {
			if !errors.Is(err, mediathek.ErrNotFound) {
				return fmt.Errorf("fetching subtitles: %w", err)
			}
			log.Info("video does not contain subtitles")
		} else {
			withSubs = true
		}
	}

	fmt.Fprintf(os.Stderr, "Downloaded: %s\n", path)

	if cfg.History {
		recordHistory(pageURL, path, withSubs)
	}
	return nil
}

// printMetadata resolves the stream without downloading and prints
// the result as JSON on stdout.
func printMetadata(pageURL string, opts mediathek.Options) error {
	f, err := mediathek.New(pageURL, opts)
	if err != nil {
		return err
	}

	streamURL, err := f.ResolveStreamURL()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(streamMetadata{
		Page:      pageURL,
		Stream:    streamURL,
		Quality:   cfg.Quality,
		Subtitles: f.SubtitleURL(),
	})
}

// newProgress picks the bar UI on a terminal and plain line output
// everywhere else.
func newProgress() mediathek.Progress {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return progress.NewBar("Downloading", os.Stderr)
	}
	return progress.NewPlain(os.Stderr)
}

// recordHistory journals a finished download. Failures are logged,
// never fatal.
func recordHistory(pageURL, path string, withSubs bool) {
	store, err := history.Open()
	if err != nil {
		log.Debugf("opening history: %v", err)
		return
	}
	defer store.Close()

	var size int64
	if fi, err := os.Stat(path); err == nil {
		size = fi.Size()
	}

	if err := store.Add(history.Entry{
		PageURL:   pageURL,
		Output:    path,
		Quality:   cfg.Quality,
		Bytes:     size,
		Subtitles: withSubs,
	}); err != nil {
		log.Debugf("recording history: %v", err)
	}
}
