// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ardfetch/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagOutput  string
	flagQuality int
	flagSubs    bool
	flagTitle   bool
	flagJSON    bool
	flagDebug   bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ardfetch <url>",
	Short: "Download videos from ARD Mediathek",
	Long: `ardfetch downloads a video from an ARD Mediathek page.
It resolves the streams behind the page, picks the requested quality
tier and saves the video to disk, optionally with its subtitles.`,
	Example: `  ardfetch "https://www.ardmediathek.de/tv/Sendung?documentId=12345"
  ardfetch -q 3 -s -t "https://www.ardmediathek.de/tv/Sendung?documentId=12345"
  ardfetch -o tatort.mp4 "https://www.ardmediathek.de/tv/Sendung?documentId=12345"`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              fetchRun,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file path (default: video.mp4 in the download dir)")
	rootCmd.Flags().IntVarP(&flagQuality, "quality", "q", 0, "Quality tier: 1 low | 2 mid | 3 high")
	rootCmd.Flags().BoolVarP(&flagSubs, "subtitles", "s", false, "Also download subtitles")
	rootCmd.Flags().BoolVarP(&flagTitle, "derive-title", "t", false, "Name the file after the page title")
	rootCmd.Flags().BoolVarP(&flagJSON, "json", "j", false, "Output stream metadata as JSON instead of downloading")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagQuality != 0 {
		cfg.Quality = flagQuality
	}
	if flagSubs {
		cfg.Subtitles = true
	}
	if flagTitle {
		cfg.DeriveTitle = true
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	return nil
}
