package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"openbanking/internal/browser"
	"openbanking/internal/config"
	"openbanking/internal/document"
	"openbanking/internal/dom"
	"openbanking/internal/formatter"
	"openbanking/internal/logging"
	"openbanking/internal/scraper"
	_ "openbanking/internal/sites/openbanking"
	"openbanking/internal/snapshot"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	site         string
	configFile   string
	outputFormat string
	outputFile   string
	snapshotDir  string
	showUI       bool
	proxyURL     string
	logLevel     string
	logFormat    string
	timeout      time.Duration
)

func main() {
	var rootCmd = &cobra.Command{
		Use:     "openbanking",
		Short:   "Harvest documents from the Open Banking wiki",
		Version: version,
		Long: `openbanking scrolls the Open Banking Confluence space listing until it
stops growing, opens every linked page in a headless browser and prints one
record per page with its title, publication date, people and body text.`,
		Example: `  # Harvest the space and print a text summary
  openbanking

  # Save as JSON through a proxy with the browser visible
  openbanking --proxy http://127.0.0.1:7890 --showui -o docs.json

  # Replay saved pages listed in ./fixtures/manifest.yaml
  openbanking --snapshot ./fixtures -f markdown`,
		Args:         cobra.NoArgs,
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&site, "site", "openbanking", "Source to harvest ("+strings.Join(scraper.Names(), ", ")+")")
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format ("+strings.Join(formatter.Formats, ", ")+")")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (format inferred from extension if -f not specified)")
	rootCmd.Flags().StringVar(&snapshotDir, "snapshot", "", "Replay saved pages from a directory with manifest.yaml instead of launching a browser")
	rootCmd.Flags().BoolVar(&showUI, "showui", false, "Show browser UI (disable headless mode)")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", os.Getenv("OPENBANKING_PROXY"), "Proxy URL (e.g. http://127.0.0.1:7890), defaults to OPENBANKING_PROXY env var")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "Page load timeout (overrides browser.page_load_timeout)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// If output file is specified but format is not, infer format from file extension
	if outputFile != "" && !cmd.Flags().Changed("format") {
		if inferred := inferFormatFromExtension(outputFile); inferred != "" {
			outputFormat = inferred
		}
	}
	if !slices.Contains(formatter.Formats, outputFormat) {
		return fmt.Errorf("invalid output format: %s", outputFormat)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)

	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	log := logrus.NewEntry(logger)

	s, ok := scraper.Get(site)
	if !ok {
		return fmt.Errorf("unknown site: %s", site)
	}

	ctx := context.Background()

	page, closePage, err := openPage(cfg.Browser, log)
	if err != nil {
		return err
	}
	defer closePage()

	docs, scrapeErr := s.Scrape(ctx, page, scraper.Options{
		ListingSettle: cfg.Timing.ListingSettle,
		PageSettle:    cfg.Timing.PageSettle,
		ScrollPause:   cfg.Timing.ScrollPause,
		Poll:          &cfg.Poll,
		Log:           log,
	})
	if scrapeErr != nil && len(docs) == 0 {
		return fmt.Errorf("failed to scrape: %w", scrapeErr)
	}

	out, err := formatter.Format(document.NewContent(s.Name(), docs), outputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		log.WithFields(logrus.Fields{"file": outputFile, "documents": len(docs)}).Info("Output written")
	} else {
		fmt.Println(out)
	}

	if scrapeErr != nil {
		return fmt.Errorf("scrape ended early after %d documents: %w", len(docs), scrapeErr)
	}
	return nil
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("showui") {
		cfg.Browser.Headless = !showUI
	}
	if proxyURL != "" {
		cfg.Browser.ProxyURL = proxyURL
	}
	if flags.Changed("timeout") {
		cfg.Browser.PageLoadTimeout = timeout
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
}

// openPage returns a snapshot replay when --snapshot is set and a live
// browser tab otherwise.
func openPage(cfg browser.Config, log *logrus.Entry) (dom.Page, func(), error) {
	if snapshotDir != "" {
		p, err := snapshot.Load(snapshotDir)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("dir", snapshotDir).Info("Replaying snapshot")
		return p, func() {}, nil
	}

	b, err := browser.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create browser: %w", err)
	}
	p, err := b.NewPage()
	if err != nil {
		_ = b.Close()
		return nil, nil, err
	}
	log.WithFields(logrus.Fields{"headless": cfg.Headless, "proxy": b.ProxyURL()}).Debug("Browser started")

	return p, func() {
		_ = p.Close()
		if err := b.Close(); err != nil {
			log.WithError(err).Warn("Failed to close browser")
		}
	}, nil
}

// inferFormatFromExtension infers output format from file extension
func inferFormatFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return "markdown"
	case ".json":
		return "json"
	case ".html", ".htm":
		return "html"
	case ".txt":
		return "text"
	case ".csv":
		return "csv"
	default:
		return ""
	}
}
