package scraper

import (
	"context"
	"time"

	"openbanking/internal/document"
	"openbanking/internal/dom"
	"openbanking/internal/wait"

	"github.com/sirupsen/logrus"
)

// Scraper harvests one source through a page the caller has already opened.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, page dom.Page, opts Options) ([]document.Document, error)
}

type Content interface {
	ToHTML() (string, error)
	ToText() (string, error)
	ToMarkdown() (string, error)
	ToJSON() ([]byte, error)
	ToCSV() (string, error)
}

// Options override a site's timings. Zero durations keep the site default;
// a negative duration disables the pause.
type Options struct {
	ListingSettle time.Duration
	PageSettle    time.Duration
	ScrollPause   time.Duration
	Poll          *wait.Policy // nil keeps the site default
	Log           *logrus.Entry
}

// Pick returns the override when set and def otherwise.
func Pick(override, def time.Duration) time.Duration {
	switch {
	case override < 0:
		return 0
	case override > 0:
		return override
	default:
		return def
	}
}
