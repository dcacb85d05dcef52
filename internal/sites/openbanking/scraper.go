// Package openbanking harvests the Open Banking Confluence space.
package openbanking

import (
	"context"
	"time"

	"openbanking/internal/collector"
	"openbanking/internal/dates"
	"openbanking/internal/document"
	"openbanking/internal/dom"
	"openbanking/internal/extract"
	"openbanking/internal/harvest"
	"openbanking/internal/logging"
	"openbanking/internal/scraper"
	"openbanking/internal/wait"
)

const (
	SourceName = "openbanking"
	Host       = "https://openbanking.atlassian.net/wiki/spaces/DZ/pages"
)

const (
	ListingSettle = 5 * time.Second
	PageSettle    = 4 * time.Second
	ScrollPause   = 2 * time.Second
)

// byline is the page header holding owner, date and last editor.
const byline = `//*[@id="content-body"]/div/div/div/div/div[2]/div[3]/div[1]/div/div[2]/div[2]`

var (
	Blocks      = dom.XPath(`//*[@id="content-body"]/div/div[3]/div[1]/div`)
	Link        = dom.XPath(`.//a`)
	Title       = dom.ByID("title-text")
	Date        = dom.XPath(byline + `/div[2]/div/span/a[1]`)
	LastUpdated = dom.ByID("content-header.by-line.last.updated.version.1")
	Owner       = dom.XPath(byline + `/div[1]/div/span/span/a`)
	UpdatedBy   = dom.XPath(byline + `/div[2]/div/span/a[2]`)
	MainContent = dom.ByID("main-content")
)

// DefaultPoll bounds the rendering checks after each scroll and navigation.
var DefaultPoll = wait.Policy{Interval: 250 * time.Millisecond, MaxInterval: 2 * time.Second, Attempts: 8}

func init() {
	scraper.Register(New())
}

type Scraper struct {
	now func() time.Time
}

func New() *Scraper {
	return &Scraper{now: time.Now}
}

func (s *Scraper) Name() string { return SourceName }

// Scrape collects every page of the space listing and extracts one document
// per page. page must be fresh; it is navigated away from whatever it shows.
func (s *Scraper) Scrape(ctx context.Context, page dom.Page, opts scraper.Options) ([]document.Document, error) {
	log := logging.Or(opts.Log).WithField("source", SourceName)
	log.Debug("Parser class init completed")
	log.Infof("Set source: %s", SourceName)

	poll := DefaultPoll
	if opts.Poll != nil {
		poll = *opts.Poll
	}

	h := &harvest.Harvester{
		Page:          page,
		Listing:       Host,
		ListingSettle: scraper.Pick(opts.ListingSettle, ListingSettle),
		Collector: &collector.Collector{
			Page:        page,
			Blocks:      Blocks,
			Link:        Link,
			ScrollPause: scraper.Pick(opts.ScrollPause, ScrollPause),
			Poll:        poll,
		},
		Extractor: &extract.PageExtractor{
			Page:   page,
			Fields: s.fields(),
			Ready:  Title,
			Settle: scraper.Pick(opts.PageSettle, PageSettle),
			Poll:   poll,
			Now:    s.now,
		},
		Log: log,
	}

	log.Debug("Parse process start")
	docs, err := h.Run(ctx)
	log.WithField("documents", len(docs)).Debug("Parse process finished")
	return docs, err
}

func (s *Scraper) fields() extract.Fields {
	parse := func(v string) (time.Time, error) {
		return dates.Parse(v, s.now())
	}
	return extract.Fields{
		Title: extract.Text(Title),
		PubDate: extract.FirstOf("date",
			extract.Date(Date, parse),
			extract.Date(LastUpdated, parse),
		),
		Text: extract.Text(MainContent),
		Body: extract.InnerHTML(MainContent),
		Optional: []extract.Optional{
			{Key: document.KeyOwner, Extractor: extract.Text(Owner)},
			{Key: document.KeyUpdatedBy, Extractor: extract.Text(UpdatedBy)},
		},
	}
}
