package harvest

import (
	"context"
	"testing"
	"time"

	"openbanking/internal/collector"
	"openbanking/internal/dates"
	"openbanking/internal/dom"
	"openbanking/internal/extract"
	"openbanking/internal/snapshot"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingURL = "https://wiki.test/list"

const listing = `<ul id="cards">
<li><a href="/pages/1">One</a></li>
<li><a href="/pages/2">Two</a></li>
<li><a href="/pages/3">Three</a></li>
</ul>`

func page(title, date, body string) string {
	out := ""
	if title != "" {
		out += `<h1 id="title">` + title + `</h1>`
	}
	if date != "" {
		out += `<span id="date">` + date + `</span>`
	}
	return out + `<div id="main">` + body + `</div>`
}

func newHarvester(pages map[string]string, log *logrus.Entry) *Harvester {
	p := snapshot.New(pages)
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	parse := func(s string) (time.Time, error) { return dates.Parse(s, now) }

	return &Harvester{
		Page:    p,
		Listing: listingURL,
		Collector: &collector.Collector{
			Page:   p,
			Blocks: dom.XPath(`//ul[@id="cards"]/li`),
			Link:   dom.XPath(`.//a`),
		},
		Extractor: &extract.PageExtractor{
			Page: p,
			Fields: extract.Fields{
				Title:   extract.Text(dom.ByID("title")),
				PubDate: extract.FirstOf("date", extract.Date(dom.ByID("date"), parse)),
				Text:    extract.Text(dom.ByID("main")),
			},
			Now: func() time.Time { return now },
		},
		Log: log,
	}
}

// TestRun_SkipsBrokenPages verifies a failing page is logged and the run
// carries on with the next link
func TestRun_SkipsBrokenPages(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := newHarvester(map[string]string{
		listingURL:                  listing,
		"https://wiki.test/pages/1": page("One", "Jan 5, 2023", "first"),
		"https://wiki.test/pages/2": page("", "Jan 6, 2023", "second"),
		"https://wiki.test/pages/3": page("Three", "Jan 7, 2023", "third"),
	}, logrus.NewEntry(logger))

	docs, err := h.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "One", docs[0].Title)
	assert.Equal(t, "Three", docs[1].Title)

	var errs []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			errs = append(errs, e)
		}
	}
	require.Len(t, errs, 1)
	assert.Equal(t, "https://wiki.test/pages/2", errs[0].Data["url"])
	assert.Equal(t, "title", errs[0].Data["field"])
	assert.NotEmpty(t, errs[0].Data["run_id"])
}

// TestRun_DateNotFoundLogged verifies a page without any date is dropped and
// the logged error names the page
func TestRun_DateNotFoundLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := newHarvester(map[string]string{
		listingURL:                  listing,
		"https://wiki.test/pages/1": page("One", "", "first"),
		"https://wiki.test/pages/2": page("Two", "Jan 6, 2023", "second"),
		"https://wiki.test/pages/3": page("Three", "Jan 7, 2023", "third"),
	}, logrus.NewEntry(logger))

	docs, err := h.Run(context.Background())

	require.NoError(t, err)
	assert.Len(t, docs, 2)

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			found = true
			assert.Contains(t, e.Message, "https://wiki.test/pages/1")
		}
	}
	assert.True(t, found, "date failure should be logged")
}

// TestRun_OutputNeverExceedsLinks verifies every kept document came from a
// collected link
func TestRun_OutputNeverExceedsLinks(t *testing.T) {
	h := newHarvester(map[string]string{
		listingURL:                  listing,
		"https://wiki.test/pages/1": page("One", "Jan 5, 2023", "first"),
		"https://wiki.test/pages/2": page("Two", "Jan 6, 2023", "second"),
		"https://wiki.test/pages/3": page("Three", "Jan 7, 2023", "third"),
	}, nil)

	docs, err := h.Run(context.Background())

	require.NoError(t, err)
	assert.LessOrEqual(t, len(docs), 3)
	assert.Equal(t, "https://wiki.test/pages/1", docs[0].WebLink)
	assert.Equal(t, "https://wiki.test/pages/3", docs[2].WebLink)
}

// TestRun_Repeatable verifies two runs over an unchanged listing agree and
// do not share results
func TestRun_Repeatable(t *testing.T) {
	h := newHarvester(map[string]string{
		listingURL:                  listing,
		"https://wiki.test/pages/1": page("One", "Jan 5, 2023", "first"),
		"https://wiki.test/pages/2": page("Two", "Jan 6, 2023", "second"),
		"https://wiki.test/pages/3": page("Three", "Jan 7, 2023", "third"),
	}, nil)

	first, err := h.Run(context.Background())
	require.NoError(t, err)
	second, err := h.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].WebLink, second[i].WebLink)
	}
	first[0].OtherData["owner"] = "changed"
	assert.Empty(t, second[0].OtherData)
}

// TestRun_NavigationAborts verifies an unreachable page ends the run with the
// documents gathered before it
func TestRun_NavigationAborts(t *testing.T) {
	h := newHarvester(map[string]string{
		listingURL:                  listing,
		"https://wiki.test/pages/1": page("One", "Jan 5, 2023", "first"),
		"https://wiki.test/pages/3": page("Three", "Jan 7, 2023", "third"),
	}, nil)

	docs, err := h.Run(context.Background())

	var navErr *extract.NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, "https://wiki.test/pages/2", navErr.URL)
	require.Len(t, docs, 1)
	assert.Equal(t, "One", docs[0].Title)
}

// TestRun_ListingUnreachable verifies a missing listing fails the run
func TestRun_ListingUnreachable(t *testing.T) {
	h := newHarvester(map[string]string{}, nil)

	docs, err := h.Run(context.Background())

	assert.ErrorContains(t, err, listingURL)
	assert.Empty(t, docs)
}
