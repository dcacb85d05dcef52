// Package harvest runs one discovery-then-extraction pass over a listing.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"openbanking/internal/collector"
	"openbanking/internal/document"
	"openbanking/internal/dom"
	"openbanking/internal/extract"
	"openbanking/internal/logging"
	"openbanking/internal/wait"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Harvester drives a Collector and a PageExtractor sharing one page.
type Harvester struct {
	Page          dom.Page
	Listing       string
	ListingSettle time.Duration
	Collector     *collector.Collector
	Extractor     *extract.PageExtractor
	Log           *logrus.Entry
}

// Run harvests every document linked from the listing. Pages whose required
// fields fail are logged and skipped. Any other failure ends the run and is
// returned with the documents kept so far.
func (h *Harvester) Run(ctx context.Context) ([]document.Document, error) {
	log := logging.Or(h.Log).WithField("run_id", uuid.NewString())
	docs := []document.Document{}

	log.WithField("url", h.Listing).Debug("Parser enter to listing")
	if err := h.Page.Navigate(ctx, h.Listing); err != nil {
		return docs, fmt.Errorf("failed to open listing %s: %w", h.Listing, err)
	}
	if err := wait.Pause(ctx, h.ListingSettle); err != nil {
		return docs, err
	}

	c := *h.Collector
	c.Log = log
	res := c.Collect(ctx)
	switch res.Stop.Reason {
	case collector.StopFault:
		if ctx.Err() != nil {
			return docs, ctx.Err()
		}
		log.WithError(res.Stop.Err).WithField("links", len(res.Links)).Warn("Link collection ended early")
	default:
		log.WithFields(logrus.Fields{"links": len(res.Links), "cycles": res.Cycles}).Info("Link collection done")
	}

	x := *h.Extractor
	x.Log = log
	for _, link := range res.Links {
		doc, err := x.Extract(ctx, link)
		if err != nil {
			var fieldErr *extract.FieldError
			if errors.As(err, &fieldErr) {
				log.WithFields(logrus.Fields{"url": fieldErr.URL, "field": fieldErr.Field}).Error(fieldErr.Err)
				continue
			}
			return docs, err
		}
		docs = append(docs, doc)
		log.Info(doc.Summary())
	}

	return docs, nil
}
