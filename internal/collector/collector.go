// Package collector enumerates the pages linked from an infinite-scroll
// listing.
package collector

import (
	"context"
	"fmt"
	"time"

	"openbanking/internal/dom"
	"openbanking/internal/logging"
	"openbanking/internal/wait"

	"github.com/sirupsen/logrus"
)

// StopReason tells why collection ended.
type StopReason int

const (
	// StopStable means a scroll cycle produced no new blocks.
	StopStable StopReason = iota
	// StopFault means scrolling, counting or link lookup failed.
	StopFault
)

func (r StopReason) String() string {
	switch r {
	case StopStable:
		return "stable"
	case StopFault:
		return "fault"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// Stop is the outcome of one collection.
type Stop struct {
	Reason StopReason
	Err    error
}

// Result holds the links gathered, in block order.
type Result struct {
	Links  []string
	Stop   Stop
	Cycles int
}

// Collector scrolls a loaded listing until its block count stops growing,
// then takes one link per block.
type Collector struct {
	Page        dom.Page
	Blocks      dom.Selector
	Link        dom.Selector // relative to a block
	ScrollPause time.Duration
	Poll        wait.Policy
	Log         *logrus.Entry
}

// Collect runs on the page as currently loaded.
func (c *Collector) Collect(ctx context.Context) Result {
	log := logging.Or(c.Log)
	log.Debug("Load contents start")

	var res Result
	last := 0
	for {
		res.Cycles++
		count, err := c.cycle(ctx, last)
		if err != nil {
			res.Stop = Stop{Reason: StopFault, Err: err}
			return res
		}
		if count > last {
			last = count
			log.WithField("blocks", count).Debug("Continue scroll")
			continue
		}
		break
	}

	blocks, err := c.Page.Elements(ctx, c.Blocks)
	if err != nil {
		res.Stop = Stop{Reason: StopFault, Err: fmt.Errorf("failed to query blocks: %w", err)}
		return res
	}
	for i, block := range blocks {
		link, err := c.link(block)
		if err != nil {
			res.Stop = Stop{Reason: StopFault, Err: fmt.Errorf("block %d: %w", i, err)}
			return res
		}
		log.WithField("url", link).Debug("Found link")
		res.Links = append(res.Links, link)
	}

	res.Stop = Stop{Reason: StopStable}
	log.WithField("links", len(res.Links)).Debug("Load contents done")
	return res
}

// cycle scrolls twice and polls until the block count exceeds last or the
// poll budget is spent. It returns the final count observed.
func (c *Collector) cycle(ctx context.Context, last int) (int, error) {
	if err := c.Page.ScrollToEnd(ctx); err != nil {
		return 0, fmt.Errorf("failed to scroll: %w", err)
	}
	if err := wait.Pause(ctx, c.ScrollPause); err != nil {
		return 0, err
	}
	if err := c.Page.ScrollToEnd(ctx); err != nil {
		return 0, fmt.Errorf("failed to scroll: %w", err)
	}

	count := 0
	_, err := wait.Until(ctx, c.Poll.Sleeper(), func(ctx context.Context) (bool, error) {
		blocks, err := c.Page.Elements(ctx, c.Blocks)
		if err != nil {
			return false, fmt.Errorf("failed to query blocks: %w", err)
		}
		count = len(blocks)
		return count > last, nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (c *Collector) link(block dom.Element) (string, error) {
	a, err := block.Element(c.Link)
	if err != nil {
		return "", err
	}
	href, ok, err := a.Attribute("href")
	if err != nil {
		return "", fmt.Errorf("failed to read href: %w", err)
	}
	if !ok || href == "" {
		return "", fmt.Errorf("anchor has no href")
	}
	return dom.ResolveURL(c.Page.URL(), href), nil
}
