package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"openbanking/internal/dom"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

const idleWindow = 500 * time.Millisecond

// Page is a live tab implementing dom.Page.
type Page struct {
	page        *rod.Page
	loadTimeout time.Duration
}

var _ dom.Page = (*Page)(nil)

// timed bounds page calls by ctx and the load timeout. The returned func
// releases the timeout.
func (p *Page) timed(ctx context.Context) (*rod.Page, func()) {
	page := p.page.Context(ctx)
	if p.loadTimeout <= 0 {
		return page, func() {}
	}
	page = page.Timeout(p.loadTimeout)
	return page, func() { page.CancelTimeout() }
}

// Navigate loads url and waits for the network to go quiet.
func (p *Page) Navigate(ctx context.Context, url string) error {
	page, cancel := p.timed(ctx)
	defer cancel()
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for %s to load: %w", url, err)
	}

	wait := page.WaitRequestIdle(
		idleWindow, nil, nil,
		[]proto.NetworkResourceType{proto.NetworkResourceTypeImage, proto.NetworkResourceTypeMedia},
	)
	wait()
	return ctx.Err()
}

// ScrollToEnd scrolls the window to the bottom of the document.
func (p *Page) ScrollToEnd(ctx context.Context) error {
	page, cancel := p.timed(ctx)
	defer cancel()
	_, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

func (p *Page) Elements(ctx context.Context, sel dom.Selector) ([]dom.Element, error) {
	page, cancel := p.timed(ctx)
	defer cancel()
	els, err := page.ElementsX(sel.String())
	if err != nil {
		return nil, err
	}
	// Detach from the timeout released on return.
	for i, el := range els {
		els[i] = el.Context(ctx)
	}
	return wrapAll(els), nil
}

// Element returns the first match without waiting for it to appear.
func (p *Page) Element(ctx context.Context, sel dom.Selector) (dom.Element, error) {
	el, err := p.page.Context(ctx).Sleeper(rod.NotFoundSleeper).ElementX(sel.String())
	if err != nil {
		return nil, notFound(sel, err)
	}
	return &Element{el: el}, nil
}

func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Close closes the tab.
func (p *Page) Close() error {
	return p.page.Close()
}

// Element is a live node implementing dom.Element.
type Element struct {
	el *rod.Element
}

func (e *Element) Text() (string, error) {
	return e.el.Text()
}

func (e *Element) Attribute(name string) (string, bool, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

// HTML returns the inner HTML of the element.
func (e *Element) HTML() (string, error) {
	v, err := e.el.Eval(`() => this.innerHTML`)
	if err != nil {
		return "", err
	}
	return v.Value.Str(), nil
}

func (e *Element) Element(sel dom.Selector) (dom.Element, error) {
	el, err := e.el.Sleeper(rod.NotFoundSleeper).ElementX(sel.String())
	if err != nil {
		return nil, notFound(sel, err)
	}
	return &Element{el: el}, nil
}

func wrapAll(els rod.Elements) []dom.Element {
	out := make([]dom.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &Element{el: el})
	}
	return out
}

// notFound maps rod's lookup miss onto dom.ErrNotFound.
func notFound(sel dom.Selector, err error) error {
	var nf *rod.ElementNotFoundError
	if errors.As(err, &nf) {
		return dom.NotFound(sel)
	}
	return err
}
