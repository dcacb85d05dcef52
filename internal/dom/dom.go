package dom

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// ErrNotFound is returned when a selector matches nothing.
var ErrNotFound = errors.New("element not found")

// Selector is an XPath expression.
type Selector string

// XPath wraps a raw XPath expression.
func XPath(expr string) Selector {
	return Selector(expr)
}

// ByID matches the element whose id attribute equals id.
func ByID(id string) Selector {
	return Selector(fmt.Sprintf(`//*[@id=%q]`, id))
}

func (s Selector) String() string {
	return string(s)
}

// Page is a loaded document the scrapers drive. Implementations must not
// wait for missing elements: Element returns ErrNotFound right away and
// Elements returns an empty slice.
type Page interface {
	Navigate(ctx context.Context, url string) error
	ScrollToEnd(ctx context.Context) error
	Elements(ctx context.Context, sel Selector) ([]Element, error)
	Element(ctx context.Context, sel Selector) (Element, error)
	URL() string
}

// Element is a node inside a Page.
type Element interface {
	// Text returns the rendered text of the element.
	Text() (string, error)
	Attribute(name string) (string, bool, error)
	// HTML returns the inner HTML of the element.
	HTML() (string, error)
	Element(sel Selector) (Element, error)
}

// NotFound builds an ErrNotFound error naming the selector.
func NotFound(sel Selector) error {
	return fmt.Errorf("%w: %s", ErrNotFound, sel)
}

// ResolveURL resolves ref against base. ref is returned unchanged when
// either side fails to parse.
func ResolveURL(base, ref string) string {
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil || base == "" {
		return ref
	}
	return b.ResolveReference(r).String()
}
