// Package snapshot replays saved HTML pages behind the dom.Page interface so
// a harvest can run without a browser.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"openbanking/internal/dom"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Manifest maps page URLs to files relative to the manifest directory.
type Manifest struct {
	Pages []struct {
		URL  string `yaml:"url"`
		File string `yaml:"file"`
	} `yaml:"pages"`
}

// Page is a dom.Page over a fixed set of HTML documents.
type Page struct {
	pages   map[string]string
	current string
	doc     *html.Node
}

// New builds a Page from URL to HTML source.
func New(pages map[string]string) *Page {
	return &Page{pages: pages}
}

// Load reads dir/manifest.yaml and every file it lists.
func Load(dir string) (*Page, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	pages := make(map[string]string, len(m.Pages))
	for _, p := range m.Pages {
		if p.URL == "" || p.File == "" {
			return nil, fmt.Errorf("manifest entry needs url and file: %+v", p)
		}
		body, err := os.ReadFile(filepath.Join(dir, p.File))
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot %s: %w", p.File, err)
		}
		pages[p.URL] = string(body)
	}
	return New(pages), nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, ok := p.pages[url]
	if !ok {
		return fmt.Errorf("no snapshot for %s", url)
	}
	doc, err := htmlquery.Parse(strings.NewReader(src))
	if err != nil {
		return fmt.Errorf("failed to parse snapshot for %s: %w", url, err)
	}
	p.current = url
	p.doc = doc
	return nil
}

// ScrollToEnd does nothing: a snapshot never grows.
func (p *Page) ScrollToEnd(ctx context.Context) error {
	if p.doc == nil {
		return fmt.Errorf("no page loaded")
	}
	return ctx.Err()
}

func (p *Page) Elements(ctx context.Context, sel dom.Selector) ([]dom.Element, error) {
	if p.doc == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	return queryAll(p.doc, sel)
}

func (p *Page) Element(ctx context.Context, sel dom.Selector) (dom.Element, error) {
	if p.doc == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	return query(p.doc, sel)
}

func (p *Page) URL() string {
	return p.current
}

type element struct {
	node *html.Node
}

func (e element) Text() (string, error) {
	return htmlquery.InnerText(e.node), nil
}

func (e element) Attribute(name string) (string, bool, error) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true, nil
		}
	}
	return "", false, nil
}

func (e element) HTML() (string, error) {
	return htmlquery.OutputHTML(e.node, false), nil
}

func (e element) Element(sel dom.Selector) (dom.Element, error) {
	return query(e.node, sel)
}

func query(top *html.Node, sel dom.Selector) (dom.Element, error) {
	n, err := htmlquery.Query(top, string(sel))
	if err != nil {
		return nil, fmt.Errorf("invalid selector %s: %w", sel, err)
	}
	if n == nil {
		return nil, dom.NotFound(sel)
	}
	return element{node: n}, nil
}

func queryAll(top *html.Node, sel dom.Selector) ([]dom.Element, error) {
	nodes, err := htmlquery.QueryAll(top, string(sel))
	if err != nil {
		return nil, fmt.Errorf("invalid selector %s: %w", sel, err)
	}
	out := make([]dom.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, element{node: n})
	}
	return out, nil
}
