package document

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

// Content renders one run's documents in the output formats.
type Content struct {
	source string
	docs   []Document
}

// NewContent wraps the documents harvested from source.
func NewContent(source string, docs []Document) *Content {
	return &Content{source: source, docs: docs}
}

// Documents returns the wrapped documents.
func (c *Content) Documents() []Document {
	return c.docs
}

func (c *Content) ToText() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %d documents\n\n", c.source, len(c.docs)))
	for i, d := range c.docs {
		sb.WriteString(fmt.Sprintf("%d. %s\n   %s\n   published %s\n", i+1, d.Title, d.WebLink, d.PubDate.Format(time.DateOnly)))
		for _, k := range []string{KeyOwner, KeyUpdatedBy} {
			if v, ok := d.OtherData[k]; ok {
				sb.WriteString(fmt.Sprintf("   %s: %s\n", k, v))
			}
		}
		sb.WriteString("\n")
		sb.WriteString(d.Text)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

func (c *Content) ToMarkdown() (string, error) {
	converter := newConverter()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n%d documents\n\n", c.source, len(c.docs)))
	for _, d := range c.docs {
		sb.WriteString(fmt.Sprintf("## [%s](%s)\n\n", d.Title, d.WebLink))
		sb.WriteString(fmt.Sprintf("Published: %s\n\n", d.PubDate.Format(time.DateOnly)))

		if d.HTML == "" {
			sb.WriteString(d.Text + "\n\n")
			continue
		}
		markdown, err := converter.ConvertString(d.HTML)
		if err != nil {
			return "", fmt.Errorf("failed to convert %s to markdown: %w", d.WebLink, err)
		}
		sb.WriteString(strings.TrimSpace(markdown) + "\n\n")
	}
	return sb.String(), nil
}

func (c *Content) ToHTML() (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(c.source)))
	for _, d := range c.docs {
		sb.WriteString(fmt.Sprintf("<article>\n<h2><a href=%q>%s</a></h2>\n", d.WebLink, html.EscapeString(d.Title)))
		sb.WriteString(fmt.Sprintf("<time datetime=%q>%s</time>\n", d.PubDate.Format(time.RFC3339), d.PubDate.Format(time.DateOnly)))
		if d.HTML != "" {
			sb.WriteString(d.HTML)
		} else {
			sb.WriteString("<pre>" + html.EscapeString(d.Text) + "</pre>")
		}
		sb.WriteString("\n</article>\n")
	}
	return sb.String(), nil
}

func (c *Content) ToJSON() ([]byte, error) {
	type jsonOutput struct {
		Source    string     `json:"source"`
		Documents []Document `json:"documents"`
	}
	docs := c.docs
	if docs == nil {
		docs = []Document{}
	}
	return json.MarshalIndent(jsonOutput{Source: c.source, Documents: docs}, "", "  ")
}

func (c *Content) ToCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"title", "pub_date", "web_link", KeyOwner, KeyUpdatedBy, "text"})
	for _, d := range c.docs {
		_ = w.Write([]string{
			d.Title,
			d.PubDate.Format(time.RFC3339),
			d.WebLink,
			d.OtherData[KeyOwner],
			d.OtherData[KeyUpdatedBy],
			d.Text,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.String(), nil
}

// newConverter renders Confluence body markup. Status macros become bold
// labels; everything else follows the GitHub flavoured rules.
func newConverter() *md.Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	converter.Remove("style", "script")
	converter.AddRules(md.Rule{
		Filter: []string{"span"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			if !selec.HasClass("status-macro") {
				return nil
			}
			label := "**" + strings.TrimSpace(content) + "**"
			return &label
		},
	})
	return converter
}
