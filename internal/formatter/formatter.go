package formatter

import (
	"fmt"

	"openbanking/internal/scraper"
)

// Formats lists the values Format accepts.
var Formats = []string{"text", "markdown", "html", "json", "csv"}

// Format renders content in one of Formats.
func Format(content scraper.Content, format string) (string, error) {
	switch format {
	case "html":
		return content.ToHTML()
	case "text":
		return content.ToText()
	case "markdown":
		return content.ToMarkdown()
	case "csv":
		return content.ToCSV()
	case "json":
		b, err := content.ToJSON()
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}
