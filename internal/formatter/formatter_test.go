package formatter

import (
	"encoding/json"
	"testing"
	"time"

	"openbanking/internal/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContent() *document.Content {
	doc := document.New("https://wiki.test/pages/1", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	doc.Title = "Payments API"
	doc.PubDate = time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	doc.Text = "Body text"
	doc.OtherData[document.KeyOwner] = "Jane"
	return document.NewContent("openbanking", []document.Document{doc})
}

// TestFormat verifies every listed format renders the document
func TestFormat(t *testing.T) {
	for _, f := range Formats {
		t.Run(f, func(t *testing.T) {
			out, err := Format(sampleContent(), f)
			require.NoError(t, err)
			assert.Contains(t, out, "Payments API")
		})
	}
}

// TestFormat_JSON verifies the JSON output decodes back to the document
func TestFormat_JSON(t *testing.T) {
	out, err := Format(sampleContent(), "json")
	require.NoError(t, err)

	var got struct {
		Source    string `json:"source"`
		Documents []struct {
			Title     string            `json:"title"`
			WebLink   string            `json:"web_link"`
			OtherData map[string]string `json:"other_data"`
		} `json:"documents"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "openbanking", got.Source)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, "https://wiki.test/pages/1", got.Documents[0].WebLink)
	assert.Equal(t, "Jane", got.Documents[0].OtherData["owner"])
}

// TestFormat_Unsupported verifies unknown formats are rejected
func TestFormat_Unsupported(t *testing.T) {
	_, err := Format(sampleContent(), "xml")
	assert.ErrorContains(t, err, "unsupported output format: xml")
}
