package document

import (
	"fmt"
	"time"
)

// Other-data keys filled by the optional extractors.
const (
	KeyOwner     = "owner"
	KeyUpdatedBy = "updated_by"
)

// Document is one harvested page as the platform consumes it.
type Document struct {
	Title               string            `json:"title"`
	PubDate             time.Time         `json:"pub_date"`
	Text                string            `json:"text"`
	WebLink             string            `json:"web_link"`
	OtherData           map[string]string `json:"other_data"`
	ProcessingTimestamp time.Time         `json:"processing_timestamp"`

	// HTML is the body markup, kept for markdown and html renderings.
	HTML string `json:"-"`
}

// New starts a record for webLink dispatched at now.
func New(webLink string, now time.Time) Document {
	return Document{
		WebLink:             webLink,
		OtherData:           map[string]string{},
		ProcessingTimestamp: now,
	}
}

// Summary is the one-line description logged for every kept document.
func (d Document) Summary() string {
	return fmt.Sprintf("Find document | name: %s | link to web: %s | publication date: %s",
		d.Title, d.WebLink, d.PubDate.Format(time.RFC3339))
}
