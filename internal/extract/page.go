package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"openbanking/internal/document"
	"openbanking/internal/dom"
	"openbanking/internal/logging"
	"openbanking/internal/wait"

	"github.com/sirupsen/logrus"
)

// Optional is a field stored in Document.OtherData under Key when it
// resolves and skipped silently when it does not.
type Optional struct {
	Key       string
	Extractor Extractor[string]
}

// Fields are the extractors of one site. Body may be nil.
type Fields struct {
	Title    Extractor[string]
	PubDate  Extractor[time.Time]
	Text     Extractor[string]
	Body     Extractor[string]
	Optional []Optional
}

// FieldError is a required field that failed; the record is dropped.
type FieldError struct {
	Field string
	URL   string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.URL, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// NavigationError is a page that could not be opened.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("failed to open %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// PageExtractor builds one document per URL.
type PageExtractor struct {
	Page   dom.Page
	Fields Fields
	Ready  dom.Selector // element whose presence marks the page rendered
	Settle time.Duration
	Poll   wait.Policy
	Now    func() time.Time
	Log    *logrus.Entry
}

// Extract navigates to url and reads every field. A required field failure
// is a *FieldError; a navigation failure is a *NavigationError.
func (e *PageExtractor) Extract(ctx context.Context, url string) (document.Document, error) {
	log := logging.Or(e.Log).WithField("url", url)
	log.Debug("Start parse document")
	ctx = WithLog(ctx, log)

	doc := document.New(url, e.now())

	if err := e.Page.Navigate(ctx, url); err != nil {
		if ctx.Err() != nil {
			return doc, ctx.Err()
		}
		return doc, &NavigationError{URL: url, Err: err}
	}
	if err := wait.Pause(ctx, e.Settle); err != nil {
		return doc, err
	}
	if err := e.waitReady(ctx); err != nil {
		return doc, err
	}

	title, err := e.Fields.Title.Extract(ctx, e.Page)
	if err != nil {
		return doc, e.fieldError(ctx, "title", url, err)
	}
	doc.Title = title

	pubDate, err := e.Fields.PubDate.Extract(ctx, e.Page)
	if err != nil {
		return doc, e.fieldError(ctx, "pub_date", url, err)
	}
	doc.PubDate = pubDate

	for _, opt := range e.Fields.Optional {
		if v, err := opt.Extractor.Extract(ctx, e.Page); err == nil {
			doc.OtherData[opt.Key] = v
		}
	}

	text, err := e.Fields.Text.Extract(ctx, e.Page)
	if err != nil {
		return doc, e.fieldError(ctx, "text", url, err)
	}
	doc.Text = text

	if e.Fields.Body != nil {
		if body, err := e.Fields.Body.Extract(ctx, e.Page); err == nil {
			doc.HTML = body
		}
	}

	return doc, nil
}

// waitReady polls for the Ready element. Not becoming ready is not an
// error; the required fields decide whether the page is usable.
func (e *PageExtractor) waitReady(ctx context.Context) error {
	if e.Ready == "" {
		return nil
	}
	ready, err := wait.Until(ctx, e.Poll.Sleeper(), func(ctx context.Context) (bool, error) {
		_, err := e.Page.Element(ctx, e.Ready)
		if errors.Is(err, dom.ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		logging.Or(e.Log).WithError(err).Debug("Readiness check failed")
		return nil
	}
	if !ready {
		logging.Or(e.Log).WithField("selector", e.Ready.String()).Debug("Page not ready, extracting anyway")
	}
	return nil
}

// fieldError wraps err unless the context is done.
func (e *PageExtractor) fieldError(ctx context.Context, field, url string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &FieldError{Field: field, URL: url, Err: err}
}

func (e *PageExtractor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
