package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"openbanking/internal/dom"
	"openbanking/internal/logging"

	"github.com/sirupsen/logrus"
)

var (
	// ErrEmpty is returned when a matched element renders no text.
	ErrEmpty = errors.New("element is empty")
	// ErrDateNotFound matches every NotFoundError raised for a date field.
	ErrDateNotFound = errors.New("date not found")
)

// Extractor reads one field from the loaded page.
type Extractor[T any] interface {
	Extract(ctx context.Context, page dom.Page) (T, error)
}

// Func adapts a function to Extractor.
type Func[T any] func(ctx context.Context, page dom.Page) (T, error)

func (f Func[T]) Extract(ctx context.Context, page dom.Page) (T, error) {
	return f(ctx, page)
}

// Text reads the trimmed rendered text of the first element matching sel.
func Text(sel dom.Selector) Extractor[string] {
	return Func[string](func(ctx context.Context, page dom.Page) (string, error) {
		el, err := page.Element(ctx, sel)
		if err != nil {
			return "", err
		}
		text, err := el.Text()
		if err != nil {
			return "", fmt.Errorf("failed to read text of %s: %w", sel, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return "", fmt.Errorf("%w: %s", ErrEmpty, sel)
		}
		return text, nil
	})
}

// InnerHTML reads the inner HTML of the first element matching sel.
func InnerHTML(sel dom.Selector) Extractor[string] {
	return Func[string](func(ctx context.Context, page dom.Page) (string, error) {
		el, err := page.Element(ctx, sel)
		if err != nil {
			return "", err
		}
		h, err := el.HTML()
		if err != nil {
			return "", fmt.Errorf("failed to read html of %s: %w", sel, err)
		}
		return h, nil
	})
}

// Date parses the text of sel with parse.
func Date(sel dom.Selector, parse func(string) (time.Time, error)) Extractor[time.Time] {
	text := Text(sel)
	return Func[time.Time](func(ctx context.Context, page dom.Page) (time.Time, error) {
		s, err := text.Extract(ctx, page)
		if err != nil {
			return time.Time{}, err
		}
		t, err := parse(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date from %s: %w", sel, err)
		}
		return t, nil
	})
}

// NotFoundError reports a field none of whose sources resolved.
type NotFoundError struct {
	Field    string
	URL      string
	Attempts []error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found for document: %s", e.Field, e.URL)
}

// Is makes date fields match ErrDateNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrDateNotFound && e.Field == "date"
}

func (e *NotFoundError) Unwrap() []error {
	return e.Attempts
}

type logKey struct{}

// WithLog attaches the entry extractors log through.
func WithLog(ctx context.Context, log *logrus.Entry) context.Context {
	return context.WithValue(ctx, logKey{}, log)
}

func logFrom(ctx context.Context) *logrus.Entry {
	log, _ := ctx.Value(logKey{}).(*logrus.Entry)
	return logging.Or(log)
}

// FirstOf tries each source in order and returns the first value that
// resolves. Each failed attempt is logged at debug through the entry
// attached with WithLog.
func FirstOf[T any](field string, sources ...Extractor[T]) Extractor[T] {
	return Func[T](func(ctx context.Context, page dom.Page) (T, error) {
		var zero T
		log := logFrom(ctx)
		attempts := make([]error, 0, len(sources))
		for i, src := range sources {
			if err := ctx.Err(); err != nil {
				return zero, err
			}
			v, err := src.Extract(ctx, page)
			if err == nil {
				return v, nil
			}
			log.WithFields(logrus.Fields{"field": field, "attempt": i}).Debug(err)
			attempts = append(attempts, err)
		}
		return zero, &NotFoundError{Field: field, URL: page.URL(), Attempts: attempts}
	})
}
