package scraper

import (
	"context"
	"testing"
	"time"

	"openbanking/internal/document"
	"openbanking/internal/dom"

	"github.com/stretchr/testify/assert"
)

type stub struct{ name string }

func (s stub) Name() string { return s.name }

func (s stub) Scrape(context.Context, dom.Page, Options) ([]document.Document, error) {
	return nil, nil
}

// TestRegistry verifies lookups ignore case
func TestRegistry(t *testing.T) {
	Register(stub{name: "Wiki.Test"})

	s, ok := Get("wiki.test")
	assert.True(t, ok)
	assert.Equal(t, "Wiki.Test", s.Name())

	_, ok = Get("missing")
	assert.False(t, ok)
	assert.Contains(t, Names(), "wiki.test")
}

// TestPick verifies zero keeps the default and negative disables
func TestPick(t *testing.T) {
	assert.Equal(t, 4*time.Second, Pick(0, 4*time.Second))
	assert.Equal(t, time.Second, Pick(time.Second, 4*time.Second))
	assert.Equal(t, time.Duration(0), Pick(-1, 4*time.Second))
}
