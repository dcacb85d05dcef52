package browser

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Config controls how Chromium is launched.
type Config struct {
	Headless        bool          `yaml:"headless"`
	ProxyURL        string        `yaml:"proxy"`
	Bin             string        `yaml:"bin"`
	NoSandbox       bool          `yaml:"no_sandbox"`
	UserAgent       string        `yaml:"user_agent"`
	Stealth         bool          `yaml:"stealth"`
	PageLoadTimeout time.Duration `yaml:"page_load_timeout"`
}

// Browser wraps a launched rod.Browser.
type Browser struct {
	cfg      Config
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// New launches a browser for cfg.
func New(cfg Config) (*Browser, error) {
	l := launcher.New().Headless(cfg.Headless)
	if cfg.ProxyURL != "" {
		l = l.Proxy(cfg.ProxyURL)
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.NoSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	return &Browser{cfg: cfg, browser: b, launcher: l}, nil
}

// ProxyURL returns the proxy the browser was launched with.
func (b *Browser) ProxyURL() string {
	return b.cfg.ProxyURL
}

// NewPage opens a blank tab ready for Navigate.
func (b *Browser) NewPage() (*Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if b.cfg.Stealth {
		page, err = stealth.Page(b.browser)
	} else {
		page, err = b.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if b.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.cfg.UserAgent}); err != nil {
			return nil, fmt.Errorf("failed to set user agent: %w", err)
		}
	}

	return &Page{page: page, loadTimeout: b.cfg.PageLoadTimeout}, nil
}

// Close closes the browser and kills the launched process.
func (b *Browser) Close() error {
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return err
		}
	}
	if b.launcher != nil {
		b.launcher.Kill()
	}
	return nil
}
