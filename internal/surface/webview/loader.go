package webview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/embedview/playerbridge/internal/surface"
	"go.uber.org/zap"
)

// ErrNavigationBlocked is returned when the navigation policy prevents a
// destination.
var ErrNavigationBlocked = errors.New("navigation blocked by policy")

// Navigate loads the embed page at target: policy check, fetch behind the
// circuit breaker, sanitize for the rendered document, and execute the
// page's inline scripts in the peer context.
func (r *Runtime) Navigate(ctx context.Context, target string) error {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return surface.ErrClosed
	}

	if r.opts.Policy != nil && !r.opts.Policy(target) {
		return fmt.Errorf("%w: %s", ErrNavigationBlocked, target)
	}

	body, err := r.fetch(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to load embed page: %w", err)
	}

	page, err := r.processHTML(body, target)
	if err != nil {
		return fmt.Errorf("failed to process embed page: %w", err)
	}

	r.docMu.Lock()
	r.doc = surface.Document{URL: target, Title: page.title, HTML: page.html}
	r.docMu.Unlock()

	for i, script := range page.scripts {
		if err := r.InjectScript(script); err != nil {
			// A broken page script must not abort the load; the bridge
			// observes the peer through the channels either way.
			r.log.Warn("embed page script failed",
				zap.String("url", target),
				zap.Int("script_index", i),
				zap.Error(err))
		}
	}

	r.log.Info("embed page loaded",
		zap.String("url", target),
		zap.String("title", page.title),
		zap.Int("scripts", len(page.scripts)))
	return nil
}

// fetch retrieves the raw embed page through the circuit breaker.
func (r *Runtime) fetch(ctx context.Context, target string) (string, error) {
	var body string
	err := r.breaker.Execute(func() error {
		resp, err := r.client.R().SetContext(ctx).Get(target)
		if err != nil {
			return err
		}
		if code := resp.StatusCode(); code < 200 || code >= 400 {
			return fmt.Errorf("HTTP %d from %s", code, target)
		}
		body = resp.String()
		if body == "" {
			return fmt.Errorf("empty response body from %s", target)
		}
		return nil
	})
	return body, err
}

type embedPage struct {
	title   string
	html    string
	scripts []string
}

// processHTML extracts the page title and inline scripts, and sanitizes
// the markup kept as the rendered document. External script references are
// not followed; the player bundle ships inline on the embed page.
func (r *Runtime) processHTML(html, pageURL string) (*embedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = pageURL
	}

	var scripts []string
	doc.Find("script").Each(func(i int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			scripts = append(scripts, text)
		}
	})

	return &embedPage{
		title:   title,
		html:    r.sanitizer.Sanitize(html),
		scripts: scripts,
	}, nil
}
