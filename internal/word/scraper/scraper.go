// Package scraper fetches dictionary metadata for a Chinese character
// from a public HTML dictionary page, implementing word.Scraper.
//
// Grounded on pkg/connector/linkpreview.go's goquery extraction helpers
// (beeper-ai-bridge), generalized from og:title/og:description extraction
// to dictionary-entry extraction (meaning text, illustrative image URL).
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hanzidojo/engine/internal/word"
)

// Dictionary scrapes a configurable dictionary site for a single
// character's meaning and illustrative image.
type Dictionary struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a Dictionary scraper. baseURL is a page-template URL
// containing one "%s" verb for the URL-escaped character.
func New(baseURL string, timeout time.Duration) *Dictionary {
	return &Dictionary{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

// Scrape implements word.Scraper.
func (d *Dictionary) Scrape(ctx context.Context, char string) (word.Metadata, error) {
	target := fmt.Sprintf(d.baseURL, url.QueryEscape(char))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return word.Metadata{}, fmt.Errorf("scraper: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; hanzidojo-scraper/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return word.Metadata{}, fmt.Errorf("scraper: fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return word.Metadata{}, fmt.Errorf("scraper: HTTP %d for %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return word.Metadata{}, fmt.Errorf("scraper: read body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return word.Metadata{}, fmt.Errorf("scraper: parse HTML: %w", err)
	}

	return word.Metadata{
		Description:        extractDescription(doc),
		DictionaryImageURL: extractImage(doc, target),
	}, nil
}

// extractDescription pulls the character's meaning text out of the page,
// preferring a meta description and falling back to the first definition
// element most dictionary page templates carry.
func extractDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find("meta[name='description']").First().Attr("content"); ok && strings.TrimSpace(desc) != "" {
		return strings.TrimSpace(desc)
	}
	if def := doc.Find(".definition, .meaning").First().Text(); strings.TrimSpace(def) != "" {
		return strings.TrimSpace(def)
	}
	if p := doc.Find("p").First().Text(); strings.TrimSpace(p) != "" {
		return strings.TrimSpace(p)
	}
	return ""
}

// extractImage resolves the page's primary illustrative image (an
// og:image meta tag, or the first in-page <img>) to an absolute URL.
func extractImage(doc *goquery.Document, pageURL string) string {
	raw, ok := doc.Find("meta[property='og:image']").First().Attr("content")
	if !ok || strings.TrimSpace(raw) == "" {
		raw, ok = doc.Find("img").First().Attr("src")
		if !ok {
			return ""
		}
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return raw
	}
	rel, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return base.ResolveReference(rel).String()
}
