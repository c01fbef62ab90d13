// Package clipper imports recipes from web pages by reducing the page to
// plain lines and running them through the free-text parser.
package clipper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"fooddb/internal/freetext"
)

var (
	ErrInvalidURL       = errors.New("url must be absolute http or https")
	ErrUnexpectedStatus = errors.New("unexpected status fetching page")
	ErrNoRecipeContent  = errors.New("page has no readable content")
)

const (
	noise  = "script, style, noscript, nav, header, footer, aside, form, iframe, ads, .ads, #ads"
	blocks = "h1, h2, h3, h4, p, li"

	defaultTimeout = 15 * time.Second
	maxPageBytes   = 5 << 20
	userAgent      = "fooddb-clipper/1.0"
)

// Clipper fetches recipe pages.
type Clipper struct {
	client *resty.Client
}

func New(timeout time.Duration) *Clipper {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml")
	return &Clipper{client: client}
}

// Clip fetches rawURL and parses the page text into a draft.
func (c *Clipper) Clip(ctx context.Context, rawURL string) (freetext.Draft, error) {
	text, err := c.FetchText(ctx, rawURL)
	if err != nil {
		return freetext.Draft{}, err
	}
	return freetext.Parse(text), nil
}

// FetchText downloads the page and returns one line per heading, paragraph
// and list item, with a blank line before every heading.
func (c *Clipper) FetchText(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}

	resp, err := c.client.R().SetContext(ctx).Get(u.String())
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}

	body := resp.Body()
	if len(body) > maxPageBytes {
		body = body[:maxPageBytes]
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	text := Extract(doc)
	if text == "" {
		return "", ErrNoRecipeContent
	}
	return text, nil
}

// Extract flattens a parsed document into parser input.
func Extract(doc *goquery.Document) string {
	doc.Find(noise).Remove()

	var lines []string
	last := ""
	doc.Find(blocks).Each(func(_ int, s *goquery.Selection) {
		// list items wrapping paragraphs are emitted once, via the paragraph
		if goquery.NodeName(s) == "li" && s.Find("p").Length() > 0 {
			return
		}
		line := strings.Join(strings.Fields(s.Text()), " ")
		if line == "" || line == last {
			return
		}
		if isHeading(goquery.NodeName(s)) && len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, line)
		last = line
	})
	return strings.Join(lines, "\n")
}

func isHeading(name string) bool {
	switch name {
	case "h1", "h2", "h3", "h4":
		return true
	}
	return false
}
