// Package wiki is the client for the encyclopedic REST feed: the
// per-day event/birth/death lists, page summaries and article HTML
// used for date corroboration and summary enrichment.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"almanac/internal/core"
	"almanac/internal/textutil"

	"github.com/PuerkitoBio/goquery"
)

// FeedType selects one of the per-day feed categories.
type FeedType string

const (
	FeedEvents FeedType = "events"
	FeedBirths FeedType = "births"
	FeedDeaths FeedType = "deaths"
)

// Category maps the feed type to the record category it produces.
func (f FeedType) Category() core.Category {
	switch f {
	case FeedBirths:
		return core.CategoryBirth
	case FeedDeaths:
		return core.CategoryDeath
	default:
		return core.CategoryEvent
	}
}

// Client talks to the encyclopedic REST API.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewClient creates a feed client. baseURL is the REST API root, e.g.
// "https://en.wikipedia.org/api/rest_v1".
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

// feedPage mirrors the feed's page object; only the fields the
// pipeline needs are declared.
type feedPage struct {
	Titles *struct {
		Normalized string `json:"normalized"`
		Display    string `json:"display"`
	} `json:"titles"`
	NormalizedTitle string `json:"normalizedtitle"`
	ContentURLs     *struct {
		Desktop *struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

type feedEntry struct {
	Year  *int       `json:"year"`
	Text  string     `json:"text"`
	Pages []feedPage `json:"pages"`
}

type feedResponse struct {
	Events []feedEntry `json:"events"`
	Births []feedEntry `json:"births"`
	Deaths []feedEntry `json:"deaths"`
}

// OnThisDay fetches one feed category for the given zero-padded month
// and day and converts the entries into RawRecords.
func (c *Client) OnThisDay(ctx context.Context, mm, dd string, feed FeedType) ([]core.RawRecord, error) {
	endpoint := fmt.Sprintf("%s/feed/onthisday/%s/%s/%s", c.baseURL, feed, mm, dd)
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s feed: %w", feed, err)
	}

	var parsed feedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%s feed: decode: %w", feed, err)
	}

	entries := parsed.Events
	switch feed {
	case FeedBirths:
		entries = parsed.Births
	case FeedDeaths:
		entries = parsed.Deaths
	}

	records := make([]core.RawRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, toRawRecord(feed.Category(), e))
	}
	return records, nil
}

func toRawRecord(category core.Category, e feedEntry) core.RawRecord {
	rec := core.RawRecord{
		Category: category,
		Year:     e.Year,
		Excerpt:  textutil.TrimSummary(e.Text, 560),
	}

	if len(e.Pages) > 0 {
		p := e.Pages[0]
		// Prefer the normalized plain-text title, then the legacy
		// field, then the display title, then the entry text.
		raw := ""
		if p.Titles != nil && p.Titles.Normalized != "" {
			raw = p.Titles.Normalized
		} else if p.NormalizedTitle != "" {
			raw = p.NormalizedTitle
		} else if p.Titles != nil {
			raw = p.Titles.Display
		}
		if raw == "" {
			raw = e.Text
		}
		rec.DisplayTitle = textutil.StripHTML(strings.TrimSpace(raw))
		if p.Titles != nil && p.Titles.Normalized != "" {
			rec.PageTitle = p.Titles.Normalized
		} else {
			rec.PageTitle = p.NormalizedTitle
		}
		if p.ContentURLs != nil && p.ContentURLs.Desktop != nil {
			rec.PageURL = p.ContentURLs.Desktop.Page
		}
	} else {
		rec.DisplayTitle = textutil.StripHTML(strings.TrimSpace(e.Text))
	}

	return rec
}

// PageSummary is the lead section of a page plus its entity ID.
type PageSummary struct {
	Extract      string `json:"extract"`
	WikibaseItem string `json:"wikibase_item"`
}

// SummaryByTitle fetches the page summary for a title. A missing page
// or empty extract returns an error so callers can fall back.
func (c *Client) SummaryByTitle(ctx context.Context, title string) (*PageSummary, error) {
	if title == "" {
		return nil, fmt.Errorf("summary: empty title")
	}
	endpoint := fmt.Sprintf("%s/page/summary/%s", c.baseURL, url.PathEscape(title))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("summary %q: %w", title, err)
	}

	var sum PageSummary
	if err := json.Unmarshal(body, &sum); err != nil {
		return nil, fmt.Errorf("summary %q: decode: %w", title, err)
	}
	return &sum, nil
}

// ArticleText fetches a page's rendered HTML and returns its text
// content for date scanning.
func (c *Client) ArticleText(ctx context.Context, title string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("article: empty title")
	}
	endpoint := fmt.Sprintf("%s/page/html/%s", c.baseURL, url.PathEscape(title))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return "", fmt.Errorf("article %q: %w", title, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("article %q: parse: %w", title, err)
	}
	return doc.Text(), nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/html")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
