// Package konami scrapes the official Yu-Gi-Oh! card database for localized
// card names, reverse content-id lookups and deck-builder pages.
package konami

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"ydkpoints/internal/services"
)

const (
	defaultBaseURL     = "https://www.db.yugioh-card.com"
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultHTTPTimeout = 10 * time.Second
	defaultLocale      = "ko"
	searchPath         = "yugiohdb/card_search.action"
	maxPageSize        = 4 << 20
)

// Config describes the client configuration.
type Config struct {
	BaseURL    string
	UserAgent  string
	Locale     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client scrapes card search and detail pages.
type Client struct {
	baseURL   *url.URL
	userAgent string
	locale    string
	http      *http.Client
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("konami: parse base url: %w", err)
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	locale := strings.TrimSpace(cfg.Locale)
	if locale == "" {
		locale = defaultLocale
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: baseURL, userAgent: userAgent, locale: locale, http: client}, nil
}

// Candidate is one row of a keyword search.
type Candidate struct {
	Name string
	Link string
}

// Search runs a keyword search and returns the candidate rows in page order.
func (c *Client) Search(ctx context.Context, keyword string) ([]Candidate, error) {
	endpoint := c.baseURL.JoinPath(searchPath)
	params := url.Values{}
	params.Set("ope", "1")
	params.Set("sess", "1")
	params.Set("rp", "10")
	params.Set("mode", "")
	params.Set("sort", "1")
	params.Set("keyword", keyword)
	endpoint.RawQuery = params.Encode()

	doc, err := c.fetchDocument(ctx, endpoint.String(), "search")
	if err != nil {
		return nil, err
	}
	return parseCandidates(doc), nil
}

// LocalizedName looks up the localized display name of a card given its
// canonical English name. An exact name match is preferred over the first
// search result.
func (c *Client) LocalizedName(ctx context.Context, canonical string) (string, error) {
	canonical = strings.TrimSpace(canonical)
	if canonical == "" {
		return "", services.Wrap(services.ErrValidation, "konami", "localize", "empty card name", nil)
	}
	candidates, err := c.Search(ctx, canonical)
	if err != nil {
		return "", err
	}
	selected, ok := selectCandidate(candidates, canonical)
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "konami", "localize", fmt.Sprintf("no search result for %q", canonical), nil)
	}

	detail, err := c.baseURL.Parse(selected.Link)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "konami", "localize", "bad detail link "+selected.Link, err)
	}
	query := detail.Query()
	query.Set("request_locale", c.locale)
	detail.RawQuery = query.Encode()

	doc, err := c.fetchDocument(ctx, detail.String(), "detail")
	if err != nil {
		return "", err
	}
	name := titleName(doc)
	if name == "" {
		return "", services.Wrap(services.ErrNotFound, "konami", "localize", fmt.Sprintf("detail page for %q has no title", canonical), nil)
	}
	return name, nil
}

// CanonicalName returns the English card name for a database content id.
func (c *Client) CanonicalName(ctx context.Context, cid string) (string, error) {
	cid = strings.TrimSpace(cid)
	if cid == "" {
		return "", services.Wrap(services.ErrValidation, "konami", "reverse", "empty content id", nil)
	}
	endpoint := c.baseURL.JoinPath(searchPath)
	params := url.Values{}
	params.Set("ope", "2")
	params.Set("cid", cid)
	params.Set("request_locale", "en")
	endpoint.RawQuery = params.Encode()

	doc, err := c.fetchDocument(ctx, endpoint.String(), "reverse")
	if err != nil {
		return "", err
	}
	name := titleName(doc)
	if name == "" {
		return "", services.Wrap(services.ErrNotFound, "konami", "reverse", "no card for cid "+cid, nil)
	}
	return name, nil
}

// FetchDeckPage downloads a deck-builder page and returns its raw HTML.
func (c *Client) FetchDeckPage(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", services.Wrap(services.ErrValidation, "konami", "deck page", fmt.Sprintf("unsupported deck url %q", rawURL), err)
	}
	body, err := c.get(ctx, parsed.String(), "deck page")
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(io.LimitReader(body, maxPageSize))
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "konami", "deck page", "read body", err)
	}
	return string(data), nil
}

func (c *Client) fetchDocument(ctx context.Context, target, operation string) (*goquery.Document, error) {
	body, err := c.get(ctx, target, operation)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxPageSize))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "konami", operation, "parse html", err)
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, target, operation string) (io.ReadCloser, error) {
	if c == nil {
		return nil, errors.New("konami: client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("konami: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "konami", operation, target, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, services.Wrap(services.ErrTransient, "konami", operation, fmt.Sprintf("%s: status %s", target, resp.Status), nil)
	}
	return resp.Body, nil
}

// parseCandidates pairs every input.cnm with the next input.link_value in
// document order.
func parseCandidates(doc *goquery.Document) []Candidate {
	var (
		out     []Candidate
		pending string
		open    bool
	)
	doc.Find("input.cnm, input.link_value").Each(func(_ int, s *goquery.Selection) {
		value, _ := s.Attr("value")
		if s.HasClass("cnm") {
			pending = strings.TrimSpace(value)
			open = true
			return
		}
		if open && strings.TrimSpace(value) != "" {
			out = append(out, Candidate{Name: pending, Link: strings.TrimSpace(value)})
			open = false
		}
	})
	return out
}

func selectCandidate(candidates []Candidate, name string) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	want := normalize(name)
	for _, candidate := range candidates {
		if normalize(candidate.Name) == want {
			return candidate, true
		}
	}
	return candidates[0], true
}

func normalize(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}

func titleName(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return ""
	}
	name, _, _ := strings.Cut(title, "|")
	return strings.TrimSpace(name)
}
