// Package ygoprodeck queries the YGOPRODeck card database for canonical and
// localized card names.
package ygoprodeck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ydkpoints/internal/services"
)

const (
	defaultBaseURL     = "https://db.ygoprodeck.com/api/v7"
	defaultHTTPTimeout = 5 * time.Second
	maxErrorBody       = 4 << 10
)

// Config describes the client configuration.
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client wraps the cardinfo endpoint.
type Client struct {
	baseURL   *url.URL
	userAgent string
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
		return nil, fmt.Errorf("ygoprodeck: parse base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: strings.TrimSpace(cfg.UserAgent),
		http:      client,
	}, nil
}

// Query selects a card either by passcode or by exact English name. Language
// is empty for English.
type Query struct {
	Passcode string
	Name     string
	Language string
}

// Card is the subset of card info the calculator needs.
type Card struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type cardInfoResponse struct {
	Data  []Card `json:"data"`
	Error string `json:"error"`
}

// Lookup fetches the first card matching q. A card the database does not know
// returns an error carrying services.ErrNotFound; anything else is transient.
func (c *Client) Lookup(ctx context.Context, q Query) (Card, error) {
	if c == nil {
		return Card{}, errors.New("ygoprodeck: client is nil")
	}
	params := url.Values{}
	switch {
	case strings.TrimSpace(q.Passcode) != "":
		params.Set("id", strings.TrimSpace(q.Passcode))
	case strings.TrimSpace(q.Name) != "":
		params.Set("name", strings.TrimSpace(q.Name))
	default:
		return Card{}, services.Wrap(services.ErrValidation, "ygoprodeck", "lookup", "passcode or name required", nil)
	}
	if lang := strings.TrimSpace(q.Language); lang != "" && lang != "en" {
		params.Set("language", lang)
	}

	endpoint := c.baseURL.JoinPath("cardinfo.php")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Card{}, fmt.Errorf("ygoprodeck: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Card{}, services.Wrap(services.ErrTransient, "ygoprodeck", "lookup", describe(q), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		var payload cardInfoResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload)
		msg := describe(q)
		if payload.Error != "" {
			msg += ": " + payload.Error
		}
		return Card{}, services.Wrap(services.ErrNotFound, "ygoprodeck", "lookup", msg, nil)
	case resp.StatusCode != http.StatusOK:
		return Card{}, services.Wrap(services.ErrTransient, "ygoprodeck", "lookup", fmt.Sprintf("%s: status %s", describe(q), resp.Status), nil)
	}

	var payload cardInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Card{}, services.Wrap(services.ErrTransient, "ygoprodeck", "decode", describe(q), err)
	}
	if len(payload.Data) == 0 || strings.TrimSpace(payload.Data[0].Name) == "" {
		return Card{}, services.Wrap(services.ErrNotFound, "ygoprodeck", "lookup", describe(q)+": empty result", nil)
	}
	card := payload.Data[0]
	card.Name = strings.TrimSpace(card.Name)
	return card, nil
}

// NameByPasscode returns the card name for passcode in language.
func (c *Client) NameByPasscode(ctx context.Context, passcode, language string) (string, error) {
	card, err := c.Lookup(ctx, Query{Passcode: passcode, Language: language})
	if err != nil {
		return "", err
	}
	return card.Name, nil
}

// NameByCanonical returns the card name for an English name in language.
func (c *Client) NameByCanonical(ctx context.Context, canonical, language string) (string, error) {
	card, err := c.Lookup(ctx, Query{Name: canonical, Language: language})
	if err != nil {
		return "", err
	}
	return card.Name, nil
}

func describe(q Query) string {
	target := "id " + q.Passcode
	if q.Passcode == "" {
		target = fmt.Sprintf("name %q", q.Name)
	}
	if q.Language != "" {
		target += " (" + q.Language + ")"
	}
	return target
}
