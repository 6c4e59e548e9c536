package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appLog "github.com/kitschmensch/sundaydinner/internal/log"
)

// Table is the raw grid returned by the values API: row 0 is the header,
// every further row is data. Rows may be shorter than the header.
type Table [][]string

// Client fetches ranges from one spreadsheet via the Google Sheets values
// API using an API key. The key grants read access to public sheets only,
// which is all this pipeline needs.
type Client struct {
	http          *http.Client
	baseURL       string
	spreadsheetID string
	apiKey        string
}

const (
	defaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"
	fetchTimeout   = 15 * time.Second
)

// NewClient creates a Client for the given spreadsheet.
func NewClient(spreadsheetID, apiKey string) *Client {
	return &Client{
		http:          &http.Client{Timeout: fetchTimeout},
		baseURL:       defaultBaseURL,
		spreadsheetID: spreadsheetID,
		apiKey:        apiKey,
	}
}

// NewClientWithBase is NewClient with an overridable API endpoint, used by
// tests to point at an httptest server.
func NewClientWithBase(baseURL, spreadsheetID, apiKey string) *Client {
	c := NewClient(spreadsheetID, apiKey)
	c.baseURL = baseURL
	return c
}

// valuesResponse mirrors the subset of the values API response we consume.
type valuesResponse struct {
	Values [][]string `json:"values"`
}

// FetchRange fetches a single named range and returns its grid. A response
// without a "values" key (empty range) yields an empty table, not an error.
func (c *Client) FetchRange(ctx context.Context, rangeName string) (Table, error) {
	if rangeName == "" {
		return nil, errors.New("sheet: range name is empty")
	}

	u := fmt.Sprintf("%s/%s/values/%s?key=%s",
		c.baseURL,
		url.PathEscape(c.spreadsheetID),
		url.PathEscape(rangeName),
		url.QueryEscape(c.apiKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	appLog.Debug("sheet fetch start", "range", rangeName, "spreadsheet", c.spreadsheetID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheet: fetch %q: %w", rangeName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sheet: fetch %q: %s: %s", rangeName, resp.Status, string(body))
	}

	var vr valuesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("sheet: decode %q: %w", rangeName, err)
	}

	appLog.Info("sheet fetch success", "range", rangeName, "rows", len(vr.Values))
	return Table(vr.Values), nil
}
