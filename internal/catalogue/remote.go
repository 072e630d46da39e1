package catalogue

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	cataloguePath   = "/assessments"
	contentType     = "application/json"
	contentEncoding = "gzip, deflate, br"
	defaultAgent    = "shl-recommender (catalogue loader)"
	// Max page size supported by the catalogue API.
	perPage = "100"
)

// Client fetches the assessments dataset from a paginated JSON API.
type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

// pageResponse is one page of the catalogue API listing.
type pageResponse struct {
	Items   []any
	Found   int
	Pages   int
	Page    int
	PerPage int `json:"per_page"`
}

func NewClient(ctx context.Context, logger *zap.Logger, apiURL, token string) *Client {
	return &Client{
		ctx:    ctx,
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: defaultAgent,
	}
}

// ListItems walks all pages of the catalogue API and returns the decoded items.
func (c *Client) ListItems(ctx context.Context) ([]*Item, error) {
	c.ctx = ctx

	q := url.Values{}
	q.Set("per_page", perPage)

	raw, err := c.getItems(c.APIURL+cataloguePath, q)
	if err != nil {
		return nil, fmt.Errorf("fetching catalogue: %w", err)
	}

	var records []*itemRecord
	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &records,
		TagName:  "json",
	}
	decoder, _ := mapstructure.NewDecoder(cfg)
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding catalogue items: %w", err)
	}

	items := make([]*Item, 0, len(records))
	for _, r := range records {
		items = append(items, r.toItem())
	}

	return items, nil
}

// getItems makes GET requests to the catalogue API and returns items from all pages.
func (c *Client) getItems(u string, q url.Values) ([]any, error) {
	var items []any

	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)
	req.URL.RawQuery = q.Encode()

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}

	page, err := c.parsePageResponse(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got catalogue page", zap.Int("pages", page.Pages), zap.Int("max items per page", page.PerPage))

	items = append(items, page.Items...)

	for page.Page < (page.Pages - 1) {
		c.logger.Debug("additional request needed", zap.String("reason", fmt.Sprintf(
			"current page (%d) < all page count (%d)", page.Page+1, page.Pages),
		))

		resp, err = c.request(addPage(req, page.Page+1))
		if err != nil {
			return nil, err
		}

		page, err = c.parsePageResponse(resp)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Items...)
	}

	return items, nil
}

func (c *Client) parsePageResponse(resp *http.Response) (*pageResponse, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body io.ReadCloser
	var err error
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		body, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer body.Close()
	default:
		body = resp.Body
		defer body.Close()
	}

	var page *pageResponse
	if err := json.NewDecoder(body).Decode(&page); err != nil {
		return nil, err
	}

	return page, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

// addPage adds page parameter to request URL.
func addPage(req *http.Request, page int) *http.Request {
	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = q.Encode()

	return req
}
