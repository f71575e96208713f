// Package client is the HTTP gateway to the Anime Spotlight API: the five
// REST calls on /animes, with failures sorted into not-found, bad-request
// and unexpected.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"animespotlight/internal/validate"
	"animespotlight/pkg/models"
)

const DefaultBaseURL = "http://localhost:8080"

// ErrNotFound reports a 404 for a single entry.
var ErrNotFound = errors.New("anime not found")

// BadRequestError carries the server-supplied message of a 400, plus the
// per-field validation errors when the server returned them.
type BadRequestError struct {
	Message string          `json:"error"`
	Fields  validate.Errors `json:"fields,omitempty"`
}

func (e *BadRequestError) Error() string { return e.Message }

type Client struct {
	base string
	http *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type listResponse struct {
	Animes []models.Anime `json:"animes"`
	Count  int            `json:"count"`
}

type animeResponse struct {
	Anime models.Anime `json:"anime"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) List(ctx context.Context) ([]models.Anime, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/animes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Animes, nil
}

func (c *Client) GetByID(ctx context.Context, id int64) (models.Anime, error) {
	var resp animeResponse
	if err := c.do(ctx, http.MethodGet, "/animes/"+strconv.FormatInt(id, 10), nil, &resp); err != nil {
		return models.Anime{}, err
	}
	return resp.Anime, nil
}

func (c *Client) Create(ctx context.Context, fields models.AnimeFields) (models.Anime, error) {
	var resp animeResponse
	if err := c.do(ctx, http.MethodPost, "/animes", fields, &resp); err != nil {
		return models.Anime{}, err
	}
	return resp.Anime, nil
}

func (c *Client) UpdateByID(ctx context.Context, id int64, fields models.AnimeFields) (models.Anime, error) {
	var resp animeResponse
	if err := c.do(ctx, http.MethodPut, "/animes/"+strconv.FormatInt(id, 10), fields, &resp); err != nil {
		return models.Anime{}, err
	}
	return resp.Anime, nil
}

func (c *Client) DeleteByID(ctx context.Context, id int64) error {
	var resp messageResponse
	return c.do(ctx, http.MethodDelete, "/animes/"+strconv.FormatInt(id, 10), nil, &resp)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		br := &BadRequestError{}
		if err := json.Unmarshal(data, br); err != nil || br.Message == "" {
			br.Message = strings.TrimSpace(string(data))
		}
		return br
	case resp.StatusCode >= 300:
		return fmt.Errorf("%s %s failed with status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
