package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/client/models"
	"github.com/dmitrijs2005/citybreaks/internal/common"
)

// HTTPClient talks to the trip entry collection over JSON/HTTP. It keeps no
// state besides its base URL; every call carries the bearer token.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type exportResponse struct {
	URL string `json:"url"`
}

type errorBody struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
}

// BaseURL is the server root the client was configured with.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) List(ctx context.Context, token string) ([]models.Record, error) {
	out := make([]models.Record, 0)
	if err := c.do(ctx, http.MethodGet, common.CollectionPath, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Get(ctx context.Context, token, id string) (models.Record, error) {
	var out models.Record
	if err := c.do(ctx, http.MethodGet, itemPath(id), token, nil, &out); err != nil {
		return models.Record{}, err
	}
	return out, nil
}

func (c *HTTPClient) Create(ctx context.Context, token string, rec models.Record) (models.Record, error) {
	var out models.Record
	if err := c.do(ctx, http.MethodPost, common.CollectionPath, token, rec, &out); err != nil {
		return models.Record{}, err
	}
	return out, nil
}

func (c *HTTPClient) Update(ctx context.Context, token string, rec models.Record) (models.Record, error) {
	if rec.ID == "" {
		return models.Record{}, fmt.Errorf("%w: update without id", common.ErrValidation)
	}
	var out models.Record
	if err := c.do(ctx, http.MethodPut, itemPath(rec.ID), token, rec, &out); err != nil {
		return models.Record{}, err
	}
	return out, nil
}

func (c *HTTPClient) Delete(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath(id), token, nil, nil)
}

// Login exchanges credentials for an access token.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", credentials{username, password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Signup registers a user and returns its first access token.
func (c *HTTPClient) Signup(ctx context.Context, username, password string) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", "", credentials{username, password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Export asks the server to snapshot the user's records to object storage
// and returns a time-limited download link.
func (c *HTTPClient) Export(ctx context.Context, token string) (string, error) {
	var out exportResponse
	if err := c.do(ctx, http.MethodPost, common.CollectionPath+"/export", token, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func itemPath(id string) string {
	return common.CollectionPath + "/" + url.PathEscape(id)
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body any, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %s %s: %v", common.ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
		return nil
	}

	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	return mapStatus(resp.StatusCode, eb.Error)
}

func mapStatus(code int, msg string) error {
	var sentinel error
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		sentinel = common.ErrUnauthorized
	case code == http.StatusNotFound:
		sentinel = common.ErrNotFound
	case code == http.StatusConflict:
		sentinel = common.ErrVersionConflict
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		sentinel = common.ErrValidation
	case code >= 500:
		sentinel = common.ErrUnavailable
	default:
		sentinel = fmt.Errorf("unexpected status %d", code)
	}

	if strings.TrimSpace(msg) == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
