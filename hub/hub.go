// Package hub is a thin client for the Docker Hub v2 REST API,
// covering only the calls the size validation needs: tag listing, tag
// detail, and the username/password session-token exchange.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-logr/logr"

	"github.com/containerci/imagesize/internal/log"
)

// DefaultBaseURL is the public Docker Hub API endpoint.
const DefaultBaseURL = "https://hub.docker.com/v2"

// ErrInvalidCredentials is returned when the hub rejects the
// username/password pair during the session-token exchange.
var ErrInvalidCredentials = errors.New("invalid username or password")

// LookupError is returned for any non-success or empty hub response.
// It carries the raw response for diagnostics.
type LookupError struct {
	StatusCode int
	Body       string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("status code: %d: body: %s", e.StatusCode, e.Body)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the hub API. The session token is established lazily on
// first use when a non-empty password was supplied, and cached for the
// lifetime of the client. Client is not safe for concurrent use; the
// utility is strictly sequential.
type Client struct {
	BaseURL  string
	Username string
	Password string
	Client   HTTPClient

	token string
}

func NewClient(baseURL string, username string, password string, httpClient HTTPClient) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		Client:   httpClient,
	}
}

// GetTag fetches the detail of a single tag, including all of its
// OS/architecture variants.
func (c *Client) GetTag(ctx context.Context, repo string, tag string) (*TagInfo, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/repositories/%s/tags/%s", c.BaseURL, repo, tag))
	if err != nil {
		return nil, fmt.Errorf("could not get tag %s:%s: %w", repo, tag, err)
	}

	var info TagInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("could not unmarshal body: %s: %w", string(body), err)
	}

	return &info, nil
}

// ListTags fetches up to pageSize tags for a repository. A non-empty
// tag narrows the listing to names containing it, server-side.
func (c *Client) ListTags(ctx context.Context, repo string, tag string, pageSize int) ([]TagInfo, error) {
	u := fmt.Sprintf("%s/repositories/%s/tags?page_size=%d", c.BaseURL, repo, pageSize)
	if tag != "" {
		u += "&name=" + url.QueryEscape(tag)
	}

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("could not list tags for %s: %w", repo, err)
	}

	var page TagsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("could not unmarshal body: %s: %w", string(body), err)
	}

	return page.Results, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	logger := logr.FromContextOrDiscard(ctx)

	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create new request: %w", err)
	}
	if c.token != "" {
		req.Header.Add("Authorization", "Bearer "+c.token)
	}

	logger.V(log.TRC).Info("hub URL", "url", req.URL)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach hub: %w", err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read body: %w", err)
	}

	if ok := checkStatus(resp.StatusCode); !ok || len(body) == 0 {
		return nil, &LookupError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// ensureToken performs the session-token exchange exactly once per
// client, and only when a password was supplied at construction.
func (c *Client) ensureToken(ctx context.Context) error {
	if c.token != "" || c.Password == "" {
		return nil
	}

	logger := logr.FromContextOrDiscard(ctx)

	b, err := json.Marshal(loginRequest{Username: c.Username, Password: c.Password})
	if err != nil {
		return fmt.Errorf("could not marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/users/login", bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("could not create new request: %w", err)
	}
	req.Header.Add("Content-type", "application/json")

	logger.V(log.DBG).Info("exchanging credentials for a session token", "username", c.Username)

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach hub: %w", err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrInvalidCredentials
	}

	if ok := checkStatus(resp.StatusCode); !ok || len(body) == 0 {
		return fmt.Errorf("login failed: %w", &LookupError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var login loginResponse
	if err := json.Unmarshal(body, &login); err != nil {
		return fmt.Errorf("could not unmarshal body: %s: %w", string(body), err)
	}

	c.token = login.Token

	return nil
}

// checkStatus is used to check for a 2xx status code
func checkStatus(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}
