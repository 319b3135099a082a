// Package restapi talks to a remote JSON posts resource.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/nasermirzaei89/postdesk/contents"
)

const (
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"

	contentTypeJSON = "application/json; charset=UTF-8"
	headerRequestID = "X-Request-Id"
	postsPath       = "/posts"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ contents.PostRepository = (*Client)(nil)

// NewClient returns a client for baseURL. A nil httpClient means
// http.DefaultClient; no timeout is added on top of the transport's own.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, InvalidBaseURLError{BaseURL: baseURL}
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

type InvalidBaseURLError struct {
	BaseURL string
}

func (err InvalidBaseURLError) Error() string {
	return fmt.Sprintf("base url %q must be absolute", err.BaseURL)
}

func postPath(postID int) string {
	return postsPath + "/" + strconv.Itoa(postID)
}

func (c *Client) List(ctx context.Context) ([]*contents.Post, error) {
	var posts []*contents.Post

	err := c.do(ctx, http.MethodGet, postsPath, nil, &posts)
	if err != nil {
		return nil, err
	}

	return posts, nil
}

func (c *Client) Create(ctx context.Context, req contents.CreatePostRequest) (*contents.Post, error) {
	var post contents.Post

	err := c.do(ctx, http.MethodPost, postsPath, req, &post)
	if err != nil {
		return nil, err
	}

	return &post, nil
}

func (c *Client) Update(ctx context.Context, req contents.UpdatePostRequest) (*contents.PostPatch, error) {
	var patch contents.PostPatch

	err := c.do(ctx, http.MethodPut, postPath(req.ID), req, &patch)
	if err != nil {
		return nil, err
	}

	return &patch, nil
}

func (c *Client) Delete(ctx context.Context, postID int) error {
	return c.do(ctx, http.MethodDelete, postPath(postID), nil, nil)
}

// do sends one request. Every failure, including an undecodable body, is
// reported as contents.NetworkError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	target := c.baseURL + path
	requestID := uuid.NewString()

	var body io.Reader

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}

		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return contents.NetworkError{Method: method, URL: target, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)

	if in != nil {
		req.Header.Set("Content-type", contentTypeJSON)
	}

	slog.DebugContext(ctx, "sending request", "method", method, "url", target, "requestId", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contents.NetworkError{Method: method, URL: target, Err: err}
	}

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close response body", "requestId", requestID, "error", err)
		}
	}()

	slog.DebugContext(ctx, "received response", "method", method, "url", target, "requestId", requestID, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return contents.NetworkError{Method: method, URL: target, StatusCode: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return contents.NetworkError{Method: method, URL: target, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
