package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"openfeed/pkg/post"
)

// TokenSource supplies the bearer token attached to mutating calls.
// Returning an empty string sends the request unauthenticated.
type TokenSource func(ctx context.Context) string

type HTTPClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      TokenSource
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, token TokenSource) *HTTPClient {
	return &HTTPClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Token:      token,
	}
}

type pageResponse struct {
	Items    []*post.Post `json:"items"`
	PageInfo struct {
		Next string `json:"next"`
	} `json:"pageInfo"`
}

func (c *HTTPClient) FetchPosts(ctx context.Context, req PostsRequest) (*Page, error) {
	var resp pageResponse
	if err := c.call(ctx, http.MethodPost, "/posts/fetch", req, &resp); err != nil {
		return nil, fmt.Errorf("protocol: failed fetching posts: %w", err)
	}
	return &Page{Items: resp.Items, Next: resp.PageInfo.Next}, nil
}

func (c *HTTPClient) FetchPostReferences(ctx context.Context, req ReferencesRequest) (*Page, error) {
	var resp pageResponse
	if err := c.call(ctx, http.MethodPost, "/posts/references", req, &resp); err != nil {
		return nil, fmt.Errorf("protocol: failed fetching post references: %w", err)
	}
	return &Page{Items: resp.Items, Next: resp.PageInfo.Next}, nil
}

func (c *HTTPClient) FetchPost(ctx context.Context, id post.Id) (*post.Post, error) {
	p := new(post.Post)
	if err := c.call(ctx, http.MethodGet, "/posts/"+string(id), nil, p); err != nil {
		return nil, fmt.Errorf("protocol: failed fetching post %s: %w", id, err)
	}
	return p, nil
}

type reactionRequest struct {
	Reaction ReactionType `json:"reaction"`
}

func (c *HTTPClient) AddReaction(ctx context.Context, id post.Id, reaction ReactionType) error {
	return c.call(ctx, http.MethodPost, "/posts/"+string(id)+"/reactions", reactionRequest{reaction}, nil)
}

func (c *HTTPClient) UndoReaction(ctx context.Context, id post.Id, reaction ReactionType) error {
	return c.call(ctx, http.MethodDelete, "/posts/"+string(id)+"/reactions", reactionRequest{reaction}, nil)
}

func (c *HTTPClient) BookmarkPost(ctx context.Context, id post.Id) error {
	return c.call(ctx, http.MethodPost, "/posts/"+string(id)+"/bookmark", nil, nil)
}

func (c *HTTPClient) UndoBookmarkPost(ctx context.Context, id post.Id) error {
	return c.call(ctx, http.MethodDelete, "/posts/"+string(id)+"/bookmark", nil, nil)
}

func (c *HTTPClient) call(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("protocol: can't encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != nil {
		if token := c.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("protocol: %s %s failed with status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("protocol: can't decode response body: %w", err)
	}
	return nil
}
