package protocol

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openfeed/pkg/post"
)

func staticToken(token string) TokenSource {
	return func(ctx context.Context) string { return token }
}

func TestFetchPostsDecodesPage(t *testing.T) {
	var gotReq PostsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/posts/fetch", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [{"id": "p1", "slug": "first"}, {"id": "p2", "slug": "second"}],
			"pageInfo": {"next": "cursor-2"}
		}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	page, err := c.FetchPosts(context.Background(), PostsRequest{
		Filter:   PostsFilter{Apps: []string{"0xapp"}},
		PageSize: PageSizeFifty,
		Cursor:   "cursor-1",
	})

	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, post.Id("p1"), page.Items[0].Id)
	assert.Equal(t, "cursor-2", page.Next)

	assert.Equal(t, []string{"0xapp"}, gotReq.Filter.Apps)
	assert.Equal(t, PageSizeFifty, gotReq.PageSize)
	assert.Equal(t, "cursor-1", gotReq.Cursor)
}

func TestFetchPostReferencesSendsParent(t *testing.T) {
	var gotReq ReferencesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/references", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{"items": [], "pageInfo": {}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	page, err := c.FetchPostReferences(context.Background(), ReferencesRequest{
		ReferencedPost: "p1",
		ReferenceTypes: []ReferenceType{ReferenceCommentOn},
	})

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.Next)
	assert.Equal(t, post.Id("p1"), gotReq.ReferencedPost)
	assert.Equal(t, []ReferenceType{ReferenceCommentOn}, gotReq.ReferenceTypes)
}

func TestFetchPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/posts/p1", r.URL.Path)
		w.Write([]byte(`{"id": "p1", "slug": "first", "stats": {"upvotes": 7}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	p, err := c.FetchPost(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, post.Id("p1"), p.Id)
	assert.Equal(t, 7, p.Stats.Upvotes)
}

func TestMutationsCarryBearerToken(t *testing.T) {
	type seen struct{ method, path, auth, reaction string }
	var calls []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Reaction string `json:"reaction"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, seen{r.Method, r.URL.Path, r.Header.Get("Authorization"), body.Reaction})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, staticToken("tok-123"))
	ctx := context.Background()

	require.NoError(t, c.AddReaction(ctx, "p1", ReactionUpvote))
	require.NoError(t, c.UndoReaction(ctx, "p1", ReactionUpvote))
	require.NoError(t, c.BookmarkPost(ctx, "p1"))
	require.NoError(t, c.UndoBookmarkPost(ctx, "p1"))

	require.Len(t, calls, 4)
	assert.Equal(t, seen{"POST", "/posts/p1/reactions", "Bearer tok-123", "UPVOTE"}, calls[0])
	assert.Equal(t, seen{"DELETE", "/posts/p1/reactions", "Bearer tok-123", "UPVOTE"}, calls[1])
	assert.Equal(t, seen{"POST", "/posts/p1/bookmark", "Bearer tok-123", ""}, calls[2])
	assert.Equal(t, seen{"DELETE", "/posts/p1/bookmark", "Bearer tok-123", ""}, calls[3])
}

func TestEmptyTokenSendsNoAuthorizationHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"items": [], "pageInfo": {}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, staticToken(""))
	_, err := c.FetchPosts(context.Background(), PostsRequest{})
	assert.NoError(t, err)
}

func TestNonSuccessStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)

	_, err := c.FetchPosts(context.Background(), PostsRequest{})
	assert.ErrorContains(t, err, "403")

	err = c.BookmarkPost(context.Background(), "p1")
	assert.ErrorContains(t, err, "403")
}

func TestMalformedBodyIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, nil)
	_, err := c.FetchPosts(context.Background(), PostsRequest{})
	assert.ErrorContains(t, err, "decode")
}
