package comments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"openfeed/pkg/post"
	"openfeed/pkg/poststate"
	"openfeed/pkg/protocol"
)

// fakeClient serves scripted reference pages keyed by cursor.
type fakeClient struct {
	pages    map[string]*protocol.Page
	err      error
	requests []protocol.ReferencesRequest
}

func (f *fakeClient) FetchPosts(ctx context.Context, req protocol.PostsRequest) (*protocol.Page, error) {
	return &protocol.Page{}, nil
}

func (f *fakeClient) FetchPostReferences(ctx context.Context, req protocol.ReferencesRequest) (*protocol.Page, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[req.Cursor]
	if page == nil {
		return &protocol.Page{}, nil
	}
	cp := *page
	return &cp, nil
}

func (f *fakeClient) FetchPost(ctx context.Context, id post.Id) (*post.Post, error) {
	return nil, errors.New("not found")
}

func (f *fakeClient) AddReaction(ctx context.Context, id post.Id, r protocol.ReactionType) error {
	return nil
}

func (f *fakeClient) UndoReaction(ctx context.Context, id post.Id, r protocol.ReactionType) error {
	return nil
}

func (f *fakeClient) BookmarkPost(ctx context.Context, id post.Id) error     { return nil }
func (f *fakeClient) UndoBookmarkPost(ctx context.Context, id post.Id) error { return nil }

func commentOn(id string, parent post.Id) *post.Post {
	return &post.Post{Id: post.Id(id), Slug: "slug-" + id, CommentOn: parent}
}

func ids(posts []*post.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = string(p.Id)
	}
	return out
}

func TestFetchLoadsFirstPage(t *testing.T) {
	const parent = post.Id("p1")
	client := &fakeClient{pages: map[string]*protocol.Page{
		"": {Items: []*post.Post{commentOn("c1", parent), commentOn("c2", parent)}, Next: "page2"},
	}}
	store := poststate.NewStore()
	p := NewPaginator(client, store, parent)

	err := p.Fetch(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids(p.Comments()))
	assert.True(t, p.HasMore())
	assert.False(t, p.Loading())

	_, ok := store.Get("c1")
	assert.True(t, ok, "comments get shared state entries too")

	req := client.requests[0]
	assert.Equal(t, parent, req.ReferencedPost)
	assert.Equal(t, []protocol.ReferenceType{protocol.ReferenceCommentOn}, req.ReferenceTypes)
}

func TestLoadMoreAppendsAndDeduplicates(t *testing.T) {
	const parent = post.Id("p1")
	client := &fakeClient{pages: map[string]*protocol.Page{
		"":      {Items: []*post.Post{commentOn("c1", parent), commentOn("c2", parent)}, Next: "page2"},
		"page2": {Items: []*post.Post{commentOn("c2", parent), commentOn("c3", parent)}},
	}}
	p := NewPaginator(client, poststate.NewStore(), parent)

	assert.NoError(t, p.Fetch(context.Background()))
	assert.NoError(t, p.LoadMore(context.Background()))

	assert.Equal(t, []string{"c1", "c2", "c3"}, ids(p.Comments()))
	assert.False(t, p.HasMore())
}

func TestLoadMoreWithoutCursorIsNoOp(t *testing.T) {
	client := &fakeClient{}
	p := NewPaginator(client, poststate.NewStore(), "p1")

	err := p.LoadMore(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, client.requests)
}

func TestRefreshReplacesThread(t *testing.T) {
	const parent = post.Id("p1")
	client := &fakeClient{pages: map[string]*protocol.Page{
		"": {Items: []*post.Post{commentOn("new1", parent)}},
	}}
	p := NewPaginator(client, poststate.NewStore(), parent)
	p.items = []*post.Post{commentOn("old1", parent), commentOn("old2", parent)}
	p.cursor = "page9"

	err := p.Refresh(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"new1"}, ids(p.Comments()), "ordering may change, so refresh replaces")
	assert.False(t, p.HasMore())
}

func TestFetchErrorRetainedUntilNextSuccess(t *testing.T) {
	const parent = post.Id("p1")
	client := &fakeClient{err: errors.New("boom")}
	p := NewPaginator(client, poststate.NewStore(), parent)

	assert.Error(t, p.Fetch(context.Background()))
	assert.Equal(t, "boom", p.Err())
	assert.False(t, p.Loading(), "a failed fetch releases the loading guard")

	client.err = nil
	client.pages = map[string]*protocol.Page{
		"": {Items: []*post.Post{commentOn("c1", parent)}},
	}
	assert.NoError(t, p.Refresh(context.Background()))
	assert.Empty(t, p.Err())
}
