// Package comments paginates the direct-comment thread of a single post.
package comments

import (
	"context"
	"sync"

	"openfeed/pkg/post"
	"openfeed/pkg/poststate"
	"openfeed/pkg/protocol"
)

// Paginator follows the same cursor/dedupe discipline as the feed
// paginator, scoped to one parent post. Refresh always replaces the
// accumulated list: comment ordering may change between fetches.
type Paginator struct {
	client protocol.Client
	store  *poststate.Store
	parent post.Id

	mu      sync.Mutex
	items   []*post.Post
	cursor  string
	loading bool
	errMsg  string
}

func NewPaginator(client protocol.Client, store *poststate.Store, parent post.Id) *Paginator {
	return &Paginator{
		client: client,
		store:  store,
		parent: parent,
	}
}

// Fetch loads the first page of the thread, replacing anything
// accumulated so far.
func (p *Paginator) Fetch(ctx context.Context) error {
	return p.fetch(ctx, "", true)
}

// LoadMore appends the next page, deduplicated by id. No-op without a
// cursor or while another fetch is running.
func (p *Paginator) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	cursor := p.cursor
	busy := p.loading
	p.mu.Unlock()
	if cursor == "" || busy {
		return nil
	}
	return p.fetch(ctx, cursor, false)
}

// Refresh re-fetches the thread from the top.
func (p *Paginator) Refresh(ctx context.Context) error {
	return p.fetch(ctx, "", true)
}

func (p *Paginator) fetch(ctx context.Context, cursor string, replace bool) error {
	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		return nil
	}
	p.loading = true
	p.mu.Unlock()

	page, err := p.client.FetchPostReferences(ctx, protocol.ReferencesRequest{
		ReferencedPost: p.parent,
		ReferenceTypes: []protocol.ReferenceType{protocol.ReferenceCommentOn},
		Cursor:         cursor,
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		p.errMsg = err.Error()
		return err
	}
	p.errMsg = ""

	items := make([]*post.Post, 0, len(page.Items))
	for _, it := range page.Items {
		if it == nil {
			continue
		}
		p.store.Init(it)
		items = append(items, it)
	}

	if replace {
		p.items = items
	} else {
		p.items = appendNew(p.items, items)
	}
	p.cursor = page.Next
	return nil
}

func appendNew(existing, incoming []*post.Post) []*post.Post {
	seen := make(map[post.Id]struct{}, len(existing))
	for _, c := range existing {
		seen[c.Id] = struct{}{}
	}
	for _, c := range incoming {
		if _, ok := seen[c.Id]; ok {
			continue
		}
		seen[c.Id] = struct{}{}
		existing = append(existing, c)
	}
	return existing
}

// Comments returns a copy of the accumulated thread in fetch order.
func (p *Paginator) Comments() []*post.Post {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*post.Post, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Paginator) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *Paginator) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor != ""
}

func (p *Paginator) Err() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}
