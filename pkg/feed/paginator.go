package feed

import (
	"context"
	"sync"
	"time"

	"openfeed/pkg/post"
	"openfeed/pkg/poststate"
	"openfeed/pkg/protocol"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseRefreshing
	PhaseLoadingMore
)

// minAccumulated is the floor below which the paginator keeps pulling
// pages eagerly: server-side pages shrink after the eligibility filter,
// so a single page may render a nearly empty feed.
const minAccumulated = 20

// Paginator accumulates eligible feed posts page by page. Exactly one of
// the load phases is active at a time; a fetch that finishes after its
// filter was replaced is discarded (generation guard).
type Paginator struct {
	client   protocol.Client
	store    *poststate.Store
	app      string
	pageSize protocol.PageSize

	mu           sync.Mutex
	filter       protocol.PostsFilter
	posts        []*post.Post
	cursor       string
	phase        Phase
	errMsg       string
	lastRefresh  time.Time
	newAvailable bool
	lastHeadId   post.Id
	gen          int
}

func NewPaginator(client protocol.Client, store *poststate.Store, app string) *Paginator {
	return &Paginator{
		client:   client,
		store:    store,
		app:      app,
		pageSize: protocol.PageSizeFifty,
	}
}

// Load replaces the active filter and the accumulated list wholesale.
// Any fetch still in flight for the previous filter is invalidated.
func (p *Paginator) Load(ctx context.Context, filter protocol.PostsFilter) error {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.filter = filter
	p.posts = nil
	p.cursor = ""
	p.phase = PhaseLoading
	p.errMsg = ""
	p.newAvailable = false
	p.mu.Unlock()

	if err := p.fetchHead(ctx, gen); err != nil {
		return err
	}
	return p.fill(ctx)
}

// Refresh re-fetches the first page of the current filter and replaces
// the accumulated list, so the view matches the server's latest ordering
// exactly. No-op while another load is running.
func (p *Paginator) Refresh(ctx context.Context) error {
	p.mu.Lock()
	if p.phase != PhaseIdle {
		p.mu.Unlock()
		return nil
	}
	gen := p.gen
	p.phase = PhaseRefreshing
	p.mu.Unlock()

	if err := p.fetchHead(ctx, gen); err != nil {
		return err
	}
	return p.fill(ctx)
}

// LoadMore appends the next page, deduplicated by post id. No-op without
// a cursor or while any load is running, so rapid repeated triggers can't
// fetch the same page twice.
func (p *Paginator) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	if p.phase != PhaseIdle || p.cursor == "" {
		p.mu.Unlock()
		return nil
	}
	gen := p.gen
	cursor := p.cursor
	p.phase = PhaseLoadingMore
	p.mu.Unlock()

	page, items, err := p.fetchEligible(ctx, cursor)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		return nil // filter changed mid-flight, discard
	}
	p.phase = PhaseIdle
	if err != nil {
		p.errMsg = err.Error()
		return err
	}
	p.errMsg = ""
	p.posts = appendNew(p.posts, items)
	p.cursor = page.Next
	return nil
}

// LoadNewPosts is the explicit "show me the new content" action: it
// clears the flag and re-fetches from the top.
func (p *Paginator) LoadNewPosts(ctx context.Context) error {
	p.mu.Lock()
	p.newAvailable = false
	p.mu.Unlock()
	return p.Refresh(ctx)
}

// CheckForNew polls the head of the current filter and raises the
// new-content flag on a head id mismatch. It never touches the
// accumulated list and swallows errors: the poll is best effort.
func (p *Paginator) CheckForNew(ctx context.Context) {
	p.mu.Lock()
	gen := p.gen
	head := p.lastHeadId
	req := protocol.PostsRequest{Filter: p.filter}
	p.mu.Unlock()

	page, err := p.client.FetchPosts(ctx, req)
	if err != nil {
		return
	}
	for _, it := range page.Items {
		if !post.IsArticle(it, p.app) {
			continue
		}
		p.mu.Lock()
		if p.gen == gen && it.Id != head {
			p.newAvailable = true
		}
		p.mu.Unlock()
		return
	}
}

// Invalidate discards the results of any in-flight fetch. Used together
// with Monitor.Stop when the feed context is abandoned.
func (p *Paginator) Invalidate() {
	p.mu.Lock()
	p.gen++
	p.phase = PhaseIdle
	p.mu.Unlock()
}

// fetchHead fetches the first page and replaces the accumulated state.
func (p *Paginator) fetchHead(ctx context.Context, gen int) error {
	page, items, err := p.fetchEligible(ctx, "")

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		return nil
	}
	p.phase = PhaseIdle
	if err != nil {
		p.errMsg = err.Error()
		return err
	}
	p.errMsg = ""
	p.posts = items
	p.cursor = page.Next
	p.lastRefresh = time.Now()
	p.newAvailable = false
	if len(items) > 0 {
		p.lastHeadId = items[0].Id
	}
	return nil
}

// fill keeps appending pages while the accumulated list is below the
// floor and a cursor remains. Stops as soon as a pass makes no progress.
func (p *Paginator) fill(ctx context.Context) error {
	for {
		p.mu.Lock()
		count := len(p.posts)
		cursor := p.cursor
		idle := p.phase == PhaseIdle
		p.mu.Unlock()

		if !idle || cursor == "" || count >= minAccumulated {
			return nil
		}
		if err := p.LoadMore(ctx); err != nil {
			return err
		}

		p.mu.Lock()
		progressed := len(p.posts) > count || p.cursor != cursor
		p.mu.Unlock()
		if !progressed {
			return nil
		}
	}
}

// fetchEligible fetches one page and keeps only eligible top-level posts,
// registering each with the shared post state store.
func (p *Paginator) fetchEligible(ctx context.Context, cursor string) (*protocol.Page, []*post.Post, error) {
	p.mu.Lock()
	req := protocol.PostsRequest{
		Filter:   p.filter,
		PageSize: p.pageSize,
		Cursor:   cursor,
	}
	p.mu.Unlock()

	page, err := p.client.FetchPosts(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	items := make([]*post.Post, 0, len(page.Items))
	for _, it := range page.Items {
		if !post.IsArticle(it, p.app) {
			continue
		}
		p.store.Init(it)
		items = append(items, it)
	}
	return page, items, nil
}

func appendNew(existing, incoming []*post.Post) []*post.Post {
	seen := make(map[post.Id]struct{}, len(existing))
	for _, p := range existing {
		seen[p.Id] = struct{}{}
	}
	for _, p := range incoming {
		if _, ok := seen[p.Id]; ok {
			continue
		}
		seen[p.Id] = struct{}{}
		existing = append(existing, p)
	}
	return existing
}

// Posts returns a copy of the accumulated list in feed order.
func (p *Paginator) Posts() []*post.Post {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*post.Post, len(p.posts))
	copy(out, p.posts)
	return out
}

func (p *Paginator) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

func (p *Paginator) Loading() bool     { return p.Phase() == PhaseLoading }
func (p *Paginator) Refreshing() bool  { return p.Phase() == PhaseRefreshing }
func (p *Paginator) LoadingMore() bool { return p.Phase() == PhaseLoadingMore }

func (p *Paginator) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor != ""
}

// Err returns the retained error message of the last failed fetch; a
// later successful fetch clears it.
func (p *Paginator) Err() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

func (p *Paginator) NewPostsAvailable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.newAvailable
}

func (p *Paginator) LastRefresh() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRefresh
}
