package poststate

import (
	"sync"

	"openfeed/pkg/post"
)

// Sheets carries the transient UI flags of a post. The *URLSynced markers
// record that the sheet open state has been reconciled against the URL
// query string once already, so a sheet the user closed is not reopened
// by a later render of the same post.
type Sheets struct {
	CommentOpen      bool `json:"isCommentSheetOpen"`
	CollectOpen      bool `json:"isCollectSheetOpen"`
	CommentURLSynced bool `json:"-"`
	CollectURLSynced bool `json:"-"`
}

// Entry is the shared engagement state of a single post. Every rendered
// view of the post reads the same entry through the store; entries handed
// out by Get are snapshots and must not be mutated by callers.
type Entry struct {
	Id         post.Id         `json:"id"`
	Stats      post.Stats      `json:"stats"`
	Operations post.Operations `json:"operations"`
	UI         Sheets          `json:"ui"`
}

// Patch types merge field-by-field: nil means "leave as is".
type (
	StatsPatch struct {
		Upvotes   *int
		Downvotes *int
		Comments  *int
		Mirrors   *int
		Quotes    *int
		Bookmarks *int
		Collects  *int
	}

	OperationsPatch struct {
		HasUpvoted    *bool
		HasBookmarked *bool
		HasReposted   *bool
		HasQuoted     *bool
		CanComment    *bool
		CanRepost     *bool
		CanQuote      *bool
		CanBookmark   *bool
		CanCollect    *bool
		CanDelete     *bool
		CanTip        *bool
	}

	SheetsPatch struct {
		CommentOpen      *bool
		CollectOpen      *bool
		CommentURLSynced *bool
		CollectURLSynced *bool
	}
)

func Int(v int) *int    { return &v }
func Bool(v bool) *bool { return &v }

// Store is the process-wide post id -> Entry mapping. Mutations replace
// the entry pointer so observers comparing references see every change;
// sibling entries keep their previous pointer.
type Store struct {
	mu      sync.RWMutex
	entries map[post.Id]*Entry
}

func NewStore() *Store {
	return &Store{
		entries: make(map[post.Id]*Entry),
	}
}

// Init inserts an entry derived from the post's server-supplied stats and
// operations iff none exists yet. It never overwrites: an existing entry
// may hold optimistic state an in-flight action still needs.
func (s *Store) Init(p *post.Post) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[p.Id]; ok {
		return
	}
	s.entries[p.Id] = &Entry{
		Id:         p.Id,
		Stats:      p.Stats,
		Operations: p.Operations,
	}
}

func (s *Store) Get(id post.Id) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

func (s *Store) UpdateStats(id post.Id, patch StatsPatch) {
	s.mutate(id, func(e *Entry) {
		e.Stats.Upvotes = mergeCount(patch.Upvotes, e.Stats.Upvotes)
		e.Stats.Downvotes = mergeCount(patch.Downvotes, e.Stats.Downvotes)
		e.Stats.Comments = mergeCount(patch.Comments, e.Stats.Comments)
		e.Stats.Mirrors = mergeCount(patch.Mirrors, e.Stats.Mirrors)
		e.Stats.Quotes = mergeCount(patch.Quotes, e.Stats.Quotes)
		e.Stats.Bookmarks = mergeCount(patch.Bookmarks, e.Stats.Bookmarks)
		e.Stats.Collects = mergeCount(patch.Collects, e.Stats.Collects)
	})
}

func (s *Store) UpdateOperations(id post.Id, patch OperationsPatch) {
	s.mutate(id, func(e *Entry) {
		mergeFlag(patch.HasUpvoted, &e.Operations.HasUpvoted)
		mergeFlag(patch.HasBookmarked, &e.Operations.HasBookmarked)
		mergeFlag(patch.HasReposted, &e.Operations.HasReposted)
		mergeFlag(patch.HasQuoted, &e.Operations.HasQuoted)
		mergeFlag(patch.CanComment, &e.Operations.CanComment)
		mergeFlag(patch.CanRepost, &e.Operations.CanRepost)
		mergeFlag(patch.CanQuote, &e.Operations.CanQuote)
		mergeFlag(patch.CanBookmark, &e.Operations.CanBookmark)
		mergeFlag(patch.CanCollect, &e.Operations.CanCollect)
		mergeFlag(patch.CanDelete, &e.Operations.CanDelete)
		mergeFlag(patch.CanTip, &e.Operations.CanTip)
	})
}

func (s *Store) UpdateSheets(id post.Id, patch SheetsPatch) {
	s.mutate(id, func(e *Entry) {
		mergeFlag(patch.CommentOpen, &e.UI.CommentOpen)
		mergeFlag(patch.CollectOpen, &e.UI.CollectOpen)
		mergeFlag(patch.CommentURLSynced, &e.UI.CommentURLSynced)
		mergeFlag(patch.CollectURLSynced, &e.UI.CollectURLSynced)
	})
}

// mutate applies fn to a copy of the current entry (or a zero entry when
// the id is unknown) and stores the copy under a fresh pointer.
func (s *Store) mutate(id post.Id, fn func(e *Entry)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := &Entry{Id: id}
	if cur, ok := s.entries[id]; ok {
		clone := *cur
		next = &clone
	}
	fn(next)
	s.entries[id] = next
}

// Counters never go below zero no matter what the caller computed.
func mergeCount(v *int, cur int) int {
	if v == nil {
		return cur
	}
	if *v < 0 {
		return 0
	}
	return *v
}

func mergeFlag(v *bool, dst *bool) {
	if v != nil {
		*dst = *v
	}
}
