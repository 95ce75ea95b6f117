// Package postactions mutates the shared engagement state of a single
// post: optimistic like/bookmark toggles against the protocol and the
// comment/collect sheet visibility mirrored into the URL query string.
package postactions

import (
	"context"
	"errors"

	"openfeed/pkg/logger"
	"openfeed/pkg/post"
	"openfeed/pkg/poststate"
	"openfeed/pkg/protocol"
)

var ErrAuthRequired = errors.New("postactions: authentication required")

const (
	commentParam = "comment"
	collectParam = "collect"
)

// Location is the navigable location's query string. The coordinator
// treats it as an external collaborator, not ambient global state.
type Location interface {
	Get(name string) (string, bool)
	Set(name, value string)
	Delete(name string)
}

// AuthChecker decides whether the viewer may perform a mutating action.
// Implementations surface their own reconnect/select-profile prompt when
// the answer is no.
type AuthChecker interface {
	CheckAuthentication(ctx context.Context, action string) bool
}

// Coordinator is bound to one post. It holds no post state of its own:
// every read and write goes through the shared store, so all rendered
// views of the post observe the same values.
type Coordinator struct {
	post   *post.Post
	store  *poststate.Store
	client protocol.Client
	auth   AuthChecker
	loc    Location
}

func NewCoordinator(p *post.Post, store *poststate.Store, client protocol.Client, auth AuthChecker, loc Location) *Coordinator {
	store.Init(p)
	c := &Coordinator{
		post:   p,
		store:  store,
		client: client,
		auth:   auth,
		loc:    loc,
	}
	c.syncInitialSheets()
	return c
}

// State returns the current shared entry snapshot for the bound post.
func (c *Coordinator) State() *poststate.Entry {
	e, _ := c.store.Get(c.post.Id)
	if e == nil {
		e = &poststate.Entry{Id: c.post.Id}
	}
	return e
}

// toggleOp is the snapshot / apply-optimistic / commit-or-rollback
// protocol shared by every optimistic engagement toggle.
type toggleOp struct {
	name   string
	flag   bool
	count  int
	apply  func(flag bool, count int)
	commit func(ctx context.Context, target bool) error
}

func (c *Coordinator) toggle(ctx context.Context, op toggleOp) error {
	target := !op.flag
	count := op.count - 1
	if target {
		count = op.count + 1
	}
	if count < 0 {
		count = 0
	}

	op.apply(target, count)

	if err := op.commit(ctx, target); err != nil {
		op.apply(op.flag, op.count)
		logger.Log(ctx).Errorf("postactions: failed to %s post %s: %v", op.name, c.post.Id, err)
		return err
	}
	return nil
}

// ToggleLike flips the viewer's upvote. The counter moves before the
// protocol call and moves back if the call fails.
func (c *Coordinator) ToggleLike(ctx context.Context) error {
	if !c.auth.CheckAuthentication(ctx, "like posts") {
		return ErrAuthRequired
	}

	st := c.State()
	return c.toggle(ctx, toggleOp{
		name:  "like",
		flag:  st.Operations.HasUpvoted,
		count: st.Stats.Upvotes,
		apply: func(flag bool, count int) {
			c.store.UpdateOperations(c.post.Id, poststate.OperationsPatch{HasUpvoted: poststate.Bool(flag)})
			c.store.UpdateStats(c.post.Id, poststate.StatsPatch{Upvotes: poststate.Int(count)})
		},
		commit: func(ctx context.Context, target bool) error {
			if target {
				return c.client.AddReaction(ctx, c.post.Id, protocol.ReactionUpvote)
			}
			return c.client.UndoReaction(ctx, c.post.Id, protocol.ReactionUpvote)
		},
	})
}

// ToggleBookmark follows the same optimistic protocol as ToggleLike.
func (c *Coordinator) ToggleBookmark(ctx context.Context) error {
	if !c.auth.CheckAuthentication(ctx, "bookmark posts") {
		return ErrAuthRequired
	}

	st := c.State()
	return c.toggle(ctx, toggleOp{
		name:  "bookmark",
		flag:  st.Operations.HasBookmarked,
		count: st.Stats.Bookmarks,
		apply: func(flag bool, count int) {
			c.store.UpdateOperations(c.post.Id, poststate.OperationsPatch{HasBookmarked: poststate.Bool(flag)})
			c.store.UpdateStats(c.post.Id, poststate.StatsPatch{Bookmarks: poststate.Int(count)})
		},
		commit: func(ctx context.Context, target bool) error {
			if target {
				return c.client.BookmarkPost(ctx, c.post.Id)
			}
			return c.client.UndoBookmarkPost(ctx, c.post.Id)
		},
	})
}

// ToggleCommentSheet flips the comment sheet and mirrors the change into
// the comment=<slug> query parameter.
func (c *Coordinator) ToggleCommentSheet() {
	c.setSheet(commentParam, !c.State().UI.CommentOpen)
}

// SetCommentSheetOpen sets the comment sheet to an explicit state. Both
// the store flag and the URL parameter are written only when they differ
// from the desired state.
func (c *Coordinator) SetCommentSheetOpen(open bool) {
	c.setSheet(commentParam, open)
}

func (c *Coordinator) ToggleCollectSheet() {
	c.setSheet(collectParam, !c.State().UI.CollectOpen)
}

func (c *Coordinator) SetCollectSheetOpen(open bool) {
	c.setSheet(collectParam, open)
}

func (c *Coordinator) setSheet(param string, open bool) {
	cur := c.State().UI
	curOpen := cur.CommentOpen
	if param == collectParam {
		curOpen = cur.CollectOpen
	}

	if curOpen != open {
		patch := poststate.SheetsPatch{}
		if param == commentParam {
			patch.CommentOpen = poststate.Bool(open)
		} else {
			patch.CollectOpen = poststate.Bool(open)
		}
		c.store.UpdateSheets(c.post.Id, patch)
	}

	val, ok := c.loc.Get(param)
	if !open {
		if ok && val == c.post.Slug {
			c.loc.Delete(param)
		}
		return
	}
	if val != c.post.Slug {
		c.loc.Set(param, c.post.Slug)
	}
}

// syncInitialSheets reconciles sheet state against the URL exactly once
// per post per session. Without the guard a re-render would reopen a
// sheet the user already closed while the parameter still matches.
func (c *Coordinator) syncInitialSheets() {
	st := c.State()

	if !st.UI.CommentURLSynced {
		patch := poststate.SheetsPatch{CommentURLSynced: poststate.Bool(true)}
		if v, ok := c.loc.Get(commentParam); ok && v == c.post.Slug && !st.UI.CommentOpen {
			patch.CommentOpen = poststate.Bool(true)
		}
		c.store.UpdateSheets(c.post.Id, patch)
	}

	if !st.UI.CollectURLSynced {
		patch := poststate.SheetsPatch{CollectURLSynced: poststate.Bool(true)}
		if v, ok := c.loc.Get(collectParam); ok && v == c.post.Slug && !st.UI.CollectOpen {
			patch.CollectOpen = poststate.Bool(true)
		}
		c.store.UpdateSheets(c.post.Id, patch)
	}
}
