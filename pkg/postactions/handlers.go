package postactions

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"openfeed/pkg/common"
	"openfeed/pkg/logger"
	"openfeed/pkg/post"
	"openfeed/pkg/poststate"
	"openfeed/pkg/protocol"
)

// PostSource resolves a post id to a hydrated post, typically the mongo
// cache with the protocol as fallback.
type PostSource interface {
	GetById(context.Context, post.Id) (*post.Post, error)
}

type Handler struct {
	Store  *poststate.Store
	Client protocol.Client
	Auth   AuthChecker
	Posts  PostSource
}

func NewHandler(store *poststate.Store, client protocol.Client, auth AuthChecker, posts PostSource) *Handler {
	return &Handler{
		Store:  store,
		Client: client,
		Auth:   auth,
		Posts:  posts,
	}
}

func (h Handler) coordinator(r *http.Request) (*Coordinator, *Values, error) {
	postId := post.Id(mux.Vars(r)["post_id"])
	p, err := h.Posts.GetById(r.Context(), postId)
	if err != nil {
		return nil, nil, err
	}
	loc := NewValues(r.URL.Query())
	return NewCoordinator(p, h.Store, h.Client, h.Auth, loc), loc, nil
}

func (h Handler) writeActionResult(w http.ResponseWriter, r *http.Request, c *Coordinator, err error) {
	if errors.Is(err, ErrAuthRequired) {
		common.WriteMsg(w, "not authorized", http.StatusUnauthorized)
		return
	}
	if err != nil {
		common.WriteMsg(w, "action failed", http.StatusBadGateway)
		return
	}
	common.WriteRespJSON(w, c.State())
}

func (h Handler) State(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	c, _, err := h.coordinator(r)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't find the post: %v", err)
		common.WriteMsg(w, "post not found", http.StatusNotFound)
		return
	}
	common.WriteRespJSON(w, c.State())
}

func (h Handler) Like(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	c, _, err := h.coordinator(r)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't find the post: %v", err)
		common.WriteMsg(w, "post not found", http.StatusNotFound)
		return
	}
	h.writeActionResult(w, r, c, c.ToggleLike(r.Context()))
}

func (h Handler) Bookmark(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	c, _, err := h.coordinator(r)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't find the post: %v", err)
		common.WriteMsg(w, "post not found", http.StatusNotFound)
		return
	}
	h.writeActionResult(w, r, c, c.ToggleBookmark(r.Context()))
}

type sheetRequest struct {
	Open *bool `json:"open"`
}

type sheetResponse struct {
	State *poststate.Entry `json:"state"`
	Query string           `json:"query"`
}

// CommentSheet toggles (or explicitly sets, when the body carries "open")
// the comment sheet. The response echoes the reconciled query string the
// client should navigate to.
func (h Handler) CommentSheet(w http.ResponseWriter, r *http.Request) {
	h.sheet(w, r, false)
}

func (h Handler) CollectSheet(w http.ResponseWriter, r *http.Request) {
	h.sheet(w, r, true)
}

func (h Handler) sheet(w http.ResponseWriter, r *http.Request, collect bool) {
	w.Header().Set("Content-Type", "application/json")

	c, loc, err := h.coordinator(r)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't find the post: %v", err)
		common.WriteMsg(w, "post not found", http.StatusNotFound)
		return
	}

	req := new(sheetRequest)
	if err := common.ParseReqBody(r.Body, req); err != nil {
		req.Open = nil
	}

	switch {
	case collect && req.Open != nil:
		c.SetCollectSheetOpen(*req.Open)
	case collect:
		c.ToggleCollectSheet()
	case req.Open != nil:
		c.SetCommentSheetOpen(*req.Open)
	default:
		c.ToggleCommentSheet()
	}

	common.WriteRespJSON(w, sheetResponse{
		State: c.State(),
		Query: loc.Encode(),
	})
}
