package feed

import (
	"net/http"
	"time"

	"openfeed/pkg/common"
	"openfeed/pkg/logger"
	"openfeed/pkg/post"
	"openfeed/pkg/protocol"
)

type FeedHandler struct {
	Paginator *Paginator
	Monitor   *Monitor
}

func NewFeedHandler(p *Paginator, m *Monitor) *FeedHandler {
	return &FeedHandler{
		Paginator: p,
		Monitor:   m,
	}
}

type feedResponse struct {
	Posts             []*post.Post `json:"posts"`
	HasMore           bool         `json:"hasMore"`
	LoadingMore       bool         `json:"loadingMore"`
	Refreshing        bool         `json:"refreshing"`
	NewPostsAvailable bool         `json:"newPostsAvailable"`
	LastRefresh       time.Time    `json:"lastRefresh"`
	Error             string       `json:"error,omitempty"`
}

func (fh FeedHandler) respond(w http.ResponseWriter) {
	common.WriteRespJSON(w, feedResponse{
		Posts:             fh.Paginator.Posts(),
		HasMore:           fh.Paginator.HasMore(),
		LoadingMore:       fh.Paginator.LoadingMore(),
		Refreshing:        fh.Paginator.Refreshing(),
		NewPostsAvailable: fh.Paginator.NewPostsAvailable(),
		LastRefresh:       fh.Paginator.LastRefresh(),
		Error:             fh.Paginator.Err(),
	})
}

func (fh FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fh.respond(w)
}

// Load replaces the active filter from the request body.
func (fh FeedHandler) Load(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	filter := protocol.PostsFilter{}
	if err := common.ParseReqBody(r.Body, &filter); err != nil {
		logger.Log(r.Context()).Errorf("can't parse feed filter: %v", err)
		common.WriteMsg(w, "can't parse filter", http.StatusBadRequest)
		return
	}

	if err := fh.Paginator.Load(r.Context(), filter); err != nil {
		logger.Log(r.Context()).Errorf("can't load feed: %v", err)
	}
	fh.respond(w)
}

func (fh FeedHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := fh.Paginator.Refresh(r.Context()); err != nil {
		logger.Log(r.Context()).Errorf("can't refresh feed: %v", err)
	}
	fh.respond(w)
}

func (fh FeedHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := fh.Paginator.LoadMore(r.Context()); err != nil {
		logger.Log(r.Context()).Errorf("can't load more posts: %v", err)
	}
	fh.respond(w)
}

// LoadNew serves the "new posts available" banner click.
func (fh FeedHandler) LoadNew(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := fh.Paginator.LoadNewPosts(r.Context()); err != nil {
		logger.Log(r.Context()).Errorf("can't load new posts: %v", err)
	}
	fh.respond(w)
}

// Focus reports that the client view regained foreground focus.
func (fh FeedHandler) Focus(w http.ResponseWriter, r *http.Request) {
	fh.Monitor.Focus()
	common.WriteMsg(w, "ok", http.StatusOK)
}
