package comments

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"openfeed/pkg/common"
	"openfeed/pkg/logger"
	"openfeed/pkg/post"
	"openfeed/pkg/poststate"
	"openfeed/pkg/protocol"
)

// Handler keeps one paginator per open thread for the lifetime of the
// process, mirroring the per-post thread state a client session holds.
type Handler struct {
	client protocol.Client
	store  *poststate.Store

	mu      sync.Mutex
	threads map[post.Id]*Paginator
}

func NewHandler(client protocol.Client, store *poststate.Store) *Handler {
	return &Handler{
		client:  client,
		store:   store,
		threads: make(map[post.Id]*Paginator),
	}
}

func (h *Handler) thread(id post.Id) (*Paginator, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.threads[id]
	if !ok {
		p = NewPaginator(h.client, h.store, id)
		h.threads[id] = p
	}
	return p, !ok
}

type threadResponse struct {
	Comments []*post.Post `json:"comments"`
	HasMore  bool         `json:"hasMore"`
	Loading  bool         `json:"loading"`
	Error    string       `json:"error,omitempty"`
}

func respond(w http.ResponseWriter, p *Paginator) {
	common.WriteRespJSON(w, threadResponse{
		Comments: p.Comments(),
		HasMore:  p.HasMore(),
		Loading:  p.Loading(),
		Error:    p.Err(),
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	postId := post.Id(mux.Vars(r)["post_id"])
	p, fresh := h.thread(postId)
	if fresh {
		if err := p.Fetch(r.Context()); err != nil {
			logger.Log(r.Context()).Errorf("can't fetch comments for post %s: %v", postId, err)
		}
	}
	respond(w, p)
}

func (h *Handler) LoadMore(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	postId := post.Id(mux.Vars(r)["post_id"])
	p, _ := h.thread(postId)
	if err := p.LoadMore(r.Context()); err != nil {
		logger.Log(r.Context()).Errorf("can't load more comments for post %s: %v", postId, err)
	}
	respond(w, p)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	postId := post.Id(mux.Vars(r)["post_id"])
	p, _ := h.thread(postId)
	if err := p.Refresh(r.Context()); err != nil {
		logger.Log(r.Context()).Errorf("can't refresh comments for post %s: %v", postId, err)
	}
	respond(w, p)
}
