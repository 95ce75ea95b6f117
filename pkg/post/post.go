package post

import (
	"strings"
	"time"
)

type Id string

type Author struct {
	Address  string `json:"address"`
	Username string `json:"username"`
}

// Stats holds the engagement counters of a post. All fields are
// non-negative.
type Stats struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Comments  int `json:"comments"`
	Mirrors   int `json:"mirrors"`
	Quotes    int `json:"quotes"`
	Bookmarks int `json:"bookmarks"`
	Collects  int `json:"collects"`
}

// Operations are the viewer-scoped capability and state flags the
// protocol returns with a hydrated post. The zero value means
// "not hydrated yet": nothing done, nothing allowed.
type Operations struct {
	HasUpvoted    bool `json:"hasUpvoted"`
	HasBookmarked bool `json:"hasBookmarked"`
	HasReposted   bool `json:"hasReposted"`
	HasQuoted     bool `json:"hasQuoted"`
	CanComment    bool `json:"canComment"`
	CanRepost     bool `json:"canRepost"`
	CanQuote      bool `json:"canQuote"`
	CanBookmark   bool `json:"canBookmark"`
	CanCollect    bool `json:"canCollect"`
	CanDelete     bool `json:"canDelete"`
	CanTip        bool `json:"canTip"`
}

type Post struct {
	Id     Id     `json:"id"`
	Slug   string `json:"slug"`
	Author Author `json:"author"`

	// App is the address of the application the post was published through.
	App string `json:"app"`

	// CommentOn is the parent post id when this post is a comment.
	CommentOn Id `json:"commentOn,omitempty"`

	Content    string     `json:"content"`
	Tags       []string   `json:"tags,omitempty"`
	Stats      Stats      `json:"stats"`
	Operations Operations `json:"operations"`
	Created    time.Time  `json:"created"`
}

func (p *Post) IsComment() bool {
	return p.CommentOn != ""
}

// IsArticle reports whether p is an eligible top-level post: not a comment
// on another post and published through the given app.
func IsArticle(p *Post, app string) bool {
	if p == nil || p.IsComment() {
		return false
	}
	return strings.EqualFold(p.App, app)
}
