// Package protocol talks to the decentralized social-graph API. The rest
// of the app treats it as an opaque collaborator behind the Client
// interface.
package protocol

import (
	"context"

	"openfeed/pkg/post"
)

type ReactionType string

const ReactionUpvote ReactionType = "UPVOTE"

type ReferenceType string

const ReferenceCommentOn ReferenceType = "COMMENT_ON"

type PageSize int

const (
	PageSizeTen   PageSize = 10
	PageSizeFifty PageSize = 50
)

// PostsFilter describes the server-side selection criteria of a fetch.
// It is built fresh for every request and never mutated afterwards.
type PostsFilter struct {
	Apps        []string `json:"apps,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	SearchQuery string   `json:"searchQuery,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type PostsRequest struct {
	Filter   PostsFilter `json:"filter"`
	PageSize PageSize    `json:"pageSize,omitempty"`
	Cursor   string      `json:"cursor,omitempty"`
}

type ReferencesRequest struct {
	ReferencedPost post.Id         `json:"referencedPost"`
	ReferenceTypes []ReferenceType `json:"referenceTypes"`
	Cursor         string          `json:"cursor,omitempty"`
}

// Page is one fetched slice of posts. Next is the opaque cursor for the
// following page, empty when the result set is exhausted.
type Page struct {
	Items []*post.Post `json:"items"`
	Next  string       `json:"next,omitempty"`
}

type Client interface {
	FetchPosts(ctx context.Context, req PostsRequest) (*Page, error)
	FetchPostReferences(ctx context.Context, req ReferencesRequest) (*Page, error)
	FetchPost(ctx context.Context, id post.Id) (*post.Post, error)

	AddReaction(ctx context.Context, id post.Id, reaction ReactionType) error
	UndoReaction(ctx context.Context, id post.Id, reaction ReactionType) error
	BookmarkPost(ctx context.Context, id post.Id) error
	UndoBookmarkPost(ctx context.Context, id post.Id) error
}
