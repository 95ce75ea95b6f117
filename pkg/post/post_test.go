package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const app = "0xA11CE000000000000000000000000000000000aa"

func TestIsArticle(t *testing.T) {
	cases := []struct {
		name string
		post *Post
		want bool
	}{
		{
			name: "top-level post from the app",
			post: &Post{Id: "1", App: app},
			want: true,
		},
		{
			name: "app address compared case-insensitively",
			post: &Post{Id: "1", App: "0xa11ce000000000000000000000000000000000AA"},
			want: true,
		},
		{
			name: "comment is excluded even from the right app",
			post: &Post{Id: "1", App: app, CommentOn: "parent"},
			want: false,
		},
		{
			name: "post from another app",
			post: &Post{Id: "1", App: "0x000000000000000000000000000000000000dead"},
			want: false,
		},
		{
			name: "nil post",
			post: nil,
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsArticle(tc.post, app))
		})
	}
}

func TestIsComment(t *testing.T) {
	assert.False(t, (&Post{Id: "1"}).IsComment())
	assert.True(t, (&Post{Id: "1", CommentOn: "parent"}).IsComment())
}
