// Package postcache keeps hydrated posts in MongoDB so post detail pages
// and seeded content can be served without refetching from the protocol.
package postcache

import (
	"context"
	"fmt"

	"openfeed/pkg/post"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repo struct {
	posts IMongoCollection
}

func NewPostCache(postsCol *mongo.Collection) *Repo {
	posts := &MongoCollection{
		Coll: postsCol,
	}
	return &Repo{
		posts: posts,
	}
}

// Upsert stores the latest hydrated snapshot of a post.
func (r *Repo) Upsert(ctx context.Context, p *post.Post) error {
	filter := bson.M{"id": p.Id}
	update := bson.M{"$set": p}
	_, err := r.posts.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("postcache: failed upserting post: %w", err)
	}
	return nil
}

func (r *Repo) GetById(ctx context.Context, id post.Id) (*post.Post, error) {
	p := new(post.Post)
	err := r.posts.FindOne(ctx, bson.M{"id": id}).Decode(p)
	if err != nil {
		return nil, fmt.Errorf("postcache: post not found: %w", err)
	}
	return p, nil
}

func (r *Repo) GetBySlug(ctx context.Context, slug string) (*post.Post, error) {
	p := new(post.Post)
	err := r.posts.FindOne(ctx, bson.M{"slug": slug}).Decode(p)
	if err != nil {
		return nil, fmt.Errorf("postcache: post not found: %w", err)
	}
	return p, nil
}

func (r *Repo) GetByAuthor(ctx context.Context, address string) ([]*post.Post, error) {
	authorPosts := []*post.Post{}
	filter := bson.D{{Key: "author.address", Value: address}}
	cursor, err := r.posts.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("postcache: failed finding posts: %w", err)
	}
	if err := cursor.All(ctx, &authorPosts); err != nil {
		return nil, fmt.Errorf("postcache: failed getting posts from cursor: %w", err)
	}
	return authorPosts, nil
}

func (r *Repo) Delete(ctx context.Context, id post.Id) error {
	_, err := r.posts.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("postcache: failed deleting post: %w", err)
	}
	return nil
}
