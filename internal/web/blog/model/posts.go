// Package model contains all the models used in the application.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DefaultFeaturedImage is used when a post is created without an upload.
	DefaultFeaturedImage = "/uploads/default-post.jpg"
	// DefaultAuthorName is shown for posts whose author cannot be resolved.
	DefaultAuthorName = "Anonymous"
	// DefaultCategoryName is shown for posts whose category cannot be resolved.
	DefaultCategoryName = "General"

	// PostTitleMaxLen is the max rune length of a title.
	PostTitleMaxLen = 100
	// PostExcerptMaxLen is the max rune length of an excerpt.
	PostExcerptMaxLen = 200
)

// Post blog posts
//
// Older documents may carry an embedded comments array,
// it is not decoded and never written, see Comment.
type Post struct {
	// ID unique identifier for the post
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	// CreatedAt time when the post was created
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	// UpdatedAt time when the post was last modified
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	// Slug is unique across all posts
	Slug          string   `bson:"slug" json:"slug"`
	Excerpt       string   `bson:"excerpt,omitempty" json:"excerpt,omitempty"`
	FeaturedImage string   `bson:"featuredImage" json:"featuredImage"`
	Author        Ref      `bson:"author" json:"author"`
	Category      Ref      `bson:"category" json:"category"`
	Tags          []string `bson:"tags" json:"tags"`
	IsPublished   bool     `bson:"isPublished" json:"isPublished"`
	ViewCount     int      `bson:"viewCount" json:"viewCount"`
}

// URL returns the public path of the post.
func (p *Post) URL() string {
	return "/posts/" + p.Slug
}

// NewPost returns a post with defaults applied.
func NewPost(now time.Time) *Post {
	return &Post{
		ID:            primitive.NewObjectID(),
		CreatedAt:     now,
		UpdatedAt:     now,
		FeaturedImage: DefaultFeaturedImage,
		Author:        InlineRef(DefaultAuthorName),
		Category:      InlineRef(DefaultCategoryName),
		Tags:          []string{},
		IsPublished:   true,
	}
}
