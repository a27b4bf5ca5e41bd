package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a post.
//
// Comments live in their own collection and are not removed with their post.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
	// Post is the id of the commented post
	Post   primitive.ObjectID `bson:"post" json:"post"`
	Author string             `bson:"author" json:"author"`
	Text   string             `bson:"text" json:"text"`
}

// Category blog post categories
type Category struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
	// Name is unique
	Name string `bson:"name" json:"name"`
}

// CategoryNameMaxLen is the max rune length of a category name.
const CategoryNameMaxLen = 50
