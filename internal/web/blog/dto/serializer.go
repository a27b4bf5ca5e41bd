// Package dto holds the values passed between controller, service and dao.
package dto

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostInfo pagination meta of a post listing
type PostInfo struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// PostCfg raw list arguments from the caller
type PostCfg struct {
	Page, Limit      int
	Search, Category string
}

// PostQuery a validated post filter
type PostQuery struct {
	// Search matches title or content as a case-insensitive substring
	Search string
	// CategoryID matches a stored reference, or the same hex stored as a string
	CategoryID *primitive.ObjectID
	// CategoryName matches an inline {name} or a bare string
	CategoryName string
	Skip, Limit  int64
}

// PostInput fields of a post create or update.
//
// nil means the field was not provided.
type PostInput struct {
	Title         *string
	Slug          *string
	Content       *string
	Excerpt       *string
	Category      *string
	Tags          []string
	IsPublished   *bool
	FeaturedImage *string
}

// HasTags reports whether tags were provided.
func (in *PostInput) HasTags() bool {
	return in.Tags != nil
}
