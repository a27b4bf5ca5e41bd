package service

import (
	"context"
	"strings"

	"github.com/Laisky/blog-api/internal/web/blog/model"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListComments returns the comments of a post, newest first.
// An unknown post yields an empty list.
func (s *Blog) ListComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	oid, err := parseObjectID(postID, "post")
	if err != nil {
		return nil, err
	}

	return s.store.ListComments(ctx, oid)
}

// CreateComment adds a comment to a post. The post is not required to exist.
func (s *Blog) CreateComment(ctx context.Context,
	postID, author, text string) (*model.Comment, error) {
	postID, author, text = strings.TrimSpace(postID), strings.TrimSpace(author), strings.TrimSpace(text)
	if postID == "" || author == "" || text == "" {
		return nil, model.NewError(model.ErrValidation, "All fields are required.")
	}

	oid, err := parseObjectID(postID, "post")
	if err != nil {
		return nil, err
	}
	if author, err = sanitizeRequiredText(author, maxCommentAuthorLength, "Author"); err != nil {
		return nil, err
	}
	if text, err = sanitizeRequiredText(text, maxCommentTextLength, "Text"); err != nil {
		return nil, err
	}

	now := s.now()
	c := &model.Comment{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		Post:      oid,
		Author:    author,
		Text:      text,
	}
	if err = s.store.InsertComment(ctx, c); err != nil {
		return nil, err
	}

	gmw.GetLogger(ctx).Info("create comment",
		zap.String("post", oid.Hex()),
		zap.String("comment", c.ID.Hex()))
	return c, nil
}
