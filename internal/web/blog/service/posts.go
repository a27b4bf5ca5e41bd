package service

import (
	"context"
	"strings"

	"github.com/Laisky/blog-api/internal/web/blog/dto"
	"github.com/Laisky/blog-api/internal/web/blog/model"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// makeQuery validates list arguments and builds the post filter.
func makeQuery(cfg *dto.PostCfg) (*dto.PostQuery, *dto.PostInfo, error) {
	page, limit, err := sanitizePagination(cfg.Page, cfg.Limit, maxPostPageSize)
	if err != nil {
		return nil, nil, err
	}

	search, err := sanitizeOptionalText(cfg.Search, maxSearchLength, "search")
	if err != nil {
		return nil, nil, err
	}

	category, err := sanitizeOptionalText(cfg.Category, model.CategoryNameMaxLen, "category")
	if err != nil {
		return nil, nil, err
	}

	q := &dto.PostQuery{
		Search: search,
		Skip:   int64(page-1) * int64(limit),
		Limit:  int64(limit),
	}
	if category != "" {
		if id, err := primitive.ObjectIDFromHex(category); err == nil {
			q.CategoryID = &id
		} else {
			q.CategoryName = category
		}
	}

	return q, &dto.PostInfo{Page: page, Limit: limit}, nil
}

// ListPosts returns one page of posts and the total number of matches.
//
// The page and the count are two independent reads, the total
// may disagree with the page under concurrent writes.
func (s *Blog) ListPosts(ctx context.Context, cfg *dto.PostCfg) ([]*model.Post, *dto.PostInfo, error) {
	q, info, err := makeQuery(cfg)
	if err != nil {
		return nil, nil, err
	}

	logger := gmw.GetLogger(ctx).With(
		zap.Int("page", info.Page), zap.Int("limit", info.Limit),
		zap.String("search", q.Search),
	)

	var posts []*model.Post
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		posts, err = s.store.ListPosts(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		info.Total, err = s.store.CountPosts(gctx, q)
		return err
	})
	if err = g.Wait(); err != nil {
		return nil, nil, errors.Wrap(err, "list posts")
	}

	s.normalizeListed(ctx, posts)
	logger.Debug("list posts", zap.Int("n", len(posts)), zap.Int64("total", info.Total))
	return posts, info, nil
}

// GetPost loads a post with its author and category populated.
func (s *Blog) GetPost(ctx context.Context, id string) (*model.Post, error) {
	oid, err := parseObjectID(id, "post")
	if err != nil {
		return nil, err
	}

	post, err := s.store.GetPost(ctx, oid)
	if err != nil {
		return nil, err
	}

	s.populate(ctx, post)
	return post, nil
}

// CreatePost saves a new post written by authorID.
//
// A missing slug is derived from the title before the required fields are checked.
func (s *Blog) CreatePost(ctx context.Context,
	authorID primitive.ObjectID, in *dto.PostInput) (*model.Post, error) {
	if authorID.IsZero() {
		return nil, errors.New("empty author")
	}

	title, err := sanitizeOptionalText(deref(in.Title), model.PostTitleMaxLen, "Title")
	if err != nil {
		return nil, err
	}

	slug := deref(in.Slug)
	if strings.TrimSpace(slug) == "" {
		slug = DeriveSlug(title)
	}

	if title == "" {
		return nil, model.NewError(model.ErrValidation, "Title is required")
	}
	if slug, err = sanitizeSlug(slug); err != nil {
		return nil, err
	}

	content, err := sanitizeRequiredText(deref(in.Content), maxPostContentLength, "Content")
	if err != nil {
		return nil, err
	}
	excerpt, err := sanitizeOptionalText(deref(in.Excerpt), model.PostExcerptMaxLen, "Excerpt")
	if err != nil {
		return nil, err
	}
	category, err := categoryRef(deref(in.Category))
	if err != nil {
		return nil, err
	}

	post := model.NewPost(s.now())
	post.Title = title
	post.Slug = slug
	post.Content = content
	post.Excerpt = excerpt
	post.Author = model.RefTo(authorID)
	post.Category = category
	if in.HasTags() {
		if post.Tags, err = sanitizeTags(in.Tags); err != nil {
			return nil, err
		}
	}
	if in.IsPublished != nil {
		post.IsPublished = *in.IsPublished
	}
	if img := deref(in.FeaturedImage); img != "" {
		post.FeaturedImage = img
	}

	if err = s.store.InsertPost(ctx, post); err != nil {
		return nil, err
	}

	gmw.GetLogger(ctx).Info("create post",
		zap.String("post", post.ID.Hex()),
		zap.String("slug", post.Slug),
		zap.String("author", authorID.Hex()))
	return post, nil
}

// UpdatePost overwrites the provided fields of a post.
func (s *Blog) UpdatePost(ctx context.Context, id string, in *dto.PostInput) (*model.Post, error) {
	oid, err := parseObjectID(id, "post")
	if err != nil {
		return nil, err
	}

	set, err := s.postUpdates(in)
	if err != nil {
		return nil, err
	}

	post, err := s.store.UpdatePost(ctx, oid, set)
	if err != nil {
		return nil, err
	}

	gmw.GetLogger(ctx).Info("update post",
		zap.String("post", post.ID.Hex()),
		zap.Int("fields", len(set)-1))
	return post, nil
}

// postUpdates validates provided fields into a $set document.
func (s *Blog) postUpdates(in *dto.PostInput) (bson.D, error) {
	var set bson.D
	if in.Title != nil {
		title, err := sanitizeRequiredText(*in.Title, model.PostTitleMaxLen, "Title")
		if err != nil {
			return nil, err
		}
		set = append(set, bson.E{Key: "title", Value: title})
	}
	if in.Slug != nil {
		slug, err := sanitizeSlug(*in.Slug)
		if err != nil {
			return nil, err
		}
		set = append(set, bson.E{Key: "slug", Value: slug})
	}
	if in.Content != nil {
		content, err := sanitizeRequiredText(*in.Content, maxPostContentLength, "Content")
		if err != nil {
			return nil, err
		}
		set = append(set, bson.E{Key: "content", Value: content})
	}
	if in.Excerpt != nil {
		excerpt, err := sanitizeOptionalText(*in.Excerpt, model.PostExcerptMaxLen, "Excerpt")
		if err != nil {
			return nil, err
		}
		set = append(set, bson.E{Key: "excerpt", Value: excerpt})
	}
	if in.Category != nil {
		category, err := categoryRef(*in.Category)
		if err != nil {
			return nil, err
		}
		set = append(set, bson.E{Key: "category", Value: category})
	}
	if in.HasTags() {
		tags, err := sanitizeTags(in.Tags)
		if err != nil {
			return nil, err
		}
		set = append(set, bson.E{Key: "tags", Value: tags})
	}
	if in.IsPublished != nil {
		set = append(set, bson.E{Key: "isPublished", Value: *in.IsPublished})
	}
	if in.FeaturedImage != nil && *in.FeaturedImage != "" {
		set = append(set, bson.E{Key: "featuredImage", Value: *in.FeaturedImage})
	}

	return append(set, bson.E{Key: "updatedAt", Value: s.now()}), nil
}

// DeletePost removes a post, its comments are kept.
func (s *Blog) DeletePost(ctx context.Context, id string) error {
	oid, err := parseObjectID(id, "post")
	if err != nil {
		return err
	}

	if err = s.store.DeletePost(ctx, oid); err != nil {
		return err
	}

	gmw.GetLogger(ctx).Info("delete post", zap.String("post", oid.Hex()))
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
