package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/Laisky/blog-api/internal/web/blog/model"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^\w ]+`)
	slugSpaces       = regexp.MustCompile(` +`)
)

// DeriveSlug builds a slug from title: lower-cased, characters outside
// [A-Za-z0-9_ ] removed, each run of spaces replaced by one hyphen.
func DeriveSlug(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	return slugSpaces.ReplaceAllString(slug, "-")
}

// refNames holds resolved names of referenced users and categories.
type refNames struct {
	users      map[primitive.ObjectID]*model.User
	categories map[primitive.ObjectID]*model.Category
}

// resolveRefs loads every user and category referenced by posts.
func (s *Blog) resolveRefs(ctx context.Context, posts []*model.Post) (*refNames, error) {
	var userIDs, cateIDs []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, p := range posts {
		if p.Author.Kind() == model.RefReference && !seen[p.Author.ID()] {
			seen[p.Author.ID()] = true
			userIDs = append(userIDs, p.Author.ID())
		}
		if p.Category.Kind() == model.RefReference && !seen[p.Category.ID()] {
			seen[p.Category.ID()] = true
			cateIDs = append(cateIDs, p.Category.ID())
		}
	}

	names := &refNames{
		users:      map[primitive.ObjectID]*model.User{},
		categories: map[primitive.ObjectID]*model.Category{},
	}

	users, err := s.store.FindUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		names.users[u.ID] = u
	}

	cates, err := s.store.FindCategoriesByIDs(ctx, cateIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range cates {
		names.categories[c.ID] = c
	}

	return names, nil
}

// normalizeListed makes author and category of every post an object with a name.
//
// Inline values are kept, references are resolved to {_id,name},
// anything else falls back to Anonymous and General.
func (s *Blog) normalizeListed(ctx context.Context, posts []*model.Post) {
	names, err := s.resolveRefs(ctx, posts)
	if err != nil {
		gmw.GetLogger(ctx).Warn("resolve post references, use defaults", zap.Error(err))
		names = &refNames{}
	}

	for _, p := range posts {
		p.Author = listedRef(p.Author, model.DefaultAuthorName, func(id primitive.ObjectID) (string, bool) {
			u, ok := names.users[id]
			if !ok {
				return "", false
			}
			return u.Name, true
		})
		p.Category = listedRef(p.Category, model.DefaultCategoryName, func(id primitive.ObjectID) (string, bool) {
			c, ok := names.categories[id]
			if !ok {
				return "", false
			}
			return c.Name, true
		})
	}
}

func listedRef(ref model.Ref, fallback string,
	lookup func(primitive.ObjectID) (string, bool)) model.Ref {
	switch ref.Kind() {
	case model.RefInline:
		if ref.HasName() {
			return ref
		}
	case model.RefReference:
		if name, ok := lookup(ref.ID()); ok && name != "" {
			return ref.Populate(name, "")
		}
	}

	return model.InlineRef(fallback)
}

// populate resolves the references of a single post.
//
// Author gets name and email, category gets name. Values that are not
// inline and do not resolve become empty and render as null.
func (s *Blog) populate(ctx context.Context, p *model.Post) {
	names, err := s.resolveRefs(ctx, []*model.Post{p})
	if err != nil {
		gmw.GetLogger(ctx).Warn("populate post", zap.Error(err), zap.String("post", p.ID.Hex()))
		names = &refNames{}
	}

	switch p.Author.Kind() {
	case model.RefInline:
	case model.RefReference:
		if u, ok := names.users[p.Author.ID()]; ok {
			p.Author = p.Author.Populate(u.Name, u.Email)
		} else {
			p.Author = model.Ref{}
		}
	default:
		p.Author = model.Ref{}
	}

	switch p.Category.Kind() {
	case model.RefInline:
	case model.RefReference:
		if c, ok := names.categories[p.Category.ID()]; ok {
			p.Category = p.Category.Populate(c.Name, "")
		} else {
			p.Category = model.Ref{}
		}
	default:
		p.Category = model.Ref{}
	}
}

// categoryRef turns category input into a Ref: a hex id is a reference,
// other text an inline name, empty input the default category.
func categoryRef(raw string) (model.Ref, error) {
	name, err := sanitizeOptionalText(raw, model.CategoryNameMaxLen, "Category")
	if err != nil {
		return model.Ref{}, err
	}
	if name == "" {
		return model.InlineRef(model.DefaultCategoryName), nil
	}
	if id, err := primitive.ObjectIDFromHex(name); err == nil {
		return model.RefTo(id), nil
	}

	return model.InlineRef(name), nil
}
