package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Laisky/blog-api/internal/web/blog/dto"
	"github.com/Laisky/blog-api/internal/web/blog/model"

	"github.com/Laisky/errors/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory Store following the dao semantics.
type memStore struct {
	mu         sync.Mutex
	posts      []*model.Post
	users      []*model.User
	categories []*model.Category
	comments   []*model.Comment

	failLookups bool
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) match(p *model.Post, q *dto.PostQuery) bool {
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Title), term) &&
			!strings.Contains(strings.ToLower(p.Content), term) {
			return false
		}
	}

	switch {
	case q.CategoryID != nil:
		switch p.Category.Kind() {
		case model.RefReference:
			return p.Category.ID() == *q.CategoryID
		case model.RefLegacy:
			return p.Category.Legacy() == q.CategoryID.Hex()
		default:
			return false
		}
	case q.CategoryName != "":
		switch p.Category.Kind() {
		case model.RefInline:
			return p.Category.Name() == q.CategoryName
		case model.RefLegacy:
			return p.Category.Legacy() == q.CategoryName
		default:
			return false
		}
	}

	return true
}

func (m *memStore) matching(q *dto.PostQuery) []*model.Post {
	var out []*model.Post
	for _, p := range m.posts {
		if m.match(p, q) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *memStore) ListPosts(_ context.Context, q *dto.PostQuery) ([]*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.matching(q)
	out := []*model.Post{}
	for i := q.Skip; i < int64(len(all)) && int64(len(out)) < q.Limit; i++ {
		cp := *all[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) CountPosts(_ context.Context, q *dto.PostQuery) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(q))), nil
}

func (m *memStore) GetPost(_ context.Context, id primitive.ObjectID) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, model.NewError(model.ErrNotFound, "Post not found")
}

func (m *memStore) InsertPost(_ context.Context, post *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.Slug == post.Slug {
			return model.NewError(model.ErrConflict, "Slug %q already exists", post.Slug)
		}
	}
	cp := *post
	m.posts = append(m.posts, &cp)
	return nil
}

func (m *memStore) UpdatePost(_ context.Context, id primitive.ObjectID, set bson.D) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID != id {
			continue
		}
		for _, e := range set {
			switch e.Key {
			case "title":
				p.Title = e.Value.(string)
			case "slug":
				p.Slug = e.Value.(string)
			case "content":
				p.Content = e.Value.(string)
			case "excerpt":
				p.Excerpt = e.Value.(string)
			case "category":
				p.Category = e.Value.(model.Ref)
			case "tags":
				p.Tags = e.Value.([]string)
			case "isPublished":
				p.IsPublished = e.Value.(bool)
			case "featuredImage":
				p.FeaturedImage = e.Value.(string)
			case "updatedAt":
				p.UpdatedAt = e.Value.(time.Time)
			default:
				return nil, errors.Errorf("unexpected field %q", e.Key)
			}
		}
		cp := *p
		return &cp, nil
	}
	return nil, model.NewError(model.ErrNotFound, "Post not found")
}

func (m *memStore) DeletePost(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.posts {
		if p.ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return model.NewError(model.ErrNotFound, "Post not found")
}

func (m *memStore) FindUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errors.Wrapf(model.ErrNotFound, "user %q", email)
}

func (m *memStore) InsertUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, old := range m.users {
		if old.Email == u.Email {
			return model.NewError(model.ErrConflict, "User already exists")
		}
	}
	cp := *u
	m.users = append(m.users, &cp)
	return nil
}

func (m *memStore) FindUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLookups {
		return nil, errors.New("lookup failed")
	}
	out := []*model.User{}
	for _, u := range m.users {
		for _, id := range ids {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (m *memStore) ListCategories(context.Context) ([]*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]*model.Category{}, m.categories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) InsertCategory(_ context.Context, cate *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Name == cate.Name {
			return model.NewError(model.ErrConflict, "Error creating category")
		}
	}
	m.categories = append(m.categories, cate)
	return nil
}

func (m *memStore) FindCategoriesByIDs(_ context.Context, ids []primitive.ObjectID) ([]*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLookups {
		return nil, errors.New("lookup failed")
	}
	out := []*model.Category{}
	for _, c := range m.categories {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (m *memStore) ListComments(_ context.Context, postID primitive.ObjectID) ([]*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Comment{}
	for _, c := range m.comments {
		if c.Post == postID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) InsertComment(_ context.Context, c *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments = append(m.comments, c)
	return nil
}

// memLimiter is an in-memory LoginLimiter.
type memLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (l *memLimiter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts == nil {
		l.counts = map[string]int64{}
	}
	l.counts[key]++
	return l.counts[key], nil
}

func (l *memLimiter) Count(_ context.Context, key string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[key], nil
}

func (l *memLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counts, key)
	return nil
}
