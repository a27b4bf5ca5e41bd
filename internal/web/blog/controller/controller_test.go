package controller

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Laisky/blog-api/internal/library/media"
	"github.com/Laisky/blog-api/internal/web/blog/dto"
	"github.com/Laisky/blog-api/internal/web/blog/model"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, header http.Header) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var got map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") &&
		strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	}
	return w, got
}

func bearer(t *testing.T, sign func(string, string) (string, error), uid primitive.ObjectID) http.Header {
	t.Helper()
	token, err := sign(uid.Hex(), "jane@example.com")
	require.NoError(t, err)
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestUserRegisterHandler(t *testing.T) {
	user := model.NewUser("Jane", "jane@example.com", "hashed")
	svc := &fakeService{user: user, token: "tok"}
	r, _ := newTestRouter(t, svc, nil)

	w, got := doJSON(t, r, http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Jane", "email": "jane@example.com", "password": "pw"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, true, got["success"])
	require.Equal(t, "User registered successfully", got["message"])
	require.Equal(t, "tok", got["token"])
	require.Equal(t, map[string]any{
		"_id":   user.ID.Hex(),
		"name":  "Jane",
		"email": "jane@example.com",
	}, got["user"])
	require.NotContains(t, w.Body.String(), "hashed")

	svc.err = model.NewError(model.ErrConflict, "User already exists")
	w, got = doJSON(t, r, http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Jane", "email": "jane@example.com", "password": "pw"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, false, got["success"])
	require.Equal(t, "User already exists", got["message"])
}

func TestUserLoginHandler(t *testing.T) {
	user := model.NewUser("Jane", "jane@example.com", "hashed")
	svc := &fakeService{user: user, token: "tok"}
	r, _ := newTestRouter(t, svc, nil)
	body := map[string]string{"email": "jane@example.com", "password": "pw"}

	w, got := doJSON(t, r, http.MethodPost, "/api/auth/login", body, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Login successful", got["message"])
	require.Equal(t, "tok", got["token"])

	for _, c := range []struct {
		err    error
		status int
		msg    string
	}{
		{errors.Wrap(model.ErrInvalidCredentials, "password mismatch"), http.StatusBadRequest, "Invalid email or password"},
		{errors.Wrap(model.ErrInvalidCredentials, "user not found"), http.StatusBadRequest, "Invalid email or password"},
		{errors.WithStack(model.ErrTooManyAttempts), http.StatusTooManyRequests, model.ErrTooManyAttempts.Error()},
		{errors.New("mongo is down"), http.StatusInternalServerError, serverErrorMessage},
	} {
		svc.err = c.err
		w, got = doJSON(t, r, http.MethodPost, "/api/auth/login", body, nil)
		require.Equal(t, c.status, w.Code)
		require.Equal(t, c.msg, got["message"])
		require.NotContains(t, w.Body.String(), "mongo")
	}
}

func TestListPostsHandler(t *testing.T) {
	post := model.NewPost(time.Now())
	post.Slug = "hello-world"
	post.Author = model.InlineRef("Jane")
	svc := &fakeService{
		posts: []*model.Post{post},
		info:  &dto.PostInfo{Total: 12, Page: 2, Limit: 5},
	}
	r, _ := newTestRouter(t, svc, nil)

	w, got := doJSON(t, r, http.MethodGet, "/api/posts?search=kenya&page=2&limit=5&category=Tech", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, &dto.PostCfg{Page: 2, Limit: 5, Search: "kenya", Category: "Tech"}, svc.listCfg)
	require.Equal(t, map[string]any{"total": float64(12), "page": float64(2), "limit": float64(5)}, got["meta"])

	data := got["data"].([]any)
	require.Len(t, data, 1)
	first := data[0].(map[string]any)
	require.Equal(t, "/posts/hello-world", first["url"])
	require.Equal(t, map[string]any{"name": "Jane"}, first["author"])
	require.Equal(t, post.ID.Hex(), first["_id"])

	svc.posts = []*model.Post{}
	_, got = doJSON(t, r, http.MethodGet, "/api/posts", nil, nil)
	require.Equal(t, []any{}, got["data"])

	for _, q := range []string{"page=abc", "limit=0", "page=1.5"} {
		w, _ = doJSON(t, r, http.MethodGet, "/api/posts?"+q, nil, nil)
		require.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestGetAndDeletePostErrors(t *testing.T) {
	svc := &fakeService{}
	r, _ := newTestRouter(t, svc, nil)

	svc.err = model.NewError(model.ErrNotFound, "Post not found")
	w, got := doJSON(t, r, http.MethodGet, "/api/posts/"+primitive.NewObjectID().Hex(), nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Post not found", got["message"])

	w, _ = doJSON(t, r, http.MethodDelete, "/api/posts/"+primitive.NewObjectID().Hex(), nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	svc.err = model.NewError(model.ErrValidation, "Invalid post id")
	w, got = doJSON(t, r, http.MethodDelete, "/api/posts/123", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid post id", got["message"])

	svc.err = nil
	w, got = doJSON(t, r, http.MethodDelete, "/api/posts/"+primitive.NewObjectID().Hex(), nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Post deleted successfully", got["message"])
}

func TestCreatePostRequiresAuth(t *testing.T) {
	svc := &fakeService{}
	r, _ := newTestRouter(t, svc, nil)

	for _, h := range []http.Header{
		nil,
		{"Authorization": []string{"Bearer garbage"}},
		{"Authorization": []string{"Basic abc"}},
	} {
		w, got := doJSON(t, r, http.MethodPost, "/api/posts", map[string]string{"title": "t"}, h)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Not authorized", got["message"])
	}
	require.Zero(t, svc.calls)
}

func TestCreatePostJSON(t *testing.T) {
	svc := &fakeService{}
	r, tokens := newTestRouter(t, svc, nil)
	uid := primitive.NewObjectID()

	w, got := doJSON(t, r, http.MethodPost, "/api/posts", map[string]any{
		"title":   "Hello, World!",
		"content": "body",
		"tags":    "go, mongo",
	}, bearer(t, tokens.Sign, uid))
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, uid, svc.authorID)
	require.Equal(t, "Hello, World!", *svc.postInput.Title)
	require.Nil(t, svc.postInput.Slug)
	require.Equal(t, []string{"go", "mongo"}, svc.postInput.Tags)
	require.Equal(t, "/posts/hello-world", got["data"].(map[string]any)["url"])

	_, _ = doJSON(t, r, http.MethodPut, "/api/posts/"+primitive.NewObjectID().Hex(), map[string]any{
		"tags":        []string{"a", "b"},
		"isPublished": false,
	}, nil)
	require.Equal(t, []string{"a", "b"}, svc.postInput.Tags)
	require.False(t, *svc.postInput.IsPublished)
	require.Nil(t, svc.postInput.Title)
}

type multipartFile struct {
	filename, contentType string
	content               []byte
}

func doMultipart(t *testing.T, r *gin.Engine, method, path string,
	fields map[string][]string, file *multipartFile, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	if file != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="featuredImage"; filename="`+file.filename+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, vs := range header {
		req.Header[k] = vs
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newTestIntake(t *testing.T) (*media.Intake, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := media.NewLocalStore(dir)
	require.NoError(t, err)
	intake, err := media.NewIntake(store, 1<<20)
	require.NoError(t, err)
	return intake, dir
}

func TestCreatePostMultipart(t *testing.T) {
	intake, dir := newTestIntake(t)
	svc := &fakeService{}
	r, tokens := newTestRouter(t, svc, intake)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

	w := doMultipart(t, r, http.MethodPost, "/api/posts", map[string][]string{
		"title":       {"Hello"},
		"content":     {"body"},
		"tags":        {"go", "web,api"},
		"isPublished": {"false"},
	}, &multipartFile{"cover.PNG", "image/png", png}, bearer(t, tokens.Sign, primitive.NewObjectID()))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	in := svc.postInput
	require.Equal(t, "Hello", *in.Title)
	require.Equal(t, []string{"go", "web", "api"}, in.Tags)
	require.False(t, *in.IsPublished)
	require.NotNil(t, in.FeaturedImage)
	require.True(t, strings.HasPrefix(*in.FeaturedImage, media.URLPrefix))
	require.True(t, strings.HasSuffix(*in.FeaturedImage, ".png"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCreatePostRejectsPDF(t *testing.T) {
	intake, dir := newTestIntake(t)
	svc := &fakeService{}
	r, tokens := newTestRouter(t, svc, intake)

	w := doMultipart(t, r, http.MethodPost, "/api/posts", map[string][]string{
		"title":   {"Hello"},
		"content": {"body"},
	}, &multipartFile{"doc.pdf", "application/pdf", []byte("%PDF-1.4\n")}, bearer(t, tokens.Sign, primitive.NewObjectID()))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, media.ErrUnsupportedType.Error(), got["message"])
	require.Zero(t, svc.calls)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCategoriesHandlers(t *testing.T) {
	svc := &fakeService{categories: []*model.Category{{ID: primitive.NewObjectID(), Name: "Art"}}}
	r, _ := newTestRouter(t, svc, nil)

	w, _ := doJSON(t, r, http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "Art", list[0]["name"])

	w, got := doJSON(t, r, http.MethodPost, "/api/categories", map[string]string{"name": "Tech"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "Tech", got["name"])
	require.NotContains(t, got, "success")

	svc.err = model.NewError(model.ErrConflict, "Error creating category")
	w, got = doJSON(t, r, http.MethodPost, "/api/categories", map[string]string{"name": "Tech"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Error creating category", got["message"])
}

func TestCommentsHandlers(t *testing.T) {
	svc := &fakeService{}
	r, _ := newTestRouter(t, svc, nil)
	postID := primitive.NewObjectID().Hex()

	w, got := doJSON(t, r, http.MethodGet, "/api/comments/"+postID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []any{}, got["data"])

	w, got = doJSON(t, r, http.MethodPost, "/api/comments",
		map[string]string{"post": postID, "author": "bob", "text": "nice"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := got["data"].(map[string]any)
	require.Equal(t, postID, data["post"])
	require.Equal(t, "nice", data["text"])

	svc.err = model.NewError(model.ErrValidation, "All fields are required.")
	w, got = doJSON(t, r, http.MethodPost, "/api/comments", map[string]string{"post": postID}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "All fields are required.", got["message"])
}

func TestErrorHandlerStack(t *testing.T) {
	setupGinTestMode()
	r := gin.New()
	r.Use(ErrorHandler(true))
	r.GET("/boom", func(ctx *gin.Context) {
		fail(ctx, errors.New("kaboom"))
	})

	w, got := doJSON(t, r, http.MethodGet, "/boom", nil, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, serverErrorMessage, got["message"])
	require.Contains(t, got["stack"], "kaboom")
}

func TestStatusOf(t *testing.T) {
	require.Equal(t, http.StatusConflict, StatusOf(model.NewError(model.ErrConflict, "dup")))
	require.Equal(t, http.StatusBadRequest, StatusOf(model.NewError(model.ErrUnsupportedMediaType, "pdf")))
	require.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("x")))
}
