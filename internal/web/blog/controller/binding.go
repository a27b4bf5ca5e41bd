package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Laisky/blog-api/internal/library/media"
	"github.com/Laisky/blog-api/internal/web/blog/dto"
	"github.com/Laisky/blog-api/internal/web/blog/model"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"
)

const (
	featuredImageField = "featuredImage"
	// maxMultipartMemory is kept in memory, larger parts spill to disk.
	maxMultipartMemory = 8 << 20
)

// postJSON is the JSON form of a post payload.
type postJSON struct {
	Title         *string         `json:"title"`
	Slug          *string         `json:"slug"`
	Content       *string         `json:"content"`
	Excerpt       *string         `json:"excerpt"`
	Category      *string         `json:"category"`
	Tags          json.RawMessage `json:"tags"`
	IsPublished   *bool           `json:"isPublished"`
	FeaturedImage *string         `json:"featuredImage"`
}

// bindPostInput reads a post payload from a multipart/urlencoded form or JSON,
// storing an uploaded featuredImage first.
func (b *Blog) bindPostInput(ctx *gin.Context) (*dto.PostInput, error) {
	switch ctx.ContentType() {
	case gin.MIMEMultipartPOSTForm, gin.MIMEPOSTForm:
		return b.bindPostForm(ctx)
	default:
		return bindPostJSON(ctx)
	}
}

func bindPostJSON(ctx *gin.Context) (*dto.PostInput, error) {
	in := new(dto.PostInput)
	if ctx.Request.ContentLength == 0 {
		return in, nil
	}

	req := new(postJSON)
	if err := ctx.ShouldBindJSON(req); err != nil {
		return nil, model.NewError(model.ErrValidation, "invalid request body")
	}

	in.Title, in.Slug, in.Content = req.Title, req.Slug, req.Content
	in.Excerpt, in.Category = req.Excerpt, req.Category
	in.IsPublished, in.FeaturedImage = req.IsPublished, req.FeaturedImage
	tags, err := decodeJSONTags(req.Tags)
	if err != nil {
		return nil, err
	}
	in.Tags = tags

	return in, nil
}

// decodeJSONTags accepts an array of strings or a comma-separated string.
func decodeJSONTags(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err == nil {
		if tags == nil {
			tags = []string{}
		}
		return tags, nil
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err != nil {
		return nil, model.NewError(model.ErrValidation, "tags must be a list of strings")
	}
	return splitTags([]string{joined}), nil
}

func (b *Blog) bindPostForm(ctx *gin.Context) (*dto.PostInput, error) {
	if ctx.ContentType() == gin.MIMEMultipartPOSTForm {
		if err := ctx.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, model.NewError(model.ErrValidation, "request body too large")
			}
			return nil, model.NewError(model.ErrValidation, "invalid multipart form")
		}
	}

	in := &dto.PostInput{
		Title:    formValue(ctx, "title"),
		Slug:     formValue(ctx, "slug"),
		Content:  formValue(ctx, "content"),
		Excerpt:  formValue(ctx, "excerpt"),
		Category: formValue(ctx, "category"),
	}
	if tags, ok := ctx.GetPostFormArray("tags"); ok {
		in.Tags = splitTags(tags)
	}
	if v := formValue(ctx, "isPublished"); v != nil && strings.TrimSpace(*v) != "" {
		published, err := strconv.ParseBool(strings.TrimSpace(*v))
		if err != nil {
			return nil, model.NewError(model.ErrValidation, "isPublished must be a boolean")
		}
		in.IsPublished = &published
	}

	url, err := b.saveUpload(ctx)
	if err != nil {
		return nil, err
	}
	if url != "" {
		in.FeaturedImage = &url
	}

	return in, nil
}

// saveUpload stores the featuredImage part if present.
func (b *Blog) saveUpload(ctx *gin.Context) (string, error) {
	form := ctx.Request.MultipartForm
	if form == nil || len(form.File[featuredImageField]) == 0 {
		return "", nil
	}
	if len(form.File[featuredImageField]) > 1 {
		return "", model.NewError(model.ErrValidation, "only one %s is allowed", featuredImageField)
	}
	for field := range form.File {
		if field != featuredImageField {
			return "", model.NewError(model.ErrValidation, "unexpected file field %q", field)
		}
	}

	url, err := b.uploads.SaveFile(ctx, form.File[featuredImageField][0])
	switch {
	case errors.Is(err, media.ErrUnsupportedType):
		return "", model.NewError(model.ErrUnsupportedMediaType, "%s", media.ErrUnsupportedType.Error())
	case errors.Is(err, media.ErrTooLarge):
		return "", model.NewError(model.ErrValidation, "%s", media.ErrTooLarge.Error())
	case err != nil:
		return "", errors.Wrap(err, "save featured image")
	}

	return url, nil
}

func formValue(ctx *gin.Context, key string) *string {
	if v, ok := ctx.GetPostForm(key); ok {
		return &v
	}
	return nil
}

// splitTags flattens repeated and comma-separated tag values.
func splitTags(values []string) []string {
	tags := []string{}
	for _, v := range values {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
