package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/Laisky/blog-api/internal/web/blog/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// defaultPostPageSize is used when the caller does not ask for a size.
	defaultPostPageSize = 10
	// maxPostPageSize caps the number of posts returned in one page.
	maxPostPageSize = 100
	// maxPostSlugLength caps the length of post slugs.
	maxPostSlugLength = 200
	// maxPostContentLength caps the length of post content.
	maxPostContentLength = 1 << 20
	// maxPostTagLength caps the length of post tags.
	maxPostTagLength = 100
	// maxPostTags caps the number of tags of a post.
	maxPostTags = 50
	// maxSearchLength caps the length of search terms.
	maxSearchLength = 256
	// maxCommentTextLength caps the length of comment text.
	maxCommentTextLength = 10000
	// maxCommentAuthorLength caps the length of comment author names.
	maxCommentAuthorLength = 100
	// maxUserEmailLength caps the length of user emails.
	maxUserEmailLength = 254
	// maxUserPasswordBytes is the longest password bcrypt accepts.
	maxUserPasswordBytes = 72
	// maxUserNameLength caps the length of user display names.
	maxUserNameLength = 128
)

// sanitizeOptionalText trims input, checks for null bytes, enforces maxLen runes, and returns the sanitized value.
func sanitizeOptionalText(input string, maxLen int, field string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", nil
	}
	if strings.ContainsRune(trimmed, '\x00') {
		return "", model.NewError(model.ErrValidation, "%s contains invalid null byte", field)
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return "", model.NewError(model.ErrValidation, "%s cannot be more than %d characters", field, maxLen)
	}
	return trimmed, nil
}

// sanitizeRequiredText trims input, enforces maxLen runes, and returns the sanitized value or an error.
func sanitizeRequiredText(input string, maxLen int, field string) (string, error) {
	trimmed, err := sanitizeOptionalText(input, maxLen, field)
	if err != nil {
		return "", err
	}
	if trimmed == "" {
		return "", model.NewError(model.ErrValidation, "%s is required", field)
	}
	return trimmed, nil
}

// sanitizePagination applies defaults to page and size and validates their bounds.
func sanitizePagination(page, size, maxSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if size == 0 {
		size = defaultPostPageSize
	}
	if page < 1 {
		return 0, 0, model.NewError(model.ErrValidation, "page must be a positive integer")
	}
	if size < 1 || size > maxSize {
		return 0, 0, model.NewError(model.ErrValidation, "limit must be within [1~%d]", maxSize)
	}
	return page, size, nil
}

// parseObjectID validates a hex id of the named entity.
func parseObjectID(id, entity string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, model.NewError(model.ErrValidation, "Invalid %s id", entity)
	}
	return oid, nil
}

// sanitizeSlug keeps an explicit slug verbatim, rejecting blank or oversized values.
func sanitizeSlug(slug string) (string, error) {
	if strings.TrimSpace(slug) == "" {
		return "", model.NewError(model.ErrValidation, "Slug is required")
	}
	if strings.ContainsRune(slug, '\x00') {
		return "", model.NewError(model.ErrValidation, "Slug contains invalid null byte")
	}
	if utf8.RuneCountInString(slug) > maxPostSlugLength {
		return "", model.NewError(model.ErrValidation, "Slug cannot be more than %d characters", maxPostSlugLength)
	}
	return slug, nil
}

// sanitizeTags trims tags and drops empty ones.
func sanitizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag, err := sanitizeOptionalText(tag, maxPostTagLength, "Tag")
		if err != nil {
			return nil, err
		}
		if tag != "" {
			out = append(out, tag)
		}
	}
	if len(out) > maxPostTags {
		return nil, model.NewError(model.ErrValidation, "a post cannot have more than %d tags", maxPostTags)
	}
	return out, nil
}

// sanitizeEmail trims and validates an email address, returning the lower-cased address.
func sanitizeEmail(email string) (string, error) {
	trimmed, err := sanitizeRequiredText(email, maxUserEmailLength, "Email")
	if err != nil {
		return "", err
	}
	parsed, err := mail.ParseAddress(trimmed)
	if err != nil || parsed.Address != trimmed {
		return "", model.NewError(model.ErrValidation, "Email is invalid")
	}
	return strings.ToLower(parsed.Address), nil
}

// sanitizePassword checks a password is present and fits bcrypt.
func sanitizePassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", model.NewError(model.ErrValidation, "Password is required")
	}
	if len(password) > maxUserPasswordBytes {
		return "", model.NewError(model.ErrValidation, "Password cannot be longer than %d bytes", maxUserPasswordBytes)
	}
	return password, nil
}
