// Package media accepts image uploads and stores them locally or in S3.
package media

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	gutils "github.com/Laisky/go-utils/v6"
	"github.com/Laisky/zap"
	"github.com/gabriel-vasile/mimetype"
)

// URLPrefix is the public path uploads are served under.
const URLPrefix = "/uploads/"

const (
	sniffLen       = 512
	randomNameLen  = 6
	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var (
	// ErrUnsupportedType rejects files that are not jpeg, png or webp.
	ErrUnsupportedType = errors.New("Only image files (jpg, png, webp) are allowed")
	// ErrTooLarge rejects files over the configured size.
	ErrTooLarge = errors.New("File is too large")
	// ErrNotFound is returned when an upload does not exist.
	ErrNotFound = errors.New("upload not found")
)

// allowedTypes are the accepted image MIME types.
var allowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Store persists uploaded files by name.
type Store interface {
	Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Intake validates and stores uploaded images.
type Intake struct {
	store    Store
	maxBytes int64
	now      func() time.Time
}

// NewIntake new intake writing to store, files larger than maxBytes are rejected
func NewIntake(store Store, maxBytes int64) (*Intake, error) {
	if store == nil {
		return nil, errors.New("empty store")
	}
	if maxBytes <= 0 {
		return nil, errors.Errorf("invalid max bytes %d", maxBytes)
	}

	return &Intake{
		store:    store,
		maxBytes: maxBytes,
		now:      gutils.Clock.GetUTCNow,
	}, nil
}

// Store returns the underlying store.
func (i *Intake) Store() Store {
	return i.store
}

// SaveFile checks and stores one uploaded file, returning its public URL.
func (i *Intake) SaveFile(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > i.maxBytes {
		return "", errors.Wrapf(ErrTooLarge, "%q has %d bytes", fh.Filename, fh.Size)
	}

	declared := declaredType(fh.Header.Get("Content-Type"))
	if !allowed(declared) {
		return "", errors.Wrapf(ErrUnsupportedType, "declared %q", declared)
	}

	fp, err := fh.Open()
	if err != nil {
		return "", errors.Wrapf(err, "open upload %q", fh.Filename)
	}
	defer gutils.CloseWithLog(fp, gmw.GetLogger(ctx))

	return i.Save(ctx, fh.Filename, declared, fp)
}

// Save checks body against the image allow-list and stores it under a fresh name.
func (i *Intake) Save(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "read upload")
	}
	head = head[:n]

	sniffed := mimetype.Detect(head)
	if !allowed(sniffed.String()) {
		return "", errors.Wrapf(ErrUnsupportedType, "sniffed %q", sniffed.String())
	}
	if contentType == "" {
		contentType = sniffed.String()
	}

	// read one byte past the limit to detect oversized bodies
	rest, err := io.ReadAll(io.LimitReader(body, i.maxBytes-int64(n)+1))
	if err != nil {
		return "", errors.Wrap(err, "read upload")
	}
	size := int64(n + len(rest))
	if size > i.maxBytes {
		return "", errors.Wrapf(ErrTooLarge, "%q exceeds %d bytes", filename, i.maxBytes)
	}

	name, err := i.newName(filename)
	if err != nil {
		return "", err
	}

	content := io.MultiReader(bytes.NewReader(head), bytes.NewReader(rest))
	if err = i.store.Save(ctx, name, content, size, contentType); err != nil {
		return "", errors.Wrapf(err, "save upload %q", name)
	}

	gmw.GetLogger(ctx).Info("save upload",
		zap.String("name", name),
		zap.String("content_type", contentType),
		zap.Int64("size", size))
	return URLPrefix + name, nil
}

// newName builds `{unix millis}-{6 base36 chars}{lower-cased ext}`.
func (i *Intake) newName(original string) (string, error) {
	suffix, err := randomBase36(randomNameLen)
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(i.now().UnixMilli(), 10) + "-" + suffix +
		strings.ToLower(filepath.Ext(path.Base(filepath.ToSlash(original)))), nil
}

func randomBase36(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "read random")
	}
	for i, b := range buf {
		buf[i] = base36Alphabet[int(b)%len(base36Alphabet)]
	}

	return string(buf), nil
}

func declaredType(header string) string {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(header))
	}
	return mediaType
}

func allowed(contentType string) bool {
	for _, t := range allowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// ValidName reports whether name can address an upload.
func ValidName(name string) bool {
	return name != "" &&
		name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) &&
		!strings.ContainsRune(name, '\x00')
}
