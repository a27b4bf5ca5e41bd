package media

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	pngHead  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegHead = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	pdfHead  = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
)

// fileHeader builds a parsed multipart file part.
func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="featuredImage"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["featuredImage"][0]
}

func newTestIntake(t *testing.T, maxBytes int64) (*Intake, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	intake, err := NewIntake(store, maxBytes)
	require.NoError(t, err)
	intake.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return intake, dir
}

func TestSaveFile(t *testing.T) {
	intake, dir := newTestIntake(t, 1<<20)

	url, err := intake.SaveFile(context.Background(),
		fileHeader(t, "Photo.PNG", "image/png", pngHead))
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^/uploads/1700000000123-[0-9a-z]{6}\.png$`), url)

	saved, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, URLPrefix)))
	require.NoError(t, err)
	require.Equal(t, pngHead, saved)

	rc, err := intake.Store().Open(context.Background(), strings.TrimPrefix(url, URLPrefix))
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, pngHead, got)
}

func TestSaveFileRejects(t *testing.T) {
	intake, dir := newTestIntake(t, 64)

	for name, fh := range map[string]*multipart.FileHeader{
		"declared pdf":        fileHeader(t, "a.pdf", "application/pdf", pdfHead),
		"pdf posing as png":   fileHeader(t, "a.png", "image/png", pdfHead),
		"png declared as gif": fileHeader(t, "a.gif", "image/gif", pngHead),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := intake.SaveFile(context.Background(), fh)
			require.ErrorIs(t, err, ErrUnsupportedType)
		})
	}

	big := append(append([]byte{}, jpegHead...), make([]byte, 100)...)
	_, err := intake.SaveFile(context.Background(), fileHeader(t, "a.jpg", "image/jpeg", big))
	require.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSaveStreamLimit(t *testing.T) {
	intake, _ := newTestIntake(t, 64)
	big := append(append([]byte{}, jpegHead...), make([]byte, 100)...)

	_, err := intake.Save(context.Background(), "a.jpg", "image/jpeg", bytes.NewReader(big))
	require.ErrorIs(t, err, ErrTooLarge)

	url, err := intake.Save(context.Background(), "a.JPG", "", bytes.NewReader(jpegHead))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(url, ".jpg"))
}

func TestNewNameUnique(t *testing.T) {
	intake, _ := newTestIntake(t, 64)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		name, err := intake.newName("x.webp")
		require.NoError(t, err)
		require.False(t, seen[name])
		seen[name] = true
	}
}

func TestLocalStoreOpen(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"missing.png", "../etc/passwd", "", ".."} {
		_, err = store.Open(context.Background(), name)
		require.ErrorIs(t, err, ErrNotFound, name)
	}

	require.Error(t, store.Save(context.Background(), "../x.png", bytes.NewReader(pngHead), 0, ""))
}

func TestNewIntakeValidation(t *testing.T) {
	_, err := NewIntake(nil, 1)
	require.Error(t, err)

	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	_, err = NewIntake(store, 0)
	require.Error(t, err)
}
