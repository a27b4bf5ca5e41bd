package media

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	gutils "github.com/Laisky/go-utils/v6"
)

// LocalStore keeps uploads in a directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if missing.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("empty uploads dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create uploads dir %q", dir)
	}

	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory uploads are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes body into the directory, a partial file is removed on failure.
func (s *LocalStore) Save(ctx context.Context, name string, body io.Reader, _ int64, _ string) (err error) {
	if !ValidName(name) {
		return errors.Errorf("invalid name %q", name)
	}

	fpath := filepath.Join(s.dir, name)
	fp, err := os.OpenFile(fpath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "create %q", fpath)
	}
	defer func() {
		gutils.CloseWithLog(fp, gmw.GetLogger(ctx))
		if err != nil {
			_ = os.Remove(fpath)
		}
	}()

	if _, err = io.Copy(fp, body); err != nil {
		return errors.Wrapf(err, "write %q", fpath)
	}

	return nil
}

// Open opens a stored upload.
func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if !ValidName(name) {
		return nil, errors.WithStack(ErrNotFound)
	}

	fp, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "%q", name)
		}
		return nil, errors.Wrapf(err, "open %q", name)
	}

	return fp, nil
}
