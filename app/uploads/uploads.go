// Package uploads stores post images under the media root.
package uploads

import (
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"yatube/app/models"
)

var (
	ErrTooLarge = errors.New("file is too large")
	ErrNotImage = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")
)

var imageTypes = []string{"image/gif", "image/png", "image/jpeg", "image/webp", "image/bmp"}

// Upload is an inspected image waiting to be saved.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Storage writes images to Root/posts/.
type Storage struct {
	Root     string
	MaxBytes int64
}

func New(root string, maxBytes int64) *Storage {
	return &Storage{Root: root, MaxBytes: maxBytes}
}

// FromRequest inspects the multipart file in field. A missing file is not an
// error and yields nil.
func (s *Storage) FromRequest(r *http.Request, field string) (*Upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	if header.Size == 0 && header.Filename == "" {
		return nil, nil
	}
	return s.Inspect(header.Filename, file)
}

// Inspect reads src, enforces the size limit and checks that the content
// sniffs as an image.
func (s *Storage) Inspect(filename string, src io.Reader) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(src, s.MaxBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "read upload")
	}
	if int64(len(data)) > s.MaxBytes {
		return nil, ErrTooLarge
	}
	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), imageTypes...) {
		return nil, ErrNotImage
	}
	return &Upload{Filename: filename, ContentType: mtype.String(), Data: data}, nil
}

// Save writes u and returns the stored name, "posts/<file>". A taken name
// gets a short random suffix before the extension.
func (s *Storage) Save(u *Upload) (string, error) {
	dir := filepath.Join(s.Root, filepath.FromSlash(models.UploadDir))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "create upload dir")
	}

	name := cleanName(u.Filename, u.ContentType)
	for attempt := 0; ; attempt++ {
		candidate := name
		if attempt > 0 {
			ext := filepath.Ext(name)
			candidate = strings.TrimSuffix(name, ext) + "_" + uuid.NewString()[:7] + ext
		}
		dst, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) && attempt < 5 {
			continue
		}
		if err != nil {
			return "", errors.Wrap(err, "create upload file")
		}
		if _, err := dst.Write(u.Data); err != nil {
			dst.Close()
			return "", errors.Wrap(err, "write upload")
		}
		if err := dst.Close(); err != nil {
			return "", errors.Wrap(err, "write upload")
		}
		return path.Join(strings.TrimSuffix(models.UploadDir, "/"), candidate), nil
	}
}

// Remove deletes a stored image. Missing files are ignored.
func (s *Storage) Remove(stored string) error {
	if stored == "" {
		return nil
	}
	err := os.Remove(s.Path(stored))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove upload")
	}
	return nil
}

// Path is the file system location of a stored name.
func (s *Storage) Path(stored string) string {
	return filepath.Join(s.Root, filepath.FromSlash(path.Clean("/"+stored)))
}

func cleanName(filename, contentType string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20 || strings.ContainsRune(`/:*?"<>|`, r):
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = uuid.NewString()[:8]
	}
	if filepath.Ext(name) == "" {
		if mtype := mimetype.Lookup(contentType); mtype != nil {
			name += mtype.Extension()
		}
	}
	return name
}
