package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallGIF is a 2x1 gif.
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

func TestInspect(t *testing.T) {
	s := New(t.TempDir(), 1024)

	u, err := s.Inspect("small.gif", bytes.NewReader(smallGIF))
	require.NoError(t, err)
	assert.Equal(t, "image/gif", u.ContentType)

	_, err = s.Inspect("notes.txt", strings.NewReader("plain text, not a picture"))
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = New(t.TempDir(), 10).Inspect("small.gif", bytes.NewReader(smallGIF))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSave(t *testing.T) {
	root := t.TempDir()
	s := New(root, 1024)
	u := &Upload{Filename: "small.gif", ContentType: "image/gif", Data: smallGIF}

	stored, err := s.Save(u)
	require.NoError(t, err)
	assert.Equal(t, "posts/small.gif", stored)

	data, err := os.ReadFile(filepath.Join(root, "posts", "small.gif"))
	require.NoError(t, err)
	assert.Equal(t, smallGIF, data)

	again, err := s.Save(u)
	require.NoError(t, err)
	assert.NotEqual(t, stored, again)
	assert.True(t, strings.HasPrefix(again, "posts/small_"), again)
	assert.True(t, strings.HasSuffix(again, ".gif"), again)

	require.NoError(t, s.Remove(stored))
	_, err = os.Stat(s.Path(stored))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Remove(stored), "removing twice is fine")
}

func TestSaveCleansName(t *testing.T) {
	s := New(t.TempDir(), 1024)

	stored, err := s.Save(&Upload{Filename: "../../etc/my pic", ContentType: "image/gif", Data: smallGIF})
	require.NoError(t, err)
	assert.Equal(t, "posts/my_pic.gif", stored)
}

func TestPathStaysUnderRoot(t *testing.T) {
	s := New("/srv/media", 1024)
	assert.Equal(t, filepath.FromSlash("/srv/media/posts/a.gif"), s.Path("posts/a.gif"))
	assert.Equal(t, filepath.FromSlash("/srv/media/etc/passwd"), s.Path("../../etc/passwd"))
}

func TestFromRequest(t *testing.T) {
	s := New(t.TempDir(), 1024)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("text", "hello"))
	fw, err := mw.CreateFormFile("image", "small.gif")
	require.NoError(t, err)
	fw.Write(smallGIF)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/create/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	u, err := s.FromRequest(req, "image")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "small.gif", u.Filename)

	plain := httptest.NewRequest(http.MethodPost, "/create/", strings.NewReader("text=hello"))
	plain.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	u, err = s.FromRequest(plain, "image")
	assert.NoError(t, err)
	assert.Nil(t, u)
}
