package routes

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/uploads"
)

// testApp is a router over an in-memory badger database. The page cache
// shares the database handle.
type testApp struct {
	t        *testing.T
	router   *mux.Router
	store    *repositories.Store
	cache    cache.Store
	sessions *auth.Sessions
	media    *uploads.Storage
	clock    time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := repositories.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	app := &testApp{
		t:        t,
		store:    repositories.NewBadgerStore(db),
		cache:    cache.NewBadger(db),
		sessions: auth.NewSessions("test-secret-test-secret", time.Hour),
		media:    uploads.New(t.TempDir(), 1<<20),
		clock:    time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	app.router, err = SetupRoutes(Options{
		Store:         app.store,
		Cache:         app.cache,
		IndexCacheTTL: 20 * time.Second,
		Sessions:      app.sessions,
		Media:         app.media,
		MediaURL:      "/media/",
		PostsPerPage:  10,
		TitleTruncate: 30,
	})
	require.NoError(t, err)
	return app
}

func (a *testApp) user(username string) *models.User {
	a.t.Helper()
	hash, err := auth.HashPassword("password-" + username)
	require.NoError(a.t, err)
	user := &models.User{Username: username, PasswordHash: hash}
	user.Stamp(a.clock)
	require.NoError(a.t, a.store.Users.Create(user))
	return user
}

func (a *testApp) group(slug string) *models.Group {
	a.t.Helper()
	group := &models.Group{Title: "Group " + slug, Slug: slug, Description: "About " + slug}
	require.NoError(a.t, a.store.Groups.Create(group))
	return group
}

func (a *testApp) post(author *models.User, text string, group *models.Group) *models.Post {
	a.t.Helper()
	a.clock = a.clock.Add(time.Minute)
	post := &models.Post{Text: text, AuthorID: author.ID, CreatedAt: a.clock}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(a.t, a.store.Posts.Create(post))
	return post
}

func (a *testApp) countPosts() int {
	a.t.Helper()
	n, err := a.store.Posts.Count(repositories.PostFilter{})
	require.NoError(a.t, err)
	return n
}

// do serves req, logged in as user when user is not nil.
func (a *testApp) do(req *http.Request, user *models.User) *httptest.ResponseRecorder {
	a.t.Helper()
	if user != nil {
		token, err := a.sessions.Issue(user)
		require.NoError(a.t, err)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) get(path string, user *models.User) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest("GET", path, nil), user)
}

func (a *testApp) postForm(path string, values url.Values, user *models.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, user)
}

// postMultipart submits fields plus an optional file under "image".
func (a *testApp) postMultipart(path string, fields map[string]string, filename string, data []byte, user *models.User) *httptest.ResponseRecorder {
	a.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(a.t, err)
		_, err = part.Write(data)
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req, user)
}

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}
