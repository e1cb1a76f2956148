package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/app/auth"
	"yatube/app/repositories"
)

func TestPublicPages(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	group := app.group("cats")
	post := app.post(author, "Cats are the best", group)

	pages := []struct {
		name  string
		path  string
		title string
	}{
		{"index", "/", "Latest updates on the site"},
		{"group", "/group/cats/", group.Title},
		{"profile", "/profile/leo/", "leo"},
		{"detail", "/posts/" + strconv.Itoa(post.ID) + "/", "Cats are the best"},
		{"about author", "/about/author/", "About the author"},
		{"about tech", "/about/tech/", "Technologies"},
		{"login", "/auth/login/", "Log in"},
		{"signup", "/auth/signup/", "Sign up"},
	}
	for _, tc := range pages {
		t.Run(tc.name, func(t *testing.T) {
			rr := app.get(tc.path, nil)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.title)
			assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
		})
	}
}

func TestUnknownPagesRenderCustom404(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	app.post(author, "hello", nil)

	for _, path := range []string{"/unexisting_page/", "/posts/999/", "/group/nope/", "/profile/nobody/"} {
		t.Run(path, func(t *testing.T) {
			rr := app.get(path, nil)
			assert.Equal(t, http.StatusNotFound, rr.Code)
			assert.Contains(t, rr.Body.String(), "Custom 404")
		})
	}
}

func TestMissingTrailingSlashRedirects(t *testing.T) {
	app := newTestApp(t)
	rr := app.get("/about/author", nil)
	assert.Equal(t, http.StatusMovedPermanently, rr.Code)
	assert.Equal(t, "/about/author/", rr.Header().Get("Location"))
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	post := app.post(author, "hello", nil)
	id := strconv.Itoa(post.ID)

	for _, path := range []string{"/create/", "/posts/" + id + "/edit/", "/follow/", "/profile/leo/follow/"} {
		t.Run(path, func(t *testing.T) {
			rr := app.get(path, nil)
			assert.Equal(t, http.StatusFound, rr.Code)
			assert.Equal(t, "/auth/login/?next="+url.QueryEscape(path), rr.Header().Get("Location"))
		})
	}

	rr := app.postForm("/posts/"+id+"/comment/", url.Values{"text": {"hi"}}, nil)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Location"), "/auth/login/"))
	comments, err := app.store.Comments.ListByPost(post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCreatePost(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	group := app.group("cats")

	rr := app.get("/create/", author)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `enctype="multipart/form-data"`)

	before := app.countPosts()
	rr = app.postMultipart("/create/", map[string]string{
		"text":  "A brand new post",
		"group": strconv.Itoa(group.ID),
	}, "small.gif", smallGIF, author)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/profile/leo/", rr.Header().Get("Location"))
	assert.Equal(t, before+1, app.countPosts())

	posts, err := app.store.Posts.List(repositories.PostFilter{}, 1, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	created := posts[0]
	assert.Equal(t, "A brand new post", created.Text)
	assert.Equal(t, author.ID, created.AuthorID)
	require.NotNil(t, created.GroupID)
	assert.Equal(t, group.ID, *created.GroupID)
	assert.True(t, strings.HasPrefix(created.Image, "posts/"), created.Image)

	_, err = os.Stat(app.media.Path(created.Image))
	assert.NoError(t, err)

	detail := app.get("/posts/"+strconv.Itoa(created.ID)+"/", nil)
	assert.Contains(t, detail.Body.String(), "/media/"+created.Image)

	file := app.get("/media/"+created.Image, nil)
	assert.Equal(t, http.StatusOK, file.Code)
	assert.Equal(t, smallGIF, file.Body.Bytes())
}

func TestCreatePostInvalid(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")

	rr := app.postMultipart("/create/", map[string]string{"text": "   ", "group": "999"}, "", nil, author)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "This field is required.")
	assert.Equal(t, 0, app.countPosts())

	rr = app.postMultipart("/create/", map[string]string{"text": "words"}, "notes.txt", []byte("plain text"), author)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, app.countPosts())
}

func TestEditPost(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	other := app.user("max")
	post := app.post(author, "original", nil)
	path := "/posts/" + strconv.Itoa(post.ID) + "/edit/"
	detail := "/posts/" + strconv.Itoa(post.ID) + "/"

	t.Run("non-author is redirected and nothing changes", func(t *testing.T) {
		rr := app.get(path, other)
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, detail, rr.Header().Get("Location"))

		rr = app.postMultipart(path, map[string]string{"text": "hacked"}, "", nil, other)
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, detail, rr.Header().Get("Location"))

		stored, err := app.store.Posts.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "original", stored.Text)
	})

	t.Run("author sees the filled form", func(t *testing.T) {
		rr := app.get(path, author)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "original")
	})

	t.Run("author saves", func(t *testing.T) {
		rr := app.postMultipart(path, map[string]string{"text": "edited"}, "", nil, author)
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, detail, rr.Header().Get("Location"))

		stored, err := app.store.Posts.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", stored.Text)
		assert.True(t, stored.CreatedAt.Equal(post.CreatedAt))
		assert.Equal(t, 1, app.countPosts())
	})
}

func TestDeletePost(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	other := app.user("max")
	post := app.post(author, "short lived", nil)
	path := "/posts/" + strconv.Itoa(post.ID) + "/delete/"

	rr := app.postForm(path, url.Values{}, other)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, 1, app.countPosts())

	rr = app.postForm(path, url.Values{}, author)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/profile/leo/", rr.Header().Get("Location"))
	assert.Equal(t, 0, app.countPosts())
}

func TestAddComment(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	reader := app.user("max")
	post := app.post(author, "discuss", nil)
	id := strconv.Itoa(post.ID)

	rr := app.postForm("/posts/"+id+"/comment/", url.Values{"text": {"Nice one"}}, reader)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/posts/"+id+"/", rr.Header().Get("Location"))

	rr = app.postForm("/posts/"+id+"/comment/", url.Values{"text": {""}}, reader)
	assert.Equal(t, http.StatusFound, rr.Code)

	comments, err := app.store.Comments.ListByPost(post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Nice one", comments[0].Text)
	assert.Equal(t, reader.ID, comments[0].AuthorID)

	detail := app.get("/posts/"+id+"/", nil)
	assert.Contains(t, detail.Body.String(), "Nice one")

	rr = app.postForm("/posts/999/comment/", url.Values{"text": {"lost"}}, reader)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestIndexCache(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	app.post(author, "first post", nil)

	rr := app.get("/", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	assert.Contains(t, rr.Body.String(), "first post")

	app.post(author, "second post", nil)
	rr = app.get("/", nil)
	assert.Equal(t, "HIT", rr.Header().Get("X-Cache"))
	assert.NotContains(t, rr.Body.String(), "second post")

	// Other pages and other viewers are cached separately.
	assert.Contains(t, app.get("/?page=1", nil).Body.String(), "second post")
	assert.Contains(t, app.get("/", author).Body.String(), "second post")

	require.NoError(t, app.cache.Clear(context.Background()))
	rr = app.get("/", nil)
	assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
	assert.Contains(t, rr.Body.String(), "second post")
}

func TestIndexPagination(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	for i := 0; i < 13; i++ {
		app.post(author, "post number "+strconv.Itoa(i), nil)
	}

	first := app.get("/", nil).Body.String()
	assert.Equal(t, 10, strings.Count(first, `class="post"`))
	assert.Contains(t, first, "post number 12")

	second := app.get("/?page=2", nil).Body.String()
	assert.Equal(t, 3, strings.Count(second, `class="post"`))
	assert.Contains(t, second, "post number 0")

	// Out of range pages fall back to the last page.
	last := app.get("/?page=99", nil).Body.String()
	assert.Equal(t, 3, strings.Count(last, `class="post"`))
}

func TestFollowFeed(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	follower := app.user("max")
	stranger := app.user("eve")
	app.post(author, "for my followers", nil)

	rr := app.get("/profile/leo/follow/", follower)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/follow/", rr.Header().Get("Location"))

	following, err := app.store.Follows.Exists(follower.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, following)

	assert.Contains(t, app.get("/follow/", follower).Body.String(), "for my followers")
	assert.NotContains(t, app.get("/follow/", stranger).Body.String(), "for my followers")

	// Following twice or following yourself does nothing.
	app.get("/profile/leo/follow/", follower)
	app.get("/profile/leo/follow/", author)
	n, err := app.store.Follows.CountByUser(follower.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = app.store.Follows.CountByUser(author.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, app.get("/profile/max/", nil).Body.String(), "Following: 1")
	assert.Contains(t, app.get("/profile/leo/", nil).Body.String(), "Following: 0")

	rr = app.get("/profile/leo/unfollow/", follower)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.NotContains(t, app.get("/follow/", follower).Body.String(), "for my followers")

	rr = app.get("/profile/nobody/follow/", follower)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSignupAndLogin(t *testing.T) {
	app := newTestApp(t)

	rr := app.postForm("/auth/signup/", url.Values{
		"first_name": {"Leo"},
		"last_name":  {"Tolstoy"},
		"username":   {"leo"},
		"email":      {"leo@example.com"},
		"password1":  {"war-and-peace"},
		"password2":  {"war-and-peace"},
	}, nil)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Contains(t, rr.Header().Get("Set-Cookie"), "yatube_session=")

	user, err := app.store.Users.GetByUsername("leo")
	require.NoError(t, err)
	assert.Equal(t, "Leo Tolstoy", user.FullName())

	rr = app.postForm("/auth/signup/", url.Values{
		"username":  {"leo"},
		"password1": {"war-and-peace"},
		"password2": {"war-and-peace"},
	}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "A user with that username already exists.")

	rr = app.postForm("/auth/login/", url.Values{"username": {"leo"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Please enter a correct username and password.")

	rr = app.postForm("/auth/login/", url.Values{
		"username": {"leo"},
		"password": {"war-and-peace"},
		"next":     {"/follow/"},
	}, nil)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/follow/", rr.Header().Get("Location"))

	rr = app.get("/auth/logout/", user)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestRequestIDHeader(t *testing.T) {
	app := newTestApp(t)
	rr := app.get("/about/tech/", nil)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestConcurrentCreatePost(t *testing.T) {
	app := newTestApp(t)
	author := app.user("leo")
	token, err := app.sessions.Issue(author)
	require.NoError(t, err)

	const n = 20
	codes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		req := httptest.NewRequest("POST", "/create/", strings.NewReader(url.Values{"text": {"post " + strconv.Itoa(i)}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := httptest.NewRecorder()
			app.router.ServeHTTP(rr, req)
			codes <- rr.Code
		}()
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		assert.Equal(t, http.StatusFound, code)
	}
	assert.Equal(t, n, app.countPosts())
}
