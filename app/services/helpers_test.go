package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/uploads"
)

type fixture struct {
	store    *repositories.Store
	media    *uploads.Storage
	posts    *PostService
	comments *CommentService
	follows  *FollowService
	groups   *GroupService
	users    *UserService
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repositories.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := repositories.NewBadgerStore(db)
	media := uploads.New(t.TempDir(), 1<<20)
	f := &fixture{
		store:    store,
		media:    media,
		posts:    NewPostService(store, media, 3),
		comments: NewCommentService(store.Comments, store.Posts),
		follows:  NewFollowService(store.Follows, store.Users),
		groups:   NewGroupService(store.Groups),
		users:    NewUserService(store.Users),
		clock:    time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	// Each post gets its own second so ordering is deterministic.
	f.posts.now = func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	f.comments.now = f.posts.now
	return f
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := f.users.CreateUser(username, "password-"+username)
	require.NoError(t, err)
	return user
}

func (f *fixture) group(t *testing.T, slug string) *models.Group {
	t.Helper()
	group, err := f.groups.CreateGroup("Group "+slug, slug, "")
	require.NoError(t, err)
	return group
}

func (f *fixture) post(t *testing.T, author *models.User, text string, group *models.Group) *models.Post {
	t.Helper()
	post := &models.Post{Text: text}
	require.NoError(t, post.SetAuthor(author))
	post.SetGroup(group)
	post.Stamp(f.posts.now())
	require.NoError(t, f.store.Posts.Create(post))
	return post
}

// smallGIF is a 2x1 gif.
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}
