package repositories

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"yatube/app/models"
)

// OpenBadger opens the badger database at path. An empty path opens an
// in-memory database, which is what tests use.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger at %q", path)
	}
	return db, nil
}

// NewBadgerStore wires every repository to db. The caller owns db and closes
// it; the page cache may share the same handle.
func NewBadgerStore(db *badger.DB) *Store {
	return &Store{
		Users:    NewBadgerUserRepository(db),
		Groups:   NewBadgerGroupRepository(db),
		Posts:    NewBadgerPostRepository(db),
		Comments: NewBadgerCommentRepository(db),
		Follows:  NewBadgerFollowRepository(db),
	}
}

// userRecord is the stored form of a user. The password hash is kept out of
// models.User's JSON so it never leaks through the API encoder.
type userRecord struct {
	User         models.User `json:"user"`
	PasswordHash string      `json:"passwordHash"`
}

func loadUser(txn *badger.Txn, id int) (*models.User, error) {
	var rec userRecord
	if err := getEntity(txn, entityKey(UserKeyPrefix, id), &rec); err != nil {
		return nil, err
	}
	user := rec.User
	user.PasswordHash = rec.PasswordHash
	return &user, nil
}

func loadGroup(txn *badger.Txn, id int) (*models.Group, error) {
	var group models.Group
	if err := getEntity(txn, entityKey(GroupKeyPrefix, id), &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func loadPost(txn *badger.Txn, id int) (*models.Post, error) {
	var post models.Post
	if err := getEntity(txn, entityKey(PostKeyPrefix, id), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// barePost strips relations so only foreign keys are persisted.
func barePost(post *models.Post) models.Post {
	stored := *post
	stored.Author = nil
	stored.Group = nil
	stored.Comments = nil
	return stored
}

func bareComment(comment *models.Comment) models.Comment {
	stored := *comment
	stored.Author = nil
	stored.Post = nil
	return stored
}

// hydratePosts attaches Author and Group to each post, loading every
// referenced row once.
func hydratePosts(txn *badger.Txn, posts []*models.Post) error {
	users := make(map[int]*models.User)
	groups := make(map[int]*models.Group)
	for _, post := range posts {
		author, ok := users[post.AuthorID]
		if !ok {
			var err error
			author, err = loadUser(txn, post.AuthorID)
			if err != nil && err != ErrNotFound {
				return err
			}
			users[post.AuthorID] = author
		}
		post.Author = author

		post.Group = nil
		if post.GroupID == nil {
			continue
		}
		group, ok := groups[*post.GroupID]
		if !ok {
			var err error
			group, err = loadGroup(txn, *post.GroupID)
			if err != nil && err != ErrNotFound {
				return err
			}
			groups[*post.GroupID] = group
		}
		post.Group = group
	}
	return nil
}

func hydrateComments(txn *badger.Txn, comments []*models.Comment) error {
	users := make(map[int]*models.User)
	for _, comment := range comments {
		author, ok := users[comment.AuthorID]
		if !ok {
			var err error
			author, err = loadUser(txn, comment.AuthorID)
			if err != nil && err != ErrNotFound {
				return err
			}
			users[comment.AuthorID] = author
		}
		comment.Author = author
	}
	return nil
}

// sortPosts orders newest first, breaking ties by the higher ID.
func sortPosts(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// sortComments orders oldest first.
func sortComments(comments []*models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
}

// parsePairKey splits "<prefix><a>:<b>" into its two IDs.
func parsePairKey(key []byte, prefix string) (int, int, error) {
	parts := strings.SplitN(strings.TrimPrefix(string(key), prefix), ":", 2)
	if len(parts) != 2 {
		return 0, 0, errors.Errorf("malformed key %q", key)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "malformed key %q", key)
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "malformed key %q", key)
	}
	return a, b, nil
}

// deleteCommentTx removes a comment row and its ID index.
func deleteCommentTx(txn *badger.Txn, postID, id int) error {
	if err := txn.Delete(commentKey(postID, id)); err != nil {
		return err
	}
	return txn.Delete(entityKey(CommentIndexPrefix, id))
}

// deletePostTx removes a post and cascades to its comments.
func deletePostTx(txn *badger.Txn, postID int) error {
	prefix := []byte(CommentKeyPrefix + strconv.Itoa(postID) + ":")
	for _, key := range keysWithPrefix(txn, prefix) {
		_, commentID, err := parsePairKey(key, CommentKeyPrefix)
		if err != nil {
			return err
		}
		if err := deleteCommentTx(txn, postID, commentID); err != nil {
			return err
		}
	}
	return txn.Delete(entityKey(PostKeyPrefix, postID))
}

// deleteFollowTx removes both directions of a follow edge.
func deleteFollowTx(txn *badger.Txn, userID, authorID int) error {
	if err := txn.Delete(followKey(userID, authorID)); err != nil {
		return err
	}
	return txn.Delete(followerKey(authorID, userID))
}
