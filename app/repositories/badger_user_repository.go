package repositories

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"yatube/app/models"
)

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db  *badger.DB
	ids *idSequence
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db, ids: newIDSequence(db, UserSeqKey)}
}

// Create creates a new user, failing with ErrDuplicate on a taken username
func (r *BadgerUserRepository) Create(user *models.User) error {
	id, err := r.ids.Next()
	if err != nil {
		return err
	}
	return update(r.db, func(txn *badger.Txn) error {
		if err := claimIndex(txn, indexKey(UsernameIndexPrefix, user.Username), id); err != nil {
			return err
		}
		user.ID = id

		rec := userRecord{User: *user, PasswordHash: user.PasswordHash}
		return setEntity(txn, entityKey(UserKeyPrefix, id), rec)
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id int) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = loadUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *BadgerUserRepository) GetByUsername(username string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupIndex(txn, indexKey(UsernameIndexPrefix, username))
		if err != nil {
			return err
		}
		user, err = loadUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Delete deletes a user together with their posts, comments and follow edges
func (r *BadgerUserRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		user, err := loadUser(txn, id)
		if err != nil {
			return err
		}

		// Posts, with their comments
		var postIDs []int
		err = eachWithPrefix(txn, []byte(PostKeyPrefix), func(val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return err
			}
			if post.AuthorID == id {
				postIDs = append(postIDs, post.ID)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, postID := range postIDs {
			if err := deletePostTx(txn, postID); err != nil {
				return errors.Wrapf(err, "delete post %d", postID)
			}
		}

		// Comments left on other people's posts
		var comments []models.Comment
		err = eachWithPrefix(txn, []byte(CommentKeyPrefix), func(val []byte) error {
			var comment models.Comment
			if err := unmarshalEntity(val, &comment); err != nil {
				return err
			}
			if comment.AuthorID == id {
				comments = append(comments, comment)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, comment := range comments {
			if err := deleteCommentTx(txn, comment.PostID, comment.ID); err != nil {
				return err
			}
		}

		// Follow edges in both directions
		for _, key := range keysWithPrefix(txn, entityKey(FollowKeyPrefix, id)) {
			userID, authorID, err := parsePairKey(key, FollowKeyPrefix)
			if err != nil {
				return err
			}
			if userID != id {
				continue
			}
			if err := deleteFollowTx(txn, userID, authorID); err != nil {
				return err
			}
		}
		for _, key := range keysWithPrefix(txn, entityKey(FollowerKeyPrefix, id)) {
			authorID, userID, err := parsePairKey(key, FollowerKeyPrefix)
			if err != nil {
				return err
			}
			if authorID != id {
				continue
			}
			if err := deleteFollowTx(txn, userID, authorID); err != nil {
				return err
			}
		}

		if err := txn.Delete(indexKey(UsernameIndexPrefix, user.Username)); err != nil {
			return err
		}
		return txn.Delete(entityKey(UserKeyPrefix, id))
	})
}
