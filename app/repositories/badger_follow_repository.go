package repositories

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"yatube/app/models"
)

// BadgerFollowRepository implements FollowRepository using BadgerDB. The
// (user, author) pair is the key, so an edge can only exist once.
type BadgerFollowRepository struct {
	db  *badger.DB
	ids *idSequence
}

// NewBadgerFollowRepository creates a new BadgerFollowRepository
func NewBadgerFollowRepository(db *badger.DB) *BadgerFollowRepository {
	return &BadgerFollowRepository{db: db, ids: newIDSequence(db, FollowSeqKey)}
}

// Create stores a follow edge, failing with ErrDuplicate if it exists
func (r *BadgerFollowRepository) Create(follow *models.Follow) error {
	if err := follow.Validate(); err != nil {
		return err
	}
	id, err := r.ids.Next()
	if err != nil {
		return err
	}
	return update(r.db, func(txn *badger.Txn) error {
		for _, uid := range []int{follow.UserID, follow.AuthorID} {
			ok, err := exists(txn, entityKey(UserKeyPrefix, uid))
			if err != nil {
				return err
			}
			if !ok {
				return errors.Wrapf(ErrNotFound, "user %d", uid)
			}
		}

		key := followKey(follow.UserID, follow.AuthorID)
		ok, err := exists(txn, key)
		if err != nil {
			return err
		}
		if ok {
			return errors.Wrapf(ErrDuplicate, "follow %d -> %d", follow.UserID, follow.AuthorID)
		}

		follow.ID = id

		stored := *follow
		stored.User = nil
		stored.Author = nil
		if err := setEntity(txn, key, stored); err != nil {
			return err
		}
		return txn.Set(followerKey(follow.AuthorID, follow.UserID), []byte{})
	})
}

// Delete removes the edge from userID to authorID
func (r *BadgerFollowRepository) Delete(userID, authorID int) error {
	return update(r.db, func(txn *badger.Txn) error {
		ok, err := exists(txn, followKey(userID, authorID))
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return deleteFollowTx(txn, userID, authorID)
	})
}

// Exists reports whether userID follows authorID
func (r *BadgerFollowRepository) Exists(userID, authorID int) (bool, error) {
	var ok bool
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		ok, err = exists(txn, followKey(userID, authorID))
		return err
	})
	return ok, err
}

// ListAuthorIDs returns the IDs of every author userID follows
func (r *BadgerFollowRepository) ListAuthorIDs(userID int) ([]int, error) {
	var ids []int
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("%s%d:", FollowKeyPrefix, userID))
		for _, key := range keysWithPrefix(txn, prefix) {
			_, authorID, err := parsePairKey(key, FollowKeyPrefix)
			if err != nil {
				return err
			}
			ids = append(ids, authorID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CountByUser returns how many authors userID follows
func (r *BadgerFollowRepository) CountByUser(userID int) (int, error) {
	ids, err := r.ListAuthorIDs(userID)
	return len(ids), err
}
