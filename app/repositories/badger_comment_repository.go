package repositories

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"yatube/app/models"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db  *badger.DB
	ids *idSequence
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db, ids: newIDSequence(db, CommentSeqKey)}
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	id, err := r.ids.Next()
	if err != nil {
		return err
	}
	return update(r.db, func(txn *badger.Txn) error {
		ok, err := exists(txn, entityKey(PostKeyPrefix, comment.PostID))
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrapf(ErrNotFound, "post %d", comment.PostID)
		}
		ok, err = exists(txn, entityKey(UserKeyPrefix, comment.AuthorID))
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrapf(ErrNotFound, "author %d", comment.AuthorID)
		}

		comment.ID = id

		// Save comment with post ID in key for efficient listing
		if err := setEntity(txn, commentKey(comment.PostID, id), bareComment(comment)); err != nil {
			return err
		}
		return txn.Set(entityKey(CommentIndexPrefix, id), encodeID(comment.PostID))
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		postID, err := lookupIndex(txn, entityKey(CommentIndexPrefix, id))
		if err != nil {
			return err
		}
		if err := getEntity(txn, commentKey(postID, id), &comment); err != nil {
			return err
		}
		return hydrateComments(txn, []*models.Comment{&comment})
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves all comments for a post, oldest first
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("%s%d:", CommentKeyPrefix, postID))
		err := eachWithPrefix(txn, prefix, func(val []byte) error {
			var comment models.Comment
			if err := unmarshalEntity(val, &comment); err != nil {
				return fmt.Errorf("failed to unmarshal comment: %v", err)
			}
			comments = append(comments, &comment)
			return nil
		})
		if err != nil {
			return err
		}
		sortComments(comments)
		return hydrateComments(txn, comments)
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		postID, err := lookupIndex(txn, entityKey(CommentIndexPrefix, id))
		if err != nil {
			return err
		}
		return deleteCommentTx(txn, postID, id)
	})
}
