package repositories

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"yatube/app/models"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db  *badger.DB
	ids *idSequence
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db, ids: newIDSequence(db, PostSeqKey)}
}

// checkReferences enforces the foreign keys a relational schema would.
func checkReferences(txn *badger.Txn, post *models.Post) error {
	ok, err := exists(txn, entityKey(UserKeyPrefix, post.AuthorID))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrNotFound, "author %d", post.AuthorID)
	}
	if post.GroupID == nil {
		return nil
	}
	ok, err = exists(txn, entityKey(GroupKeyPrefix, *post.GroupID))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrNotFound, "group %d", *post.GroupID)
	}
	return nil
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	id, err := r.ids.Next()
	if err != nil {
		return err
	}
	return update(r.db, func(txn *badger.Txn) error {
		if err := checkReferences(txn, post); err != nil {
			return err
		}
		post.ID = id

		return setEntity(txn, entityKey(PostKeyPrefix, id), barePost(post))
	})
}

// GetByID retrieves a post by ID with its author and group
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = loadPost(txn, id)
		if err != nil {
			return err
		}
		return hydratePosts(txn, []*models.Post{post})
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *BadgerPostRepository) matching(txn *badger.Txn, filter PostFilter) ([]*models.Post, error) {
	var posts []*models.Post
	err := eachWithPrefix(txn, []byte(PostKeyPrefix), func(val []byte) error {
		var post models.Post
		if err := unmarshalEntity(val, &post); err != nil {
			return fmt.Errorf("failed to unmarshal post: %v", err)
		}
		if filter.Match(&post) {
			posts = append(posts, &post)
		}
		return nil
	})
	return posts, err
}

// List retrieves a page of posts matching filter, newest first
func (r *BadgerPostRepository) List(filter PostFilter, limit, offset int) ([]*models.Post, error) {
	var page []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		posts, err := r.matching(txn, filter)
		if err != nil {
			return err
		}
		sortPosts(posts)

		if offset >= len(posts) {
			page = []*models.Post{}
			return nil
		}
		end := offset + limit
		if end > len(posts) {
			end = len(posts)
		}
		page = posts[offset:end]
		return hydratePosts(txn, page)
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// Count returns how many posts match filter
func (r *BadgerPostRepository) Count(filter PostFilter) (int, error) {
	var count int
	err := r.db.View(func(txn *badger.Txn) error {
		posts, err := r.matching(txn, filter)
		count = len(posts)
		return err
	})
	return count, err
}

// Update updates an existing post. The creation time is never overwritten.
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return update(r.db, func(txn *badger.Txn) error {
		existing, err := loadPost(txn, post.ID)
		if err != nil {
			return err
		}
		if err := checkReferences(txn, post); err != nil {
			return err
		}
		post.CreatedAt = existing.CreatedAt

		return setEntity(txn, entityKey(PostKeyPrefix, post.ID), barePost(post))
	})
}

// Delete deletes a post by ID along with its comments
func (r *BadgerPostRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		ok, err := exists(txn, entityKey(PostKeyPrefix, id))
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return deletePostTx(txn, id)
	})
}
