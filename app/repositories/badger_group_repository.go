package repositories

import (
	"sort"

	"github.com/dgraph-io/badger/v4"

	"yatube/app/models"
)

// BadgerGroupRepository implements GroupRepository using BadgerDB
type BadgerGroupRepository struct {
	db  *badger.DB
	ids *idSequence
}

// NewBadgerGroupRepository creates a new BadgerGroupRepository
func NewBadgerGroupRepository(db *badger.DB) *BadgerGroupRepository {
	return &BadgerGroupRepository{db: db, ids: newIDSequence(db, GroupSeqKey)}
}

// Create creates a new group; title and slug must both be unused
func (r *BadgerGroupRepository) Create(group *models.Group) error {
	id, err := r.ids.Next()
	if err != nil {
		return err
	}
	return update(r.db, func(txn *badger.Txn) error {
		if err := claimIndex(txn, indexKey(GroupSlugIndexPrefix, group.Slug), id); err != nil {
			return err
		}
		if err := claimIndex(txn, indexKey(GroupTitleIndexPrefix, group.Title), id); err != nil {
			return err
		}
		group.ID = id
		return setEntity(txn, entityKey(GroupKeyPrefix, id), group)
	})
}

// GetByID retrieves a group by ID
func (r *BadgerGroupRepository) GetByID(id int) (*models.Group, error) {
	var group *models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		group, err = loadGroup(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// GetBySlug retrieves a group by slug
func (r *BadgerGroupRepository) GetBySlug(slug string) (*models.Group, error) {
	var group *models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupIndex(txn, indexKey(GroupSlugIndexPrefix, slug))
		if err != nil {
			return err
		}
		group, err = loadGroup(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// List returns every group ordered by title
func (r *BadgerGroupRepository) List() ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		return eachWithPrefix(txn, []byte(GroupKeyPrefix), func(val []byte) error {
			var group models.Group
			if err := unmarshalEntity(val, &group); err != nil {
				return err
			}
			groups = append(groups, &group)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Title < groups[j].Title
	})
	return groups, nil
}

// Delete deletes a group. Its posts are kept with the group reference cleared.
func (r *BadgerGroupRepository) Delete(id int) error {
	return update(r.db, func(txn *badger.Txn) error {
		group, err := loadGroup(txn, id)
		if err != nil {
			return err
		}

		var orphans []*models.Post
		err = eachWithPrefix(txn, []byte(PostKeyPrefix), func(val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return err
			}
			if post.InGroup(id) {
				orphans = append(orphans, &post)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, post := range orphans {
			post.GroupID = nil
			if err := setEntity(txn, entityKey(PostKeyPrefix, post.ID), barePost(post)); err != nil {
				return err
			}
		}

		if err := txn.Delete(indexKey(GroupSlugIndexPrefix, group.Slug)); err != nil {
			return err
		}
		if err := txn.Delete(indexKey(GroupTitleIndexPrefix, group.Title)); err != nil {
			return err
		}
		return txn.Delete(entityKey(GroupKeyPrefix, id))
	})
}
