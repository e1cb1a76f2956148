package repositories

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yatube/app/models"
)

// GormUserRepository implements UserRepository on a SQL database
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(user *models.User) error {
	taken, err := rowExists(r.db, &models.User{}, "username = ?", user.Username)
	if err != nil {
		return err
	}
	if taken {
		return errors.Wrapf(ErrDuplicate, "username %q", user.Username)
	}
	return translate(r.db.Create(user).Error)
}

func (r *GormUserRepository) GetByID(id int) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Delete removes the user and cascades to their posts, comments and follow
// edges in one transaction.
func (r *GormUserRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := r.lock(tx, id); err != nil {
			return err
		}
		ownPosts := tx.Model(&models.Post{}).Select("id").Where("author_id = ?", id)
		if err := tx.Where("post_id IN (?)", ownPosts).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR author_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&models.User{}, id))
	})
}

// forUpdate row-locks what the query selects. The sqlite dialect drops the
// clause; its transactions already hold the database write lock.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *GormUserRepository) lock(tx *gorm.DB, id int) (*models.User, error) {
	var user models.User
	if err := forUpdate(tx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GormGroupRepository implements GroupRepository on a SQL database
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GormGroupRepository
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

func (r *GormGroupRepository) Create(group *models.Group) error {
	taken, err := rowExists(r.db, &models.Group{}, "slug = ? OR title = ?", group.Slug, group.Title)
	if err != nil {
		return err
	}
	if taken {
		return errors.Wrapf(ErrDuplicate, "group %q", group.Slug)
	}
	return translate(r.db.Create(group).Error)
}

func (r *GormGroupRepository) GetByID(id int) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, translate(err)
	}
	return &group, nil
}

func (r *GormGroupRepository) GetBySlug(slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, translate(err)
	}
	return &group, nil
}

func (r *GormGroupRepository) List() ([]*models.Group, error) {
	groups := []*models.Group{}
	if err := r.db.Order("title").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// Delete removes the group and clears the reference on its posts.
func (r *GormGroupRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Post{}).Where("group_id = ?", id).Update("group_id", nil).Error
		if err != nil {
			return err
		}
		return affected(tx.Delete(&models.Group{}, id))
	})
}

// GormPostRepository implements PostRepository on a SQL database
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) scoped(filter PostFilter) *gorm.DB {
	q := r.db.Model(&models.Post{})
	if filter.GroupID != 0 {
		q = q.Where("group_id = ?", filter.GroupID)
	}
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if len(filter.AuthorIDs) > 0 {
		q = q.Where("author_id IN ?", filter.AuthorIDs)
	}
	return q
}

// checkSQLReferences reports a missing author or group as ErrNotFound rather
// than relying on each driver's foreign key error.
func checkSQLReferences(db *gorm.DB, authorID int, groupID *int) error {
	ok, err := rowExists(db, &models.User{}, "id = ?", authorID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrNotFound, "author %d", authorID)
	}
	if groupID == nil {
		return nil
	}
	ok, err = rowExists(db, &models.Group{}, "id = ?", *groupID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrNotFound, "group %d", *groupID)
	}
	return nil
}

func (r *GormPostRepository) Create(post *models.Post) error {
	if err := checkSQLReferences(r.db, post.AuthorID, post.GroupID); err != nil {
		return err
	}
	return translate(r.db.Omit(clause.Associations).Create(post).Error)
}

func (r *GormPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Author").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (r *GormPostRepository) List(filter PostFilter, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.scoped(filter).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *GormPostRepository) Count(filter PostFilter) (int, error) {
	var n int64
	if err := r.scoped(filter).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

// Update writes the editable columns only, so created_at and author_id
// never change.
func (r *GormPostRepository) Update(post *models.Post) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Post
		if err := tx.First(&existing, post.ID).Error; err != nil {
			return translate(err)
		}
		if err := checkSQLReferences(tx, existing.AuthorID, post.GroupID); err != nil {
			return err
		}
		err := tx.Model(&models.Post{ID: post.ID}).Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
		if err != nil {
			return translate(err)
		}
		post.CreatedAt = existing.CreatedAt
		post.AuthorID = existing.AuthorID
		return nil
	})
}

func (r *GormPostRepository) Delete(id int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&models.Post{}, id))
	})
}

// GormCommentRepository implements CommentRepository on a SQL database
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(comment *models.Comment) error {
	ok, err := rowExists(r.db, &models.Post{}, "id = ?", comment.PostID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrNotFound, "post %d", comment.PostID)
	}
	ok, err = rowExists(r.db, &models.User{}, "id = ?", comment.AuthorID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrNotFound, "author %d", comment.AuthorID)
	}
	return translate(r.db.Omit(clause.Associations).Create(comment).Error)
}

func (r *GormCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.Preload("Author").First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *GormCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *GormCommentRepository) Delete(id int) error {
	return affected(r.db.Delete(&models.Comment{}, id))
}

// GormFollowRepository implements FollowRepository on a SQL database. The
// idx_follow_pair unique index keeps each edge single.
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GormFollowRepository
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

func (r *GormFollowRepository) Create(follow *models.Follow) error {
	if err := follow.Validate(); err != nil {
		return err
	}
	for _, id := range []int{follow.UserID, follow.AuthorID} {
		ok, err := rowExists(r.db, &models.User{}, "id = ?", id)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrapf(ErrNotFound, "user %d", id)
		}
	}
	dup, err := r.Exists(follow.UserID, follow.AuthorID)
	if err != nil {
		return err
	}
	if dup {
		return errors.Wrapf(ErrDuplicate, "follow %d -> %d", follow.UserID, follow.AuthorID)
	}
	return translate(r.db.Omit(clause.Associations).Create(follow).Error)
}

func (r *GormFollowRepository) Delete(userID, authorID int) error {
	return affected(r.db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{}))
}

func (r *GormFollowRepository) Exists(userID, authorID int) (bool, error) {
	return rowExists(r.db, &models.Follow{}, "user_id = ? AND author_id = ?", userID, authorID)
}

func (r *GormFollowRepository) ListAuthorIDs(userID int) ([]int, error) {
	ids := []int{}
	err := r.db.Model(&models.Follow{}).Where("user_id = ?", userID).Order("author_id").Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormFollowRepository) CountByUser(userID int) (int, error) {
	var n int64
	if err := r.db.Model(&models.Follow{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}
