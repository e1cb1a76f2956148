package repositories

import (
	"github.com/pkg/errors"

	"yatube/app/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// PostFilter narrows a post listing. Zero values mean no restriction.
type PostFilter struct {
	GroupID   int
	AuthorID  int
	AuthorIDs []int
}

// Match reports whether post passes the filter.
func (f PostFilter) Match(post *models.Post) bool {
	if f.GroupID != 0 && !post.InGroup(f.GroupID) {
		return false
	}
	if f.AuthorID != 0 && post.AuthorID != f.AuthorID {
		return false
	}
	if len(f.AuthorIDs) > 0 {
		for _, id := range f.AuthorIDs {
			if post.AuthorID == id {
				return true
			}
		}
		return false
	}
	return true
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Delete(id int) error
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	Create(group *models.Group) error
	GetByID(id int) (*models.Group, error)
	GetBySlug(slug string) (*models.Group, error)
	List() ([]*models.Group, error)
	Delete(id int) error
}

// PostRepository defines the interface for post data access. Listings are
// ordered newest first and carry their Author and Group.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	List(filter PostFilter, limit, offset int) ([]*models.Post, error)
	Count(filter PostFilter) (int, error)
	Update(post *models.Post) error
	Delete(id int) error
}

// CommentRepository defines the interface for comment data access.
// ListByPost is ordered oldest first.
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	Delete(id int) error
}

// FollowRepository defines the interface for follow edge data access
type FollowRepository interface {
	Create(follow *models.Follow) error
	Delete(userID, authorID int) error
	Exists(userID, authorID int) (bool, error)
	ListAuthorIDs(userID int) ([]int, error)
	CountByUser(userID int) (int, error)
}

// Store bundles one backend's repositories.
type Store struct {
	Users    UserRepository
	Groups   GroupRepository
	Posts    PostRepository
	Comments CommentRepository
	Follows  FollowRepository

	closer func() error
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// IsNotFound reports whether err, possibly wrapped, is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate reports whether err, possibly wrapped, is ErrDuplicate.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
