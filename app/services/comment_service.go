package services

import (
	"time"

	"github.com/pkg/errors"

	"yatube/app/forms"
	"yatube/app/models"
	"yatube/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	now         func() time.Time
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AddComment stores a comment by author on the post with postID. An
// unknown post is ErrNotFound; a bad form is ErrInvalid.
func (s *CommentService) AddComment(author *models.User, postID int, form *forms.CommentForm) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if !form.Validate() {
		return nil, ErrInvalid
	}

	comment := &models.Comment{Text: form.Text}
	if err := comment.SetPost(post); err != nil {
		return nil, err
	}
	if err := comment.SetAuthor(author); err != nil {
		return nil, err
	}
	comment.Stamp(s.now())
	if err := comment.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid comment")
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListPostComments retrieves all comments for a post, oldest first
func (s *CommentService) ListPostComments(postID int) ([]*models.Comment, error) {
	return s.commentRepo.ListByPost(postID)
}

// GetComment retrieves a comment by ID
func (s *CommentService) GetComment(id int) (*models.Comment, error) {
	return s.commentRepo.GetByID(id)
}

// DeleteComment removes a single comment
func (s *CommentService) DeleteComment(id int) error {
	return s.commentRepo.Delete(id)
}
