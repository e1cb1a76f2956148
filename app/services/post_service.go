package services

import (
	"time"

	"github.com/pkg/errors"

	"yatube/app/forms"
	"yatube/app/log"
	"yatube/app/models"
	"yatube/app/paginator"
	"yatube/app/repositories"
	"yatube/app/uploads"
)

// PostPage is one page of a post listing.
type PostPage = paginator.Page[*models.Post]

// PostService handles business logic for posts
type PostService struct {
	store   *repositories.Store
	media   *uploads.Storage
	perPage int
	now     func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(store *repositories.Store, media *uploads.Storage, perPage int) *PostService {
	return &PostService{
		store:   store,
		media:   media,
		perPage: perPage,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *PostService) page(filter repositories.PostFilter, rawPage string) (*PostPage, error) {
	return paginator.Fetch(rawPage, s.perPage,
		func() (int, error) { return s.store.Posts.Count(filter) },
		func(limit, offset int) ([]*models.Post, error) { return s.store.Posts.List(filter, limit, offset) },
	)
}

// Index lists every post, newest first
func (s *PostService) Index(rawPage string) (*PostPage, error) {
	return s.page(repositories.PostFilter{}, rawPage)
}

// GroupPosts lists the posts of the group with slug
func (s *PostService) GroupPosts(slug, rawPage string) (*models.Group, *PostPage, error) {
	group, err := s.store.Groups.GetBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	page, err := s.page(repositories.PostFilter{GroupID: group.ID}, rawPage)
	if err != nil {
		return nil, nil, err
	}
	return group, page, nil
}

// Profile lists the posts written by username
func (s *PostService) Profile(username, rawPage string) (*models.User, *PostPage, error) {
	author, err := s.store.Users.GetByUsername(username)
	if err != nil {
		return nil, nil, err
	}
	page, err := s.page(repositories.PostFilter{AuthorID: author.ID}, rawPage)
	if err != nil {
		return nil, nil, err
	}
	return author, page, nil
}

// Feed lists the posts of every author userID follows
func (s *PostService) Feed(userID int, rawPage string) (*PostPage, error) {
	authorIDs, err := s.store.Follows.ListAuthorIDs(userID)
	if err != nil {
		return nil, err
	}
	// An empty author list would mean no restriction at all.
	if len(authorIDs) == 0 {
		return paginator.Empty[*models.Post](s.perPage), nil
	}
	return s.page(repositories.PostFilter{AuthorIDs: authorIDs}, rawPage)
}

// GetPost retrieves a post with its author and group
func (s *PostService) GetPost(id int) (*models.Post, error) {
	return s.store.Posts.GetByID(id)
}

// CountByAuthor returns how many posts authorID has written
func (s *PostService) CountByAuthor(authorID int) (int, error) {
	return s.store.Posts.Count(repositories.PostFilter{AuthorID: authorID})
}

// Groups lists the groups a post can be filed under
func (s *PostService) Groups() ([]*models.Group, error) {
	return s.store.Groups.List()
}

func (s *PostService) groupExists(id int) bool {
	_, err := s.store.Groups.GetByID(id)
	return err == nil
}

// CreatePost validates form and stores a new post written by author.
// ErrInvalid leaves the messages on form.
func (s *PostService) CreatePost(author *models.User, form *forms.PostForm) (*models.Post, error) {
	if !form.Validate(s.groupExists) {
		return nil, ErrInvalid
	}

	post := &models.Post{}
	if err := form.Apply(post); err != nil {
		return nil, err
	}
	if err := post.SetAuthor(author); err != nil {
		return nil, err
	}
	post.Stamp(s.now())

	if form.Image != nil {
		stored, err := s.media.Save(form.Image)
		if err != nil {
			return nil, err
		}
		post.Image = stored
	}

	if err := post.Validate(); err != nil {
		s.discard(post.Image)
		return nil, errors.Wrap(err, "invalid post")
	}
	if err := s.store.Posts.Create(post); err != nil {
		s.discard(post.Image)
		return nil, err
	}
	log.Log.WithField("post_id", post.ID).WithField("author", author.Username).Info("post created")
	return post, nil
}

// UpdatePost applies form to the post with id. Only the author may edit;
// anyone else gets ErrForbidden and the post is left untouched.
func (s *PostService) UpdatePost(editor *models.User, id int, form *forms.PostForm) (*models.Post, error) {
	post, err := s.store.Posts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if editor == nil || post.AuthorID != editor.ID {
		return post, ErrForbidden
	}
	if !form.Validate(s.groupExists) {
		return post, ErrInvalid
	}

	oldImage := post.Image
	if err := form.Apply(post); err != nil {
		return nil, err
	}
	if form.ClearImage {
		post.Image = ""
	}
	if form.Image != nil {
		stored, err := s.media.Save(form.Image)
		if err != nil {
			return nil, err
		}
		post.Image = stored
	}
	if err := post.Validate(); err != nil {
		if post.Image != oldImage {
			s.discard(post.Image)
		}
		return nil, errors.Wrap(err, "invalid post")
	}
	if err := s.store.Posts.Update(post); err != nil {
		if post.Image != oldImage {
			s.discard(post.Image)
		}
		return nil, err
	}
	if oldImage != "" && post.Image != oldImage {
		s.discard(oldImage)
	}
	return post, nil
}

// DeletePost removes the post, its comments and its image. Only the author
// may delete.
func (s *PostService) DeletePost(editor *models.User, id int) (*models.Post, error) {
	post, err := s.store.Posts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if editor == nil || post.AuthorID != editor.ID {
		return post, ErrForbidden
	}
	if err := s.store.Posts.Delete(id); err != nil {
		return nil, err
	}
	s.discard(post.Image)
	log.Log.WithField("post_id", id).Info("post deleted")
	return post, nil
}

func (s *PostService) discard(stored string) {
	if err := s.media.Remove(stored); err != nil {
		log.Log.WithError(err).WithField("image", stored).Warn("failed to remove image")
	}
}
