package controllers

import (
	"net/http"

	"github.com/pkg/errors"

	"yatube/app/auth"
	"yatube/app/forms"
	"yatube/app/models"
	"yatube/app/services"
	"yatube/app/uploads"
	"yatube/app/views"
)

// PostController handles the post pages
type PostController struct {
	Base
	posts    *services.PostService
	comments *services.CommentService
	follows  *services.FollowService
	media    *uploads.Storage
	titleLen int
}

// NewPostController creates a new PostController
func NewPostController(base Base, posts *services.PostService, comments *services.CommentService, follows *services.FollowService, media *uploads.Storage, titleLen int) *PostController {
	return &PostController{
		Base:     base,
		posts:    posts,
		comments: comments,
		follows:  follows,
		media:    media,
		titleLen: titleLen,
	}
}

// Index lists every post
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	page, err := pc.posts.Index(r.URL.Query().Get("page"))
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, "posts/index", views.Context{"Page": page})
}

// GroupPosts lists the posts of one group
func (pc *PostController) GroupPosts(w http.ResponseWriter, r *http.Request) {
	group, page, err := pc.posts.GroupPosts(muxVar(r, "slug"), r.URL.Query().Get("page"))
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, "posts/group_list", views.Context{"Group": group, "Page": page})
}

// Profile lists the posts of one author
func (pc *PostController) Profile(w http.ResponseWriter, r *http.Request) {
	author, page, err := pc.posts.Profile(muxVar(r, "username"), r.URL.Query().Get("page"))
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	viewer := auth.UserFrom(r.Context())
	following, err := pc.follows.IsFollowing(auth.ViewerID(r.Context()), author.ID)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	numFollowing, err := pc.follows.CountFollowing(author.ID)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, "posts/profile", views.Context{
		"Author":         author,
		"Page":           page,
		"NumPosts":       page.Count,
		"NumFollowing":   numFollowing,
		"DisplayButtons": viewer != nil && viewer.ID != author.ID,
		"Following":      following,
	})
}

// PostDetail shows one post with its comments
func (pc *PostController) PostDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		pc.NotFound(w, r)
		return
	}
	post, err := pc.posts.GetPost(id)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.renderDetail(w, r, post, forms.NewCommentForm())
}

func (pc *PostController) renderDetail(w http.ResponseWriter, r *http.Request, post *models.Post, form *forms.CommentForm) {
	numPosts, err := pc.posts.CountByAuthor(post.AuthorID)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	comments, err := pc.comments.ListPostComments(post.ID)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, "posts/post_detail", views.Context{
		"Post":         post,
		"NumPosts":     numPosts,
		"TextForTitle": models.Truncate(post.Text, pc.titleLen),
		"IsAuthor":     auth.ViewerID(r.Context()) == post.AuthorID,
		"Form":         form,
		"Comments":     comments,
	})
}

// readPostForm decodes the submission. Decoding and upload problems are
// recorded on the form so the page re-renders with them.
func (pc *PostController) readPostForm(w http.ResponseWriter, r *http.Request) *forms.PostForm {
	form := forms.NewPostForm(nil)
	r.Body = http.MaxBytesReader(w, r.Body, pc.media.MaxBytes+1<<20)
	if err := forms.Decode(r, form); err != nil {
		form.Errors.Add(forms.NonField, "The submitted form could not be read.")
		return form
	}
	upload, err := pc.media.FromRequest(r, "image")
	switch {
	case errors.Is(err, uploads.ErrTooLarge), errors.Is(err, uploads.ErrNotImage):
		form.Errors.Add("image", err.Error())
	case err != nil:
		form.Errors.Add("image", "The image could not be read.")
	default:
		form.Image = upload
	}
	return form
}

func (pc *PostController) renderForm(w http.ResponseWriter, r *http.Request, form *forms.PostForm, post *models.Post) {
	groups, err := pc.posts.Groups()
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, "posts/create_post", views.Context{
		"Form":   form,
		"Groups": groups,
		"IsEdit": post != nil,
		"Post":   post,
	})
}

// PostCreate shows and handles the new post form
func (pc *PostController) PostCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		pc.renderForm(w, r, forms.NewPostForm(nil), nil)
		return
	}
	user := auth.UserFrom(r.Context())
	form := pc.readPostForm(w, r)
	_, err := pc.posts.CreatePost(user, form)
	if errors.Is(err, services.ErrInvalid) {
		pc.renderForm(w, r, form, nil)
		return
	}
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	redirect(w, r, profileURL(user.Username))
}

// PostEdit shows and handles the edit form. Only the author gets the form;
// everyone else is sent back to the post.
func (pc *PostController) PostEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		pc.NotFound(w, r)
		return
	}
	user := auth.UserFrom(r.Context())

	if r.Method != http.MethodPost {
		post, err := pc.posts.GetPost(id)
		if err != nil {
			pc.fail(w, r, err)
			return
		}
		if post.AuthorID != user.ID {
			redirect(w, r, postURL(id))
			return
		}
		pc.renderForm(w, r, forms.NewPostForm(post), post)
		return
	}

	form := pc.readPostForm(w, r)
	post, err := pc.posts.UpdatePost(user, id, form)
	switch {
	case errors.Is(err, services.ErrForbidden):
		redirect(w, r, postURL(id))
	case errors.Is(err, services.ErrInvalid):
		pc.renderForm(w, r, form, post)
	case err != nil:
		pc.fail(w, r, err)
	default:
		redirect(w, r, postURL(post.ID))
	}
}

// PostDelete removes a post. Only the author may delete.
func (pc *PostController) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		pc.NotFound(w, r)
		return
	}
	user := auth.UserFrom(r.Context())
	_, err := pc.posts.DeletePost(user, id)
	switch {
	case errors.Is(err, services.ErrForbidden):
		redirect(w, r, postURL(id))
	case err != nil:
		pc.fail(w, r, err)
	default:
		redirect(w, r, profileURL(user.Username))
	}
}
