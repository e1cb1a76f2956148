package controllers

import (
	"net/http"

	"github.com/pkg/errors"

	"yatube/app/auth"
	"yatube/app/forms"
	"yatube/app/services"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	Base
	comments *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(base Base, comments *services.CommentService) *CommentController {
	return &CommentController{Base: base, comments: comments}
}

// AddComment stores a comment and always returns to the post. Invalid
// input is dropped.
func (cc *CommentController) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		cc.NotFound(w, r)
		return
	}
	form := forms.NewCommentForm()
	if err := forms.Decode(r, form); err != nil {
		redirect(w, r, postURL(id))
		return
	}
	_, err := cc.comments.AddComment(auth.UserFrom(r.Context()), id, form)
	if err != nil && !errors.Is(err, services.ErrInvalid) {
		cc.fail(w, r, err)
		return
	}
	redirect(w, r, postURL(id))
}
