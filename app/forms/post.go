package forms

import (
	"strconv"
	"strings"

	"github.com/jinzhu/copier"

	"yatube/app/models"
	"yatube/app/uploads"
)

// PostForm is the create and edit form for a post.
type PostForm struct {
	Text  string `schema:"text" validate:"required"`
	Group int    `schema:"group" validate:"min=0" copier:"-"`

	Image      *uploads.Upload `schema:"-" copier:"-"`
	ClearImage bool            `schema:"image-clear" copier:"-"`
	Errors     Errors          `schema:"-" copier:"-"`
}

// NewPostForm prefills the form from post. A nil post gives an empty form.
func NewPostForm(post *models.Post) *PostForm {
	form := &PostForm{Errors: Errors{}}
	if post == nil {
		return form
	}
	copier.Copy(form, post)
	if post.GroupID != nil {
		form.Group = *post.GroupID
	}
	return form
}

// Validate trims the text and checks every field. groupExists reports
// whether a chosen group is real.
func (f *PostForm) Validate(groupExists func(id int) bool) bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Text = strings.TrimSpace(f.Text)
	check(f, f.Errors)
	if f.Group > 0 && !groupExists(f.Group) {
		f.Errors.Add("group", "Select a valid choice. That choice is not one of the available choices.")
	}
	return !f.Errors.Any()
}

// Apply copies the form onto post. The image is handled by the caller.
func (f *PostForm) Apply(post *models.Post) error {
	if err := copier.Copy(post, f); err != nil {
		return err
	}
	post.GroupID = nil
	if f.Group > 0 {
		id := f.Group
		post.GroupID = &id
	}
	if post.Group != nil && !post.InGroup(post.Group.ID) {
		post.Group = nil
	}
	return nil
}

// GroupValue is the selected group as a form value.
func (f *PostForm) GroupValue() string {
	if f.Group == 0 {
		return ""
	}
	return strconv.Itoa(f.Group)
}

// CommentForm is the comment submission form.
type CommentForm struct {
	Text   string `schema:"text" validate:"required"`
	Errors Errors `schema:"-"`
}

func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: Errors{}}
}

func (f *CommentForm) Validate() bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Text = strings.TrimSpace(f.Text)
	check(f, f.Errors)
	return !f.Errors.Any()
}
