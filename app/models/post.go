package models

import (
	"errors"
	"time"
)

// UploadDir is the media sub directory post images are stored under.
const UploadDir = "posts/"

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// Stamp sets the creation time once. Later calls keep the original value.
func (p *Post) Stamp(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
}

// SetAuthor sets the author and updates the AuthorID
func (p *Post) SetAuthor(author *User) error {
	if author == nil {
		return errors.New("author cannot be nil")
	}

	p.Author = author
	p.AuthorID = author.ID
	return nil
}

// SetGroup tags the post with a group. A nil group clears the tag.
func (p *Post) SetGroup(group *Group) {
	p.Group = group
	if group == nil {
		p.GroupID = nil
		return
	}
	id := group.ID
	p.GroupID = &id
}

// InGroup reports whether the post is tagged with the given group.
func (p *Post) InGroup(groupID int) bool {
	return p.GroupID != nil && *p.GroupID == groupID
}

// AddComment adds a comment to the post
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	comment.PostID = p.ID
	p.Comments = append(p.Comments, comment)
	return nil
}

func (p *Post) String() string {
	return Truncate(p.Text, 15)
}
