package models

import (
	"errors"
	"time"
)

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// Stamp sets the creation time once.
func (c *Comment) Stamp(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
}

// SetPost sets the parent post and updates the PostID
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}

	c.Post = post
	c.PostID = post.ID
	return nil
}

// SetAuthor sets the author and updates the AuthorID
func (c *Comment) SetAuthor(author *User) error {
	if author == nil {
		return errors.New("author cannot be nil")
	}

	c.Author = author
	c.AuthorID = author.ID
	return nil
}

func (c *Comment) String() string {
	return Truncate(c.Text, 20)
}
