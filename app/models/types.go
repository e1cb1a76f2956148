package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// User is an account that can write posts, comment and follow other users.
type User struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:150;not null;uniqueIndex" validate:"required,min=1,max=150,username"`
	FirstName    string    `json:"firstName" gorm:"size:150" validate:"max=150"`
	LastName     string    `json:"lastName" gorm:"size:150" validate:"max=150"`
	Email        string    `json:"email" gorm:"size:254" validate:"omitempty,email,max=254"`
	PasswordHash string    `json:"-" gorm:"not null" validate:"-"`
	DateJoined   time.Time `json:"dateJoined" validate:"required"`
}

// Group is a named category that posts can belong to.
type Group struct {
	ID          int    `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"size:200;not null;uniqueIndex" validate:"required,max=200"`
	Slug        string `json:"slug" gorm:"size:50;not null;uniqueIndex" validate:"required,max=50,slug"`
	Description string `json:"description" gorm:"type:text"`
}

// Post is a user-authored text entry, optionally tagged to a Group and
// optionally illustrated with an image.
type Post struct {
	ID        int        `json:"id" gorm:"primaryKey"`
	Text      string     `json:"text" gorm:"type:text;not null" validate:"required"`
	CreatedAt time.Time  `json:"createdAt" gorm:"index" validate:"required"`
	AuthorID  int        `json:"authorId" gorm:"not null;index" validate:"required,gt=0"`
	Author    *User      `json:"author,omitempty" gorm:"constraint:OnDelete:CASCADE;" validate:"-"`
	GroupID   *int       `json:"groupId,omitempty" gorm:"index" validate:"omitempty,gt=0"`
	Group     *Group     `json:"group,omitempty" gorm:"constraint:OnDelete:SET NULL;" validate:"-"`
	Image     string     `json:"image,omitempty" gorm:"size:255"`
	Comments  []*Comment `json:"comments,omitempty" gorm:"constraint:OnDelete:CASCADE;" validate:"-"`
}

// Comment is a reply attached to a single post.
type Comment struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	PostID    int       `json:"postId" gorm:"not null;index" validate:"required,gt=0"`
	Post      *Post     `json:"-" gorm:"-" validate:"-"`
	AuthorID  int       `json:"authorId" gorm:"not null;index" validate:"required,gt=0"`
	Author    *User     `json:"author,omitempty" gorm:"constraint:OnDelete:CASCADE;" validate:"-"`
	Text      string    `json:"text" gorm:"type:text;not null" validate:"required"`
	CreatedAt time.Time `json:"createdAt" gorm:"index" validate:"required"`
}

// Follow is a directed subscription edge from User to Author.
type Follow struct {
	ID       int   `json:"id" gorm:"primaryKey"`
	UserID   int   `json:"userId" gorm:"not null;uniqueIndex:idx_follow_pair" validate:"required,gt=0"`
	User     *User `json:"-" gorm:"constraint:OnDelete:CASCADE;" validate:"-"`
	AuthorID int   `json:"authorId" gorm:"not null;uniqueIndex:idx_follow_pair;index" validate:"required,gt=0,nefield=UserID"`
	Author   *User `json:"-" gorm:"constraint:OnDelete:CASCADE;" validate:"-"`
}
