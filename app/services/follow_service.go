package services

import (
	"yatube/app/log"
	"yatube/app/models"
	"yatube/app/repositories"
)

// FollowService manages subscriptions between users
type FollowService struct {
	follows repositories.FollowRepository
	users   repositories.UserRepository
}

// NewFollowService creates a new FollowService
func NewFollowService(follows repositories.FollowRepository, users repositories.UserRepository) *FollowService {
	return &FollowService{follows: follows, users: users}
}

// Follow subscribes user to the author called username. Following yourself
// or an author you already follow does nothing.
func (s *FollowService) Follow(user *models.User, username string) (*models.User, error) {
	author, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if author.ID == user.ID {
		return author, nil
	}
	err = s.follows.Create(&models.Follow{UserID: user.ID, AuthorID: author.ID})
	if repositories.IsDuplicate(err) {
		return author, nil
	}
	if err != nil {
		return nil, err
	}
	log.Log.WithField("user", user.Username).WithField("author", author.Username).Debug("followed")
	return author, nil
}

// Unfollow removes the subscription if there is one.
func (s *FollowService) Unfollow(user *models.User, username string) (*models.User, error) {
	author, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	err = s.follows.Delete(user.ID, author.ID)
	if err != nil && !repositories.IsNotFound(err) {
		return nil, err
	}
	return author, nil
}

// IsFollowing reports whether userID follows authorID
func (s *FollowService) IsFollowing(userID, authorID int) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.follows.Exists(userID, authorID)
}

// CountFollowing returns how many authors userID follows
func (s *FollowService) CountFollowing(userID int) (int, error) {
	return s.follows.CountByUser(userID)
}
