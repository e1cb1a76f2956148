package services

import (
	"strings"

	"github.com/pkg/errors"

	"yatube/app/models"
	"yatube/app/repositories"
)

// GroupService handles business logic for groups
type GroupService struct {
	groups repositories.GroupRepository
}

// NewGroupService creates a new GroupService
func NewGroupService(groups repositories.GroupRepository) *GroupService {
	return &GroupService{groups: groups}
}

// CreateGroup validates and stores a new group
func (s *GroupService) CreateGroup(title, slug, description string) (*models.Group, error) {
	group := &models.Group{
		Title:       strings.TrimSpace(title),
		Slug:        strings.TrimSpace(slug),
		Description: description,
	}
	if err := group.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid group")
	}
	if err := s.groups.Create(group); err != nil {
		return nil, err
	}
	return group, nil
}

// GetBySlug retrieves a group by slug
func (s *GroupService) GetBySlug(slug string) (*models.Group, error) {
	return s.groups.GetBySlug(slug)
}

// ListGroups returns every group ordered by title
func (s *GroupService) ListGroups() ([]*models.Group, error) {
	return s.groups.List()
}

// DeleteGroup removes the group. Its posts stay and lose their group.
func (s *GroupService) DeleteGroup(slug string) (*models.Group, error) {
	group, err := s.groups.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if err := s.groups.Delete(group.ID); err != nil {
		return nil, err
	}
	return group, nil
}
