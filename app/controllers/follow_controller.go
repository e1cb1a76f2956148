package controllers

import (
	"net/http"

	"yatube/app/auth"
	"yatube/app/services"
	"yatube/app/views"
)

const followIndexURL = "/follow/"

// FollowController handles subscriptions and the subscription feed
type FollowController struct {
	Base
	posts   *services.PostService
	follows *services.FollowService
}

// NewFollowController creates a new FollowController
func NewFollowController(base Base, posts *services.PostService, follows *services.FollowService) *FollowController {
	return &FollowController{Base: base, posts: posts, follows: follows}
}

// FollowIndex lists posts by the authors the viewer follows
func (fc *FollowController) FollowIndex(w http.ResponseWriter, r *http.Request) {
	page, err := fc.posts.Feed(auth.ViewerID(r.Context()), r.URL.Query().Get("page"))
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	fc.render(w, r, http.StatusOK, "posts/follow", views.Context{"Page": page})
}

// ProfileFollow subscribes the viewer to the author
func (fc *FollowController) ProfileFollow(w http.ResponseWriter, r *http.Request) {
	if _, err := fc.follows.Follow(auth.UserFrom(r.Context()), muxVar(r, "username")); err != nil {
		fc.fail(w, r, err)
		return
	}
	redirect(w, r, followIndexURL)
}

// ProfileUnfollow removes the viewer's subscription to the author
func (fc *FollowController) ProfileUnfollow(w http.ResponseWriter, r *http.Request) {
	if _, err := fc.follows.Unfollow(auth.UserFrom(r.Context()), muxVar(r, "username")); err != nil {
		fc.fail(w, r, err)
		return
	}
	redirect(w, r, followIndexURL)
}
