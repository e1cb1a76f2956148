package controllers

import (
	"net/http"

	"yatube/app/log"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/services"
)

// APIController serves posts as JSON
type APIController struct {
	posts    *services.PostService
	comments *services.CommentService
}

// NewAPIController creates a new APIController
func NewAPIController(posts *services.PostService, comments *services.CommentService) *APIController {
	return &APIController{posts: posts, comments: comments}
}

type postListResponse struct {
	Posts       []*models.Post `json:"posts"`
	Page        int            `json:"page"`
	NumPages    int            `json:"numPages"`
	Count       int            `json:"count"`
	HasNext     bool           `json:"hasNext"`
	HasPrevious bool           `json:"hasPrevious"`
}

// List returns one page of posts, newest first
func (ac *APIController) List(w http.ResponseWriter, r *http.Request) {
	page, err := ac.posts.Index(r.URL.Query().Get("page"))
	if err != nil {
		log.Log.WithError(err).Error("api list posts")
		sendError(w, "Failed to fetch posts", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, postListResponse{
		Posts:       page.Items,
		Page:        page.Number,
		NumPages:    page.NumPages,
		Count:       page.Count,
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
	})
}

// Show returns one post with its comments
func (ac *APIController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}
	post, err := ac.posts.GetPost(id)
	if repositories.IsNotFound(err) {
		sendError(w, "Post not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Log.WithError(err).Error("api get post")
		sendError(w, "Failed to fetch post", http.StatusInternalServerError)
		return
	}
	comments, err := ac.comments.ListPostComments(id)
	if err != nil {
		log.Log.WithError(err).Error("api list comments")
		sendError(w, "Failed to fetch comments", http.StatusInternalServerError)
		return
	}
	post.Comments = comments
	sendJSON(w, http.StatusOK, post)
}
