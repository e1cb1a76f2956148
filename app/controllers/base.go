package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"yatube/app/auth"
	"yatube/app/log"
	"yatube/app/middleware"
	"yatube/app/repositories"
	"yatube/app/views"
)

// Base carries what every controller needs to answer a request.
type Base struct {
	views *views.Renderer
}

func NewBase(renderer *views.Renderer) Base {
	return Base{views: renderer}
}

// render adds the viewer and path to data and executes the page.
func (b Base) render(w http.ResponseWriter, r *http.Request, status int, name string, data views.Context) {
	if data == nil {
		data = views.Context{}
	}
	data["Viewer"] = auth.UserFrom(r.Context())
	data["Path"] = r.URL.Path
	if err := b.views.Render(w, status, name, data); err != nil {
		log.Log.WithError(err).WithField("request_id", middleware.RequestID(r.Context())).Error("template error")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// NotFound renders the custom 404 page.
func (b Base) NotFound(w http.ResponseWriter, r *http.Request) {
	b.render(w, r, http.StatusNotFound, "core/404", nil)
}

// ServerError renders the custom 500 page.
func (b Base) ServerError(w http.ResponseWriter, r *http.Request) {
	b.render(w, r, http.StatusInternalServerError, "core/500", nil)
}

// fail maps err onto the 404 or 500 page.
func (b Base) fail(w http.ResponseWriter, r *http.Request, err error) {
	if repositories.IsNotFound(err) {
		b.NotFound(w, r)
		return
	}
	log.Log.WithError(err).
		WithField("request_id", middleware.RequestID(r.Context())).
		WithField("path", r.URL.Path).
		Error("request failed")
	b.ServerError(w, r)
}

// pathID reads the numeric {id} route variable.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil && id > 0
}

func muxVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func postURL(id int) string {
	return "/posts/" + strconv.Itoa(id) + "/"
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}

func redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusFound)
}

// Helper methods for consistent response handling

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, map[string]string{"error": message})
}
