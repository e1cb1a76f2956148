package controllers

import "net/http"

// AboutController serves the static about pages
type AboutController struct {
	Base
}

func NewAboutController(base Base) *AboutController {
	return &AboutController{Base: base}
}

func (ac *AboutController) Author(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, http.StatusOK, "about/author", nil)
}

func (ac *AboutController) Tech(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, http.StatusOK, "about/tech", nil)
}
