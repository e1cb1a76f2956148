package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/controllers"
	"yatube/app/middleware"
	"yatube/app/repositories"
	"yatube/app/services"
	"yatube/app/uploads"
	"yatube/app/views"
)

// IndexCachePrefix prefixes every cached index page key.
const IndexCachePrefix = "index_page"

// Options is everything the router is built from.
type Options struct {
	Store         *repositories.Store
	Cache         cache.Store
	IndexCacheTTL time.Duration
	Sessions      *auth.Sessions
	Media         *uploads.Storage
	MediaURL      string
	StaticDir     string
	PostsPerPage  int
	TitleTruncate int
}

// IndexCacheKey names the cache slot of an index request. Viewers never
// share a slot, and each page and query string gets its own.
func IndexCacheKey(r *http.Request) string {
	return IndexCachePrefix + ":" + strconv.Itoa(auth.ViewerID(r.Context())) + ":" + r.URL.RequestURI()
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(opts Options) (*mux.Router, error) {
	renderer, err := views.New(opts.MediaURL)
	if err != nil {
		return nil, err
	}
	if opts.Cache == nil {
		opts.Cache = cache.Noop{}
	}

	postService := services.NewPostService(opts.Store, opts.Media, opts.PostsPerPage)
	commentService := services.NewCommentService(opts.Store.Comments, opts.Store.Posts)
	followService := services.NewFollowService(opts.Store.Follows, opts.Store.Users)
	userService := services.NewUserService(opts.Store.Users)

	base := controllers.NewBase(renderer)
	postController := controllers.NewPostController(base, postService, commentService, followService, opts.Media, opts.TitleTruncate)
	commentController := controllers.NewCommentController(base, commentService)
	followController := controllers.NewFollowController(base, postService, followService)
	aboutController := controllers.NewAboutController(base)
	authController := controllers.NewAuthController(base, userService, opts.Sessions)
	apiController := controllers.NewAPIController(postService, commentService)

	router := mux.NewRouter().StrictSlash(true)

	// Apply global middleware
	authenticate := middleware.Authenticate(opts.Sessions, userService)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer(base.ServerError))
	router.Use(authenticate)
	router.NotFoundHandler = middleware.Logger(authenticate(http.HandlerFunc(base.NotFound)))

	login := func(h http.HandlerFunc) http.Handler {
		return middleware.LoginRequired(h)
	}
	indexCache := cache.Page(opts.Cache, opts.IndexCacheTTL, IndexCacheKey)

	// Files
	router.PathPrefix(opts.MediaURL).Handler(http.StripPrefix(opts.MediaURL, http.FileServer(http.Dir(opts.Media.Root))))
	if opts.StaticDir != "" {
		router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	// Posts
	router.Handle("/", indexCache(http.HandlerFunc(postController.Index))).Methods("GET")
	router.HandleFunc("/group/{slug}/", postController.GroupPosts).Methods("GET")
	router.HandleFunc("/profile/{username}/", postController.Profile).Methods("GET")
	router.HandleFunc("/posts/{id:[0-9]+}/", postController.PostDetail).Methods("GET")
	router.Handle("/create/", login(postController.PostCreate)).Methods("GET", "POST")
	router.Handle("/posts/{id:[0-9]+}/edit/", login(postController.PostEdit)).Methods("GET", "POST")
	router.Handle("/posts/{id:[0-9]+}/delete/", login(postController.PostDelete)).Methods("POST")
	router.Handle("/posts/{id:[0-9]+}/comment/", login(commentController.AddComment)).Methods("POST")

	// Follows
	router.Handle("/follow/", login(followController.FollowIndex)).Methods("GET")
	router.Handle("/profile/{username}/follow/", login(followController.ProfileFollow)).Methods("GET")
	router.Handle("/profile/{username}/unfollow/", login(followController.ProfileUnfollow)).Methods("GET")

	// About
	router.HandleFunc("/about/author/", aboutController.Author).Methods("GET")
	router.HandleFunc("/about/tech/", aboutController.Tech).Methods("GET")

	// Auth
	router.HandleFunc("/auth/login/", authController.Login).Methods("GET", "POST")
	router.HandleFunc("/auth/signup/", authController.Signup).Methods("GET", "POST")
	router.HandleFunc("/auth/logout/", authController.Logout).Methods("GET", "POST")

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.HandleFunc("/posts/", apiController.List).Methods("GET")
	api.HandleFunc("/posts/{id:[0-9]+}/", apiController.Show).Methods("GET")

	return router, nil
}
