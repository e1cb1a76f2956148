package auth

import (
	"context"
	"net/url"
	"strings"

	"yatube/app/models"
)

type contextKey struct{}

// WithUser stores the logged in user on ctx.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFrom returns the logged in user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(contextKey{}).(*models.User)
	return user
}

// ViewerID is the logged in user's ID, 0 when anonymous.
func ViewerID(ctx context.Context) int {
	if user := UserFrom(ctx); user != nil {
		return user.ID
	}
	return 0
}

// SafeNext returns next if it is a local path, otherwise "/".
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

// LoginURL is where unauthenticated requests for next are sent.
func LoginURL(next string) string {
	return "/auth/login/?next=" + url.QueryEscape(next)
}
