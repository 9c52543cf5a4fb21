package handler

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/floatdr/forum/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// storeFor binds the data store to the caller's session, anonymous when
// nobody is signed in.
func (h *Handler) storeFor(r *http.Request) Store {
	if user := middleware.GetUserFromContext(r); user != nil {
		return h.Stores(user.Token)
	}
	return h.Stores("")
}

// Flash values go through base64 so punctuation survives the cookie grammar.
func encodeFlash(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func decodeFlash(s string) string {
	decoded, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// safeReturnTo accepts only same-site paths for post-action redirects.
// Absolute URLs and protocol-relative forms ("//evil.test") are rejected.
func safeReturnTo(target string) bool {
	return strings.HasPrefix(target, "/") &&
		!strings.HasPrefix(target, "//") &&
		!strings.HasPrefix(target, "/\\")
}

func urlParamInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func formInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.FormValue(name), 10, 64)
}
