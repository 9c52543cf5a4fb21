package middleware

import (
	"net/http"
	"time"
)

// NeedMembership gates posting surfaces on an active membership. Must run
// after NeedAuth, it assumes a signed-in user in the context.
func (a *Auth) NeedMembership() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r)
			if user == nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			// Admins post regardless of membership state.
			if user.Profile.IsAdmin {
				next.ServeHTTP(w, r)
				return
			}

			membership, err := a.sources(user.Token).GetMembership(r.Context(), user.Profile.Id)
			if err != nil {
				http.Error(w, "membership check failed", http.StatusInternalServerError)
				return
			}
			if !membership.Active(time.Now()) {
				http.Error(w, "an active membership is required to post", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
