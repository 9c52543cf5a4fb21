package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/floatdr/forum/internal/domain"
	"github.com/floatdr/forum/internal/logger"
	"github.com/floatdr/forum/internal/middleware"
	"github.com/floatdr/forum/internal/text"
	"github.com/floatdr/forum/internal/validation"
	"github.com/google/uuid"
)

type profilePage struct {
	Profile    domain.Profile
	Membership *domain.Membership
	IsSelf     bool
}

func (h *Handler) ProfileGetHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	membership, err := h.Stores(user.Token).GetMembership(r.Context(), user.Profile.Id)
	if err != nil {
		logger.Log.Warn("loading membership for profile page", "error", err)
	}

	h.renderTemplate(w, r, "profile.html", profilePage{
		Profile:    user.Profile,
		Membership: membership,
		IsSelf:     true,
	})
}

func (h *Handler) ProfileEditPostHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := validation.ParseMultipart(w, r, h.Public.Upload.MaxBytes+multipartOverhead); err != nil {
		h.redirectWithFlash(w, r, "/profile", flashCookieError, "Upload too large.")
		return
	}

	var upd domain.ProfileUpdate
	if username := text.SanitizePlain(r.FormValue("username")); username != "" && username != user.Profile.Username {
		if len(username) < 3 || len(username) > 32 {
			h.redirectWithFlash(w, r, "/profile", flashCookieError, "Usernames are 3 to 32 characters.")
			return
		}
		upd.Username = &username
	}

	if r.MultipartForm != nil && len(r.MultipartForm.File["avatar"]) > 0 {
		if h.Uploads == nil {
			h.redirectWithFlash(w, r, "/profile", flashCookieError, "Avatar uploads are not available.")
			return
		}
		img, err := validation.ValidateImage(r.MultipartForm.File["avatar"][0], validation.ImageLimits{
			MaxBytes:     h.Public.Upload.MaxBytes,
			AllowedMimes: h.Public.Upload.AllowedMimes,
			MaxWidth:     h.Public.Upload.MaxImageWidth,
			MaxHeight:    h.Public.Upload.MaxImageHeight,
		})
		if err != nil {
			h.redirectWithFlash(w, r, "/profile", flashCookieError, uploadErrorMessage(err))
			return
		}

		name := fmt.Sprintf("%s-%d-%s", user.Profile.Id, time.Now().Unix(), uuid.NewString())
		url, err := h.Uploads.Upload(r.Context(), user.Token, h.Public.Upload.AvatarBucket, name, img.MimeType, img.Data)
		if err != nil {
			logger.Log.Error("uploading avatar", "error", err)
			h.redirectWithFlash(w, r, "/profile", flashCookieError, "Could not store the avatar.")
			return
		}
		upd.AvatarURL = &url
	}

	if upd.Username == nil && upd.AvatarURL == nil {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	if err := h.Stores(user.Token).UpdateProfile(r.Context(), user.Profile.Id, upd); err != nil {
		logger.Log.Error("updating profile", "user", user.Profile.Id, "error", err)
		h.redirectWithFlash(w, r, "/profile", flashCookieError, "Could not save the profile. The username may be taken.")
		return
	}
	h.redirectWithFlash(w, r, "/profile", flashCookieSuccess, "Profile updated.")
}
