package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/floatdr/forum/internal/domain"
	internal_errors "github.com/floatdr/forum/internal/errors"
	"github.com/floatdr/forum/internal/logger"
	"github.com/floatdr/forum/internal/middleware"
	"github.com/floatdr/forum/internal/text"
	"github.com/floatdr/forum/internal/validation"
	"github.com/google/uuid"
)

const multipartOverhead = 1 << 20

type threadForm struct {
	Title      string `validate:"required,min=3,max=200"`
	Body       string `validate:"required,min=1,max=20000"`
	CategoryId int64  `validate:"required"`
}

type createThreadPage struct {
	Categories []domain.Category
	MaxSizeMB  int64
}

func (h *Handler) CreateThreadGetHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.storeFor(r).GetCategories(r.Context())
	if err != nil {
		logger.Log.Error("loading categories for thread form", "error", err)
		http.Error(w, "could not load categories", http.StatusBadGateway)
		return
	}
	h.renderTemplate(w, r, "create_thread.html", createThreadPage{
		Categories: categories,
		MaxSizeMB:  h.Public.Upload.MaxBytes / (1 << 20),
	})
}

func (h *Handler) CreateThreadPostHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := validation.ParseMultipart(w, r, h.Public.Upload.MaxBytes+multipartOverhead); err != nil {
		h.redirectWithFlash(w, r, "/threads/new", flashCookieError,
			fmt.Sprintf("Upload too large, the limit is %d MB.", h.Public.Upload.MaxBytes/(1<<20)))
		return
	}

	form := threadForm{
		Title: text.SanitizePlain(r.FormValue("title")),
		Body:  strings.TrimSpace(r.FormValue("body")),
	}
	form.CategoryId, _ = formInt64(r, "category_id")
	if err := validate.Struct(form); err != nil {
		h.redirectWithFlash(w, r, "/threads/new", flashCookieError, "Pick a category and fill in title and body.")
		return
	}

	imageURL, err := h.uploadThreadImage(r, user.Token)
	if err != nil {
		h.redirectWithFlash(w, r, "/threads/new", flashCookieError, uploadErrorMessage(err))
		return
	}

	store := h.Stores(user.Token)
	thread, err := store.CreateThread(r.Context(), domain.ThreadCreationData{
		CategoryId: form.CategoryId,
		AuthorId:   user.Profile.Id,
		Title:      form.Title,
		Body:       form.Body,
		ImageURL:   imageURL,
	})
	if err != nil {
		logger.Log.Error("creating thread", "error", err)
		h.redirectWithFlash(w, r, "/threads/new", flashCookieError, "Could not create the thread.")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/threads/%d", thread.Id), http.StatusSeeOther)
}

// uploadThreadImage validates and stores the optional image attachment,
// returning its public URL or "" when no file was attached.
func (h *Handler) uploadThreadImage(r *http.Request, token string) (string, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File["image"]) == 0 {
		return "", nil
	}
	if h.Uploads == nil {
		return "", errors.New("image uploads are not available")
	}

	img, err := validation.ValidateImage(r.MultipartForm.File["image"][0], validation.ImageLimits{
		MaxBytes:     h.Public.Upload.MaxBytes,
		AllowedMimes: h.Public.Upload.AllowedMimes,
		MaxWidth:     h.Public.Upload.MaxImageWidth,
		MaxHeight:    h.Public.Upload.MaxImageHeight,
	})
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.NewString())
	return h.Uploads.Upload(r.Context(), token, h.Public.Upload.PostBucket, name, img.MimeType, img.Data)
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, validation.ErrInvalidMimeType):
		return "Only image files are allowed."
	case errors.Is(err, validation.ErrImageTooLarge):
		return "The image dimensions are too large."
	case errors.Is(err, validation.ErrPayloadTooLarge):
		return "The image file is too large."
	case errors.Is(err, validation.ErrNotAnImage):
		return "The file does not look like a valid image."
	default:
		return "Could not store the image."
	}
}

type editThreadPage struct {
	Thread domain.Thread
}

func (h *Handler) EditThreadGetHandler(w http.ResponseWriter, r *http.Request) {
	threadId, err := urlParamInt64(r, "id")
	if err != nil {
		http.Error(w, "invalid thread id", http.StatusBadRequest)
		return
	}
	user := middleware.GetUserFromContext(r)

	thread, err := h.storeFor(r).FetchThread(r.Context(), threadId)
	if err != nil {
		http.Error(w, "thread not found", internal_errors.StatusCode(err))
		return
	}
	if user == nil || (!user.Profile.IsAdmin && user.Profile.Id != thread.Author.Id) {
		http.Error(w, "you can only edit your own threads", http.StatusForbidden)
		return
	}

	h.renderTemplate(w, r, "edit_thread.html", editThreadPage{Thread: *thread})
}

func (h *Handler) EditThreadPostHandler(w http.ResponseWriter, r *http.Request) {
	threadId, err := urlParamInt64(r, "id")
	if err != nil {
		http.Error(w, "invalid thread id", http.StatusBadRequest)
		return
	}
	user := middleware.GetUserFromContext(r)
	threadURL := fmt.Sprintf("/threads/%d", threadId)

	store := h.storeFor(r)
	thread, err := store.FetchThread(r.Context(), threadId)
	if err != nil {
		http.Error(w, "thread not found", internal_errors.StatusCode(err))
		return
	}
	if user == nil || (!user.Profile.IsAdmin && user.Profile.Id != thread.Author.Id) {
		http.Error(w, "you can only edit your own threads", http.StatusForbidden)
		return
	}

	title := text.SanitizePlain(r.FormValue("title"))
	body := strings.TrimSpace(r.FormValue("body"))
	if title == "" || body == "" {
		h.redirectWithFlash(w, r, threadURL+"/edit", flashCookieError, "Title and body cannot be empty.")
		return
	}

	err = store.UpdateThread(r.Context(), threadId, domain.ThreadUpdate{Title: &title, Body: &body})
	if err != nil {
		logger.Log.Error("updating thread", "thread", threadId, "error", err)
		h.redirectWithFlash(w, r, threadURL+"/edit", flashCookieError, "Could not save the changes.")
		return
	}
	http.Redirect(w, r, threadURL, http.StatusSeeOther)
}

func (h *Handler) DeleteThreadHandler(w http.ResponseWriter, r *http.Request) {
	threadId, err := urlParamInt64(r, "id")
	if err != nil {
		http.Error(w, "invalid thread id", http.StatusBadRequest)
		return
	}
	user := middleware.GetUserFromContext(r)

	store := h.storeFor(r)
	thread, err := store.FetchThread(r.Context(), threadId)
	if err != nil {
		http.Error(w, "thread not found", internal_errors.StatusCode(err))
		return
	}
	if user == nil || (!user.Profile.IsAdmin && user.Profile.Id != thread.Author.Id) {
		http.Error(w, "you can only delete your own threads", http.StatusForbidden)
		return
	}

	if err := store.DeleteThread(r.Context(), threadId); err != nil {
		logger.Log.Error("deleting thread", "thread", threadId, "error", err)
		h.redirectWithFlash(w, r, fmt.Sprintf("/threads/%d", threadId), flashCookieError, "Could not delete the thread.")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
