package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/floatdr/forum/internal/logger"
	"github.com/floatdr/forum/internal/middleware"
)

const (
	flashCookieError   = "flash_error"
	flashCookieSuccess = "flash_success"
)

// CommonTemplateData is available to every page under .Common.
type CommonTemplateData struct {
	CurrentUser *middleware.CurrentUser
	Error       string
	Success     string
}

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common CommonTemplateData
}

func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request) CommonTemplateData {
	return CommonTemplateData{
		CurrentUser: middleware.GetUserFromContext(r),
		Error:       h.popFlash(w, r, flashCookieError),
		Success:     h.popFlash(w, r, flashCookieSuccess),
	}
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	tmpl, ok := h.Templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	wrapped := TemplateData{
		Data:   data,
		Common: h.initCommonTemplateData(w, r),
	}

	// Render to a buffer first so a template error never leaks half a page.
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, wrapped); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}
	_, _ = buf.WriteTo(w)
}

func (h *Handler) setFlash(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    encodeFlash(value),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	return decodeFlash(cookie.Value)
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, cookieName, msg string) {
	h.setFlash(w, cookieName, msg)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
