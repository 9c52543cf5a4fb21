package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/floatdr/forum/internal/domain"
	"github.com/floatdr/forum/internal/logger"
	"github.com/floatdr/forum/internal/middleware"
	"github.com/floatdr/forum/internal/text"
)

// ReportPostHandler files a report against a thread. Any signed-in user can
// report; the queue itself is admin-only.
func (h *Handler) ReportPostHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	threadId, err := urlParamInt64(r, "id")
	if err != nil {
		http.Error(w, "invalid thread id", http.StatusBadRequest)
		return
	}
	threadURL := fmt.Sprintf("/threads/%d", threadId)

	reason := text.SanitizePlain(r.FormValue("reason"))
	if reason == "" {
		h.redirectWithFlash(w, r, threadURL, flashCookieError, "Pick a reason for the report.")
		return
	}

	err = h.Stores(user.Token).CreateReport(r.Context(), domain.ReportCreationData{
		ThreadId:   threadId,
		ReporterId: user.Profile.Id,
		Reason:     reason,
		Details:    strings.TrimSpace(r.FormValue("details")),
	})
	if err != nil {
		logger.Log.Error("filing report", "thread", threadId, "error", err)
		h.redirectWithFlash(w, r, threadURL, flashCookieError, "Could not file the report.")
		return
	}
	h.redirectWithFlash(w, r, threadURL, flashCookieSuccess, "Report filed. A moderator will take a look.")
}

type adminReportsPage struct {
	Reports []domain.Report
}

func (h *Handler) AdminReportsHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	reports, err := h.Stores(user.Token).OpenReports(r.Context())
	if err != nil {
		logger.Log.Error("loading report queue", "error", err)
		http.Error(w, "could not load reports", http.StatusBadGateway)
		return
	}
	h.renderTemplate(w, r, "admin_reports.html", adminReportsPage{Reports: reports})
}

func (h *Handler) ResolveReportHandler(w http.ResponseWriter, r *http.Request) {
	h.reportAction(w, r, func(store Store, id domain.ReportId) error {
		return store.ResolveReport(r.Context(), id)
	}, "Report resolved.")
}

func (h *Handler) DeleteReportHandler(w http.ResponseWriter, r *http.Request) {
	h.reportAction(w, r, func(store Store, id domain.ReportId) error {
		return store.DeleteReport(r.Context(), id)
	}, "Report dismissed.")
}

func (h *Handler) reportAction(w http.ResponseWriter, r *http.Request, action func(Store, domain.ReportId) error, success string) {
	user := middleware.GetUserFromContext(r)
	reportId, err := urlParamInt64(r, "id")
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}

	if err := action(h.Stores(user.Token), reportId); err != nil {
		logger.Log.Error("report action failed", "report", reportId, "error", err)
		h.redirectWithFlash(w, r, "/admin/reports", flashCookieError, "Could not update the report.")
		return
	}
	h.redirectWithFlash(w, r, "/admin/reports", flashCookieSuccess, success)
}

// AdminDeleteThreadHandler removes a reported thread straight from the queue.
func (h *Handler) AdminDeleteThreadHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	threadId, err := urlParamInt64(r, "id")
	if err != nil {
		http.Error(w, "invalid thread id", http.StatusBadRequest)
		return
	}

	if err := h.Stores(user.Token).DeleteThread(r.Context(), threadId); err != nil {
		logger.Log.Error("deleting reported thread", "thread", threadId, "error", err)
		h.redirectWithFlash(w, r, "/admin/reports", flashCookieError, "Could not delete the thread.")
		return
	}
	h.redirectWithFlash(w, r, "/admin/reports", flashCookieSuccess, "Thread deleted.")
}
