package domain

import "time"

type ReportStatus string

const (
	ReportOpen     ReportStatus = "open"
	ReportResolved ReportStatus = "resolved"
)

type Report struct {
	Id         ReportId     `json:"id"`
	ThreadId   ThreadId     `json:"thread_id"`
	ReporterId UserId       `json:"reporter_id"`
	Reason     string       `json:"reason"`
	Details    string       `json:"details,omitempty"`
	Status     ReportStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`

	// Joined for the moderation queue; empty when the thread or reporter
	// row is gone.
	ThreadTitle      ThreadTitle `json:"thread_title,omitempty"`
	ReporterUsername string      `json:"reporter_username,omitempty"`
}

type ReportCreationData struct {
	ThreadId   ThreadId
	ReporterId UserId
	Reason     string
	Details    string
}
