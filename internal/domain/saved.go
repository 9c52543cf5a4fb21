package domain

import "time"

type SavedThread struct {
	Id        int64     `json:"id"`
	UserId    UserId    `json:"user_id"`
	ThreadId  ThreadId  `json:"thread_id"`
	Thread    *Thread   `json:"thread,omitempty"` // joined for the saved list
	CreatedAt time.Time `json:"created_at"`
}
