package domain

import "time"

type Thread struct {
	Id         ThreadId    `json:"id"`
	CategoryId CategoryId  `json:"category_id"`
	Author     Profile     `json:"author"`
	Title      ThreadTitle `json:"title"`
	Body       string      `json:"body,omitempty"`
	ImageURL   string      `json:"image_url,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// to iterate thru layers: handler -> adapter
type ThreadCreationData struct {
	CategoryId CategoryId
	AuthorId   UserId
	Title      ThreadTitle
	Body       string
	ImageURL   string
}

type ThreadUpdate struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}
