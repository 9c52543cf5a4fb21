package domain

import "github.com/google/uuid"

type (
	Email    = string
	Password = string

	// The hosted auth service issues uuid subjects; rows created through the
	// data store reference them as-is.
	UserId = uuid.UUID

	CategoryId = int64
	ThreadId   = int64
	ReplyId    = int64
	ReportId   = int64

	CategorySlug = string
	ThreadTitle  = string
	ReplyBody    = string
)
