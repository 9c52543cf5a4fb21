package domain

import "time"

// Reply is a comment on a thread. ParentId == nil means a top-level comment;
// otherwise it references a top-level comment (the tree is two levels deep).
type Reply struct {
	Id        ReplyId   `json:"id"`
	ThreadId  ThreadId  `json:"thread_id"`
	ParentId  *ReplyId  `json:"parent_id,omitempty"`
	Author    Profile   `json:"author"`
	Body      ReplyBody `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Reply) IsComment() bool {
	return r.ParentId == nil
}

type ReplyCreationData struct {
	ThreadId ThreadId
	ParentId *ReplyId
	AuthorId UserId
	Body     ReplyBody
}
