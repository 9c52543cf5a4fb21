package domain

type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

func (t ReactionType) Valid() bool {
	return t == ReactionLike || t == ReactionDislike
}

// Reaction is a like/dislike marker. At most one row exists per
// (ReplyId, UserId) pair; the data store upserts on that key.
type Reaction struct {
	ReplyId ReplyId      `json:"reply_id"`
	UserId  UserId       `json:"user_id"`
	Type    ReactionType `json:"type"`
}
