package forum

import (
	"sort"

	"github.com/floatdr/forum/internal/domain"
)

type SortPolicy string

const (
	SortNewest   SortPolicy = "newest"
	SortRelevant SortPolicy = "relevant"
)

// View is the derived thread view model: the root thread, its comment tree,
// the reaction ledger and per-comment expand state. It is owned by a single
// session and rebuilt whenever the raw reply/reaction collections change; it
// never persists anything itself.
type View struct {
	Thread *domain.Thread

	nodes    []CommentNode
	ledger   *Ledger
	expanded map[domain.ReplyId]bool
	policy   SortPolicy
}

func NewView(thread *domain.Thread, replies []domain.Reply, reactions []domain.Reaction, policy SortPolicy) *View {
	v := &View{
		Thread:   thread,
		expanded: make(map[domain.ReplyId]bool),
		policy:   policy,
	}
	v.Rebuild(replies, reactions)
	return v
}

// Rebuild replaces the tree and ledger from fresh raw rows. Expand state
// survives a rebuild but is pruned to comments that still exist, keeping
// expandedCommentIds a subset of the current comment set.
func (v *View) Rebuild(replies []domain.Reply, reactions []domain.Reaction) {
	v.nodes = BuildTree(replies)
	v.ledger = NewLedger(reactions)

	alive := make(map[domain.ReplyId]bool, len(v.nodes))
	for _, n := range v.nodes {
		alive[n.Comment.Id] = true
	}
	for id := range v.expanded {
		if !alive[id] {
			delete(v.expanded, id)
		}
	}
}

func (v *View) Policy() SortPolicy { return v.policy }

func (v *View) SetPolicy(p SortPolicy) {
	if p == SortNewest || p == SortRelevant {
		v.policy = p
	}
}

// Comments returns the top-level comments under the current sort policy.
// The order is total: like-count and timestamp ties fall through to the id,
// so distinct comments never compare equal.
func (v *View) Comments() []CommentNode {
	out := make([]CommentNode, len(v.nodes))
	copy(out, v.nodes)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Comment, out[j].Comment
		if v.policy == SortRelevant {
			la, lb := v.ledger.Count(a.Id, domain.ReactionLike), v.ledger.Count(b.Id, domain.ReactionLike)
			if la != lb {
				return la > lb
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Id > b.Id
	})
	return out
}

// Total counts the replies currently in the tree, nested ones included.
// Orphans are not in the tree, so they are not counted.
func (v *View) Total() int {
	n := len(v.nodes)
	for _, node := range v.nodes {
		n += len(node.Replies)
	}
	return n
}

func (v *View) Likes(replyId domain.ReplyId) int {
	return v.ledger.Count(replyId, domain.ReactionLike)
}

func (v *View) Dislikes(replyId domain.ReplyId) int {
	return v.ledger.Count(replyId, domain.ReactionDislike)
}

// ReactionOf reports the given user's reaction to a reply, or "" if none.
func (v *View) ReactionOf(replyId domain.ReplyId, userId domain.UserId) domain.ReactionType {
	t, ok := v.ledger.ReactionOf(replyId, userId)
	if !ok {
		return ""
	}
	return t
}

// ToggleExpanded flips the collapse state of one comment. Pure state change,
// lost when the session is discarded.
func (v *View) ToggleExpanded(commentId domain.ReplyId) {
	if v.expanded[commentId] {
		delete(v.expanded, commentId)
		return
	}
	for _, n := range v.nodes {
		if n.Comment.Id == commentId {
			v.expanded[commentId] = true
			return
		}
	}
}

func (v *View) IsExpanded(commentId domain.ReplyId) bool {
	return v.expanded[commentId]
}

// ReplyCount is cheap for any comment; nested replies themselves should only
// be requested for expanded comments.
func (v *View) ReplyCount(commentId domain.ReplyId) int {
	for _, n := range v.nodes {
		if n.Comment.Id == commentId {
			return len(n.Replies)
		}
	}
	return 0
}

func (v *View) Replies(commentId domain.ReplyId) []domain.Reply {
	for _, n := range v.nodes {
		if n.Comment.Id == commentId {
			return n.Replies
		}
	}
	return nil
}
