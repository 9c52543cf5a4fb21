package forum

import (
	"sort"

	"github.com/floatdr/forum/internal/domain"
)

// CommentNode is one top-level comment with its child replies attached,
// children ascending by creation time.
type CommentNode struct {
	Comment domain.Reply
	Replies []domain.Reply
}

// BuildTree partitions a flat reply list into the two-level tree: replies
// with a nil parent become comments (input order preserved), the rest attach
// under their parent sorted ascending by CreatedAt with ties keeping input
// order. Replies whose parent is absent from the working set (deleted
// concurrently) are dropped without error; they stay in the data store and
// reappear only if their parent does.
func BuildTree(replies []domain.Reply) []CommentNode {
	children := make(map[domain.ReplyId][]domain.Reply)
	var comments []domain.Reply
	for _, r := range replies {
		if r.IsComment() {
			comments = append(comments, r)
			continue
		}
		children[*r.ParentId] = append(children[*r.ParentId], r)
	}

	nodes := make([]CommentNode, 0, len(comments))
	for _, c := range comments {
		kids := children[c.Id]
		sort.SliceStable(kids, func(i, j int) bool {
			return kids[i].CreatedAt.Before(kids[j].CreatedAt)
		})
		nodes = append(nodes, CommentNode{Comment: c, Replies: kids})
	}
	return nodes
}
