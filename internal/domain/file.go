package domain

import "fmt"

// ParentRef identifies the node that owns a file set or manifest.
type ParentRef struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// ForeignKey is the field name that correlates dependents to the parent
// (eventId, interviewId, personId or itemId).
func (p ParentRef) ForeignKey() string {
	return string(p.Kind) + "Id"
}

// Key is a stable identifier for locking and caching.
func (p ParentRef) Key() string {
	return fmt.Sprintf("%s:%s", p.Kind, p.ID)
}

func RefOf(n Node) ParentRef {
	return ParentRef{Kind: n.Kind(), ID: n.NodeBase().ID}
}

// File is an attachment owned by exactly one node.
type File struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Path      string    `json:"path"`
	Slug      string    `json:"slug"`
	ProjectID string    `json:"projectId"`
	Parent    ParentRef `json:"parent"`
}
