package domain

import "context"

type ctxKey string

const (
	RequesterIdCtxKey ctxKey = "archivist-requesterId"
)

const (
	RequesterIdHeader = "archivist-requester-id"
)

// WithRequester returns a copy of ctx carrying the acting user id.
func WithRequester(ctx context.Context, requesterID string) context.Context {
	return context.WithValue(ctx, RequesterIdCtxKey, requesterID)
}

// RequesterFromContext returns the acting user id, or "" for anonymous calls.
func RequesterFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequesterIdCtxKey).(string)
	return id
}

type Kind string

const (
	KindEvent     Kind = "event"
	KindInterview Kind = "interview"
	KindItem      Kind = "item"
	KindPerson    Kind = "person"
)

// Kinds lists every node kind in node resolution priority order.
var Kinds = []Kind{KindEvent, KindInterview, KindItem, KindPerson}

// Label is the human readable name used in exported metadata.
func (k Kind) Label() string {
	switch k {
	case KindEvent:
		return "Event"
	case KindInterview:
		return "Interview"
	case KindItem:
		return "Item"
	case KindPerson:
		return "Person"
	default:
		return "Unknown"
	}
}

// ParseKind accepts both the singular kind and the plural listing type.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "event", "events":
		return KindEvent, true
	case "interview", "interviews":
		return KindInterview, true
	case "item", "items":
		return KindItem, true
	case "person", "people", "persons":
		return KindPerson, true
	default:
		return "", false
	}
}
