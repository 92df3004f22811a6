package domain

import "time"

// Metadata is one entry of a node's semi-structured key/value extension list.
type Metadata struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Base holds the fields every content node kind shares.
type Base struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"projectId"`
	CollectionIDs []string   `json:"collectionId"`
	Slug          string     `json:"slug"`
	Private       bool       `json:"private"`
	Metadata      []Metadata `json:"metadata"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NodeBase exposes the shared fields for generic handling.
func (b *Base) NodeBase() *Base { return b }

// Node is the common accessor surface over Event, Interview, Item and Person.
type Node interface {
	NodeBase() *Base
	Kind() Kind
	DisplayTitle() string
	DisplayDescription() string
}

type Event struct {
	Base
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DateStart   *time.Time `json:"dateStart,omitempty"`
	DateEnd     *time.Time `json:"dateEnd,omitempty"`
	DateDisplay string     `json:"dateDisplay,omitempty"`
}

func (e *Event) Kind() Kind                 { return KindEvent }
func (e *Event) DisplayTitle() string       { return e.Title }
func (e *Event) DisplayDescription() string { return e.Description }

type Interview struct {
	Base
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PersonIDs   []string `json:"personId"`
	TagIDs      []string `json:"tagIds"`
}

func (i *Interview) Kind() Kind                 { return KindInterview }
func (i *Interview) DisplayTitle() string       { return i.Title }
func (i *Interview) DisplayDescription() string { return i.Description }

type Item struct {
	Base
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (i *Item) Kind() Kind                 { return KindItem }
func (i *Item) DisplayTitle() string       { return i.Title }
func (i *Item) DisplayDescription() string { return i.Description }

// Person is displayed with its name as title and its bio as description.
type Person struct {
	Base
	Name         string     `json:"name"`
	Bio          string     `json:"bio"`
	DateBirth    *time.Time `json:"dateBirth,omitempty"`
	DateDeath    *time.Time `json:"dateDeath,omitempty"`
	TagIDs       []string   `json:"tagIds"`
	EventIDs     []string   `json:"events"`
	InterviewIDs []string   `json:"interviews"`
	ItemIDs      []string   `json:"items"`
}

func (p *Person) Kind() Kind                 { return KindPerson }
func (p *Person) DisplayTitle() string       { return p.Name }
func (p *Person) DisplayDescription() string { return p.Bio }

// NodeView is the normalized, kind-tagged view returned by node lookups.
type NodeView struct {
	ID          string `json:"id"`
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	ProjectID   string `json:"projectId"`
	Private     bool   `json:"private"`
	Node        Node   `json:"node"`
}

// ViewOf normalizes any node into its kind-tagged view.
func ViewOf(n Node) NodeView {
	base := n.NodeBase()
	return NodeView{
		ID:          base.ID,
		Kind:        n.Kind(),
		Title:       n.DisplayTitle(),
		Description: n.DisplayDescription(),
		Slug:        base.Slug,
		ProjectID:   base.ProjectID,
		Private:     base.Private,
		Node:        n,
	}
}

// NewNode returns an empty node of kind k, or nil for an unknown kind.
func NewNode(k Kind) Node {
	switch k {
	case KindEvent:
		return &Event{}
	case KindInterview:
		return &Interview{}
	case KindItem:
		return &Item{}
	case KindPerson:
		return &Person{}
	default:
		return nil
	}
}
