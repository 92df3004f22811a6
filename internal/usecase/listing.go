package usecase

import (
	"context"

	"github.com/totegamma/archivist/internal/domain"
)

const defaultListingLimit = 10

// ListingSource is one node kind as seen by the public listing.
type ListingSource interface {
	Kind() domain.Kind
	ListAll(ctx context.Context, filter NodeFilter) ([]domain.Node, error)
	CountAll(ctx context.Context, filter NodeFilter) (int64, error)
}

// graphOrder is the order kinds appear in the graph node list.
var graphOrder = []domain.Kind{domain.KindPerson, domain.KindInterview, domain.KindItem, domain.KindEvent}

// listingTypes maps each kind to its plural listing type.
var listingTypes = map[domain.Kind]string{
	domain.KindEvent:     "events",
	domain.KindInterview: "interviews",
	domain.KindItem:      "items",
	domain.KindPerson:    "people",
}

func ListingType(kind domain.Kind) string {
	return listingTypes[kind]
}

type ListingQuery struct {
	Type      string
	ProjectID string
	Offset    int
	Limit     int
	Raw       map[string]string
}

type Pagination struct {
	NumFound int64             `json:"numFound"`
	Query    map[string]string `json:"query"`
	Sort     string            `json:"sort"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

type ListingPage struct {
	Kind       domain.Kind
	Nodes      []domain.Node
	Pagination Pagination
}

// Edge links a person to an event, interview or item it references.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type Graph struct {
	Nodes []domain.NodeView `json:"nodes"`
	Edges []Edge            `json:"edges"`
}

// Listing serves the versioned public listing of nodes by type.
type Listing struct {
	sources map[domain.Kind]ListingSource
}

func NewListing(sources ...ListingSource) *Listing {
	bySource := make(map[domain.Kind]ListingSource, len(sources))
	for _, s := range sources {
		bySource[s.Kind()] = s
	}
	return &Listing{sources: bySource}
}

func sortField(kind domain.Kind) string {
	if kind == domain.KindPerson {
		return "name"
	}
	return "title"
}

// Page returns one page of a single type sorted by display title.
func (l *Listing) Page(ctx context.Context, q ListingQuery) (ListingPage, error) {
	kind, ok := domain.ParseKind(q.Type)
	if !ok {
		return ListingPage{}, domain.ArgumentError{Field: "type"}
	}
	source, ok := l.sources[kind]
	if !ok {
		return ListingPage{}, domain.ArgumentError{Field: "type"}
	}

	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Limit <= 0 {
		q.Limit = defaultListingLimit
	}

	filter := NodeFilter{
		ProjectID:   q.ProjectID,
		Offset:      q.Offset,
		Limit:       q.Limit,
		SortByTitle: true,
	}
	nodes, err := source.ListAll(ctx, filter)
	if err != nil {
		return ListingPage{}, err
	}
	count, err := source.CountAll(ctx, NodeFilter{ProjectID: q.ProjectID})
	if err != nil {
		return ListingPage{}, err
	}

	return ListingPage{
		Kind:  kind,
		Nodes: nodes,
		Pagination: Pagination{
			NumFound: count,
			Query:    q.Raw,
			Sort:     sortField(kind),
			Limit:    q.Limit,
			Offset:   q.Offset,
		},
	}, nil
}

// Graph returns every node with the person links as edges.
func (l *Listing) Graph(ctx context.Context, projectID string) (Graph, error) {
	graph := Graph{
		Nodes: []domain.NodeView{},
		Edges: []Edge{},
	}

	for _, kind := range graphOrder {
		source, ok := l.sources[kind]
		if !ok {
			continue
		}
		nodes, err := source.ListAll(ctx, NodeFilter{ProjectID: projectID, SortByTitle: true})
		if err != nil {
			return Graph{}, err
		}
		for _, n := range nodes {
			graph.Nodes = append(graph.Nodes, domain.ViewOf(n))

			person, ok := n.(*domain.Person)
			if !ok {
				continue
			}
			for _, links := range [][]string{person.EventIDs, person.InterviewIDs, person.ItemIDs} {
				for _, target := range links {
					if target == "" {
						continue
					}
					graph.Edges = append(graph.Edges, Edge{Source: person.ID, Target: target})
				}
			}
		}
	}

	return graph, nil
}
