package usecase

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/archivist/internal/domain"
)

func newListingFixture() *Listing {
	f := newFixture()

	people := newMockNodeRepo(PersonKind)
	people.put(&domain.Person{Base: domain.Base{ID: "pp-1", ProjectID: "p1", Slug: "zosima"}, Name: "Zosima", EventIDs: []string{"e-1"}, ItemIDs: []string{"i-1", ""}})
	people.put(&domain.Person{Base: domain.Base{ID: "pp-2", ProjectID: "p1", Slug: "avvakum"}, Name: "Avvakum", InterviewIDs: []string{"iv-1"}})

	events := newMockNodeRepo(EventKind)
	for i, title := range []string{"Council", "Exile", "Baptism"} {
		events.put(&domain.Event{Base: domain.Base{ID: "e-" + string(rune('1'+i)), ProjectID: "p1"}, Title: title})
	}

	return NewListing(
		NewEntityUsecase(PersonKind, people, f.deps),
		NewEntityUsecase(EventKind, events, f.deps),
		NewEntityUsecase(InterviewKind, newMockNodeRepo(InterviewKind), f.deps),
		NewEntityUsecase(ItemKind, newMockNodeRepo(ItemKind), f.deps),
	)
}

func TestListingPage(t *testing.T) {
	listing := newListingFixture()

	page, err := listing.Page(context.Background(), ListingQuery{Type: "events", Limit: 2, Raw: map[string]string{"type": "events", "limit": "2"}})
	require.NoError(t, err)

	assert.Equal(t, domain.KindEvent, page.Kind)
	require.Len(t, page.Nodes, 2)
	assert.Equal(t, "Baptism", page.Nodes[0].DisplayTitle())
	assert.Equal(t, "Council", page.Nodes[1].DisplayTitle())
	assert.Equal(t, Pagination{
		NumFound: 3,
		Query:    map[string]string{"type": "events", "limit": "2"},
		Sort:     "title",
		Limit:    2,
		Offset:   0,
	}, page.Pagination)

	page, err = listing.Page(context.Background(), ListingQuery{Type: "events", Offset: 2})
	require.NoError(t, err)
	require.Len(t, page.Nodes, 1)
	assert.Equal(t, "Exile", page.Nodes[0].DisplayTitle())
	assert.Equal(t, 10, page.Pagination.Limit)
}

func TestListingPeopleSortByName(t *testing.T) {
	listing := newListingFixture()

	page, err := listing.Page(context.Background(), ListingQuery{Type: "people"})
	require.NoError(t, err)
	require.Len(t, page.Nodes, 2)
	assert.Equal(t, "Avvakum", page.Nodes[0].DisplayTitle())
	assert.Equal(t, "name", page.Pagination.Sort)
}

func TestListingUnknownType(t *testing.T) {
	listing := newListingFixture()
	_, err := listing.Page(context.Background(), ListingQuery{Type: "collections"})
	assert.True(t, errors.Is(err, domain.ErrArgument))
}

func TestListingGraph(t *testing.T) {
	listing := newListingFixture()

	graph, err := listing.Graph(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, graph.Nodes, 5)
	assert.Equal(t, domain.KindPerson, graph.Nodes[0].Kind)
	assert.Equal(t, domain.KindPerson, graph.Nodes[1].Kind)
	assert.Equal(t, domain.KindEvent, graph.Nodes[4].Kind)

	assert.ElementsMatch(t, []Edge{
		{Source: "pp-1", Target: "e-1"},
		{Source: "pp-1", Target: "i-1"},
		{Source: "pp-2", Target: "iv-1"},
	}, graph.Edges)
}
