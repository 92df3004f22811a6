package usecase

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/archivist/internal/domain"
)

type mockProbe struct {
	kind  domain.Kind
	nodes map[string]domain.Node
	calls int
}

func (m *mockProbe) Kind() domain.Kind { return m.kind }

func (m *mockProbe) Get(ctx context.Context, id string) (domain.Node, error) {
	m.calls++
	n, ok := m.nodes[id]
	if !ok {
		return nil, domain.NotFoundError{Resource: string(m.kind)}
	}
	return n, nil
}

func newProbes() (event, interview, item, person *mockProbe) {
	event = &mockProbe{kind: domain.KindEvent, nodes: map[string]domain.Node{}}
	interview = &mockProbe{kind: domain.KindInterview, nodes: map[string]domain.Node{}}
	item = &mockProbe{kind: domain.KindItem, nodes: map[string]domain.Node{}}
	person = &mockProbe{kind: domain.KindPerson, nodes: map[string]domain.Node{}}
	return
}

func TestGetNodePriority(t *testing.T) {
	event, interview, item, person := newProbes()
	event.nodes["x"] = &domain.Event{Base: domain.Base{ID: "x"}, Title: "Event X"}
	interview.nodes["x"] = &domain.Interview{Base: domain.Base{ID: "x"}, Title: "Interview X"}
	item.nodes["x"] = &domain.Item{Base: domain.Base{ID: "x"}, Title: "Item X"}
	person.nodes["x"] = &domain.Person{Base: domain.Base{ID: "x"}, Name: "Person X", Bio: "bio"}

	item.nodes["y"] = &domain.Item{Base: domain.Base{ID: "y"}, Title: "Item Y"}
	event.nodes["y"] = &domain.Event{Base: domain.Base{ID: "y"}, Title: "Event Y"}

	interview.nodes["z"] = &domain.Interview{Base: domain.Base{ID: "z"}, Title: "Interview Z"}
	event.nodes["z"] = &domain.Event{Base: domain.Base{ID: "z"}, Title: "Event Z"}

	// registration order must not matter
	resolver := NewNodeResolver(nil, nil, person, item, event, interview)

	view, err := resolver.GetNode(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, domain.KindPerson, view.Kind)
	assert.Equal(t, "Person X", view.Title)
	assert.Equal(t, "bio", view.Description)

	view, err = resolver.GetNode(context.Background(), "y")
	require.NoError(t, err)
	assert.Equal(t, domain.KindItem, view.Kind)

	view, err = resolver.GetNode(context.Background(), "z")
	require.NoError(t, err)
	assert.Equal(t, domain.KindInterview, view.Kind)
	assert.Equal(t, "Interview Z", view.Title)
}

func TestGetNodeNotFound(t *testing.T) {
	event, interview, item, person := newProbes()
	resolver := NewNodeResolver(nil, nil, event, interview, item, person)

	_, err := resolver.GetNode(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

type failingProbe struct{ mockProbe }

func (f *failingProbe) Get(ctx context.Context, id string) (domain.Node, error) {
	return nil, errors.New("store down")
}

func TestGetNodeStoreError(t *testing.T) {
	event, interview, _, person := newProbes()
	broken := &failingProbe{mockProbe{kind: domain.KindItem}}
	resolver := NewNodeResolver(nil, nil, event, interview, broken, person)

	_, err := resolver.GetNode(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestGetNodeUsesCache(t *testing.T) {
	event, interview, item, person := newProbes()
	event.nodes["e"] = &domain.Event{Base: domain.Base{ID: "e", Slug: "e"}, Title: "E"}
	cache := newMockCache()
	resolver := NewNodeResolver(nil, cache, event, interview, item, person)

	_, err := resolver.GetNode(context.Background(), "e")
	require.NoError(t, err)
	assert.Equal(t, 1, event.calls)

	view, err := resolver.GetNode(context.Background(), "e")
	require.NoError(t, err)
	assert.Equal(t, 1, event.calls)
	assert.Equal(t, domain.KindEvent, view.Kind)
}

func TestGetFiles(t *testing.T) {
	f := newFixture()
	event, interview, item, person := newProbes()
	item.nodes["i"] = &domain.Item{Base: domain.Base{ID: "i"}, Title: "I"}
	resolver := NewNodeResolver(f.reconciler, nil, event, interview, item, person)

	_, err := f.reconciler.Reconcile(context.Background(), testProject, domain.ParentRef{Kind: domain.KindItem, ID: "i"}, []domain.File{{Name: "scan.tif"}})
	require.NoError(t, err)

	files, err := resolver.GetFiles(context.Background(), "i")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "scan.tif", files[0].Name)
}

func TestGetNodeDoesNotCacheCollisions(t *testing.T) {
	event, interview, item, person := newProbes()
	event.nodes["x"] = &domain.Event{Base: domain.Base{ID: "x"}, Title: "Event X"}
	person.nodes["x"] = &domain.Person{Base: domain.Base{ID: "x"}, Name: "Person X"}
	cache := newMockCache()
	resolver := NewNodeResolver(nil, cache, event, interview, item, person)

	view, err := resolver.GetNode(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, domain.KindPerson, view.Kind)
	assert.NotContains(t, cache.views, "x")

	_, err = resolver.GetNode(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 2, person.calls)
}
