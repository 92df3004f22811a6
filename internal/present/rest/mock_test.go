package rest

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/usecase"
	"github.com/totegamma/archivist/internal/utils"
)

type mockNodeRepo[T domain.Node] struct {
	mu    sync.Mutex
	newFn func() T
	nodes map[string]T
}

func newMockNodeRepo[T domain.Node](kind usecase.KindDescriptor[T]) *mockNodeRepo[T] {
	return &mockNodeRepo[T]{newFn: kind.New, nodes: map[string]T{}}
}

func (m *mockNodeRepo[T]) clone(n T) T {
	raw, _ := json.Marshal(n)
	out := m.newFn()
	_ = json.Unmarshal(raw, out)
	return out
}

func (m *mockNodeRepo[T]) list(filter usecase.NodeFilter) []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []T
	for _, n := range m.nodes {
		if filter.ProjectID != "" && n.NodeBase().ProjectID != filter.ProjectID {
			continue
		}
		out = append(out, m.clone(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayTitle() < out[j].DisplayTitle() })
	return out
}

func (m *mockNodeRepo[T]) Count(ctx context.Context, filter usecase.NodeFilter) (int64, error) {
	return int64(len(m.list(filter))), nil
}

func (m *mockNodeRepo[T]) List(ctx context.Context, filter usecase.NodeFilter) ([]T, error) {
	out := m.list(filter)
	if filter.Offset > len(out) {
		return []T{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *mockNodeRepo[T]) Get(ctx context.Context, id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		var zero T
		return zero, domain.NotFoundError{Resource: "node"}
	}
	return m.clone(n), nil
}

func (m *mockNodeRepo[T]) GetBySlug(ctx context.Context, slug string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.nodes {
		if n.NodeBase().Slug == slug {
			return m.clone(n), nil
		}
	}
	var zero T
	return zero, domain.NotFoundError{Resource: "node"}
}

func (m *mockNodeRepo[T]) Create(ctx context.Context, node T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[node.NodeBase().ID] = m.clone(node)
	return m.clone(node), nil
}

func (m *mockNodeRepo[T]) Update(ctx context.Context, node T) (T, error) {
	return m.Create(ctx, node)
}

func (m *mockNodeRepo[T]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.nodes, id)
	return nil
}

type mockProjectRepo struct {
	projects []domain.Project
}

func (m *mockProjectRepo) Get(ctx context.Context, id string) (domain.Project, error) {
	for _, p := range m.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Project{}, domain.NotFoundError{Resource: "project"}
}

func (m *mockProjectRepo) GetByHostname(ctx context.Context, hostname string) (domain.Project, error) {
	for _, p := range m.projects {
		if p.Hostname == hostname {
			return p, nil
		}
	}
	return domain.Project{}, domain.NotFoundError{Resource: "project"}
}

type mockFileRepo struct {
	mu    sync.Mutex
	files []domain.File
}

func (m *mockFileRepo) FindByParent(ctx context.Context, parent domain.ParentRef) ([]domain.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.File{}
	for _, f := range m.files {
		if f.Parent == parent {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockFileRepo) Create(ctx context.Context, file domain.File) (domain.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, file)
	return file, nil
}

func (m *mockFileRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, f := range m.files {
		if f.ID == id {
			m.files = append(m.files[:i], m.files[i+1:]...)
			return nil
		}
	}
	return nil
}

type mockManifestRepo struct {
	mu        sync.Mutex
	manifests map[string]domain.Manifest
}

func (m *mockManifestRepo) GetByParent(ctx context.Context, parent domain.ParentRef) (domain.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	manifest, ok := m.manifests[parent.Key()]
	if !ok {
		return domain.Manifest{}, domain.NotFoundError{Resource: "manifest"}
	}
	return manifest, nil
}

func (m *mockManifestRepo) Upsert(ctx context.Context, manifest domain.Manifest) (domain.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.manifests[manifest.Parent.Key()]; ok {
		manifest.ID = prev.ID
		manifest.RemoteURI = prev.RemoteURI
	}
	m.manifests[manifest.Parent.Key()] = manifest
	return manifest, nil
}

func (m *mockManifestRepo) SetRemoteURI(ctx context.Context, id, uri string) (domain.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, manifest := range m.manifests {
		if manifest.ID == id {
			manifest.RemoteURI = uri
			m.manifests[key] = manifest
			return manifest, nil
		}
	}
	return domain.Manifest{}, domain.NotFoundError{Resource: "manifest"}
}

type mockGateway struct {
	mu       sync.Mutex
	payloads []utils.OrderedKVMap[any]
	err      error
}

func (m *mockGateway) Dispatch(ctx context.Context, manifest utils.OrderedKVMap[any]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, manifest)
	return m.err
}

type mockSubscriber struct {
	mu       sync.Mutex
	channels []string
	stream   chan []byte
}

func (m *mockSubscriber) Subscribe(ctx context.Context, channels ...string) (<-chan []byte, error) {
	m.mu.Lock()
	m.channels = append(m.channels, channels...)
	m.mu.Unlock()
	return m.stream, nil
}

func (m *mockSubscriber) subscribed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.channels...)
}
