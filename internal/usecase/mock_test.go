package usecase

import (
	"context"
	"encoding/json"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/utils"
)

type mockNodeRepo[T domain.Node] struct {
	newFn  func() T
	nodes  map[string]T
	writes int
}

func newMockNodeRepo[T domain.Node](kind KindDescriptor[T]) *mockNodeRepo[T] {
	return &mockNodeRepo[T]{newFn: kind.New, nodes: map[string]T{}}
}

func (m *mockNodeRepo[T]) clone(n T) T {
	raw, _ := json.Marshal(n)
	out := m.newFn()
	_ = json.Unmarshal(raw, out)
	return out
}

func (m *mockNodeRepo[T]) put(n T) {
	m.nodes[n.NodeBase().ID] = m.clone(n)
}

func (m *mockNodeRepo[T]) match(filter NodeFilter) []T {
	var out []T
	for _, n := range m.nodes {
		base := n.NodeBase()
		if filter.ProjectID != "" && base.ProjectID != filter.ProjectID {
			continue
		}
		if filter.CollectionID != "" && !slices.Contains(base.CollectionIDs, filter.CollectionID) {
			continue
		}
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, base.ID) {
			continue
		}
		out = append(out, m.clone(n))
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.SortByTitle {
			return out[i].DisplayTitle() < out[j].DisplayTitle()
		}
		return out[i].NodeBase().Slug < out[j].NodeBase().Slug
	})
	return out
}

func (m *mockNodeRepo[T]) Count(ctx context.Context, filter NodeFilter) (int64, error) {
	return int64(len(m.match(filter))), nil
}

func (m *mockNodeRepo[T]) List(ctx context.Context, filter NodeFilter) ([]T, error) {
	out := m.match(filter)
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
	n, ok := m.nodes[id]
	if !ok {
		var zero T
		return zero, domain.NotFoundError{Resource: "node"}
	}
	return m.clone(n), nil
}

func (m *mockNodeRepo[T]) GetBySlug(ctx context.Context, slug string) (T, error) {
	for _, n := range m.nodes {
		if n.NodeBase().Slug == slug {
			return m.clone(n), nil
		}
	}
	var zero T
	return zero, domain.NotFoundError{Resource: "node"}
}

func (m *mockNodeRepo[T]) Create(ctx context.Context, node T) (T, error) {
	m.writes++
	// the table fills timestamps only when they are zero
	base := node.NodeBase()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = time.Now()
	}
	if base.UpdatedAt.IsZero() {
		base.UpdatedAt = base.CreatedAt
	}
	m.put(node)
	return m.clone(node), nil
}

func (m *mockNodeRepo[T]) Update(ctx context.Context, node T) (T, error) {
	m.writes++
	m.put(node)
	return m.clone(node), nil
}

func (m *mockNodeRepo[T]) Delete(ctx context.Context, id string) error {
	m.writes++
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
	files  map[string]domain.File
	seq    []string
	writes int
}

func newMockFileRepo() *mockFileRepo {
	return &mockFileRepo{files: map[string]domain.File{}}
}

func (m *mockFileRepo) FindByParent(ctx context.Context, parent domain.ParentRef) ([]domain.File, error) {
	out := []domain.File{}
	for _, id := range m.seq {
		f, ok := m.files[id]
		if ok && f.Parent == parent {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockFileRepo) Create(ctx context.Context, file domain.File) (domain.File, error) {
	m.writes++
	m.files[file.ID] = file
	m.seq = append(m.seq, file.ID)
	return file, nil
}

func (m *mockFileRepo) Delete(ctx context.Context, id string) error {
	m.writes++
	delete(m.files, id)
	return nil
}

type mockManifestRepo struct {
	manifests map[string]domain.Manifest
	writes    int
}

func newMockManifestRepo() *mockManifestRepo {
	return &mockManifestRepo{manifests: map[string]domain.Manifest{}}
}

func (m *mockManifestRepo) GetByParent(ctx context.Context, parent domain.ParentRef) (domain.Manifest, error) {
	manifest, ok := m.manifests[parent.Key()]
	if !ok {
		return domain.Manifest{}, domain.NotFoundError{Resource: "manifest"}
	}
	return manifest, nil
}

func (m *mockManifestRepo) Upsert(ctx context.Context, manifest domain.Manifest) (domain.Manifest, error) {
	m.writes++
	if prev, ok := m.manifests[manifest.Parent.Key()]; ok {
		manifest.ID = prev.ID
		manifest.RemoteURI = prev.RemoteURI
	}
	m.manifests[manifest.Parent.Key()] = manifest
	return manifest, nil
}

func (m *mockManifestRepo) SetRemoteURI(ctx context.Context, id, uri string) (domain.Manifest, error) {
	m.writes++
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
	payloads []utils.OrderedKVMap[any]
	err      error
}

func (m *mockGateway) Dispatch(ctx context.Context, manifest utils.OrderedKVMap[any]) error {
	m.payloads = append(m.payloads, manifest)
	return m.err
}

type mockPublisher struct {
	events []any
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, event any) error {
	m.events = append(m.events, event)
	return nil
}

type mockLocker struct {
	mu   sync.Mutex
	keys []string
	held int
}

func (m *mockLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.held++
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.held--
		m.mu.Unlock()
	}, nil
}

type mockCache struct {
	views       map[string]domain.NodeView
	invalidated []string
}

func newMockCache() *mockCache {
	return &mockCache{views: map[string]domain.NodeView{}}
}

func (m *mockCache) Get(ctx context.Context, id string) (domain.NodeView, bool) {
	v, ok := m.views[id]
	return v, ok
}

func (m *mockCache) Set(ctx context.Context, view domain.NodeView) {
	m.views[view.ID] = view
}

func (m *mockCache) Invalidate(ctx context.Context, id string) {
	delete(m.views, id)
	m.invalidated = append(m.invalidated, id)
}

var testProject = domain.Project{
	ID:       "p1",
	Title:    "Old Believers Archive",
	Hostname: "ob.example.com",
	Users: []domain.ProjectUser{
		{UserID: "u-owner", Role: domain.ProjectRoleOwner},
		{UserID: "u-admin", Role: domain.ProjectRoleAdmin},
		{UserID: "u-editor", Role: domain.ProjectRoleEditor},
	},
}

var otherProject = domain.Project{
	ID:       "p2",
	Title:    "Other",
	Hostname: "other.example.com",
	Users:    []domain.ProjectUser{{UserID: "u-other", Role: domain.ProjectRoleOwner}},
}

type fixture struct {
	projects  *mockProjectRepo
	files     *mockFileRepo
	manifests *mockManifestRepo
	gateway   *mockGateway
	publisher *mockPublisher
	locker    *mockLocker
	cache     *mockCache

	reconciler *FileReconciler
	sync       *ManifestSynchronizer
	deps       EntityDeps
}

func newFixture() *fixture {
	f := &fixture{
		projects:  &mockProjectRepo{projects: []domain.Project{testProject, otherProject}},
		files:     newMockFileRepo(),
		manifests: newMockManifestRepo(),
		gateway:   &mockGateway{},
		publisher: &mockPublisher{},
		locker:    &mockLocker{},
		cache:     newMockCache(),
	}
	f.reconciler = NewFileReconciler(f.files)
	f.sync = NewManifestSynchronizer(f.manifests, f.gateway, f.publisher)
	f.deps = EntityDeps{
		Projects:   f.projects,
		Gate:       NewAuthorizationGate(),
		Reconciler: f.reconciler,
		Manifests:  f.sync,
		Locker:     f.locker,
		Cache:      f.cache,
	}
	return f
}

func (f *fixture) writes() int {
	return f.files.writes + f.manifests.writes + len(f.gateway.payloads)
}

func asAdmin() context.Context {
	return domain.WithRequester(context.Background(), "u-admin")
}

func asEditor() context.Context {
	return domain.WithRequester(context.Background(), "u-editor")
}
