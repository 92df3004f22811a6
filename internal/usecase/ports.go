package usecase

import (
	"context"
	"time"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/utils"
)

// NodeFilter narrows list and count queries of one node kind. Empty fields
// do not constrain the query.
type NodeFilter struct {
	ProjectID    string
	CollectionID string
	IDs          []string
	TextSearch   string
	Offset       int
	Limit        int // 0 means unlimited
	SortByTitle  bool
}

// Scoped reports whether the filter names a project or collection.
func (f NodeFilter) Scoped() bool {
	return f.ProjectID != "" || f.CollectionID != ""
}

// NodeRepository is the document store of a single node kind.
type NodeRepository[T domain.Node] interface {
	Count(ctx context.Context, filter NodeFilter) (int64, error)
	List(ctx context.Context, filter NodeFilter) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	GetBySlug(ctx context.Context, slug string) (T, error)
	Create(ctx context.Context, node T) (T, error)
	Update(ctx context.Context, node T) (T, error)
	Delete(ctx context.Context, id string) error
}

// ProjectRepository resolves the tenant of a request.
type ProjectRepository interface {
	Get(ctx context.Context, id string) (domain.Project, error)
	GetByHostname(ctx context.Context, hostname string) (domain.Project, error)
}

// FileRepository stores node attachments keyed by parent.
type FileRepository interface {
	FindByParent(ctx context.Context, parent domain.ParentRef) ([]domain.File, error)
	Create(ctx context.Context, file domain.File) (domain.File, error)
	Delete(ctx context.Context, id string) error
}

// ManifestRepository stores at most one manifest per parent.
type ManifestRepository interface {
	GetByParent(ctx context.Context, parent domain.ParentRef) (domain.Manifest, error)
	// Upsert writes the derived fields of m for its parent. An existing row
	// keeps its id and remote uri.
	Upsert(ctx context.Context, m domain.Manifest) (domain.Manifest, error)
	SetRemoteURI(ctx context.Context, id, uri string) (domain.Manifest, error)
}

// ManifestGateway delivers a manifest payload to the remote generator.
type ManifestGateway interface {
	Dispatch(ctx context.Context, manifest utils.OrderedKVMap[any]) error
}

// ItemBuilder is the migration target.
type ItemBuilder interface {
	ProcessItem(ctx context.Context, item domain.TargetItem, files []domain.TargetFile) error
}

// Locker serializes work on one key across callers.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// NodeCache caches resolved node views by id.
type NodeCache interface {
	Get(ctx context.Context, id string) (domain.NodeView, bool)
	Set(ctx context.Context, view domain.NodeView)
	Invalidate(ctx context.Context, id string)
}

// Publisher fans out domain events to realtime subscribers.
type Publisher interface {
	Publish(ctx context.Context, channel string, event any) error
}
