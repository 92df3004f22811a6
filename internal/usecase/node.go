package usecase

import (
	"context"
	"log/slog"
	"slices"

	"github.com/pkg/errors"

	"github.com/totegamma/archivist/internal/domain"
)

// NodeProbe looks up one node kind by id.
type NodeProbe interface {
	Kind() domain.Kind
	Get(ctx context.Context, id string) (domain.Node, error)
}

// NodeResolver resolves an opaque id against every node kind.
type NodeResolver struct {
	probes []NodeProbe
	files  *FileReconciler
	cache  NodeCache
}

// NewNodeResolver orders probes by domain.Kinds regardless of argument order.
func NewNodeResolver(files *FileReconciler, cache NodeCache, probes ...NodeProbe) *NodeResolver {
	ordered := slices.Clone(probes)
	slices.SortStableFunc(ordered, func(a, b NodeProbe) int {
		return slices.Index(domain.Kinds, a.Kind()) - slices.Index(domain.Kinds, b.Kind())
	})
	return &NodeResolver{
		probes: ordered,
		files:  files,
		cache:  cache,
	}
}

// GetNode probes every kind in priority order. When several kinds hold the
// id, the last one probed wins.
func (r *NodeResolver) GetNode(ctx context.Context, id string) (domain.NodeView, error) {
	ctx, span := tracer.Start(ctx, "NodeResolver.GetNode")
	defer span.End()

	if r.cache != nil {
		if view, ok := r.cache.Get(ctx, id); ok {
			return view, nil
		}
	}

	var found domain.Node
	var hits []domain.Kind
	for _, probe := range r.probes {
		node, err := probe.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			span.RecordError(err)
			return domain.NodeView{}, errors.Wrapf(err, "failed to probe %s", probe.Kind())
		}
		found = node
		hits = append(hits, probe.Kind())
	}

	if found == nil {
		return domain.NodeView{}, domain.NotFoundError{Resource: "node"}
	}
	if len(hits) > 1 {
		kinds := make([]string, len(hits))
		for i, k := range hits {
			kinds[i] = string(k)
		}
		slog.WarnContext(
			ctx, "node id exists in several kinds",
			slog.String("id", id),
			slog.Any("kinds", kinds),
			slog.String("resolved", string(found.Kind())),
			slog.String("module", "node"),
		)
	}

	view := domain.ViewOf(found)
	// A cached view is not re-probed until it expires, so a later node of a
	// higher priority kind with the same id stays hidden for that long.
	// Colliding ids are never cached.
	if r.cache != nil && len(hits) == 1 {
		r.cache.Set(ctx, view)
	}
	return view, nil
}

// GetFiles returns the files attached to the node with id.
func (r *NodeResolver) GetFiles(ctx context.Context, id string) ([]domain.File, error) {
	view, err := r.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.files.List(ctx, domain.ParentRef{Kind: view.Kind, ID: view.ID})
}
