package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/utils"
	"github.com/totegamma/archivist/policy"
)

const attachLockTTL = 30 * time.Second

// MutationResult is returned by create and update. A non-nil ManifestError
// means the node and its files were written but the manifest generator
// could not be reached.
type MutationResult[T domain.Node] struct {
	Node          T
	Files         []domain.File
	Manifest      *domain.Manifest
	ManifestError error
}

// UpdateInput carries a field level patch for one node. Files nil means the
// file set is left alone; an empty non-nil slice clears it.
type UpdateInput struct {
	ID        string
	ProjectID string
	Patch     map[string]any
	Files     []domain.File
}

// GetOneInput selects a node by id, or by slug when id is empty.
type GetOneInput struct {
	ID   string
	Slug string
}

// EntityDeps are the collaborators shared by every node kind.
type EntityDeps struct {
	Projects   ProjectRepository
	Gate       *AuthorizationGate
	Reconciler *FileReconciler
	Manifests  *ManifestSynchronizer
	Locker     Locker
	Cache      NodeCache
}

// EntityUsecase implements CRUD for one node kind.
type EntityUsecase[T domain.Node] struct {
	kind KindDescriptor[T]
	repo NodeRepository[T]
	EntityDeps
}

func NewEntityUsecase[T domain.Node](kind KindDescriptor[T], repo NodeRepository[T], deps EntityDeps) *EntityUsecase[T] {
	return &EntityUsecase[T]{
		kind:       kind,
		repo:       repo,
		EntityDeps: deps,
	}
}

func (uc *EntityUsecase[T]) Kind() domain.Kind {
	return uc.kind.Kind
}

// New returns an empty node of this kind, ready for decoding.
func (uc *EntityUsecase[T]) New() T {
	return uc.kind.New()
}

// Count returns zero when the filter names neither a project nor a collection.
func (uc *EntityUsecase[T]) Count(ctx context.Context, filter NodeFilter) (int64, error) {
	if !filter.Scoped() {
		return 0, nil
	}
	return uc.repo.Count(ctx, filter)
}

// List returns nodes sorted by slug, or by title when filter.SortByTitle is
// set. An unscoped filter yields an empty list.
func (uc *EntityUsecase[T]) List(ctx context.Context, filter NodeFilter) ([]T, error) {
	if !filter.Scoped() {
		return []T{}, nil
	}
	return uc.repo.List(ctx, filter)
}

func (uc *EntityUsecase[T]) GetOne(ctx context.Context, input GetOneInput) (T, error) {
	var zero T
	switch {
	case input.ID != "":
		return uc.repo.Get(ctx, input.ID)
	case input.Slug != "":
		return uc.repo.GetBySlug(ctx, input.Slug)
	default:
		return zero, domain.ArgumentError{Field: "id"}
	}
}

// Get looks a node up by id. It is the probe used by node resolution.
func (uc *EntityUsecase[T]) Get(ctx context.Context, id string) (domain.Node, error) {
	return uc.repo.Get(ctx, id)
}

func (uc *EntityUsecase[T]) Files(ctx context.Context, id string) ([]domain.File, error) {
	return uc.Reconciler.List(ctx, domain.ParentRef{Kind: uc.kind.Kind, ID: id})
}

func (uc *EntityUsecase[T]) projectByHostname(ctx context.Context, hostname string) (domain.Project, error) {
	if hostname == "" {
		return domain.Project{}, domain.ArgumentError{Field: "hostname"}
	}
	project, err := uc.Projects.GetByHostname(ctx, hostname)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Project{}, domain.ArgumentError{Field: "hostname"}
	}
	return project, err
}

func (uc *EntityUsecase[T]) projectByID(ctx context.Context, id string) (domain.Project, error) {
	if id == "" {
		return domain.Project{}, domain.ArgumentError{Field: "projectId"}
	}
	project, err := uc.Projects.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Project{}, domain.ArgumentError{Field: "projectId"}
	}
	return project, err
}

// Create stores candidate under the project served at hostname and, when
// files are given, attaches them and syncs the manifest.
func (uc *EntityUsecase[T]) Create(ctx context.Context, hostname string, candidate T, files []domain.File) (MutationResult[T], error) {
	if domain.RequesterFromContext(ctx) == "" {
		return MutationResult[T]{}, domain.AuthenticationError{}
	}
	project, err := uc.projectByHostname(ctx, hostname)
	if err != nil {
		return MutationResult[T]{}, err
	}
	if err := uc.Gate.Authorize(ctx, project, policy.ActionNodeCreate); err != nil {
		return MutationResult[T]{}, err
	}

	base := candidate.NodeBase()
	base.ID = uuid.NewString()
	base.ProjectID = project.ID
	base.Slug = utils.Slugify(candidate.DisplayTitle())
	base.CreatedAt = time.Time{}
	base.UpdatedAt = time.Time{}

	created, err := uc.repo.Create(ctx, candidate)
	if err != nil {
		return MutationResult[T]{}, errors.Wrapf(err, "failed to create %s", uc.kind.Kind)
	}

	result := MutationResult[T]{Node: created}
	if len(files) > 0 {
		err = uc.attach(ctx, project, created, files, &result)
	}
	return result, err
}

// Update merges input.Patch over the stored node. Identity fields in the
// patch are ignored.
func (uc *EntityUsecase[T]) Update(ctx context.Context, input UpdateInput) (MutationResult[T], error) {
	if domain.RequesterFromContext(ctx) == "" {
		return MutationResult[T]{}, domain.AuthenticationError{}
	}
	project, err := uc.projectByID(ctx, input.ProjectID)
	if err != nil {
		return MutationResult[T]{}, err
	}
	if err := uc.Gate.Authorize(ctx, project, policy.ActionNodeUpdate); err != nil {
		return MutationResult[T]{}, err
	}

	existing, err := uc.repo.Get(ctx, input.ID)
	if err != nil {
		return MutationResult[T]{}, err
	}
	if existing.NodeBase().ProjectID != project.ID {
		return MutationResult[T]{}, domain.PermissionError{ProjectID: project.ID}
	}

	merged, err := uc.merge(existing, input.Patch)
	if err != nil {
		return MutationResult[T]{}, err
	}

	if _, err := uc.repo.Update(ctx, merged); err != nil {
		return MutationResult[T]{}, errors.Wrapf(err, "failed to update %s", uc.kind.Kind)
	}
	uc.invalidate(ctx, input.ID)

	updated, err := uc.repo.Get(ctx, input.ID)
	if err != nil {
		return MutationResult[T]{}, err
	}

	result := MutationResult[T]{Node: updated}
	if input.Files != nil {
		err = uc.attach(ctx, project, updated, input.Files, &result)
	}
	return result, err
}

// Remove deletes the node record. Its files and manifest are kept.
func (uc *EntityUsecase[T]) Remove(ctx context.Context, id, hostname string) error {
	if domain.RequesterFromContext(ctx) == "" {
		return domain.AuthenticationError{}
	}
	project, err := uc.projectByHostname(ctx, hostname)
	if err != nil {
		return err
	}
	if err := uc.Gate.Authorize(ctx, project, policy.ActionNodeDelete); err != nil {
		return err
	}

	existing, err := uc.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.NodeBase().ProjectID != project.ID {
		return domain.PermissionError{ProjectID: project.ID}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "failed to delete %s", uc.kind.Kind)
	}
	uc.invalidate(ctx, id)
	return nil
}

// attach replaces the node's files and syncs its manifest while holding the
// node's lock.
func (uc *EntityUsecase[T]) attach(ctx context.Context, project domain.Project, node T, files []domain.File, result *MutationResult[T]) error {
	parent := domain.RefOf(node)

	if uc.Locker != nil {
		unlock, err := uc.Locker.Lock(ctx, "node:"+parent.Key(), attachLockTTL)
		if err != nil {
			return errors.Wrap(err, "failed to lock node")
		}
		defer unlock()
	}

	stored, err := uc.Reconciler.Reconcile(ctx, project, parent, files)
	result.Files = stored
	if err != nil {
		return err
	}

	manifest, err := uc.Manifests.Sync(ctx, project, node, stored)
	var dispatchErr domain.DispatchError
	switch {
	case err == nil:
		result.Manifest = &manifest
	case errors.As(err, &dispatchErr):
		result.Manifest = &manifest
		result.ManifestError = err
	default:
		return err
	}
	return nil
}

// merge overlays patch on the JSON form of existing.
func (uc *EntityUsecase[T]) merge(existing T, patch map[string]any) (T, error) {
	var zero T

	raw, err := json.Marshal(existing)
	if err != nil {
		return zero, errors.Wrap(err, "failed to encode node")
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return zero, errors.Wrap(err, "failed to decode node")
	}

	for k, v := range patch {
		switch k {
		case "id", "projectId", "createdAt", "updatedAt":
			continue
		}
		fields[k] = v
	}

	raw, err = json.Marshal(fields)
	if err != nil {
		return zero, errors.Wrap(err, "failed to encode patch")
	}
	merged := uc.kind.New()
	if err := json.Unmarshal(raw, merged); err != nil {
		return zero, domain.ArgumentError{Field: "patch"}
	}
	return merged, nil
}

func (uc *EntityUsecase[T]) invalidate(ctx context.Context, id string) {
	if uc.Cache == nil {
		return
	}
	uc.Cache.Invalidate(ctx, id)
	slog.DebugContext(
		ctx, "node cache invalidated",
		slog.String("id", id),
		slog.String("module", "node"),
	)
}

// ListForMigration returns up to limit nodes of projectID (all when limit is 0).
func (uc *EntityUsecase[T]) ListForMigration(ctx context.Context, projectID string, limit int) ([]domain.Node, error) {
	nodes, err := uc.List(ctx, NodeFilter{ProjectID: projectID, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out, nil
}

func (uc *EntityUsecase[T]) ExtraMetadata(node domain.Node) []domain.Metadata {
	typed, ok := node.(T)
	if !ok || uc.kind.ExtraMetadata == nil {
		return nil
	}
	return uc.kind.ExtraMetadata(typed)
}

// ListAll lists without requiring a project or collection scope.
func (uc *EntityUsecase[T]) ListAll(ctx context.Context, filter NodeFilter) ([]domain.Node, error) {
	nodes, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out, nil
}

func (uc *EntityUsecase[T]) CountAll(ctx context.Context, filter NodeFilter) (int64, error) {
	return uc.repo.Count(ctx, filter)
}
