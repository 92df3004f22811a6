package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/utils"
)

// FileReconciler replaces the complete file set of a node.
type FileReconciler struct {
	repo FileRepository
}

func NewFileReconciler(repo FileRepository) *FileReconciler {
	return &FileReconciler{repo: repo}
}

// Reconcile removes every file keyed to parent and stores candidates in
// their place. It is a full replace: omitted files are dropped. A failure
// partway leaves whatever was already written.
func (r *FileReconciler) Reconcile(ctx context.Context, project domain.Project, parent domain.ParentRef, candidates []domain.File) ([]domain.File, error) {
	existing, err := r.repo.FindByParent(ctx, parent)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find files")
	}

	for _, f := range existing {
		if err := r.repo.Delete(ctx, f.ID); err != nil {
			return nil, errors.Wrapf(err, "failed to delete file %s", f.ID)
		}
	}

	stored := make([]domain.File, 0, len(candidates))
	for _, f := range candidates {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		f.Parent = parent
		f.ProjectID = project.ID
		if f.Slug == "" {
			f.Slug = fileSlug(f)
		}

		created, err := r.repo.Create(ctx, f)
		if err != nil {
			return stored, errors.Wrapf(err, "failed to create file %s", f.ID)
		}
		stored = append(stored, created)
	}

	return stored, nil
}

func (r *FileReconciler) List(ctx context.Context, parent domain.ParentRef) ([]domain.File, error) {
	return r.repo.FindByParent(ctx, parent)
}

func fileSlug(f domain.File) string {
	if f.Title != "" {
		return utils.Slugify(f.Title)
	}
	return utils.Slugify(displayFileName(f))
}
