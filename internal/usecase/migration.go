package usecase

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/totegamma/archivist/internal/domain"
)

// MigrationSource is one node kind as seen by the migration.
type MigrationSource interface {
	Kind() domain.Kind
	ListForMigration(ctx context.Context, projectID string, limit int) ([]domain.Node, error)
	ExtraMetadata(node domain.Node) []domain.Metadata
}

// migrationOrder is the order kinds are exported in.
var migrationOrder = []domain.Kind{domain.KindItem, domain.KindEvent, domain.KindInterview, domain.KindPerson}

type MigrationInput struct {
	ProjectID string
	// Limit caps the nodes exported per kind; 0 exports all.
	Limit int
}

// MigrationPipeline exports every node of a project to the item builder,
// one node at a time. The first failed upload aborts the run; uploads made
// before it stay on the target.
type MigrationPipeline struct {
	sources map[domain.Kind]MigrationSource
	files   *FileReconciler
	builder ItemBuilder
}

func NewMigrationPipeline(files *FileReconciler, builder ItemBuilder, sources ...MigrationSource) *MigrationPipeline {
	bySource := make(map[domain.Kind]MigrationSource, len(sources))
	for _, s := range sources {
		bySource[s.Kind()] = s
	}
	return &MigrationPipeline{
		sources: bySource,
		files:   files,
		builder: builder,
	}
}

// TransformNode builds the target item for node. The original metadata is
// kept and followed by a Type entry and the kind specific entries.
func TransformNode(node domain.Node, extra []domain.Metadata) domain.TargetItem {
	base := node.NodeBase()

	metadata := make([]domain.Metadata, 0, len(base.Metadata)+1+len(extra))
	metadata = append(metadata, base.Metadata...)
	metadata = append(metadata, domain.Metadata{
		Type:  "text",
		Label: "Type",
		Value: node.Kind().Label(),
	})
	metadata = append(metadata, extra...)

	collections := base.CollectionIDs
	if collections == nil {
		collections = []string{}
	}

	return domain.TargetItem{
		Title:         node.DisplayTitle(),
		Description:   node.DisplayDescription(),
		Slug:          base.Slug,
		Private:       base.Private,
		Metadata:      metadata,
		CollectionIDs: collections,
	}
}

// TransformFiles drops every field the target does not accept.
func TransformFiles(files []domain.File) []domain.TargetFile {
	out := make([]domain.TargetFile, 0, len(files))
	for _, f := range files {
		slug := f.Slug
		if slug == "" {
			slug = fileSlug(f)
		}
		out = append(out, domain.TargetFile{
			ID:        f.ID,
			Name:      f.Name,
			Title:     f.Title,
			Type:      f.Type,
			Path:      f.Path,
			ProjectID: f.ProjectID,
			Slug:      slug,
		})
	}
	return out
}

func (p *MigrationPipeline) Run(ctx context.Context, input MigrationInput) (domain.MigrationReport, error) {
	report := domain.MigrationReport{
		ProjectID: input.ProjectID,
		ByKind:    map[domain.Kind]int{},
	}
	if input.ProjectID == "" {
		return report, domain.ArgumentError{Field: "projectId"}
	}

	for _, kind := range migrationOrder {
		source, ok := p.sources[kind]
		if !ok {
			continue
		}

		nodes, err := source.ListForMigration(ctx, input.ProjectID, input.Limit)
		if err != nil {
			return report, errors.Wrapf(err, "failed to list %s", kind)
		}

		slog.InfoContext(
			ctx, "migrating nodes",
			slog.String("kind", string(kind)),
			slog.Int("count", len(nodes)),
			slog.String("project", input.ProjectID),
			slog.String("module", "migration"),
		)

		for _, node := range nodes {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			id := node.NodeBase().ID
			files, err := p.files.List(ctx, domain.ParentRef{Kind: kind, ID: id})
			if err != nil {
				return report, errors.Wrapf(err, "failed to list files of %s %s", kind, id)
			}

			item := TransformNode(node, source.ExtraMetadata(node))
			err = p.builder.ProcessItem(ctx, item, TransformFiles(files))
			if err != nil {
				slog.ErrorContext(
					ctx, "item upload failed, aborting migration",
					slog.String("error", err.Error()),
					slog.String("kind", string(kind)),
					slog.String("id", id),
					slog.Int("uploaded", report.Uploaded),
					slog.String("module", "migration"),
				)
				return report, domain.DispatchError{Target: "item builder", Err: errors.Wrapf(err, "%s %s", kind, id)}
			}

			report.Uploaded++
			report.ByKind[kind]++
		}
	}

	return report, nil
}
