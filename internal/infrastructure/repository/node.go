package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/usecase"
)

var tracer = otel.Tracer("repository")

// NodeMapper converts one node kind between its domain and table forms.
type NodeMapper[T domain.Node, M any] struct {
	Kind        domain.Kind
	TitleColumn string
	ToModel     func(T) M
	ToDomain    func(M) T
}

// NodeRepository stores one node kind in its own table.
type NodeRepository[T domain.Node, M any] struct {
	db     *gorm.DB
	mapper NodeMapper[T, M]
}

func NewNodeRepository[T domain.Node, M any](db *gorm.DB, mapper NodeMapper[T, M]) *NodeRepository[T, M] {
	return &NodeRepository[T, M]{db: db, mapper: mapper}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *NodeRepository[T, M]) query(ctx context.Context, filter usecase.NodeFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(new(M))
	if filter.ProjectID != "" {
		q = q.Where("project_id = ?", filter.ProjectID)
	}
	if filter.CollectionID != "" {
		q = q.Where("? = ANY(collection_ids)", filter.CollectionID)
	}
	if len(filter.IDs) > 0 {
		q = q.Where("id IN ?", filter.IDs)
	}
	if filter.TextSearch != "" {
		q = q.Where(r.mapper.TitleColumn+" ILIKE ?", "%"+likeEscaper.Replace(filter.TextSearch)+"%")
	}
	return q
}

func (r *NodeRepository[T, M]) Count(ctx context.Context, filter usecase.NodeFilter) (int64, error) {
	ctx, span := tracer.Start(ctx, "Repository.Node.Count")
	defer span.End()
	span.SetAttributes(attribute.String("kind", string(r.mapper.Kind)))

	var count int64
	err := r.query(ctx, filter).Count(&count).Error
	if err != nil {
		span.RecordError(err)
		return 0, errors.Wrapf(err, "failed to count %s", r.mapper.Kind)
	}
	return count, nil
}

func (r *NodeRepository[T, M]) List(ctx context.Context, filter usecase.NodeFilter) ([]T, error) {
	ctx, span := tracer.Start(ctx, "Repository.Node.List")
	defer span.End()
	span.SetAttributes(attribute.String("kind", string(r.mapper.Kind)))

	q := r.query(ctx, filter)
	if filter.SortByTitle {
		q = q.Order(r.mapper.TitleColumn + " ASC")
	} else {
		q = q.Order("slug ASC")
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []M
	err := q.Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrapf(err, "failed to list %s", r.mapper.Kind)
	}

	nodes := make([]T, len(rows))
	for i, row := range rows {
		nodes[i] = r.mapper.ToDomain(row)
	}
	return nodes, nil
}

func (r *NodeRepository[T, M]) first(ctx context.Context, column, value string) (T, error) {
	var zero T
	var row M
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zero, domain.NotFoundError{Resource: string(r.mapper.Kind)}
	}
	if err != nil {
		return zero, errors.Wrapf(err, "failed to get %s", r.mapper.Kind)
	}
	return r.mapper.ToDomain(row), nil
}

func (r *NodeRepository[T, M]) Get(ctx context.Context, id string) (T, error) {
	ctx, span := tracer.Start(ctx, "Repository.Node.Get")
	defer span.End()
	span.SetAttributes(attribute.String("kind", string(r.mapper.Kind)))

	return r.first(ctx, "id", id)
}

func (r *NodeRepository[T, M]) GetBySlug(ctx context.Context, slug string) (T, error) {
	ctx, span := tracer.Start(ctx, "Repository.Node.GetBySlug")
	defer span.End()
	span.SetAttributes(attribute.String("kind", string(r.mapper.Kind)))

	return r.first(ctx, "slug", slug)
}

func (r *NodeRepository[T, M]) Create(ctx context.Context, node T) (T, error) {
	ctx, span := tracer.Start(ctx, "Repository.Node.Create")
	defer span.End()

	row := r.mapper.ToModel(node)
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		span.RecordError(err)
		var zero T
		return zero, errors.Wrapf(err, "failed to create %s", r.mapper.Kind)
	}
	return r.mapper.ToDomain(row), nil
}

func (r *NodeRepository[T, M]) Update(ctx context.Context, node T) (T, error) {
	ctx, span := tracer.Start(ctx, "Repository.Node.Update")
	defer span.End()

	row := r.mapper.ToModel(node)
	err := r.db.WithContext(ctx).Omit("c_date").Save(&row).Error
	if err != nil {
		span.RecordError(err)
		var zero T
		return zero, errors.Wrapf(err, "failed to update %s", r.mapper.Kind)
	}
	return r.mapper.ToDomain(row), nil
}

func (r *NodeRepository[T, M]) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Repository.Node.Delete")
	defer span.End()

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(M))
	if result.Error != nil {
		span.RecordError(result.Error)
		return errors.Wrapf(result.Error, "failed to delete %s", r.mapper.Kind)
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: string(r.mapper.Kind)}
	}
	return nil
}
