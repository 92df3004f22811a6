package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/infrastructure/database/models"
)

// parentColumn is the foreign key column of kind: event_id, interview_id,
// item_id or person_id.
func parentColumn(kind domain.Kind) string {
	return string(kind) + "_id"
}

// parentPointers returns the four foreign key columns with only parent's set.
func parentPointers(parent domain.ParentRef) (event, interview, item, person *string) {
	id := parent.ID
	switch parent.Kind {
	case domain.KindEvent:
		event = &id
	case domain.KindInterview:
		interview = &id
	case domain.KindItem:
		item = &id
	case domain.KindPerson:
		person = &id
	}
	return
}

func parentFromPointers(event, interview, item, person *string) domain.ParentRef {
	switch {
	case event != nil:
		return domain.ParentRef{Kind: domain.KindEvent, ID: *event}
	case interview != nil:
		return domain.ParentRef{Kind: domain.KindInterview, ID: *interview}
	case item != nil:
		return domain.ParentRef{Kind: domain.KindItem, ID: *item}
	case person != nil:
		return domain.ParentRef{Kind: domain.KindPerson, ID: *person}
	}
	return domain.ParentRef{}
}

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func fileToModel(f domain.File) models.File {
	row := models.File{
		ID:        f.ID,
		Name:      f.Name,
		Title:     f.Title,
		Type:      f.Type,
		Path:      f.Path,
		Slug:      f.Slug,
		ProjectID: f.ProjectID,
	}
	row.EventID, row.InterviewID, row.ItemID, row.PersonID = parentPointers(f.Parent)
	return row
}

func fileToDomain(m models.File) domain.File {
	return domain.File{
		ID:        m.ID,
		Name:      m.Name,
		Title:     m.Title,
		Type:      m.Type,
		Path:      m.Path,
		Slug:      m.Slug,
		ProjectID: m.ProjectID,
		Parent:    parentFromPointers(m.EventID, m.InterviewID, m.ItemID, m.PersonID),
	}
}

func (r *FileRepository) FindByParent(ctx context.Context, parent domain.ParentRef) ([]domain.File, error) {
	ctx, span := tracer.Start(ctx, "Repository.File.FindByParent")
	defer span.End()

	var rows []models.File
	err := r.db.WithContext(ctx).
		Where(parentColumn(parent.Kind)+" = ?", parent.ID).
		Order("c_date ASC").
		Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to find files")
	}

	files := make([]domain.File, len(rows))
	for i, row := range rows {
		files[i] = fileToDomain(row)
	}
	return files, nil
}

func (r *FileRepository) Create(ctx context.Context, file domain.File) (domain.File, error) {
	ctx, span := tracer.Start(ctx, "Repository.File.Create")
	defer span.End()

	row := fileToModel(file)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		span.RecordError(err)
		return domain.File{}, errors.Wrap(err, "failed to create file")
	}
	return fileToDomain(row), nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Repository.File.Delete")
	defer span.End()

	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.File{}).Error
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to delete file")
	}
	return nil
}
