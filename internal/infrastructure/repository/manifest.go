package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/infrastructure/database/models"
)

type ManifestRepository struct {
	db *gorm.DB
}

func NewManifestRepository(db *gorm.DB) *ManifestRepository {
	return &ManifestRepository{db: db}
}

func manifestToModel(m domain.Manifest) models.Manifest {
	images := make(datatypes.JSONSlice[models.ManifestImage], 0, len(m.Images))
	for _, img := range m.Images {
		images = append(images, models.ManifestImage{ID: img.ID, Name: img.Name, Label: img.Label})
	}
	row := models.Manifest{
		ID:          m.ID,
		Title:       m.Title,
		Label:       m.Label,
		Description: m.Description,
		Attribution: m.Attribution,
		Images:      images,
		RemoteURI:   m.RemoteURI,
	}
	row.EventID, row.InterviewID, row.ItemID, row.PersonID = parentPointers(m.Parent)
	return row
}

func manifestToDomain(m models.Manifest) domain.Manifest {
	images := make([]domain.ManifestImage, 0, len(m.Images))
	for _, img := range m.Images {
		images = append(images, domain.ManifestImage{ID: img.ID, Name: img.Name, Label: img.Label})
	}
	return domain.Manifest{
		ID:          m.ID,
		Parent:      parentFromPointers(m.EventID, m.InterviewID, m.ItemID, m.PersonID),
		Title:       m.Title,
		Label:       m.Label,
		Description: m.Description,
		Attribution: m.Attribution,
		Images:      images,
		RemoteURI:   m.RemoteURI,
		UpdatedAt:   m.MDate,
	}
}

func (r *ManifestRepository) getByParent(tx *gorm.DB, parent domain.ParentRef) (domain.Manifest, error) {
	var row models.Manifest
	err := tx.Where(parentColumn(parent.Kind)+" = ?", parent.ID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Manifest{}, domain.NotFoundError{Resource: "manifest"}
	}
	if err != nil {
		return domain.Manifest{}, errors.Wrap(err, "failed to get manifest")
	}
	return manifestToDomain(row), nil
}

func (r *ManifestRepository) GetByParent(ctx context.Context, parent domain.ParentRef) (domain.Manifest, error) {
	ctx, span := tracer.Start(ctx, "Repository.Manifest.GetByParent")
	defer span.End()

	return r.getByParent(r.db.WithContext(ctx), parent)
}

// manifestUpsertClause targets the parent column of kind. id and remote_uri
// are never part of the update set.
func manifestUpsertClause(kind domain.Kind) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: parentColumn(kind)}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "label", "description", "attribution", "images", "m_date"}),
	}
}

// Upsert inserts m or overwrites the derived fields of the parent's existing
// manifest.
func (r *ManifestRepository) Upsert(ctx context.Context, m domain.Manifest) (domain.Manifest, error) {
	ctx, span := tracer.Start(ctx, "Repository.Manifest.Upsert")
	defer span.End()

	row := manifestToModel(m)
	row.RemoteURI = ""

	var stored domain.Manifest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(manifestUpsertClause(m.Parent.Kind)).Create(&row).Error
		if err != nil {
			return err
		}

		stored, err = r.getByParent(tx, m.Parent)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return domain.Manifest{}, errors.Wrap(err, "failed to upsert manifest")
	}
	return stored, nil
}

func (r *ManifestRepository) SetRemoteURI(ctx context.Context, id, uri string) (domain.Manifest, error) {
	ctx, span := tracer.Start(ctx, "Repository.Manifest.SetRemoteURI")
	defer span.End()

	result := r.db.WithContext(ctx).
		Model(&models.Manifest{}).
		Where("id = ?", id).
		Update("remote_uri", uri)
	if result.Error != nil {
		span.RecordError(result.Error)
		return domain.Manifest{}, errors.Wrap(result.Error, "failed to set remote uri")
	}
	if result.RowsAffected == 0 {
		return domain.Manifest{}, domain.NotFoundError{Resource: "manifest"}
	}

	var row models.Manifest
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return domain.Manifest{}, errors.Wrap(err, "failed to reload manifest")
	}
	return manifestToDomain(row), nil
}
