package repository

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/infrastructure/database/models"
	"github.com/totegamma/archivist/internal/usecase"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func projectToDomain(m models.Project) domain.Project {
	users := make([]domain.ProjectUser, 0, len(m.Users))
	for _, u := range m.Users {
		users = append(users, domain.ProjectUser{UserID: u.UserID, Role: u.Role})
	}
	return domain.Project{
		ID:       m.ID,
		Title:    m.Title,
		Hostname: m.Hostname,
		Users:    users,
	}
}

func (r *ProjectRepository) first(ctx context.Context, column, value string) (domain.Project, error) {
	var row models.Project
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Project{}, domain.NotFoundError{Resource: "project"}
	}
	if err != nil {
		return domain.Project{}, errors.Wrap(err, "failed to get project")
	}
	return projectToDomain(row), nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (domain.Project, error) {
	ctx, span := tracer.Start(ctx, "Repository.Project.Get")
	defer span.End()

	return r.first(ctx, "id", id)
}

func (r *ProjectRepository) GetByHostname(ctx context.Context, hostname string) (domain.Project, error) {
	ctx, span := tracer.Start(ctx, "Repository.Project.GetByHostname")
	defer span.End()

	return r.first(ctx, "hostname", hostname)
}

// Upsert registers a project or replaces its title, hostname and users.
func (r *ProjectRepository) Upsert(ctx context.Context, project domain.Project) error {
	ctx, span := tracer.Start(ctx, "Repository.Project.Upsert")
	defer span.End()

	users := make(datatypes.JSONSlice[models.ProjectUser], 0, len(project.Users))
	for _, u := range project.Users {
		users = append(users, models.ProjectUser{UserID: u.UserID, Role: u.Role})
	}
	row := models.Project{
		ID:       project.ID,
		Title:    project.Title,
		Hostname: project.Hostname,
		Users:    users,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "hostname", "users"}),
	}).Create(&row).Error
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to upsert project")
	}
	return nil
}

// CachedProjectRepository memoizes project lookups for a short time. Project
// membership changes take up to the expiration to be seen.
type CachedProjectRepository struct {
	inner usecase.ProjectRepository
	cache *cache.Cache
}

func NewCachedProjectRepository(inner usecase.ProjectRepository, expiration time.Duration) *CachedProjectRepository {
	return &CachedProjectRepository{
		inner: inner,
		cache: cache.New(expiration, 2*expiration),
	}
}

func (r *CachedProjectRepository) lookup(key string, load func() (domain.Project, error)) (domain.Project, error) {
	if x, found := r.cache.Get(key); found {
		return x.(domain.Project), nil
	}
	project, err := load()
	if err != nil {
		return domain.Project{}, err
	}
	r.cache.Set("id:"+project.ID, project, cache.DefaultExpiration)
	r.cache.Set("host:"+project.Hostname, project, cache.DefaultExpiration)
	return project, nil
}

func (r *CachedProjectRepository) Get(ctx context.Context, id string) (domain.Project, error) {
	return r.lookup("id:"+id, func() (domain.Project, error) {
		return r.inner.Get(ctx, id)
	})
}

func (r *CachedProjectRepository) GetByHostname(ctx context.Context, hostname string) (domain.Project, error) {
	return r.lookup("host:"+hostname, func() (domain.Project, error) {
		return r.inner.GetByHostname(ctx, hostname)
	})
}
