package providers

import (
	"context"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/totegamma/archivist/client"
	"github.com/totegamma/archivist/internal/config"
	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/infrastructure/cache"
	"github.com/totegamma/archivist/internal/infrastructure/database"
	"github.com/totegamma/archivist/internal/infrastructure/gateway"
	"github.com/totegamma/archivist/internal/infrastructure/lock"
	"github.com/totegamma/archivist/internal/infrastructure/repository"
	"github.com/totegamma/archivist/internal/usecase"
)

const (
	userAgent       = "archivist"
	projectCacheTTL = 30 * time.Second
	nodeCacheTTL    = 5 * time.Minute
)

// NewDatabase opens a Postgres connection using the configured DSN.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	return database.NewPostgres(conf.PostgresDsn)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.MigratePostgres(db)
}

// NewRedis returns nil when no redis address is configured.
func NewRedis(ctx context.Context, conf config.Server) (*redis.Client, error) {
	if conf.RedisAddr == "" {
		return nil, nil
	}
	rdb := database.NewRedis(conf.RedisAddr, "", conf.RedisDB)
	if err := database.PingRedis(ctx, rdb); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// NewMemcache returns nil when no memcached address is configured.
func NewMemcache(conf config.Server) *memcache.Client {
	if conf.MemcachedAddr == "" {
		return nil
	}
	return database.NewMemcached(conf.MemcachedAddr)
}

// NewLocker shares node locks through redis when available and falls back
// to an in-process lock for single instance deployments.
func NewLocker(rdb *redis.Client) usecase.Locker {
	if rdb == nil {
		return lock.NewLocalLocker()
	}
	return lock.NewRedisLocker(rdb)
}

func NewNodeCache(mc *memcache.Client) usecase.NodeCache {
	if mc == nil {
		return nil
	}
	return cache.NewNodeCache(mc, nodeCacheTTL)
}

func NewManifestGateway(conf config.Manifest) *gateway.ManifestGateway {
	cl := client.New(conf.Timeout, userAgent)
	return gateway.NewManifestGateway(cl, conf.Endpoint(), conf.ResponseURL)
}

func NewItemBuilder(conf config.Migration) *gateway.ItemBuilder {
	cl := client.New(conf.Timeout, userAgent)
	return gateway.NewItemBuilder(cl, conf.Endpoint, conf.Username, conf.Password)
}

func NewProjectRepository(db *gorm.DB) *repository.CachedProjectRepository {
	return repository.NewCachedProjectRepository(repository.NewProjectRepository(db), projectCacheTTL)
}

// Usecases is the wired application core.
type Usecases struct {
	Events     *usecase.EntityUsecase[*domain.Event]
	Interviews *usecase.EntityUsecase[*domain.Interview]
	Items      *usecase.EntityUsecase[*domain.Item]
	People     *usecase.EntityUsecase[*domain.Person]

	Files     *usecase.FileReconciler
	Manifests *usecase.ManifestSynchronizer
	Nodes     *usecase.NodeResolver
	Listing   *usecase.Listing
}

// Collaborators are the optional ports of the core. A nil Publisher or
// Cache disables that concern.
type Collaborators struct {
	Projects  usecase.ProjectRepository
	Gateway   usecase.ManifestGateway
	Publisher usecase.Publisher
	Locker    usecase.Locker
	Cache     usecase.NodeCache
}

func NewUsecases(db *gorm.DB, c Collaborators) *Usecases {
	files := usecase.NewFileReconciler(repository.NewFileRepository(db))
	manifests := usecase.NewManifestSynchronizer(repository.NewManifestRepository(db), c.Gateway, c.Publisher)

	deps := usecase.EntityDeps{
		Projects:   c.Projects,
		Gate:       usecase.NewAuthorizationGate(),
		Reconciler: files,
		Manifests:  manifests,
		Locker:     c.Locker,
		Cache:      c.Cache,
	}

	u := &Usecases{
		Events:     usecase.NewEntityUsecase(usecase.EventKind, repository.NewEventRepository(db), deps),
		Interviews: usecase.NewEntityUsecase(usecase.InterviewKind, repository.NewInterviewRepository(db), deps),
		Items:      usecase.NewEntityUsecase(usecase.ItemKind, repository.NewItemRepository(db), deps),
		People:     usecase.NewEntityUsecase(usecase.PersonKind, repository.NewPersonRepository(db), deps),
		Files:      files,
		Manifests:  manifests,
	}
	u.Nodes = usecase.NewNodeResolver(files, c.Cache, u.Events, u.Interviews, u.Items, u.People)
	u.Listing = usecase.NewListing(u.Events, u.Interviews, u.Items, u.People)
	return u
}

// Migration builds the export pipeline towards builder.
func (u *Usecases) Migration(builder usecase.ItemBuilder) *usecase.MigrationPipeline {
	return usecase.NewMigrationPipeline(u.Files, builder, u.Events, u.Interviews, u.Items, u.People)
}
