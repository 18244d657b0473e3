package router

import (
	"github.com/oksasatya/go-books-api/config"
	"github.com/oksasatya/go-books-api/internal/application"
	"github.com/oksasatya/go-books-api/internal/container"
	repo "github.com/oksasatya/go-books-api/internal/domain/repository"
	"github.com/oksasatya/go-books-api/internal/infrastructure/cache"
	pginfra "github.com/oksasatya/go-books-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-books-api/internal/infrastructure/search"
	"github.com/oksasatya/go-books-api/internal/infrastructure/storage"
	handlers "github.com/oksasatya/go-books-api/internal/interface/http"
	"github.com/oksasatya/go-books-api/internal/router/modules"
	"github.com/oksasatya/go-books-api/pkg/helpers"
)

// Stores lets tests swap the Postgres repositories.
type Stores struct {
	Users repo.UserRepository
	Books repo.BookRepository
}

func postgresStores() Stores {
	pool := container.GetPGPool()
	return Stores{Users: pginfra.NewUserRepository(pool), Books: pginfra.NewBookRepository(pool)}
}

func buildAuthService(cfg *config.Config, st Stores) *application.AuthService {
	var jobs application.JobPublisher
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		jobs = pub
	}
	return application.NewAuthService(
		st.Users,
		container.GetJWT(),
		helpers.NewPasswordHasher(cfg.BcryptCost),
		jobs,
		container.GetLogger(),
		cfg.AppName,
	)
}

// buildBookService leaves optional ports nil (not typed-nil) when their
// client is absent.
func buildBookService(cfg *config.Config, st Stores) *application.BookService {
	svc := application.NewBookService(st.Books, nil, nil, nil, container.GetLogger())
	if rdb := container.GetRedis(); rdb != nil {
		svc.Cache = cache.NewBookCache(rdb, cfg.BookCacheTTL)
	}
	if es := container.GetES(); es != nil {
		svc.Index = search.NewBookIndex(es, cfg.ESBooksIndex)
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		svc.Thumbnails = storage.NewThumbnailStore(gcs, cfg.GCSBucket)
	}
	return svc
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	InitModulesWith(r, postgresStores())
}

// InitModulesWith wires the modules on top of the given stores.
func InitModulesWith(r *Registry, st Stores) {
	cfg := container.GetConfig()
	authSvc := buildAuthService(cfg, st)
	bookSvc := buildBookService(cfg, st)

	r.Add(modules.NewUserModule(handlers.NewAuthHandler(authSvc)))
	r.Add(modules.NewBookModule(handlers.NewBookHandler(bookSvc, cfg.UploadLimitBytes), authSvc))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}
}
