package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"gorm.io/gorm"

	_ "petrack/docs"
	"petrack/internal/adapters/auth/jwt"
	"petrack/internal/adapters/locks/local"
	mem "petrack/internal/adapters/storage/memory"
	pg "petrack/internal/adapters/storage/postgres"
	"petrack/internal/domain/adoptions"
	"petrack/internal/domain/notifications"
	"petrack/internal/domain/pets"
	"petrack/internal/domain/transfers"
	"petrack/internal/domain/users"
	"petrack/internal/middleware"
	"petrack/internal/platform/logger"
	"petrack/internal/platform/metrics"
	"petrack/internal/ports/auth"
	"petrack/internal/ports/locks"
)

const fallbackSigningKey = "petrack-router-dev-key"

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	TokenIssuer  users.TokenIssuer // nil: JWT con clave de desarrollo

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *gorm.DB

	Locker    locks.Locker            // nil: lock en proceso
	Publisher notifications.Publisher // nil: no publica afuera
	Logger    logger.Logger
}

type repos struct {
	users         users.Repository
	pets          pets.Repository
	adoptions     adoptions.Repository
	adoptionsTx   adoptions.Tx
	transfers     transfers.Repository
	transfersTx   transfers.Tx
	notifications notifications.Repository
}

func newRepos(db *gorm.DB) repos {
	if db != nil {
		return repos{
			users:         pg.NewUsersRepo(db),
			pets:          pg.NewPetsRepo(db),
			adoptions:     pg.NewAdoptionsRepo(db),
			adoptionsTx:   pg.NewAdoptionsTx(db),
			transfers:     pg.NewTransfersRepo(db),
			transfersTx:   pg.NewTransfersTx(db),
			notifications: pg.NewNotificationsRepo(db),
		}
	}
	st := mem.NewStore()
	return repos{
		users:         st.Users(),
		pets:          st.Pets(),
		adoptions:     st.Adoptions(),
		adoptionsTx:   st.AdoptionsTx(),
		transfers:     st.Transfers(),
		transfersTx:   st.TransfersTx(),
		notifications: st.Notifications(),
	}
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	tokens := opts.TokenIssuer
	if tokens == nil {
		// New sólo falla sin clave.
		tokens, _ = jwt.New(jwt.Config{SigningKey: fallbackSigningKey})
	}
	locker := opts.Locker
	if locker == nil {
		locker = local.New()
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	rp := newRepos(opts.DB)

	// Services por módulo
	usersSvc := users.NewService(rp.users, tokens, rp.pets)
	notifySvc := notifications.NewService(rp.notifications, publisher, log)
	adoptionsSvc := adoptions.NewService(adoptions.Deps{
		Requests:   rp.adoptions,
		Tx:         rp.adoptionsTx,
		Accounts:   rp.users,
		Locker:     locker,
		Dispatcher: notifySvc,
		Logger:     log,
	})
	transfersSvc := transfers.NewService(transfers.Deps{
		Requests:   rp.transfers,
		Pets:       rp.pets,
		Tx:         rp.transfersTx,
		Accounts:   usersSvc,
		Locker:     locker,
		Dispatcher: notifySvc,
		Logger:     log,
	})

	petsSvc := pets.NewService(rp.pets, rp.users, locker, adoptionsSvc, transfersSvc)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	pets.RegisterRoutes(r, petsSvc)
	adoptions.RegisterRoutes(r, adoptionsSvc, petsSvc)
	transfers.RegisterRoutes(r, transfersSvc)
	notifications.RegisterRoutes(r, notifySvc)

	return r
}
