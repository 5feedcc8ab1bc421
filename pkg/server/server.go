package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/wenhsiu/aiot-in-go/pkg/cache"
	"github.com/wenhsiu/aiot-in-go/pkg/config"
	"github.com/wenhsiu/aiot-in-go/pkg/mq"
	"github.com/wenhsiu/aiot-in-go/pkg/server/middleware"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
	gormstore "github.com/wenhsiu/aiot-in-go/pkg/server/store/gorm"
)

type Server struct {
	Config *config.AiotConfig
	Router *mux.Router
	DB     *gorm.DB
	Cache  *cache.Cache
	MQ     *mq.Client

	JWTMiddleware *middleware.JWTAuthenticator

	AuthenticateStore store.AuthenticateStore
	UsersStore        store.UsersStore
	RolesStore        store.RolesStore
	PermissionsStore  store.PermissionsStore
	AuthzStore        store.AuthzStore
	DronesStore       store.DronesStore
	TelemetryStore    store.TelemetryStore
	CommandsStore     store.CommandsStore
	PreferencesStore  store.PreferencesStore
	HealthStore       store.HealthStore

	srv *http.Server
}

func NewServer(
	cfg *config.AiotConfig,
	db *gorm.DB,
	cch *cache.Cache,
	mqClient *mq.Client,
	secret []byte,
	host string,
	port string,
) *Server {

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Config: cfg,
		Router: router,
		DB:     db,
		Cache:  cch,
		MQ:     mqClient,

		JWTMiddleware: middleware.NewJWTAuthenticator(secret),

		AuthenticateStore: gormstore.NewAuthenticateStore(db),
		UsersStore:        gormstore.NewUsersStore(db),
		RolesStore:        gormstore.NewRolesStore(db),
		PermissionsStore:  gormstore.NewPermissionsStore(db),
		AuthzStore:        gormstore.NewAuthzStore(db),
		DronesStore:       gormstore.NewDronesStore(db),
		TelemetryStore:    gormstore.NewTelemetryStore(db),
		CommandsStore:     gormstore.NewCommandsStore(db),
		PreferencesStore:  gormstore.NewPreferencesStore(db),
		HealthStore:       gormstore.NewHealthStore(db),

		srv: srv,
	}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
