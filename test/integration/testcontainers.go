package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wenhsiu/aiot-in-go/pkg/config"
	"github.com/wenhsiu/aiot-in-go/pkg/discovery"
	"github.com/wenhsiu/aiot-in-go/pkg/gateway"
	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server"
	"github.com/wenhsiu/aiot-in-go/pkg/server/endpoints"
	gormstore "github.com/wenhsiu/aiot-in-go/pkg/server/store/gorm"
)

// portCounter allocates unique ports for the inline service instances
var portCounter int32 = 19050

// TestContext holds all the resources a full-stack test needs: a Postgres
// container with migrations applied, the three backend services running
// in-process, and a gateway routing to them.
type TestContext struct {
	DB          *gorm.DB
	RawDB       *sql.DB
	Container   testcontainers.Container
	DatabaseURL string
	GatewayURL  string
	Secret      []byte
	HTTPClient  *http.Client

	servers    []*server.Server
	gatewaySrv *httptest.Server
}

// NewTestContext starts a PostgreSQL testcontainer, applies the migrations,
// boots the rbac, drone and general services in-process and fronts them with
// a gateway.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}
	migrationsDir := filepath.Join(projectRoot, "db", "migrations")

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("aiot_test"),
		tcpostgres.WithUsername("aiot"),
		tcpostgres.WithPassword("aiot"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	connStr := fmt.Sprintf("postgres://aiot:aiot@%s:%s/aiot_test?sslmode=disable", host, port.Port())

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rawDB, err := db.DB()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get raw db: %w", err)
	}

	if err := runMigrations(rawDB, migrationsDir); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	secret := []byte("integration-test-secret")
	cfg := config.Default()

	tc := &TestContext{
		DB:          db,
		RawDB:       rawDB,
		Container:   pgContainer,
		DatabaseURL: connStr,
		Secret:      secret,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
	}

	// Boot the three services the way the deployment does, one port each.
	services := []struct {
		name     string
		register func(s *server.Server)
	}{
		{endpoints.ServiceRBAC, func(s *server.Server) { endpoints.RegisterRBACEndpoints(s, secret) }},
		{endpoints.ServiceDrone, endpoints.RegisterDroneEndpoints},
		{endpoints.ServiceGeneral, endpoints.RegisterGeneralEndpoints},
	}

	resolver := discovery.NewResolver(nil, time.Minute)
	for _, svc := range services {
		p := fmt.Sprintf("%d", atomic.AddInt32(&portCounter, 1))
		s := server.NewServer(cfg, db, nil, nil, secret, "127.0.0.1", p)
		svc.register(s)
		go func() { _ = s.Start() }()

		addr := "127.0.0.1:" + p
		if err := waitForServer("http://"+addr, 15*time.Second); err != nil {
			tc.Close(ctx)
			return nil, fmt.Errorf("%s failed to become ready: %w", svc.name, err)
		}
		resolver.SetInstances(svc.name, []string{addr})
		tc.servers = append(tc.servers, s)
	}

	gw := gateway.New(gateway.DefaultRoutes(), resolver, secret)
	tc.gatewaySrv = httptest.NewServer(gw.Handler())
	tc.GatewayURL = tc.gatewaySrv.URL

	return tc, nil
}

// SeedUser creates an active user with the given password and roles. Role
// names must already exist; the migrations seed "admin".
func (tc *TestContext) SeedUser(username, password string, roles ...string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	usersStore := gormstore.NewUsersStore(tc.DB)
	if err := usersStore.CreateUser(user); err != nil {
		return nil, err
	}

	for _, name := range roles {
		var role model.Role
		if err := tc.DB.Where("name = ?", name).First(&role).Error; err != nil {
			return nil, fmt.Errorf("role %q: %w", name, err)
		}
		if err := usersStore.AssignRole(user.ID, role.ID); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.gatewaySrv != nil {
		tc.gatewaySrv.Close()
	}
	for _, s := range tc.servers {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_ = s.Shutdown(shutdownCtx)
		cancel()
	}
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// waitForServer polls the health endpoint until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// findProjectRoot locates the project root directory
func findProjectRoot() (string, error) {
	paths := []string{
		"../..",
		"..",
		".",
	}

	for _, p := range paths {
		goMod := filepath.Join(p, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			return filepath.Abs(p)
		}
	}

	return "", fmt.Errorf("project root not found (looking for go.mod)")
}

// runMigrations applies the up migrations in order
func runMigrations(db *sql.DB, migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("migration %s: %w", filepath.Base(file), err)
		}
	}

	return nil
}
