//go:build integration

package integration

import (
	"context"
	"log"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/booktrack/booktrack/internal/app"
	"github.com/booktrack/booktrack/internal/config"
	"github.com/booktrack/booktrack/internal/testutil"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	testServer    *httptest.Server
	testClient    *testutil.Client
	testValidator *testutil.OpenAPIValidator
	testDB        *pgxpool.Pool

	// A second app pointed at a closed port, for failure-mode tests.
	// The pool connects lazily, so the app comes up fine.
	downServer *httptest.Server
)

// OpenAPI spec path relative to the tests/integration directory.
const openAPISpecPath = "../../api/openapi/openapi.yaml"

// newTestClient creates a test client with OpenAPI validation enabled.
// Use this at the beginning of each test that makes API calls.
func newTestClient(t *testing.T) *testutil.Client {
	t.Helper()
	client := testutil.NewClientWithValidator(testServer.URL, testValidator)
	client.SetT(t)
	return client
}

// newDownClient creates a validating client against the app whose
// database is unreachable.
func newDownClient(t *testing.T) *testutil.Client {
	t.Helper()
	client := testutil.NewClientWithValidator(downServer.URL, testValidator)
	client.SetT(t)
	return client
}

func testConfig(host, port, name, user, password string) *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.DB.Host = host
	cfg.DB.Port = port
	cfg.DB.Name = name
	cfg.DB.User = user
	cfg.DB.Password = password
	cfg.Log.Level = "error"
	cfg.Log.Format = "text"
	return cfg
}

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := testutil.NewPostgresContainer(ctx)
	if err != nil {
		log.Fatalf("start postgres: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			log.Printf("terminate postgres: %v", err)
		}
	}()

	migrator, err := migrate.New(
		"file://../../migrations",
		pgContainer.ConnectionString,
	)
	if err != nil {
		log.Fatalf("create migrator: %v", err)
	}
	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("run migrations: %v", err)
	}

	cfg := testConfig(
		pgContainer.Host,
		pgContainer.Port,
		pgContainer.Database,
		pgContainer.User,
		pgContainer.Password,
	)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("create app: %v", err)
	}

	// Port 1 is reserved and closed; connection attempts fail fast.
	downCfg := testConfig("127.0.0.1", "1", "nope", "nope", "nope")
	downApp, err := app.New(downCfg)
	if err != nil {
		log.Fatalf("create down app: %v", err)
	}

	// Direct DB connection for seeding test data
	testDB, err = pgxpool.New(ctx, pgContainer.ConnectionString)
	if err != nil {
		log.Fatalf("create test db pool: %v", err)
	}

	testServer = httptest.NewServer(application.Router())
	downServer = httptest.NewServer(downApp.Router())

	testValidator, err = testutil.LoadOpenAPIValidator(openAPISpecPath)
	if err != nil {
		log.Fatalf("load OpenAPI validator: %v", err)
	}

	testClient = testutil.NewClientWithValidator(testServer.URL, testValidator)

	code := m.Run()

	testServer.Close()
	downServer.Close()
	testDB.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown app: %v", err)
	}
	if err := downApp.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown down app: %v", err)
	}

	os.Exit(code)
}
