package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"live-quiz-engine/internal/app"
	"live-quiz-engine/internal/catalog"
	"live-quiz-engine/internal/domain"
	"live-quiz-engine/internal/infra/memory"
	pgloader "live-quiz-engine/internal/infra/postgres"
	pgmigrations "live-quiz-engine/internal/infra/postgres/migrations"
	infraredis "live-quiz-engine/internal/infra/redis"
)

func TestPostgresCatalogThroughRedisCache(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewCatalogLoader(pool)
	if err := loader.SaveCatalog(ctx, 1, sampleQuiz("second", 1)); err != nil {
		t.Fatalf("save catalog: %v", err)
	}
	if err := loader.SaveCatalog(ctx, 0, sampleQuiz("first", 2)); err != nil {
		t.Fatalf("save catalog: %v", err)
	}
	ids, err := loader.CatalogIDs(ctx)
	if err != nil || len(ids) != 2 || ids[0] != "first" {
		t.Fatalf("expected ordered ids, got %v (%v)", ids, err)
	}
	if _, err := loader.LoadCatalog(ctx, "missing"); !errors.Is(err, domain.ErrNoGame) {
		t.Fatalf("expected NO_GAME for missing catalog, got %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	catalogs := infraredis.NewCatalogRepository(redisClient, loader, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	engine := app.NewEngine(sessionStore, catalogs, app.NewHub(), app.Options{HostSecret: "secret"})

	if err := engine.Authorize("host", "secret"); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	code, err := engine.CreateSession("host", domain.SessionConfig{TimerSeconds: 30})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n, err := redisClient.Exists(ctx, "quiz:session:"+code).Result(); err != nil || n != 1 {
		t.Fatalf("expected session code reserved in redis, n=%d err=%v", n, err)
	}

	count, catalogID, err := engine.AttachCatalog(ctx, "host", code, "")
	if err != nil || count != 2 || catalogID != "first" {
		t.Fatalf("attach default catalog: count=%d id=%s err=%v", count, catalogID, err)
	}
	if _, _, err := engine.JoinSession("u1", code, "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := engine.StartGame("host", code); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := engine.LaunchQuestion("host", code); err != nil {
		t.Fatalf("launch: %v", err)
	}
	correct, points, err := engine.SubmitAnswer("u1", code, "q1", 1)
	if err != nil || !correct || points < 1000 {
		t.Fatalf("submit: correct=%v points=%d err=%v", correct, points, err)
	}

	engine.Disconnect("host")
	if n, _ := redisClient.Exists(ctx, "quiz:session:"+code).Result(); n != 0 {
		t.Fatalf("expected session code released on teardown")
	}
}

// startContainer runs req and returns the host:port mapped to port plus a
// cleanup func. A missing docker daemon skips the test.
func TestEmptyPostgresFallsBackToBuiltinCatalogs(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	builtin, err := catalog.Builtin()
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	loader := catalog.NewFallback(pgloader.NewCatalogLoader(pool), builtin)
	catalogs := memory.NewCatalogRepository(loader, time.Minute)
	engine := app.NewEngine(memory.NewSessionStore(), catalogs, app.NewHub(), app.Options{HostSecret: "secret"})

	if err := engine.Authorize("host", "secret"); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	code, err := engine.CreateSession("host", domain.SessionConfig{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	count, fellBack, err := engine.GenerateQuiz(ctx, "host", code)
	if err != nil || !fellBack || count == 0 {
		t.Fatalf("expected builtin fallback quiz, got count=%d fallback=%v err=%v", count, fellBack, err)
	}
}

func startContainer(t *testing.T, ctx context.Context, req tc.ContainerRequest, port string) (string, func()) {
	t.Helper()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start %s: %v", req.Image, err)
	}
	endpoint, err := container.PortEndpoint(ctx, nat.Port(port), "")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("%s endpoint: %v", req.Image, err)
	}
	return endpoint, func() { _ = container.Terminate(ctx) }
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	addr, cleanup := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "live", "POSTGRES_PASSWORD": "livepass", "POSTGRES_DB": "catalogs"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}, "5432/tcp")
	return fmt.Sprintf("postgres://live:livepass@%s/catalogs?sslmode=disable", addr), cleanup
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	addr, cleanup := startContainer(t, ctx, tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}, "6379/tcp")
	return "redis://" + addr, cleanup
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleQuiz(id string, questions int) domain.Quiz {
	quiz := domain.Quiz{ID: id, Title: domain.Text{ES: "Prueba " + id, EN: "Test " + id}}
	for i := 1; i <= questions; i++ {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:           fmt.Sprintf("q%d", i),
			Prompt:       domain.Text{ES: "¿Cuánto es 2 + 2?", EN: "What is 2 + 2?"},
			Options:      domain.Options{ES: []string{"3", "4", "5", "6"}, EN: []string{"3", "4", "5", "6"}},
			CorrectIndex: 1,
		})
	}
	return quiz
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in -short mode")
	}
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
