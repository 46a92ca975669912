package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"devquiz/internal/app"
	"devquiz/internal/domain"
	pgloader "devquiz/internal/infra/postgres"
	infraredis "devquiz/internal/infra/redis"
	"devquiz/internal/infra/seed"
	"devquiz/internal/infra/sqldb"
	"devquiz/internal/infra/sqldb/migrations"
)

func TestBackendSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	store := seedDatabase(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	logger, _ := test.NewNullLogger()
	questions := infraredis.NewQuestionRepository(redisClient, pgloader.NewQuestionLoader(pool), 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewQuizService(questions, sessions, store, logger)

	view, err := service.Start(ctx, app.StartRequest{Category: domain.CategoryBackend, UserID: seed.DemoUserID})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.Total != 2 {
		t.Fatalf("expected 2 backend questions, got %d", view.Total)
	}
	if n, _ := redisClient.Exists(ctx, "quiz:questions:backend", "quiz:session:"+view.ID).Result(); n != 2 {
		t.Fatalf("expected pool cache and session marker in redis, got %d keys", n)
	}

	for view.State == "active" {
		fb, err := service.Feedback(ctx, view.ID, view.Current.ID)
		if err != nil {
			t.Fatalf("feedback: %v", err)
		}
		if _, err := service.Answer(ctx, view.ID, view.Current.ID, fb.Correct); err != nil {
			t.Fatalf("answer: %v", err)
		}
		if view, err = service.Next(ctx, view.ID); err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	if !view.Persisted {
		t.Fatalf("expected completed session persisted")
	}

	board, err := service.Leaderboard(ctx, domain.CategoryBackend, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 1 || board[0].Score != 100 || board[0].UserName != "Demo User" {
		t.Fatalf("unexpected backend leaderboard %+v", board)
	}

	stats, err := service.Stats(ctx, seed.DemoUserID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	// demo frontend session plus this run
	if stats.TotalQuizzes != 2 || stats.BestScore != 100 || stats.AverageScore != 90 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	record, err := service.Record(ctx, view.RecordID)
	if err != nil || len(record.Answers) != 2 {
		t.Fatalf("expected 2 persisted answers, got %+v (%v)", record, err)
	}
	if record.Score != 100 || record.UserID != seed.DemoUserID {
		t.Fatalf("unexpected persisted record %+v", record)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedDatabase(t *testing.T, ctx context.Context, dsn string) *sqldb.Store {
	t.Helper()
	db, err := sqldb.Open(sqldb.DriverPostgres, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	logger, _ := test.NewNullLogger()
	if err := migrations.Run(ctx, db, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := sqldb.NewStore(db)
	data := seed.Bundled()
	if err := store.Seed(ctx, data, seed.DemoSessions(data.Questions, time.Now())); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
