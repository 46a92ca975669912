package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"devquiz/internal/app"
	"devquiz/internal/config"
	"devquiz/internal/infra/memory"
	pgloader "devquiz/internal/infra/postgres"
	rediscache "devquiz/internal/infra/redis"
	"devquiz/internal/infra/seed"
	"devquiz/internal/infra/sqldb"
	"devquiz/internal/infra/sqldb/migrations"
	"devquiz/internal/logger"
)

const serviceName = "devquiz"

func newLogger(cfg config.Config) *logrus.Entry {
	return logger.New(serviceName, cfg.Log.Level, cfg.Log.Format)
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// openDatabase connects and migrates the configured database.
func openDatabase(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*bun.DB, error) {
	db, err := sqldb.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Database.Driver, err)
	}
	if err := migrations.Run(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// backend is everything the service needs plus what has to be closed on shutdown.
type backend struct {
	loader  memory.QuestionLoader
	results app.ResultRepository
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// newBackend picks the question source and result store. Without a database the
// seed pool is served from memory and results live in process.
func newBackend(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*backend, error) {
	b := &backend{}
	if cfg.Database.Driver == "" {
		data, err := seed.Load(cfg.Quiz.SeedFile)
		if err != nil {
			return nil, err
		}
		results := memory.NewResultStore()
		for _, u := range data.Users {
			results.PutUser(u)
		}
		for _, rec := range seed.DemoSessions(data.Questions, time.Now()) {
			if _, err := results.RecordSession(ctx, rec); err != nil {
				return nil, err
			}
		}
		b.loader = memory.NewStaticQuestionLoader(data.Questions)
		b.results = results
		log.WithField("questions", len(data.Questions)).Info("no database configured, serving seed pool from memory")
		return b, nil
	}

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, func() { _ = db.Close() })
	store := sqldb.NewStore(db)
	b.loader = store
	b.results = store

	if cfg.Database.Driver == sqldb.DriverPostgres {
		pool, err := pgxpool.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		b.loader = pgloader.NewQuestionLoader(pool)
	}
	log.WithField("driver", cfg.Database.Driver).Info("database ready")
	return b, nil
}

func newQuestionRepository(cfg config.Config, client *redis.Client, loader memory.QuestionLoader) app.QuestionRepository {
	ttl := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if client != nil {
		return rediscache.NewQuestionRepository(client, loader, ttl)
	}
	return memory.NewQuestionRepository(loader, ttl)
}

const (
	defaultSessionTTL    = 2 * time.Hour
	defaultSweepInterval = time.Minute
)

// sessionTTL is how long an untouched session survives, both for the idle sweeper
// and for the Redis liveness marker.
func sessionTTL(cfg config.Config) time.Duration {
	if d := config.TTLDuration(cfg.Quiz.SessionTTL, defaultSessionTTL); d > 0 {
		return d
	}
	return defaultSessionTTL
}

func sweepInterval(cfg config.Config) time.Duration {
	if d := config.TTLDuration(cfg.Quiz.SweepInterval, defaultSweepInterval); d > 0 {
		return d
	}
	return defaultSweepInterval
}

func newSessionRepository(cfg config.Config, client *redis.Client) app.SessionRepository {
	if client != nil {
		return rediscache.NewSessionStore(client, sessionTTL(cfg))
	}
	return memory.NewSessionStore()
}
