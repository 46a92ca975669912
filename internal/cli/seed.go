package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"devquiz/internal/config"
	"devquiz/internal/domain"
	rediscache "devquiz/internal/infra/redis"
	"devquiz/internal/infra/seed"
	"devquiz/internal/infra/sqldb"
)

// NewSeedCmd resets the database to the seed question pool.
func NewSeedCmd(configPath *string) *cobra.Command {
	var (
		file   string
		noDemo bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace questions and sessions with the seed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file, !noDemo)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "seed YAML file (defaults to quiz.seed_file, then the bundled pool)")
	cmd.Flags().BoolVar(&noDemo, "no-demo", false, "skip the demo session")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string, demo bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver == "" {
		return fmt.Errorf("database driver not configured")
	}
	log := newLogger(cfg)

	if file == "" {
		file = cfg.Quiz.SeedFile
	}
	data, err := seed.Load(file)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	var sessions []domain.SessionRecord
	if demo {
		sessions = seed.DemoSessions(data.Questions, time.Now())
	}
	if err := sqldb.NewStore(db).Seed(ctx, data, sessions); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"questions": len(data.Questions),
		"users":     len(data.Users),
		"sessions":  len(sessions),
	}).Info("database seeded")

	// cached pools would otherwise outlive the reseed
	if client := newRedisClient(cfg); client != nil {
		defer client.Close()
		repo := rediscache.NewQuestionRepository(client, nil, 0)
		if err := repo.Invalidate(ctx); err != nil {
			log.WithError(err).Warn("could not drop cached question pools")
		}
	}
	return nil
}
