package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

const leaderboardIndex = "quiz_sessions_leaderboard_idx"

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewCreateIndex().
				Table("quiz_sessions").
				Index(leaderboardIndex).
				Column("category", "score", "time_spent").
				Exec(ctx)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.NewDropIndex().
				Index(leaderboardIndex).
				IfExists().
				Exec(ctx)
			return err
		},
	)
}
