package standingsmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating regulation_scores table...")

		// Owned by the score ledger in production; created here so local
		// environments have the read model the engine consumes.
		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS regulation_scores (
					tournament_id UUID NOT NULL,
					competitor_id UUID NOT NULL,
					discipline_id UUID,
					total_hits INTEGER NOT NULL CHECK (total_hits >= 0),
					PRIMARY KEY (tournament_id, competitor_id)
				);
				CREATE INDEX IF NOT EXISTS idx_regulation_scores_discipline
					ON regulation_scores(tournament_id, discipline_id);
			`); err != nil {
				return fmt.Errorf("failed to create regulation_scores table: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping regulation_scores table...")

		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS regulation_scores;`); err != nil {
			return fmt.Errorf("failed to drop regulation_scores table: %w", err)
		}
		return nil
	})
}
