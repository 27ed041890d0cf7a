package shootoffmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating shoot-off tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			// The unique constraints are the storage-level enforcement of
			// the aggregate invariants: one participant per competitor per
			// shoot-off, gapless round sequences, one score per participant
			// per round, and at most one open round.
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS shoot_offs (
					id UUID PRIMARY KEY,
					tournament_id UUID NOT NULL,
					discipline_id UUID,
					position INTEGER NOT NULL CHECK (position >= 1),
					format VARCHAR(20) NOT NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					tied_score INTEGER NOT NULL,
					winner_id UUID,
					created_by UUID NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					started_at TIMESTAMPTZ,
					completed_at TIMESTAMPTZ
				);
				CREATE INDEX IF NOT EXISTS idx_shoot_offs_tournament ON shoot_offs(tournament_id, status);
			`); err != nil {
				return fmt.Errorf("failed to create shoot_offs table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS shoot_off_participants (
					id UUID PRIMARY KEY,
					shoot_off_id UUID NOT NULL REFERENCES shoot_offs(id),
					competitor_id UUID NOT NULL,
					tied_score INTEGER NOT NULL,
					eliminated BOOLEAN NOT NULL DEFAULT FALSE,
					final_place INTEGER,
					UNIQUE (shoot_off_id, competitor_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create shoot_off_participants table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS shoot_off_rounds (
					id UUID PRIMARY KEY,
					shoot_off_id UUID NOT NULL REFERENCES shoot_offs(id),
					sequence INTEGER NOT NULL CHECK (sequence >= 1),
					targets INTEGER NOT NULL CHECK (targets >= 1),
					completed_at TIMESTAMPTZ,
					recorded_by UUID,
					UNIQUE (shoot_off_id, sequence)
				);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_shoot_off_rounds_one_open
					ON shoot_off_rounds(shoot_off_id) WHERE completed_at IS NULL;
			`); err != nil {
				return fmt.Errorf("failed to create shoot_off_rounds table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS shoot_off_round_scores (
					round_id UUID NOT NULL REFERENCES shoot_off_rounds(id),
					participant_id UUID NOT NULL REFERENCES shoot_off_participants(id),
					targets_hit INTEGER NOT NULL CHECK (targets_hit >= 0),
					targets_presented INTEGER NOT NULL,
					PRIMARY KEY (round_id, participant_id),
					CHECK (targets_hit <= targets_presented)
				);
			`); err != nil {
				return fmt.Errorf("failed to create shoot_off_round_scores table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping shoot-off tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS shoot_off_round_scores;
				DROP TABLE IF EXISTS shoot_off_rounds;
				DROP TABLE IF EXISTS shoot_off_participants;
				DROP TABLE IF EXISTS shoot_offs;
			`); err != nil {
				return fmt.Errorf("failed to drop shoot-off tables: %w", err)
			}
			return nil
		})
	})
}
