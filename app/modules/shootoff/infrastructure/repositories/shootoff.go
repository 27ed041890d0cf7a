package shootoffdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
)

// Impl implements the Repository interface using Bun.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new shoot-off repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// CreateShootOff inserts the aggregate root and its participants.
func (r *Impl) CreateShootOff(ctx context.Context, db bun.IDB, shootOff *ShootOff, participants []*Participant) error {
	db = r.resolveDB(db)

	if _, err := db.NewInsert().Model(shootOff).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert shoot-off: %w", err)
	}
	if _, err := db.NewInsert().Model(&participants).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert shoot-off participants: %w", err)
	}
	return nil
}

// GetShootOff loads the full aggregate.
func (r *Impl) GetShootOff(ctx context.Context, db bun.IDB, id uuid.UUID) (*ShootOff, error) {
	db = r.resolveDB(db)

	shootOff := new(ShootOff)
	err := db.NewSelect().
		Model(shootOff).
		Relation("Participants").
		Relation("Rounds", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("sequence ASC")
		}).
		Relation("Rounds.Scores").
		Where("so.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get shoot-off: %w", err)
	}
	return shootOff, nil
}

// GetShootOffForUpdate locks the aggregate root row, then loads children.
// Two operators racing on the same shoot-off queue on the lock and the
// loser observes the winner's committed state.
func (r *Impl) GetShootOffForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (*ShootOff, error) {
	db = r.resolveDB(db)

	shootOff := new(ShootOff)
	err := db.NewSelect().
		Model(shootOff).
		Where("so.id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock shoot-off: %w", err)
	}

	if err := db.NewSelect().
		Model(&shootOff.Participants).
		Where("shoot_off_id = ?", id).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}

	if err := db.NewSelect().
		Model(&shootOff.Rounds).
		Relation("Scores").
		Where("sr.shoot_off_id = ?", id).
		Order("sequence ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load rounds: %w", err)
	}

	return shootOff, nil
}

// ListShootOffsByTournament lists shoot-offs newest first.
func (r *Impl) ListShootOffsByTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, status *shootoffdomain.Status) ([]*ShootOff, error) {
	db = r.resolveDB(db)

	var shootOffs []*ShootOff
	q := db.NewSelect().
		Model(&shootOffs).
		Relation("Participants").
		Where("so.tournament_id = ?", tournamentID)
	if status != nil {
		q = q.Where("so.status = ?", *status)
	}

	if err := q.Order("created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list shoot-offs: %w", err)
	}
	return shootOffs, nil
}

// UpdateStatus transitions status guarded on the expected current value.
func (r *Impl) UpdateStatus(ctx context.Context, db bun.IDB, id uuid.UUID, from, to shootoffdomain.Status, startedAt, completedAt *time.Time) error {
	db = r.resolveDB(db)

	q := db.NewUpdate().
		Model((*ShootOff)(nil)).
		Set("status = ?", to).
		Where("id = ?", id).
		Where("status = ?", from)
	if startedAt != nil {
		q = q.Set("started_at = ?", *startedAt)
	}
	if completedAt != nil {
		q = q.Set("completed_at = ?", *completedAt)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update shoot-off status: %w", err)
	}
	return requireRows(res)
}

// CompleteShootOff sets winner and completion atomically, guarded on
// in_progress.
func (r *Impl) CompleteShootOff(ctx context.Context, db bun.IDB, id uuid.UUID, winnerID uuid.UUID, completedAt time.Time) error {
	db = r.resolveDB(db)

	res, err := db.NewUpdate().
		Model((*ShootOff)(nil)).
		Set("status = ?", shootoffdomain.StatusCompleted).
		Set("winner_id = ?", winnerID).
		Set("completed_at = ?", completedAt).
		Where("id = ?", id).
		Where("status = ?", shootoffdomain.StatusInProgress).
		Where("winner_id IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete shoot-off: %w", err)
	}
	return requireRows(res)
}

// CreateRound inserts a new round.
func (r *Impl) CreateRound(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)

	if _, err := db.NewInsert().Model(round).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert round: %w", err)
	}
	return nil
}

// CompleteRound stamps completion, guarded on the round being open.
func (r *Impl) CompleteRound(ctx context.Context, db bun.IDB, roundID uuid.UUID, completedAt time.Time, recordedBy uuid.UUID) error {
	db = r.resolveDB(db)

	res, err := db.NewUpdate().
		Model((*Round)(nil)).
		Set("completed_at = ?", completedAt).
		Set("recorded_by = ?", recordedBy).
		Where("id = ?", roundID).
		Where("completed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete round: %w", err)
	}
	return requireRows(res)
}

// InsertRoundScores inserts the round's score rows.
func (r *Impl) InsertRoundScores(ctx context.Context, db bun.IDB, scores []*RoundScore) error {
	db = r.resolveDB(db)

	if len(scores) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&scores).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert round scores: %w", err)
	}
	return nil
}

// EliminateParticipants flips eliminated for the given participants.
func (r *Impl) EliminateParticipants(ctx context.Context, db bun.IDB, shootOffID uuid.UUID, participantIDs []uuid.UUID) error {
	db = r.resolveDB(db)

	if len(participantIDs) == 0 {
		return nil
	}
	_, err := db.NewUpdate().
		Model((*Participant)(nil)).
		Set("eliminated = TRUE").
		Where("shoot_off_id = ?", shootOffID).
		Where("id IN (?)", bun.In(participantIDs)).
		Where("eliminated = FALSE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to eliminate participants: %w", err)
	}
	return nil
}

// SetFinalPlaces writes each participant's final place.
func (r *Impl) SetFinalPlaces(ctx context.Context, db bun.IDB, shootOffID uuid.UUID, places map[uuid.UUID]int) error {
	db = r.resolveDB(db)

	for participantID, place := range places {
		res, err := db.NewUpdate().
			Model((*Participant)(nil)).
			Set("final_place = ?", place).
			Where("shoot_off_id = ?", shootOffID).
			Where("id = ?", participantID).
			Where("final_place IS NULL").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to set final place for participant %s: %w", participantID, err)
		}
		if err := requireRows(res); err != nil {
			return fmt.Errorf("final place already set for participant %s: %w", participantID, err)
		}
	}
	return nil
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
