package shootoffdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
)

// ShootOff is the aggregate root for one tie-break contest. Participants
// and rounds are exclusively owned children; the aggregate becomes immutable
// once status reaches completed or cancelled.
type ShootOff struct {
	bun.BaseModel `bun:"table:shoot_offs,alias:so"`

	ID           uuid.UUID             `bun:"id,pk,type:uuid"`
	TournamentID uuid.UUID             `bun:"tournament_id,notnull,type:uuid"`
	DisciplineID *uuid.UUID            `bun:"discipline_id,type:uuid,nullzero"`
	Position     int                   `bun:"position,notnull"`
	Format       shootoffdomain.Format `bun:"format,notnull"`
	Status       shootoffdomain.Status `bun:"status,notnull"`
	TiedScore    int                   `bun:"tied_score,notnull"`
	WinnerID     *uuid.UUID            `bun:"winner_id,type:uuid,nullzero"`
	CreatedBy    uuid.UUID             `bun:"created_by,notnull,type:uuid"`
	CreatedAt    time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	StartedAt    *time.Time            `bun:"started_at,nullzero"`
	CompletedAt  *time.Time            `bun:"completed_at,nullzero"`

	Participants []*Participant `bun:"rel:has-many,join:id=shoot_off_id"`
	Rounds       []*Round       `bun:"rel:has-many,join:id=shoot_off_id"`
}

// ActiveParticipants returns the non-eliminated participants.
func (so *ShootOff) ActiveParticipants() []*Participant {
	var active []*Participant
	for _, p := range so.Participants {
		if !p.Eliminated {
			active = append(active, p)
		}
	}
	return active
}

// OpenRound returns the round with no completion timestamp, or nil. At most
// one such round exists at any time.
func (so *ShootOff) OpenRound() *Round {
	for _, r := range so.Rounds {
		if r.CompletedAt == nil {
			return r
		}
	}
	return nil
}

// MaxSequence returns the highest round sequence number, 0 if no rounds.
func (so *ShootOff) MaxSequence() int {
	max := 0
	for _, r := range so.Rounds {
		if r.Sequence > max {
			max = r.Sequence
		}
	}
	return max
}

// Participant is one competitor's membership in a shoot-off. At most one
// row per competitor per shoot-off. Eliminated moves false→true once and is
// never reversed; FinalPlace is written once, at completion.
type Participant struct {
	bun.BaseModel `bun:"table:shoot_off_participants,alias:sp"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	ShootOffID   uuid.UUID `bun:"shoot_off_id,notnull,type:uuid"`
	CompetitorID uuid.UUID `bun:"competitor_id,notnull,type:uuid"`
	TiedScore    int       `bun:"tied_score,notnull"`
	Eliminated   bool      `bun:"eliminated,notnull"`
	FinalPlace   *int      `bun:"final_place,nullzero"`
}

// Round is one scored segment of a shoot-off. The targets count is fixed at
// round creation from tournament configuration. ShootOffID is a non-owning
// back-reference used for validation only.
type Round struct {
	bun.BaseModel `bun:"table:shoot_off_rounds,alias:sr"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid"`
	ShootOffID  uuid.UUID  `bun:"shoot_off_id,notnull,type:uuid"`
	Sequence    int        `bun:"sequence,notnull"`
	Targets     int        `bun:"targets,notnull"`
	CompletedAt *time.Time `bun:"completed_at,nullzero"`
	RecordedBy  *uuid.UUID `bun:"recorded_by,type:uuid,nullzero"`

	Scores []*RoundScore `bun:"rel:has-many,join:id=round_id"`
}

// RoundScore is one participant's result for one round. TargetsPresented is
// a denormalized copy of the round's target count, kept for auditability.
type RoundScore struct {
	bun.BaseModel `bun:"table:shoot_off_round_scores,alias:ss"`

	RoundID          uuid.UUID `bun:"round_id,pk,type:uuid"`
	ParticipantID    uuid.UUID `bun:"participant_id,pk,type:uuid"`
	TargetsHit       int       `bun:"targets_hit,notnull"`
	TargetsPresented int       `bun:"targets_presented,notnull"`
}
