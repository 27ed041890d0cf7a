package shootoffservice

import (
	"time"

	"github.com/google/uuid"

	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
)

// ActorContext identifies the operator performing a mutating operation. The
// permission decision was already made by the identity layer; the engine
// records the actor on audit fields and otherwise ignores it.
type ActorContext struct {
	ID   uuid.UUID
	Role string
}

// CreateShootOffInput is the request to create a shoot-off for a tie group.
type CreateShootOffInput struct {
	TournamentID     uuid.UUID
	DisciplineID     *uuid.UUID
	Position         int
	CompetitorIDs    []uuid.UUID
	ClaimedTiedScore int
	Format           shootoffdomain.Format
}

// RoundScoreInput is one participant's result for the open round.
type RoundScoreInput struct {
	ParticipantID uuid.UUID
	TargetsHit    int
}

// RoundResult reports the outcome of recording a round's scores.
type RoundResult struct {
	RoundID         uuid.UUID   `json:"roundId"`
	Sequence        int         `json:"sequence"`
	Eliminated      []uuid.UUID `json:"eliminated"`
	RemainingActive int         `json:"remainingActive"`
}

// ShootOffView is the read representation of a shoot-off aggregate.
type ShootOffView struct {
	ID           uuid.UUID             `json:"id"`
	TournamentID uuid.UUID             `json:"tournamentId"`
	DisciplineID *uuid.UUID            `json:"disciplineId,omitempty"`
	Position     int                   `json:"position"`
	Format       shootoffdomain.Format `json:"format"`
	Status       shootoffdomain.Status `json:"status"`
	TiedScore    int                   `json:"tiedScore"`
	WinnerID     *uuid.UUID            `json:"winnerId,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	StartedAt    *time.Time            `json:"startedAt,omitempty"`
	CompletedAt  *time.Time            `json:"completedAt,omitempty"`
	Participants []ParticipantView     `json:"participants"`
	Rounds       []RoundView           `json:"rounds"`
}

// ParticipantView is the read representation of one participant.
type ParticipantView struct {
	ID           uuid.UUID `json:"id"`
	CompetitorID uuid.UUID `json:"competitorId"`
	TiedScore    int       `json:"tiedScore"`
	Eliminated   bool      `json:"eliminated"`
	FinalPlace   *int      `json:"finalPlace,omitempty"`
}

// RoundView is the read representation of one round.
type RoundView struct {
	ID          uuid.UUID        `json:"id"`
	Sequence    int              `json:"sequence"`
	Targets     int              `json:"targets"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	Scores      []RoundScoreView `json:"scores"`
}

// RoundScoreView is the read representation of one recorded score.
type RoundScoreView struct {
	ParticipantID    uuid.UUID `json:"participantId"`
	TargetsHit       int       `json:"targetsHit"`
	TargetsPresented int       `json:"targetsPresented"`
}
