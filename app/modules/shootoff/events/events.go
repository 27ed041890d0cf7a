// Package shootoffevents defines the lifecycle events published on the
// event bus. Scoreboard displays and the leaderboard renderer subscribe to
// these to refresh; delivery beyond the bus is not this engine's concern.
package shootoffevents

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	ShootOffCreated   = "shootoff.created"
	ShootOffStarted   = "shootoff.started"
	ShootOffCancelled = "shootoff.cancelled"
	RoundCompleted    = "shootoff.round.completed"
	ShootOffCompleted = "shootoff.completed"
)

// ShootOffCreatedPayload announces a new pending shoot-off.
type ShootOffCreatedPayload struct {
	ShootOffID    uuid.UUID   `json:"shootOffId"`
	TournamentID  uuid.UUID   `json:"tournamentId"`
	DisciplineID  *uuid.UUID  `json:"disciplineId,omitempty"`
	Position      int         `json:"position"`
	Format        string      `json:"format"`
	TiedScore     int         `json:"tiedScore"`
	CompetitorIDs []uuid.UUID `json:"competitorIds"`
	CreatedBy     uuid.UUID   `json:"createdBy"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// ShootOffStatusPayload announces a bare status transition (started or
// cancelled).
type ShootOffStatusPayload struct {
	ShootOffID   uuid.UUID `json:"shootOffId"`
	TournamentID uuid.UUID `json:"tournamentId"`
	Status       string    `json:"status"`
	ActorID      uuid.UUID `json:"actorId"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// RoundCompletedPayload announces a completed round and its eliminations.
type RoundCompletedPayload struct {
	ShootOffID      uuid.UUID   `json:"shootOffId"`
	RoundID         uuid.UUID   `json:"roundId"`
	Sequence        int         `json:"sequence"`
	Eliminated      []uuid.UUID `json:"eliminated"`
	RemainingActive int         `json:"remainingActive"`
	OccurredAt      time.Time   `json:"occurredAt"`
}

// Placement is one competitor's final place within a completed shoot-off.
type Placement struct {
	CompetitorID uuid.UUID `json:"competitorId"`
	FinalPlace   int       `json:"finalPlace"`
}

// ShootOffCompletedPayload announces the winner and final placements.
type ShootOffCompletedPayload struct {
	ShootOffID   uuid.UUID   `json:"shootOffId"`
	TournamentID uuid.UUID   `json:"tournamentId"`
	WinnerID     uuid.UUID   `json:"winnerId"`
	Placements   []Placement `json:"placements"`
	OccurredAt   time.Time   `json:"occurredAt"`
}
