package shootoffdomain

import (
	"sort"

	"github.com/google/uuid"
)

// ParticipantResult is the input to final placement: one line per
// participant, eliminated or not, with the sum of all their recorded round
// scores.
type ParticipantResult struct {
	ParticipantID uuid.UUID
	Eliminated    bool
	TotalHits     int
}

// RankParticipants orders every participant best-first for final placement:
// survivors before eliminated, then descending cumulative round total.
// Elimination order is deliberately not consulted. Participants whose
// cumulative totals also tie are ordered by id so repeated runs assign the
// same places.
func RankParticipants(participants []ParticipantResult) []ParticipantResult {
	ranked := make([]ParticipantResult, len(participants))
	copy(ranked, participants)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Eliminated != ranked[j].Eliminated {
			return !ranked[i].Eliminated
		}
		if ranked[i].TotalHits != ranked[j].TotalHits {
			return ranked[i].TotalHits > ranked[j].TotalHits
		}
		return ranked[i].ParticipantID.String() < ranked[j].ParticipantID.String()
	})

	return ranked
}
