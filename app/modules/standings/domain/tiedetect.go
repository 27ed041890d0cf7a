// Package standingsdomain contains the pure tie-detection rules. Detection
// is a read-only walk over ranked standings; it never touches storage and
// emitting a group has no side effects.
package standingsdomain

import "github.com/google/uuid"

// Scope identifies which grouping of the published standings a tie occurs in.
type Scope string

const (
	ScopeOverall  Scope = "overall"
	ScopeDivision Scope = "division"
	ScopeClass    Scope = "class"
	ScopeTeam     Scope = "team"
)

// Standing is one ranked entry: a competitor and their regulation total.
// Standings handed to DetectTies must be sorted by descending score.
type Standing struct {
	CompetitorID uuid.UUID
	Score        int
}

// TriggerPolicy controls which ties qualify for a shoot-off by default.
// Ties in non-triggered positions are left alone; an operator may still
// request a shoot-off for them manually.
type TriggerPolicy struct {
	// Places lists exact contested places (1 = first). A tie group matches
	// when any listed place falls inside the span of places the group
	// occupies.
	Places []int

	// TopN, when > 0, matches any tie that occurs while determining
	// placements 1..TopN.
	TopN int

	// PerfectScoreOnly suppresses groups whose tied score is below
	// MaxAttainableScore, even when a place trigger matches.
	PerfectScoreOnly bool

	// MaxAttainableScore is the maximum possible regulation score for the
	// discipline/tournament configuration. Consulted only when
	// PerfectScoreOnly is set.
	MaxAttainableScore int
}

// TieGroup is a contiguous run of two or more competitors sharing a score at
// a triggered position. Position uses standard competition ranking: the rank
// of the group's first member (1, 2, 2, 4).
type TieGroup struct {
	Scope         Scope
	Position      int
	Score         int
	CompetitorIDs []uuid.UUID
}

// DetectTies walks descending-sorted standings and emits one TieGroup per
// contiguous run of equal scores that matches the policy. A single walk may
// emit multiple non-overlapping groups. Runs of fewer than two competitors
// never qualify. The walk is deterministic: identical input yields identical
// groups.
func DetectTies(scope Scope, standings []Standing, policy TriggerPolicy) []TieGroup {
	var groups []TieGroup

	for i := 0; i < len(standings); {
		j := i + 1
		for j < len(standings) && standings[j].Score == standings[i].Score {
			j++
		}

		size := j - i
		position := i + 1

		if size >= 2 && policy.matches(position, size, standings[i].Score) {
			ids := make([]uuid.UUID, 0, size)
			for k := i; k < j; k++ {
				ids = append(ids, standings[k].CompetitorID)
			}
			groups = append(groups, TieGroup{
				Scope:         scope,
				Position:      position,
				Score:         standings[i].Score,
				CompetitorIDs: ids,
			})
		}

		i = j
	}

	return groups
}

// matches reports whether a tie group starting at the given position with
// the given size and score satisfies any enabled trigger condition.
func (p TriggerPolicy) matches(position, size, score int) bool {
	if p.PerfectScoreOnly && score != p.MaxAttainableScore {
		return false
	}

	// The group occupies places position..position+size-1.
	last := position + size - 1

	for _, place := range p.Places {
		if place >= position && place <= last {
			return true
		}
	}

	if p.TopN > 0 && position <= p.TopN {
		return true
	}

	return false
}
