package shootoffdomain

import "github.com/google/uuid"

// RoundStanding is one active participant's line after a round completes:
// the targets hit this round and the cumulative total across all completed
// rounds including this one.
type RoundStanding struct {
	ParticipantID  uuid.UUID
	Hits           int
	CumulativeHits int
}

// EliminationPolicy decides which active participants are removed after a
// round completes. Implementations are pure: the same standings always
// produce the same eliminations.
type EliminationPolicy interface {
	Format() Format

	// Eliminate returns the participant ids to eliminate after the round
	// with the given sequence number completes. standings holds every
	// still-active participant; returning nil keeps them all.
	Eliminate(sequence int, standings []RoundStanding) []uuid.UUID
}

// PolicyFor returns the elimination policy for a format. fixedRoundCount is
// only consulted by the fixed-rounds policy.
func PolicyFor(format Format, fixedRoundCount int) EliminationPolicy {
	switch format {
	case FormatFixedRounds:
		return fixedRoundsPolicy{roundCount: fixedRoundCount}
	case FormatProgressive:
		return progressivePolicy{}
	default:
		return suddenDeathPolicy{}
	}
}

// suddenDeathPolicy eliminates everyone below the round's best score. When
// all active participants tie, nobody is eliminated and another round is
// required.
type suddenDeathPolicy struct{}

func (suddenDeathPolicy) Format() Format { return FormatSuddenDeath }

func (suddenDeathPolicy) Eliminate(_ int, standings []RoundStanding) []uuid.UUID {
	if len(standings) < 2 {
		return nil
	}

	max := standings[0].Hits
	for _, st := range standings[1:] {
		if st.Hits > max {
			max = st.Hits
		}
	}

	var eliminated []uuid.UUID
	for _, st := range standings {
		if st.Hits < max {
			eliminated = append(eliminated, st.ParticipantID)
		}
	}
	return eliminated
}

// progressivePolicy eliminates the round's minimum scorers while preserving
// a contest. A sole minimum scorer is always eliminated, even head-to-head
// (that resolves the shoot-off). When several participants share the minimum
// and removing them all would leave fewer than two active, nobody is
// eliminated and another round is required.
type progressivePolicy struct{}

func (progressivePolicy) Format() Format { return FormatProgressive }

func (progressivePolicy) Eliminate(_ int, standings []RoundStanding) []uuid.UUID {
	if len(standings) < 2 {
		return nil
	}

	min := standings[0].Hits
	for _, st := range standings[1:] {
		if st.Hits < min {
			min = st.Hits
		}
	}

	var atMinimum []uuid.UUID
	for _, st := range standings {
		if st.Hits == min {
			atMinimum = append(atMinimum, st.ParticipantID)
		}
	}

	// All tied: another round.
	if len(atMinimum) == len(standings) {
		return nil
	}

	// A sole lowest scorer always goes out.
	if len(atMinimum) == 1 {
		return atMinimum
	}

	// Several share the minimum: only eliminate them if at least two
	// participants survive the cut.
	if len(standings)-len(atMinimum) >= 2 {
		return atMinimum
	}
	return nil
}

// fixedRoundsPolicy defers all elimination to the configured final round.
// From that round onward each completion eliminates every active participant
// whose cumulative total trails the best cumulative total; if all remain
// tied on cumulative totals, a further round is required.
type fixedRoundsPolicy struct {
	roundCount int
}

func (fixedRoundsPolicy) Format() Format { return FormatFixedRounds }

func (p fixedRoundsPolicy) Eliminate(sequence int, standings []RoundStanding) []uuid.UUID {
	if sequence < p.roundCount || len(standings) < 2 {
		return nil
	}

	max := standings[0].CumulativeHits
	for _, st := range standings[1:] {
		if st.CumulativeHits > max {
			max = st.CumulativeHits
		}
	}

	var eliminated []uuid.UUID
	for _, st := range standings {
		if st.CumulativeHits < max {
			eliminated = append(eliminated, st.ParticipantID)
		}
	}
	return eliminated
}
