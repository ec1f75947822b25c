package services

import "winetasting/internal/models"

// CompletePercentage is the voting percentage at which the tournament is over.
const CompletePercentage = 100

// PodiumSize is the number of leaderboard entries a celebration needs.
const PodiumSize = 3

// celebrationLatch makes the completion celebration fire once per crossing of 100%.
type celebrationLatch struct {
	shown bool
}

// observe records a new voting percentage and reports whether a celebration
// may be due. Dropping below 100% re-arms the latch.
func (l *celebrationLatch) observe(pct float64) bool {
	if pct < CompletePercentage {
		l.shown = false
		return false
	}
	return !l.shown
}

// fire consumes the latch when the leaderboard can fill a podium. A short
// leaderboard leaves the latch armed for the next poll.
func (l *celebrationLatch) fire(entries int) bool {
	if l.shown || entries < PodiumSize {
		return false
	}
	l.shown = true
	return true
}

// sequencer hands out request tokens so that a response can be dropped when a
// newer one has already been applied.
type sequencer struct {
	issued  uint64
	applied uint64
}

func (s *sequencer) next() uint64 {
	s.issued++
	return s.issued
}

func (s *sequencer) apply(token uint64) bool {
	if token < s.applied {
		return false
	}
	s.applied = token
	return true
}

// Progress is the voting completion view.
type Progress struct {
	Stats     models.VotingStats
	Celebrate bool
	Podium    []RankedEntry
}

// Complete reports whether everybody has voted.
func (p Progress) Complete() bool {
	return p.Stats.VotingPercentage >= CompletePercentage
}
