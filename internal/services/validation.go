package services

import (
	"strconv"
	"strings"

	"winetasting/internal/models"
)

// MinVotingWines is how many wines a participant needs to fill a podium.
const MinVotingWines = 3

// VoteSelection is the raw state of the voting form. Zero means "not chosen".
type VoteSelection struct {
	ParticipantID string `form:"participant"`
	FirstPlace    int    `form:"first_place"`
	SecondPlace   int    `form:"second_place"`
	ThirdPlace    int    `form:"third_place"`
}

// ValidateVote turns a complete selection into a Vote.
// Repeated wines are reported before missing fields, so a half-filled form
// with two equal picks points at the duplicate first.
func ValidateVote(sel VoteSelection) (models.Vote, error) {
	seen := make(map[int]bool, 3)
	for _, w := range []int{sel.FirstPlace, sel.SecondPlace, sel.ThirdPlace} {
		if w == 0 {
			continue
		}
		if seen[w] {
			return models.Vote{}, ErrDuplicateWine
		}
		seen[w] = true
	}

	if sel.ParticipantID == "" || sel.FirstPlace <= 0 || sel.SecondPlace <= 0 || sel.ThirdPlace <= 0 {
		return models.Vote{}, ErrIncompleteVote
	}

	return models.Vote{
		ParticipantID: sel.ParticipantID,
		FirstPlace:    sel.FirstPlace,
		SecondPlace:   sel.SecondPlace,
		ThirdPlace:    sel.ThirdPlace,
	}, nil
}

// CheckVoteWines makes sure every ranked wine is one the participant tasted.
func CheckVoteWines(p models.Participant, v models.Vote) error {
	for _, w := range []int{v.FirstPlace, v.SecondPlace, v.ThirdPlace} {
		if !p.HasWine(w) {
			return ErrWineNotAssigned
		}
	}
	return nil
}

// VotingChoices returns the wines a participant may rank. Participants holding
// fewer than three wines cannot vote at all.
func VotingChoices(p models.Participant) ([]int, error) {
	if len(p.AssignedWines) < MinVotingWines {
		return nil, tooFewWines(len(p.AssignedWines))
	}
	return append([]int(nil), p.AssignedWines...), nil
}

// ParseSlots reads the organizer's edited slot values. Entries that are not
// numbers are dropped before counting, so a blank slot shows up as a count
// mismatch rather than as wine zero.
func ParseSlots(slots []string, expected, totalWines int) ([]int, error) {
	wines := make([]int, 0, len(slots))
	for _, s := range slots {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			continue
		}
		wines = append(wines, n)
	}

	if len(wines) != expected {
		return nil, slotCount(expected)
	}

	seen := make(map[int]bool, len(wines))
	for _, w := range wines {
		if seen[w] {
			return nil, ErrDuplicateSlot
		}
		seen[w] = true
	}

	for _, w := range wines {
		if w < 1 || w > totalWines {
			return nil, wineOutOfRange(w, totalWines)
		}
	}

	return wines, nil
}
